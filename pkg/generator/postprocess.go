package generator

import (
	"math"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

// postProcess applies the pattern-specific pass over the finished
// point sequence.
func postProcess(req Request, points []models.MetricPoint) {
	switch req.Pattern {
	case models.PatternSpike:
		smoothIsolatedOutliers(points)
	case models.PatternDegradation:
		enforceFloor(points, req.BaseValue*degradationFloorRatio)
	case models.PatternLeak:
		enforceLeakSignature(points)
	}
}

// smoothIsolatedOutliers replaces points that disagree with both
// neighbors by more than 50% while the neighbors agree with each
// other. Genuine spike peaks survive because the first decay point
// stays close to the peak.
func smoothIsolatedOutliers(points []models.MetricPoint) {
	for i := 1; i < len(points)-1; i++ {
		prev := points[i-1].Value
		next := points[i+1].Value

		if relativeDiff(points[i].Value, prev) > 0.5 &&
			relativeDiff(points[i].Value, next) > 0.5 &&
			relativeDiff(prev, next) <= 0.5 {
			points[i].Value = (prev + next) / 2
		}
	}
}

// enforceFloor clamps every value to at least the hard floor.
func enforceFloor(points []models.MetricPoint, floor float64) {
	for i := range points {
		if points[i].Value < floor {
			points[i].Value = floor
		}
	}
}

// enforceLeakSignature forces a synthetic GC drop whenever more than
// leakGCInterval consecutive points show no drop, preserving the
// leak-then-reset shape.
func enforceLeakSignature(points []models.MetricPoint) {
	lastDrop := 0

	for i := 1; i < len(points); i++ {
		if points[i].Value < points[i-1].Value*0.95 {
			lastDrop = i

			continue
		}

		if i-lastDrop >= leakGCInterval {
			points[i].Value = points[i-1].Value * leakGCRetention
			lastDrop = i
		}
	}
}

func relativeDiff(a, b float64) float64 {
	reference := math.Max(math.Abs(b), 1e-9)

	return math.Abs(a-b) / reference
}
