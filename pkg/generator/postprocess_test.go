package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

func pointsFromValues(values []float64) []models.MetricPoint {
	points := make([]models.MetricPoint, len(values))
	for i, v := range values {
		points[i].Value = v
	}

	return points
}

func valuesOf(points []models.MetricPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	return values
}

func TestSmoothIsolatedOutliers(t *testing.T) {
	points := pointsFromValues([]float64{100, 102, 400, 98, 101})

	smoothIsolatedOutliers(points)

	assert.InDelta(t, 100, points[2].Value, 0.001,
		"an isolated outlier collapses to its neighbor average")
	assert.Equal(t, 100.0, points[0].Value)
	assert.Equal(t, 101.0, points[4].Value)
}

func TestSmoothIsolatedOutliers_KeepsGenuineSpikes(t *testing.T) {
	// A spike peak followed by a close decay point is a real feature.
	points := pointsFromValues([]float64{100, 300, 260, 220, 180, 140, 100})

	smoothIsolatedOutliers(points)

	assert.Equal(t, []float64{100, 300, 260, 220, 180, 140, 100}, valuesOf(points))
}

func TestEnforceFloor(t *testing.T) {
	points := pointsFromValues([]float64{50, 9.5, 10.2, 3})

	enforceFloor(points, 10)

	assert.Equal(t, []float64{50, 10, 10.2, 10}, valuesOf(points))
}

func TestEnforceLeakSignature_ForcesGCDrop(t *testing.T) {
	values := make([]float64, 150)
	for i := range values {
		values[i] = 100 + float64(i) // strictly growing, never drops
	}

	points := pointsFromValues(values)
	enforceLeakSignature(points)

	dropped := false

	for i := 1; i < len(points); i++ {
		if points[i].Value < points[i-1].Value {
			dropped = true

			assert.InDelta(t, points[i-1].Value*leakGCRetention, points[i].Value, 0.001)

			break
		}
	}

	assert.True(t, dropped, "a long window without any drop gets a synthetic GC")
}

func TestEnforceLeakSignature_LeavesNaturalGCAlone(t *testing.T) {
	values := make([]float64, 150)
	for i := range values {
		values[i] = 100 + float64(i)
	}

	values[80] = values[79] * 0.7 // natural GC resets the window

	points := pointsFromValues(values)
	before := valuesOf(points)

	enforceLeakSignature(points)

	assert.Equal(t, before, valuesOf(points))
}
