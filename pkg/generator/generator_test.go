package generator

import (
	"log/slog"
	"math"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestGenerator() *Generator {
	return New(testLogger(), WithRandom(rand.New(rand.NewSource(1))))
}

func TestGenerateStream_StableStaysNearBase(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeCPU,
		Pattern:   models.PatternStable,
		Duration:  10 * time.Second,
		BaseValue: 50,
		Variance:  0.1,
	})
	require.NoError(t, err)

	require.Len(t, stream.Points, 10, "cpu samples once per second")

	for _, point := range stream.Points {
		assert.InDelta(t, 50, point.Value, 0.5, "stable jitter is damped to a tenth of the variance")
	}

	assert.Equal(t, "cpu-stable", stream.Name)
	assert.Equal(t, "percent", stream.Unit)
	assert.InDelta(t, 50, stream.Metadata.AvgValue, 0.5)
}

func TestGenerateStream_PointCountPerMetricType(t *testing.T) {
	gen := newTestGenerator()

	cases := []struct {
		metric models.MetricType
		points int
	}{
		{models.MetricTypeNetwork, 20}, // 500ms sampling
		{models.MetricTypeCPU, 10},     // 1s sampling
		{models.MetricTypeMemory, 5},   // 2s sampling
		{models.MetricTypeDisk, 2},     // 5s sampling
	}

	for _, tc := range cases {
		stream, err := gen.GenerateStream(Request{
			Type:      tc.metric,
			Pattern:   models.PatternStable,
			Duration:  10 * time.Second,
			BaseValue: 100,
			Variance:  0.1,
		})
		require.NoError(t, err)
		assert.Len(t, stream.Points, tc.points, "metric %s", tc.metric)
	}
}

func TestGenerateStream_TimestampsFollowSamplingInterval(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeMemory,
		Pattern:   models.PatternStable,
		Duration:  20 * time.Second,
		BaseValue: 512,
		Variance:  0.05,
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 10)

	for i := 1; i < len(stream.Points); i++ {
		gap := stream.Points[i].Timestamp.Sub(stream.Points[i-1].Timestamp)
		assert.Equal(t, 2*time.Second, gap)
	}

	for _, point := range stream.Points {
		assert.True(t, point.Generated)
		assert.Equal(t, "memory", point.Tags["metric"])
		assert.Equal(t, "stable", point.Tags["pattern"])
	}
}

func TestGenerateStream_SpikePeaksAndDecay(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeCPU,
		Pattern:   models.PatternSpike,
		Duration:  60 * time.Second,
		BaseValue: 100,
		Variance:  0.1,
		Params: PatternParams{
			SpikeFrequency: 10,
			SpikeIntensity: 3,
		},
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 60)

	for _, peak := range []int{10, 20, 30, 40, 50} {
		assert.InDelta(t, 300, stream.Points[peak].Value, 0.001,
			"point %d is a spike peak of base times intensity", peak)
	}

	// Linear decay back toward baseline after each peak.
	for i := 11; i <= 15; i++ {
		assert.LessOrEqual(t, stream.Points[i].Value, stream.Points[i-1].Value)
	}
	assert.InDelta(t, 100, stream.Points[15].Value, 0.001)

	// Between episodes the signal hugs the baseline.
	for i := 16; i < 20; i++ {
		assert.InDelta(t, 100, stream.Points[i].Value, 1.0)
	}
}

func TestGenerateStream_DegradationTrendsDownToFloor(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeCPU,
		Pattern:   models.PatternDegradation,
		Duration:  300 * time.Second,
		BaseValue: 100,
		Variance:  0.1,
		Params: PatternParams{
			DegradationRate: 0.005,
		},
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 300)

	first := stream.Points[0].Value
	last := stream.Points[299].Value

	assert.Greater(t, first, last, "degradation trends downward")
	assert.InDelta(t, 10, last, 0.2, "the tail sits on the 10%% floor")

	for _, point := range stream.Points {
		assert.GreaterOrEqual(t, point.Value, 10.0, "no value undercuts the floor")
	}
}

func TestGenerateStream_LeakGrowsWithPeriodicGC(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeMemory,
		Pattern:   models.PatternLeak,
		Duration:  600 * time.Second,
		BaseValue: 100,
		Variance:  0.1,
		Params: PatternParams{
			LeakRate: 0.01,
		},
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 300)

	firstMean := meanOf(stream.Points[:50])
	lastMean := meanOf(stream.Points[250:])
	assert.Greater(t, lastMean, firstMean, "leaked memory accumulates despite GC drops")

	// Simulated GC at every 100th point drops to 70% of the grown value.
	for _, gc := range []int{100, 200} {
		assert.Less(t, stream.Points[gc].Value, stream.Points[gc-1].Value*0.8,
			"point %d is a GC drop", gc)
	}
}

func TestGenerateStream_FragmentationStaysBounded(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeDisk,
		Pattern:   models.PatternFragmentation,
		Duration:  600 * time.Second,
		BaseValue: 1000,
		Variance:  0.1,
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 120)

	for _, point := range stream.Points {
		assert.GreaterOrEqual(t, point.Value, 500.0)
		assert.LessOrEqual(t, point.Value, 2000.0)
	}
}

func TestGenerateStream_CongestionOscillates(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Type:      models.MetricTypeNetwork,
		Pattern:   models.PatternCongestion,
		Duration:  120 * time.Second,
		BaseValue: 200,
		Variance:  0.1,
	})
	require.NoError(t, err)
	require.Len(t, stream.Points, 240)

	var minSeen, maxSeen = math.Inf(1), math.Inf(-1)

	for _, point := range stream.Points {
		minSeen = math.Min(minSeen, point.Value)
		maxSeen = math.Max(maxSeen, point.Value)
	}

	assert.Less(t, minSeen, 200*0.75, "the envelope dips well below base")
	assert.Greater(t, maxSeen, 200*1.25, "the envelope rises well above base")
	assert.LessOrEqual(t, maxSeen, 200*4.5, "surges stay within the 2x-3x multiplier band")
}

func TestGenerateStream_ConcurrentStreamsShareOneInjectedSource(t *testing.T) {
	gen := newTestGenerator()

	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			stream, err := gen.GenerateStream(Request{
				Type:      models.MetricTypeCPU,
				Pattern:   models.PatternCongestion,
				Duration:  5 * time.Minute,
				BaseValue: 200,
				Variance:  0.1,
			})

			if assert.NoError(t, err) {
				assert.Len(t, stream.Points, 300)
			}
		}()
	}

	wg.Wait()
}

func TestGenerateStream_AllPatternsProduceFiniteNonNegativeValues(t *testing.T) {
	gen := newTestGenerator()

	patterns := []models.PatternType{
		models.PatternStable,
		models.PatternSpike,
		models.PatternDegradation,
		models.PatternLeak,
		models.PatternFragmentation,
		models.PatternCongestion,
	}

	for _, pattern := range patterns {
		stream, err := gen.GenerateStream(Request{
			Type:      models.MetricTypeCPU,
			Pattern:   pattern,
			Duration:  200 * time.Second,
			BaseValue: 75,
			Variance:  0.2,
		})
		require.NoError(t, err, "pattern %s", pattern)

		for i, point := range stream.Points {
			require.False(t, math.IsNaN(point.Value) || math.IsInf(point.Value, 0),
				"pattern %s produced a non-finite value at %d", pattern, i)
			require.GreaterOrEqual(t, point.Value, 0.0,
				"pattern %s produced a negative value at %d", pattern, i)
		}
	}
}

func TestGenerateStream_SeedMakesStreamsReproducible(t *testing.T) {
	gen := New(testLogger())

	request := Request{
		Type:      models.MetricTypeCPU,
		Pattern:   models.PatternCongestion,
		Duration:  60 * time.Second,
		BaseValue: 100,
		Variance:  0.2,
		Params:    PatternParams{Seed: 1234},
	}

	first, err := gen.GenerateStream(request)
	require.NoError(t, err)

	second, err := gen.GenerateStream(request)
	require.NoError(t, err)

	require.Len(t, second.Points, len(first.Points))

	for i := range first.Points {
		assert.Equal(t, first.Points[i].Value, second.Points[i].Value, "point %d", i)
	}
}

func TestGenerateStream_Metadata(t *testing.T) {
	gen := newTestGenerator()

	stream, err := gen.GenerateStream(Request{
		Name:      "custom-stream",
		Type:      models.MetricTypeCPU,
		Pattern:   models.PatternSpike,
		Duration:  120 * time.Second,
		BaseValue: 100,
		Variance:  0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, "custom-stream", stream.Name)

	meta := stream.Metadata
	assert.Equal(t, len(stream.Points), meta.PointCount)
	assert.Equal(t, models.PatternSpike, meta.Pattern)
	assert.LessOrEqual(t, meta.MinValue, meta.AvgValue)
	assert.LessOrEqual(t, meta.AvgValue, meta.MaxValue)
	assert.Greater(t, meta.MaxValue, 250.0, "spike peaks dominate the maximum")
}

func TestGenerateStream_RejectsInvalidRequests(t *testing.T) {
	gen := newTestGenerator()

	_, err := gen.GenerateStream(Request{
		Type: models.MetricTypeCPU, Pattern: models.PatternStable,
		Duration: 0, BaseValue: 50, Variance: 0.1,
	})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = gen.GenerateStream(Request{
		Type: models.MetricTypeCPU, Pattern: models.PatternStable,
		Duration: time.Minute, BaseValue: -1, Variance: 0.1,
	})
	assert.ErrorIs(t, err, ErrInvalidBase)

	_, err = gen.GenerateStream(Request{
		Type: models.MetricTypeCPU, Pattern: models.PatternStable,
		Duration: time.Minute, BaseValue: 50, Variance: -0.1,
	})
	assert.ErrorIs(t, err, ErrInvalidVariance)

	_, err = gen.GenerateStream(Request{
		Type: models.MetricTypeCPU, Pattern: "sawtooth",
		Duration: time.Minute, BaseValue: 50, Variance: 0.1,
	})
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func meanOf(points []models.MetricPoint) float64 {
	sum := 0.0
	for _, p := range points {
		sum += p.Value
	}

	return sum / float64(len(points))
}
