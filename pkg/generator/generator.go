// Package generator produces synthetic time-series metric streams with
// configurable statistical shapes for training and validating
// monitoring pipelines.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

var (
	ErrUnknownPattern  = errors.New("unknown pattern")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidBase     = errors.New("base value must be non-negative")
	ErrInvalidVariance = errors.New("variance must be non-negative")
)

// PatternParams tunes the shape of a generated stream. Zero values are
// replaced by defaults.
type PatternParams struct {
	SpikeFrequency  int     `json:"spike_frequency,omitempty"`
	SpikeIntensity  float64 `json:"spike_intensity,omitempty"`
	DegradationRate float64 `json:"degradation_rate,omitempty"`
	LeakRate        float64 `json:"leak_rate,omitempty"`
	Seed            int64   `json:"seed,omitempty"`
}

// Request describes one stream to generate.
type Request struct {
	Name      string             `json:"name,omitempty"`
	Type      models.MetricType  `json:"type"`
	Pattern   models.PatternType `json:"pattern"`
	Duration  time.Duration      `json:"duration"`
	BaseValue float64            `json:"base_value"`
	Variance  float64            `json:"variance"`
	Params    PatternParams      `json:"params,omitempty"`
}

const (
	defaultSpikeFrequency  = 10
	defaultSpikeIntensity  = 3.0
	defaultDegradationRate = 0.005
	defaultLeakRate        = 0.01
)

type Generator struct {
	logger *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Generator)

// WithRandom injects the random source used for jitter and
// pseudo-random pattern decisions. Intended for deterministic tests.
func WithRandom(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

func New(logger *slog.Logger, opts ...Option) *Generator {
	g := &Generator{
		logger: logger.With("module", "pattern_generator"),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GenerateStream emits one point per sampling interval until the
// requested duration elapses, shapes the values with the requested
// pattern, applies pattern-specific post-processing, and derives the
// stream metadata. Deterministic when a seed or seeded random source
// is supplied.
func (g *Generator) GenerateStream(req Request) (*models.MetricStream, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	req.Params = applyDefaults(req.Params)

	interval := req.Type.SamplingInterval()
	count := int(math.Ceil(req.Duration.Seconds() / interval.Seconds()))

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s", req.Type, req.Pattern)
	}

	logger := g.logger.With("stream", name, "pattern", req.Pattern, "points", count)
	logger.Debug("Generating metric stream")

	state := newPatternState(req, g.streamRandom(req.Params.Seed))
	start := time.Now()

	points := make([]models.MetricPoint, 0, count)

	for i := 0; i < count; i++ {
		value := g.sanitize(state.nextValue(req, i), req.BaseValue, logger)

		points = append(points, models.MetricPoint{
			Timestamp: start.Add(time.Duration(i) * interval),
			Value:     value,
			Tags: map[string]string{
				"metric":  string(req.Type),
				"pattern": string(req.Pattern),
			},
			Generated: true,
		})
	}

	postProcess(req, points)

	return &models.MetricStream{
		Name:     name,
		Type:     req.Type,
		Unit:     req.Type.Unit(),
		Points:   points,
		Metadata: deriveMetadata(req.Pattern, points),
	}, nil
}

// streamRandom picks the random source for one stream. A non-zero seed
// always wins so individual requests stay reproducible. An injected
// source is never handed out directly; each stream gets a child source
// derived under the lock, so concurrent generations do not share a
// rand.Rand.
func (g *Generator) streamRandom(seed int64) *rand.Rand {
	if seed != 0 {
		return rand.New(rand.NewSource(seed))
	}

	if g.rng != nil {
		g.mu.Lock()
		childSeed := g.rng.Int63()
		g.mu.Unlock()

		return rand.New(rand.NewSource(childSeed))
	}

	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// sanitize guards the numeric contract: values are finite and
// non-negative. A kernel emitting NaN or Inf is a defect, reported and
// replaced by the base value.
func (g *Generator) sanitize(value, base float64, logger *slog.Logger) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		logger.Warn("Pattern produced non-finite value, substituting base", "value", value)

		return base
	}

	if value < 0 {
		return 0
	}

	return value
}

func validateRequest(req Request) error {
	if req.Duration <= 0 {
		return ErrInvalidDuration
	}

	if req.BaseValue < 0 {
		return ErrInvalidBase
	}

	if req.Variance < 0 {
		return ErrInvalidVariance
	}

	switch req.Pattern {
	case models.PatternStable, models.PatternSpike, models.PatternDegradation,
		models.PatternLeak, models.PatternFragmentation, models.PatternCongestion:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, req.Pattern)
	}
}

func applyDefaults(params PatternParams) PatternParams {
	if params.SpikeFrequency <= 0 {
		params.SpikeFrequency = defaultSpikeFrequency
	}

	if params.SpikeIntensity <= 0 {
		params.SpikeIntensity = defaultSpikeIntensity
	}

	if params.DegradationRate <= 0 {
		params.DegradationRate = defaultDegradationRate
	}

	if params.LeakRate <= 0 {
		params.LeakRate = defaultLeakRate
	}

	return params
}

func deriveMetadata(pattern models.PatternType, points []models.MetricPoint) models.StreamMetadata {
	meta := models.StreamMetadata{
		PointCount: len(points),
		Pattern:    pattern,
	}

	if len(points) == 0 {
		return meta
	}

	meta.MinValue = points[0].Value
	meta.MaxValue = points[0].Value

	sum := 0.0
	for _, p := range points {
		sum += p.Value

		if p.Value < meta.MinValue {
			meta.MinValue = p.Value
		}

		if p.Value > meta.MaxValue {
			meta.MaxValue = p.Value
		}
	}

	meta.AvgValue = sum / float64(len(points))

	return meta
}
