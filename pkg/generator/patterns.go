package generator

import (
	"math"
	"math/rand"

	"github.com/sijadev/IMF-Test-Manager/pkg/models"
)

const (
	spikeDecayPoints      = 5
	leakGCInterval        = 100
	leakGCRetention       = 0.7
	fragmentationCycle    = 30
	fragmentationPeriods  = 4
	congestionPeriod      = 60
	congestionSurgeLength = 10
	congestionSurgeChance = 0.05
	degradationFloorRatio = 0.1
)

// patternState is the mutable state threaded through successive value
// calls within one stream. It is owned by a single generation loop and
// discarded afterwards.
type patternState struct {
	rng *rand.Rand

	// spike
	spikePeak      float64
	decayRemaining int

	// leak
	leakCurrent float64
	gcFloor     float64

	// fragmentation
	cyclePhase int

	// congestion
	surgeRemaining int
	surgeFactor    float64
}

func newPatternState(req Request, rng *rand.Rand) *patternState {
	return &patternState{
		rng:         rng,
		leakCurrent: req.BaseValue,
	}
}

// jitter returns a symmetric random offset in (-1, 1) scaled by the
// variance fraction and a per-pattern damping factor.
func (s *patternState) jitter(variance, damping float64) float64 {
	return (s.rng.Float64()*2 - 1) * variance * damping
}

func (s *patternState) nextValue(req Request, index int) float64 {
	base := req.BaseValue
	variance := req.Variance

	switch req.Pattern {
	case models.PatternStable:
		return s.stableValue(base, variance)
	case models.PatternSpike:
		return s.spikeValue(base, variance, req.Params, index)
	case models.PatternDegradation:
		return s.degradationValue(base, variance, req.Params, index)
	case models.PatternLeak:
		return s.leakValue(base, variance, req.Params, index)
	case models.PatternFragmentation:
		return s.fragmentationValue(base, variance, index)
	case models.PatternCongestion:
		return s.congestionValue(base, variance, index)
	default:
		return base
	}
}

// stableValue applies small symmetric jitter around the base.
func (s *patternState) stableValue(base, variance float64) float64 {
	return base * (1 + s.jitter(variance, 0.1))
}

// spikeValue emits a peak of base*intensity every SpikeFrequency
// points, decays linearly back to baseline over the following fixed
// number of points, and stays near baseline in between. A new spike
// always resets the decay countdown.
func (s *patternState) spikeValue(base, variance float64, params PatternParams, index int) float64 {
	if index > 0 && index%params.SpikeFrequency == 0 {
		s.spikePeak = base * params.SpikeIntensity
		s.decayRemaining = spikeDecayPoints

		return s.spikePeak
	}

	if s.decayRemaining > 0 {
		s.decayRemaining--

		return base + (s.spikePeak-base)*float64(s.decayRemaining)/float64(spikeDecayPoints)
	}

	return base * (1 + s.jitter(variance, 0.05))
}

// degradationValue shrinks the effective base linearly with the point
// index, floored at 10% of the original base.
func (s *patternState) degradationValue(base, variance float64, params PatternParams, index int) float64 {
	effective := base * (1 - params.DegradationRate*float64(index))

	floor := base * degradationFloorRatio
	if effective < floor {
		effective = floor
	}

	return effective * (1 + s.jitter(variance, 0.1))
}

// leakValue grows monotonically with the point index; every 100th
// point simulates a garbage collection, dropping to 70% of the grown
// value. The most recent post-GC value floors subsequent points.
func (s *patternState) leakValue(base, variance float64, params PatternParams, index int) float64 {
	s.leakCurrent += base * params.LeakRate

	if index > 0 && index%leakGCInterval == 0 {
		s.leakCurrent *= leakGCRetention
		s.gcFloor = s.leakCurrent

		return s.leakCurrent
	}

	value := s.leakCurrent * (1 + s.jitter(variance, 0.05))
	if value < s.gcFloor {
		value = s.gcFloor
	}

	return value
}

// fragmentationValue cycles through three sub-phases, one picked
// pseudo-randomly at the start of each fixed-length cycle: gradual
// ramp, fast rise then fall, and sinusoidal oscillation.
func (s *patternState) fragmentationValue(base, variance float64, index int) float64 {
	offset := index % fragmentationCycle
	if offset == 0 {
		s.cyclePhase = s.rng.Intn(3)
	}

	var value float64

	switch s.cyclePhase {
	case 0:
		value = base * (1 + 0.3*float64(offset)/fragmentationCycle)
	case 1:
		half := fragmentationCycle / 2
		if offset < half {
			value = base * (1 + 0.5*float64(offset)/float64(half))
		} else {
			value = base * (1.5 - 0.5*float64(offset-half)/float64(fragmentationCycle-half))
		}
	default:
		value = base * (1 + 0.2*math.Sin(2*math.Pi*fragmentationPeriods*float64(offset)/fragmentationCycle))
	}

	return value * (1 + s.jitter(variance, 0.05))
}

// congestionValue shapes a sinusoidal daily-traffic envelope and
// occasionally enters a 10-point surge at a 2x-3x multiplier.
func (s *patternState) congestionValue(base, variance float64, index int) float64 {
	envelope := base * (1 + 0.4*math.Sin(2*math.Pi*float64(index)/congestionPeriod))

	if s.surgeRemaining > 0 {
		s.surgeRemaining--

		return envelope * s.surgeFactor
	}

	if s.rng.Float64() < congestionSurgeChance {
		s.surgeRemaining = congestionSurgeLength - 1
		s.surgeFactor = 2 + s.rng.Float64()

		return envelope * s.surgeFactor
	}

	return envelope * (1 + s.jitter(variance, 0.1))
}
