package models

import "time"

// MetricType identifies the simulated signal a stream represents. The
// type determines the sampling interval and display unit.
type MetricType string

const (
	MetricTypeCPU     MetricType = "cpu"
	MetricTypeMemory  MetricType = "memory"
	MetricTypeDisk    MetricType = "disk"
	MetricTypeNetwork MetricType = "network"
)

// SamplingInterval returns how often the given metric type is sampled.
// Fast-changing signals sample sub-second, slow ones multi-second.
func (t MetricType) SamplingInterval() time.Duration {
	switch t {
	case MetricTypeNetwork:
		return 500 * time.Millisecond
	case MetricTypeCPU:
		return time.Second
	case MetricTypeMemory:
		return 2 * time.Second
	case MetricTypeDisk:
		return 5 * time.Second
	default:
		return time.Second
	}
}

// Unit returns the display unit for the metric type.
func (t MetricType) Unit() string {
	switch t {
	case MetricTypeCPU:
		return "percent"
	case MetricTypeMemory, MetricTypeDisk:
		return "megabytes"
	case MetricTypeNetwork:
		return "kilobytes_per_second"
	default:
		return "units"
	}
}

// PatternType names the statistical shape governing how a synthetic
// metric evolves over time.
type PatternType string

const (
	PatternStable        PatternType = "stable"
	PatternSpike         PatternType = "spike"
	PatternDegradation   PatternType = "degradation"
	PatternLeak          PatternType = "leak"
	PatternFragmentation PatternType = "fragmentation"
	PatternCongestion    PatternType = "congestion"
)

// MetricPoint is one timestamped sample in a stream.
type MetricPoint struct {
	Timestamp time.Time         `json:"timestamp"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Generated bool              `json:"generated"`
}

// StreamMetadata holds statistics derived from the full point sequence.
type StreamMetadata struct {
	PointCount int         `json:"point_count"`
	AvgValue   float64     `json:"avg_value"`
	MinValue   float64     `json:"min_value"`
	MaxValue   float64     `json:"max_value"`
	Pattern    PatternType `json:"pattern"`
}

// MetricStream is an ordered sequence of points plus derived metadata.
// Points are in non-decreasing timestamp order.
type MetricStream struct {
	Name     string         `json:"name"`
	Type     MetricType     `json:"type"`
	Unit     string         `json:"unit"`
	Points   []MetricPoint  `json:"points"`
	Metadata StreamMetadata `json:"metadata"`
}
