package vamp

import "time"

// SampleType describes how an output's features are spaced in time.
type SampleType int

const (
	// OneSamplePerStep outputs emit one feature per process call, stamped
	// with the block timestamp.
	OneSamplePerStep SampleType = iota
	// FixedSampleRate outputs emit features at OutputDescriptor.SampleRate.
	FixedSampleRate
	// VariableSampleRate outputs stamp every feature explicitly.
	VariableSampleRate
)

// String returns the sample type name.
func (s SampleType) String() string {
	switch s {
	case OneSamplePerStep:
		return "one-sample-per-step"
	case FixedSampleRate:
		return "fixed-sample-rate"
	case VariableSampleRate:
		return "variable-sample-rate"
	default:
		return "unknown"
	}
}

// ParseSampleType accepts either the String form or the Go constant name.
func ParseSampleType(s string) (SampleType, bool) {
	switch s {
	case "one-sample-per-step", "OneSamplePerStep", "":
		return OneSamplePerStep, true
	case "fixed-sample-rate", "FixedSampleRate":
		return FixedSampleRate, true
	case "variable-sample-rate", "VariableSampleRate":
		return VariableSampleRate, true
	default:
		return OneSamplePerStep, false
	}
}

// OutputDescriptor describes one plugin output.
type OutputDescriptor struct {
	Identifier       string
	Name             string
	Description      string
	Unit             string
	HasFixedBinCount bool
	BinCount         int
	BinNames         []string
	HasKnownExtents  bool
	MinValue         float32
	MaxValue         float32
	IsQuantized      bool
	QuantizeStep     float32
	SampleType       SampleType
	SampleRate       float32
}

// Feature is one timestamped result emitted on an output.
type Feature struct {
	HasTimestamp bool
	Timestamp    time.Duration
	Values       []float32
	Label        string
}

// FeatureList holds the features emitted on one output.
type FeatureList []Feature

// FeatureSet maps an output index to the features emitted on it.
type FeatureSet map[int]FeatureList

// Add appends f to the list for output.
func (fs FeatureSet) Add(output int, f Feature) {
	fs[output] = append(fs[output], f)
}

// Len returns the total number of features across all outputs.
func (fs FeatureSet) Len() int {
	n := 0
	for _, l := range fs {
		n += len(l)
	}
	return n
}
