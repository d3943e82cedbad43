package vamp

import "math"

// ParameterDescriptor describes one bounded numeric plugin parameter.
type ParameterDescriptor struct {
	Identifier   string
	Name         string
	Description  string
	Unit         string
	MinValue     float32
	MaxValue     float32
	DefaultValue float32
	IsQuantized  bool
	QuantizeStep float32
	ValueNames   []string
}

// Clamp limits value to the declared range and snaps it to the quantize
// step when the parameter is quantized.
func (p ParameterDescriptor) Clamp(value float32) float32 {
	if value < p.MinValue {
		value = p.MinValue
	}
	if value > p.MaxValue {
		value = p.MaxValue
	}
	if p.IsQuantized && p.QuantizeStep > 0 {
		steps := math.Round(float64((value - p.MinValue) / p.QuantizeStep))
		value = p.MinValue + float32(steps)*p.QuantizeStep
		if value > p.MaxValue {
			value = p.MaxValue
		}
	}
	return value
}

// FindParameter returns the descriptor with the given identifier.
func FindParameter(params []ParameterDescriptor, id string) (ParameterDescriptor, bool) {
	for _, p := range params {
		if p.Identifier == id {
			return p, true
		}
	}
	return ParameterDescriptor{}, false
}
