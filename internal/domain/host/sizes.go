package host

import (
	"github.com/felixgeelhaar/vamphost/internal/domain/fft"
	"github.com/felixgeelhaar/vamphost/internal/domain/hostext"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// DefaultBlockSize is used when neither the caller nor the plugin names a
// block size.
const DefaultBlockSize = 1024

// Sizes is the block and step size a run uses.
type Sizes struct {
	BlockSize int
	StepSize  int
	// Rounded reports that the block size was raised to a power of two.
	Rounded bool
}

// ResolveSizes picks block and step sizes for p. Non-zero block or step
// override the plugin's preferences. Plugins that need spectra get a
// power-of-two block and, by default, half-block steps. Others step by a
// whole block.
func ResolveSizes(p vamp.Plugin, block, step int) Sizes {
	if block <= 0 {
		block = p.PreferredBlockSize()
	}
	if block <= 0 {
		block = DefaultBlockSize
	}
	if step <= 0 {
		step = p.PreferredStepSize()
	}

	s := Sizes{BlockSize: block, StepSize: step}
	if NeedsSpectrum(p) {
		if !fft.IsPowerOfTwo(block) {
			s.BlockSize = fft.NextPowerOfTwo(block)
			s.Rounded = true
		}
		if s.StepSize <= 0 {
			s.StepSize = s.BlockSize / 2
		}
		return s
	}
	if s.StepSize <= 0 {
		s.StepSize = s.BlockSize
	}
	return s
}

// NeedsSpectrum reports whether p, or the plugin an input domain adapter
// in p's stack converts for, is frequency-domain.
func NeedsSpectrum(p vamp.Plugin) bool {
	if p.InputDomain() == vamp.FrequencyDomain {
		return true
	}
	if a, ok := hostext.FindWrapper[*hostext.InputDomainAdapter](p); ok {
		return a.Unwrap().InputDomain() == vamp.FrequencyDomain
	}
	return false
}
