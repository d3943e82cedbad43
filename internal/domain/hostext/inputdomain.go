package hostext

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/vamphost/internal/domain/fft"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// InputDomainAdapter presents a frequency-domain plugin as a time-domain
// one. Each block of samples is Hann-windowed, transformed and packed into
// blockSize/2+1 interleaved (real, imaginary) bins per channel before being
// forwarded. Time-domain plugins pass through untouched.
type InputDomainAdapter struct {
	*Wrapper

	channels  int
	blockSize int

	window []float64
	ri     []float64
	ro     []float64
	io     []float64
	freq   vamp.BufferSet

	initialised bool
}

// NewInputDomainAdapter wraps p and takes ownership of it.
func NewInputDomainAdapter(p vamp.Plugin) *InputDomainAdapter {
	return &InputDomainAdapter{Wrapper: NewWrapper(p)}
}

func (a *InputDomainAdapter) converting() bool {
	return a.Unwrap().InputDomain() == vamp.FrequencyDomain
}

// InputDomain always reports time domain.
func (a *InputDomainAdapter) InputDomain() vamp.InputDomain { return vamp.TimeDomain }

// Initialise allocates the transform buffers and initialises the wrapped
// plugin. blockSize must be a power of two when converting.
func (a *InputDomainAdapter) Initialise(channels, stepSize, blockSize int) error {
	if !a.converting() {
		return a.Unwrap().Initialise(channels, stepSize, blockSize)
	}

	a.initialised = false
	if channels < 1 {
		return fmt.Errorf("%w: %d", vamp.ErrInvalidChannelCount, channels)
	}
	if !fft.IsPowerOfTwo(blockSize) {
		return fmt.Errorf("%w: %d is not a power of two", vamp.ErrInvalidBlockSize, blockSize)
	}

	a.channels = channels
	a.blockSize = blockSize
	a.window = fft.HannWindow(blockSize)
	a.ri = make([]float64, blockSize)
	a.ro = make([]float64, blockSize)
	a.io = make([]float64, blockSize)
	a.freq = vamp.NewBufferSet(channels, 2*fft.Bins(blockSize))

	if err := a.Unwrap().Initialise(channels, stepSize, blockSize); err != nil {
		return err
	}
	a.initialised = true
	return nil
}

// Process converts inputs to packed spectra and forwards them with the
// caller's timestamp. Channels shorter than the block size are zero padded.
func (a *InputDomainAdapter) Process(inputs vamp.BufferSet, timestamp time.Duration) (vamp.FeatureSet, error) {
	if !a.converting() {
		return a.Unwrap().Process(inputs, timestamp)
	}
	if !a.initialised {
		return nil, vamp.ErrNotInitialised
	}
	if inputs.Channels() != a.channels {
		return nil, fmt.Errorf("%w: got %d channels, initialised with %d",
			vamp.ErrInvalidChannelCount, inputs.Channels(), a.channels)
	}

	for c := 0; c < a.channels; c++ {
		in := inputs.Channel(c)
		n := min(len(in), a.blockSize)
		for i := 0; i < n; i++ {
			a.ri[i] = float64(in[i]) * a.window[i]
		}
		clear(a.ri[n:])

		if err := fft.Transform(a.blockSize, false, a.ri, nil, a.ro, a.io); err != nil {
			return nil, err
		}
		fft.Pack(a.blockSize, a.ro, a.io, a.freq.Channel(c))
	}

	return a.Unwrap().Process(a.freq, timestamp)
}

var _ vamp.Plugin = (*InputDomainAdapter)(nil)
