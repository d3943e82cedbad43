package hostext

import (
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// ChannelAdapter lets a host supply any positive number of channels to a
// plugin whose supported channel range is narrower.
//
// Fewer channels than the plugin's minimum: a single input channel is
// offered to every plugin channel; otherwise the extra plugin channels are
// silent. More channels than the plugin's maximum: a mono plugin receives
// the mean of all input channels; any other plugin receives the first
// maximum-count input channels.
type ChannelAdapter struct {
	*Wrapper

	inputChannels  int
	pluginChannels int
	length         int

	forward [][]float32
	fillers vamp.BufferSet
	mix     []float32

	initialised bool
}

// NewChannelAdapter wraps p and takes ownership of it.
func NewChannelAdapter(p vamp.Plugin) *ChannelAdapter {
	return &ChannelAdapter{Wrapper: NewWrapper(p)}
}

// MinChannelCount reports the adapted lower bound.
func (a *ChannelAdapter) MinChannelCount() int { return 1 }

// MaxChannelCount reports the adapted upper bound, which is unbounded.
func (a *ChannelAdapter) MaxChannelCount() int { return math.MaxInt32 }

// PluginChannels returns the channel count the wrapped plugin was
// initialised with, or zero before a successful Initialise.
func (a *ChannelAdapter) PluginChannels() int {
	if !a.initialised {
		return 0
	}
	return a.pluginChannels
}

// Initialise picks the plugin channel count for the given input channel
// count and initialises the wrapped plugin with it.
func (a *ChannelAdapter) Initialise(channels, stepSize, blockSize int) error {
	a.initialised = false
	a.forward = nil
	a.fillers = vamp.BufferSet{}
	a.mix = nil

	if channels < 1 {
		return fmt.Errorf("%w: %d input channels", vamp.ErrInvalidChannelCount, channels)
	}
	if blockSize < 1 {
		return fmt.Errorf("%w: %d", vamp.ErrInvalidBlockSize, blockSize)
	}

	inner := a.Unwrap()
	minch, maxch := inner.MinChannelCount(), inner.MaxChannelCount()

	a.length = blockSize
	if inner.InputDomain() == vamp.FrequencyDomain {
		a.length = blockSize + 2
	}
	a.inputChannels = channels

	switch {
	case channels < minch:
		a.pluginChannels = minch
		a.forward = make([][]float32, minch)
		if channels > 1 {
			a.fillers = vamp.NewBufferSet(minch-channels, a.length)
		}
	case channels > maxch:
		a.pluginChannels = maxch
		if maxch == 1 {
			a.mix = make([]float32, a.length)
		}
	default:
		a.pluginChannels = channels
	}

	if err := inner.Initialise(a.pluginChannels, stepSize, blockSize); err != nil {
		return err
	}
	a.initialised = true
	return nil
}

// Process reshapes inputs to the plugin channel count and forwards them.
func (a *ChannelAdapter) Process(inputs vamp.BufferSet, timestamp time.Duration) (vamp.FeatureSet, error) {
	if !a.initialised {
		return nil, vamp.ErrNotInitialised
	}
	if inputs.Channels() != a.inputChannels {
		return nil, fmt.Errorf("%w: got %d channels, initialised with %d",
			vamp.ErrInvalidChannelCount, inputs.Channels(), a.inputChannels)
	}

	var (
		shaped vamp.BufferSet
		err    error
	)
	switch {
	case a.inputChannels < a.pluginChannels:
		shaped, err = a.fill(inputs)
	case a.inputChannels > a.pluginChannels && a.pluginChannels == 1:
		shaped, err = a.mixdown(inputs)
	case a.inputChannels > a.pluginChannels:
		shaped = inputs.Slice(a.pluginChannels)
	default:
		shaped = inputs
	}
	if err != nil {
		return nil, err
	}

	return a.Unwrap().Process(shaped, timestamp)
}

func (a *ChannelAdapter) fill(inputs vamp.BufferSet) (vamp.BufferSet, error) {
	if a.inputChannels == 1 {
		mono := inputs.Channel(0)
		for i := range a.forward {
			a.forward[i] = mono
		}
		return vamp.WrapBuffers(a.forward)
	}

	if inputs.Len() != a.length {
		return vamp.BufferSet{}, fmt.Errorf("%w: got %d samples per channel, want %d",
			vamp.ErrRaggedBuffers, inputs.Len(), a.length)
	}
	for i := range a.forward {
		if i < a.inputChannels {
			a.forward[i] = inputs.Channel(i)
		} else {
			a.forward[i] = a.fillers.Channel(i - a.inputChannels)
		}
	}
	return vamp.WrapBuffers(a.forward)
}

func (a *ChannelAdapter) mixdown(inputs vamp.BufferSet) (vamp.BufferSet, error) {
	n := inputs.Len()
	if n > len(a.mix) {
		n = len(a.mix)
	}

	copy(a.mix, inputs.Channel(0)[:n])
	clear(a.mix[n:])
	for c := 1; c < a.inputChannels; c++ {
		ch := inputs.Channel(c)
		for i := 0; i < n; i++ {
			a.mix[i] += ch[i]
		}
	}
	scale := float32(a.inputChannels)
	for i := 0; i < n; i++ {
		a.mix[i] /= scale
	}

	return vamp.WrapBuffers([][]float32{a.mix})
}

var _ vamp.Plugin = (*ChannelAdapter)(nil)
