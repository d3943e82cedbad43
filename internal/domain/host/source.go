package host

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// ErrNoAudio is returned for a source without channels or frames.
var ErrNoAudio = errors.New("audio source is empty")

// Source supplies multichannel audio for a run.
type Source interface {
	Channels() int
	SampleRate() int
	// Frames returns the number of sample frames.
	Frames() int64
	// ReadAt fills dst with frames starting at frame, one buffer channel
	// per source channel, and returns how many frames were available.
	// Buffer positions past the end of the audio are zeroed.
	ReadAt(dst vamp.BufferSet, frame int64) (int, error)
}

// MemorySource is a Source over de-interleaved samples held in memory.
type MemorySource struct {
	rate    int
	samples [][]float32
}

// NewMemorySource creates a source from one slice per channel.
func NewMemorySource(sampleRate int, channels ...[]float32) (*MemorySource, error) {
	if len(channels) == 0 {
		return nil, ErrNoAudio
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if _, err := vamp.WrapBuffers(channels); err != nil {
		return nil, err
	}
	return &MemorySource{rate: sampleRate, samples: channels}, nil
}

// Deinterleave splits interleaved frames into channels.
func Deinterleave(interleaved []float32, channels int) [][]float32 {
	frames := len(interleaved) / channels
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			out[c][i] = interleaved[i*channels+c]
		}
	}
	return out
}

func (s *MemorySource) Channels() int { return len(s.samples) }

func (s *MemorySource) SampleRate() int { return s.rate }

func (s *MemorySource) Frames() int64 { return int64(len(s.samples[0])) }

func (s *MemorySource) ReadAt(dst vamp.BufferSet, frame int64) (int, error) {
	if dst.Channels() != len(s.samples) {
		return 0, fmt.Errorf("%w: source has %d, buffer has %d",
			vamp.ErrInvalidChannelCount, len(s.samples), dst.Channels())
	}
	dst.Zero()
	if frame < 0 || frame >= s.Frames() {
		return 0, nil
	}
	n := 0
	for c, samples := range s.samples {
		n = copy(dst.Channel(c), samples[frame:])
	}
	return n, nil
}

var _ Source = (*MemorySource)(nil)
