package vamp

import (
	"errors"
	"fmt"
)

// ErrRaggedBuffers is returned when channels of different lengths are
// wrapped into one BufferSet.
var ErrRaggedBuffers = errors.New("buffer channels differ in length")

// BufferSet is a fixed number of equal-length sample channels. Channel
// slices are shared, not copied, so a BufferSet built from another one
// forwards the same storage.
type BufferSet struct {
	channels [][]float32
	length   int
}

// NewBufferSet allocates zeroed storage for channels of length samples each.
func NewBufferSet(channels, length int) BufferSet {
	if channels < 0 {
		channels = 0
	}
	if length < 0 {
		length = 0
	}
	data := make([]float32, channels*length)
	chs := make([][]float32, channels)
	for c := range chs {
		chs[c] = data[c*length : (c+1)*length : (c+1)*length]
	}
	return BufferSet{channels: chs, length: length}
}

// WrapBuffers builds a BufferSet over existing channel slices.
func WrapBuffers(channels [][]float32) (BufferSet, error) {
	if len(channels) == 0 {
		return BufferSet{}, nil
	}
	length := len(channels[0])
	for i, ch := range channels {
		if len(ch) != length {
			return BufferSet{}, fmt.Errorf("%w: channel %d has %d samples, want %d",
				ErrRaggedBuffers, i, len(ch), length)
		}
	}
	chs := make([][]float32, len(channels))
	copy(chs, channels)
	return BufferSet{channels: chs, length: length}, nil
}

// MustWrapBuffers is WrapBuffers for callers that already know the channels
// are equal length. It panics otherwise.
func MustWrapBuffers(channels [][]float32) BufferSet {
	b, err := WrapBuffers(channels)
	if err != nil {
		panic(err)
	}
	return b
}

// Channels returns the channel count.
func (b BufferSet) Channels() int {
	return len(b.channels)
}

// Len returns the number of samples in every channel.
func (b BufferSet) Len() int {
	return b.length
}

// Channel returns the samples of channel i.
func (b BufferSet) Channel(i int) []float32 {
	return b.channels[i]
}

// Slice returns a view over the first n channels without copying.
func (b BufferSet) Slice(n int) BufferSet {
	if n > len(b.channels) {
		n = len(b.channels)
	}
	if n < 0 {
		n = 0
	}
	return BufferSet{channels: b.channels[:n:n], length: b.length}
}

// Zero sets every sample to zero.
func (b BufferSet) Zero() {
	for _, ch := range b.channels {
		clear(ch)
	}
}
