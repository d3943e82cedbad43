package host

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedAudio is returned for files the WAV decoder cannot read.
var ErrUnsupportedAudio = errors.New("unsupported audio file")

const wavFormatPCM = 1

// DecodeWAV reads a whole integer PCM WAV stream into memory, scaling
// samples to [-1, 1).
func DecodeWAV(r io.ReadSeeker) (*MemorySource, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedAudio)
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: WAV format %d (only integer PCM is supported)", ErrUnsupportedAudio, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAudio, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrUnsupportedAudio)
	}

	samples := scale(buf, int(d.BitDepth))
	return NewMemorySource(buf.Format.SampleRate, Deinterleave(samples, buf.Format.NumChannels)...)
}

func scale(buf *audio.IntBuffer, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	full := float32(int64(1) << (bitDepth - 1))

	// 8-bit WAV samples are unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float32(v-offset) / full
	}
	return out
}
