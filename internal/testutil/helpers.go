// Package testutil provides test helpers and utilities for vamphost tests.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

// WriteTempFile writes content to a file in the specified directory.
func WriteTempFile(t *testing.T, dir, filename, content string) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(t, err, "failed to create parent of: %s", filename)
	err = os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err, "failed to write temp file: %s", filename)

	return path
}

// WriteTempDir creates a subdirectory in the temp directory.
func WriteTempDir(t *testing.T, dir, dirname string) string {
	t.Helper()

	path := filepath.Join(dir, dirname)
	err := os.MkdirAll(path, 0o755)
	require.NoError(t, err, "failed to create temp subdirectory: %s", dirname)

	return path
}

// WriteCategoryFile writes a taxonomy file with one line per entry.
func WriteCategoryFile(t *testing.T, dir, filename string, lines ...string) string {
	t.Helper()
	return WriteTempFile(t, dir, filename, strings.Join(lines, "\n")+"\n")
}

// Sine returns n samples of a unit sine at freq Hz.
func Sine(n int, freq, sampleRate float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / sampleRate))
	}
	return out
}

// Constant returns n samples of value v.
func Constant(n int, v float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Clicks returns n samples of silence with a full-scale impulse train
// starting at every multiple of period samples.
func Clicks(n, period, width int) []float32 {
	out := make([]float32, n)
	for start := period; start < n; start += period {
		for i := start; i < start+width && i < n; i++ {
			if i%2 == 0 {
				out[i] = 1
			} else {
				out[i] = -1
			}
		}
	}
	return out
}

// WriteWAV encodes channels as a 16-bit PCM WAV file and returns its path.
// All channels must be the same length.
func WriteWAV(t *testing.T, dir, filename string, sampleRate int, channels ...[]float32) string {
	t.Helper()
	require.NotEmpty(t, channels, "at least one channel")

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	frames := len(channels[0])
	data := make([]int, 0, frames*len(channels))
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			v := math.Max(-1, math.Min(1, float64(ch[i])))
			data = append(data, int(math.Round(v*math.MaxInt16)))
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, len(channels), 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())

	return path
}
