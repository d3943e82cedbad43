package onsets

import (
	"context"
	"math/rand"
	"testing"

	"github.com/felixgeelhaar/vamphost/internal/domain/host"
	"github.com/felixgeelhaar/vamphost/internal/domain/hostext"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = 44100

// noisyClicks returns quiet noise with a unit impulse at each position.
func noisyClicks(n int, at ...int) []float32 {
	r := rand.New(rand.NewSource(1))
	out := make([]float32, n)
	for i := range out {
		out[i] = (r.Float32()*2 - 1) * 1e-3
	}
	for _, i := range at {
		out[i] = 1
	}
	return out
}

func TestDetector_Describe(t *testing.T) {
	t.Parallel()

	info := vamp.Describe(New(rate))
	assert.Equal(t, Identifier, info.Identifier)
	assert.Equal(t, vamp.FrequencyDomain, info.InputDomain)
	assert.Equal(t, 1024, info.PreferredBlockSize)
	require.Len(t, info.Outputs, 2)
	assert.Equal(t, vamp.VariableSampleRate, info.Outputs[OutputOnsets].SampleType)
	assert.Equal(t, float32(rate), info.Outputs[OutputOnsets].SampleRate)
	assert.Equal(t, 1, info.OutputIndex("detectionfunction"))
}

func TestDetector_Parameters(t *testing.T) {
	t.Parallel()

	p := New(rate)
	assert.Equal(t, float32(3), p.Parameter("threshold"))
	assert.Equal(t, float32(40), p.Parameter("sensitivity"))

	p.SetParameter("threshold", 50)
	p.SetParameter("sensitivity", -1)
	p.SetParameter("unknown", 1)
	assert.Equal(t, float32(20), p.Parameter("threshold"))
	assert.Equal(t, float32(0), p.Parameter("sensitivity"))
	assert.Zero(t, p.Parameter("unknown"))
}

func TestDetector_Initialise(t *testing.T) {
	t.Parallel()

	p := New(rate)
	_, err := p.Process(vamp.NewBufferSet(1, 1026), 0)
	assert.ErrorIs(t, err, vamp.ErrNotInitialised)

	assert.ErrorIs(t, p.Initialise(2, 512, 1024), vamp.ErrInvalidChannelCount)
	assert.ErrorIs(t, p.Initialise(1, 0, 1024), vamp.ErrInvalidStepSize)
	require.NoError(t, p.Initialise(1, 512, 1024))

	_, err = p.Process(vamp.NewBufferSet(1, 16), 0)
	assert.ErrorIs(t, err, vamp.ErrInvalidBlockSize)
}

func TestDetector_FindsClicks(t *testing.T) {
	t.Parallel()

	// Each click sits three quarters into one block and a quarter into the
	// next, so the onset is reported at the start of the earlier block.
	samples := noisyClicks(24576, 8448, 16640)
	src, err := host.NewMemorySource(rate, samples)
	require.NoError(t, err)

	p := hostext.NewInputDomainAdapter(New(rate))
	s, err := host.NewSession(p, src, host.Options{})
	require.NoError(t, err)

	var onsets []vamp.Feature
	var df []float32
	stats, err := s.Run(context.Background(), func(output int, f vamp.Feature) error {
		switch output {
		case OutputOnsets:
			onsets = append(onsets, f)
		case OutputDetectionFunction:
			df = append(df, f.Values[0])
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, host.Sizes{BlockSize: 1024, StepSize: 512}, s.Sizes())
	assert.Equal(t, 48, stats.Blocks)
	assert.Len(t, df, 48)
	assert.Zero(t, df[0], "first block has no prior spectrum")

	require.Len(t, onsets, 2)
	assert.InDelta(t, float64(vamp.FrameToRealTime(7680, rate)), float64(onsets[0].Timestamp), 1e3)
	assert.InDelta(t, float64(vamp.FrameToRealTime(15872, rate)), float64(onsets[1].Timestamp), 1e3)
}

func TestDetector_Reset(t *testing.T) {
	t.Parallel()

	p := New(rate)
	require.NoError(t, p.Initialise(1, 512, 1024))

	spectrum := vamp.NewBufferSet(1, 1026)
	for i := range spectrum.Channel(0) {
		spectrum.Channel(0)[i] = 1
	}
	_, err := p.Process(spectrum, 0)
	require.NoError(t, err)

	for i := range spectrum.Channel(0) {
		spectrum.Channel(0)[i] = 10
	}
	fs, err := p.Process(spectrum, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{511}, fs[OutputDetectionFunction][0].Values)

	p.Reset()
	fs, err = p.Process(spectrum, 0)
	require.NoError(t, err)
	assert.Equal(t, []float32{0}, fs[OutputDetectionFunction][0].Values)
}
