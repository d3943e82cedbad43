package testutil

import (
	"os"
	"testing"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginBuilder(t *testing.T) {
	t.Parallel()

	b := NewPluginBuilder("fake").
		WithDomain(vamp.FrequencyDomain).
		WithChannels(2, 4).
		WithPreferred(512, 256)

	p := b.Build()
	assert.Equal(t, "fake", p.Identifier())
	assert.Equal(t, vamp.FrequencyDomain, p.InputDomain())
	assert.Equal(t, 2, p.MinChannelCount())
	assert.Equal(t, 4, p.MaxChannelCount())
	assert.Equal(t, 512, p.PreferredBlockSize())

	other := b.Build()
	require.NoError(t, p.Initialise(2, 256, 512))
	assert.Zero(t, other.InitCount, "builds are independent")
}

func TestFakePlugin_RecordsProcess(t *testing.T) {
	t.Parallel()

	p := NewPluginBuilder("rec").Build()
	_, err := p.Process(vamp.NewBufferSet(1, 4), 0)
	require.ErrorIs(t, err, vamp.ErrNotInitialised)

	require.NoError(t, p.Initialise(1, 4, 4))
	in := vamp.MustWrapBuffers([][]float32{{1, 2, 3, 4}})
	_, err = p.Process(in, 5)
	require.NoError(t, err)

	in.Channel(0)[0] = 9
	require.Len(t, p.Calls, 1)
	assert.Equal(t, []float32{1, 2, 3, 4}, p.Calls[0].Inputs[0], "inputs are copied")
}

func TestFakePlugin_Parameters(t *testing.T) {
	t.Parallel()

	p := NewPluginBuilder("params").
		WithParameters(vamp.ParameterDescriptor{Identifier: "gain", MaxValue: 2, DefaultValue: 1}).
		Build()

	assert.Equal(t, float32(1), p.Parameter("gain"))
	p.SetParameter("gain", 5)
	assert.Equal(t, float32(2), p.Parameter("gain"))
	p.SetParameter("unknown", 5)
	assert.Zero(t, p.Parameter("unknown"))
}

func TestWriteWAV(t *testing.T) {
	t.Parallel()

	path := WriteWAV(t, t.TempDir(), "tone.wav", 8000, Sine(800, 440, 8000), Constant(800, 0.5))
	AssertFileExists(t, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(8000), dec.SampleRate)
}

func TestClicks(t *testing.T) {
	t.Parallel()

	c := Clicks(100, 40, 4)
	AssertAllZero(t, c[:40])
	assert.Equal(t, float32(1), c[40])
	assert.Equal(t, float32(-1), c[41])
	AssertAllZero(t, c[44:80])
}
