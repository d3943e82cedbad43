package host

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/vamphost/internal/adapters/logging"
	"github.com/felixgeelhaar/vamphost/internal/domain/hostext"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/internal/testutil"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		domain      vamp.InputDomain
		prefBlock   int
		prefStep    int
		block, step int
		want        Sizes
	}{
		{name: "time defaults", domain: vamp.TimeDomain, want: Sizes{BlockSize: 1024, StepSize: 1024}},
		{name: "frequency defaults", domain: vamp.FrequencyDomain, want: Sizes{BlockSize: 1024, StepSize: 512}},
		{name: "time preferred", domain: vamp.TimeDomain, prefBlock: 300, prefStep: 100, want: Sizes{BlockSize: 300, StepSize: 100}},
		{name: "frequency rounds up", domain: vamp.FrequencyDomain, prefBlock: 1000, want: Sizes{BlockSize: 1024, StepSize: 512, Rounded: true}},
		{name: "override beats preference", domain: vamp.TimeDomain, prefBlock: 300, block: 64, step: 16, want: Sizes{BlockSize: 64, StepSize: 16}},
		{name: "frequency keeps step", domain: vamp.FrequencyDomain, block: 2048, step: 256, want: Sizes{BlockSize: 2048, StepSize: 256}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := testutil.NewPluginBuilder("p").
				WithDomain(tt.domain).
				WithPreferred(tt.prefBlock, tt.prefStep).
				Build()
			assert.Equal(t, tt.want, ResolveSizes(p, tt.block, tt.step))
		})
	}
}

func TestNeedsSpectrum_ThroughAdapter(t *testing.T) {
	t.Parallel()

	inner := testutil.NewPluginBuilder("spectral").WithDomain(vamp.FrequencyDomain).Build()
	adapted := hostext.NewInputDomainAdapter(inner)
	require.Equal(t, vamp.TimeDomain, adapted.InputDomain())

	assert.True(t, NeedsSpectrum(adapted))
	assert.False(t, NeedsSpectrum(testutil.NewPluginBuilder("t").Build()))
}

func TestMemorySource_ReadAt(t *testing.T) {
	t.Parallel()

	src, err := NewMemorySource(8000, []float32{1, 2, 3, 4, 5}, []float32{-1, -2, -3, -4, -5})
	require.NoError(t, err)
	assert.Equal(t, 2, src.Channels())
	assert.EqualValues(t, 5, src.Frames())

	buf := vamp.NewBufferSet(2, 4)
	n, err := src.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []float32{4, 5, 0, 0}, buf.Channel(0))
	assert.Equal(t, []float32{-4, -5, 0, 0}, buf.Channel(1))

	n, err = src.ReadAt(buf, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
	testutil.AssertAllZero(t, buf.Channel(0))

	_, err = src.ReadAt(vamp.NewBufferSet(1, 4), 0)
	assert.ErrorIs(t, err, vamp.ErrInvalidChannelCount)
}

func TestNewMemorySource_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewMemorySource(8000)
	assert.ErrorIs(t, err, ErrNoAudio)

	_, err = NewMemorySource(0, []float32{1})
	assert.Error(t, err)

	_, err = NewMemorySource(8000, []float32{1, 2}, []float32{1})
	assert.ErrorIs(t, err, vamp.ErrRaggedBuffers)
}

func TestDeinterleave(t *testing.T) {
	t.Parallel()

	out := Deinterleave([]float32{1, -1, 2, -2, 3, -3}, 2)
	assert.Equal(t, [][]float32{{1, 2, 3}, {-1, -2, -3}}, out)
}

func TestDecodeWAV(t *testing.T) {
	t.Parallel()

	left := testutil.Sine(441, 441, 44100)
	right := testutil.Constant(441, 0.5)
	path := testutil.WriteWAV(t, t.TempDir(), "tone.wav", 44100, left, right)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := DecodeWAV(f)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Channels())
	assert.Equal(t, 44100, src.SampleRate())
	assert.EqualValues(t, 441, src.Frames())

	buf := vamp.NewBufferSet(2, 441)
	_, err = src.ReadAt(buf, 0)
	require.NoError(t, err)
	testutil.AssertSamplesInDelta(t, left, buf.Channel(0), 1e-3)
	testutil.AssertSamplesInDelta(t, right, buf.Channel(1), 1e-3)
}

func TestDecodeWAV_NotWAV(t *testing.T) {
	t.Parallel()

	path := testutil.WriteTempFile(t, t.TempDir(), "noise.wav", "this is not a riff file")
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = DecodeWAV(f)
	assert.ErrorIs(t, err, ErrUnsupportedAudio)
}

func countingPlugin() *testutil.PluginBuilder {
	return testutil.NewPluginBuilder("count").
		WithPreferred(4, 4).
		WithProcess(func(in vamp.BufferSet, _ time.Duration) vamp.FeatureSet {
			var sum float32
			for _, v := range in.Channel(0) {
				sum += v
			}
			fs := vamp.FeatureSet{}
			fs.Add(0, vamp.Feature{Values: []float32{sum}})
			return fs
		})
}

func TestSession_Run(t *testing.T) {
	t.Parallel()

	remaining := vamp.FeatureSet{}
	remaining.Add(0, vamp.Feature{Label: "end"})
	remaining.Add(0, vamp.Feature{HasTimestamp: true, Timestamp: time.Second, Label: "fixed"})
	p := countingPlugin().WithRemaining(remaining).Build()

	src, err := NewMemorySource(4, testutil.Constant(10, 1))
	require.NoError(t, err)

	s, err := NewSession(p, src, Options{Logger: logging.NewNopLogger()})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, StateCreated, s.State())

	var got []vamp.Feature
	stats, err := s.Run(context.Background(), func(output int, f vamp.Feature) error {
		assert.Zero(t, output)
		got = append(got, f)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateFinished, s.State())

	assert.Equal(t, Stats{Blocks: 3, Features: 5, Frames: 10}, stats)
	assert.Equal(t, [3]int{1, 4, 4}, p.InitArgs)

	require.Len(t, got, 5)
	assert.Equal(t, []float32{4}, got[0].Values)
	assert.Equal(t, time.Duration(0), got[0].Timestamp)
	assert.Equal(t, time.Second, got[1].Timestamp)
	assert.Equal(t, []float32{2}, got[2].Values, "last block is zero padded")
	assert.Equal(t, 2*time.Second, got[2].Timestamp)
	assert.Equal(t, 2500*time.Millisecond, got[3].Timestamp, "remaining features land at the end")
	assert.Equal(t, time.Second, got[4].Timestamp)
}

func TestSession_MixesDown(t *testing.T) {
	t.Parallel()

	p := countingPlugin().Build()
	src, err := NewMemorySource(4, testutil.Constant(4, 1), testutil.Constant(4, 0))
	require.NoError(t, err)

	s, err := NewSession(p, src, Options{RunID: "run-1"})
	require.NoError(t, err)
	require.NoError(t, s.Initialise(context.Background()))
	assert.Equal(t, StateInitialised, s.State())
	assert.True(t, s.MixesDown())
	assert.Equal(t, 1, s.Channels())
	assert.Equal(t, "run-1", s.ID())

	_, err = s.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, p.Calls, 1)
	assert.Equal(t, []float32{0.5, 0.5, 0.5, 0.5}, p.Calls[0].Inputs[0])
}

func TestSession_ChannelsOutOfRange(t *testing.T) {
	t.Parallel()

	p := countingPlugin().WithChannels(2, 2).Build()
	src, err := NewMemorySource(4, testutil.Constant(4, 1))
	require.NoError(t, err)

	s, err := NewSession(p, src, Options{})
	require.NoError(t, err)
	err = s.Initialise(context.Background())
	assert.ErrorIs(t, err, ErrChannelsOutOfRange)
	assert.Equal(t, StateError, s.State())
	assert.Zero(t, p.InitCount)

	_, err = s.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestSession_InitialiseError(t *testing.T) {
	t.Parallel()

	p := countingPlugin().WithInitError(vamp.ErrInvalidBlockSize).Build()
	src, err := NewMemorySource(4, testutil.Constant(4, 1))
	require.NoError(t, err)

	s, err := NewSession(p, src, Options{})
	require.NoError(t, err)
	_, err = s.Run(context.Background(), nil)
	assert.ErrorIs(t, err, vamp.ErrInvalidBlockSize)
	assert.Equal(t, StateError, s.State())
}

func TestSession_Cancelled(t *testing.T) {
	t.Parallel()

	p := countingPlugin().Build()
	src, err := NewMemorySource(4, testutil.Constant(16, 1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewSession(p, src, Options{})
	require.NoError(t, err)

	_, err = s.Run(ctx, func(int, vamp.Feature) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, s.State())
	assert.Len(t, p.Calls, 1)
}

func TestSession_EmitError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	src, err := NewMemorySource(4, testutil.Constant(8, 1))
	require.NoError(t, err)

	s, err := NewSession(countingPlugin().Build(), src, Options{})
	require.NoError(t, err)
	stats, err := s.Run(context.Background(), func(int, vamp.Feature) error { return stop })
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, stats.Blocks)
}

func TestSession_LogsToContextLogger(t *testing.T) {
	t.Parallel()

	p := countingPlugin().WithChannels(2, 2).Build()
	src, err := NewMemorySource(4, testutil.Constant(4, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	ctx := ports.ContextWithLogger(context.Background(), logging.NewConsoleLogger(
		logging.WithOutput(&buf),
		logging.WithTimestamp(false),
		logging.WithLevelLabel(false),
	))

	s, err := NewSession(p, src, Options{RunID: "r7"})
	require.NoError(t, err)
	require.ErrorIs(t, s.Initialise(ctx), ErrChannelsOutOfRange)
	assert.Contains(t, buf.String(), "run failed")
	assert.Contains(t, buf.String(), "run=r7 plugin=count")
}
