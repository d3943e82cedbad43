package testutil

import (
	"time"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// ProcessCall records one Process invocation on a FakePlugin.
type ProcessCall struct {
	Inputs    [][]float32
	Timestamp time.Duration
}

// FakePlugin is a configurable vamp.Plugin that records everything the host
// does to it. Input buffers are copied on every Process call.
type FakePlugin struct {
	vamp.Base

	ID         string
	Domain     vamp.InputDomain
	MinCh      int
	MaxCh      int
	PrefBlock  int
	PrefStep   int
	Outputs    []vamp.OutputDescriptor
	Params     []vamp.ParameterDescriptor
	values     map[string]float32
	InitErr    error
	ProcessFn  func(inputs vamp.BufferSet, ts time.Duration) vamp.FeatureSet
	Remaining  vamp.FeatureSet
	Calls      []ProcessCall
	InitArgs   [3]int
	InitCount  int
	ResetCount int
	CloseCount int
}

func (p *FakePlugin) Identifier() string            { return p.ID }
func (p *FakePlugin) Name() string                  { return "Fake " + p.ID }
func (p *FakePlugin) Maker() string                 { return "testutil" }
func (p *FakePlugin) PluginVersion() int            { return 1 }
func (p *FakePlugin) InputDomain() vamp.InputDomain { return p.Domain }
func (p *FakePlugin) PreferredBlockSize() int       { return p.PrefBlock }
func (p *FakePlugin) PreferredStepSize() int        { return p.PrefStep }
func (p *FakePlugin) MinChannelCount() int          { return p.MinCh }
func (p *FakePlugin) MaxChannelCount() int          { return p.MaxCh }

func (p *FakePlugin) ParameterDescriptors() []vamp.ParameterDescriptor { return p.Params }

func (p *FakePlugin) OutputDescriptors() []vamp.OutputDescriptor { return p.Outputs }

func (p *FakePlugin) Parameter(id string) float32 {
	if v, ok := p.values[id]; ok {
		return v
	}
	if d, ok := vamp.FindParameter(p.Params, id); ok {
		return d.DefaultValue
	}
	return 0
}

func (p *FakePlugin) SetParameter(id string, value float32) {
	d, ok := vamp.FindParameter(p.Params, id)
	if !ok {
		return
	}
	if p.values == nil {
		p.values = map[string]float32{}
	}
	p.values[id] = d.Clamp(value)
}

func (p *FakePlugin) Initialise(channels, stepSize, blockSize int) error {
	p.InitCount++
	p.InitArgs = [3]int{channels, stepSize, blockSize}
	if p.InitErr != nil {
		return p.InitErr
	}
	return vamp.CheckChannels(p, channels)
}

func (p *FakePlugin) Reset() {
	p.ResetCount++
	p.Calls = nil
}

func (p *FakePlugin) Process(inputs vamp.BufferSet, ts time.Duration) (vamp.FeatureSet, error) {
	if p.InitCount == 0 {
		return nil, vamp.ErrNotInitialised
	}
	call := ProcessCall{Timestamp: ts, Inputs: make([][]float32, inputs.Channels())}
	for c := range call.Inputs {
		call.Inputs[c] = append([]float32(nil), inputs.Channel(c)...)
	}
	p.Calls = append(p.Calls, call)

	if p.ProcessFn != nil {
		return p.ProcessFn(inputs, ts), nil
	}
	return vamp.FeatureSet{}, nil
}

func (p *FakePlugin) RemainingFeatures() (vamp.FeatureSet, error) {
	if p.Remaining == nil {
		return vamp.FeatureSet{}, nil
	}
	return p.Remaining, nil
}

func (p *FakePlugin) Close() error {
	p.CloseCount++
	return nil
}

// PluginBuilder builds FakePlugins.
type PluginBuilder struct {
	plugin FakePlugin
}

// NewPluginBuilder starts a mono time-domain plugin with the given
// identifier and a single one-bin output named "out".
func NewPluginBuilder(id string) *PluginBuilder {
	return &PluginBuilder{plugin: FakePlugin{
		ID:     id,
		Domain: vamp.TimeDomain,
		MinCh:  1,
		MaxCh:  1,
		Outputs: []vamp.OutputDescriptor{{
			Identifier:       "out",
			Name:             "Output",
			HasFixedBinCount: true,
			BinCount:         1,
			SampleType:       vamp.OneSamplePerStep,
		}},
	}}
}

// WithDomain sets the input domain.
func (b *PluginBuilder) WithDomain(d vamp.InputDomain) *PluginBuilder {
	b.plugin.Domain = d
	return b
}

// WithChannels sets the supported channel range.
func (b *PluginBuilder) WithChannels(minCh, maxCh int) *PluginBuilder {
	b.plugin.MinCh = minCh
	b.plugin.MaxCh = maxCh
	return b
}

// WithPreferred sets the preferred block and step sizes.
func (b *PluginBuilder) WithPreferred(block, step int) *PluginBuilder {
	b.plugin.PrefBlock = block
	b.plugin.PrefStep = step
	return b
}

// WithOutputs replaces the output descriptors.
func (b *PluginBuilder) WithOutputs(outputs ...vamp.OutputDescriptor) *PluginBuilder {
	b.plugin.Outputs = outputs
	return b
}

// WithParameters sets the parameter descriptors.
func (b *PluginBuilder) WithParameters(params ...vamp.ParameterDescriptor) *PluginBuilder {
	b.plugin.Params = params
	return b
}

// WithProcess sets the function that produces features for every block.
func (b *PluginBuilder) WithProcess(fn func(vamp.BufferSet, time.Duration) vamp.FeatureSet) *PluginBuilder {
	b.plugin.ProcessFn = fn
	return b
}

// WithRemaining sets the features returned at end of stream.
func (b *PluginBuilder) WithRemaining(fs vamp.FeatureSet) *PluginBuilder {
	b.plugin.Remaining = fs
	return b
}

// WithInitError makes Initialise fail with err.
func (b *PluginBuilder) WithInitError(err error) *PluginBuilder {
	b.plugin.InitErr = err
	return b
}

// Build returns a fresh plugin. Each call returns an independent copy.
func (b *PluginBuilder) Build() *FakePlugin {
	p := b.plugin
	return &p
}

// Descriptor wraps the builder as a vamp.Descriptor that creates a new
// plugin per call.
func (b *PluginBuilder) Descriptor() *vamp.Descriptor {
	return &vamp.Descriptor{
		Identifier: b.plugin.ID,
		New: func(rate float32) vamp.Plugin {
			p := b.Build()
			p.InputSampleRate = rate
			return p
		},
	}
}

var _ vamp.Plugin = (*FakePlugin)(nil)
