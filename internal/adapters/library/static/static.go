// Package static answers the metadata half of vamp.Plugin from a fixed
// vamp.Info. Script and WebAssembly backends describe their plugins once,
// at descriptor time, and embed Metadata in every instance.
package static

import "github.com/felixgeelhaar/vamphost/pkg/vamp"

// Metadata implements every side-effect free getter of vamp.Plugin.
type Metadata struct {
	info vamp.Info
}

// New normalises info and wraps it. A missing name falls back to the
// identifier; channel bounds default to mono.
func New(info vamp.Info) Metadata {
	if info.APIVersion == 0 {
		info.APIVersion = vamp.APIVersion
	}
	if info.Name == "" {
		info.Name = info.Identifier
	}
	if info.MinChannelCount < 1 {
		info.MinChannelCount = 1
	}
	if info.MaxChannelCount < info.MinChannelCount {
		info.MaxChannelCount = info.MinChannelCount
	}
	return Metadata{info: info}
}

// Info returns the wrapped description.
func (m Metadata) Info() vamp.Info { return m.info }

func (m Metadata) VampAPIVersion() int           { return m.info.APIVersion }
func (m Metadata) Identifier() string            { return m.info.Identifier }
func (m Metadata) Name() string                  { return m.info.Name }
func (m Metadata) Description() string           { return m.info.Description }
func (m Metadata) Maker() string                 { return m.info.Maker }
func (m Metadata) Copyright() string             { return m.info.Copyright }
func (m Metadata) PluginVersion() int            { return m.info.PluginVersion }
func (m Metadata) InputDomain() vamp.InputDomain { return m.info.InputDomain }
func (m Metadata) PreferredBlockSize() int       { return m.info.PreferredBlockSize }
func (m Metadata) PreferredStepSize() int        { return m.info.PreferredStepSize }
func (m Metadata) MinChannelCount() int          { return m.info.MinChannelCount }
func (m Metadata) MaxChannelCount() int          { return m.info.MaxChannelCount }
func (m Metadata) Programs() []string            { return m.info.Programs }

func (m Metadata) ParameterDescriptors() []vamp.ParameterDescriptor {
	return m.info.Parameters
}

func (m Metadata) OutputDescriptors() []vamp.OutputDescriptor {
	return m.info.Outputs
}

// Parameters tracks parameter values on the host side, clamped to their
// descriptors. Backends whose guest code does not report values back use
// it as the source of truth.
type Parameters struct {
	descriptors []vamp.ParameterDescriptor
	values      map[string]float32
	program     string
}

// NewParameters seeds every parameter with its default and selects the
// first program, if any.
func NewParameters(info vamp.Info) *Parameters {
	p := &Parameters{descriptors: info.Parameters, values: make(map[string]float32, len(info.Parameters))}
	for _, d := range info.Parameters {
		p.values[d.Identifier] = d.DefaultValue
	}
	if len(info.Programs) > 0 {
		p.program = info.Programs[0]
	}
	return p
}

// Get returns the current value of id, or 0 for an unknown parameter.
func (p *Parameters) Get(id string) float32 { return p.values[id] }

// Set clamps and stores value. It reports false for an unknown parameter.
func (p *Parameters) Set(id string, value float32) (float32, bool) {
	d, ok := vamp.FindParameter(p.descriptors, id)
	if !ok {
		return 0, false
	}
	v := d.Clamp(value)
	p.values[id] = v
	return v, true
}

// Program returns the selected program name.
func (p *Parameters) Program() string { return p.program }

// SelectProgram records name as current.
func (p *Parameters) SelectProgram(name string) { p.program = name }
