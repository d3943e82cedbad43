// Package hostext provides host-side plugin wrappers that reconcile what a
// plugin asks for with what a host can supply.
//
// Every wrapper satisfies vamp.Plugin, owns exactly one inner plugin, and
// forwards every call it does not need to change. Wrappers stack freely:
// the host drives the outermost one through the same lifecycle it would use
// for a bare plugin.
package hostext

import (
	"time"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Wrapper forwards every vamp.Plugin call to the plugin it owns. Adapters
// embed it and redefine only the calls whose contract they change.
type Wrapper struct {
	plugin vamp.Plugin
	closed bool
}

// NewWrapper takes ownership of p.
func NewWrapper(p vamp.Plugin) *Wrapper {
	return &Wrapper{plugin: p}
}

// Unwrap returns the wrapped plugin.
func (w *Wrapper) Unwrap() vamp.Plugin { return w.plugin }

func (w *Wrapper) VampAPIVersion() int { return w.plugin.VampAPIVersion() }

func (w *Wrapper) Identifier() string { return w.plugin.Identifier() }

func (w *Wrapper) Name() string { return w.plugin.Name() }

func (w *Wrapper) Description() string { return w.plugin.Description() }

func (w *Wrapper) Maker() string { return w.plugin.Maker() }

func (w *Wrapper) Copyright() string { return w.plugin.Copyright() }

func (w *Wrapper) PluginVersion() int { return w.plugin.PluginVersion() }

func (w *Wrapper) InputDomain() vamp.InputDomain { return w.plugin.InputDomain() }

func (w *Wrapper) PreferredBlockSize() int { return w.plugin.PreferredBlockSize() }

func (w *Wrapper) PreferredStepSize() int { return w.plugin.PreferredStepSize() }

func (w *Wrapper) MinChannelCount() int { return w.plugin.MinChannelCount() }

func (w *Wrapper) MaxChannelCount() int { return w.plugin.MaxChannelCount() }

func (w *Wrapper) ParameterDescriptors() []vamp.ParameterDescriptor {
	return w.plugin.ParameterDescriptors()
}

func (w *Wrapper) Parameter(id string) float32 { return w.plugin.Parameter(id) }

func (w *Wrapper) SetParameter(id string, value float32) { w.plugin.SetParameter(id, value) }

func (w *Wrapper) Programs() []string { return w.plugin.Programs() }

func (w *Wrapper) CurrentProgram() string { return w.plugin.CurrentProgram() }

func (w *Wrapper) SelectProgram(name string) { w.plugin.SelectProgram(name) }

func (w *Wrapper) OutputDescriptors() []vamp.OutputDescriptor {
	return w.plugin.OutputDescriptors()
}

func (w *Wrapper) Initialise(channels, stepSize, blockSize int) error {
	return w.plugin.Initialise(channels, stepSize, blockSize)
}

func (w *Wrapper) Reset() { w.plugin.Reset() }

func (w *Wrapper) Process(inputs vamp.BufferSet, timestamp time.Duration) (vamp.FeatureSet, error) {
	return w.plugin.Process(inputs, timestamp)
}

func (w *Wrapper) RemainingFeatures() (vamp.FeatureSet, error) {
	return w.plugin.RemainingFeatures()
}

// Close closes the wrapped plugin. Only the first call has any effect.
func (w *Wrapper) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.plugin.Close()
}

type unwrapper interface {
	Unwrap() vamp.Plugin
}

// FindWrapper walks down a wrapper stack starting at p and returns the first
// layer of type T.
func FindWrapper[T any](p vamp.Plugin) (T, bool) {
	for p != nil {
		if t, ok := p.(T); ok {
			return t, true
		}
		u, ok := p.(unwrapper)
		if !ok {
			break
		}
		p = u.Unwrap()
	}
	var zero T
	return zero, false
}

var _ vamp.Plugin = (*Wrapper)(nil)
