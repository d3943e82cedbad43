// Package vamp defines the plugin contract shared by analysis plugins and the
// hosts that load them.
//
// A plugin library exposes one entry point that enumerates Descriptors by
// index. Each Descriptor constructs Plugin values bound to an input sample
// rate. Hosts drive a Plugin through Initialise, any number of Process calls,
// and a final RemainingFeatures call, then Close it.
package vamp

import (
	"errors"
	"time"
)

// APIVersion is the plugin API version this host passes to entry points.
const APIVersion = 1

// SDKVersion is the version of this SDK.
const SDKVersion = "1.0"

// Entry point symbol names.
const (
	// EntryPointSymbol is exported by Go plugin libraries.
	EntryPointSymbol = "VampGetPluginDescriptor"

	// ScriptEntryPointSymbol is exported by WASM and Lua plugin libraries.
	ScriptEntryPointSymbol = "vampGetPluginDescriptor"
)

// Sentinel errors returned by plugins and wrappers.
var (
	ErrNotInitialised      = errors.New("plugin has not been initialised")
	ErrInvalidChannelCount = errors.New("channel count out of range")
	ErrInvalidBlockSize    = errors.New("unsupported block size")
	ErrInvalidStepSize     = errors.New("unsupported step size")
)

// InputDomain is the representation a plugin wants its input in.
type InputDomain int

const (
	// TimeDomain plugins receive raw sample blocks.
	TimeDomain InputDomain = iota
	// FrequencyDomain plugins receive windowed spectra packed as
	// interleaved real/imaginary pairs, blockSize/2+1 bins per channel.
	FrequencyDomain
)

// String returns the domain name.
func (d InputDomain) String() string {
	switch d {
	case TimeDomain:
		return "time"
	case FrequencyDomain:
		return "frequency"
	default:
		return "unknown"
	}
}

// ParseInputDomain converts a domain name back into an InputDomain.
func ParseInputDomain(s string) (InputDomain, bool) {
	switch s {
	case "time", "TimeDomain", "":
		return TimeDomain, true
	case "frequency", "FrequencyDomain":
		return FrequencyDomain, true
	default:
		return TimeDomain, false
	}
}

// Plugin is the capability set every analysis plugin and every host-side
// wrapper implements.
//
// Metadata and capability getters are side-effect free. Once Initialise has
// succeeded the channel count, step size and block size are fixed until the
// next Initialise. Plugins are not safe for concurrent use.
type Plugin interface {
	VampAPIVersion() int
	Identifier() string
	Name() string
	Description() string
	Maker() string
	Copyright() string
	PluginVersion() int

	InputDomain() InputDomain
	PreferredBlockSize() int
	PreferredStepSize() int
	MinChannelCount() int
	MaxChannelCount() int

	ParameterDescriptors() []ParameterDescriptor
	Parameter(id string) float32
	SetParameter(id string, value float32)
	Programs() []string
	CurrentProgram() string
	SelectProgram(name string)

	OutputDescriptors() []OutputDescriptor

	// Initialise prepares the plugin for processing. A non-nil error means
	// the configuration is unsupported and Process must not be called.
	Initialise(channels, stepSize, blockSize int) error

	// Reset clears any accumulated processing state.
	Reset()

	// Process consumes one block per channel. For frequency-domain plugins
	// each channel holds blockSize+2 values.
	Process(inputs BufferSet, timestamp time.Duration) (FeatureSet, error)

	// RemainingFeatures returns features only available after all input
	// has been seen.
	RemainingFeatures() (FeatureSet, error)

	// Close releases the plugin and anything it owns.
	Close() error
}
