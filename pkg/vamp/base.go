package vamp

// Base supplies defaults for the optional parts of Plugin: no parameters,
// no programs, a single time-domain channel and no block size preference.
// Plugin implementations embed it and override what they need.
type Base struct {
	// InputSampleRate is the rate the plugin was created for.
	InputSampleRate float32
}

// NewBase returns a Base bound to inputSampleRate.
func NewBase(inputSampleRate float32) Base {
	return Base{InputSampleRate: inputSampleRate}
}

func (Base) VampAPIVersion() int                         { return APIVersion }
func (Base) Description() string                         { return "" }
func (Base) Copyright() string                           { return "" }
func (Base) InputDomain() InputDomain                    { return TimeDomain }
func (Base) PreferredBlockSize() int                     { return 0 }
func (Base) PreferredStepSize() int                      { return 0 }
func (Base) MinChannelCount() int                        { return 1 }
func (Base) MaxChannelCount() int                        { return 1 }
func (Base) ParameterDescriptors() []ParameterDescriptor { return nil }
func (Base) Parameter(string) float32                    { return 0 }
func (Base) SetParameter(string, float32)                {}
func (Base) Programs() []string                          { return nil }
func (Base) CurrentProgram() string                      { return "" }
func (Base) SelectProgram(string)                        {}
func (Base) RemainingFeatures() (FeatureSet, error)      { return FeatureSet{}, nil }
func (Base) Close() error                                { return nil }

// CheckChannels reports whether channels lies within [p.MinChannelCount(),
// p.MaxChannelCount()].
func CheckChannels(p interface {
	MinChannelCount() int
	MaxChannelCount() int
}, channels int) error {
	if channels < p.MinChannelCount() || channels > p.MaxChannelCount() {
		return ErrInvalidChannelCount
	}
	return nil
}
