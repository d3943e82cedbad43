package vamp

// Info is a snapshot of everything a plugin reports about itself before
// initialisation.
type Info struct {
	APIVersion         int                   `json:"apiVersion"`
	Identifier         string                `json:"identifier"`
	Name               string                `json:"name"`
	Description        string                `json:"description,omitempty"`
	Maker              string                `json:"maker,omitempty"`
	Copyright          string                `json:"copyright,omitempty"`
	PluginVersion      int                   `json:"pluginVersion"`
	InputDomain        InputDomain           `json:"-"`
	PreferredBlockSize int                   `json:"preferredBlockSize"`
	PreferredStepSize  int                   `json:"preferredStepSize"`
	MinChannelCount    int                   `json:"minChannelCount"`
	MaxChannelCount    int                   `json:"maxChannelCount"`
	Parameters         []ParameterDescriptor `json:"parameters,omitempty"`
	Programs           []string              `json:"programs,omitempty"`
	Outputs            []OutputDescriptor    `json:"outputs"`
}

// Describe collects p's metadata.
func Describe(p Plugin) Info {
	return Info{
		APIVersion:         p.VampAPIVersion(),
		Identifier:         p.Identifier(),
		Name:               p.Name(),
		Description:        p.Description(),
		Maker:              p.Maker(),
		Copyright:          p.Copyright(),
		PluginVersion:      p.PluginVersion(),
		InputDomain:        p.InputDomain(),
		PreferredBlockSize: p.PreferredBlockSize(),
		PreferredStepSize:  p.PreferredStepSize(),
		MinChannelCount:    p.MinChannelCount(),
		MaxChannelCount:    p.MaxChannelCount(),
		Parameters:         p.ParameterDescriptors(),
		Programs:           p.Programs(),
		Outputs:            p.OutputDescriptors(),
	}
}

// OutputIndex returns the index of the output with the given identifier, or
// -1.
func (i Info) OutputIndex(id string) int {
	for n, o := range i.Outputs {
		if o.Identifier == id {
			return n
		}
	}
	return -1
}
