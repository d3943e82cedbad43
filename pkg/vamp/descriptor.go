package vamp

// Descriptor identifies one plugin exposed by a library and constructs
// instances of it.
type Descriptor struct {
	// Identifier is unique within the library.
	Identifier string

	// New creates a plugin instance for the given input sample rate.
	New func(inputSampleRate float32) Plugin
}

// DescriptorFunc is the library entry point. It returns the descriptor at
// index, or nil once index is past the last plugin the library offers for
// apiVersion.
type DescriptorFunc func(apiVersion, index int) *Descriptor

// Descriptors enumerates every descriptor fn offers for apiVersion.
func Descriptors(fn DescriptorFunc, apiVersion int) []*Descriptor {
	var out []*Descriptor
	for index := 0; ; index++ {
		d := fn(apiVersion, index)
		if d == nil {
			return out
		}
		out = append(out, d)
	}
}

// Library builds a DescriptorFunc over a fixed set of descriptors. Go plugin
// libraries typically export the result as their entry point.
func Library(descriptors ...*Descriptor) DescriptorFunc {
	return func(apiVersion, index int) *Descriptor {
		if apiVersion < 1 || index < 0 || index >= len(descriptors) {
			return nil
		}
		return descriptors[index]
	}
}
