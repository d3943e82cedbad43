// Package native opens plugin libraries built as Go shared objects with
// `go build -buildmode=plugin`.
//
// Go cannot unload a shared object once it is opened, so closing a handle
// only forgets it. Opening is supported where the standard plugin package
// is: linux, darwin and freebsd with cgo enabled. Elsewhere every Open fails
// with ports.ErrUnsupported.
package native

import (
	"fmt"
	"runtime"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// PlatformSuffix returns the shared library extension for goos.
func PlatformSuffix(goos string) string {
	switch goos {
	case "darwin", "ios":
		return ".dylib"
	case "windows":
		return ".dll"
	default:
		return ".so"
	}
}

// Opener opens native plugin libraries.
type Opener struct {
	suffix string
}

// New returns an opener for the running platform.
func New() *Opener {
	return &Opener{suffix: PlatformSuffix(runtime.GOOS)}
}

// Kind reports ports.LibraryNative.
func (o *Opener) Kind() ports.LibraryKind { return ports.LibraryNative }

// Suffix returns the platform shared library extension.
func (o *Opener) Suffix() string { return o.suffix }

// descriptorFunc converts a looked-up symbol into a descriptor function. A
// plugin library may export the entry point either as a function or as a
// variable holding one.
func descriptorFunc(symbol string, sym interface{}) (vamp.DescriptorFunc, error) {
	var fn vamp.DescriptorFunc
	switch v := sym.(type) {
	case func(int, int) *vamp.Descriptor:
		fn = v
	case vamp.DescriptorFunc:
		fn = v
	case *vamp.DescriptorFunc:
		if v != nil {
			fn = *v
		}
	case *func(int, int) *vamp.Descriptor:
		if v != nil {
			fn = *v
		}
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ports.ErrSymbolNotFound, symbol, sym)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s is nil", ports.ErrSymbolNotFound, symbol)
	}
	return fn, nil
}

var _ ports.LibraryOpener = (*Opener)(nil)
