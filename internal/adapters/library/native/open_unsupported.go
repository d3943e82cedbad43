//go:build !((linux || darwin || freebsd) && cgo)

package native

import (
	"context"
	"fmt"
	"runtime"

	"github.com/felixgeelhaar/vamphost/internal/ports"
)

// Open always fails: this build cannot load Go shared objects.
func (o *Opener) Open(_ context.Context, path string) (ports.LibraryHandle, error) {
	return nil, fmt.Errorf("%w: %s (native libraries need cgo on linux, darwin or freebsd; running %s/%s)",
		ports.ErrUnsupported, path, runtime.GOOS, runtime.GOARCH)
}
