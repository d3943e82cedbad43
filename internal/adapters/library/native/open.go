//go:build (linux || darwin || freebsd) && cgo

package native

import (
	"context"
	"fmt"
	"plugin"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Open loads the shared object at path.
func (o *Opener) Open(ctx context.Context, path string) (ports.LibraryHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, err)
	}
	return &handle{plugin: p, path: path}, nil
}

type handle struct {
	plugin *plugin.Plugin
	path   string
}

func (h *handle) Lookup(symbol string) (vamp.DescriptorFunc, error) {
	sym, err := h.plugin.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s in %s", ports.ErrSymbolNotFound, symbol, h.path)
	}
	return descriptorFunc(symbol, sym)
}

func (h *handle) Close() error { return nil }
