// Package wasm opens plugin libraries compiled to WebAssembly and runs them
// in a wazero runtime.
//
// A guest library exports its descriptor function and a small set of
// instance functions. Structured data crosses the boundary as JSON in guest
// memory, addressed by an i64 packing a pointer in the high 32 bits and a
// length in the low 32 bits. Sample buffers are written into guest memory
// as little-endian float32, channel after channel.
package wasm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Suffix is the file extension of WebAssembly plugin libraries.
const Suffix = ".wasm"

// Opener opens WebAssembly plugin libraries.
type Opener struct {
	memoryLimitPages uint32
}

// Option configures an Opener.
type Option func(*Opener)

// WithMemoryLimitPages caps guest memory at pages of 64 KiB each.
func WithMemoryLimitPages(pages uint32) Option {
	return func(o *Opener) {
		o.memoryLimitPages = pages
	}
}

// New creates an Opener.
func New(opts ...Option) *Opener {
	o := &Opener{memoryLimitPages: 1024}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Kind reports ports.LibraryWASM.
func (o *Opener) Kind() ports.LibraryKind { return ports.LibraryWASM }

// Suffix returns ".wasm".
func (o *Opener) Suffix() string { return Suffix }

// Open compiles and instantiates the module at path in a runtime of its own.
func (o *Opener) Open(ctx context.Context, path string) (ports.LibraryHandle, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, err)
	}
	return o.openBytes(ctx, path, code)
}

func (o *Opener) openBytes(ctx context.Context, path string, code []byte) (*handle, error) {
	cfg := wazero.NewRuntimeConfig().
		WithCloseOnContextDone(true).
		WithMemoryLimitPages(o.memoryLimitPages)
	r := wazero.NewRuntimeWithConfig(ctx, cfg)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("%w: %s: wasi: %w", ports.ErrLibraryLoad, path, err)
	}

	compiled, err := r.CompileModule(ctx, code)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), Suffix)
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions("_initialize"))
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, err)
	}

	return &handle{runtime: r, module: mod, path: path}, nil
}

// handle owns one runtime. Guest calls are serialised since a module
// instance is single threaded.
type handle struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
	path    string
	closed  bool
}

func (h *handle) Lookup(symbol string) (vamp.DescriptorFunc, error) {
	fn := h.module.ExportedFunction(symbol)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s in %s", ports.ErrSymbolNotFound, symbol, h.path)
	}

	return func(apiVersion, index int) *vamp.Descriptor {
		data, err := h.callPacked(fn, api.EncodeI32(int32(apiVersion)), api.EncodeI32(int32(index)))
		if err != nil || data == nil {
			return nil
		}
		info, err := decodeInfo(data)
		if err != nil {
			return nil
		}
		return &vamp.Descriptor{
			Identifier: info.Identifier,
			New: func(rate float32) vamp.Plugin {
				p, err := newPlugin(h, index, rate, info)
				if err != nil {
					return nil
				}
				return p
			},
		}
	}, nil
}

func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.runtime.Close(context.Background())
}

// call invokes fn with the handle lock held.
func (h *handle) call(fn api.Function, params ...uint64) ([]uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, fmt.Errorf("%s: library closed", h.path)
	}
	return fn.Call(context.Background(), params...)
}

// callPacked invokes a function returning a packed pointer/length and
// copies the referenced bytes out of guest memory. A zero result yields
// nil data.
func (h *handle) callPacked(fn api.Function, params ...uint64) ([]byte, error) {
	res, err := h.call(fn, params...)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 || res[0] == 0 {
		return nil, nil
	}
	ptr, length := packed(res[0])
	return h.read(ptr, length)
}

func (h *handle) read(ptr, length uint32) ([]byte, error) {
	mem := h.module.Memory()
	if mem == nil {
		return nil, fmt.Errorf("%w: module exports no %s", ErrMalformedPayload, exportMemory)
	}
	view, ok := mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("%w: [%d, %d) is outside guest memory", ErrMalformedPayload, ptr, ptr+length)
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// alloc reserves n bytes in guest memory and fills them with data when
// data is non-nil.
func (h *handle) alloc(n uint32, data []byte) (uint32, error) {
	fn := h.module.ExportedFunction(exportAlloc)
	if fn == nil {
		return 0, fmt.Errorf("%w: %s", ports.ErrSymbolNotFound, exportAlloc)
	}
	res, err := h.call(fn, api.EncodeI32(int32(n)))
	if err != nil {
		return 0, err
	}
	ptr := api.DecodeU32(res[0])
	if data != nil && !h.module.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("%w: allocation at %d too small", ErrMalformedPayload, ptr)
	}
	return ptr, nil
}

func (h *handle) export(name string) (api.Function, error) {
	fn := h.module.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("%w: %s in %s", ports.ErrSymbolNotFound, name, h.path)
	}
	return fn, nil
}

var _ ports.LibraryOpener = (*Opener)(nil)
