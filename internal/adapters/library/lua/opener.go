// Package lua opens plugin libraries written as Lua scripts.
//
// A script defines a global descriptor function taking (apiVersion, index)
// and returning a descriptor table, or nil past the last plugin:
//
//	function vampGetPluginDescriptor(api, index)
//	  if index ~= 0 then return nil end
//	  return {
//	    identifier = "peak", name = "Peak Level", inputDomain = "time",
//	    outputs = {{identifier = "peak", binCount = 1, hasFixedBinCount = true}},
//	    create = function(sampleRate) return Peak.new(sampleRate) end,
//	  }
//	end
//
// Instances are tables whose methods are called with the instance as first
// argument: initialise(channels, step, block), reset(), process(inputs,
// seconds), getRemainingFeatures(), setParameter(id, v), getParameter(id),
// selectProgram(name) and cleanup(). Only initialise and process are
// required.
//
// Scripts run with the base, table, string and math libraries only.
package lua

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
	lua "github.com/yuin/gopher-lua"
)

// Suffix is the file extension of Lua plugin libraries.
const Suffix = ".lua"

// Opener opens Lua plugin libraries.
type Opener struct{}

// New creates an Opener.
func New() *Opener { return &Opener{} }

// Kind reports ports.LibraryLua.
func (o *Opener) Kind() ports.LibraryKind { return ports.LibraryLua }

// Suffix returns ".lua".
func (o *Opener) Suffix() string { return Suffix }

// Open runs the script at path in a fresh state.
func (o *Opener) Open(ctx context.Context, path string) (ports.LibraryHandle, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	h := &handle{L: L, path: path}
	err := h.protect(func() error {
		L.SetContext(ctx)
		defer L.RemoveContext()
		return L.DoFile(path)
	})
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, err)
	}
	return h, nil
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// handle owns one Lua state. Every entry into the state holds mu.
type handle struct {
	mu     sync.Mutex
	L      *lua.LState
	path   string
	closed bool
}

func (h *handle) Lookup(symbol string) (vamp.DescriptorFunc, error) {
	h.mu.Lock()
	fn := h.L.GetGlobal(symbol)
	h.mu.Unlock()

	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %s in %s", ports.ErrSymbolNotFound, symbol, h.path)
	}

	return func(apiVersion, index int) *vamp.Descriptor {
		rets, err := h.call(fn, lua.LNumber(apiVersion), lua.LNumber(index))
		if err != nil || len(rets) == 0 {
			return nil
		}
		tbl, ok := rets[0].(*lua.LTable)
		if !ok {
			return nil
		}
		info, err := decodeInfo(tbl)
		if err != nil {
			return nil
		}
		create := tbl.RawGetString("create")
		if create.Type() != lua.LTFunction {
			return nil
		}
		return &vamp.Descriptor{
			Identifier: info.Identifier,
			New: func(rate float32) vamp.Plugin {
				p, err := newPlugin(h, create, rate, info)
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
	if !h.closed {
		h.closed = true
		h.L.Close()
	}
	return nil
}

// call invokes fn and returns everything it returned.
func (h *handle) call(fn lua.LValue, args ...lua.LValue) ([]lua.LValue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, fmt.Errorf("%s: library closed", h.path)
	}

	L := h.L
	top := L.GetTop()
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}

	if err := h.protect(func() error {
		return L.PCall(len(args), lua.MultRet, nil)
	}); err != nil {
		L.SetTop(top)
		return nil, err
	}

	n := L.GetTop() - top
	if n <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = L.Get(top + i + 1)
	}
	L.Pop(n)
	return results, nil
}

func (h *handle) protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

var _ ports.LibraryOpener = (*Opener)(nil)
