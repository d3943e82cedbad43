package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// FakeKind is the library kind reported by FakeOpener.
const FakeKind ports.LibraryKind = "fake"

// FakeLibrary describes what FakeOpener serves for one file name.
type FakeLibrary struct {
	Descriptors []*vamp.Descriptor
	OpenErr     error
	NoSymbol    bool
	PanicOn     int // descriptor index that panics; 0 disables
}

// FakeOpener is an in-memory ports.LibraryOpener. Libraries are matched by
// file base name, so tests still create the files a scan should find.
type FakeOpener struct {
	mu        sync.Mutex
	suffix    string
	libraries map[string]*FakeLibrary
	Opens     int
	Closes    int
}

// NewFakeOpener creates an opener for files ending in suffix.
func NewFakeOpener(suffix string) *FakeOpener {
	return &FakeOpener{suffix: suffix, libraries: make(map[string]*FakeLibrary)}
}

// Add serves lib for files named name.
func (o *FakeOpener) Add(name string, lib *FakeLibrary) *FakeOpener {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libraries[name] = lib
	return o
}

func (o *FakeOpener) Kind() ports.LibraryKind { return FakeKind }

func (o *FakeOpener) Suffix() string { return o.suffix }

func (o *FakeOpener) Open(_ context.Context, path string) (ports.LibraryHandle, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	lib, ok := o.libraries[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown fake library", ports.ErrLibraryLoad, path)
	}
	if lib.OpenErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrLibraryLoad, path, lib.OpenErr)
	}
	o.Opens++
	return &fakeHandle{opener: o, lib: lib}, nil
}

// OpenCount returns how many handles are currently open.
func (o *FakeOpener) OpenCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Opens - o.Closes
}

type fakeHandle struct {
	opener *FakeOpener
	lib    *FakeLibrary
	closed bool
}

func (h *fakeHandle) Lookup(symbol string) (vamp.DescriptorFunc, error) {
	if h.lib.NoSymbol || symbol != vamp.ScriptEntryPointSymbol {
		return nil, fmt.Errorf("%w: %s", ports.ErrSymbolNotFound, symbol)
	}
	descs := h.lib.Descriptors
	return func(apiVersion, index int) *vamp.Descriptor {
		if h.lib.PanicOn > 0 && index == h.lib.PanicOn {
			panic("fake library exploded")
		}
		return vamp.Library(descs...)(apiVersion, index)
	}, nil
}

func (h *fakeHandle) Close() error {
	h.opener.mu.Lock()
	defer h.opener.mu.Unlock()
	if !h.closed {
		h.closed = true
		h.opener.Closes++
	}
	return nil
}

var _ ports.LibraryOpener = (*FakeOpener)(nil)
