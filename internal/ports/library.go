package ports

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Library errors shared by every backend.
var (
	ErrLibraryLoad    = errors.New("failed to load plugin library")
	ErrSymbolNotFound = errors.New("descriptor entry point not found")
	ErrUnsupported    = errors.New("library format not supported on this platform")
)

// LibraryKind names a plugin library format.
type LibraryKind string

const (
	// LibraryNative is a shared object built with the Go plugin toolchain.
	LibraryNative LibraryKind = "native"
	// LibraryWASM is a WebAssembly module speaking the JSON plugin ABI.
	LibraryWASM LibraryKind = "wasm"
	// LibraryLua is a Lua script exposing a descriptor function.
	LibraryLua LibraryKind = "lua"
)

// LibraryOpener opens plugin libraries of one format.
type LibraryOpener interface {
	// Kind identifies the format.
	Kind() LibraryKind

	// Suffix is the file name extension, including the dot, that marks a
	// candidate library of this format.
	Suffix() string

	// Open loads the library at path.
	Open(ctx context.Context, path string) (LibraryHandle, error)
}

// LibraryHandle is an open plugin library.
type LibraryHandle interface {
	// Lookup resolves the named descriptor entry point.
	Lookup(symbol string) (vamp.DescriptorFunc, error)

	// Close releases the library. Plugins created from it must be closed
	// first.
	Close() error
}
