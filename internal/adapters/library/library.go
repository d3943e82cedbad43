// Package library assembles the plugin library openers a host enables.
package library

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/adapters/library/lua"
	"github.com/felixgeelhaar/vamphost/internal/adapters/library/native"
	"github.com/felixgeelhaar/vamphost/internal/adapters/library/wasm"
	"github.com/felixgeelhaar/vamphost/internal/ports"
)

// DefaultKinds lists every supported library format in scan order.
var DefaultKinds = []ports.LibraryKind{ports.LibraryNative, ports.LibraryWASM, ports.LibraryLua}

// ParseKind converts a backend name from configuration.
func ParseKind(s string) (ports.LibraryKind, error) {
	switch k := ports.LibraryKind(strings.ToLower(strings.TrimSpace(s))); k {
	case ports.LibraryNative, ports.LibraryWASM, ports.LibraryLua:
		return k, nil
	default:
		return "", fmt.Errorf("unknown library backend %q (want native, wasm or lua)", s)
	}
}

// Openers returns one opener per kind, in the order given. Duplicates are
// ignored. An empty list selects DefaultKinds.
func Openers(kinds ...ports.LibraryKind) []ports.LibraryOpener {
	if len(kinds) == 0 {
		kinds = DefaultKinds
	}

	seen := make(map[ports.LibraryKind]bool, len(kinds))
	out := make([]ports.LibraryOpener, 0, len(kinds))
	for _, k := range kinds {
		if seen[k] {
			continue
		}
		seen[k] = true
		switch k {
		case ports.LibraryNative:
			out = append(out, native.New())
		case ports.LibraryWASM:
			out = append(out, wasm.New())
		case ports.LibraryLua:
			out = append(out, lua.New())
		}
	}
	return out
}
