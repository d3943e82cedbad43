package loader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PluginKey identifies one loadable plugin: the base name of the library
// file that provides it and the identifier it reports.
type PluginKey struct {
	Library    string
	Identifier string
}

// String renders the key as "library:identifier".
func (k PluginKey) String() string {
	return k.Library + ":" + k.Identifier
}

// ParsePluginKey splits s at its first colon.
func ParsePluginKey(s string) (PluginKey, error) {
	lib, id, ok := strings.Cut(s, ":")
	if !ok || lib == "" || id == "" {
		return PluginKey{}, fmt.Errorf("%w: %q (want library:identifier)", ErrInvalidKey, s)
	}
	return PluginKey{Library: lib, Identifier: id}, nil
}

// ComposePluginKey builds the key for identifier offered by the library at
// libraryPath. Directory and file extension are dropped.
func ComposePluginKey(libraryPath, identifier string) PluginKey {
	return PluginKey{Library: libraryName(libraryPath), Identifier: identifier}
}

func libraryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
