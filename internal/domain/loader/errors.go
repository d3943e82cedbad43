package loader

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/vamphost/internal/ports"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrPluginNotFound indicates no scanned library offers the key.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrIdentifierNotFound indicates the library recorded for a key no
	// longer offers its identifier.
	ErrIdentifierNotFound = errors.New("plugin identifier not offered by library")
	// ErrInvalidKey indicates a malformed plugin key.
	ErrInvalidKey = errors.New("invalid plugin key")
	// ErrInstantiate indicates a descriptor refused to create an instance.
	ErrInstantiate = errors.New("plugin could not be instantiated")
	// ErrNoOpeners indicates a loader was configured without any backend.
	ErrNoOpeners = errors.New("no library openers configured")

	// ErrLibraryLoad and ErrSymbolNotFound are shared with the backends.
	ErrLibraryLoad    = ports.ErrLibraryLoad
	ErrSymbolNotFound = ports.ErrSymbolNotFound
)

// DiscoveryError records a library or category file that could not be
// read during a scan.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("scanning %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// LoadError reports why a key could not be turned into a plugin.
type LoadError struct {
	Key  PluginKey
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("loading %s from %s: %v", e.Key, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
