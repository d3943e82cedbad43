// Package loader discovers plugin libraries on a search path and turns
// plugin keys into ready-to-initialise plugins.
//
// A scan opens every candidate library once, records where each key was
// first seen, and closes the library again. Only paths are cached. Category
// files found alongside the libraries are parsed on first request.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/vamphost/internal/domain/hostext"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Flags select the adapters LoadPlugin wraps around a plugin.
type Flags uint

const (
	// AdaptChannelCount accepts any channel count, mixing or duplicating
	// channels as the plugin requires.
	AdaptChannelCount Flags = 1 << iota
	// AdaptInputDomain presents frequency-domain plugins as time-domain.
	AdaptInputDomain

	// AdaptNone returns the plugin as the library created it.
	AdaptNone Flags = 0
	// AdaptAll applies every adapter.
	AdaptAll = AdaptChannelCount | AdaptInputDomain
)

// Options configures a Loader.
type Options struct {
	// SearchPath lists plugin directories in scan order.
	SearchPath []string
	// Openers are the library backends. Required.
	Openers []ports.LibraryOpener
	// FileSystem lists directories and reads category files. Required.
	FileSystem ports.FileSystem
	// Logger receives discovery and load diagnostics. Required.
	Logger ports.Logger
	// APIVersion is passed to descriptor entry points. Zero means
	// vamp.APIVersion.
	APIVersion int
}

// Loader finds and loads plugins. It is safe for concurrent use; the
// plugins it returns are not.
type Loader struct {
	mu sync.Mutex

	searchPath []string
	openers    []ports.LibraryOpener
	fs         ports.FileSystem
	logger     ports.Logger
	apiVersion int

	locations *LocationCache
	taxonomy  *Taxonomy
	errs      []DiscoveryError
}

// New creates a Loader. Nothing is scanned until first use.
func New(opts Options) (*Loader, error) {
	if len(opts.Openers) == 0 {
		return nil, ErrNoOpeners
	}
	if opts.FileSystem == nil {
		return nil, errors.New("loader: file system is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("loader: logger is required")
	}
	api := opts.APIVersion
	if api == 0 {
		api = vamp.APIVersion
	}
	return &Loader{
		searchPath: append([]string(nil), opts.SearchPath...),
		openers:    append([]ports.LibraryOpener(nil), opts.Openers...),
		fs:         opts.FileSystem,
		logger:     opts.Logger.With(ports.F("component", "loader")),
		apiVersion: api,
		locations:  NewLocationCache(),
		taxonomy:   NewTaxonomy(),
	}, nil
}

// SearchPath returns the directories the loader scans.
func (l *Loader) SearchPath() []string {
	return append([]string(nil), l.searchPath...)
}

// EntrySymbol returns the descriptor entry point name for a backend.
func EntrySymbol(kind ports.LibraryKind) string {
	if kind == ports.LibraryNative {
		return vamp.EntryPointSymbol
	}
	return vamp.ScriptEntryPointSymbol
}

// EnsureScanned populates the location cache if no scan has completed.
// A cancelled scan leaves the cache unpopulated so the next call retries.
func (l *Loader) EnsureScanned(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureScanned(ctx)
}

func (l *Loader) ensureScanned(ctx context.Context) error {
	if l.locations.Populated() {
		return nil
	}

	cache := NewLocationCache()
	var errs []DiscoveryError
	for _, dir := range l.searchPath {
		if err := ctx.Err(); err != nil {
			return err
		}
		errs = append(errs, l.scanDir(ctx, dir, cache)...)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cache.MarkPopulated()
	l.locations = cache
	l.errs = errs
	l.logger.Info(ctx, "plugin scan complete",
		ports.F("directories", len(l.searchPath)),
		ports.F("plugins", cache.Len()),
		ports.F("errors", len(errs)))
	return nil
}

func (l *Loader) scanDir(ctx context.Context, dir string, cache *LocationCache) []DiscoveryError {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		if !l.fs.Exists(dir) {
			l.logger.Debug(ctx, "search directory missing", ports.F("dir", dir))
			return nil
		}
		l.logger.Warn(ctx, "cannot read search directory", ports.F("dir", dir), ports.Err(err))
		return []DiscoveryError{{Path: dir, Err: err}}
	}

	var errs []DiscoveryError
	for _, e := range entries {
		if ctx.Err() != nil {
			return errs
		}
		if e.IsDir {
			continue
		}
		opener := l.openerFor(e.Name)
		if opener == nil {
			continue
		}

		path := filepath.Join(dir, e.Name)
		ids, err := l.enumerate(ctx, opener, path)
		if err != nil {
			l.logger.Warn(ctx, "skipping plugin library", ports.F("path", path), ports.Err(err))
			errs = append(errs, DiscoveryError{Path: path, Err: err})
			continue
		}
		for _, id := range ids {
			key := ComposePluginKey(path, id)
			if !cache.Add(key, path) {
				l.logger.Debug(ctx, "duplicate plugin key ignored", ports.F("key", key), ports.F("path", path))
			}
		}
	}
	return errs
}

// openerFor picks the backend whose suffix name carries. The base name
// must be non-empty.
func (l *Loader) openerFor(name string) ports.LibraryOpener {
	for _, o := range l.openers {
		if s := o.Suffix(); len(name) > len(s) && strings.HasSuffix(name, s) {
			return o
		}
	}
	return nil
}

// enumerate returns the identifiers the library at path offers.
func (l *Loader) enumerate(ctx context.Context, opener ports.LibraryOpener, path string) (ids []string, err error) {
	h, err := opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			l.logger.Debug(ctx, "closing plugin library", ports.F("path", path), ports.Err(cerr))
		}
	}()

	fn, err := h.Lookup(EntrySymbol(opener.Kind()))
	if err != nil {
		return nil, err
	}

	err = guard(func() error {
		for _, d := range vamp.Descriptors(fn, l.apiVersion) {
			if d.Identifier == "" {
				continue
			}
			ids = append(ids, d.Identifier)
		}
		return nil
	})
	return ids, err
}

// guard turns a panic inside plugin code into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panicked: %v", r)
		}
	}()
	return fn()
}

// ListPlugins returns every known key, scanning first if needed.
func (l *Loader) ListPlugins(ctx context.Context) ([]PluginKey, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureScanned(ctx); err != nil {
		return nil, err
	}
	return l.locations.Keys(), nil
}

// LibraryPath returns the file providing key.
func (l *Loader) LibraryPath(ctx context.Context, key PluginKey) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.libraryPath(ctx, key)
}

func (l *Loader) libraryPath(ctx context.Context, key PluginKey) (string, error) {
	if err := l.ensureScanned(ctx); err != nil {
		return "", err
	}
	path, ok := l.locations.Lookup(key)
	if !ok {
		return "", &LoadError{Key: key, Err: ErrPluginNotFound}
	}
	return path, nil
}

// Library groups the keys one library file provides.
type Library struct {
	Path string
	Keys []PluginKey
}

// Libraries returns the scanned libraries in path order with their keys.
func (l *Loader) Libraries(ctx context.Context) ([]Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureScanned(ctx); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var libs []Library
	for _, key := range l.locations.Keys() {
		path, _ := l.locations.Lookup(key)
		i, ok := index[path]
		if !ok {
			i = len(libs)
			index[path] = i
			libs = append(libs, Library{Path: path})
		}
		libs[i].Keys = append(libs[i].Keys, key)
	}
	return libs, nil
}

// Errors returns the failures recorded by the last completed scan.
func (l *Loader) Errors() []DiscoveryError {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]DiscoveryError(nil), l.errs...)
}

// LoadPlugin opens the library providing key and creates the plugin bound
// to sampleRate, wrapped in the adapters flags select. Closing the result
// releases the library.
func (l *Loader) LoadPlugin(ctx context.Context, key PluginKey, sampleRate float32, flags Flags) (vamp.Plugin, error) {
	l.mu.Lock()
	path, err := l.libraryPath(ctx, key)
	l.mu.Unlock()
	if err != nil {
		l.logger.Warn(ctx, "plugin not found", ports.F("key", key))
		return nil, err
	}

	p, err := l.instantiate(ctx, key, path, sampleRate)
	if err != nil {
		l.logger.Warn(ctx, "cannot load plugin", ports.F("key", key), ports.F("path", path), ports.Err(err))
		return nil, &LoadError{Key: key, Path: path, Err: err}
	}

	if flags&AdaptChannelCount != 0 {
		p = hostext.NewChannelAdapter(p)
	}
	if flags&AdaptInputDomain != 0 {
		p = hostext.NewInputDomainAdapter(p)
	}
	l.logger.Debug(ctx, "plugin loaded", ports.F("key", key), ports.F("path", path))
	return p, nil
}

func (l *Loader) instantiate(ctx context.Context, key PluginKey, path string, sampleRate float32) (vamp.Plugin, error) {
	opener := l.openerFor(filepath.Base(path))
	if opener == nil {
		return nil, fmt.Errorf("%w: no backend for %s", ErrLibraryLoad, path)
	}

	h, err := opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	var p vamp.Plugin
	err = guard(func() error {
		fn, err := h.Lookup(EntrySymbol(opener.Kind()))
		if err != nil {
			return err
		}
		for index := 0; ; index++ {
			d := fn(l.apiVersion, index)
			if d == nil {
				return ErrIdentifierNotFound
			}
			if d.Identifier != key.Identifier {
				continue
			}
			if p = d.New(sampleRate); p == nil {
				return ErrInstantiate
			}
			return nil
		}
	})
	if err != nil {
		_ = h.Close()
		return nil, err
	}
	return &loaded{Wrapper: hostext.NewWrapper(p), lib: h}, nil
}

// loaded ties a plugin to the library that created it.
type loaded struct {
	*hostext.Wrapper
	lib    ports.LibraryHandle
	closed bool
}

func (p *loaded) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return errors.Join(p.Wrapper.Close(), p.lib.Close())
}

// Category returns the category hierarchy for key, root first, reading
// category files on first use. Unknown keys yield an empty hierarchy.
func (l *Loader) Category(ctx context.Context, key PluginKey) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ensureTaxonomy(ctx); err != nil {
		return nil, err
	}
	return l.taxonomy.Category(key), nil
}

func (l *Loader) ensureTaxonomy(ctx context.Context) error {
	if l.taxonomy.Populated() {
		return nil
	}

	tax := NewTaxonomy()
	for _, dir := range categoryDirs(l.searchPath) {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries, err := l.fs.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir || !strings.HasSuffix(e.Name, CategorySuffix) {
				continue
			}
			path := filepath.Join(dir, e.Name)
			data, err := l.fs.ReadFile(path)
			if err != nil {
				l.logger.Warn(ctx, "cannot read category file", ports.F("path", path), ports.Err(err))
				continue
			}
			for _, entry := range ParseCategories(data) {
				tax.Set(entry.Key, entry.Hierarchy)
			}
		}
	}

	tax.MarkPopulated()
	l.taxonomy = tax
	l.logger.Debug(ctx, "category files read", ports.F("plugins", tax.Len()))
	return nil
}
