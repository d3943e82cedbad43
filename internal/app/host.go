// Package app wires configuration, logging, library backends and the loader
// into the operations the vamphost commands and MCP tools expose.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/adapters/filesystem"
	"github.com/felixgeelhaar/vamphost/internal/adapters/library"
	"github.com/felixgeelhaar/vamphost/internal/adapters/logging"
	"github.com/felixgeelhaar/vamphost/internal/domain/config"
	"github.com/felixgeelhaar/vamphost/internal/domain/host"
	"github.com/felixgeelhaar/vamphost/internal/domain/loader"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/pkg/vamp"
)

// Options configures a Host. Zero values select the real filesystem, every
// enabled backend and a silent logger.
type Options struct {
	Config     config.Config
	FileSystem ports.FileSystem
	Logger     ports.Logger
	// Openers replaces the backends Config.Backends selects.
	Openers []ports.LibraryOpener
	// Home expands ~ in search path entries. Empty means the user's home.
	Home string
}

// Host is the application facade over one loader.
type Host struct {
	cfg     config.Config
	fs      ports.FileSystem
	logger  ports.Logger
	openers []ports.LibraryOpener
	loader  *loader.Loader
}

// New creates a Host. The search path is the configured directories
// followed, when enabled, by VAMP_PATH and the platform defaults.
func New(opts Options) (*Host, error) {
	fs := opts.FileSystem
	if fs == nil {
		fs = filesystem.NewRealFileSystem()
	}
	logger := logging.OrNop(opts.Logger)

	openers := opts.Openers
	if len(openers) == 0 {
		openers = library.Openers(opts.Config.Kinds()...)
	}

	home := opts.Home
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	dirs := append([]string(nil), opts.Config.SearchPath...)
	if opts.Config.UseEnvPath {
		dirs = append(dirs, loader.DefaultSearchPath()...)
	}

	l, err := loader.New(loader.Options{
		SearchPath: loader.BuildSearchPath("", home, dirs),
		Openers:    openers,
		FileSystem: fs,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create loader: %w", err)
	}

	return &Host{cfg: opts.Config, fs: fs, logger: logger, openers: openers, loader: l}, nil
}

// Config returns the settings the host was built with.
func (h *Host) Config() config.Config { return h.cfg }

// SearchPath returns the plugin directories in scan order.
func (h *Host) SearchPath() []string { return h.loader.SearchPath() }

// Backends returns the library formats the host can open.
func (h *Host) Backends() []ports.LibraryKind {
	kinds := make([]ports.LibraryKind, len(h.openers))
	for i, o := range h.openers {
		kinds[i] = o.Kind()
	}
	return kinds
}

// DiscoveryErrors returns the libraries the last scan could not use.
func (h *Host) DiscoveryErrors() []loader.DiscoveryError { return h.loader.Errors() }

// PluginSummary describes one plugin as instantiated at the configured
// sample rate.
type PluginSummary struct {
	Key      loader.PluginKey
	Info     vamp.Info
	Category []string
	// Err is set when the plugin was listed but could not be created.
	Err error
}

// LibrarySummary lists the plugins one library file provides.
type LibrarySummary struct {
	Path    string
	Plugins []PluginSummary
}

// Libraries scans the search path and describes every plugin, grouped by
// library. Plugins that fail to load are reported with Err rather than
// failing the listing.
func (h *Host) Libraries(ctx context.Context) ([]LibrarySummary, error) {
	libs, err := h.loader.Libraries(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LibrarySummary, 0, len(libs))
	for _, lib := range libs {
		summary := LibrarySummary{Path: lib.Path}
		for _, key := range lib.Keys {
			summary.Plugins = append(summary.Plugins, h.describe(ctx, key))
		}
		out = append(out, summary)
	}
	return out, nil
}

func (h *Host) describe(ctx context.Context, key loader.PluginKey) PluginSummary {
	s := PluginSummary{Key: key}
	p, err := h.loader.LoadPlugin(ctx, key, float32(h.cfg.Run.SampleRate), loader.AdaptNone)
	if err != nil {
		s.Err = err
		return s
	}
	defer p.Close()

	s.Info = vamp.Describe(p)
	if cat, err := h.loader.Category(ctx, key); err == nil {
		s.Category = cat
	}
	return s
}

// PluginInfo describes the plugin named by key.
func (h *Host) PluginInfo(ctx context.Context, key string) (*PluginSummary, error) {
	k, err := h.resolveKey(ctx, key)
	if err != nil {
		return nil, err
	}
	s := h.describe(ctx, k)
	if s.Err != nil {
		return nil, s.Err
	}
	return &s, nil
}

// CategorisedPlugin pairs a key with its category hierarchy.
type CategorisedPlugin struct {
	Key      loader.PluginKey
	Category []string
}

// Categories returns the category of every discovered plugin. Plugins
// without an entry in any category file have an empty hierarchy.
func (h *Host) Categories(ctx context.Context) ([]CategorisedPlugin, error) {
	keys, err := h.loader.ListPlugins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategorisedPlugin, 0, len(keys))
	for _, key := range keys {
		cat, err := h.loader.Category(ctx, key)
		if err != nil {
			return nil, err
		}
		out = append(out, CategorisedPlugin{Key: key, Category: cat})
	}
	return out, nil
}

// resolveKey parses key and checks it names a discovered plugin.
func (h *Host) resolveKey(ctx context.Context, key string) (loader.PluginKey, error) {
	k, err := loader.ParsePluginKey(key)
	if err != nil {
		return loader.PluginKey{}, config.NewPluginKeyError(key, err)
	}
	if _, err := h.loader.LibraryPath(ctx, k); err != nil {
		if errors.Is(err, loader.ErrPluginNotFound) {
			return loader.PluginKey{}, config.NewPluginNotFoundError(key, h.similar(ctx, k))
		}
		return loader.PluginKey{}, err
	}
	return k, nil
}

// similar returns known keys that share a library or identifier with k.
func (h *Host) similar(ctx context.Context, k loader.PluginKey) []string {
	keys, err := h.loader.ListPlugins(ctx)
	if err != nil {
		return nil
	}
	var out []string
	for _, known := range keys {
		if strings.EqualFold(known.Identifier, k.Identifier) || strings.EqualFold(known.Library, k.Library) {
			out = append(out, known.String())
		}
	}
	return out
}

// RunRequest describes one analysis run.
type RunRequest struct {
	Key string
	// Output is an output identifier or index. Empty selects output 0.
	Output string
	// AudioPath names a WAV file. Ignored when Source is set.
	AudioPath string
	Source    host.Source
	// BlockSize and StepSize override the configured defaults when
	// non-zero.
	BlockSize int
	StepSize  int
	// AdaptChannels lets the channel adapter reconcile channel counts
	// instead of mixing down to mono.
	AdaptChannels bool
	RunID         string
}

// Feature is one feature from the selected output.
type Feature struct {
	Timestamp string    `json:"timestamp"`
	Values    []float32 `json:"values,omitempty"`
	Label     string    `json:"label,omitempty"`
}

// RunResult summarises a finished run.
type RunResult struct {
	RunID       string
	Key         loader.PluginKey
	OutputIndex int
	Output      vamp.OutputDescriptor
	SampleRate  int
	Channels    int
	MixedDown   bool
	Sizes       host.Sizes
	Stats       host.Stats
}

// Run loads the plugin, feeds it the audio and passes every feature from
// the selected output to emit in order. A logger carried by ctx takes
// precedence over the host's.
func (h *Host) Run(ctx context.Context, req RunRequest, emit func(Feature) error) (*RunResult, error) {
	k, err := h.resolveKey(ctx, req.Key)
	if err != nil {
		return nil, err
	}

	src := req.Source
	if src == nil {
		if src, err = h.openAudio(req.AudioPath); err != nil {
			return nil, err
		}
	}

	flags := loader.AdaptInputDomain
	if req.AdaptChannels {
		flags |= loader.AdaptChannelCount
	}
	p, err := h.loader.LoadPlugin(ctx, k, float32(src.SampleRate()), flags)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	outputs := p.OutputDescriptors()
	index, err := outputIndex(outputs, req.Output)
	if err != nil {
		return nil, config.NewOutputNotFoundError(k.String(), req.Output, outputIDs(outputs))
	}

	block, step := req.BlockSize, req.StepSize
	if block == 0 {
		block = h.cfg.Run.BlockSize
	}
	if step == 0 {
		step = h.cfg.Run.StepSize
	}

	logger := ports.LoggerFromContextOr(ctx, h.logger)
	ctx = ports.ContextWithLogger(ctx, logger.With(ports.F("key", k.String())))

	s, err := host.NewSession(p, src, host.Options{
		BlockSize: block,
		StepSize:  step,
		RunID:     req.RunID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Initialise(ctx); err != nil {
		if errors.Is(err, host.ErrChannelsOutOfRange) {
			return nil, err
		}
		sz := s.Sizes()
		return nil, config.NewInitialiseError(k.String(), src.Channels(), sz.StepSize, sz.BlockSize, err)
	}

	stats, err := s.Run(ctx, func(output int, f vamp.Feature) error {
		if output != index || emit == nil {
			return nil
		}
		return emit(Feature{
			Timestamp: vamp.FormatRealTime(f.Timestamp),
			Values:    f.Values,
			Label:     f.Label,
		})
	})
	if err != nil {
		return nil, err
	}

	return &RunResult{
		RunID:       s.ID(),
		Key:         k,
		OutputIndex: index,
		Output:      outputs[index],
		SampleRate:  src.SampleRate(),
		Channels:    s.Channels(),
		MixedDown:   s.MixesDown(),
		Sizes:       s.Sizes(),
		Stats:       stats,
	}, nil
}

func (h *Host) openAudio(path string) (host.Source, error) {
	if path == "" || !h.fs.Exists(path) {
		return nil, config.NewFileNotFoundError(path)
	}
	f, err := h.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	src, err := host.DecodeWAV(f)
	if err != nil {
		return nil, config.NewAudioUnsupportedError(path, err)
	}
	return src, nil
}

// outputIndex resolves an output identifier or decimal index.
func outputIndex(outputs []vamp.OutputDescriptor, output string) (int, error) {
	if len(outputs) == 0 {
		return 0, errors.New("plugin has no outputs")
	}
	if output == "" {
		return 0, nil
	}
	for i, o := range outputs {
		if o.Identifier == output {
			return i, nil
		}
	}
	if n, err := strconv.Atoi(output); err == nil && n >= 0 && n < len(outputs) {
		return n, nil
	}
	return 0, fmt.Errorf("no output %q", output)
}

func outputIDs(outputs []vamp.OutputDescriptor) []string {
	ids := make([]string, len(outputs))
	for i, o := range outputs {
		ids[i] = o.Identifier
	}
	return ids
}
