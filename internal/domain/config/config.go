// Package config loads host settings from a YAML, TOML or INI file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultSampleRate = 48000
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// FileNames lists the configuration file names searched for, in order.
var FileNames = []string{"vamphost.yaml", "vamphost.yml", "vamphost.toml", "vamphost.ini"}

// Config holds host settings.
type Config struct {
	// SearchPath lists extra plugin directories, scanned before VAMP_PATH.
	SearchPath []string `yaml:"search_path" toml:"search_path"`
	// UseEnvPath includes VAMP_PATH and the platform defaults.
	UseEnvPath bool `yaml:"use_env_path" toml:"use_env_path"`
	// Backends names the enabled library formats. Empty enables all.
	Backends []string  `yaml:"backends" toml:"backends"`
	Log      LogConfig `yaml:"log" toml:"log"`
	Run      RunConfig `yaml:"run" toml:"run"`
}

// LogConfig configures the console logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// RunConfig holds processing defaults.
type RunConfig struct {
	// SampleRate is used to instantiate plugins when no audio is involved,
	// as when listing or describing them.
	SampleRate float64 `yaml:"sample_rate" toml:"sample_rate"`
	// BlockSize and StepSize override plugin preferences when non-zero.
	BlockSize int `yaml:"block_size" toml:"block_size"`
	StepSize  int `yaml:"step_size" toml:"step_size"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		UseEnvPath: true,
		Log:        LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Run:        RunConfig{SampleRate: DefaultSampleRate},
	}
}

// Load reads the configuration file at path. The format follows the
// extension.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, NewConfigNotFoundError(path)
		}
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Find returns the first configuration file present in dirs, or "".
func Find(dirs ...string) string {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// DefaultDirs returns the directories Find searches when no file is given:
// the working directory, then the user configuration directory.
func DefaultDirs() []string {
	dirs := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "vamphost"))
	}
	return dirs
}

// LoadOrDefault loads path, or the first file Find locates in DefaultDirs
// when path is empty. With no file at all it returns Default.
func LoadOrDefault(path string) (Config, string, error) {
	if path == "" {
		path = Find(DefaultDirs()...)
		if path == "" {
			return Default(), "", nil
		}
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Parse decodes data according to the extension of path, applies
// defaults and validates the result.
func Parse(path string, data []byte) (Config, error) {
	cfg := Default()

	switch extension(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, NewYAMLParseError(path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, NewConfigParseError(path, err)
		}
	case ".ini":
		if err := parseINI(data, &cfg); err != nil {
			return Config{}, NewConfigParseError(path, err)
		}
	default:
		return Config{}, NewConfigFormatError(path)
	}

	for i, dir := range cfg.SearchPath {
		cfg.SearchPath[i] = ports.ExpandPath(dir)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parseINI reads the flat INI layout:
//
//	search_path = ~/vamp, /opt/vamp
//	use_env_path = true
//	backends = native, lua
//	[log]
//	level = debug
//	[run]
//	block_size = 2048
func parseINI(data []byte, cfg *Config) error {
	f, err := ini.Load(data)
	if err != nil {
		return err
	}

	root := f.Section("")
	if root.HasKey("search_path") {
		cfg.SearchPath = root.Key("search_path").Strings(",")
	}
	if root.HasKey("use_env_path") {
		if cfg.UseEnvPath, err = root.Key("use_env_path").Bool(); err != nil {
			return fmt.Errorf("use_env_path: %w", err)
		}
	}
	if root.HasKey("backends") {
		cfg.Backends = root.Key("backends").Strings(",")
	}

	log := f.Section("log")
	cfg.Log.Level = log.Key("level").MustString(cfg.Log.Level)
	cfg.Log.Format = log.Key("format").MustString(cfg.Log.Format)

	run := f.Section("run")
	if run.HasKey("sample_rate") {
		if cfg.Run.SampleRate, err = run.Key("sample_rate").Float64(); err != nil {
			return fmt.Errorf("run.sample_rate: %w", err)
		}
	}
	if run.HasKey("block_size") {
		if cfg.Run.BlockSize, err = run.Key("block_size").Int(); err != nil {
			return fmt.Errorf("run.block_size: %w", err)
		}
	}
	if run.HasKey("step_size") {
		if cfg.Run.StepSize, err = run.Key("step_size").Int(); err != nil {
			return fmt.Errorf("run.step_size: %w", err)
		}
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	errs := NewErrorList()

	for i, b := range c.Backends {
		switch ports.LibraryKind(strings.ToLower(strings.TrimSpace(b))) {
		case ports.LibraryNative, ports.LibraryWASM, ports.LibraryLua:
		default:
			errs.Add(&UserError{
				Code:       ErrCodeBackendUnknown,
				Message:    fmt.Sprintf("backends[%d]: unknown library backend %q", i, b),
				Context:    fmt.Sprintf("backends[%d]", i),
				Suggestion: "Valid backends are native, wasm and lua.",
			})
		}
	}
	if _, err := ports.ParseLevel(c.Log.Level); err != nil {
		errs.AddValidation("log.level", err.Error(), "Use debug, info, warn or error.")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs.AddValidation("log.format", fmt.Sprintf("unknown format %q", c.Log.Format), "Use text or json.")
	}
	if c.Run.SampleRate <= 0 {
		errs.AddValidation("run.sample_rate", "must be positive", "A typical value is 44100 or 48000.")
	}
	if c.Run.BlockSize < 0 {
		errs.AddValidation("run.block_size", "must not be negative", "Use 0 to follow the plugin's preference.")
	}
	if c.Run.StepSize < 0 {
		errs.AddValidation("run.step_size", "must not be negative", "Use 0 to follow the plugin's preference.")
	}
	if c.Run.BlockSize > 0 && c.Run.StepSize > c.Run.BlockSize {
		errs.AddValidation("run.step_size", "must not exceed run.block_size", "")
	}

	return errs.AsError()
}

// Kinds returns the enabled backends. Empty means every backend.
func (c Config) Kinds() []ports.LibraryKind {
	kinds := make([]ports.LibraryKind, 0, len(c.Backends))
	for _, b := range c.Backends {
		kinds = append(kinds, ports.LibraryKind(strings.ToLower(strings.TrimSpace(b))))
	}
	return kinds
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
