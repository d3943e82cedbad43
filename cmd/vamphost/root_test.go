package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/vamphost/internal/domain/config"
	"github.com/felixgeelhaar/vamphost/internal/ports"
	"github.com/felixgeelhaar/vamphost/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns its output.
// Commands share package state, so callers must not run in parallel.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		cfgFile = ""
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"version", "list", "path", "info", "categories", "run", "mcp"} {
		assert.True(t, names[want], "%s should be a subcommand of root", want)
	}
}

func TestVersionCommand_Output(t *testing.T) {
	originalVersion := version
	originalCommit := commit
	originalBuildDate := buildDate

	version = "1.0.0"
	commit = "abc123"
	buildDate = "2026-01-01"

	defer func() {
		version = originalVersion
		commit = originalCommit
		buildDate = originalBuildDate
	}()

	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "vamphost 1.0.0")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-01-01")
	assert.Contains(t, out, "plugin API version: 1")
}

func TestPathCommand(t *testing.T) {
	dir := t.TempDir()
	plugins := filepath.Join(dir, "plugins")
	cfg := testutil.WriteTempFile(t, dir, "vamphost.yaml", fmt.Sprintf("use_env_path: false\nsearch_path:\n  - %s\n", plugins))

	out, err := executeCommand(t, "path", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, plugins+"\n", out)
}

func TestPathCommand_MissingConfig(t *testing.T) {
	_, err := executeCommand(t, "path", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigNotFound))
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "plain error",
			err:      errors.New("boom"),
			contains: []string{"boom"},
		},
		{
			name:     "user error with suggestion",
			err:      config.NewPluginNotFoundError("lib:x", []string{"lib:y"}),
			contains: []string{"plugin 'lib:x' not found", "(at lib:x)", "Suggestion: Did you mean: lib:y"},
		},
		{
			name:     "wrapped user error",
			err:      fmt.Errorf("outer: %w", config.NewFileNotFoundError("a.wav")),
			contains: []string{"file not found: a.wav"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := formatError(tt.err)
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestPrintErrorTo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printErrorTo(&buf, errors.New("boom"))
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "boom")
}

func TestNewLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LogConfig{Level: "info"}, "run")

	logger.Info(context.Background(), "run finished", ports.F("blocks", 3))
	assert.Equal(t, "[INFO] run: run finished blocks=3\n", buf.String())

	buf.Reset()
	logger.Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())
}
