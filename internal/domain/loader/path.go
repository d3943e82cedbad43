package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/vamphost/internal/ports"
)

// PathEnv names the environment variable holding extra plugin directories.
const PathEnv = "VAMP_PATH"

// DefaultSearchPath returns the directories named by VAMP_PATH followed by
// the platform defaults.
func DefaultSearchPath() []string {
	home, _ := os.UserHomeDir()
	return BuildSearchPath(os.Getenv(PathEnv), home, PlatformDefaults())
}

// BuildSearchPath splits envValue on the OS list separator, appends
// defaults, expands $HOME and ~ and drops empty or repeated entries.
func BuildSearchPath(envValue, home string, defaults []string) []string {
	var dirs []string
	if envValue != "" {
		dirs = append(dirs, filepath.SplitList(envValue)...)
	}
	dirs = append(dirs, defaults...)

	expanded := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		expanded = append(expanded, expandHome(d, home))
	}
	return dedupe(expanded)
}

func expandHome(dir, home string) string {
	if home == "" {
		return ports.ExpandPath(dir)
	}
	dir = strings.ReplaceAll(dir, "$HOME", home)
	switch {
	case dir == "~":
		return home
	case strings.HasPrefix(dir, "~/"), strings.HasPrefix(dir, `~\`):
		return filepath.Join(home, dir[2:])
	}
	return dir
}

func dedupe(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		key := filepath.Clean(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
