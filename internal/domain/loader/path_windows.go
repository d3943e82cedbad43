//go:build windows

package loader

import (
	"os"
	"path/filepath"
)

// PlatformDefaults returns the built-in plugin directories.
func PlatformDefaults() []string {
	programFiles := os.Getenv("ProgramFiles")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	return []string{filepath.Join(programFiles, "Vamp Plugins")}
}
