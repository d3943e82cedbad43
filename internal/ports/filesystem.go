package ports

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DirEntry is one entry returned by FileSystem.ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FileSystem provides the read-only file system operations discovery and
// audio input need.
type FileSystem interface {
	// ReadDir lists a directory sorted by name.
	ReadDir(path string) ([]DirEntry, error)
	ReadFile(path string) ([]byte, error)
	// Open opens a file for random access reading.
	Open(path string) (ReadSeekCloser, error)
	Exists(path string) bool
	IsDir(path string) bool
}

// ReadSeekCloser is an open file.
type ReadSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
