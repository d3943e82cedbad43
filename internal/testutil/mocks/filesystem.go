// Package mocks provides in-memory test doubles for the ports interfaces.
package mocks

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/felixgeelhaar/vamphost/internal/ports"
)

// FileSystem is a thread-safe in-memory ports.FileSystem.
type FileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool
	reads map[string]int
}

// NewFileSystem creates an empty FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
		reads: make(map[string]int),
	}
}

// AddFile adds a file, creating its parent directories.
func (m *FileSystem) AddFile(path string, content string) {
	m.SetFileContent(path, []byte(content))
}

// SetFileContent sets file content directly as bytes.
func (m *FileSystem) SetFileContent(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = content
	m.addParents(path)
}

// AddDir adds an empty directory.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.addParents(path)
}

// Remove deletes a file or an empty directory.
func (m *FileSystem) Remove(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	delete(m.files, path)
	delete(m.dirs, path)
}

func (m *FileSystem) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if parent := filepath.Dir(dir); parent == dir {
			return
		}
	}
}

// Reads returns how many times path was read through ReadFile or Open.
func (m *FileSystem) Reads(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads[filepath.Clean(path)]
}

// ReadDir lists the direct children of path sorted by name.
func (m *FileSystem) ReadDir(path string) ([]ports.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	if !m.dirs[path] {
		return nil, fmt.Errorf("read dir %s: %w", path, fs.ErrNotExist)
	}

	seen := make(map[string]bool)
	var entries []ports.DirEntry
	add := func(child string, isDir bool) {
		if filepath.Dir(child) != path || child == path {
			return
		}
		name := filepath.Base(child)
		if seen[name] {
			return
		}
		seen[name] = true
		entries = append(entries, ports.DirEntry{Name: name, IsDir: isDir})
	}
	for p := range m.files {
		add(p, false)
	}
	for p := range m.dirs {
		add(p, true)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// ReadFile returns the content of path.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	content, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	m.reads[path]++
	return append([]byte(nil), content...), nil
}

// Open returns a reader over a snapshot of path.
func (m *FileSystem) Open(path string) (ports.ReadSeekCloser, error) {
	data, err := m.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

// Exists reports whether path is a file or directory.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path]
}

// IsDir reports whether path is a directory.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(path)]
}

// Paths returns every file path, sorted.
func (m *FileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

type nopCloser struct {
	*bytes.Reader
}

func (nopCloser) Close() error { return nil }

var _ ports.FileSystem = (*FileSystem)(nil)
