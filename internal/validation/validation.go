// Package validation checks untrusted input, such as MCP tool arguments,
// before it reaches the loader or the filesystem.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput        = errors.New("input cannot be empty")
	ErrPathTraversal     = errors.New("path traversal detected")
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidPluginKey  = errors.New("invalid plugin key")
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrCommandInjection  = errors.New("potential command injection detected")
)

var (
	// identifierRegex matches plugin, output and parameter identifiers.
	// Examples: "percussiononsets", "detection_function", "zero-crossings"
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// libraryNameRegex matches library base names, which may carry dots.
	// Examples: "vamp-example-plugins", "qm.vamp", "libfx2"
	libraryNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// maxNameLength bounds identifiers and library names.
const maxNameLength = 256

// ValidateIdentifier validates a plugin, output or parameter identifier.
func ValidateIdentifier(id string) error {
	if id == "" {
		return ErrEmptyInput
	}
	if len(id) > maxNameLength {
		return fmt.Errorf("%w: identifier too long (max %d characters)", ErrInvalidIdentifier, maxNameLength)
	}
	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidIdentifier, id)
	}
	return nil
}

// ValidatePluginKey validates a "library:identifier" key.
func ValidatePluginKey(key string) error {
	if key == "" {
		return ErrEmptyInput
	}
	lib, id, ok := strings.Cut(key, ":")
	if !ok {
		return fmt.Errorf("%w: %q has no library prefix", ErrInvalidPluginKey, key)
	}
	if containsShellMeta(key) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, key)
	}
	if len(lib) > maxNameLength || !libraryNameRegex.MatchString(lib) {
		return fmt.Errorf("%w: library %q contains invalid characters", ErrInvalidPluginKey, lib)
	}
	if err := ValidateIdentifier(id); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPluginKey, err)
	}
	return nil
}

// ValidatePath validates a file path and prevents path traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// ValidatePathWithBase validates that path stays within basePath once
// cleaned.
func ValidatePathWithBase(path, basePath string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	rel, err := filepath.Rel(filepath.Clean(basePath), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: path %q escapes base directory %q", ErrPathTraversal, path, basePath)
	}

	return nil
}

// ValidateOptionalPath is ValidatePath for optional arguments.
func ValidateOptionalPath(path string) error {
	if path == "" {
		return nil
	}
	return ValidatePath(path)
}

func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)

	for _, seg := range strings.Split(normalized, string(filepath.Separator)) {
		if seg == ".." {
			return true
		}
	}

	// URL-encoded traversal
	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e")
}
