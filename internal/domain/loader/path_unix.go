//go:build !darwin && !windows

package loader

// PlatformDefaults returns the built-in plugin directories.
func PlatformDefaults() []string {
	return []string{"$HOME/vamp", "$HOME/.vamp", "/usr/local/lib/vamp", "/usr/lib/vamp"}
}
