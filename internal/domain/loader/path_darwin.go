//go:build darwin

package loader

// PlatformDefaults returns the built-in plugin directories.
func PlatformDefaults() []string {
	return []string{"$HOME/Library/Audio/Plug-Ins/Vamp", "/Library/Audio/Plug-Ins/Vamp"}
}
