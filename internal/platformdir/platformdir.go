// Package platformdir resolves the operating-system-specific
// directories bulicore uses for its thumbnail and configuration
// storage. It is adapted from the path-resolution switch a Camlistore-
// family tool uses for its own cache/config directories, generalised
// to bulicore's own environment variables.
package platformdir

import (
	"os"
	"path/filepath"
	"runtime"
)

// HomeDir returns the current user's home directory, or "" if unknown.
func HomeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

// CacheDir returns the default root for bulicore's thumbnail cache.
// Precedence: BULICORE_CACHE_DIR, OS-specific default, XDG_CACHE_HOME,
// ~/.cache.
func CacheDir() string {
	if d := os.Getenv("BULICORE_CACHE_DIR"); d != "" {
		return d
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(HomeDir(), "Library", "Caches", "bulicore")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return filepath.Join(v, "bulicore")
			}
		}
		return filepath.Join(os.Getenv("APPDATA"), "bulicore", "cache")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bulicore")
	}
	return filepath.Join(HomeDir(), ".cache", "bulicore")
}

// ConfigDir returns the default root for bulicore's configuration
// (saved queries, bookmarks). Precedence: BULICORE_CONFIG_DIR,
// OS-specific default, XDG_CONFIG_HOME, ~/.config.
func ConfigDir() string {
	if d := os.Getenv("BULICORE_CONFIG_DIR"); d != "" {
		return d
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(HomeDir(), "Library", "Application Support", "bulicore")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "bulicore")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bulicore")
	}
	return filepath.Join(HomeDir(), ".config", "bulicore")
}
