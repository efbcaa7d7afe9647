// Package config holds the explicit configuration value threaded
// through bulicore at startup, replacing class-level globals for
// cache paths and thumbnail format with one value passed explicitly
// to every component that needs it.
package config

import (
	"path/filepath"

	"github.com/grum999/bulicore/internal/platformdir"
)

// ThumbnailSize is one of the four canonical thumbnail sizes.
type ThumbnailSize int

const (
	SizeSmall  ThumbnailSize = 64
	SizeMedium ThumbnailSize = 128
	SizeLarge  ThumbnailSize = 256
	SizeHuge   ThumbnailSize = 512
)

// Sizes lists the canonical sizes in ascending order.
var Sizes = []ThumbnailSize{SizeSmall, SizeMedium, SizeLarge, SizeHuge}

// Larger returns the next canonical size above s, and false if s is
// already the largest.
func (s ThumbnailSize) Larger() (ThumbnailSize, bool) {
	for i, v := range Sizes {
		if v == s && i+1 < len(Sizes) {
			return Sizes[i+1], true
		}
	}
	return 0, false
}

func (s ThumbnailSize) String() string {
	switch s {
	case SizeSmall:
		return "64"
	case SizeMedium:
		return "128"
	case SizeLarge:
		return "256"
	case SizeHuge:
		return "512"
	default:
		return "unknown"
	}
}

// Cache holds everything the thumbnail cache and the pipeline's
// worker pool need to know about the host environment. It is
// constructed once, at startup, and passed by value or pointer to
// every component that needs it — never read from a package-level
// global.
type Cache struct {
	// Root is the thumbnail cache's root directory; tiers and size
	// buckets are subdirectories of it.
	Root string

	// ConfigRoot holds saved queries and the bookmark registry.
	ConfigRoot string

	// SessionCeilingBytes is the byte-count ceiling that triggers
	// eviction of the session tier.
	SessionCeilingBytes int64

	// Workers bounds the pipeline's metadata/filter worker pool; 0
	// means "use runtime.NumCPU()".
	Workers int

	// MaxConcurrentDownloads bounds ClipboardIngest's URL downloads.
	MaxConcurrentDownloads int
}

const defaultSessionCeilingBytes = 512 << 20 // 512 MiB

// Default returns a Cache populated from the host environment, with
// the same directory-resolution precedence as platformdir.
func Default() Cache {
	return Cache{
		Root:                   platformdir.CacheDir(),
		ConfigRoot:             platformdir.ConfigDir(),
		SessionCeilingBytes:    defaultSessionCeilingBytes,
		Workers:                0,
		MaxConcurrentDownloads: 4,
	}
}

// TierDir returns the directory for the given tier name ("session" or
// "persistent") and thumbnail size.
func (c Cache) TierDir(tier string, size ThumbnailSize) string {
	return filepath.Join(c.Root, tier, size.String())
}

// DownloadingDir is the transient directory for in-progress URL
// downloads.
func (c Cache) DownloadingDir() string {
	return filepath.Join(c.Root, "downloading")
}

// SidecarPath returns the path of a CacheEntry's JSON metadata
// sidecar.
func (c Cache) SidecarPath(hash string) string {
	return filepath.Join(c.Root, "persistent", hash+".json")
}

// BookmarksPath is where the bookmark registry is persisted.
func (c Cache) BookmarksPath() string {
	return filepath.Join(c.ConfigRoot, "bookmarks.json")
}
