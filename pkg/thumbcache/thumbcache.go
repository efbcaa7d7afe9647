// Package thumbcache implements the two-tier, content-addressed
// thumbnail cache. Per-hash generation coalescing and the concurrency
// gate follow the singleResize singleflight.Group and ResizeSem
// syncutil.Gate pattern from a Camlistore-family image handler; the
// session-tier keys are also recorded in a hashicorp/golang-lru/v2
// index, which cache lookups do not consult (they read the tier
// directories).
package thumbcache

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"go4.org/syncutil"
	"go4.org/syncutil/singleflight"

	"github.com/grum999/bulicore/internal/debuglog"
	"github.com/grum999/bulicore/pkg/config"
	"github.com/grum999/bulicore/pkg/descriptor"
)

const (
	tierSession    = "session"
	tierPersistent = "persistent"

	// maxConcurrentGenerations bounds simultaneous decode/downscale
	// work, the way ResizeSem bounds a typical image handler.
	maxConcurrentGenerations = 8
)

// entryMeta is the in-process mirror of one on-disk thumbnail file,
// used by the session tier's eviction pass and by Size().
type entryMeta struct {
	path      string
	bytes     int64
	timestamp time.Time
}

// Cache is the thumbnail cache. Construct with New; the zero value is
// not usable.
type Cache struct {
	cfg config.Cache

	mu          sync.Mutex
	sessionMeta map[string]entryMeta // key: "{hash}.{size}"
	sessionSize int64

	index *lru.Cache[string, struct{}] // records session keys; not read by lookups

	gen  singleflight.Group
	gate *syncutil.Gate
}

// New creates a Cache rooted at cfg.Root, ensuring the tier
// directories exist and purging the downloading/ directory at
// startup.
func New(cfg config.Cache) (*Cache, error) {
	c := &Cache{
		cfg:         cfg,
		sessionMeta: make(map[string]entryMeta),
		gate:        syncutil.NewGate(maxConcurrentGenerations),
	}
	idx, err := lru.New[string, struct{}](4096)
	if err != nil {
		return nil, fmt.Errorf("thumbcache: building index: %w", err)
	}
	c.index = idx

	for _, tier := range []string{tierSession, tierPersistent} {
		for _, size := range config.Sizes {
			if err := os.MkdirAll(cfg.TierDir(tier, size), 0o755); err != nil {
				return nil, fmt.Errorf("thumbcache: creating %s/%s: %w", tier, size, err)
			}
		}
	}
	if err := os.RemoveAll(cfg.DownloadingDir()); err != nil {
		return nil, fmt.Errorf("thumbcache: purging downloading dir: %w", err)
	}
	if err := os.MkdirAll(cfg.DownloadingDir(), 0o755); err != nil {
		return nil, fmt.Errorf("thumbcache: creating downloading dir: %w", err)
	}

	if err := c.loadSessionIndex(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) loadSessionIndex() error {
	for _, size := range config.Sizes {
		dir := c.cfg.TierDir(tierSession, size)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			hash := hashFromFilename(e.Name())
			key := indexKey(hash, size)
			c.mu.Lock()
			c.sessionMeta[key] = entryMeta{
				path:      filepath.Join(dir, e.Name()),
				bytes:     info.Size(),
				timestamp: info.ModTime(),
			}
			c.sessionSize += info.Size()
			c.mu.Unlock()
			c.index.Add(key, struct{}{})
		}
	}
	return nil
}

func indexKey(hash string, size config.ThumbnailSize) string {
	return hash + "." + size.String()
}

func hashFromFilename(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}

// extFor decides the output format for a thumbnail of d: PNG for
// sources that are themselves PNG or ZIP-embedded previews (which are
// PNG), JPEG otherwise. Recorded as an Open Question resolution in
// DESIGN.md since the source->format mapping isn't otherwise spelled
// out.
func extFor(d descriptor.Descriptor) string {
	switch d.Format {
	case descriptor.RASTER_PNG, descriptor.KRA, descriptor.ORA:
		return "png"
	default:
		return "jpeg"
	}
}

func jpegQualityFor(size config.ThumbnailSize) int {
	if size == config.SizeLarge || size == config.SizeHuge {
		return 85
	}
	return 95
}

// path returns the on-disk path for a thumbnail of hash at size in
// tier.
func (c *Cache) path(tier, hash, ext string, size config.ThumbnailSize) string {
	return filepath.Join(c.cfg.TierDir(tier, size), hash+"."+ext)
}

// Thumbnail implements the thumbnail(descriptor, size, useCache)
// contract.
func (c *Cache) Thumbnail(d descriptor.Descriptor, size config.ThumbnailSize, useCache bool) (image.Image, string, error) {
	if !d.Hash.Valid() {
		return nil, "", fmt.Errorf("thumbcache: descriptor has no quick-hash")
	}
	hash := d.Hash.String()
	ext := extFor(d)

	if useCache {
		if im, foundExt, ok := c.readCached(hash, size); ok {
			return im, foundExt, nil
		}
		if im, foundExt, ok := c.readLargerAndDownscale(hash, size); ok {
			return im, foundExt, nil
		}
	}

	key := hash + "." + size.String()
	v, err, _ := c.gen.Do(key, func() (interface{}, error) {
		return c.generate(hash, size, ext, func() (image.Image, error) { return loadFullImage(d) })
	})
	if err != nil {
		return nil, "", err
	}
	gr := v.(generated)
	return gr.im, gr.ext, nil
}

type generated struct {
	im  image.Image
	ext string
}

// generate produces a thumbnail from scratch via load, persists it to
// the session tier, and returns it — this is the single-flighted
// body, so at most one goroutine per hash+size runs it concurrently.
// It is shared by Thumbnail's file-backed path and the clipboard
// package's in-memory path (clipboard.Ingestor).
func (c *Cache) generate(hash string, size config.ThumbnailSize, ext string, load func() (image.Image, error)) (generated, error) {
	c.gate.Start()
	defer c.gate.Done()

	full, err := load()
	if err != nil {
		return generated{}, err
	}
	scaled := downscale(full, int(size))

	data, err := encode(scaled, ext, jpegQualityFor(size))
	if err != nil {
		return generated{}, err
	}

	dest := c.path(tierSession, hash, ext, size)
	if err := atomicWrite(dest, data); err != nil {
		// A failed cache write still returns the thumbnail to the
		// caller; no cache entry is recorded.
		debuglog.Printf("thumbcache: write failed for %s: %v", dest, err)
		return generated{im: scaled, ext: ext}, nil
	}
	c.recordSessionEntry(hash, size, dest, int64(len(data)))
	c.evictSessionIfNeeded()
	return generated{im: scaled, ext: ext}, nil
}

// IngestImage writes im directly into the cache under hash/size/ext,
// bypassing any file-backed source lookup. The clipboard package uses
// this to promote an in-memory clipboard payload to a cache entry
// without ever touching disk for the source image.
func (c *Cache) IngestImage(hash string, size config.ThumbnailSize, ext string, im image.Image) (image.Image, string, error) {
	key := hash + "." + size.String()
	v, err, _ := c.gen.Do(key, func() (interface{}, error) {
		return c.generate(hash, size, ext, func() (image.Image, error) { return im, nil })
	})
	if err != nil {
		return nil, "", err
	}
	gr := v.(generated)
	return gr.im, gr.ext, nil
}

func (c *Cache) recordSessionEntry(hash string, size config.ThumbnailSize, path string, bytes int64) {
	key := indexKey(hash, size)
	c.mu.Lock()
	if old, ok := c.sessionMeta[key]; ok {
		c.sessionSize -= old.bytes
	}
	c.sessionMeta[key] = entryMeta{path: path, bytes: bytes, timestamp: time.Now()}
	c.sessionSize += bytes
	c.mu.Unlock()
	c.index.Add(key, struct{}{})
}

// Size returns the entry count and total byte count of the named
// tier ("session" or "persistent").
func (c *Cache) Size(tier string) (count int, bytes int64) {
	if tier == tierSession {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.sessionMeta), c.sessionSize
	}
	var n int
	var total int64
	for _, size := range config.Sizes {
		entries, err := os.ReadDir(c.cfg.TierDir(tierPersistent, size))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if info, err := e.Info(); err == nil {
				n++
				total += info.Size()
			}
		}
	}
	return n, total
}
