package thumbcache

import (
	"image"
	"os"
	"sort"
	"time"

	"github.com/grum999/bulicore/pkg/config"
)

// readCached looks for an exact-size thumbnail for hash, persistent
// tier first, then session.
func (c *Cache) readCached(hash string, size config.ThumbnailSize) (image.Image, string, bool) {
	for _, tier := range []string{tierPersistent, tierSession} {
		for _, ext := range []string{"png", "jpeg"} {
			p := c.path(tier, hash, ext, size)
			if im, ok := readImageFile(p); ok {
				if tier == tierSession {
					c.touchSessionEntry(hash, size, p)
				}
				return im, ext, true
			}
		}
	}
	return nil, "", false
}

// readLargerAndDownscale finds the smallest already-cached size
// larger than size and downscales it on the fly, without writing a
// new cache entry, avoiding a full source decode.
func (c *Cache) readLargerAndDownscale(hash string, size config.ThumbnailSize) (image.Image, string, bool) {
	next := size
	for {
		larger, ok := next.Larger()
		if !ok {
			return nil, "", false
		}
		next = larger
		if im, ext, ok := c.readCached(hash, next); ok {
			return downscale(im, int(size)), ext, true
		}
	}
}

func readImageFile(path string) (image.Image, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()
	im, _, err := image.Decode(f)
	if err != nil {
		return nil, false
	}
	return im, true
}

func (c *Cache) touchSessionEntry(hash string, size config.ThumbnailSize, path string) {
	key := indexKey(hash, size)
	c.mu.Lock()
	if e, ok := c.sessionMeta[key]; ok {
		e.timestamp = time.Now()
		c.sessionMeta[key] = e
	}
	c.mu.Unlock()
	c.index.Get(key) // bump LRU recency
}

// evictSessionIfNeeded removes session-tier entries, oldest timestamp
// first, until total session bytes are back under the configured
// ceiling.
func (c *Cache) evictSessionIfNeeded() {
	c.mu.Lock()
	if c.sessionSize <= c.cfg.SessionCeilingBytes {
		c.mu.Unlock()
		return
	}
	entries := make([]struct {
		key  string
		meta entryMeta
	}, 0, len(c.sessionMeta))
	for k, m := range c.sessionMeta {
		entries = append(entries, struct {
			key  string
			meta entryMeta
		}{k, m})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].meta.timestamp.Before(entries[j].meta.timestamp)
	})
	var toRemove []string
	for _, e := range entries {
		if c.sessionSize <= c.cfg.SessionCeilingBytes {
			break
		}
		toRemove = append(toRemove, e.key)
		c.sessionSize -= e.meta.bytes
	}
	paths := make([]string, 0, len(toRemove))
	for _, k := range toRemove {
		paths = append(paths, c.sessionMeta[k].path)
		delete(c.sessionMeta, k)
	}
	c.mu.Unlock()

	for _, p := range paths {
		os.Remove(p)
	}
}
