package thumbcache

import (
	"fmt"
	"os"

	"github.com/grum999/bulicore/pkg/config"
)

// SetPersistent promotes every cached size of hash from the session
// tier to the persistent tier, or demotes it back, driven by a user's
// bookmark or an explicit "keep" action.
func (c *Cache) SetPersistent(hash string, persistent bool) error {
	for _, size := range config.Sizes {
		for _, ext := range []string{"png", "jpeg"} {
			src := c.cfg.TierDir(tierSession, size)
			dst := c.cfg.TierDir(tierPersistent, size)
			if !persistent {
				src, dst = dst, src
			}
			from := srcPath(src, hash, ext)
			to := srcPath(dst, hash, ext)
			if _, err := os.Stat(from); err != nil {
				continue
			}
			if err := os.Rename(from, to); err != nil {
				return fmt.Errorf("thumbcache: moving %s: %w", from, err)
			}
			if persistent {
				c.forgetSessionEntry(hash, size)
			} else {
				if info, err := os.Stat(to); err == nil {
					c.recordSessionEntry(hash, size, to, info.Size())
				}
			}
		}
	}
	return nil
}

func srcPath(dir, hash, ext string) string {
	return dir + "/" + hash + "." + ext
}

func (c *Cache) forgetSessionEntry(hash string, size config.ThumbnailSize) {
	key := indexKey(hash, size)
	c.mu.Lock()
	if e, ok := c.sessionMeta[key]; ok {
		c.sessionSize -= e.bytes
		delete(c.sessionMeta, key)
	}
	c.mu.Unlock()
	c.index.Remove(key)
}

// FlushSession deletes every session-tier thumbnail, reclaiming all of
// its byte budget: the session tier is disposable and safe to clear
// entirely between runs.
func (c *Cache) FlushSession() error {
	c.mu.Lock()
	paths := make([]string, 0, len(c.sessionMeta))
	for _, m := range c.sessionMeta {
		paths = append(paths, m.path)
	}
	c.sessionMeta = make(map[string]entryMeta)
	c.sessionSize = 0
	c.mu.Unlock()

	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FlushPersistent deletes every persistent-tier thumbnail: an
// explicit "clear the whole cache" maintenance operation, since the
// persistent tier otherwise survives indefinitely.
func (c *Cache) FlushPersistent() error {
	var firstErr error
	for _, size := range config.Sizes {
		dir := c.cfg.TierDir(tierPersistent, size)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if err := os.Remove(dir + "/" + e.Name()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
