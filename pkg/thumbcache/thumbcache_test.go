package thumbcache

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grum999/bulicore/pkg/config"
)

func TestAtomicWriteThenReadBack(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.bin")
	if err := atomicWrite(dest, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
	// No leftover temp files.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file in %s, got %d", dir, len(entries))
	}
}

func TestDownscalePreservesAspectRatio(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.White)
		}
	}
	out := downscale(src, 64)
	b := out.Bounds()
	if b.Dx() != 64 {
		t.Fatalf("expected longest side 64, got %dx%d", b.Dx(), b.Dy())
	}
	if b.Dy() != 32 {
		t.Fatalf("expected aspect ratio preserved (32), got %d", b.Dy())
	}
}

func newTestCache(t *testing.T, ceiling int64) *Cache {
	t.Helper()
	root := t.TempDir()
	cfgRoot := t.TempDir()
	cfg := config.Cache{Root: root, ConfigRoot: cfgRoot, SessionCeilingBytes: ceiling}
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestEvictionRemovesOldestEntriesFirst(t *testing.T) {
	c := newTestCache(t, 150)

	write := func(hash string, ts time.Time, n int) {
		p := c.path(tierSession, hash, "png", config.SizeSmall)
		if err := atomicWrite(p, make([]byte, n)); err != nil {
			t.Fatal(err)
		}
		c.mu.Lock()
		c.sessionMeta[indexKey(hash, config.SizeSmall)] = entryMeta{path: p, bytes: int64(n), timestamp: ts}
		c.sessionSize += int64(n)
		c.mu.Unlock()
	}

	now := time.Now()
	write("aaa", now.Add(-2*time.Hour), 100)
	write("bbb", now.Add(-1*time.Hour), 100)

	c.evictSessionIfNeeded()

	if _, err := os.Stat(c.path(tierSession, "aaa", "png", config.SizeSmall)); !os.IsNotExist(err) {
		t.Fatal("oldest entry should have been evicted")
	}
	if _, err := os.Stat(c.path(tierSession, "bbb", "png", config.SizeSmall)); err != nil {
		t.Fatal("newest entry should survive eviction")
	}

	n, bytes := c.Size(tierSession)
	if n != 1 || bytes != 100 {
		t.Fatalf("expected 1 entry / 100 bytes remaining, got %d/%d", n, bytes)
	}
}

func TestFlushSessionRemovesAllFiles(t *testing.T) {
	c := newTestCache(t, 1<<30)
	p := c.path(tierSession, "ccc", "png", config.SizeSmall)
	if err := atomicWrite(p, []byte("x")); err != nil {
		t.Fatal(err)
	}
	c.recordSessionEntry("ccc", config.SizeSmall, p, 1)

	if err := c.FlushSession(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatal("expected session file removed after FlushSession")
	}
	n, bytes := c.Size(tierSession)
	if n != 0 || bytes != 0 {
		t.Fatalf("expected empty session tier, got %d entries / %d bytes", n, bytes)
	}
}
