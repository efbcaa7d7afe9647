package thumbcache

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicWrite writes data to dest by writing to a sibling temp file
// first and renaming over it, so a concurrent reader never observes a
// partially written thumbnail — the same write-temp-then-rename idiom
// used for blob uploads.
func atomicWrite(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("thumbcache: creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("thumbcache: writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("thumbcache: closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("thumbcache: renaming into place: %w", err)
	}
	return nil
}
