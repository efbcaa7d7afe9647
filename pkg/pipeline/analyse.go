package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grum999/bulicore/internal/chanworker"
	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/imageprobe"
	"github.com/grum999/bulicore/pkg/quickhash"
)

// analyse turns every enumerated entry into a fully populated
// Descriptor, fanning the work out across workers goroutines via
// chanworker and reporting progress every progressEvery items. ctx is
// checked before every per-file describe call, the safe checkpoint
// between files; a cancelled ctx stops dispatch and the call returns
// as soon as the already-dispatched items drain, without waiting for
// the rest of entries.
func analyse(ctx context.Context, entries []enum.Entry, workers int, emit func(Event)) []descriptor.Descriptor {
	if workers <= 0 {
		workers = 4
	}
	results := make([]descriptor.Descriptor, len(entries))

	var done int32
	total := len(entries)
	const progressEvery = 64

	var wg sync.WaitGroup

	workc := chanworker.NewWorker(workers, func(item interface{}, ok bool) {
		if !ok {
			return // final sentinel; nothing to free
		}
		idx := item.(int)
		if ctx.Err() == nil {
			results[idx] = describe(entries[idx])
		}
		wg.Done()

		n := atomic.AddInt32(&done, 1)
		if n%progressEvery == 0 || int(n) == total {
			emit(Event{Kind: ProgressAnalyse, Done: int(n), Total: total})
		}
	})

dispatch:
	for i := range entries {
		if ctx.Err() != nil {
			break dispatch
		}
		wg.Add(1)
		select {
		case <-ctx.Done():
			wg.Done()
			break dispatch
		case workc <- i:
		}
	}
	close(workc)
	wg.Wait()

	emit(Event{Kind: AnalyseDone, Done: total, Total: total})
	return results
}

// Describe builds the Descriptor for a single path, the same way the
// pipeline's analyse phase does for every enumerated entry — exported
// for callers (such as a thumbnail-only CLI mode) that need one
// descriptor without running a full enumerate/filter/sort pipeline.
func Describe(path string) descriptor.Descriptor {
	kind := enum.KindFile
	if info, err := os.Lstat(path); err == nil && info.IsDir() {
		kind = enum.KindDirectory
	}
	return describe(enum.Entry{Path: path, Kind: kind})
}

// describe builds one Descriptor from an enumerated entry. I/O errors
// while hashing or probing mark the entry unreadable rather than
// aborting the analyse phase; unreadable files still surface with
// best-effort metadata.
func describe(e enum.Entry) descriptor.Descriptor {
	info, err := os.Lstat(e.Path)
	var modTime time.Time
	if err == nil {
		modTime = info.ModTime()
	}

	if e.Kind == enum.KindDirectory {
		return descriptor.NewDirectory(e.Path, modTime)
	}

	d := descriptor.Descriptor{
		FullPath: e.Path,
		Dir:      filepath.Dir(e.Path),
		Name:     filepath.Base(e.Path),
		ModTime:  modTime,
		Image:    descriptor.Unknown,
	}
	if err != nil || !info.Mode().IsRegular() {
		d.Readable = false
		d.Format = descriptor.UNKNOWN
		return d
	}
	d.ByteSize = info.Size()
	ext := strings.TrimPrefix(filepath.Ext(d.Name), ".")

	hash, herr := quickhash.Of(e.Path)
	d.Readable = herr == nil
	if herr == nil {
		d.Hash = hash
	}

	result := imageprobe.Probe(e.Path, ext)
	d.Format = result.Format
	d.Image = result.Size
	return d
}
