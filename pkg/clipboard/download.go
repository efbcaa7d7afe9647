package clipboard

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go4.org/syncutil"

	"github.com/grum999/bulicore/pkg/config"
	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/quickhash"
	"github.com/grum999/bulicore/pkg/thumbcache"
)

// DownloadEvent reports progress for one in-flight URL download,
// generalising a single-download-at-a-time queue into a bounded
// concurrent one.
type DownloadEvent struct {
	URL      string
	Received int64
	Total    int64
	Done     bool
	Hash     string
	Err      error
}

// Downloader fetches clipboard URL payloads with bounded concurrency,
// writing to the cache's downloading/ staging directory and moving the
// result atomically into place on success.
type Downloader struct {
	cache *thumbcache.Cache
	cfg   config.Cache
	gate  *syncutil.Gate

	mu        sync.Mutex
	listeners []func(DownloadEvent)
}

// NewDownloader builds a Downloader bounded by cfg.MaxConcurrentDownloads.
func NewDownloader(cache *thumbcache.Cache, cfg config.Cache) *Downloader {
	n := cfg.MaxConcurrentDownloads
	if n <= 0 {
		n = 4
	}
	return &Downloader{cache: cache, cfg: cfg, gate: syncutil.NewGate(n)}
}

// OnProgress registers a callback invoked for every DownloadEvent.
func (d *Downloader) OnProgress(fn func(DownloadEvent)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

func (d *Downloader) emit(e DownloadEvent) {
	d.mu.Lock()
	listeners := append([]func(DownloadEvent){}, d.listeners...)
	d.mu.Unlock()
	for _, fn := range listeners {
		fn(e)
	}
}

// Enqueue starts one goroutine per URL, bounded by the gate, and
// blocks until all of them finish — synchronous from the caller's
// point of view even though the network fetch itself runs
// concurrently with other in-flight downloads.
func (d *Downloader) Enqueue(urls []string) ([]Entry, error) {
	var wg sync.WaitGroup
	entries := make([]Entry, len(urls))
	errs := make([]error, len(urls))

	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			entries[i], errs[i] = d.downloadOne(url)
		}(i, url)
	}
	wg.Wait()

	var out []Entry
	for i, e := range entries {
		if errs[i] == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (d *Downloader) downloadOne(url string) (Entry, error) {
	d.gate.Start()
	defer d.gate.Done()

	resp, err := http.Get(url)
	if err != nil {
		d.emit(DownloadEvent{URL: url, Done: true, Err: err})
		return Entry{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("clipboard: downloading %s: status %s", url, resp.Status)
		d.emit(DownloadEvent{URL: url, Done: true, Err: err})
		return Entry{}, err
	}

	tmp, err := os.CreateTemp(d.cfg.DownloadingDir(), ".download-*")
	if err != nil {
		return Entry{}, fmt.Errorf("clipboard: staging download for %s: %w", url, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	expected := resp.ContentLength
	progress := &progressWriter{url: url, total: expected, emit: d.emit}
	received, err := io.Copy(tmp, io.TeeReader(resp.Body, progress))
	tmp.Close()
	if err != nil {
		d.emit(DownloadEvent{URL: url, Done: true, Err: err})
		return Entry{}, err
	}
	// A size mismatch between expected and received bytes means a
	// truncated transfer; delete the partial file rather than keep it.
	if expected > 0 && received != expected {
		err := fmt.Errorf("clipboard: %s: expected %d bytes, got %d", url, expected, received)
		d.emit(DownloadEvent{URL: url, Done: true, Err: err})
		return Entry{}, err
	}

	data, err := os.ReadFile(tmpName)
	if err != nil {
		return Entry{}, err
	}
	hash := quickhash.OfBytes(data)

	dest := filepath.Join(d.cfg.Root, "persistent", hash.String()+downloadExtHint(url))
	if err := os.Rename(tmpName, dest); err != nil {
		return Entry{}, fmt.Errorf("clipboard: moving download into place: %w", err)
	}

	entry := Entry{
		Hash: hash.String(), Kind: KindUrl, Origin: url,
		Timestamp: time.Now(), ImageSize: descriptor.Unknown,
	}
	d.emit(DownloadEvent{URL: url, Received: received, Total: expected, Done: true, Hash: hash.String()})
	return entry, nil
}

func downloadExtHint(url string) string {
	ext := filepath.Ext(url)
	if ext == "" {
		return ".bin"
	}
	return ext
}

type progressWriter struct {
	url      string
	total    int64
	received int64
	emit     func(DownloadEvent)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.received += int64(len(p))
	w.emit(DownloadEvent{URL: w.url, Received: w.received, Total: w.total})
	return len(p), nil
}
