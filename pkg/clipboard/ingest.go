package clipboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/grum999/bulicore/pkg/config"
	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/quickhash"
	"github.com/grum999/bulicore/pkg/thumbcache"
	"github.com/grum999/bulicore/pkg/types"
)

// defaultSize is the default-size slot a freshly generated thumbnail
// is written to.
const defaultSize = config.SizeMedium

// Ingestor promotes classified clipboard payloads to thumbnail cache
// entries.
type Ingestor struct {
	cache      *thumbcache.Cache
	cfg        config.Cache
	downloader *Downloader
}

// NewIngestor builds an Ingestor backed by cache, with a URL
// downloader bounded by cfg.MaxConcurrentDownloads.
func NewIngestor(cache *thumbcache.Cache, cfg config.Cache) *Ingestor {
	return &Ingestor{cache: cache, cfg: cfg, downloader: NewDownloader(cache, cfg)}
}

// Ingest ingests p, returning zero or more Entries: a multi-URL
// HTML/plain-text payload yields one entry per successfully downloaded
// URL once downloads complete; failed downloads yield no entry.
func (ig *Ingestor) Ingest(p Payload) ([]Entry, error) {
	switch p.Kind {
	case KindImage:
		e, err := ig.ingestRaster(p)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	case KindSvg, KindKra:
		e, err := ig.ingestOpaqueBytes(p)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	case KindFile:
		var entries []Entry
		for _, path := range p.URLs {
			e, err := ig.ingestFile(path)
			if err != nil {
				continue // per-item I/O errors don't abort the batch
			}
			entries = append(entries, e)
		}
		return entries, nil
	case KindUrl:
		return ig.downloader.Enqueue(p.URLs)
	default:
		return nil, fmt.Errorf("clipboard: unclassified payload")
	}
}

func (ig *Ingestor) ingestRaster(p Payload) (Entry, error) {
	hash := quickhash.OfBytes(p.Data)
	im, _, err := image.Decode(bytes.NewReader(p.Data))
	if err != nil {
		return Entry{}, fmt.Errorf("clipboard: decoding image payload: %w", err)
	}
	b := im.Bounds()
	size := descriptor.ImageSize{Width: b.Dx(), Height: b.Dy()}

	ext := "png"
	if p.MIME == "image/jpeg" {
		ext = "jpeg"
	}
	if _, _, err := ig.cache.IngestImage(hash.String(), defaultSize, ext, im); err != nil {
		return Entry{}, err
	}

	entry := Entry{Hash: hash.String(), Kind: KindImage, Origin: "clipboard", Timestamp: time.Now(), ImageSize: size}
	if err := ig.writeSidecar(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ingestOpaqueBytes handles SVG and Krita-node/selection payloads:
// neither has a general-purpose Go rasteriser available in this
// module's dependency set, so no thumbnail is generated — only the
// hash and sidecar are recorded (see the Open Question resolutions in
// DESIGN.md).
func (ig *Ingestor) ingestOpaqueBytes(p Payload) (Entry, error) {
	hash := quickhash.OfBytes(p.Data)
	entry := Entry{Hash: hash.String(), Kind: p.Kind, Origin: "clipboard", Timestamp: time.Now(), ImageSize: descriptor.Unknown}
	if err := ig.writeSidecar(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// ingestFile handles a local-file-path clipboard payload. Unlike the
// raster/SVG/KRA payloads, which carry no stable identity besides
// their bytes, a local file is identified by where it lives: the hash
// is taken over the canonicalized path, not the file's content, so
// the same path hashes identically across calls even if the file on
// disk changes in between.
func (ig *Ingestor) ingestFile(path string) (Entry, error) {
	canon, err := enum.CanonicalPath(path)
	if err != nil {
		return Entry{}, fmt.Errorf("clipboard: canonicalizing %s: %w", path, err)
	}
	hash := quickhash.OfBytes([]byte(canon))
	entry := Entry{Hash: hash.String(), Kind: KindFile, Origin: path, Timestamp: time.Now(), ImageSize: descriptor.Unknown}
	if data, err := os.ReadFile(path); err == nil {
		if im, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			b := im.Bounds()
			entry.ImageSize = descriptor.ImageSize{Width: b.Dx(), Height: b.Dy()}
		}
	}
	if err := ig.writeSidecar(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (ig *Ingestor) writeSidecar(e Entry) error {
	s := Sidecar{
		Timestamp:  types.Time3339(e.Timestamp),
		Origin:     e.Origin,
		Type:       e.Kind.String(),
		Persistent: e.Persistent,
	}
	if !e.ImageSize.IsUnknown() {
		s.ImageWidth = e.ImageSize.Width
		s.ImageHeight = e.ImageSize.Height
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ig.cfg.SidecarPath(e.Hash), data, 0o644)
}
