// Package clipboard classifies a raw clipboard payload and promotes
// it to a thumbnail cache entry equivalent to a file-origin entry.
package clipboard

import (
	"time"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/types"
)

// Kind is the classified payload kind.
type Kind int

const (
	KindFile Kind = iota
	KindImage
	KindSvg
	KindKra
	KindUrl
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "FileEntry"
	case KindImage:
		return "ImageEntry"
	case KindSvg:
		return "SvgEntry"
	case KindKra:
		return "KraEntry"
	case KindUrl:
		return "UrlEntry"
	default:
		return "UNKNOWN"
	}
}

// Payload is a classified clipboard payload, ready for ingestion.
type Payload struct {
	Kind Kind
	MIME string
	Data []byte   // raw bytes, for KindImage/KindSvg/KindKra
	URLs []string // local paths (KindFile) or URLs (KindUrl)
}

// Entry is the result of ingesting one Payload item, scoped to what
// this package produces.
type Entry struct {
	Hash       string
	Kind       Kind
	Origin     string
	Timestamp  time.Time
	ImageSize  descriptor.ImageSize
	Persistent bool
}

// Sidecar is the on-disk JSON metadata companion for a cache entry.
// Timestamp uses types.Time3339 so the sidecar's encoding is a fixed
// UTC RFC 3339 string regardless of the host's local offset, instead
// of time.Time's offset-carrying default JSON encoding.
type Sidecar struct {
	Timestamp    types.Time3339 `json:"timestamp"`
	Origin       string         `json:"origin"`
	Type         string         `json:"type"`
	ImageWidth   int            `json:"imageSize.width,omitempty"`
	ImageHeight  int            `json:"imageSize.height,omitempty"`
	Persistent   bool           `json:"persistent"`
	FileName     string         `json:"fileName,omitempty"`
	URL          string         `json:"url.url,omitempty"`
	URLOrigin    string         `json:"url.origin,omitempty"`
	DownloadSize int64          `json:"url.downloadSize,omitempty"`
}
