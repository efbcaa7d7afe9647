package descriptor

import (
	"path/filepath"
	"time"

	"github.com/grum999/bulicore/pkg/quickhash"
)

// ImageSize is a width/height pair. An unknown or inapplicable size is
// (-1, -1).
type ImageSize struct {
	Width, Height int
}

// Unknown is the sentinel ImageSize for directories and files whose
// dimensions could not be determined.
var Unknown = ImageSize{Width: -1, Height: -1}

func (s ImageSize) IsUnknown() bool { return s.Width < 0 || s.Height < 0 }

// Property is the closed set of accessors exposed over a descriptor.
type Property int

const (
	PATH Property = iota
	FULL_PATHNAME
	FILE_NAME
	FILE_FORMAT
	FILE_SIZE
	FILE_DATE
	IMAGE_WIDTH
	IMAGE_HEIGHT
)

// Descriptor is the value object describing either a file or a
// directory row — a single type here, discriminated by Format, since
// the two only differ in which fields are meaningful.
type Descriptor struct {
	FullPath     string
	Dir          string
	Name         string
	ModTime      time.Time
	Format       FormatTag
	Readable     bool
	ByteSize     int64
	Image        ImageSize
	Hash         quickhash.Hash
}

// NewDirectory builds the descriptor for a directory row: byte size
// and image size are undefined and serialised as empty.
func NewDirectory(fullPath string, modTime time.Time) Descriptor {
	return Descriptor{
		FullPath: fullPath,
		Dir:      filepath.Dir(fullPath),
		Name:     filepath.Base(fullPath),
		ModTime:  modTime,
		Format:   DIRECTORY,
		Readable: true,
		Image:    Unknown,
	}
}

// IsDirectory reports whether d represents a directory row.
func (d Descriptor) IsDirectory() bool { return d.Format == DIRECTORY }

var propertyNames = map[Property]string{
	PATH: "PATH", FULL_PATHNAME: "FULL_PATHNAME", FILE_NAME: "FILE_NAME",
	FILE_FORMAT: "FILE_FORMAT", FILE_SIZE: "FILE_SIZE", FILE_DATE: "FILE_DATE",
	IMAGE_WIDTH: "IMAGE_WIDTH", IMAGE_HEIGHT: "IMAGE_HEIGHT",
}

func (p Property) String() string {
	if s, ok := propertyNames[p]; ok {
		return s
	}
	return "UNKNOWN"
}

// PropertyFromName maps a query document's property name back to its
// Property value, used by the query model resolver to turn a wire
// string into the typed accessor a Predicate carries.
func PropertyFromName(name string) (Property, bool) {
	for p, s := range propertyNames {
		if s == name {
			return p, true
		}
	}
	return 0, false
}

// Property returns the value of the named property, and false if the
// property is undefined for this descriptor (directories have
// undefined numeric properties).
func (d Descriptor) Property(p Property) (interface{}, bool) {
	switch p {
	case PATH:
		return d.Dir, true
	case FULL_PATHNAME:
		return d.FullPath, true
	case FILE_NAME:
		return d.Name, true
	case FILE_FORMAT:
		return d.Format, true
	case FILE_DATE:
		return d.ModTime.Unix(), true
	case FILE_SIZE:
		if d.IsDirectory() {
			return nil, false
		}
		return d.ByteSize, true
	case IMAGE_WIDTH:
		if d.IsDirectory() || d.Image.IsUnknown() {
			return nil, false
		}
		return d.Image.Width, true
	case IMAGE_HEIGHT:
		if d.IsDirectory() || d.Image.IsUnknown() {
			return nil, false
		}
		return d.Image.Height, true
	default:
		return nil, false
	}
}
