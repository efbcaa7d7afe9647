package imageprobe

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/grum999/bulicore/pkg/constants"
)

// KRA and ORA are both ZIP archives whose dimensions live in a small
// named inner XML document. archive/zip and encoding/xml are the only
// packages needed to read an inner document out of a container
// format, so no third-party dependency is pulled in for this.

var errNoDimensions = errors.New("imageprobe: no dimension attributes found")

type kraMainDoc struct {
	XMLName xml.Name `xml:"DOC"`
	Image   struct {
		Width  int `xml:"width,attr"`
		Height int `xml:"height,attr"`
	} `xml:"IMAGE"`
}

// probeKRA opens path as a ZIP archive and reads maindoc.xml's root
// element's width/height attributes.
func probeKRA(path string) (w, h int, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, 0, err
	}
	defer zr.Close()

	f, err := findZipEntry(&zr.Reader, "maindoc.xml")
	if err != nil {
		return 0, 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	var doc kraMainDoc
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return 0, 0, err
	}
	if doc.Image.Width <= 0 || doc.Image.Height <= 0 {
		return 0, 0, errNoDimensions
	}
	return doc.Image.Width, doc.Image.Height, nil
}

type oraStackDoc struct {
	XMLName xml.Name `xml:"image"`
	W       int      `xml:"w,attr"`
	H       int      `xml:"h,attr"`
}

// probeORA opens path as a ZIP archive and reads stack.xml's root
// element's w/h attributes.
func probeORA(path string) (w, h int, err error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, 0, err
	}
	defer zr.Close()

	f, err := findZipEntry(&zr.Reader, "stack.xml")
	if err != nil {
		return 0, 0, err
	}
	rc, err := f.Open()
	if err != nil {
		return 0, 0, err
	}
	defer rc.Close()

	var doc oraStackDoc
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return 0, 0, err
	}
	if doc.W <= 0 || doc.H <= 0 {
		return 0, 0, errNoDimensions
	}
	return doc.W, doc.H, nil
}

func findZipEntry(zr *zip.Reader, name string) (*zip.File, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("imageprobe: no %q entry in archive", name)
}

// EmbeddedPreview opens one of several candidate inner paths in
// order, returning the first that exists, for the thumbnail cache's
// format-specific fast paths (ORA's Thumbnail/thumbnail.png, KRA's
// mergedimage.png falling back to preview.png).
func EmbeddedPreview(path string, candidates []string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	for _, name := range candidates {
		f, err := findZipEntry(&zr.Reader, name)
		if err != nil {
			continue
		}
		if f.UncompressedSize64 > constants.MaxEmbeddedPreviewSize {
			continue // implausibly large preview entry; fall back to a full decode
		}
		rc, err := f.Open()
		if err != nil {
			zr.Close()
			return nil, err
		}
		return &zipReadCloser{ReadCloser: rc, zr: zr}, nil
	}
	zr.Close()
	return nil, fmt.Errorf("imageprobe: no preview entry found among %v", candidates)
}

// zipReadCloser closes both the inner file reader and the archive
// once the caller is done with the preview bytes.
type zipReadCloser struct {
	io.ReadCloser
	zr *zip.ReadCloser
}

func (z *zipReadCloser) Close() error {
	err := z.ReadCloser.Close()
	if zerr := z.zr.Close(); err == nil {
		err = zerr
	}
	return err
}
