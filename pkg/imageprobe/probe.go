// Package imageprobe implements format sniffing and dimension
// extraction for the raster, vector, KRA, and ORA formats bulicore
// recognises.
package imageprobe

import (
	"bytes"
	"io"
	"os"

	"github.com/grum999/bulicore/pkg/descriptor"
)

// Result is the outcome of a Probe call: Probe never returns an
// error — a failed probe is UNKNOWN with no size.
type Result struct {
	Format descriptor.FormatTag
	Size   descriptor.ImageSize // descriptor.Unknown if not applicable
}

const sniffWindow = 512

// Probe tries the extension hint's native decode path first, falls
// through to ZIP introspection for kra/ora or an unrecognised
// extension, and returns UNKNOWN on any failure — never propagating
// an error to the caller.
func Probe(path, extensionHint string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Format: descriptor.UNKNOWN, Size: descriptor.Unknown}
	}
	defer f.Close()

	hint := descriptor.FormatFromExtension(extensionHint)

	switch hint {
	case descriptor.RASTER_PNG, descriptor.RASTER_JPEG:
		if r, ok := probeRaster(f, hint); ok {
			return r
		}
	case descriptor.VECTOR_SVG:
		if r, ok := probeSVG(f); ok {
			return r
		}
	case descriptor.KRA:
		if r, ok := probeKRAFile(path); ok {
			return r
		}
	case descriptor.ORA:
		if r, ok := probeORAFile(path); ok {
			return r
		}
	}

	// extensionHint didn't pan out, or was absent/unrecognised: fall
	// back to content sniffing.
	var hdr [sniffWindow]byte
	n, _ := f.ReadAt(hdr[:], 0)
	mt := sniff(hdr[:n])
	switch mt {
	case "image/png":
		if r, ok := probeRasterAt(path, descriptor.RASTER_PNG); ok {
			return r
		}
	case "image/jpeg":
		if r, ok := probeRasterAt(path, descriptor.RASTER_JPEG); ok {
			return r
		}
	case "application/zip":
		if r, ok := probeKRAFile(path); ok {
			return r
		}
		if r, ok := probeORAFile(path); ok {
			return r
		}
	}
	if looksLikeSVG(hdr[:n]) {
		if r, ok := probeSVG(f); ok {
			return r
		}
	}

	return Result{Format: descriptor.UNKNOWN, Size: descriptor.Unknown}
}

func probeRaster(f *os.File, hint descriptor.FormatTag) (Result, bool) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, false
	}
	info, err := DecodeConfig(f)
	if err != nil {
		return Result{}, false
	}
	format := hint
	// jpg -> JPEG normalisation is already handled by FormatFromExtension;
	// here we additionally trust the decoder's own format classification
	// when it disagrees with the hint.
	switch info.Format {
	case "jpeg":
		format = descriptor.RASTER_JPEG
	case "png":
		format = descriptor.RASTER_PNG
	}
	return Result{Format: format, Size: descriptor.ImageSize{Width: info.Width, Height: info.Height}}, true
}

func probeRasterAt(path string, hint descriptor.FormatTag) (Result, bool) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, false
	}
	defer f.Close()
	return probeRaster(f, hint)
}

func probeSVG(f *os.File) (Result, bool) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, false
	}
	w, h, ok := parseSVGDimensions(f)
	if !ok {
		// A valid SVG with no discoverable width/height is still a
		// readable vector file; only a failure to *format-detect* (not
		// a failure to size) marks it unreadable.
		return Result{Format: descriptor.VECTOR_SVG, Size: descriptor.Unknown}, true
	}
	return Result{Format: descriptor.VECTOR_SVG, Size: descriptor.ImageSize{Width: w, Height: h}}, true
}

func probeKRAFile(path string) (Result, bool) {
	w, h, err := probeKRA(path)
	if err != nil {
		return Result{}, false
	}
	return Result{Format: descriptor.KRA, Size: descriptor.ImageSize{Width: w, Height: h}}, true
}

func probeORAFile(path string) (Result, bool) {
	w, h, err := probeORA(path)
	if err != nil {
		return Result{}, false
	}
	return Result{Format: descriptor.ORA, Size: descriptor.ImageSize{Width: w, Height: h}}, true
}

// parseSVGDimensions does a minimal attribute scan for width/height
// on the <svg> root element; SVG permits units (px, mm, %) that a
// full image-size reading wouldn't need to resolve, so only bare
// numeric values are parsed and anything else yields !ok.
func parseSVGDimensions(r io.Reader) (w, h int, ok bool) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, 4096); err != nil && err != io.EOF {
		return 0, 0, false
	}
	wv, wok := scanIntAttr(buf.Bytes(), "width")
	hv, hok := scanIntAttr(buf.Bytes(), "height")
	if !wok || !hok {
		return 0, 0, false
	}
	return wv, hv, true
}

func scanIntAttr(data []byte, attr string) (int, bool) {
	needle := []byte(attr + "=\"")
	idx := bytes.Index(data, needle)
	if idx < 0 {
		return 0, false
	}
	rest := data[idx+len(needle):]
	end := bytes.IndexByte(rest, '"')
	if end < 0 {
		return 0, false
	}
	val := rest[:end]
	n := 0
	for _, c := range val {
		if c < '0' || c > '9' {
			return 0, false // units present (px, mm, %) — not a bare integer
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}
