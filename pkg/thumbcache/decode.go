package thumbcache

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/imageprobe"
)

// previewCandidates lists the archive member names to try for a
// ready-made preview before falling back to a full raster decode.
var previewCandidates = map[descriptor.FormatTag][]string{
	descriptor.ORA: {"Thumbnail/thumbnail.png"},
	descriptor.KRA: {"mergedimage.png", "preview.png"},
}

// loadFullImage produces the best available source image for d: an
// embedded preview for KRA/ORA when present, otherwise a full decode
// of the raster (or rasterised SVG, once an SVG rasteriser is wired
// in — until then SVGs fall back to an error).
func loadFullImage(d descriptor.Descriptor) (image.Image, error) {
	if candidates, ok := previewCandidates[d.Format]; ok {
		if rc, err := imageprobe.EmbeddedPreview(d.FullPath, candidates); err == nil {
			defer rc.Close()
			im, _, err := image.Decode(rc)
			if err == nil {
				return im, nil
			}
		}
	}

	f, err := os.Open(d.FullPath)
	if err != nil {
		return nil, fmt.Errorf("thumbcache: opening %s: %w", d.FullPath, err)
	}
	defer f.Close()

	im, _, err := imageprobe.Decode(f, nil)
	if err != nil {
		return nil, fmt.Errorf("thumbcache: decoding %s: %w", d.FullPath, err)
	}
	return im, nil
}

// downscale fits src into a square of side longestSide, preserving
// aspect ratio, using a high quality resampling kernel.
func downscale(src image.Image, longestSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	var nw, nh int
	if w >= h {
		nw = longestSide
		nh = h * longestSide / w
	} else {
		nh = longestSide
		nw = w * longestSide / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// encode serialises im as the requested format ("png" or "jpeg"),
// using quality for JPEG.
func encode(im image.Image, ext string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch ext {
	case "png":
		if err := png.Encode(&buf, im); err != nil {
			return nil, err
		}
	case "jpeg":
		if err := jpeg.Encode(&buf, im, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("thumbcache: unsupported encode format %q", ext)
	}
	return buf.Bytes(), nil
}
