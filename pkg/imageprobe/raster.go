package imageprobe

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/grum999/bulicore/internal/debuglog"
)

// FlipDirection indicates which axis to flip an image on, mirroring
// the bitfield a Camlistore-family image decoder uses for manual
// overrides.
type FlipDirection int

const (
	FlipVertical FlipDirection = 1 << iota
	FlipHorizontal
)

// DecodeOpts controls RASTER decoding. A nil Rotate/Flip means "derive
// from EXIF orientation if present", which is what ImageProbe always
// wants; ThumbnailCache's full-image load path uses the same
// defaults.
type DecodeOpts struct {
	Rotate interface{} // nil, or int: 0, 90, -90, 180, -180
	Flip   interface{} // nil, or FlipDirection
}

// RasterInfo is the outcome of decoding a raster image's header.
type RasterInfo struct {
	Width, Height int
	Format        string // "jpeg" or "png" (as reported by image.Decode)
	Modified      bool   // true if EXIF orientation required a rotate/flip
}

func (o *DecodeOpts) forcedRotate() bool { return o != nil && o.Rotate != nil }
func (o *DecodeOpts) forcedFlip() bool   { return o != nil && o.Flip != nil }
func (o *DecodeOpts) useEXIF() bool      { return !(o.forcedRotate() || o.forcedFlip()) }

// DecodeConfig reads just enough of r to report the image's format
// and dimensions (post-EXIF-rotation, when the format is JPEG and
// carries an Orientation tag), without decoding pixel data. This is
// the fast path ImageProbe uses — it never needs the pixels, only the
// bounds.
func DecodeConfig(r io.Reader) (RasterInfo, error) {
	var buf bytes.Buffer
	tr := io.TeeReader(io.LimitReader(r, 2<<20), &buf)
	cfg, format, err := image.DecodeConfig(tr)
	if err != nil {
		return RasterInfo{}, err
	}
	w, h := cfg.Width, cfg.Height
	if format == "jpeg" {
		if swapped, ok := exifSwapsDimensions(io.MultiReader(&buf, r)); ok && swapped {
			w, h = h, w
		}
	}
	return RasterInfo{Width: w, Height: h, Format: format}, nil
}

// exifSwapsDimensions reports whether the EXIF orientation tag
// implies a 90-or-270-degree rotation, which swaps width and height
// relative to what image.DecodeConfig reported from the raw raster
// grid.
func exifSwapsDimensions(r io.Reader) (swap bool, ok bool) {
	ex, err := exif.Decode(r)
	if err != nil {
		return false, false
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return false, false
	}
	orient, err := tag.Int(0)
	if err != nil {
		return false, false
	}
	switch orient {
	case 5, 6, 7, 8:
		return true, true
	default:
		return false, true
	}
}

// Decode fully decodes a JPEG image, applying EXIF auto-rotation
// unless opts forces a specific rotate/flip. Used by ThumbnailCache
// when generating a thumbnail from the full image rather than an
// embedded preview.
func Decode(r io.Reader, opts *DecodeOpts) (image.Image, RasterInfo, error) {
	var info RasterInfo
	var buf bytes.Buffer
	tr := io.TeeReader(io.LimitReader(r, 32<<20), &buf)
	angle := 0
	flipMode := FlipDirection(0)

	if opts.useEXIF() {
		ex, err := exif.Decode(tr)
		if err != nil {
			debuglog.Printf("imageprobe: no EXIF, decoding without rotation: %v", err)
			return decodePlain(io.MultiReader(&buf, r))
		}
		tag, err := ex.Get(exif.Orientation)
		if err != nil {
			return decodePlain(io.MultiReader(&buf, r))
		}
		orient, _ := tag.Int(0)
		angle, flipMode = orientationToTransform(orient)
	} else {
		if opts.forcedRotate() {
			a, ok := opts.Rotate.(int)
			if !ok {
				return nil, info, fmt.Errorf("imageprobe: Rotate must be an int, got %T", opts.Rotate)
			}
			angle = a
		}
		if opts.forcedFlip() {
			f, ok := opts.Flip.(FlipDirection)
			if !ok {
				return nil, info, fmt.Errorf("imageprobe: Flip must be a FlipDirection, got %T", opts.Flip)
			}
			flipMode = f
		}
	}

	im, err := jpeg.Decode(io.MultiReader(&buf, r))
	if err != nil {
		return nil, info, err
	}
	im = flipImage(rotateImage(im, angle), flipMode)
	info.Format = "jpeg"
	info.Modified = angle != 0 || flipMode != 0
	info.Width, info.Height = im.Bounds().Dx(), im.Bounds().Dy()
	return im, info, nil
}

func decodePlain(r io.Reader) (image.Image, RasterInfo, error) {
	var info RasterInfo
	im, format, err := image.Decode(r)
	info.Format = format
	if im != nil {
		info.Width, info.Height = im.Bounds().Dx(), im.Bounds().Dy()
	}
	return im, info, err
}

func orientationToTransform(orient int) (angle int, flip FlipDirection) {
	switch orient {
	case 2:
		return 0, FlipHorizontal
	case 3:
		return 180, 0
	case 4:
		return 180, FlipHorizontal
	case 5:
		return -90, FlipHorizontal
	case 6:
		return -90, 0
	case 7:
		return 90, FlipHorizontal
	case 8:
		return 90, 0
	default:
		return 0, 0
	}
}

func rotateImage(im image.Image, angle int) image.Image {
	var rotated *image.NRGBA
	switch angle {
	case 90:
		newW, newH := im.Bounds().Dy(), im.Bounds().Dx()
		rotated = image.NewNRGBA(image.Rect(0, 0, newW, newH))
		for y := 0; y < newH; y++ {
			for x := 0; x < newW; x++ {
				rotated.Set(x, y, im.At(newH-1-y, x))
			}
		}
	case -90:
		newW, newH := im.Bounds().Dy(), im.Bounds().Dx()
		rotated = image.NewNRGBA(image.Rect(0, 0, newW, newH))
		for y := 0; y < newH; y++ {
			for x := 0; x < newW; x++ {
				rotated.Set(x, y, im.At(y, newW-1-x))
			}
		}
	case 180, -180:
		newW, newH := im.Bounds().Dx(), im.Bounds().Dy()
		rotated = image.NewNRGBA(image.Rect(0, 0, newW, newH))
		for y := 0; y < newH; y++ {
			for x := 0; x < newW; x++ {
				rotated.Set(x, y, im.At(newW-1-x, newH-1-y))
			}
		}
	default:
		return im
	}
	return rotated
}

func flipImage(im image.Image, dir FlipDirection) image.Image {
	if dir == 0 {
		return im
	}
	dx, dy := im.Bounds().Dx(), im.Bounds().Dy()
	di, ok := im.(draw.Image)
	var ycbcr bool
	if !ok {
		ycbcr = true
		nrgba := image.NewNRGBA(image.Rect(0, 0, dx, dy))
		draw.Draw(nrgba, nrgba.Bounds(), im, image.Point{}, draw.Src)
		di = nrgba
		im = nrgba
	}
	if dir&FlipHorizontal != 0 {
		for y := 0; y < dy; y++ {
			for x := 0; x < dx/2; x++ {
				old := im.At(x, y)
				di.Set(x, y, im.At(dx-1-x, y))
				di.Set(dx-1-x, y, old)
			}
		}
	}
	if dir&FlipVertical != 0 {
		for y := 0; y < dy/2; y++ {
			for x := 0; x < dx; x++ {
				old := im.At(x, y)
				di.Set(x, y, im.At(x, dy-1-y))
				di.Set(x, dy-1-y, old)
			}
		}
	}
	if ycbcr {
		return im
	}
	return di.(image.Image)
}
