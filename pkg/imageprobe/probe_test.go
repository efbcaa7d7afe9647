package imageprobe

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/grum999/bulicore/pkg/descriptor"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	im := image.NewRGBA(image.Rect(0, 0, w, h))
	im.Set(0, 0, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, im); err != nil {
		t.Fatal(err)
	}
}

func TestProbePNG(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.png")
	writePNG(t, p, 512, 384)

	r := Probe(p, "png")
	if r.Format != descriptor.RASTER_PNG {
		t.Fatalf("expected RASTER_PNG, got %v", r.Format)
	}
	if r.Size.Width != 512 || r.Size.Height != 384 {
		t.Fatalf("expected 512x384, got %v", r.Size)
	}
}

func writeKRA(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	w, err := zw.Create("maindoc.xml")
	if err != nil {
		t.Fatal(err)
	}
	doc := []byte(`<DOC><IMAGE width="` + itoa(width) + `" height="` + itoa(height) + `"/></DOC>`)
	if _, err := w.Write(doc); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func TestProbeKRA(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "mona.kra")
	writeKRA(t, p, 2048, 1024)

	r := Probe(p, "kra")
	if r.Format != descriptor.KRA {
		t.Fatalf("expected KRA, got %v", r.Format)
	}
	if r.Size.Width != 2048 || r.Size.Height != 1024 {
		t.Fatalf("expected 2048x1024, got %v", r.Size)
	}
}

func TestProbeKRAMissingMainDoc(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "broken.kra")
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	zw.Close()
	f.Close()

	r := Probe(p, "kra")
	if r.Format != descriptor.UNKNOWN {
		t.Fatalf("expected UNKNOWN for missing maindoc.xml, got %v", r.Format)
	}
	if !r.Size.IsUnknown() {
		t.Fatalf("expected unknown size, got %v", r.Size)
	}
}

func TestProbeUnreadableFile(t *testing.T) {
	r := Probe(filepath.Join(t.TempDir(), "nope.png"), "png")
	if r.Format != descriptor.UNKNOWN {
		t.Fatalf("expected UNKNOWN for missing file, got %v", r.Format)
	}
}

func TestProbeSVG(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "icon.svg")
	data := []byte(`<?xml version="1.0"?><svg width="64" height="32" xmlns="http://www.w3.org/2000/svg"></svg>`)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	r := Probe(p, "svg")
	if r.Format != descriptor.VECTOR_SVG {
		t.Fatalf("expected VECTOR_SVG, got %v", r.Format)
	}
	if r.Size.Width != 64 || r.Size.Height != 32 {
		t.Fatalf("expected 64x32, got %v", r.Size)
	}
}

func TestSniffMatchesPNGMagic(t *testing.T) {
	var buf bytes.Buffer
	im := image.NewGray(image.Rect(0, 0, 1, 1))
	png.Encode(&buf, im)
	if got := sniff(buf.Bytes()); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
}
