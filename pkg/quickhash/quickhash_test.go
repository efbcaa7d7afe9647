package quickhash

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOfIdenticalFilesMatch(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("x"), 100)
	p1 := writeTemp(t, dir, "a", data)
	p2 := writeTemp(t, dir, "b", data)

	h1, err := Of(p1)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := Of(p2)
	if err != nil {
		t.Fatal(err)
	}
	if !h1.Equal(h2) {
		t.Fatalf("expected equal hashes for identical content, got %s != %s", h1, h2)
	}
	if len(h1.String()) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1.String()))
	}
}

func TestOfBoundaryExactly8KiB(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("y"), tailBytes)
	p := writeTemp(t, dir, "boundary", data)

	h, err := Of(p)
	if err != nil {
		t.Fatal(err)
	}
	want := OfBytes(data)
	if !h.Equal(want) {
		t.Fatalf("8KiB file should hash as whole content, got mismatch")
	}
}

func TestOfLargerFileDiffersFromHeadOnly(t *testing.T) {
	dir := t.TempDir()
	data := make([]byte, tailBytes*4)
	for i := range data {
		data[i] = byte(i)
	}
	p := writeTemp(t, dir, "large", data)

	h, err := Of(p)
	if err != nil {
		t.Fatal(err)
	}
	headOnly := OfBytes(data[:tailBytes])
	if h.Equal(headOnly) {
		t.Fatalf("large file hash should include the tail, not just the head")
	}
}

func TestParseRoundTrip(t *testing.T) {
	h := OfBytes([]byte("hello"))
	parsed, err := Parse(h.String())
	if err != nil {
		t.Fatal(err)
	}
	if !h.Equal(parsed) {
		t.Fatalf("round trip mismatch")
	}
}

func TestOfMissingFile(t *testing.T) {
	if _, err := Of(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
