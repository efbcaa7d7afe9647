package clipboard

import "testing"

func TestClassifySVG(t *testing.T) {
	p, ok := Classify("image/svg+xml", []byte("<svg></svg>"), "")
	if !ok || p.Kind != KindSvg {
		t.Fatalf("expected KindSvg, got %+v ok=%v", p, ok)
	}
}

func TestClassifyKritaNode(t *testing.T) {
	p, ok := Classify("application/x-krita-node", []byte{1, 2, 3}, "")
	if !ok || p.Kind != KindKra {
		t.Fatalf("expected KindKra, got %+v ok=%v", p, ok)
	}
}

func TestClassifyHTMLExtractsRasterLinks(t *testing.T) {
	html := `<html><body><img src="https://example.com/a.png"><a href="https://example.com/doc.pdf">doc</a></body></html>`
	p, ok := Classify("text/html", nil, html)
	if !ok || p.Kind != KindUrl {
		t.Fatalf("expected KindUrl, got %+v ok=%v", p, ok)
	}
	if len(p.URLs) != 1 || p.URLs[0] != "https://example.com/a.png" {
		t.Fatalf("expected only the PNG link extracted, got %v", p.URLs)
	}
}

func TestClassifyPlainTextLocalPaths(t *testing.T) {
	p, ok := Classify("text/plain", nil, "/home/user/a.png\n/home/user/b.kra")
	if !ok || p.Kind != KindFile {
		t.Fatalf("expected KindFile, got %+v ok=%v", p, ok)
	}
	if len(p.URLs) != 2 {
		t.Fatalf("expected 2 paths, got %v", p.URLs)
	}
}

func TestClassifyPlainTextURLs(t *testing.T) {
	p, ok := Classify("text/plain", nil, "https://example.com/image.jpg")
	if !ok || p.Kind != KindUrl {
		t.Fatalf("expected KindUrl, got %+v ok=%v", p, ok)
	}
}

func TestClassifyUnknownMimeRejected(t *testing.T) {
	if _, ok := Classify("application/octet-stream", []byte{1}, ""); ok {
		t.Fatal("expected unclassified payload to be rejected")
	}
}
