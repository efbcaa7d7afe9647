package clipboard

import (
	"regexp"
	"strings"
)

// rasterExtensions lists the extensions an HTML/plain-text scan treats
// as pointing at a raster image.
var rasterExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
}

var hrefOrSrc = regexp.MustCompile(`(?i)(?:src|href)\s*=\s*["']([^"']+)["']`)
var urlLike = regexp.MustCompile(`(?i)^https?://\S+$`)

// Classify turns a raw clipboard payload into a typed Payload. data
// carries the raw bytes for image/svg/krita payloads; text carries the
// decoded text for text/html and text/plain.
func Classify(mime string, data []byte, text string) (Payload, bool) {
	switch {
	case strings.HasPrefix(mime, "image/svg"):
		return Payload{Kind: KindSvg, MIME: mime, Data: data}, true
	case mime == "application/x-krita-node" || mime == "application/x-krita-selection":
		return Payload{Kind: KindKra, MIME: mime, Data: data}, true
	case strings.HasPrefix(mime, "image/"):
		return Payload{Kind: KindImage, MIME: mime, Data: data}, true
	case mime == "text/html":
		urls := extractRasterLinks(text)
		if len(urls) == 0 {
			return Payload{}, false
		}
		return Payload{Kind: KindUrl, MIME: mime, URLs: urls}, true
	case mime == "text/plain":
		return classifyPlainText(text)
	default:
		return Payload{}, false
	}
}

func extractRasterLinks(html string) []string {
	var out []string
	for _, m := range hrefOrSrc.FindAllStringSubmatch(html, -1) {
		if hasRasterExtension(m[1]) {
			out = append(out, m[1])
		}
	}
	return out
}

func hasRasterExtension(path string) bool {
	for ext := range rasterExtensions {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}
	return false
}

// classifyPlainText distinguishes a list of local file paths from a
// list of raster-pointing URLs, one per line.
func classifyPlainText(text string) (Payload, bool) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	var urls, paths []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		switch {
		case urlLike.MatchString(line) && hasRasterExtension(line):
			urls = append(urls, line)
		case strings.HasPrefix(line, "/") || strings.HasPrefix(line, "file://"):
			paths = append(paths, strings.TrimPrefix(line, "file://"))
		}
	}
	switch {
	case len(urls) > 0:
		return Payload{Kind: KindUrl, MIME: "text/plain", URLs: urls}, true
	case len(paths) > 0:
		return Payload{Kind: KindFile, MIME: "text/plain", URLs: paths}, true
	default:
		return Payload{}, false
	}
}
