package imageprobe

import "bytes"

// prefixEntry is a magic-number prefix test, trimmed to only the
// signatures the probe needs: raster headers and the ZIP signature
// KRA/ORA containers share.
type prefixEntry struct {
	offset int
	prefix []byte
	mtype  string
}

var prefixTable = []prefixEntry{
	{0, []byte("GIF87a"), "image/gif"},
	{0, []byte("GIF89a"), "image/gif"},
	{0, []byte("\xff\xd8\xff"), "image/jpeg"},
	{0, []byte{137, 'P', 'N', 'G', '\r', '\n', 26, 10}, "image/png"},
	{0, []byte{'P', 'K', 3, 4}, "application/zip"}, // KRA and ORA are both ZIP containers
}

// sniff returns the MIME type implied by the magic-number prefix of
// hdr, or "" if none match.
func sniff(hdr []byte) string {
	hlen := len(hdr)
	for _, pte := range prefixTable {
		plen := pte.offset + len(pte.prefix)
		if hlen >= plen && bytes.Equal(hdr[pte.offset:plen], pte.prefix) {
			return pte.mtype
		}
	}
	return ""
}

// looksLikeSVG does a crude textual sniff for an SVG document: SVG is
// plain XML/text, so there is no magic-number prefix to match against
// — instead look for the root element tag within the first bytes of
// content, tolerating a leading XML declaration and BOM.
func looksLikeSVG(hdr []byte) bool {
	const scanWindow = 512
	if len(hdr) > scanWindow {
		hdr = hdr[:scanWindow]
	}
	return bytes.Contains(hdr, []byte("<svg"))
}
