package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ContentDisposition builds an attachment header value with the standard
// two-part filename encoding: a latin-1 fallback in filename= and the full
// UTF-8 name percent-encoded in filename*= per RFC 5987.
func ContentDisposition(filename string) string {
	name := SanitizeHeaderFilename(filename)
	fallback := latin1Fallback(name)
	encoded := url.PathEscape(name)
	// PathEscape leaves some sub-delims alone that header parameters
	// cannot carry raw.
	encoded = strings.NewReplacer(
		"+", "%2B",
		"'", "%27",
		"&", "%26",
		"=", "%3D",
		",", "%2C",
		";", "%3B",
	).Replace(encoded)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, encoded)
}

// latin1Fallback drops runes a latin-1 header value cannot carry.
func latin1Fallback(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r > 0xFF || r == '"' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "download"
	}
	return b.String()
}
