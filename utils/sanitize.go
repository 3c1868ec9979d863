package utils

import "strings"

// SanitizeHeaderFilename reduces a user-supplied name to something safe
// to place in a Content-Disposition header: no path components, no
// quotes, no header-splitting control characters.
func SanitizeHeaderFilename(name string) string {
	clean := strings.TrimSpace(name)
	if i := strings.LastIndexAny(clean, "/\\"); i >= 0 {
		clean = clean[i+1:]
	}
	clean = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '"':
			return -1
		}
		return r
	}, clean)
	if clean == "" {
		return "download"
	}
	return clean
}
