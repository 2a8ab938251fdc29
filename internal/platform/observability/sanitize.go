package observability

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitizeString drops control characters and keeps at most limit runes,
// so request data cannot forge log lines or span names.
func sanitizeString(value string, limit int) string {
	var b strings.Builder
	b.Grow(min(len(value), limit*utf8.UTFMax))
	n := 0
	for _, r := range value {
		if n == limit {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}

// SanitizeRoute cleans a route pattern or path for logs and spans. Query
// strings are cut off because they carry the visitor's search text.
func SanitizeRoute(route string) string {
	route, _, _ = strings.Cut(route, "?")
	if route == "" {
		return "/"
	}
	return sanitizeString(route, 180)
}

// SanitizeMethod upper-cases and bounds an HTTP method.
func SanitizeMethod(method string) string {
	return strings.ToUpper(sanitizeString(method, 10))
}
