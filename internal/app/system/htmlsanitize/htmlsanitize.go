// Package htmlsanitize strips markup from free-text input.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every HTML element (and the contents of script and
// style elements), then unescapes entities so the stored value is the text
// a person typed. The result is trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that looks like a tag.
func IsPlainText(s string) bool {
	i := strings.IndexByte(s, '<')
	return i < 0 || !strings.Contains(s[i:], ">")
}
