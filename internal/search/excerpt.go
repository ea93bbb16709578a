package search

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/hoteleiro/concierge/pkg/utils"
)

// Excerpt returns an HTML fragment of content centered on the first occurrence
// of query (case-insensitive), with contextChars of surrounding text on each
// side, ellipsis markers where the content was cut, and the matched substring
// wrapped in <mark>. When query does not occur, the beginning of the content
// is returned instead. All content text is HTML-escaped.
func Excerpt(content, query string, contextChars int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx < 0 || query == "" {
		return html.EscapeString(utils.Truncate(content, 2*contextChars))
	}

	start := idx - contextChars
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + contextChars
	if end > len(content) {
		end = len(content)
	}
	// Do not cut inside a multi-byte rune.
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(html.EscapeString(content[start:idx]))
	b.WriteString("<mark>")
	b.WriteString(html.EscapeString(content[idx : idx+len(query)]))
	b.WriteString("</mark>")
	b.WriteString(html.EscapeString(content[idx+len(query) : end]))
	if end < len(content) {
		b.WriteString("...")
	}
	return b.String()
}
