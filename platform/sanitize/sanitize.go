// Package sanitize provides text cleanup for user-submitted fields.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Text strips HTML tags from user-provided text and trims whitespace.
// Entities are decoded once so encoded tags do not survive the pass.
func Text(s string) string {
	out := htmlTagRe.ReplaceAllString(s, "")
	out = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(out)
	out = htmlTagRe.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// TextPtr applies Text to an optional string.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
