// Package sanitize cleans user-provided free text before it is stored.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern         = regexp.MustCompile(`<[^>]*>`)
	inlineSpacePattern = regexp.MustCompile(`[ \t]+`)
)

// Text strips markup, decodes entities (then strips again so encoded tags
// cannot survive) and collapses runs of spaces. Newlines are kept.
func Text(s string) string {
	out := tagPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	out = tagPattern.ReplaceAllString(out, "")
	out = inlineSpacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// TextPtr applies Text to an optional value. Blank results become nil.
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	if out == "" {
		return nil
	}
	return &out
}

// Tags trims, lowercases and de-duplicates tags, preserving first-seen order.
func Tags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		clean := strings.ToLower(Text(tag))
		if clean == "" {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
