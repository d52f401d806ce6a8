package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all HTML tags and attributes. bluemonday.Policy is safe for
// concurrent use once built; never mutate it after initialization.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Sanitize strips all HTML from arbitrary user input.
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// Clean sanitizes HTML and normalizes whitespace for storage. Newlines are
// kept so multi-line note content survives; runs of spaces inside a line
// collapse to one.
//
//   - "<p>hi</p>" -> "hi"
//   - "<b>a</b> <b>b</b>" -> "a b"
//   - "  Doctor  Appointment  " -> "Doctor Appointment"
func Clean(s string) string {
	sanitized := strings.TrimSpace(strict.Sanitize(s))
	sanitized = html.UnescapeString(sanitized)
	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")

	lines := strings.Split(sanitized, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Tags cleans each tag, strips a leading '#', and drops empty or repeated
// entries. First-seen order is preserved.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimLeft(Clean(t), "#")
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
