package parser

import (
	"regexp"
	"strings"
)

var (
	// [label](target)
	linkRe     = regexp.MustCompile(`\[([^\[\]]*)\]\(([^()\s]*)\)`)
	linkOnlyRe = regexp.MustCompile(`^\[([^\[\]]*)\]\(([^()\s]*)\)$`)
)

// ResolveLinks replaces every link whose target carries a template anchor
// (./file.lg#template) with its bare label "[label]". Links without an
// anchor are left untouched.
func ResolveLinks(text string) string {
	return linkRe.ReplaceAllStringFunc(text, func(link string) string {
		m := linkRe.FindStringSubmatch(link)
		if !strings.Contains(m[2], "#") {
			return link
		}
		return "[" + m[1] + "]"
	})
}

// FileReference reports whether text, once trimmed, is exactly one link and
// returns the referenced file path with any anchor removed. The path is
// empty for links that only carry an anchor (#template).
func FileReference(text string) (string, bool) {
	m := linkOnlyRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	path := m[2]
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	return path, true
}
