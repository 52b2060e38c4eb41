package parser

import (
	"regexp"
	"strings"
)

// LineKind is the category of a source line
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineTemplateHeader
	LineEntity
	LineFileReference
	LineCase
	LineDefault
	LineVariation
	LineInvalid
)

var lineKindNames = [...]string{
	LineBlank:          "blank",
	LineComment:        "comment",
	LineTemplateHeader: "template header",
	LineEntity:         "entity definition",
	LineFileReference:  "file reference",
	LineCase:           "CASE header",
	LineDefault:        "DEFAULT header",
	LineVariation:      "variation",
	LineInvalid:        "invalid",
}

func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "unknown"
}

// Line is one classified source line
type Line struct {
	Number  int // 1-based
	Kind    LineKind
	Indent  int    // leading whitespace width, tabs count as 4
	Payload string // header name, condition, entity body, link path or variation text
	Raw     string
}

var (
	caseRe    = regexp.MustCompile(`^-?\s*CASE:\s*(.*)$`)
	defaultRe = regexp.MustCompile(`^-?\s*DEFAULT:\s*(.*)$`)
)

// Classify categorizes a single source line
func Classify(raw string) Line {
	line := Line{Raw: raw, Indent: indentWidth(raw)}
	trimmed := strings.TrimSpace(raw)

	switch {
	case trimmed == "":
		line.Kind = LineBlank
	case trimmed[0] == '>':
		line.Kind = LineComment
	case trimmed[0] == '#':
		line.Kind = LineTemplateHeader
		line.Payload = strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
	case trimmed[0] == '$':
		line.Kind = LineEntity
		line.Payload = strings.TrimSpace(trimmed[1:])
	default:
		if path, ok := FileReference(trimmed); ok {
			line.Kind = LineFileReference
			line.Payload = path
		} else if m := caseRe.FindStringSubmatch(trimmed); m != nil {
			line.Kind = LineCase
			line.Payload = strings.TrimSpace(m[1])
		} else if m := defaultRe.FindStringSubmatch(trimmed); m != nil {
			line.Kind = LineDefault
			line.Payload = strings.TrimSpace(m[1])
		} else if trimmed[0] == '-' {
			line.Kind = LineVariation
			line.Payload = strings.TrimSpace(trimmed[1:])
		} else {
			line.Kind = LineInvalid
			line.Payload = trimmed
		}
	}
	return line
}

// ClassifyLines splits source text into lines and classifies each one
func ClassifyLines(source string) []Line {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	raw := strings.Split(source, "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Classify(r)
		lines[i].Number = i + 1
	}
	return lines
}

func indentWidth(s string) int {
	width := 0
	for _, r := range s {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}
