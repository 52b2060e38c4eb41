package output

import (
	"strings"

	"github.com/gubarz/mslg/internal/lg"
)

// caseIndent prefixes variations nested under a CASE/DEFAULT header
const caseIndent = "    "

// Format renders a document as LG text: entity declarations first, then
// templates separated by blank lines. Parsing the result yields an
// equivalent document.
func Format(doc *lg.Document) string {
	if doc.IsEmpty() {
		return ""
	}

	var sb strings.Builder
	for _, e := range doc.Entities {
		sb.WriteString(FormatEntity(e))
		sb.WriteString("\n")
	}

	for i, t := range doc.Templates {
		if i > 0 || len(doc.Entities) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatTemplate(t))
	}
	return sb.String()
}

// FormatEntity renders one entity declaration without a trailing newline
func FormatEntity(e lg.Entity) string {
	var sb strings.Builder
	sb.WriteString("$")
	sb.WriteString(e.Name)
	sb.WriteString(" : ")
	sb.WriteString(string(e.EntityType))
	for _, a := range e.Attributions {
		sb.WriteString(" ")
		sb.WriteString(a.Key)
		sb.WriteString(" = ")
		sb.WriteString(a.Value)
	}
	return sb.String()
}

// FormatTemplate renders one template, ending with a newline
func FormatTemplate(t lg.Template) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(t.Name)
	sb.WriteString("\n")

	for _, v := range t.Variations {
		sb.WriteString("- ")
		sb.WriteString(v)
		sb.WriteString("\n")
	}

	for _, c := range t.ConditionalResponses {
		if c.IsElse() {
			sb.WriteString("- DEFAULT:\n")
		} else {
			sb.WriteString("- CASE: ")
			sb.WriteString(c.Condition)
			sb.WriteString("\n")
		}
		for _, v := range c.Variations {
			sb.WriteString(caseIndent)
			sb.WriteString("- ")
			sb.WriteString(v)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
