package parser

import (
	"regexp"
	"strings"

	"github.com/gubarz/mslg/internal/lg"
)

var (
	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	callbackRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\s*\((.*)\)$`)
)

// Validator checks the {entity}, {callback(args)} and [template]
// placeholders of variation and condition text
type Validator struct {
	vocab *lg.Vocabulary
}

// NewValidator creates a validator over the given vocabulary
func NewValidator(vocab *lg.Vocabulary) *Validator {
	if vocab == nil {
		vocab = lg.DefaultVocabulary()
	}
	return &Validator{vocab: vocab}
}

// Scan validates text left to right and stops at the first violation. On
// success it returns the entity names the text references, first-seen order,
// without duplicates.
func (v *Validator) Scan(text string) ([]string, error) {
	var refs []string
	seen := make(map[string]bool)

	inTemplateRef := false
	braceStart := -1

	for i := 0; i < len(text); i++ {
		c := text[i]

		if braceStart >= 0 {
			switch c {
			case '{':
				return nil, lg.Errorf(lg.CodeNestedEntityReference,
					"nested entity reference in %q", text[braceStart:])
			case '}':
				names, err := v.checkExpr(text[braceStart+1 : i])
				if err != nil {
					return nil, err
				}
				for _, n := range names {
					if !seen[n] {
						seen[n] = true
						refs = append(refs, n)
					}
				}
				braceStart = -1
			}
			continue
		}

		switch c {
		case '{':
			braceStart = i
		case '[':
			if inTemplateRef {
				return nil, lg.Errorf(lg.CodeNestedTemplateReference,
					"nested template reference in %q", text)
			}
			inTemplateRef = true
		case ']':
			inTemplateRef = false
		case '(':
			if name := identBefore(text, i); name != "" && strings.IndexByte(text[i:], ')') > 0 {
				return nil, lg.Errorf(lg.CodeInvalidCallbackDef,
					"callback %s(...) must be enclosed in {}", name)
			}
		}
	}
	if braceStart >= 0 {
		return nil, lg.Errorf(lg.CodeInvalidVariation, "unclosed placeholder in %q", text[braceStart:])
	}
	return refs, nil
}

// checkExpr validates the body of one {...} placeholder
func (v *Validator) checkExpr(body string) ([]string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, lg.Errorf(lg.CodeInvalidVariation, "empty placeholder {}")
	}

	if m := callbackRe.FindStringSubmatch(body); m != nil {
		name := m[1]
		if !v.vocab.IsCallback(name) {
			return nil, lg.Errorf(lg.CodeInvalidCallbackName, "unknown callback function %q", name)
		}
		var refs []string
		for _, arg := range splitArgs(m[2]) {
			if !callbackRe.MatchString(arg) && !identRe.MatchString(arg) {
				continue // literal
			}
			names, err := v.checkExpr(arg)
			if err != nil {
				return nil, err
			}
			refs = append(refs, names...)
		}
		return refs, nil
	}

	if !identRe.MatchString(body) {
		return nil, nil
	}
	if v.vocab.IsReserved(body) {
		return nil, lg.Errorf(lg.CodeEntityWithReservedWord,
			"entity {%s} uses a reserved keyword", body)
	}
	return []string{body}, nil
}

// splitArgs splits a callback argument list on top-level commas
func splitArgs(s string) []string {
	var args []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		args = append(args, last)
	}
	return args
}

// identBefore returns the identifier that ends right before position i
func identBefore(s string, i int) string {
	j := i
	for j > 0 && isIdentByte(s[j-1]) {
		j--
	}
	if j == i {
		return ""
	}
	name := s[j:i]
	if c := name[0]; c >= '0' && c <= '9' {
		return ""
	}
	return name
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
