// Package parser turns LG source text into a validated lg.Document.
//
// Lines are classified first, then fed through a three-state machine
// (top level, in template, in conditional block). Every variation and
// condition is link-resolved and placeholder-validated before it is stored.
// Parsing is all-or-nothing: the first violation aborts with an *lg.Error.
package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gubarz/mslg/internal/collate"
	"github.com/gubarz/mslg/internal/lg"
)

// ParseResult is the outcome of parsing one document
type ParseResult struct {
	// LGObject is nil when the source declares no templates and no entities
	LGObject               *lg.Document
	AdditionalFilesToParse []string
}

// Options configures a Parser
type Options struct {
	Logger *slog.Logger
}

// Parser parses LG documents against a vocabulary. It holds no per-document
// state and is safe for concurrent use.
type Parser struct {
	vocab     *lg.Vocabulary
	validator *Validator
	logger    *slog.Logger
}

// New creates a parser. A nil vocabulary selects lg.DefaultVocabulary.
func New(vocab *lg.Vocabulary, opts Options) *Parser {
	if vocab == nil {
		vocab = lg.DefaultVocabulary()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Parser{
		vocab:     vocab,
		validator: NewValidator(vocab),
		logger:    logger,
	}
}

// Parse parses one document. In strict mode lines that fit no category are
// rejected instead of skipped, and DEFAULT headers must not carry text.
func (p *Parser) Parse(source string, strict bool) (*ParseResult, error) {
	run := &parseRun{
		p:         p,
		strict:    strict,
		byName:    make(map[string]int),
		implicit:  make(map[string]bool),
		seenFiles: make(map[string]bool),
	}

	for _, line := range ClassifyLines(source) {
		if err := run.step(line); err != nil {
			var lgErr *lg.Error
			if errors.As(err, &lgErr) && lgErr.Line == 0 {
				return nil, lgErr.WithLine(line.Number)
			}
			return nil, err
		}
	}
	return run.finish()
}

type state int

const (
	stateTopLevel state = iota
	stateInTemplate
	stateInConditional
)

type entityDecl struct {
	entity   lg.Entity
	implicit bool
}

// parseRun is the mutable state of a single Parse call
type parseRun struct {
	p      *Parser
	strict bool

	state        state
	templates    []lg.Template
	byName       map[string]int
	current      int // index of the open template
	branch       int // index of the open conditional response
	branchIndent int

	entities []entityDecl
	implicit map[string]bool

	files     []string
	seenFiles map[string]bool
}

func (r *parseRun) step(line Line) error {
	switch line.Kind {
	case LineBlank, LineComment:
		return nil
	case LineTemplateHeader:
		return r.openTemplate(line)
	case LineEntity:
		return r.declareEntity(line)
	case LineFileReference:
		r.addFile(line.Payload)
		return nil
	case LineCase, LineDefault:
		return r.openBranch(line)
	case LineVariation:
		return r.addVariation(line)
	default:
		return r.stray(line)
	}
}

func (r *parseRun) openTemplate(line Line) error {
	name := line.Payload
	if name == "" {
		return lg.Errorf(lg.CodeInvalidTemplate, "template header has no name")
	}
	if strings.ContainsAny(name, " \t") {
		return lg.Errorf(lg.CodeInvalidSpaceInTemplate, "template name %q contains whitespace", name)
	}

	i, ok := r.byName[name]
	if !ok {
		i = len(r.templates)
		r.byName[name] = i
		r.templates = append(r.templates, lg.Template{Name: name})
	}
	r.current = i
	r.state = stateInTemplate
	return nil
}

func (r *parseRun) openBranch(line Line) error {
	if r.state == stateTopLevel {
		return lg.Errorf(lg.CodeInvalidTemplate, "%s outside of a template", line.Kind)
	}

	condition := lg.ElseCondition
	if line.Kind == LineCase {
		if line.Payload == "" {
			return lg.Errorf(lg.CodeInvalidCondition, "CASE header has no condition")
		}
		text, err := r.text(line.Payload)
		if err != nil {
			return err
		}
		condition = text
	} else if line.Payload != "" {
		if r.strict {
			return lg.Errorf(lg.CodeInvalidCondition, "DEFAULT header takes no condition, got %q", line.Payload)
		}
		r.p.logger.Warn("Ignoring text after DEFAULT.", "line", line.Number, "text", line.Payload)
	}

	t := &r.templates[r.current]
	t.ConditionalResponses = append(t.ConditionalResponses, lg.ConditionalResponse{Condition: condition})
	r.branch = len(t.ConditionalResponses) - 1
	r.branchIndent = line.Indent
	r.state = stateInConditional
	return nil
}

func (r *parseRun) addVariation(line Line) error {
	if r.state == stateTopLevel {
		return lg.Errorf(lg.CodeInvalidTemplate, "variation %q is not inside a template", line.Payload)
	}
	if line.Payload == "" {
		return lg.Errorf(lg.CodeInvalidVariation, "variation is empty")
	}

	text, err := r.text(line.Payload)
	if err != nil {
		return err
	}

	t := &r.templates[r.current]
	if r.state == stateInConditional && line.Indent > r.branchIndent {
		b := &t.ConditionalResponses[r.branch]
		b.Variations = append(b.Variations, text)
		return nil
	}
	r.state = stateInTemplate
	t.Variations = append(t.Variations, text)
	return nil
}

// text resolves links in a variation or condition, validates its
// placeholders and records the entities it references
func (r *parseRun) text(raw string) (string, error) {
	text := ResolveLinks(raw)
	if strings.TrimSpace(text) == "" {
		return "", lg.Errorf(lg.CodeInvalidVariation, "variation is empty")
	}

	refs, err := r.p.validator.Scan(text)
	if err != nil {
		return "", err
	}
	for _, name := range refs {
		if r.implicit[name] {
			continue
		}
		r.implicit[name] = true
		r.entities = append(r.entities, entityDecl{
			entity:   lg.Entity{Name: name, EntityType: r.p.vocab.DefaultEntityType()},
			implicit: true,
		})
	}
	return text, nil
}

func (r *parseRun) declareEntity(line Line) error {
	entity, err := r.p.ParseEntity(line.Payload)
	if err != nil {
		return err
	}
	r.entities = append(r.entities, entityDecl{entity: entity})
	return nil
}

func (r *parseRun) addFile(path string) {
	if path == "" || r.seenFiles[path] {
		return
	}
	r.seenFiles[path] = true
	r.files = append(r.files, path)
}

func (r *parseRun) stray(line Line) error {
	if r.strict {
		if r.state == stateTopLevel {
			return lg.Errorf(lg.CodeInvalidTemplate, "unexpected text %q outside of a template", line.Payload)
		}
		return lg.Errorf(lg.CodeInvalidVariation, "variation %q must start with '-'", line.Payload)
	}
	r.p.logger.Warn("Skipping unrecognized line.", "line", line.Number, "text", line.Payload)
	return nil
}

func (r *parseRun) finish() (*ParseResult, error) {
	declared := make(map[string]bool)
	for _, d := range r.entities {
		if !d.implicit {
			declared[d.entity.Name] = true
		}
	}

	var entities []lg.Entity
	for _, d := range r.entities {
		if d.implicit && declared[d.entity.Name] {
			continue
		}
		entities = append(entities, d.entity)
	}

	merged, err := collate.MergeEntities(entities)
	if err != nil {
		return nil, err
	}

	doc := &lg.Document{
		Templates: collate.MergeTemplates(r.templates),
		Entities:  merged,
	}
	result := &ParseResult{AdditionalFilesToParse: r.files}
	if !doc.IsEmpty() {
		result.LGObject = doc
	}
	return result, nil
}
