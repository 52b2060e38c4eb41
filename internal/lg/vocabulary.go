package lg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary holds the lookup tables the parser validates against: reserved
// keywords, known callback functions and known entity types.
type Vocabulary struct {
	reserved    map[string]struct{}
	callbacks   map[string]struct{}
	entityTypes map[string]EntityType // keyed by lower-cased name
	fallback    EntityType
}

// VocabularyFile is the YAML shape of a vocabulary file
type VocabularyFile struct {
	// Replace drops the built-in tables before applying the lists below
	Replace     bool     `yaml:"replace"`
	Reserved    []string `yaml:"reserved"`
	Callbacks   []string `yaml:"callbacks"`
	EntityTypes []string `yaml:"entity_types"`
}

var defaultCallbacks = []string{
	"Month", "Day", "Year", "DayOfWeek", "Hour", "Minute",
	"Floor", "Ceiling", "Round", "Abs",
	"Length", "Upper", "Lower", "Join", "Plural", "Ordinal",
}

var defaultReserved = []string{
	"Floor", "Ceiling", "Round", "Abs", "Month", "Day", "Year",
	"Length", "Upper", "Lower", "Join", "Random", "Now", "Count",
	"If", "Else", "Case", "Default", "True", "False", "Null",
}

// NewVocabulary builds a vocabulary from explicit tables. String is always
// a known entity type and the fallback for unknown declarations.
func NewVocabulary(reserved, callbacks []string, entityTypes []EntityType) *Vocabulary {
	v := &Vocabulary{
		reserved:    make(map[string]struct{}),
		callbacks:   make(map[string]struct{}),
		entityTypes: make(map[string]EntityType),
		fallback:    String,
	}
	v.AddReserved(reserved...)
	v.AddCallbacks(callbacks...)
	v.AddEntityTypes(String)
	v.AddEntityTypes(entityTypes...)
	return v
}

// DefaultVocabulary returns the built-in lookup tables
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultReserved, defaultCallbacks, BuiltinEntityTypes())
}

// LoadVocabulary reads a YAML vocabulary file and applies it on top of the
// built-in tables, or in place of them when the file sets replace: true.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}

	var f VocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	v := DefaultVocabulary()
	if f.Replace {
		v = NewVocabulary(nil, nil, nil)
	}
	v.AddReserved(f.Reserved...)
	v.AddCallbacks(f.Callbacks...)
	for _, name := range f.EntityTypes {
		v.AddEntityTypes(EntityType(strings.TrimSpace(name)))
	}
	return v, nil
}

// AddReserved registers reserved keywords
func (v *Vocabulary) AddReserved(words ...string) {
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			v.reserved[w] = struct{}{}
		}
	}
}

// AddCallbacks registers callback function names
func (v *Vocabulary) AddCallbacks(names ...string) {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			v.callbacks[n] = struct{}{}
		}
	}
}

// AddEntityTypes registers entity types
func (v *Vocabulary) AddEntityTypes(types ...EntityType) {
	for _, t := range types {
		if t == "" {
			continue
		}
		v.entityTypes[strings.ToLower(string(t))] = t
	}
}

// IsReserved reports whether word is a reserved keyword (exact match)
func (v *Vocabulary) IsReserved(word string) bool {
	_, ok := v.reserved[word]
	return ok
}

// IsCallback reports whether name is a known callback function
func (v *Vocabulary) IsCallback(name string) bool {
	_, ok := v.callbacks[name]
	return ok
}

// EntityType resolves a declared type name case-insensitively. Unknown
// names resolve to the fallback type with ok == false.
func (v *Vocabulary) EntityType(name string) (EntityType, bool) {
	if t, ok := v.entityTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, true
	}
	return v.fallback, false
}

// DefaultEntityType is the type given to implicit and unrecognized entities
func (v *Vocabulary) DefaultEntityType() EntityType {
	return v.fallback
}
