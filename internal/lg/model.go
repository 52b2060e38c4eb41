// Package lg holds the Language Generation document model shared by the
// parser, the collation engine and the output writer.
package lg

import (
	"strconv"
	"strings"
)

// ElseCondition is the condition recorded for a DEFAULT branch
const ElseCondition = "Else"

// EntityType is the declared type of an entity
type EntityType string

// Built-in entity types
const (
	String   EntityType = "String"
	Int      EntityType = "Int"
	Float    EntityType = "Float"
	Boolean  EntityType = "Boolean"
	DateTime EntityType = "DateTime"
	Date     EntityType = "Date"
	Time     EntityType = "Time"
	Duration EntityType = "Duration"
	URL      EntityType = "Url"
)

// BuiltinEntityTypes lists the built-in entity types in declaration order
func BuiltinEntityTypes() []EntityType {
	return []EntityType{String, Int, Float, Boolean, DateTime, Date, Time, Duration, URL}
}

// Document is the model produced by parsing one source text or by collating
// several of them
type Document struct {
	Templates []Template
	Entities  []Entity
}

// Template is a named unit of response text
type Template struct {
	Name                 string
	Variations           []string
	ConditionalResponses []ConditionalResponse
}

// ConditionalResponse is one CASE or DEFAULT branch of a template
type ConditionalResponse struct {
	Condition  string
	Variations []string
}

// IsElse reports whether the branch came from a DEFAULT header
func (c ConditionalResponse) IsElse() bool {
	return c.Condition == ElseCondition
}

// Entity is a typed placeholder usable inside variation text
type Entity struct {
	Name         string
	EntityType   EntityType
	Attributions []Attribution
}

// Attribution is free-form key/value metadata on an entity declaration
type Attribution struct {
	Key   string
	Value string
}

// IsEmpty reports whether the document holds neither templates nor entities
func (d *Document) IsEmpty() bool {
	return d == nil || (len(d.Templates) == 0 && len(d.Entities) == 0)
}

// Template returns the template with the given name, or nil
func (d *Document) Template(name string) *Template {
	if d == nil {
		return nil
	}
	for i := range d.Templates {
		if d.Templates[i].Name == name {
			return &d.Templates[i]
		}
	}
	return nil
}

// Entity returns the entity with the given name, or nil
func (d *Document) Entity(name string) *Entity {
	if d == nil {
		return nil
	}
	for i := range d.Entities {
		if d.Entities[i].Name == name {
			return &d.Entities[i]
		}
	}
	return nil
}

// Summary returns a short human readable description such as
// "3 templates, 2 entities"
func (d *Document) Summary() string {
	var sb strings.Builder
	if d == nil {
		return "empty"
	}
	sb.WriteString(plural(len(d.Templates), "template"))
	sb.WriteString(", ")
	sb.WriteString(plural(len(d.Entities), "entity"))
	return sb.String()
}

func plural(n int, noun string) string {
	word := noun
	if n != 1 {
		if strings.HasSuffix(noun, "y") {
			word = strings.TrimSuffix(noun, "y") + "ies"
		} else {
			word = noun + "s"
		}
	}
	return strconv.Itoa(n) + " " + word
}
