package parser

import (
	"strings"

	"github.com/gubarz/mslg/internal/lg"
)

// ParseEntity parses the body of an entity line, everything after '$':
//
//	name : type key = value key = value
//	name
//
// A bare name declares a String entity. A type without the colon
// ("name type") is rejected with INVALID_ENTITY_DEFINITION. Unknown types
// fall back to the vocabulary's default type.
func (p *Parser) ParseEntity(payload string) (lg.Entity, error) {
	payload = strings.TrimSpace(payload)

	name, rest, hasColon := strings.Cut(payload, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition, "entity definition %q has no name", "$"+payload)
	}
	if strings.ContainsAny(name, " \t") {
		return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition,
			"entity definition %q: expected '$name : type'", "$"+payload)
	}
	if !identRe.MatchString(name) {
		return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition, "invalid entity name %q", name)
	}
	if p.vocab.IsReserved(name) {
		return lg.Entity{}, lg.Errorf(lg.CodeEntityWithReservedWord, "entity $%s uses a reserved keyword", name)
	}

	entity := lg.Entity{Name: name, EntityType: p.vocab.DefaultEntityType()}
	if !hasColon {
		return entity, nil
	}

	// Normalize "k=v" and "k = v" into separate tokens
	fields := strings.Fields(strings.ReplaceAll(rest, "=", " = "))
	if len(fields) == 0 {
		return entity, nil
	}

	declared := fields[0]
	if declared == "=" {
		return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition, "entity $%s: missing type before attributes", name)
	}
	t, known := p.vocab.EntityType(declared)
	if !known {
		p.logger.Warn("Unknown entity type, falling back to default.",
			"entity", name, "declared", declared, "type", t)
	}
	entity.EntityType = t

	attrs := fields[1:]
	if len(attrs)%3 != 0 {
		return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition,
			"entity $%s: attributes must be 'key = value' pairs", name)
	}
	for i := 0; i < len(attrs); i += 3 {
		key, eq, value := attrs[i], attrs[i+1], attrs[i+2]
		if eq != "=" || key == "=" || value == "=" {
			return lg.Entity{}, lg.Errorf(lg.CodeInvalidEntityDefinition,
				"entity $%s: malformed attribute near %q", name, key)
		}
		entity.Attributions = append(entity.Attributions, lg.Attribution{Key: key, Value: value})
	}
	return entity, nil
}
