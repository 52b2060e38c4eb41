// Package collate merges parsed LG documents into one model.
//
// Templates are grouped by name in first-seen order. Variations concatenate
// in input order; conditional responses regroup by condition text with the
// Else branch always moved last. Entities are grouped by name and must agree
// on their type.
package collate

import (
	"github.com/gubarz/mslg/internal/lg"
)

// Collate merges documents in order. Nil documents are skipped. The result
// never aliases the inputs.
func Collate(docs []*lg.Document) (*lg.Document, error) {
	var templates []lg.Template
	var entities []lg.Entity
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		templates = append(templates, doc.Templates...)
		entities = append(entities, doc.Entities...)
	}

	mergedEntities, err := MergeEntities(entities)
	if err != nil {
		return nil, err
	}
	return &lg.Document{
		Templates: MergeTemplates(templates),
		Entities:  mergedEntities,
	}, nil
}

// MergeTemplates groups templates by name
func MergeTemplates(templates []lg.Template) []lg.Template {
	index := make(map[string]int)
	var merged []lg.Template
	var branches [][]lg.ConditionalResponse

	for _, t := range templates {
		i, ok := index[t.Name]
		if !ok {
			i = len(merged)
			index[t.Name] = i
			merged = append(merged, lg.Template{Name: t.Name})
			branches = append(branches, nil)
		}
		merged[i].Variations = append(merged[i].Variations, t.Variations...)
		branches[i] = append(branches[i], t.ConditionalResponses...)
	}

	for i := range merged {
		merged[i].ConditionalResponses = MergeConditions(branches[i])
	}
	return merged
}

// MergeConditions regroups conditional responses by condition text,
// concatenating variations, and places the Else branch last
func MergeConditions(responses []lg.ConditionalResponse) []lg.ConditionalResponse {
	if len(responses) == 0 {
		return nil
	}

	index := make(map[string]int)
	var merged []lg.ConditionalResponse
	var elseBranch *lg.ConditionalResponse

	for _, r := range responses {
		if r.IsElse() {
			if elseBranch == nil {
				elseBranch = &lg.ConditionalResponse{Condition: lg.ElseCondition}
			}
			elseBranch.Variations = append(elseBranch.Variations, r.Variations...)
			continue
		}
		i, ok := index[r.Condition]
		if !ok {
			i = len(merged)
			index[r.Condition] = i
			merged = append(merged, lg.ConditionalResponse{Condition: r.Condition})
		}
		merged[i].Variations = append(merged[i].Variations, r.Variations...)
	}

	if elseBranch != nil {
		merged = append(merged, *elseBranch)
	}
	return merged
}

// MergeEntities groups entities by name. Same-typed entities merge their
// attributions; differently typed ones fail with
// DUPLICATE_INCOMPATIBE_ENTITY_DEF.
func MergeEntities(entities []lg.Entity) ([]lg.Entity, error) {
	index := make(map[string]int)
	var merged []lg.Entity

	for _, e := range entities {
		i, ok := index[e.Name]
		if !ok {
			index[e.Name] = len(merged)
			merged = append(merged, lg.Entity{
				Name:         e.Name,
				EntityType:   e.EntityType,
				Attributions: append([]lg.Attribution(nil), e.Attributions...),
			})
			continue
		}
		if merged[i].EntityType != e.EntityType {
			return nil, lg.Errorf(lg.CodeDuplicateIncompatibleDef,
				"entity %q is defined as both %s and %s", e.Name, merged[i].EntityType, e.EntityType)
		}
		merged[i].Attributions = append(merged[i].Attributions, e.Attributions...)
	}
	return merged, nil
}
