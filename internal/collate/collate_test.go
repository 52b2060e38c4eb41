package collate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/gubarz/mslg/internal/lg"
)

func TestCollate_TemplatesByName(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := &lg.Document{Templates: []lg.Template{
		{Name: "Greeting", Variations: []string{"hi"}},
		{Name: "Bye", Variations: []string{"bye"}},
	}}
	b := &lg.Document{Templates: []lg.Template{
		{Name: "Greeting", Variations: []string{"hello", "hey"}},
	}}

	// --- Act ---
	got, err := Collate([]*lg.Document{a, nil, b})

	// --- Assert ---
	require.NoError(t, err)
	want := []lg.Template{
		{Name: "Greeting", Variations: []string{"hi", "hello", "hey"}},
		{Name: "Bye", Variations: []string{"bye"}},
	}
	if diff := cmp.Diff(want, got.Templates); diff != "" {
		t.Errorf("templates mismatch (-want +got):\n%s", diff)
	}
}

func TestCollate_DisjointConditionsElseLast(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	a := &lg.Document{Templates: []lg.Template{{
		Name: "Greeting",
		ConditionalResponses: []lg.ConditionalResponse{
			{Condition: "foo", Variations: []string{"hi"}},
			{Condition: lg.ElseCondition, Variations: []string{"test"}},
		},
	}}}
	b := &lg.Document{Templates: []lg.Template{{
		Name: "Greeting",
		ConditionalResponses: []lg.ConditionalResponse{
			{Condition: lg.ElseCondition, Variations: []string{"test2"}},
			{Condition: "bar", Variations: []string{"hey"}},
			{Condition: "foo", Variations: []string{"hello"}},
		},
	}}}

	// --- Act ---
	got, err := Collate([]*lg.Document{a, b})

	// --- Assert ---
	require.NoError(t, err)
	want := []lg.ConditionalResponse{
		{Condition: "foo", Variations: []string{"hi", "hello"}},
		{Condition: "bar", Variations: []string{"hey"}},
		{Condition: lg.ElseCondition, Variations: []string{"test", "test2"}},
	}
	if diff := cmp.Diff(want, got.Templates[0].ConditionalResponses); diff != "" {
		t.Errorf("conditional responses mismatch (-want +got):\n%s", diff)
	}
}

func TestCollate_EntitiesMergeAttributions(t *testing.T) {
	t.Parallel()

	a := &lg.Document{Entities: []lg.Entity{
		{Name: "userName", EntityType: lg.String},
		{Name: "address", EntityType: lg.String, Attributions: []lg.Attribution{{Key: "say-as", Value: "Address"}}},
	}}
	b := &lg.Document{Entities: []lg.Entity{
		{Name: "address", EntityType: lg.String, Attributions: []lg.Attribution{{Key: "voice", Value: "deep"}}},
		{Name: "dateOfBirth", EntityType: lg.DateTime},
	}}

	got, err := Collate([]*lg.Document{a, b})

	require.NoError(t, err)
	want := []lg.Entity{
		{Name: "userName", EntityType: lg.String},
		{Name: "address", EntityType: lg.String, Attributions: []lg.Attribution{
			{Key: "say-as", Value: "Address"},
			{Key: "voice", Value: "deep"},
		}},
		{Name: "dateOfBirth", EntityType: lg.DateTime},
	}
	if diff := cmp.Diff(want, got.Entities); diff != "" {
		t.Errorf("entities mismatch (-want +got):\n%s", diff)
	}
}

func TestCollate_IncompatibleEntities(t *testing.T) {
	t.Parallel()

	a := &lg.Document{Entities: []lg.Entity{{Name: "userName", EntityType: lg.String}}}
	b := &lg.Document{Entities: []lg.Entity{{Name: "userName", EntityType: lg.DateTime}}}

	got, err := Collate([]*lg.Document{a, b})

	require.Nil(t, got)
	code, ok := lg.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, lg.CodeDuplicateIncompatibleDef, code)
	require.Contains(t, err.Error(), "userName")
}

func TestCollate_DoesNotAliasInputs(t *testing.T) {
	t.Parallel()

	a := &lg.Document{
		Templates: []lg.Template{{Name: "T", Variations: []string{"a"}}},
		Entities:  []lg.Entity{{Name: "e", EntityType: lg.String, Attributions: []lg.Attribution{{Key: "k", Value: "v"}}}},
	}
	b := &lg.Document{Entities: []lg.Entity{{Name: "e", EntityType: lg.String, Attributions: []lg.Attribution{{Key: "k2", Value: "v2"}}}}}

	got, err := Collate([]*lg.Document{a, b})
	require.NoError(t, err)

	got.Templates[0].Variations[0] = "changed"
	got.Entities[0].Attributions[0].Value = "changed"

	require.Equal(t, "a", a.Templates[0].Variations[0])
	require.Equal(t, "v", a.Entities[0].Attributions[0].Value)
	require.Len(t, a.Entities[0].Attributions, 1)
}

func TestMergeConditions_Empty(t *testing.T) {
	t.Parallel()

	require.Nil(t, MergeConditions(nil))
}
