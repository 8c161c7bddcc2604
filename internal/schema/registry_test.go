package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := LoadFile("testdata/schemas.yaml")
	require.NoError(t, err)
	return r
}

func TestRegistry_Classification(t *testing.T) {
	r := loadTestRegistry(t)

	assert.True(t, r.HasSchema("COURSE_SCHEMA"))
	assert.False(t, r.HasSchema("MISSING"))

	assert.True(t, r.IsOutlineActivity("MODULE"))
	assert.True(t, r.IsOutlineActivity("ITEM"))
	assert.False(t, r.IsOutlineActivity("SECTION"))
	assert.False(t, r.IsOutlineActivity("UNKNOWN"))

	assert.True(t, r.IsAssessmentGroup("ASSESSMENT"))
	assert.False(t, r.IsAssessmentGroup("SECTION"))

	assert.True(t, r.IsGradedElement("MULTIPLE_CHOICE"))
	assert.False(t, r.IsGradedElement("TEXT"))
	assert.Equal(t, []string{"MATCHING", "MULTIPLE_CHOICE", "SINGLE_CHOICE", "TEXT_RESPONSE"}, r.GradedElementTypes())

	assert.True(t, r.IsTrackedInWorkflow("PAGE"))
	assert.False(t, r.IsTrackedInWorkflow("MODULE"))
}

func TestRegistry_GetSiblingTypes(t *testing.T) {
	r := loadTestRegistry(t)

	tests := []struct {
		activityType string
		want         []string
	}{
		{activityType: "MODULE", want: []string{"MODULE"}},
		{activityType: "PAGE", want: []string{"LESSON", "PAGE"}},
		{activityType: "LESSON", want: []string{"LESSON", "PAGE"}},
		{activityType: "ITEM", want: []string{"GROUP", "ITEM"}},
		{activityType: "ASSESSMENT", want: []string{"ASSESSMENT"}},
		{activityType: "UNKNOWN", want: []string{"UNKNOWN"}},
	}

	for _, tt := range tests {
		t.Run(tt.activityType, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, r.GetSiblingTypes(tt.activityType))
		})
	}
}

func TestRegistry_IsTypeAllowedAtLevel(t *testing.T) {
	r := loadTestRegistry(t)

	tests := []struct {
		name       string
		schemaId   string
		parentType string
		childType  string
		want       bool
	}{
		{name: "root level", schemaId: "COURSE_SCHEMA", parentType: "", childType: "MODULE", want: true},
		{name: "non root at top", schemaId: "COURSE_SCHEMA", parentType: "", childType: "PAGE", want: false},
		{name: "sub level", schemaId: "COURSE_SCHEMA", parentType: "MODULE", childType: "PAGE", want: true},
		{name: "container", schemaId: "COURSE_SCHEMA", parentType: "PAGE", childType: "ASSESSMENT", want: true},
		{name: "wrong parent", schemaId: "COURSE_SCHEMA", parentType: "LESSON", childType: "MODULE", want: false},
		{name: "foreign type", schemaId: "COURSE_SCHEMA", parentType: "MODULE", childType: "ITEM", want: false},
		{name: "unknown schema", schemaId: "NOPE", parentType: "", childType: "MODULE", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsTypeAllowedAtLevel(tt.schemaId, tt.parentType, tt.childType))
		})
	}
}

func TestRegistry_GetCompatibleTargetType(t *testing.T) {
	r := loadTestRegistry(t)

	got, ok := r.GetCompatibleTargetType("COURSE_SCHEMA", "MODULE", "ITEM")
	require.True(t, ok)
	assert.Equal(t, "PAGE", got)

	got, ok = r.GetCompatibleTargetType("COURSE_SCHEMA", "", "GROUP")
	require.True(t, ok)
	assert.Equal(t, "MODULE", got)

	got, ok = r.GetCompatibleTargetType("COURSE_SCHEMA", "PAGE", "ITEM_CONTAINER")
	require.True(t, ok)
	assert.Equal(t, "SECTION", got)

	_, ok = r.GetCompatibleTargetType("COURSE_SCHEMA", "", "ITEM")
	assert.False(t, ok)
}

func TestRegistry_GetDefaultActivityStatus(t *testing.T) {
	r := loadTestRegistry(t)

	status, ok := r.GetDefaultActivityStatus("PAGE")
	require.True(t, ok)
	assert.Equal(t, DefaultStatus{Status: "TODO", Priority: 3}, status)

	_, ok = r.GetDefaultActivityStatus("SECTION")
	assert.False(t, ok)
}

func TestParse_RejectsDuplicateTypes(t *testing.T) {
	raw := []byte(`
schemas:
  - id: A
    structure:
      - type: PAGE
        rootLevel: true
  - id: B
    structure:
      - type: PAGE
        rootLevel: true
`)
	_, err := Parse(raw)
	assert.ErrorContains(t, err, `type "PAGE" already declared`)
}

func TestParse_RejectsUnknownWorkflow(t *testing.T) {
	_, err := Parse([]byte("schemas:\n  - id: A\n    workflow: missing\n"))
	assert.ErrorContains(t, err, `unknown workflow "missing"`)
}
