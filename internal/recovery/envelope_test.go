package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/constants"
)

func TestParseEnvelopeCoercesLooseTypes(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"extracted_fields": [
		{"key": "Count", "value": 3, "type": "general_field", "page": "2"},
		{"key": "Rush", "value": true, "type": "checkbox"},
		{"key": "Empty", "value": null, "type": "general_field"}
	]}`))
	require.NoError(t, err)
	require.Len(t, env.ExtractedFields, 3)

	assert.Equal(t, "3", env.ExtractedFields[0].Value)
	assert.Equal(t, 2, env.ExtractedFields[0].Page)
	assert.Equal(t, "true", env.ExtractedFields[1].Value)
	assert.Equal(t, constants.Kind("checkbox"), env.ExtractedFields[1].Kind)
	assert.Equal(t, "", env.ExtractedFields[2].Value)
}

func TestParseEnvelopeBareArray(t *testing.T) {
	env, err := ParseEnvelope([]byte(`[{"key": "Name", "value": "John"}, "not a record"]`))
	require.NoError(t, err)
	require.Len(t, env.ExtractedFields, 1)
	assert.Equal(t, "Name", env.ExtractedFields[0].Key)
	assert.Contains(t, env.AllCheckboxes, "all_checkboxes_summary")
}

func TestParseEnvelopeRejectsRecordFragment(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"key": "Name", "value": "John", "type": "general_field"}`))
	assert.Error(t, err)
}

func TestParseEnvelopeRejectsWrongContainerTypes(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"extracted_fields": "oops"}`))
	assert.Error(t, err)

	_, err = ParseEnvelope([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestParseEnvelopeMissingSectionsDegrade(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, env.ExtractedFields)
	assert.Empty(t, env.SampleIDs)
	assert.NotNil(t, env.Mapping.SampleAnalysisMap)
}
