package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/internal/fields"
)

const wellFormedResponse = `{
	"extracted_fields": [
		{"key": "Client Name", "value": "Acme Labs", "type": "general_field", "page": 1, "method": "AI Vision"},
		{"key": "Customer Sample ID", "value": "MW-01", "type": "sample_field", "page": 1, "method": "AI Vision", "sample_id": "MW-01"}
	],
	"all_checkboxes": {"all_checkboxes_summary": {}},
	"sample_analysis_mapping": {
		"sample_ids": ["MW-01"],
		"analysis_request": ["8260B"],
		"sample_analysis_map": {"MW-01": {"8260B": "Yes"}}
	},
	"sample_ids": ["MW-01"],
	"analysis_request": ["8260B"]
}`

func TestRecoverDirect(t *testing.T) {
	c := NewCascade(nil)

	env, stage := c.Recover(wellFormedResponse)
	assert.Equal(t, StageDirect, stage)
	require.Len(t, env.ExtractedFields, 2)
	assert.Equal(t, "Client Name", env.ExtractedFields[0].Key)
	assert.Equal(t, "Acme Labs", env.ExtractedFields[0].Value)
	assert.Equal(t, []string{"MW-01"}, env.Mapping.SampleIDs)
	assert.Equal(t, map[string]string{"8260B": "Yes"}, env.Mapping.SampleAnalysisMap["MW-01"])

	// fencing around a valid response never costs a stage
	fenced, stage := c.Recover("```json\n" + wellFormedResponse + "\n```")
	assert.Equal(t, StageDirect, stage)
	assert.Equal(t, env, fenced)
}

func TestRecoverStructuralRepair(t *testing.T) {
	c := NewCascade(nil)

	// trailing comma inside the array
	env, stage := c.Recover(`{"extracted_fields": [{"key": "Client Name", "value": "Acme", "type": "general_field"},]}`)
	assert.Equal(t, StageStructural, stage)
	require.Len(t, env.ExtractedFields, 1)
	assert.Equal(t, "Acme", env.ExtractedFields[0].Value)

	// missing closers after a complete last element
	env, stage = c.Recover(`{"extracted_fields": [{"key": "Client Name", "value": "Acme", "type": "general_field"}`)
	assert.Equal(t, StageStructural, stage)
	require.Len(t, env.ExtractedFields, 1)
}

func TestRecoverTruncationRepair(t *testing.T) {
	c := NewCascade(nil)

	raw := `{"extracted_fields": [` +
		`{"key": "Name", "value": "John", "type": "general_field"},` +
		`{"key": "Matrix", "value": "DW", "type": "sample_field"},` +
		`{"key": "Date", "va`
	env, stage := c.Recover(raw)
	assert.Equal(t, StageTruncation, stage)
	require.Len(t, env.ExtractedFields, 2)
	assert.Equal(t, "Name", env.ExtractedFields[0].Key)
	assert.Equal(t, "Matrix", env.ExtractedFields[1].Key)
}

func TestRecoverBareTruncatedArray(t *testing.T) {
	c := NewCascade(nil)

	env, stage := c.Recover(`[{"key":"Name","value":"John"},{"key":"Date",`)
	assert.Equal(t, StageTruncation, stage)
	require.Len(t, env.ExtractedFields, 1)
	assert.Equal(t, "Name", env.ExtractedFields[0].Key)
	assert.Equal(t, "John", env.ExtractedFields[0].Value)
}

func TestRecoverPrefixSearch(t *testing.T) {
	c := NewCascade(nil)

	// no closing delimiter anywhere, so the truncation cut has nothing to
	// anchor on; a 70% prefix ends inside the type literal and parses
	raw := `{"extracted_fields": [{"key":"aaaa","value":"bbbb","type":"cccc"` +
		`,"deliberately": !broken!`
	env, stage := c.Recover(raw)
	assert.Equal(t, StagePrefix, stage)
	require.Len(t, env.ExtractedFields, 1)
	assert.Equal(t, "aaaa", env.ExtractedFields[0].Key)
}

func TestRecoverArrayExtract(t *testing.T) {
	c := NewCascade(nil)

	raw := `{"general": !!!, "extracted_fields": [{"key":"a","value":"b","type":"general_field"}]`
	env, stage := c.Recover(raw)
	assert.Equal(t, StageArray, stage)
	require.Len(t, env.ExtractedFields, 1)
	assert.Equal(t, "a", env.ExtractedFields[0].Key)
}

func TestRecoverElementSalvage(t *testing.T) {
	c := NewCascade(nil)

	raw := `{"general": !!!, "extracted_fields": [` +
		`{"key":"a","value":"b","type":"general_field"},` +
		`{"key":"c","value":"d","type":"general_field"},` +
		`{"key":"e","val`
	env, stage := c.Recover(raw)
	assert.Equal(t, StageElements, stage)
	require.Len(t, env.ExtractedFields, 2)
	assert.Equal(t, "a", env.ExtractedFields[0].Key)
	assert.Equal(t, "c", env.ExtractedFields[1].Key)
}

func TestRecoverEmergencySalvage(t *testing.T) {
	c := NewCascade(nil)

	raw := `the model rambled ))) {"key":"Client","value":"Acme","type":"general_field"} ` +
		`and then broke off {"key":"Date","value":"2024-01-05","type":"general_field"`
	env, stage := c.Recover(raw)
	assert.Equal(t, StageEmergency, stage)
	require.Len(t, env.ExtractedFields, 2)

	for _, rec := range env.ExtractedFields {
		assert.Equal(t, 1, rec.Page)
		assert.Equal(t, fields.MethodAIVision, rec.Method)
	}
	assert.Equal(t, "Acme", env.ExtractedFields[0].Value)
	assert.Equal(t, "2024-01-05", env.ExtractedFields[1].Value)
}

func TestRecoverExhausted(t *testing.T) {
	c := NewCascade(nil)

	env, stage := c.Recover("total nonsense, no structure at all")
	assert.Equal(t, StageNone, stage)
	assert.Empty(t, env.ExtractedFields)
	assert.Contains(t, env.AllCheckboxes, "all_checkboxes_summary")
}

func TestRecoverNeverInventsTrailingRecord(t *testing.T) {
	c := NewCascade(nil)

	// a response cut mid-element yields exactly the complete elements
	for n := 1; n <= 4; n++ {
		raw := `{"extracted_fields": [`
		for i := 0; i < n; i++ {
			raw += `{"key":"k","value":"v","type":"general_field"},`
		}
		raw += `{"key":"cut","va`

		env, stage := c.Recover(raw)
		require.NotEqual(t, StageNone, stage, "n=%d", n)
		assert.Len(t, env.ExtractedFields, n, "n=%d", n)
	}
}
