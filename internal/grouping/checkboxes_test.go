package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
)

func checkbox(key, value, cbType string) fields.Record {
	return fields.Record{
		Key:          key,
		Value:        value,
		Kind:         constants.KindCheckbox,
		Page:         1,
		CheckboxType: cbType,
	}
}

func TestCategorize(t *testing.T) {
	recs := []fields.Record{
		checkbox("Flammable", "checked", "hazard"),
		checkbox("Filtered", "unchecked", "technical"),
		checkbox("Invoice to Client", "checked", "administrative"),
		checkbox("Level IV", "checked", ""),
		checkbox("Same Day", "checked", "rush_options"),
		checkbox("PT", "checked", ""),
		checkbox("Yes", "checked", "reportable"),
		checkbox("Mystery Box", "checked", ""),
		{Key: "Client Name", Value: "Acme", Kind: constants.KindField}, // not a checkbox
	}

	groups := Categorize(recs)

	assert.Equal(t, map[string]string{"Flammable": "checked"}, groups.Hazard)
	assert.Equal(t, map[string]string{"Filtered": "unchecked"}, groups.Technical)
	assert.Equal(t, map[string]string{"Invoice to Client": "checked"}, groups.Administrative)
	assert.Equal(t, map[string]string{"Level IV": "checked"}, groups.DataDeliverables)
	assert.Equal(t, map[string]string{"Same Day": "checked"}, groups.RushOption)
	assert.Equal(t, map[string]string{"PT": "checked"}, groups.Timezone)
	assert.Equal(t, map[string]string{"Yes": "checked"}, groups.Reportable)
	assert.Equal(t, map[string]string{"Mystery Box": "checked"}, groups.Other)

	require.Len(t, groups.Summary, 8)
	detail := groups.Summary["Flammable"]
	assert.Equal(t, "checked", detail.Value)
	assert.Equal(t, "hazard", detail.Type)
	assert.Equal(t, 1, detail.Page)
	assert.Nil(t, detail.SampleID)
}

func TestCategorizeTypeBeatsKeyShape(t *testing.T) {
	// an explicit checkbox type wins over whatever the label looks like
	groups := Categorize([]fields.Record{
		checkbox("Level II", "checked", "data_deliverables"),
		checkbox("EQuIS", "checked", ""),
	})

	assert.Len(t, groups.DataDeliverables, 2)
	assert.Empty(t, groups.Other)
}

func TestCategorizeSampleLinkedSummary(t *testing.T) {
	rec := checkbox("Field Filtered", "checked", "technical")
	rec.SampleID = "MW-01"

	groups := Categorize([]fields.Record{rec})
	detail := groups.Summary["Field Filtered"]
	require.NotNil(t, detail.SampleID)
	assert.Equal(t, "MW-01", *detail.SampleID)
}
