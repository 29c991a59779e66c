package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
)

func sampleField(key, value string) fields.Record {
	return fields.Record{Key: key, Value: value, Kind: constants.KindSampleField}
}

func analysisCheckbox(sampleID, name, value string) fields.Record {
	return fields.Record{
		Key:          name,
		Value:        value,
		Kind:         constants.KindAnalysisCheckbox,
		SampleID:     sampleID,
		AnalysisName: name,
	}
}

func TestRowsReconcilesSlots(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		sampleField("Matrix", "GW"),
		sampleField("Comp/Grab", "G"),
		sampleField("# Cont", "3"),
	}

	rows := e.Rows(recs, []string{"MW-01"}, nil)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "MW-01", row.SampleID)
	assert.Equal(t, "GW", row.Matrix)
	assert.Equal(t, "G", row.CompGrab)
	assert.Equal(t, "3", row.Containers)
	assert.Equal(t, constants.NIL, row.StartDate)
	assert.Equal(t, constants.NIL, row.AnalysisRequest)
}

func TestRowsFirstMatchWins(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		sampleField("Matrix", "GW"),
		sampleField("Sample Matrix", "SW"), // later spelling, must not overwrite
	}

	rows := e.Rows(recs, []string{"MW-01"}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "GW", rows[0].Matrix)
}

func TestRowsCursorAttribution(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		sampleField("Matrix", "GW"),
		sampleField("Customer Sample ID", "MW-02"),
		sampleField("Matrix", "SW"),
	}

	rows := e.Rows(recs, []string{"MW-01", "MW-02"}, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "GW", rows[0].Matrix)
	assert.Equal(t, "SW", rows[1].Matrix)
}

func TestRowsExplicitSampleLinkMovesCursor(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		{Key: "Matrix", Value: "DW", Kind: constants.KindSampleField, SampleID: "MW-02"},
		sampleField("# Cont", "2"), // rides with the cursor set above
	}

	rows := e.Rows(recs, []string{"MW-02"}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "DW", rows[0].Matrix)
	assert.Equal(t, "2", rows[0].Containers)
}

func TestRowsCrossSampleFill(t *testing.T) {
	e := NewEngine(nil)

	// the comp/grab value was only written next to MW-01 on the form, but
	// the key table spans samples, so MW-02 inherits it
	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		sampleField("Matrix", "GW"),
		sampleField("Comp/Grab", "G"),
		sampleField("Customer Sample ID", "MW-02"),
		sampleField("Matrix", "SW"),
	}

	rows := e.Rows(recs, []string{"MW-01", "MW-02"}, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "G", rows[0].CompGrab)
	assert.Equal(t, "G", rows[1].CompGrab)
}

func TestRowsLookupFallback(t *testing.T) {
	e := NewEngine(nil)

	// a general field with a matching spelling fills the slot nothing claimed
	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		{Key: "Collection Date", Value: "01/02/2024", Kind: constants.KindField},
	}

	rows := e.Rows(recs, []string{"MW-01"}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, "01/02/2024", rows[0].StartDate)
}

func TestRowsAnalysisExpansion(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		sampleField("Matrix", "GW"),
		analysisCheckbox("MW-01", "8260B", constants.CheckboxChecked),
		analysisCheckbox("MW-01", "6010", constants.CheckboxChecked),
		analysisCheckbox("MW-01", "624.1", constants.CheckboxChecked),
		analysisCheckbox("MW-01", "300.0", constants.CheckboxUnchecked),
	}

	rows := e.Rows(recs, []string{"MW-01"}, nil)
	require.Len(t, rows, 3)
	assert.Equal(t, "8260B", rows[0].AnalysisRequest)
	assert.Equal(t, "6010", rows[1].AnalysisRequest)
	assert.Equal(t, "624.1", rows[2].AnalysisRequest)

	// rows are identical apart from the analysis label
	for _, row := range rows[1:] {
		a, b := rows[0], row
		a.AnalysisRequest, b.AnalysisRequest = "", ""
		assert.Equal(t, a, b)
	}
}

func TestRowsAnalysisInventoryMerge(t *testing.T) {
	e := NewEngine(nil)

	recs := []fields.Record{
		sampleField("Customer Sample ID", "MW-01"),
		analysisCheckbox("MW-01", "8260B", constants.CheckboxChecked),
	}
	analysisMap := map[string]map[string]string{
		"MW-01": {"9060": "Yes", "8260B": "Yes", "300.0": "No"},
	}

	rows := e.Rows(recs, []string{"MW-01"}, analysisMap)
	require.Len(t, rows, 2)
	assert.Equal(t, "8260B", rows[0].AnalysisRequest)
	assert.Equal(t, "9060", rows[1].AnalysisRequest)
}

func TestRowsNoAnalysesYieldsSingleRow(t *testing.T) {
	e := NewEngine(nil)

	rows := e.Rows([]fields.Record{sampleField("Matrix", "GW")}, []string{"MW-01"}, nil)
	require.Len(t, rows, 1)
	assert.Equal(t, constants.NIL, rows[0].AnalysisRequest)
}

func TestAnalysisNameFallbackSpellings(t *testing.T) {
	cb := func(key string) fields.Record {
		return fields.Record{Key: key, Kind: constants.KindAnalysisCheckbox}
	}

	assert.Equal(t, "8260", analysisName(cb("8260_checkbox")))
	assert.Equal(t, "PFAS", analysisName(cb("analysis_pfas")))
	assert.Equal(t, "TSS", analysisName(cb("Parameter TSS")))
	assert.Equal(t, "", analysisName(cb("just a label")))

	explicit := cb("whatever")
	explicit.AnalysisName = "624.1"
	assert.Equal(t, "624.1", analysisName(explicit))
}

func TestMatchSlot(t *testing.T) {
	tests := []struct {
		key  string
		slot Slot
		ok   bool
	}{
		{"matrix", SlotMatrix, true},
		{"sample_matrix", SlotMatrix, true},
		{"comp/grab", SlotCompGrab, true},
		{"composite_start_date", SlotStartDate, true},
		{"collected_or_composite_end_time", SlotEndTime, true},
		{"#_cont", SlotContainers, true},
		{"units", SlotChlorideUnits, true},
		{"date_sampled", SlotEndDate, true}, // generic catch-all
		{"time_sampled", SlotEndTime, true},
		{"remarks", "", false},
	}

	for _, tt := range tests {
		rule, ok := matchSlot(tt.key)
		assert.Equal(t, tt.ok, ok, tt.key)
		if tt.ok {
			assert.Equal(t, tt.slot, rule.Slot, tt.key)
		}
	}
}
