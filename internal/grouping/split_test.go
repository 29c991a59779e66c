package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labforms/coc-extractor/constants"
)

func TestSplitTwoPart(t *testing.T) {
	tests := []struct {
		in            string
		first, second string
		ok            bool
	}{
		{"DW G", "DW", "G", true},
		{"B2", "B", "2", true},
		{" GW  C ", "GW", "C", true},
		{"groundwater", "", "", false},
		{"one two three", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		first, second, ok := splitTwoPart(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.second, second, tt.in)
	}
}

func TestSplitPairedMatrix(t *testing.T) {
	row := NewRow("MW-01")
	row.Matrix = "DW G"
	row.splitPaired()
	assert.Equal(t, "DW", row.Matrix)
	assert.Equal(t, "G", row.CompGrab)

	row = NewRow("MW-01")
	row.Matrix = "B2"
	row.splitPaired()
	assert.Equal(t, "B", row.Matrix)
	assert.Equal(t, "2", row.CompGrab)

	// a filled comp/grab slot suppresses the split
	row = NewRow("MW-01")
	row.Matrix = "DW G"
	row.CompGrab = "C"
	row.splitPaired()
	assert.Equal(t, "DW G", row.Matrix)
	assert.Equal(t, "C", row.CompGrab)
}

func TestSplitPairedChloride(t *testing.T) {
	row := NewRow("MW-01")
	row.ChlorideResult = "0.5 mg/L"
	row.splitPaired()
	assert.Equal(t, "0.5", row.ChlorideResult)
	assert.Equal(t, "mg/L", row.ChlorideUnits)

	row = NewRow("MW-01")
	row.ChlorideResult = "12"
	row.splitPaired()
	assert.Equal(t, "12", row.ChlorideResult)
	assert.Equal(t, constants.NIL, row.ChlorideUnits)
}

func TestRowAssignNonDestructive(t *testing.T) {
	row := NewRow("MW-01")

	assert.True(t, row.assign(SlotMatrix, "GW"))
	assert.False(t, row.assign(SlotMatrix, "SW"))
	assert.Equal(t, "GW", row.Matrix)

	assert.False(t, row.assign(SlotCompGrab, ""))
	assert.False(t, row.assign(SlotCompGrab, constants.NIL))
	assert.Equal(t, constants.NIL, row.CompGrab)
}
