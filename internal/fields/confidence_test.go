package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/labforms/coc-extractor/constants"
)

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want float64
	}{
		{"checkbox always high", Record{Key: "Rush", Value: "checked", Kind: constants.KindCheckbox}, 0.9},
		{"valid email", Record{Key: "Client Email", Value: "lab@acme.com"}, 0.95},
		{"broken email", Record{Key: "Client Email", Value: "acme.com"}, 0.2},
		{"full phone", Record{Key: "Phone", Value: "(555) 123-4567"}, 0.95},
		{"short phone", Record{Key: "Phone", Value: "x1234"}, 0.3},
		{"slash date", Record{Key: "Collected Date", Value: "01/05/2024"}, 0.9},
		{"iso date", Record{Key: "Report Date", Value: "2024-01-05"}, 0.9},
		{"prose date", Record{Key: "Report Date", Value: "early January"}, 0.4},
		{"clock time", Record{Key: "Collected Time", Value: "14:30"}, 0.9},
		{"am pm time", Record{Key: "Collected Time", Value: "2:30 PM"}, 0.9},
		{"matrix synonym", Record{Key: "Matrix", Value: "Groundwater"}, 0.9},
		{"matrix code", Record{Key: "Source", Value: "DW"}, 0.9},
		{"unknown matrix", Record{Key: "Matrix", Value: "mud"}, 0.5},
		{"grab code", Record{Key: "Comp/Grab", Value: "G"}, 0.9},
		{"code shaped value", Record{Key: "Lot", Value: "AB-123"}, 0.8},
		{"plain text", Record{Key: "Remarks", Value: "see attached"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Confidence(tt.rec), 1e-9)
		})
	}
}

func TestConfidenceSentinelRecords(t *testing.T) {
	nilRec := func(key string) Record {
		return Record{Key: key, Value: constants.NIL}
	}

	assert.InDelta(t, 0.6, Confidence(nilRec("Client Name")), 1e-9)
	assert.InDelta(t, 0.6, Confidence(nilRec("Customer Sample ID")), 1e-9)
	assert.InDelta(t, 0.4, Confidence(nilRec("xyz")), 1e-9)
	assert.InDelta(t, 0.1, Confidence(nilRec("#1")), 1e-9)
}
