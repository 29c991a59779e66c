package fields

import (
	"strings"

	"github.com/labforms/coc-extractor/constants"
)

// MethodAIVision marks records that came out of the vision model rather
// than native text extraction.
const MethodAIVision = "AI Vision"

// Record is one flat key/value extracted from a processing unit (page).
// Records are produced by the recovery cascade, cleaned by Normalize, and
// consumed by the grouping engine; they are not persisted individually.
type Record struct {
	Key          string         `json:"key"`
	Value        string         `json:"value"`
	Kind         constants.Kind `json:"type"`
	Page         int            `json:"page"`
	Method       string         `json:"method,omitempty"`
	SampleID     string         `json:"sample_id,omitempty"`
	AnalysisName string         `json:"analysis_name,omitempty"`
	CheckboxType string         `json:"checkbox_type,omitempty"`
}

// NormalizedKey returns the key lower-cased with whitespace and hyphens
// collapsed to underscores. All key-pattern matching runs on this form.
func NormalizedKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, " ", "_")
	k = strings.ReplaceAll(k, "-", "_")
	return k
}

// IsNIL reports whether the record carries the empty-field sentinel.
func (r Record) IsNIL() bool {
	return r.Value == constants.NIL
}
