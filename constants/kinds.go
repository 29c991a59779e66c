package constants

// Kind tags a recovered field record. Stable values (these exact strings
// appear on the wire in both directions).
type Kind string

const (
	KindHeader           Kind = "header"
	KindField            Kind = "field"
	KindSampleField      Kind = "sample_field"
	KindAnalysisCheckbox Kind = "analysis_checkbox"
	KindCheckbox         Kind = "checkbox"
)

// IsCheckbox reports whether records of this kind carry a checkbox state
// rather than free text.
func (k Kind) IsCheckbox() bool {
	return k == KindCheckbox || k == KindAnalysisCheckbox
}

// IsSampleScoped reports whether records of this kind belong to the
// per-sample reconciliation pass.
func (k Kind) IsSampleScoped() bool {
	return k == KindSampleField || k == KindAnalysisCheckbox
}
