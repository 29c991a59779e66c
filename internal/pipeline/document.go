package pipeline

import (
	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
	"github.com/labforms/coc-extractor/internal/grouping"
)

// Document is the terminal artifact for one extraction request: the flat
// record sequence, the general/sample split, the reconciled per-sample rows,
// and the categorized checkbox groups. Section names are stable.
type Document struct {
	ExtractedFields    []fields.Record              `json:"extracted_fields"`
	GeneralInformation []fields.Record              `json:"general_information"`
	SampleData         []grouping.Row               `json:"sample_data_information"`
	Checkboxes         grouping.CheckboxGroups      `json:"all_checkboxes"`
	SampleIDs          []string                     `json:"sample_ids"`
	AnalysisRequest    []string                     `json:"analysis_request"`
	SampleAnalysisMap  map[string]map[string]string `json:"sample_analysis_map"`
}

// inventory accumulates sample IDs, requested analyses, and the per-sample
// analysis map across units, keeping first-seen order.
type inventory struct {
	sampleIDs   []string
	sampleSeen  map[string]struct{}
	analyses    []string
	analysisSet map[string]struct{}
	bySample    map[string]map[string]string
}

func newInventory() *inventory {
	return &inventory{
		sampleSeen:  map[string]struct{}{},
		analysisSet: map[string]struct{}{},
		bySample:    map[string]map[string]string{},
	}
}

// Sentinel values ("NIL", "N/A", ...) come straight from the model and must
// never mint an inventory entry, or cross-sample fill would hang real values
// on a phantom sample.
func (inv *inventory) addSample(id string) {
	if constants.IsEmptyValue(id) {
		return
	}
	if _, ok := inv.sampleSeen[id]; ok {
		return
	}
	inv.sampleSeen[id] = struct{}{}
	inv.sampleIDs = append(inv.sampleIDs, id)
}

func (inv *inventory) addAnalysis(name string) {
	if constants.IsEmptyValue(name) {
		return
	}
	if _, ok := inv.analysisSet[name]; ok {
		return
	}
	inv.analysisSet[name] = struct{}{}
	inv.analyses = append(inv.analyses, name)
}

func (inv *inventory) mapAnalysis(sampleID, analysis, value string) {
	if constants.IsEmptyValue(sampleID) || constants.IsEmptyValue(analysis) {
		return
	}
	inv.addSample(sampleID)
	inv.addAnalysis(analysis)
	if _, ok := inv.bySample[sampleID]; !ok {
		inv.bySample[sampleID] = map[string]string{}
	}
	inv.bySample[sampleID][analysis] = value
}
