package grouping

import "github.com/labforms/coc-extractor/constants"

// Slot names one target column of the canonical per-sample row.
type Slot string

const (
	SlotMatrix         Slot = "matrix"
	SlotCompGrab       Slot = "comp_grab"
	SlotStartDate      Slot = "start_date"
	SlotStartTime      Slot = "start_time"
	SlotEndDate        Slot = "end_date"
	SlotEndTime        Slot = "end_time"
	SlotContainers     Slot = "containers"
	SlotChlorideResult Slot = "chloride_result"
	SlotChlorideUnits  Slot = "chloride_units"
)

// slotOrder fixes the scan order for rule evaluation and fallback fill.
var slotOrder = []Slot{
	SlotMatrix,
	SlotCompGrab,
	SlotStartDate,
	SlotStartTime,
	SlotEndDate,
	SlotEndTime,
	SlotContainers,
	SlotChlorideResult,
	SlotChlorideUnits,
}

// Row is the canonical reconciled record for one (sample, analysis) pair.
// JSON names are the historical report column headers; they are stable and
// must not change.
type Row struct {
	SampleID        string `json:"Customer Sample ID"`
	Matrix          string `json:"Matrix"`
	CompGrab        string `json:"Comp/Grab"`
	StartDate       string `json:"Composite Start Date"`
	StartTime       string `json:"Composite Start Time"`
	EndDate         string `json:"Composite or Collected End Date"`
	EndTime         string `json:"Composite or Collected End Time"`
	Containers      string `json:"# Cont"`
	ChlorideResult  string `json:"Residual Chloride Result"`
	ChlorideUnits   string `json:"Residual Chloride Units"`
	AnalysisRequest string `json:"analysis_request"`
}

// NewRow returns a row for the sample with every slot at NIL.
func NewRow(sampleID string) Row {
	return Row{
		SampleID:        sampleID,
		Matrix:          constants.NIL,
		CompGrab:        constants.NIL,
		StartDate:       constants.NIL,
		StartTime:       constants.NIL,
		EndDate:         constants.NIL,
		EndTime:         constants.NIL,
		Containers:      constants.NIL,
		ChlorideResult:  constants.NIL,
		ChlorideUnits:   constants.NIL,
		AnalysisRequest: constants.NIL,
	}
}

// slot returns the addressable cell for s.
func (r *Row) slot(s Slot) *string {
	switch s {
	case SlotMatrix:
		return &r.Matrix
	case SlotCompGrab:
		return &r.CompGrab
	case SlotStartDate:
		return &r.StartDate
	case SlotStartTime:
		return &r.StartTime
	case SlotEndDate:
		return &r.EndDate
	case SlotEndTime:
		return &r.EndTime
	case SlotContainers:
		return &r.Containers
	case SlotChlorideResult:
		return &r.ChlorideResult
	case SlotChlorideUnits:
		return &r.ChlorideUnits
	}
	return nil
}

// filled reports whether the slot already holds a real value. Assignment is
// non-destructive: a filled slot is never overwritten.
func (r *Row) filled(s Slot) bool {
	return *r.slot(s) != constants.NIL
}

// assign writes v into the slot unless it is already filled.
func (r *Row) assign(s Slot, v string) bool {
	if v == "" || v == constants.NIL || r.filled(s) {
		return false
	}
	*r.slot(s) = v
	return true
}
