package grouping

import (
	"strings"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
)

// CheckboxGroups buckets free checkboxes by what part of the form they came
// from. JSON names are stable.
type CheckboxGroups struct {
	Hazard           map[string]string         `json:"hazard_checkboxes"`
	Technical        map[string]string         `json:"technical_checkboxes"`
	Administrative   map[string]string         `json:"administrative_checkboxes"`
	Analysis         map[string]string         `json:"analysis_checkboxes"`
	DataDeliverables map[string]string         `json:"data_deliverables_checkboxes"`
	RushOption       map[string]string         `json:"rush_option_checkboxes"`
	Timezone         map[string]string         `json:"timezone_checkboxes"`
	Reportable       map[string]string         `json:"reportable_checkboxes"`
	Other            map[string]string         `json:"other_checkboxes"`
	Summary          map[string]CheckboxDetail `json:"all_checkboxes_summary"`
}

// CheckboxDetail is the summary entry for one checkbox.
type CheckboxDetail struct {
	Value    string  `json:"value"`
	Type     string  `json:"type"`
	Page     int     `json:"page"`
	SampleID *string `json:"sample_id"`
}

// NewCheckboxGroups returns groups with every bucket present but empty.
func NewCheckboxGroups() CheckboxGroups {
	return CheckboxGroups{
		Hazard:           map[string]string{},
		Technical:        map[string]string{},
		Administrative:   map[string]string{},
		Analysis:         map[string]string{},
		DataDeliverables: map[string]string{},
		RushOption:       map[string]string{},
		Timezone:         map[string]string{},
		Reportable:       map[string]string{},
		Other:            map[string]string{},
		Summary:          map[string]CheckboxDetail{},
	}
}

var (
	deliverableKeywords = []string{"level ii", "level iii", "level iv", "equis"}
	rushKeywords        = []string{"same day", "1 day", "2 day", "3 day"}
	timezoneCodes       = map[string]struct{}{"AM": {}, "PT": {}, "MT": {}, "CT": {}, "ET": {}}
)

// Categorize sorts free-checkbox records into their buckets and fills the
// summary. Analysis checkboxes belong to the per-sample expansion, not here.
func Categorize(recs []fields.Record) CheckboxGroups {
	groups := NewCheckboxGroups()
	for _, rec := range recs {
		if rec.Kind != constants.KindCheckbox {
			continue
		}
		groups.bucketFor(rec)[rec.Key] = rec.Value
		detail := CheckboxDetail{
			Value: rec.Value,
			Type:  rec.CheckboxType,
			Page:  rec.Page,
		}
		if rec.SampleID != "" {
			sid := rec.SampleID
			detail.SampleID = &sid
		}
		groups.Summary[rec.Key] = detail
	}
	return groups
}

func (g *CheckboxGroups) bucketFor(rec fields.Record) map[string]string {
	cbType := strings.ToLower(rec.CheckboxType)
	key := strings.ToLower(rec.Key)

	switch {
	case strings.Contains(cbType, "data_deliverables") || containsAny(key, deliverableKeywords):
		return g.DataDeliverables
	case strings.Contains(cbType, "rush") || containsAny(key, rushKeywords):
		return g.RushOption
	case strings.Contains(cbType, "timezone") || isTimezoneCode(rec.Key):
		return g.Timezone
	case strings.Contains(cbType, "reportable") || key == "yes" || key == "no":
		return g.Reportable
	case strings.Contains(cbType, "hazard"):
		return g.Hazard
	case strings.Contains(cbType, "technical"):
		return g.Technical
	case strings.Contains(cbType, "administrative"):
		return g.Administrative
	}
	return g.Other
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isTimezoneCode(key string) bool {
	_, ok := timezoneCodes[strings.ToUpper(strings.TrimSpace(key))]
	return ok
}
