package recovery

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
)

// Envelope is the top-level document shape the generator is asked to return:
// the flat record array plus auxiliary checkbox groups and sample/analysis
// inventories. Field names are stable; downstream consumers read them.
type Envelope struct {
	ExtractedFields []fields.Record           `json:"extracted_fields"`
	AllCheckboxes   map[string]map[string]any `json:"all_checkboxes"`
	Mapping         Inventory                 `json:"sample_analysis_mapping"`
	SampleIDs       []string                  `json:"sample_ids"`
	AnalysisRequest []string                  `json:"analysis_request"`
}

// Inventory carries the generator's own view of which samples exist and
// which analyses were requested for them.
type Inventory struct {
	SampleIDs         []string                     `json:"sample_ids"`
	AnalysisRequest   []string                     `json:"analysis_request"`
	SampleAnalysisMap map[string]map[string]string `json:"sample_analysis_map"`
}

// EmptyEnvelope returns an envelope with every section present but empty.
func EmptyEnvelope() Envelope {
	return Envelope{
		ExtractedFields: []fields.Record{},
		AllCheckboxes:   map[string]map[string]any{"all_checkboxes_summary": {}},
		Mapping: Inventory{
			SampleIDs:         []string{},
			AnalysisRequest:   []string{},
			SampleAnalysisMap: map[string]map[string]string{},
		},
		SampleIDs:       []string{},
		AnalysisRequest: []string{},
	}
}

// envelopeSchema is the minimal top-level shape a recovered value must
// satisfy: a JSON object whose known sections, when present, have the right
// container types. A missing extracted_fields array is not a violation; per
// the error-handling contract it degrades to "no records". An object carrying
// a top-level "key" is a stray record fragment, not an envelope, and is
// rejected so the salvage stages get a chance at it.
const envelopeSchema = `{
	"type": "object",
	"properties": {
		"extracted_fields": {"type": "array", "items": {"type": "object"}},
		"all_checkboxes": {"type": "object"},
		"sample_analysis_mapping": {"type": "object"},
		"sample_ids": {"type": "array"},
		"analysis_request": {"type": "array"}
	},
	"not": {"required": ["key"]}
}`

var envelopeSchemaCompiled = jsonschema.MustCompileString("envelope.json", envelopeSchema)

// ParseEnvelope decodes data leniently into an Envelope. It fails when the
// text is not valid JSON or does not satisfy the minimal envelope shape.
// Record values are coerced to strings the way the generator mixes types
// (numbers, booleans, null) into string fields.
func ParseEnvelope(data []byte) (Envelope, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	// A bare top-level array is the extracted_fields list without the
	// surrounding envelope. Accept it directly.
	if arr, ok := v.([]any); ok {
		env := EmptyEnvelope()
		env.ExtractedFields = recordsFromArray(arr)
		return env, nil
	}

	if err := envelopeSchemaCompiled.Validate(v); err != nil {
		return Envelope{}, fmt.Errorf("envelope shape: %w", err)
	}

	obj := v.(map[string]any)
	env := EmptyEnvelope()

	if arr, ok := obj["extracted_fields"].([]any); ok {
		env.ExtractedFields = recordsFromArray(arr)
	}

	if cb, ok := obj["all_checkboxes"].(map[string]any); ok {
		for group, raw := range cb {
			entries, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			env.AllCheckboxes[group] = entries
		}
	}

	if m, ok := obj["sample_analysis_mapping"].(map[string]any); ok {
		env.Mapping.SampleIDs = appendStrings(env.Mapping.SampleIDs, m["sample_ids"])
		env.Mapping.AnalysisRequest = appendStrings(env.Mapping.AnalysisRequest, m["analysis_request"])
		if sm, ok := m["sample_analysis_map"].(map[string]any); ok {
			for sid, raw := range sm {
				inner, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				dst := map[string]string{}
				for name, val := range inner {
					dst[name] = coerceString(val)
				}
				env.Mapping.SampleAnalysisMap[sid] = dst
			}
		}
	}

	env.SampleIDs = appendStrings(env.SampleIDs, obj["sample_ids"])
	env.AnalysisRequest = appendStrings(env.AnalysisRequest, obj["analysis_request"])

	return env, nil
}

func recordsFromArray(arr []any) []fields.Record {
	recs := make([]fields.Record, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		recs = append(recs, recordFromMap(m))
	}
	return recs
}

// RecordFromMap builds a Record from one decoded array element, coercing
// loosely typed values.
func recordFromMap(m map[string]any) fields.Record {
	return fields.Record{
		Key:          coerceString(m["key"]),
		Value:        coerceString(m["value"]),
		Kind:         constants.Kind(coerceString(m["type"])),
		Page:         coerceInt(m["page"], 0),
		Method:       coerceString(m["method"]),
		SampleID:     coerceString(m["sample_id"]),
		AnalysisName: coerceString(m["analysis_name"]),
		CheckboxType: coerceString(m["checkbox_type"]),
	}
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceInt(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return def
}

func appendStrings(dst []string, v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return dst
	}
	for _, el := range arr {
		if s := coerceString(el); s != "" {
			dst = append(dst, s)
		}
	}
	return dst
}
