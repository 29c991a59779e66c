package llm

import "strings"

// BuildExtractionPrompt composes the per-page instruction for the vision
// model. The response contract mirrors the envelope decoded by the recovery
// package, so keep the two in sync when a field is added.
func BuildExtractionPrompt() string {
	parts := []string{
		"Analyze this Chain-of-Custody Analytical Request Document image and extract ALL information in the exact JSON format specified below.",
		"",
		"CRITICAL INSTRUCTIONS:",
		"1. Return ONLY valid JSON - no markdown, no explanations, no extra text",
		"2. Ensure all strings are properly escaped",
		"3. Ensure all arrays and objects are properly closed",
		"4. Do not include trailing commas",
		"5. Keep the response focused and concise",
		"",
		"IMPORTANT REQUIREMENTS:",
		"1. Extract EVERY SINGLE field, value, checkbox, and detail visible in the document",
		`2. For ALL checkboxes (both box-style and bracket-style [ ]), indicate their state as "checked" or "unchecked"`,
		"3. Map which Sample IDs are checked for which Analysis Requests",
		`4. If any field is empty or not filled, write "NIL" as the value`,
		"5. Include all text fields, headers, sample information, analysis checkboxes, and any other visible elements",
		"",
		"RESPOND IN THIS EXACT JSON FORMAT:",
		`{`,
		`    "extracted_fields": [`,
		`        {"key": "field_name", "value": "field_value_or_NIL", "type": "header|field|sample_field|analysis_checkbox|checkbox", "page": 1, "method": "AI Vision"}`,
		`    ],`,
		`    "all_checkboxes": {`,
		`        "hazard_checkboxes": {}, "technical_checkboxes": {}, "administrative_checkboxes": {},`,
		`        "analysis_checkboxes": {}, "data_deliverables_checkboxes": {}, "rush_option_checkboxes": {},`,
		`        "timezone_checkboxes": {}, "reportable_checkboxes": {}, "other_checkboxes": {},`,
		`        "all_checkboxes_summary": {}`,
		`    },`,
		`    "sample_analysis_mapping": {"sample_ids": [], "analysis_request": [], "sample_analysis_map": {}},`,
		`    "sample_ids": [],`,
		`    "analysis_request": []`,
		`}`,
		"",
		`For sample fields, use type "sample_field" and include "sample_id".`,
		`For analysis checkboxes, use type "analysis_checkbox" and include both "sample_id" and "analysis_name".`,
		`For regular checkboxes, use type "checkbox" and include "checkbox_type".`,
	}
	return strings.Join(parts, "\n")
}
