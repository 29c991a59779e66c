package recovery

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/labforms/coc-extractor/internal/fields"
)

var (
	reArrayField = regexp.MustCompile(`"extracted_fields"\s*:\s*\[`)
	reFieldShape = regexp.MustCompile(`(?i)\{\s*"key"\s*:\s*"[^"]*"\s*,\s*"value"\s*:\s*"[^"]*"\s*,\s*"type"\s*:\s*"[^"]*"`)
)

// findArraySpan locates the extracted_fields array textually. It returns the
// index of the opening bracket and, when the array closes properly, the index
// one past the closing bracket. closed=false means the array runs off the end
// of the text.
func findArraySpan(s string) (start, end int, found, closed bool) {
	loc := reArrayField.FindStringIndex(s)
	if loc == nil {
		return 0, 0, false, false
	}
	start = loc[1] - 1 // opening bracket

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return start, i + 1, true, true
			}
		}
	}
	return start, len(s), true, false
}

// extractArray pulls the complete extracted_fields array out of the text and
// wraps it in a minimal envelope with empty defaults for the other sections.
func extractArray(s string) (Envelope, bool) {
	start, end, found, closed := findArraySpan(s)
	if !found || !closed {
		return Envelope{}, false
	}
	env, err := ParseEnvelope([]byte(wrapFieldsArray(s[start:end])))
	return env, err == nil
}

// salvageElements walks the (possibly unterminated) array span accumulating
// depth-balanced {...} fragments. A fragment survives only if it parses on
// its own and carries the "key" discriminator; the first fragment that fails
// to close before the text runs out is dropped along with everything after
// it.
func salvageElements(s string) (Envelope, bool) {
	start, end, found, _ := findArraySpan(s)
	if !found {
		return Envelope{}, false
	}

	var kept []json.RawMessage
	depth := 0
	inString := false
	escaped := false
	fragStart := -1

	for i := start; i < end; i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				fragStart = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && fragStart >= 0 {
				frag := s[fragStart : i+1]
				var m map[string]any
				if err := json.Unmarshal([]byte(frag), &m); err == nil {
					if _, hasKey := m["key"]; hasKey {
						kept = append(kept, json.RawMessage(frag))
					}
				}
				fragStart = -1
			}
		}
	}

	if len(kept) == 0 {
		return Envelope{}, false
	}
	arr, err := json.Marshal(kept)
	if err != nil {
		return Envelope{}, false
	}
	env, err := ParseEnvelope([]byte(wrapFieldsArray(string(arr))))
	return env, err == nil
}

// salvageEmergency regex-scans the entire raw text, ignoring position and
// nesting, for substrings shaped like a minimal record. Each match is parsed
// independently; missing auxiliary fields get defaults.
func salvageEmergency(raw string) (Envelope, bool) {
	matches := reFieldShape.FindAllString(raw, -1)
	if len(matches) == 0 {
		return Envelope{}, false
	}

	env := EmptyEnvelope()
	for _, m := range matches {
		var obj map[string]any
		if err := json.Unmarshal([]byte(m+"}"), &obj); err != nil {
			continue
		}
		rec := recordFromMap(obj)
		if rec.Key == "" || rec.Value == "" {
			continue
		}
		if rec.Page == 0 {
			rec.Page = 1
		}
		if rec.Method == "" {
			rec.Method = fields.MethodAIVision
		}
		env.ExtractedFields = append(env.ExtractedFields, rec)
	}

	return env, len(env.ExtractedFields) > 0
}

func wrapFieldsArray(arr string) string {
	var b strings.Builder
	b.WriteString(`{"extracted_fields": `)
	b.WriteString(arr)
	b.WriteString(`, "all_checkboxes": {"all_checkboxes_summary": {}}, `)
	b.WriteString(`"sample_analysis_mapping": {"sample_ids": [], "analysis_request": [], "sample_analysis_map": {}}, `)
	b.WriteString(`"sample_ids": [], "analysis_request": []}`)
	return b.String()
}
