package match

import (
	"fmt"
	"strings"

	"github.com/labforms/coc-extractor/internal/fields"
)

// Comparison reports how the fields of a filled document line up against a
// template document.
type Comparison struct {
	TemplateCount int      `json:"template_fields_count"`
	FilledCount   int      `json:"filled_fields_count"`
	MatchedCount  int      `json:"matched_fields_count"`
	Mapping       []Result `json:"field_mapping"`
}

// Compare matches every template field against the filled document's
// fields and tallies the outcome.
func Compare(template, filled []fields.Record, matcher Matcher) Comparison {
	mapping := matcher.Match(template, filled)
	matched := 0
	for _, res := range mapping {
		if res.Matched {
			matched++
		}
	}
	return Comparison{
		TemplateCount: len(template),
		FilledCount:   len(filled),
		MatchedCount:  matched,
		Mapping:       mapping,
	}
}

// Render writes the comparison as a fixed-width text table for CLI output.
func (c Comparison) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-32s %-24s %-24s %-7s %s\n", "KEY", "TEMPLATE", "FILLED", "SCORE", "MATCH")
	fmt.Fprintln(&b, strings.Repeat("-", 96))
	for _, res := range c.Mapping {
		candidate := "not found"
		if res.Candidate != nil {
			candidate = res.Candidate.Value
		}
		fmt.Fprintf(&b, "%-32s %-24s %-24s %-7.2f %v\n",
			clip(res.Reference.Key, 32), clip(res.Reference.Value, 24), clip(candidate, 24),
			res.Score, res.Matched)
	}
	fmt.Fprintf(&b, "\n%d of %d template fields matched (%d filled fields)\n",
		c.MatchedCount, c.TemplateCount, c.FilledCount)
	return b.String()
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
