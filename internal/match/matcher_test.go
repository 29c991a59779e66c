package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labforms/coc-extractor/internal/fields"
)

func rec(key, value string) fields.Record {
	return fields.Record{Key: key, Value: value}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Client Name", "Client Name", 1.0},
		{"Client Name", "client_name", 1.0},
		{"client-name", "CLIENT NAME", 1.0},
		{"Sample Collected Date", "date_collected_sample", 1.0}, // token order irrelevant
		{"Client Name", "Client Address", 1.0 / 3.0},
		{"Client Name", "Report Date", 0.0},
		{"", "Client Name", 0.0},
		{"Client Name", "", 0.0},
		{"Sampled By", "sampled_by_name", 2.0 / 3.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Client Name", "client_name_here"},
		{"Collected Date", "date"},
		{"PO Number", "project number"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), 1e-9)
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher()

	refs := []fields.Record{
		rec("Client Name", ""),
		rec("Report Date", ""),
		rec("Totally Unrelated", ""),
	}
	candidates := []fields.Record{
		rec("client_name", "Acme Labs"),
		rec("report date", "01/05/2024"),
	}

	results := m.Match(refs, candidates)
	require.Len(t, results, 3)

	assert.True(t, results[0].Matched)
	require.NotNil(t, results[0].Candidate)
	assert.Equal(t, "Acme Labs", results[0].Candidate.Value)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	assert.True(t, results[1].Matched)
	assert.Equal(t, "01/05/2024", results[1].Candidate.Value)

	assert.False(t, results[2].Matched)
	assert.Nil(t, results[2].Candidate)
	assert.Zero(t, results[2].Score)
}

func TestMatchCandidateNotConsumed(t *testing.T) {
	m := NewMatcher()

	refs := []fields.Record{rec("Collected Date", ""), rec("Date Collected", "")}
	candidates := []fields.Record{rec("collected_date", "01/05/2024")}

	results := m.Match(refs, candidates)
	require.Len(t, results, 2)
	assert.True(t, results[0].Matched)
	assert.True(t, results[1].Matched)
}

func TestMatchThresholdIsExclusive(t *testing.T) {
	// a score exactly at the threshold does not count
	m := Matcher{Threshold: 1.0}
	results := m.Match([]fields.Record{rec("Client Name", "")}, []fields.Record{rec("client_name", "x")})
	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
}

func TestMatchRaisingThresholdNeverAddsMatches(t *testing.T) {
	refs := []fields.Record{rec("Client Name", ""), rec("Project Number", ""), rec("Sampled By", "")}
	candidates := []fields.Record{rec("client", ""), rec("project_number", ""), rec("sampler", "")}

	prev := len(refs) + 1
	for _, th := range []float64{0.2, 0.4, 0.6, 0.8} {
		m := Matcher{Threshold: th}
		matched := 0
		for _, res := range m.Match(refs, candidates) {
			if res.Matched {
				matched++
			}
		}
		assert.LessOrEqual(t, matched, prev, "threshold %v", th)
		prev = matched
	}
}

func TestCompare(t *testing.T) {
	template := []fields.Record{rec("Client Name", ""), rec("Report Date", ""), rec("Obscure Field", "")}
	filled := []fields.Record{rec("client_name", "Acme"), rec("report_date", "01/05/2024")}

	c := Compare(template, filled, NewMatcher())
	assert.Equal(t, 3, c.TemplateCount)
	assert.Equal(t, 2, c.FilledCount)
	assert.Equal(t, 2, c.MatchedCount)
	require.Len(t, c.Mapping, 3)

	out := c.Render()
	assert.Contains(t, out, "Client Name")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "2 of 3 template fields matched")
}
