package grouping

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/fields"
)

// Engine reconciles flat sample-scoped records into canonical rows. It holds
// no state between calls; the fallback table is built per request.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Lookup is the request-scoped fallback table: every record's normalized key
// mapped to its non-NIL values, in record order, irrespective of which
// sample the record belonged to.
type Lookup struct {
	order  []string
	values map[string][]string
}

// NewLookup indexes the full record sequence. The grouping fallback needs
// complete visibility, which is why grouping cannot start until every unit
// has been merged.
func NewLookup(recs []fields.Record) *Lookup {
	l := &Lookup{values: make(map[string][]string)}
	for _, rec := range recs {
		if rec.IsNIL() {
			continue
		}
		key := fields.NormalizedKey(rec.Key)
		if _, seen := l.values[key]; !seen {
			l.order = append(l.order, key)
		}
		l.values[key] = append(l.values[key], rec.Value)
	}
	return l
}

// find returns the first value whose key matches the predicate, scanning
// keys in first-seen order. Because the table spans all samples, a value
// captured for one sample can fill another sample's unset slot when their
// key spellings collide; downstream consumers depend on that behavior, so
// it is preserved rather than guarded.
func (l *Lookup) find(pred Predicate) (string, bool) {
	for _, key := range l.order {
		if !pred.Match(key) {
			continue
		}
		for _, v := range l.values[key] {
			if v != constants.NIL {
				return v, true
			}
		}
	}
	return "", false
}

// Rows builds the canonical row sequence for the known sample IDs, expanded
// per checked analysis. analysisMap is the generator's own sample→analysis
// inventory and may be nil.
func (e *Engine) Rows(recs []fields.Record, sampleIDs []string, analysisMap map[string]map[string]string) []Row {
	groups := e.attribute(recs)
	lookup := NewLookup(recs)

	var out []Row
	for _, sid := range sampleIDs {
		row := NewRow(sid)

		// first pass: records attributed to this sample, in unit order;
		// first match wins, filled slots are never overwritten
		for _, rec := range groups[sid] {
			e.assignBySlotRule(&row, rec)
		}

		// second pass: sample-scoped records that never got attributed
		// anywhere; key spellings are too inconsistent to leave them unused
		for _, rec := range recs {
			if rec.Kind == constants.KindSampleField {
				e.assignBySlotRule(&row, rec)
			}
		}

		row.splitPaired()
		e.fillFromLookup(&row, lookup)

		out = append(out, expandAnalyses(row, checkedAnalyses(sid, recs, analysisMap))...)
	}

	e.logger.Debug("grouping.rows", "samples", len(sampleIDs), "rows", len(out))
	return out
}

// attribute assigns records to samples: an explicit sample link moves the
// cursor, a sample_id-shaped key moves the cursor to its value, and anything
// else sample-scoped rides with the current cursor.
func (e *Engine) attribute(recs []fields.Record) map[string][]fields.Record {
	groups := make(map[string][]fields.Record)
	cursor := ""
	for _, rec := range recs {
		if !rec.Kind.IsSampleScoped() {
			continue
		}
		switch {
		case rec.SampleID != "":
			cursor = rec.SampleID
			groups[cursor] = append(groups[cursor], rec)
		case constants.IsSampleIDKey(rec.Key):
			if !rec.IsNIL() {
				cursor = rec.Value
			}
		case cursor != "":
			groups[cursor] = append(groups[cursor], rec)
		}
	}
	return groups
}

func (e *Engine) assignBySlotRule(row *Row, rec fields.Record) {
	if rec.IsNIL() || rec.Kind == constants.KindAnalysisCheckbox {
		return
	}
	if rule, ok := matchSlot(fields.NormalizedKey(rec.Key)); ok {
		row.assign(rule.Slot, rec.Value)
	}
}

// fillFromLookup is the best-effort global pass for slots nothing claimed.
func (e *Engine) fillFromLookup(row *Row, lookup *Lookup) {
	for _, slot := range slotOrder {
		if row.filled(slot) {
			continue
		}
		for _, rule := range slotRules {
			if rule.Slot != slot {
				continue
			}
			if v, ok := lookup.find(rule.fallback()); ok {
				row.assign(slot, v)
				break
			}
		}
	}
}

// checkedAnalyses collects, in order and without duplicates, the analyses
// marked checked for the sample — from checkbox records first, then from the
// generator's inventory map.
func checkedAnalyses(sampleID string, recs []fields.Record, analysisMap map[string]map[string]string) []string {
	var names []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, rec := range recs {
		if rec.Kind != constants.KindAnalysisCheckbox || rec.SampleID != sampleID {
			continue
		}
		if rec.Value != constants.CheckboxChecked {
			continue
		}
		add(analysisName(rec))
	}

	// map iteration order is random; sort for a deterministic row sequence
	inventory := analysisMap[sampleID]
	invNames := make([]string, 0, len(inventory))
	for name := range inventory {
		invNames = append(invNames, name)
	}
	sort.Strings(invNames)
	for _, name := range invNames {
		if constants.NormalizeCheckbox(inventory[name]) == constants.CheckboxChecked {
			add(name)
		}
	}

	return names
}

// analysisName resolves the analysis label for a checkbox record, falling
// back to the key spellings the generator uses when the explicit field is
// missing ("8260_checkbox", "analysis_8260", "parameter_8260").
func analysisName(rec fields.Record) string {
	if rec.AnalysisName != "" {
		return rec.AnalysisName
	}
	key := fields.NormalizedKey(rec.Key)
	switch {
	case strings.HasSuffix(key, "_checkbox"):
		return strings.ToUpper(strings.TrimSuffix(key, "_checkbox"))
	case strings.HasPrefix(key, "analysis_"):
		return strings.ToUpper(strings.TrimPrefix(key, "analysis_"))
	case strings.HasPrefix(key, "parameter_"):
		return strings.ToUpper(strings.TrimPrefix(key, "parameter_"))
	}
	return ""
}

// expandAnalyses produces one row per checked analysis, identical except for
// the analysis label; a sample with none yields a single row with NIL.
func expandAnalyses(row Row, analyses []string) []Row {
	if len(analyses) == 0 {
		row.AnalysisRequest = constants.NIL
		return []Row{row}
	}
	out := make([]Row, 0, len(analyses))
	for _, name := range analyses {
		r := row
		r.AnalysisRequest = name
		out = append(out, r)
	}
	return out
}
