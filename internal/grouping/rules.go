package grouping

import "strings"

// Predicate matches a normalized key by prefix, suffix, or exact form.
// Rules evaluate predicates in declaration order; the first slot whose
// predicate matches an unfilled slot wins.
type Predicate struct {
	Prefixes []string
	Suffixes []string
	Exacts   []string
}

// Match reports whether the normalized key satisfies the predicate.
func (p Predicate) Match(key string) bool {
	for _, e := range p.Exacts {
		if key == e {
			return true
		}
	}
	for _, pre := range p.Prefixes {
		if strings.HasPrefix(key, pre) {
			return true
		}
	}
	for _, suf := range p.Suffixes {
		if strings.HasSuffix(key, suf) {
			return true
		}
	}
	return false
}

// SlotRule binds a slot to its key predicate. Fallback widens Primary for
// the global fill pass; a zero Fallback reuses Primary.
type SlotRule struct {
	Slot     Slot
	Primary  Predicate
	Fallback Predicate
}

func (r SlotRule) fallback() Predicate {
	if len(r.Fallback.Prefixes)+len(r.Fallback.Suffixes)+len(r.Fallback.Exacts) > 0 {
		return r.Fallback
	}
	return r.Primary
}

// slotRules is the ordered key-pattern table distilled from the key spellings
// the generator has produced in the field. Order matters: generic date/time
// spellings sit below the explicit start/end forms so they only catch what
// nothing else claimed.
var slotRules = []SlotRule{
	{
		Slot: SlotMatrix,
		Primary: Predicate{
			Prefixes: []string{"matrix_"},
			Suffixes: []string{"_matrix"},
			Exacts:   []string{"matrix"},
		},
	},
	{
		Slot: SlotCompGrab,
		Primary: Predicate{
			Prefixes: []string{"comp_grab_"},
			Suffixes: []string{"_comp_grab"},
			Exacts:   []string{"comp/grab", "comp_grab", "composite_grab"},
		},
	},
	{
		Slot: SlotStartDate,
		Primary: Predicate{
			Prefixes: []string{"collected_date_start_"},
			Suffixes: []string{"_collected_date_start"},
			Exacts:   []string{"composite_start_date", "start_date", "collection_date"},
		},
	},
	{
		Slot: SlotStartTime,
		Primary: Predicate{
			Prefixes: []string{"collected_time_start_"},
			Suffixes: []string{"_collected_time_start"},
			Exacts: []string{
				"composite_start_time", "time_collected_composite_start",
				"start_time", "collection_time",
			},
		},
	},
	{
		Slot: SlotEndDate,
		Primary: Predicate{
			Prefixes: []string{"collected_date_end_", "collected_composite_end_date_"},
			Suffixes: []string{"_collected_date_end", "_collected_or_composite_end_date"},
			Exacts: []string{
				"composite_end_date", "collected_composite_end_date",
				"date_collected_composite_end", "collected_or_composite_end_date",
				"end_date",
			},
		},
	},
	{
		Slot: SlotEndTime,
		Primary: Predicate{
			Prefixes: []string{"collected_time_end_", "collected_composite_end_time_"},
			Suffixes: []string{"_collected_time_end", "_collected_or_composite_end_time"},
			Exacts: []string{
				"composite_end_time", "collected_composite_end_time",
				"time_collected_composite_end", "collected_or_composite_end_time",
				"end_time",
			},
		},
	},
	{
		Slot: SlotContainers,
		Primary: Predicate{
			Prefixes: []string{"number_containers_"},
			Suffixes: []string{"_number_containers", "_number_of_containers"},
			Exacts: []string{
				"#_cont", "#_cont.", "cont", "number_of_containers",
				"num_containers", "containers", "container_count",
				"container_number", "no_containers",
			},
		},
	},
	{
		Slot: SlotChlorideResult,
		Primary: Predicate{
			Prefixes: []string{"residual_chlorine_result_", "residual_chloride_result_"},
			Suffixes: []string{"_residual_chlorine_result", "_residual_chloride_result"},
			Exacts: []string{
				"result", "residual_chlorine_result", "residual_chloride_result",
				"chlorine_result", "chloride_result",
			},
		},
	},
	{
		Slot: SlotChlorideUnits,
		Primary: Predicate{
			Prefixes: []string{"residual_chlorine_units_", "residual_chloride_units_"},
			Suffixes: []string{"_residual_chlorine_units", "_residual_chloride_units"},
			Exacts: []string{
				"units", "residual_chlorine_units", "residual_chloride_units",
				"chlorine_units", "chloride_units",
			},
		},
	},
	// generic date/time catch-alls, last so the explicit forms win
	{
		Slot: SlotEndDate,
		Primary: Predicate{
			Prefixes: []string{"date_"},
			Exacts:   []string{"date"},
		},
	},
	{
		Slot: SlotEndTime,
		Primary: Predicate{
			Prefixes: []string{"time_"},
			Exacts:   []string{"time"},
		},
	},
}

// matchSlot returns the first rule whose predicate accepts the key.
func matchSlot(key string) (SlotRule, bool) {
	for _, rule := range slotRules {
		if rule.Primary.Match(key) {
			return rule, true
		}
	}
	return SlotRule{}, false
}
