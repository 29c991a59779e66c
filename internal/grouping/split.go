package grouping

import (
	"regexp"
	"strings"
)

var (
	reLetterDigit = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)
	reNumberUnit  = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([A-Za-zµ%][A-Za-z0-9µ%/]*)$`)
)

// splitPaired redistributes compound values across paired slots after the
// primary assignment pass: a matrix cell like "DW G" or "B2" feeds the
// comp/grab slot, and a result like "0.5 mg/L" feeds the units slot. The
// split only fires when the paired slot is still empty.
func (r *Row) splitPaired() {
	if r.filled(SlotMatrix) && !r.filled(SlotCompGrab) {
		if first, second, ok := splitTwoPart(r.Matrix); ok {
			r.Matrix = first
			r.CompGrab = second
		}
	}
	if r.filled(SlotChlorideResult) && !r.filled(SlotChlorideUnits) {
		if m := reNumberUnit.FindStringSubmatch(strings.TrimSpace(r.ChlorideResult)); m != nil {
			r.ChlorideResult = m[1]
			r.ChlorideUnits = m[2]
		}
	}
}

// splitTwoPart breaks a value into its two halves when it is either two
// whitespace-separated tokens or a letter/digit run like "B2".
func splitTwoPart(v string) (string, string, bool) {
	parts := strings.Fields(v)
	if len(parts) == 2 {
		return parts[0], parts[1], true
	}
	if m := reLetterDigit.FindStringSubmatch(strings.TrimSpace(v)); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}
