package constants

import "strings"

// NIL is the canonical placeholder for "field present but empty".
// It is distinct from the field being absent altogether.
const NIL = "NIL"

// emptyVocabulary holds the values the upstream generator emits for blank
// fields. Compared case-insensitively after trimming.
var emptyVocabulary = map[string]struct{}{
	"":      {},
	"n/a":   {},
	"-":     {},
	"null":  {},
	"none":  {},
	"nil":   {},
	"empty": {},
}

// IsEmptyValue reports whether v belongs to the empty/placeholder vocabulary.
func IsEmptyValue(v string) bool {
	_, ok := emptyVocabulary[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Checkbox states. Stable values (downstream consumers read these exact strings).
const (
	CheckboxChecked   = "checked"
	CheckboxUnchecked = "unchecked"
)

var checkedVocabulary = map[string]struct{}{
	"checked": {},
	"x":       {},
	"✓":       {},
	"yes":     {},
	"y":       {},
}

// NormalizeCheckbox collapses a raw checkbox value to checked/unchecked.
// Anything outside the checked vocabulary, including the empty vocabulary,
// is unchecked.
func NormalizeCheckbox(v string) string {
	if _, ok := checkedVocabulary[strings.ToLower(strings.TrimSpace(v))]; ok {
		return CheckboxChecked
	}
	return CheckboxUnchecked
}
