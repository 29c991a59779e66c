package fields

import (
	"regexp"
	"strings"

	"github.com/labforms/coc-extractor/constants"
)

// DefaultConfidenceFloor is the score below which a NIL-valued record is
// judged noise and dropped.
const DefaultConfidenceFloor = 0.30

var (
	reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reDate  = regexp.MustCompile(`^(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2})$`)
	reTime  = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?\s*([AaPp][Mm])?$`)
	reCode  = regexp.MustCompile(`^[A-Za-z]{1,4}-?\d{1,5}$`)
	reDigit = regexp.MustCompile(`\d`)
)

// formVocabulary are key fragments that mark a field as a known form label
// even when its value is blank. Blank fields with recognizable labels are
// real form fields; blank fields with garbage labels are extraction noise.
var formVocabulary = []string{
	"client", "address", "email", "phone", "fax", "po", "project", "report",
	"date", "time", "order", "relinquished", "received", "initials", "page",
	"year", "revision", "title", "form", "signature", "company",
}

// Confidence scores how plausible a record is, from its key and value shape.
// The score is transient: it gates the NIL-record filter and is never part
// of the persisted output.
func Confidence(rec Record) float64 {
	if rec.Kind.IsCheckbox() {
		return 0.9
	}

	key := NormalizedKey(rec.Key)

	if rec.IsNIL() {
		return nilKeyScore(key)
	}

	value := strings.TrimSpace(rec.Value)
	switch {
	case strings.Contains(key, "email"):
		if reEmail.MatchString(value) {
			return 0.95
		}
		return 0.2
	case strings.Contains(key, "phone") || strings.Contains(key, "fax"):
		if digitCount(value) >= 10 {
			return 0.95
		}
		return 0.3
	case strings.Contains(key, "date"):
		if reDate.MatchString(value) {
			return 0.9
		}
		return 0.4
	case strings.Contains(key, "time"):
		if reTime.MatchString(value) {
			return 0.9
		}
		return 0.4
	case strings.Contains(key, "matrix") || strings.Contains(key, "source"):
		if _, ok := constants.CanonicalizeMatrix(value); ok {
			return 0.9
		}
		return 0.5
	case strings.Contains(key, "grab") || strings.Contains(key, "comp"):
		if constants.IsCollectionMethod(value) {
			return 0.9
		}
		return 0.5
	}
	if reCode.MatchString(value) {
		return 0.8
	}
	return 0.5
}

func nilKeyScore(key string) float64 {
	if constants.IsSampleKeyword(key) || constants.IsSampleIDKey(key) {
		return 0.6
	}
	for _, w := range formVocabulary {
		if strings.Contains(key, w) {
			return 0.6
		}
	}
	// a plausible label still has a few letters in it
	if len(key) >= 3 && strings.IndexFunc(key, isLetter) >= 0 {
		return 0.4
	}
	return 0.1
}

func digitCount(s string) int {
	return len(reDigit.FindAllString(s, -1))
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
