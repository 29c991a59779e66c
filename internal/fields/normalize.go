package fields

import (
	"log/slog"
	"strings"

	"github.com/labforms/coc-extractor/constants"
)

// Normalize cleans a single record: trims the key, collapses empty and
// placeholder values to the NIL sentinel, and snaps checkbox values to
// checked/unchecked. Records with an empty key are unusable and are
// signalled by ok=false.
func Normalize(rec Record) (Record, bool) {
	rec.Key = strings.TrimSpace(rec.Key)
	if rec.Key == "" {
		return rec, false
	}

	rec.Value = strings.TrimSpace(rec.Value)

	if rec.Kind.IsCheckbox() {
		rec.Value = constants.NormalizeCheckbox(rec.Value)
		return rec, true
	}

	if constants.IsEmptyValue(rec.Value) {
		rec.Value = constants.NIL
	}
	return rec, true
}

// FilterConfig controls the normalization pass.
type FilterConfig struct {
	// ConfidenceFloor drops NIL-valued records whose key shape scores below
	// it. The score itself is filter-only and never leaves this package.
	ConfidenceFloor float64
}

// Clean normalizes a record sequence in order, dropping unusable records
// and NIL-valued records whose confidence falls below the floor.
func Clean(recs []Record, cfg FilterConfig, logger *slog.Logger) []Record {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = DefaultConfidenceFloor
	}

	out := make([]Record, 0, len(recs))
	dropped := 0
	for _, rec := range recs {
		norm, ok := Normalize(rec)
		if !ok {
			dropped++
			continue
		}
		if norm.IsNIL() && !norm.Kind.IsCheckbox() {
			if score := Confidence(norm); score < cfg.ConfidenceFloor {
				dropped++
				continue
			}
		}
		out = append(out, norm)
	}
	if dropped > 0 {
		logger.Debug("fields.clean", "in", len(recs), "out", len(out), "dropped", dropped)
	}
	return out
}
