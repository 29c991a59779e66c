package recovery

import "log/slog"

// Stage names the repair strategy that produced a recovered envelope.
type Stage string

const (
	StageDirect     Stage = "direct"
	StageStructural Stage = "structural_repair"
	StageTruncation Stage = "truncation_repair"
	StagePrefix     Stage = "prefix_search"
	StageArray      Stage = "array_extract"
	StageElements   Stage = "element_salvage"
	StageEmergency  Stage = "emergency_salvage"
	StageNone       Stage = "none"
)

// Cascade applies increasingly aggressive repair strategies to a raw
// generator response until one yields a valid envelope. Every stage is a
// pure function of its input; an exhausted cascade is a normal outcome, not
// an error.
type Cascade struct {
	logger *slog.Logger
}

func NewCascade(logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{logger: logger}
}

// Recover returns the largest envelope any stage can extract from raw, and
// the stage that produced it. StageNone with an empty envelope means nothing
// was recoverable.
func (c *Cascade) Recover(raw string) (Envelope, Stage) {
	s := Strip(raw)

	if env, err := ParseEnvelope([]byte(s)); err == nil {
		return env, StageDirect
	}

	type attempt struct {
		stage Stage
		run   func(string) (Envelope, bool)
	}
	attempts := []attempt{
		{StageStructural, repairStructural},
		{StageTruncation, repairTruncated},
		{StagePrefix, searchPrefixes},
		{StageArray, extractArray},
		{StageElements, salvageElements},
	}

	for _, a := range attempts {
		if env, ok := a.run(s); ok {
			c.logger.Info("recovery.cascade.ok",
				"stage", string(a.stage),
				"records", len(env.ExtractedFields),
				"input_bytes", len(raw),
			)
			return env, a.stage
		}
		c.logger.Debug("recovery.cascade.miss", "stage", string(a.stage))
	}

	// last resort scans the unstripped text: fencing or prose may have
	// swallowed the span the other stages looked at
	if env, ok := salvageEmergency(raw); ok {
		c.logger.Warn("recovery.cascade.emergency",
			"records", len(env.ExtractedFields),
			"input_bytes", len(raw),
		)
		return env, StageEmergency
	}

	c.logger.Warn("recovery.cascade.exhausted", "input_bytes", len(raw))
	return EmptyEnvelope(), StageNone
}
