// Package pipeline runs the end-to-end extraction: one vision call per page,
// recovery of each raw response, then merge, normalization, and grouping
// into a single Document.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/labforms/coc-extractor/constants"
	"github.com/labforms/coc-extractor/internal/common"
	"github.com/labforms/coc-extractor/internal/fields"
	"github.com/labforms/coc-extractor/internal/grouping"
	"github.com/labforms/coc-extractor/internal/llm"
	"github.com/labforms/coc-extractor/internal/recovery"
)

// Unit is one processing unit: the raw generator output for one page.
type Unit struct {
	Page int
	Raw  string
}

// Processor coordinates generation, recovery, and grouping.
type Processor struct {
	logger  *slog.Logger
	gen     llm.TextGenerator
	cascade *recovery.Cascade
	engine  *grouping.Engine
	filter  fields.FilterConfig
	workers int
}

func NewProcessor(logger *slog.Logger, gen llm.TextGenerator, cfg common.PipelineConfig) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		logger:  logger,
		gen:     gen,
		cascade: recovery.NewCascade(logger),
		engine:  grouping.NewEngine(logger),
		filter:  fields.FilterConfig{ConfidenceFloor: cfg.ConfidenceFloor},
		workers: workers,
	}
}

// Extract sends every page to the generator concurrently (bounded by the
// worker count), then assembles the responses in page order. A failed page
// yields an empty unit rather than failing the request; the document just
// carries fewer records.
func (p *Processor) Extract(ctx context.Context, pages []llm.PageImage) (*Document, error) {
	units := make([]Unit, len(pages))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	prompt := llm.BuildExtractionPrompt()
	for i, page := range pages {
		wg.Add(1)
		go func(i int, page llm.PageImage) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			text, err := p.gen.GenerateText(ctx, llm.GenerateRequest{Prompt: prompt, Image: page})
			if err != nil {
				p.logger.Error("pipeline.generate.failed", "page", page.Page, "error", err)
			}
			units[i] = Unit{Page: page.Page, Raw: text}
		}(i, page)
	}
	wg.Wait()

	return p.Assemble(units)
}

// Assemble recovers every unit on the bounded worker pool, then merges the
// record streams and inventories in unit order and builds the final document.
// It fails only when no unit yields a single record; per-unit recovery misses
// are ordinary and logged.
func (p *Processor) Assemble(units []Unit) (*Document, error) {
	type outcome struct {
		env   recovery.Envelope
		stage recovery.Stage
	}
	outcomes := make([]outcome, len(units))
	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup
	for i, unit := range units {
		if unit.Raw == "" {
			continue
		}
		wg.Add(1)
		go func(i int, unit Unit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			env, stage := p.cascade.Recover(unit.Raw)
			outcomes[i] = outcome{env: env, stage: stage}
		}(i, unit)
	}
	wg.Wait()

	// The merge stays sequential: inventory order is first-seen order, and
	// sample attribution tracks a cursor across the record stream.
	var merged []fields.Record
	inv := newInventory()
	for i, unit := range units {
		if unit.Raw == "" {
			continue
		}
		env, stage := outcomes[i].env, outcomes[i].stage
		if stage == recovery.StageNone {
			p.logger.Error("pipeline.recover.miss", "page", unit.Page, "raw_len", len(unit.Raw))
			continue
		}
		p.logger.Info("pipeline.recover.ok",
			"page", unit.Page,
			"stage", stage,
			"records", len(env.ExtractedFields),
		)
		merged = append(merged, p.mergeUnit(unit, env, inv)...)
	}

	if len(merged) == 0 {
		return nil, common.ErrNoRecords
	}

	cleaned := fields.Clean(merged, p.filter, p.logger)

	var general, sampleData []fields.Record
	for _, rec := range cleaned {
		if isSampleRelated(rec) {
			sampleData = append(sampleData, rec)
		} else {
			general = append(general, rec)
		}
	}

	doc := &Document{
		ExtractedFields:    cleaned,
		GeneralInformation: general,
		SampleData:         p.engine.Rows(sampleData, inv.sampleIDs, inv.bySample),
		Checkboxes:         grouping.Categorize(cleaned),
		SampleIDs:          inv.sampleIDs,
		AnalysisRequest:    inv.analyses,
		SampleAnalysisMap:  inv.bySample,
	}

	p.logger.Info("pipeline.assemble.ok",
		"units", len(units),
		"fields", len(cleaned),
		"general", len(general),
		"rows", len(doc.SampleData),
		"samples", len(doc.SampleIDs),
		"analyses", len(doc.AnalysisRequest),
	)
	return doc, nil
}

// mergeUnit stamps unit provenance onto each record and harvests the
// sample/analysis inventories from both the records and the envelope's own
// mapping section.
func (p *Processor) mergeUnit(unit Unit, env recovery.Envelope, inv *inventory) []fields.Record {
	out := make([]fields.Record, 0, len(env.ExtractedFields))
	for _, rec := range env.ExtractedFields {
		rec.Page = unit.Page
		rec.Method = fields.MethodAIVision

		switch rec.Kind {
		case constants.KindAnalysisCheckbox:
			inv.mapAnalysis(rec.SampleID, rec.AnalysisName, constants.NormalizeCheckbox(rec.Value))
		case constants.KindSampleField:
			sid := rec.SampleID
			if sid == "" && constants.IsSampleIDKey(rec.Key) {
				sid = rec.Value
			}
			inv.addSample(sid)
		}
		out = append(out, rec)
	}

	for _, sid := range env.Mapping.SampleIDs {
		inv.addSample(sid)
	}
	for _, sid := range env.SampleIDs {
		inv.addSample(sid)
	}
	for _, an := range env.Mapping.AnalysisRequest {
		inv.addAnalysis(an)
	}
	for _, an := range env.AnalysisRequest {
		inv.addAnalysis(an)
	}
	sids := make([]string, 0, len(env.Mapping.SampleAnalysisMap))
	for sid := range env.Mapping.SampleAnalysisMap {
		sids = append(sids, sid)
	}
	sort.Strings(sids)
	for _, sid := range sids {
		m := env.Mapping.SampleAnalysisMap[sid]
		ans := make([]string, 0, len(m))
		for an := range m {
			ans = append(ans, an)
		}
		sort.Strings(ans)
		for _, an := range ans {
			inv.mapAnalysis(sid, an, m[an])
		}
	}
	return out
}

// isSampleRelated decides which side of the general/sample split a record
// lands on. Kind wins; otherwise vocabulary and sample linkage.
func isSampleRelated(rec fields.Record) bool {
	return rec.Kind.IsSampleScoped() ||
		constants.IsSampleKeyword(rec.Key) ||
		rec.SampleID != "" ||
		rec.AnalysisName != ""
}
