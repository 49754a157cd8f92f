package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brodheadw/oreacle-bot/internal/cache"
	"github.com/brodheadw/oreacle-bot/internal/decision"
	"github.com/brodheadw/oreacle-bot/internal/extract"
	"github.com/brodheadw/oreacle-bot/internal/ladder"
	"github.com/brodheadw/oreacle-bot/internal/llm"
	"github.com/brodheadw/oreacle-bot/internal/model"
	"github.com/brodheadw/oreacle-bot/internal/phrasebook"
	"github.com/brodheadw/oreacle-bot/internal/prefilter"
	"github.com/brodheadw/oreacle-bot/internal/source"
	"github.com/brodheadw/oreacle-bot/internal/worker"
)

// Pipeline runs raw items through prefilter, extraction and the decision
// gate, and checks market ladders for monotonicity
type Pipeline struct {
	phrasebook *phrasebook.Phrasebook
	gate       *decision.Gate
	extractor  *llm.Extractor
	cache      *cache.ExtractionCache // nil when caching is disabled
	sources    *source.Classifier
	checker    *ladder.Checker
	reporter   ladder.Reporter
	log        logrus.FieldLogger
	config     *model.Config
}

// Options overrides the collaborators NewPipeline would otherwise build
// from configuration
type Options struct {
	Phrasebook *phrasebook.Phrasebook
	Extractor  *llm.Extractor
	Cache      *cache.ExtractionCache
	Logger     logrus.FieldLogger
}

// NewPipeline creates a pipeline from cfg. The phrasebook is loaded and the
// extraction provider is constructed here, so configuration errors surface
// before any item runs.
func NewPipeline(cfg *model.Config, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pb := phrasebook.Default()
	if cfg.Phrasebook.Path != "" {
		loaded, err := phrasebook.Load(cfg.Phrasebook.Path)
		if err != nil {
			return nil, fmt.Errorf("load phrasebook: %w", err)
		}
		pb = loaded
	}

	llmConfig := llm.ConfigFromModel(cfg.LLM)
	if l, ok := log.(*logrus.Logger); ok {
		llmConfig.Logger = l
	}
	extractor, err := llm.NewExtractor(llmConfig, pb)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}

	var xc *cache.ExtractionCache
	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		xc = cache.NewExtractionCache(store, cfg.Cache.DiskTTL)
	}

	return New(cfg, Options{
		Phrasebook: pb,
		Extractor:  extractor,
		Cache:      xc,
		Logger:     log,
	}), nil
}

// New assembles a pipeline from explicit collaborators
func New(cfg *model.Config, opts Options) *Pipeline {
	pb := opts.Phrasebook
	if pb == nil {
		pb = phrasebook.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Pipeline{
		phrasebook: pb,
		gate:       decision.NewGate(cfg.Decision.MinConfidence, decision.DefaultAllowList()),
		extractor:  opts.Extractor,
		cache:      opts.Cache,
		sources:    source.NewClassifier(&cfg.Sources),
		checker:    ladder.NewChecker(cfg.Ladder.Tolerance),
		reporter:   ladder.Reporter{IncludeFooter: cfg.Output.IncludeFooter},
		log:        log,
		config:     cfg,
	}
}

// Phrasebook returns the phrasebook used for prefiltering and prompts
func (p *Pipeline) Phrasebook() *phrasebook.Phrasebook {
	return p.phrasebook
}

// Extractor returns the configured extractor, or nil
func (p *Pipeline) Extractor() *llm.Extractor {
	return p.extractor
}

// Prefilter evaluates relevance of free text
func (p *Pipeline) Prefilter(text string) model.PrefilterResult {
	return prefilter.Evaluate(text, p.phrasebook)
}

// Evaluate runs one item through the pipeline. Only an invalid item returns
// an error; extraction and validation failures are recorded on the outcome
// with StageFailed.
func (p *Pipeline) Evaluate(ctx context.Context, item model.RawItem) (*model.ItemOutcome, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	log := p.log.WithFields(logrus.Fields{"source": item.Source, "item_id": item.ItemID})
	outcome := &model.ItemOutcome{
		Item:   item,
		Action: model.Action{Kind: model.ActionNone},
	}
	if item.URL != "" {
		outcome.SourceTier = p.sources.Classify(item.URL)
	}

	text, err := itemText(item)
	if err != nil {
		return p.fail(log, outcome, fmt.Errorf("parse body: %w", err)), nil
	}

	outcome.Prefilter = p.Prefilter(text)
	if !outcome.Prefilter.Passed {
		outcome.Stage = model.StageFiltered
		log.Debug("Item filtered")
		return outcome, nil
	}

	x, hit, err := p.extract(ctx, item, text)
	if err != nil {
		return p.fail(log, outcome, err), nil
	}
	outcome.Extraction = x
	outcome.CacheHit = hit

	d, action, err := p.Decide(x)
	if err != nil {
		return p.fail(log, outcome, err), nil
	}

	outcome.Stage = model.StageDecided
	outcome.Verdict = d.Verdict
	outcome.FailedAffirmative = d.FailedAffirmative
	outcome.FailedNegative = d.FailedNegative
	outcome.Action = action

	log.WithFields(logrus.Fields{
		"verdict":     d.Verdict,
		"label":       x.ProposedLabel,
		"confidence":  x.Confidence,
		"cache_hit":   hit,
		"source_tier": outcome.SourceTier,
	}).Info("Item decided")

	return outcome, nil
}

// Decide gates an extraction and routes the resulting action to the target market
func (p *Pipeline) Decide(x *model.Extraction) (decision.Decision, model.Action, error) {
	d, err := p.gate.Decide(x)
	if err != nil {
		return decision.Decision{}, model.Action{}, err
	}

	action := model.Action{Kind: model.ActionNone}
	if d.Verdict.Actionable() {
		if p.config.Target.MarketID == "" {
			p.log.WithField("verdict", d.Verdict).Warn("No target market configured, not routing comment")
		} else {
			action = model.Action{
				Kind:       model.ActionComment,
				MarketID:   p.config.Target.MarketID,
				MarketSlug: p.config.Target.MarketSlug,
				Text:       VerdictComment(x, d.Verdict),
			}
		}
	}
	return d, action, nil
}

func (p *Pipeline) extract(ctx context.Context, item model.RawItem, text string) (*model.Extraction, bool, error) {
	if p.cache != nil {
		if x, ok := p.cache.Get(item.URL, text); ok {
			return x, true, nil
		}
	}

	if p.extractor == nil || !p.extractor.IsEnabled() {
		return nil, false, llm.ErrDisabled
	}

	resp, err := p.extractor.Extract(ctx, llm.ExtractRequest{
		SourceText: text,
		SourceURL:  item.URL,
	})
	if err != nil {
		return nil, false, fmt.Errorf("extract: %w", err)
	}

	if p.cache != nil {
		if err := p.cache.Put(item.URL, text, resp.Extraction); err != nil {
			p.log.WithError(err).Warn("Failed to cache extraction")
		}
	}
	return resp.Extraction, false, nil
}

func (p *Pipeline) fail(log logrus.FieldLogger, outcome *model.ItemOutcome, err error) *model.ItemOutcome {
	outcome.Stage = model.StageFailed
	outcome.Error = err.Error()

	entry := log.WithError(err)
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		entry = entry.WithField("field", vErr.Field)
	}
	entry.Warn("Item failed")
	return outcome
}

// itemText is the title followed by the visible body text
func itemText(item model.RawItem) (string, error) {
	if strings.TrimSpace(item.Body) == "" {
		return item.Title, nil
	}

	doc, err := extract.Parse(item.Body, item.URL)
	if err != nil {
		return "", err
	}

	parts := []string{item.Title}
	if doc.Title != "" && doc.Title != item.Title {
		parts = append(parts, doc.Title)
	}
	parts = append(parts, doc.Text)
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// Run evaluates items concurrently and returns the batch report in input order
func (p *Pipeline) Run(ctx context.Context, items []model.RawItem) *model.BatchReport {
	report := &model.BatchReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	processor := worker.NewBatchProcessor(p, p.config.Concurrency.Workers,
		p.config.RateLimiting.RequestsPerSecond, p.config.RateLimiting.BurstSize)

	p.log.WithFields(logrus.Fields{"run_id": report.RunID, "items": len(items)}).Info("Evaluating batch")

	report.Outcomes = make([]model.ItemOutcome, 0, len(items))
	for _, r := range processor.ProcessItems(ctx, items) {
		if r.Error != nil {
			report.Outcomes = append(report.Outcomes, model.ItemOutcome{
				Item:   r.Item,
				Stage:  model.StageFailed,
				Action: model.Action{Kind: model.ActionNone},
				Error:  r.Error.Error(),
			})
			continue
		}
		report.Outcomes = append(report.Outcomes, *r.Outcome)
	}

	report.FinishedAt = time.Now().UTC()
	report.Summarize()
	return report
}
