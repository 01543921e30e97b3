// Package pipeline runs a video's claims end to end: score, select,
// verify, and assemble the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/reputation"
	"github.com/ppiankov/veracity/internal/score"
	"github.com/ppiankov/veracity/internal/search"
	"github.com/ppiankov/veracity/internal/selector"
	"github.com/ppiankov/veracity/internal/verify"
)

// ReportStore persists finished reports
type ReportStore interface {
	SaveReport(ctx context.Context, report *model.Report) error
}

// Pipeline orchestrates a complete verification run
type Pipeline struct {
	scorer       *score.Scorer
	selector     *selector.Selector
	reputation   reputation.Service
	orchestrator *verify.Orchestrator
	store        ReportStore // Optional run history (nil if disabled)
	config       *model.Config
	now          func() time.Time
}

// New assembles a pipeline from its collaborators
func New(cfg *model.Config, rep reputation.Service, orchestrator *verify.Orchestrator) *Pipeline {
	scorer := score.NewScorer()
	return &Pipeline{
		scorer:       scorer,
		selector:     selector.NewSelector(cfg.Selection, scorer),
		reputation:   rep,
		orchestrator: orchestrator,
		config:       cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// NewPipeline wires the configured LLM provider, search backends and
// reputation table
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	verifier, err := llm.NewVerifier(llm.ConfigFromModel(cfg))
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	if verifier == nil {
		log.Warn("No LLM provider configured; verdicts will reflect evidence only")
	}

	var evidence verify.EvidenceSource
	gatherer := search.NewGathererFromConfig(cfg, cache.New(cfg.Cache))
	if backends := gatherer.Backends(); len(backends) > 0 {
		log.Debug("Search backends: %v", backends)
		evidence = gatherer
	} else {
		log.Warn("No search endpoints or feeds configured; claims will be verified without evidence")
	}

	table, err := reputation.LoadTable(cfg.Reputation.TablePath)
	if err != nil {
		return nil, err
	}
	table.WithCache(cache.NewMemoryCache(cfg.Reputation.CacheTTL, 10*time.Minute), cfg.Reputation.CacheTTL)

	return New(cfg, table, verify.NewOrchestrator(cfg, verifier, evidence)), nil
}

// WithStore persists every finished report
func (p *Pipeline) WithStore(s ReportStore) *Pipeline {
	p.store = s
	return p
}

// Score scores raw claims without selecting or verifying them
func (p *Pipeline) Score(raw []model.RawClaim) []model.Claim {
	return p.scorer.ScoreAll(raw)
}

// Select scores raw claims and selects the ones a run would verify
func (p *Pipeline) Select(raw []model.RawClaim) (selector.Selection, error) {
	return p.selector.Select(p.scorer.ScoreAll(raw))
}

// RunExtractor extracts claims for a video and runs them. Zero extracted
// claims produce a no_claims report, not an error.
func (p *Pipeline) RunExtractor(ctx context.Context, video model.Video, ex extract.Extractor) (*model.Report, error) {
	raw, err := ex.Extract(ctx, video)
	if err != nil && !errors.Is(err, extract.ErrNoClaimsExtracted) {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	return p.Run(ctx, video, raw)
}

// Run verifies a video's raw claims. Only malformed claim records fail
// the run; every per-claim failure is recorded in its result.
func (p *Pipeline) Run(ctx context.Context, video model.Video, raw []model.RawClaim) (*model.Report, error) {
	started := p.now()

	if len(raw) == 0 {
		log.Warn("No claims extracted for %q", video.Title)
		report := &model.Report{
			RunID:      uuid.NewString(),
			Video:      video,
			StartedAt:  started,
			FinishedAt: p.now(),
			Status:     model.StatusNoClaims,
			Reputation: model.NeutralReputation(),
			Results:    []model.VerificationResult{},
			Summary:    map[model.Verdict]int{},
			Failure:    extract.ErrNoClaimsExtracted.Error(),
		}
		p.save(ctx, report)
		return report, nil
	}

	rep, err := p.reputation.Lookup(ctx, video.Channel)
	if err != nil {
		log.Warn("Reputation lookup failed for %q: %v", video.Channel, err)
		rep = model.NeutralReputation()
	}

	claims := p.scorer.ScoreAll(raw)
	selection, err := p.selector.Select(claims)
	if err != nil {
		return nil, fmt.Errorf("select claims: %w", err)
	}
	log.Info("Selected %d of %d claims (%d absence claims added)",
		selection.Meta.FinalCount, selection.Meta.InitialCount, selection.Meta.AbsenceCount)

	bc := verify.NewBatchContext(video, rep)
	results := p.orchestrator.VerifyAll(ctx, bc, selection.Claims)

	report := &model.Report{
		RunID:      bc.RunID,
		Video:      video,
		StartedAt:  started,
		FinishedAt: p.now(),
		Status:     model.StatusOK,
		Reputation: rep,
		Selection:  selection.Meta,
		Results:    results,
		Summary:    model.Summarize(results),
	}
	p.save(ctx, report)
	return report, nil
}

func (p *Pipeline) save(ctx context.Context, report *model.Report) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveReport(ctx, report); err != nil {
		log.Warn("Failed to save run %s: %v", report.RunID, err)
	}
}
