// Package verify sequences per-claim verification: evidence gathering,
// grouping, one timed LLM call, and the probability engine, under a
// consecutive-timeout circuit breaker and a fixed inter-call delay.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/probability"
	"github.com/ppiankov/veracity/internal/reputation"
	"github.com/ppiankov/veracity/internal/util"
	"github.com/ppiankov/veracity/internal/validate"
	"github.com/ppiankov/veracity/internal/worker"
)

// ErrCircuitOpen marks claims skipped because the breaker opened earlier in the run
var ErrCircuitOpen = errors.New("rate-limit circuit open")

// Bounded LLM workers, abandoned calls included
const llmWorkers = 2

// State is a claim's position in the verification state machine
type State string

const (
	StatePending          State = "PENDING"
	StateEvidenceGathered State = "EVIDENCE_GATHERED"
	StateLLMInvoked       State = "LLM_INVOKED"
	StateResult           State = "RESULT"
	StateTimeout          State = "TIMEOUT"
	StateError            State = "ERROR"
)

// EvidenceSource gathers raw evidence for a claim. Failures surface as
// an empty result, never as an error.
type EvidenceSource interface {
	Gather(ctx context.Context, claim model.Claim, video model.Video) []model.RawEvidence
}

// SleepFunc waits between LLM calls
type SleepFunc func(ctx context.Context, d time.Duration)

// BatchContext is the mutable state of one verification run. It is owned
// by a single VerifyAll call and never shared between runs.
type BatchContext struct {
	RunID       string
	Video       model.Video
	Reputation  model.ChannelReputation
	Credibility float64

	consecutiveFailures int
	circuitOpen         bool
	invocations         int
	lastTimedOut        bool
}

// NewBatchContext starts a run for one video
func NewBatchContext(video model.Video, rep model.ChannelReputation) *BatchContext {
	return &BatchContext{
		RunID:       uuid.NewString(),
		Video:       video,
		Reputation:  rep,
		Credibility: reputation.Multiplier(rep),
	}
}

// CircuitOpen reports whether remaining claims are being short-circuited
func (bc *BatchContext) CircuitOpen() bool {
	return bc.circuitOpen
}

// ConsecutiveFailures returns the current breaker count
func (bc *BatchContext) ConsecutiveFailures() int {
	return bc.consecutiveFailures
}

// Orchestrator verifies selected claims one at a time
type Orchestrator struct {
	verifier  llm.Verifier
	evidence  EvidenceSource
	grouper   *validate.Grouper
	engine    *probability.Engine
	runner    *worker.TimedRunner
	cfg       model.VerificationConfig
	llmModel  string
	maxTokens int
	sleep     SleepFunc
}

// NewOrchestrator creates an orchestrator. A nil verifier scores claims
// from evidence alone; a nil evidence source verifies without evidence.
func NewOrchestrator(cfg *model.Config, verifier llm.Verifier, evidence EvidenceSource) *Orchestrator {
	vc := cfg.Verification
	defaults := model.DefaultConfig().Verification
	if vc.LLMTimeout <= 0 {
		vc.LLMTimeout = defaults.LLMTimeout
	}
	if vc.BreakerThreshold <= 0 {
		vc.BreakerThreshold = defaults.BreakerThreshold
	}

	return &Orchestrator{
		verifier:  verifier,
		evidence:  evidence,
		grouper:   validate.NewGrouper(&cfg.Grouping),
		engine:    probability.NewEngine(),
		runner:    worker.NewTimedRunner(llmWorkers),
		cfg:       vc,
		llmModel:  cfg.LLM.Model,
		maxTokens: cfg.LLM.MaxTokens,
		sleep:     sleepContext,
	}
}

// WithSleep replaces the inter-call sleep
func (o *Orchestrator) WithSleep(fn SleepFunc) *Orchestrator {
	o.sleep = fn
	return o
}

// VerifyAll verifies claims in order and returns exactly one result per
// claim, in the same order
func (o *Orchestrator) VerifyAll(ctx context.Context, bc *BatchContext, claims []model.Claim) []model.VerificationResult {
	results := make([]model.VerificationResult, 0, len(claims))
	for i, claim := range claims {
		results = append(results, o.VerifyClaim(ctx, bc, i, len(claims), claim))
	}
	log.Info("Run %s: verified %d claims (circuit open: %v)", bc.RunID, len(results), bc.circuitOpen)
	return results
}

// VerifyClaim runs one claim through the state machine. It never panics
// and always returns a result.
func (o *Orchestrator) VerifyClaim(ctx context.Context, bc *BatchContext, index, total int, claim model.Claim) (result model.VerificationResult) {
	label := fmt.Sprintf("claim %d/%d", index+1, total)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Run %s %s: recovered panic: %v", bc.RunID, label, r)
			result = errorResult(claim, fmt.Errorf("panic: %v", r))
		}
	}()

	if bc.circuitOpen {
		log.Warn("Run %s %s: %v, skipping LLM call", bc.RunID, label, ErrCircuitOpen)
		return circuitOpenResult(claim, bc.consecutiveFailures)
	}

	o.logState(bc, label, StatePending, util.Truncate(claim.Text, 80))

	var raw []model.RawEvidence
	if o.evidence != nil {
		raw = o.evidence.Gather(ctx, claim, bc.Video)
	}
	grouped := o.grouper.Group(raw, validate.GroupContext{Claim: claim.Text, Video: bc.Video})
	o.logState(bc, label, StateEvidenceGathered, fmt.Sprintf("%d items", grouped.Count()))

	if o.verifier == nil {
		return o.adjust(bc, claim, grouped, nil)
	}

	o.throttle(ctx, bc)

	req := llm.VerifyRequest{
		ClaimText:  claim.Text,
		VideoTitle: bc.Video.Title,
		VideoURL:   bc.Video.URL,
		Digest:     llm.BuildDigest(grouped),
		Model:      o.llmModel,
		MaxTokens:  o.maxTokens,
	}

	o.logState(bc, label, StateLLMInvoked, o.verifier.Name())
	bc.invocations++
	resp, err := worker.Run(ctx, o.runner, o.cfg.LLMTimeout, func(ctx context.Context) (*llm.VerifyResponse, error) {
		return o.verifier.Verify(ctx, req)
	})

	switch {
	case isTimeout(err):
		bc.lastTimedOut = true
		o.recordFailure(bc, label)
		o.logState(bc, label, StateTimeout, fmt.Sprintf("after %s", o.cfg.LLMTimeout))
		return timeoutResult(claim, o.cfg.LLMTimeout)

	case err != nil:
		bc.lastTimedOut = false
		if llm.IsRateLimit(err) {
			o.recordFailure(bc, label)
		} else {
			bc.consecutiveFailures = 0
		}
		o.logState(bc, label, StateError, err.Error())
		return errorResult(claim, err)

	case resp == nil:
		bc.lastTimedOut = false
		bc.consecutiveFailures = 0
		o.logState(bc, label, StateError, "empty response")
		return errorResult(claim, errors.New("verifier returned no response"))
	}

	bc.lastTimedOut = false
	bc.consecutiveFailures = 0
	return o.adjust(bc, claim, grouped, resp)
}

// adjust runs the probability engine over the draft, or over the default
// uncertain draft when no model output is available. Output that could not
// be parsed, and a missing model with no evidence, carry no signal and
// resolve to UNCERTAIN without the engine.
func (o *Orchestrator) adjust(bc *BatchContext, claim model.Claim, grouped model.GroupedEvidence, resp *llm.VerifyResponse) model.VerificationResult {
	draft := model.DefaultDraftDistribution()
	explanation := "No verification model configured; the distribution reflects evidence only."
	var sources []string
	if resp != nil {
		draft = resp.Draft
		explanation = resp.Explanation
		sources = resp.SourceURLs
	}

	if (resp != nil && resp.Malformed) || (resp == nil && grouped.Count() == 0) {
		var rawOutput string
		if resp != nil {
			rawOutput = resp.Raw
		}
		log.Info("Run %s: %s -> %s (no usable signal)", bc.RunID, util.Truncate(claim.Text, 60), model.VerdictUncertain)
		return model.VerificationResult{
			Claim:        claim,
			Verdict:      model.VerdictUncertain,
			Explanation:  explanation,
			Distribution: model.UncertainDistribution(),
			Draft:        &draft,
			Sources:      sources,
			Evidence:     grouped.All(),
			Outcome:      model.OutcomeResult,
			RawOutput:    rawOutput,
		}
	}

	out := o.engine.Adjust(probability.Input{
		Draft:       draft,
		Evidence:    grouped,
		Reputation:  bc.Reputation,
		Credibility: bc.Credibility,
	})

	log.Info("Run %s: %s -> %s (TRUE %.0f%% / FALSE %.0f%% / UNCERTAIN %.0f%%)",
		bc.RunID, util.Truncate(claim.Text, 60), out.Verdict,
		out.Distribution.True*100, out.Distribution.False*100, out.Distribution.Uncertain*100)

	return model.VerificationResult{
		Claim:        claim,
		Verdict:      out.Verdict,
		Explanation:  explanation,
		Distribution: out.Distribution,
		Draft:        &draft,
		Sources:      sources,
		Evidence:     grouped.All(),
		Boosts:       out.Boosts,
		Outcome:      model.OutcomeResult,
	}
}

// throttle waits between consecutive LLM calls, longer after a timeout
func (o *Orchestrator) throttle(ctx context.Context, bc *BatchContext) {
	if bc.invocations == 0 {
		return
	}
	delay := o.cfg.Delay
	if bc.lastTimedOut {
		delay = o.cfg.PostTimeoutDelay
	}
	if delay > 0 {
		log.Debug("Run %s: waiting %s before next LLM call", bc.RunID, delay)
		o.sleep(ctx, delay)
	}
}

func (o *Orchestrator) recordFailure(bc *BatchContext, label string) {
	bc.consecutiveFailures++
	if bc.consecutiveFailures >= o.cfg.BreakerThreshold && !bc.circuitOpen {
		bc.circuitOpen = true
		log.Warn("Run %s %s: %d consecutive timeouts or rate-limit errors, circuit open for remaining claims",
			bc.RunID, label, bc.consecutiveFailures)
	}
}

func (o *Orchestrator) logState(bc *BatchContext, label string, state State, detail string) {
	switch state {
	case StateTimeout, StateError:
		log.Warn("Run %s %s: %s (%s)", bc.RunID, label, state, detail)
	default:
		log.Info("Run %s %s: %s (%s)", bc.RunID, label, state, detail)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, worker.ErrTimeout) ||
		errors.Is(err, llm.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded)
}

func timeoutResult(claim model.Claim, timeout time.Duration) model.VerificationResult {
	return model.VerificationResult{
		Claim:   claim,
		Verdict: model.VerdictUncertain,
		Explanation: fmt.Sprintf("Verification timed out after %s, most likely because the verification service is rate-limiting requests. "+
			"The claim was not retried.", timeout),
		Distribution: model.UncertainDistribution(),
		Outcome:      model.OutcomeTimeout,
	}
}

func circuitOpenResult(claim model.Claim, failures int) model.VerificationResult {
	return model.VerificationResult{
		Claim:   claim,
		Verdict: model.VerdictUncertain,
		Explanation: fmt.Sprintf("Not verified: %d consecutive verification calls timed out or were rate-limited, which indicates rate-limiting. "+
			"Remaining claims were skipped to avoid wasting quota.", failures),
		Distribution: model.UncertainDistribution(),
		Outcome:      model.OutcomeCircuitOpen,
	}
}

func errorResult(claim model.Claim, err error) model.VerificationResult {
	return model.VerificationResult{
		Claim:        claim,
		Verdict:      model.VerdictError,
		Explanation:  fmt.Sprintf("Verification failed: %v", err),
		Distribution: model.UncertainDistribution(),
		Outcome:      model.OutcomeError,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
