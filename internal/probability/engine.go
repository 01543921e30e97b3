// Package probability turns a draft distribution and grouped evidence into
// a final, normalized distribution and a verdict.
package probability

import (
	"fmt"
	"math"

	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
)

// Adjustment bounds
const (
	maxUncertaintyReduction = 0.6
	uncertaintyPerPower     = 0.1

	promotionalShare = 0.6
	independentShare = 0.7
	ratioBoost       = 0.10

	scientificPerPower = 0.05
	maxScientificBoost = 0.20

	counterVideoPerPower = 0.03
	maxCounterVideoBoost = 0.10

	selfRefPenalty    = 0.05
	maxSelfRefPenalty = 0.25

	maxReputationShift = 0.5

	lowReachViews      = 1000
	lowReachPressCount = 3
	lowReachAmplifier  = 1.15
	componentFloor     = 0.001
)

// Input is everything the engine needs for one claim
type Input struct {
	Draft       model.Distribution
	Evidence    model.GroupedEvidence
	Reputation  model.ChannelReputation
	Credibility float64 // Channel credibility multiplier; 0 is treated as neutral (1.0)
}

// Step records the distribution after one adjustment stage
type Step struct {
	Stage  string             `json:"stage"`
	Detail string             `json:"detail"`
	After  model.Distribution `json:"after"`
}

// Output is the engine's result for one claim
type Output struct {
	Distribution model.Distribution
	Verdict      model.Verdict
	Boosts       []model.Boost
	Steps        []Step
}

// Engine applies the fixed adjustment sequence
type Engine struct{}

// NewEngine creates a new probability engine
func NewEngine() *Engine {
	return &Engine{}
}

// Adjust runs every adjustment stage and maps the result to a verdict.
// The returned distribution always sums to 1.0 with every component >= 0.001.
func (e *Engine) Adjust(in Input) Output {
	d := in.Draft.Normalize()
	ev := in.Evidence
	var steps []Step
	record := func(stage, detail string) {
		steps = append(steps, Step{Stage: stage, Detail: detail, After: d})
	}

	// 1. Evidence quality: effective evidence reduces uncertainty
	totalPower := model.Power(ev.All())
	reduction := math.Min(maxUncertaintyReduction, uncertaintyPerPower*totalPower)
	d.Uncertain *= 1 - reduction
	record("evidence_quality", fmt.Sprintf("total power %.2f, uncertainty scaled by %.2f", totalPower, 1-reduction))

	// 2. Independence versus promotion
	if totalPower > 0 {
		promo := model.Power(ev.PressRelease) / totalPower
		indep := model.Power(ev.Independent) / totalPower
		if promo > promotionalShare {
			d.False += ratioBoost
		}
		if indep > independentShare {
			d.True += ratioBoost
		}
		record("independence_ratio", fmt.Sprintf("promotional %.0f%%, independent %.0f%%", promo*100, indep*100))
	}

	// 3. Scientific evidence
	var supporting, contradicting float64
	for _, item := range ev.Scientific {
		if item.SupportsClaim {
			supporting += item.ValidationPower
		} else {
			contradicting += item.ValidationPower
		}
	}
	d.True += math.Min(maxScientificBoost, scientificPerPower*supporting)
	d.False += math.Min(maxScientificBoost, scientificPerPower*contradicting)
	record("scientific", fmt.Sprintf("supporting power %.2f, contradicting power %.2f", supporting, contradicting))

	// 4. Counter-narrative video
	videoPower := model.Power(ev.YouTubeCounter)
	d.False += math.Min(maxCounterVideoBoost, counterVideoPerPower*videoPower)
	record("counter_video", fmt.Sprintf("counter video power %.2f", videoPower))

	// 5. Self-referential press releases
	selfRefs := 0
	for _, item := range ev.PressRelease {
		if item.SelfReferential {
			selfRefs++
		}
	}
	if in.Reputation.IsTrustedInvestigator {
		record("self_reference", fmt.Sprintf("%d self-referential items, skipped for trusted investigator", selfRefs))
	} else {
		d.False += math.Min(maxSelfRefPenalty, selfRefPenalty*float64(selfRefs))
		record("self_reference", fmt.Sprintf("%d self-referential items", selfRefs))
	}

	// 6. Source reputation
	m := in.Credibility
	if m == 0 {
		m = 1
	}
	switch {
	case m > 1:
		shift := d.False * math.Min(m-1, maxReputationShift)
		d.False -= shift
		d.True += shift
	case m < 1:
		shift := d.True * math.Min(1-m, maxReputationShift)
		d.True -= shift
		d.False += shift
	}
	record("reputation", fmt.Sprintf("credibility multiplier %.2f", m))

	// 7. Counter-intelligence boosts
	d = d.Normalize()
	boosts := CounterIntelligenceBoosts(ev)
	d = applyBoosts(d, boosts)
	record("counter_intelligence", fmt.Sprintf("%d boosts", len(boosts)))

	// 8. Low reach: weak counter-evidence must not flatten a confident signal
	if lowReach(ev) {
		switch {
		case d.True > d.False:
			d.True *= lowReachAmplifier
		case d.False > d.True:
			d.False *= lowReachAmplifier
		}
		record("low_reach", "counter-evidence reach is minimal, dominant side amplified")
	}

	// 9. Floor and renormalize
	d.True = math.Max(d.True, componentFloor)
	d.False = math.Max(d.False, componentFloor)
	d.Uncertain = math.Max(d.Uncertain, componentFloor)
	d = d.Normalize()
	final, err := model.NewDistribution(d.True, d.False, d.Uncertain)
	if err != nil {
		log.Warn("probability: final distribution invalid (%v), falling back to uncertain", err)
		final = model.UncertainDistribution()
	}
	d = final
	record("final", "floored and renormalized")

	verdict := Verdict(d)
	log.Debug("probability: TRUE=%.3f FALSE=%.3f UNCERTAIN=%.3f -> %s", d.True, d.False, d.Uncertain, verdict)

	return Output{
		Distribution: d,
		Verdict:      verdict,
		Boosts:       boosts,
		Steps:        steps,
	}
}

// lowReach reports whether counter-intelligence evidence has minimal reach
func lowReach(ev model.GroupedEvidence) bool {
	var views int64
	for _, item := range ev.YouTubeCounter {
		views += item.ViewCount
	}
	return views < lowReachViews && len(ev.PressRelease) < lowReachPressCount
}
