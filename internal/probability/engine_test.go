package probability

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func dist(t, f, u float64) model.Distribution {
	return model.Distribution{True: t, False: f, Uncertain: u}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		d        model.Distribution
		expected model.Verdict
	}{
		{dist(0.80, 0.05, 0.15), model.VerdictHighlyLikelyTrue},
		{dist(0.30, 0.60, 0.10), model.VerdictLikelyFalse},
		{dist(0.38, 0.38, 0.24), model.VerdictUncertain},
		{dist(0.45, 0.30, 0.25), model.VerdictLikelyTrue},
		{dist(0.10, 0.45, 0.45), model.VerdictLikelyFalse},
		{dist(0.45, 0.40, 0.15), model.VerdictUncertain},
		{dist(0.50, 0.38, 0.12), model.VerdictLeaningTrue},
		{dist(0.36, 0.50, 0.14), model.VerdictLeaningFalse},
		{dist(0.001, 0.998, 0.001), model.VerdictLikelyFalse},
	}

	for _, tt := range tests {
		if got := Verdict(tt.d); got != tt.expected {
			t.Errorf("Verdict(%+v) = %s, want %s", tt.d, got, tt.expected)
		}
	}
}

func TestEngine_NoEvidence(t *testing.T) {
	out := NewEngine().Adjust(Input{
		Draft:       dist(0.6, 0.2, 0.2),
		Reputation:  model.NeutralReputation(),
		Credibility: 1.0,
	})

	// Only the low-reach amplification applies: TRUE 0.6 * 1.15, then renormalize
	sum := 0.69 + 0.2 + 0.2
	expected := dist(0.69/sum, 0.2/sum, 0.2/sum)
	got := out.Distribution
	if !approx(got.True, expected.True) || !approx(got.False, expected.False) || !approx(got.Uncertain, expected.Uncertain) {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
	if out.Verdict != model.VerdictLikelyTrue {
		t.Errorf("Expected LIKELY_TRUE, got %s", out.Verdict)
	}
	if len(out.Boosts) != 0 {
		t.Errorf("Expected no boosts, got %+v", out.Boosts)
	}
}

func TestEngine_DistributionInvariant(t *testing.T) {
	engine := NewEngine()
	rng := rand.New(rand.NewSource(42))

	item := func(group model.EvidenceGroup, power float64) model.EvidenceItem {
		return model.EvidenceItem{
			Group:           group,
			ValidationPower: power,
			SelfReferential: power == 0,
			SupportsClaim:   rng.Intn(2) == 0,
			ViewCount:       int64(rng.Intn(5000)),
			Text:            "snippet",
		}
	}

	for i := 0; i < 500; i++ {
		var ev model.GroupedEvidence
		for j := rng.Intn(6); j > 0; j-- {
			ev.Independent = append(ev.Independent, item(model.GroupIndependent, 1))
		}
		for j := rng.Intn(6); j > 0; j-- {
			ev.PressRelease = append(ev.PressRelease, item(model.GroupPressRelease, []float64{0, 0.2, 1}[rng.Intn(3)]))
		}
		for j := rng.Intn(6); j > 0; j-- {
			ev.Scientific = append(ev.Scientific, item(model.GroupScientific, 1))
		}
		for j := rng.Intn(6); j > 0; j-- {
			ev.YouTubeCounter = append(ev.YouTubeCounter, item(model.GroupYouTubeCounter, 1))
		}

		in := Input{
			Draft:       dist(rng.Float64(), rng.Float64(), rng.Float64()),
			Evidence:    ev,
			Reputation:  model.ChannelReputation{Score: rng.Float64(), IsTrustedInvestigator: rng.Intn(4) == 0},
			Credibility: 0.5 + rng.Float64(),
		}
		if i%50 == 0 {
			in.Draft = dist(0, 0, 0)
		}

		out := engine.Adjust(in)
		if err := out.Distribution.Validate(); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		for _, v := range []float64{out.Distribution.True, out.Distribution.False, out.Distribution.Uncertain} {
			if v <= 0 {
				t.Fatalf("iteration %d: component not positive: %+v", i, out.Distribution)
			}
		}
		if out.Verdict == "" || out.Verdict == model.VerdictError {
			t.Fatalf("iteration %d: unexpected verdict %q", i, out.Verdict)
		}
	}
}

func TestEngine_TrustedInvestigatorSkipsSelfReferencePenalty(t *testing.T) {
	pr := model.EvidenceItem{Group: model.GroupPressRelease, SelfReferential: true, Text: "promo"}
	ev := model.GroupedEvidence{
		PressRelease: []model.EvidenceItem{pr, pr, pr},
		Independent:  []model.EvidenceItem{{Group: model.GroupIndependent, ValidationPower: 1}},
	}

	engine := NewEngine()
	untrusted := engine.Adjust(Input{Draft: dist(0.4, 0.3, 0.3), Evidence: ev, Reputation: model.NeutralReputation(), Credibility: 1})
	trusted := engine.Adjust(Input{
		Draft:       dist(0.4, 0.3, 0.3),
		Evidence:    ev,
		Reputation:  model.ChannelReputation{Score: 0.5, IsTrustedInvestigator: true},
		Credibility: 1,
	})

	if !(untrusted.Distribution.False > trusted.Distribution.False) {
		t.Errorf("Expected penalty only for untrusted channel: untrusted FALSE=%.3f trusted FALSE=%.3f",
			untrusted.Distribution.False, trusted.Distribution.False)
	}
}

func TestEngine_ReputationShift(t *testing.T) {
	engine := NewEngine()
	base := Input{Draft: dist(0.4, 0.4, 0.2), Reputation: model.NeutralReputation()}

	neutral := engine.Adjust(base)

	credible := base
	credible.Credibility = 1.5
	high := engine.Adjust(credible)

	dubious := base
	dubious.Credibility = 0.5
	low := engine.Adjust(dubious)

	if !(high.Distribution.True > neutral.Distribution.True) {
		t.Errorf("Expected credible channel to raise TRUE: %.3f vs %.3f", high.Distribution.True, neutral.Distribution.True)
	}
	if !(low.Distribution.False > neutral.Distribution.False) {
		t.Errorf("Expected dubious channel to raise FALSE: %.3f vs %.3f", low.Distribution.False, neutral.Distribution.False)
	}
}

func TestEngine_ScientificEvidence(t *testing.T) {
	engine := NewEngine()
	sci := func(supports bool) model.EvidenceItem {
		return model.EvidenceItem{Group: model.GroupScientific, ValidationPower: 1, SupportsClaim: supports}
	}

	supporting := engine.Adjust(Input{
		Draft:    dist(0.3, 0.3, 0.4),
		Evidence: model.GroupedEvidence{Scientific: []model.EvidenceItem{sci(true), sci(true)}},
	})
	contradicting := engine.Adjust(Input{
		Draft:    dist(0.3, 0.3, 0.4),
		Evidence: model.GroupedEvidence{Scientific: []model.EvidenceItem{sci(false), sci(false)}},
	})

	if !(supporting.Distribution.True > supporting.Distribution.False) {
		t.Errorf("Expected supporting science to favor TRUE: %+v", supporting.Distribution)
	}
	if !(contradicting.Distribution.False > contradicting.Distribution.True) {
		t.Errorf("Expected contradicting science to favor FALSE: %+v", contradicting.Distribution)
	}
}

func TestEngine_Steps(t *testing.T) {
	out := NewEngine().Adjust(Input{
		Draft: dist(0.5, 0.3, 0.2),
		Evidence: model.GroupedEvidence{
			Independent: []model.EvidenceItem{{Group: model.GroupIndependent, ValidationPower: 1}},
		},
	})

	expected := []string{
		"evidence_quality", "independence_ratio", "scientific", "counter_video",
		"self_reference", "reputation", "counter_intelligence", "low_reach", "final",
	}
	if len(out.Steps) != len(expected) {
		t.Fatalf("Expected %d steps, got %d: %+v", len(expected), len(out.Steps), out.Steps)
	}
	for i, stage := range expected {
		if out.Steps[i].Stage != stage {
			t.Errorf("Step %d: expected %s, got %s", i, stage, out.Steps[i].Stage)
		}
	}
}

func TestCounterIntelligenceBoosts(t *testing.T) {
	video := model.EvidenceItem{Group: model.GroupYouTubeCounter, ValidationPower: 1, Text: "This product is a scam"}
	ev := model.GroupedEvidence{
		YouTubeCounter: []model.EvidenceItem{video, video, video, video},
		PressRelease: []model.EvidenceItem{
			{Group: model.GroupPressRelease, ValidationPower: 0, SelfReferential: true, Title: "Acme launches pill"},
			{Group: model.GroupPressRelease, ValidationPower: 0.2, Text: "Pill sales soar"},
			{Group: model.GroupPressRelease, ValidationPower: 1.0, Text: "Unrelated"},
		},
	}

	boosts := CounterIntelligenceBoosts(ev)
	if len(boosts) != 2 {
		t.Fatalf("Expected 2 boosts, got %d", len(boosts))
	}

	press, videos := boosts[0], boosts[1]
	if press.Source != model.GroupPressRelease || !approx(press.Reduction, 0.06) {
		t.Errorf("Unexpected press boost %+v", press)
	}
	if videos.Source != model.GroupYouTubeCounter || !approx(videos.Reduction, 0.15) {
		t.Errorf("Unexpected video boost %+v", videos)
	}
	for _, b := range boosts {
		if len(b.Quotes) > 2 {
			t.Errorf("Expected at most 2 quotes, got %d", len(b.Quotes))
		}
	}
	if press.Quotes[0] != "Acme launches pill" {
		t.Errorf("Expected title fallback quote, got %q", press.Quotes[0])
	}
}

func TestApplyBoosts(t *testing.T) {
	boosts := []model.Boost{{Reduction: 0.15}, {Reduction: 0.06}}

	// Total capped at 0.20
	got := applyBoosts(dist(0.5, 0.3, 0.2), boosts)
	if !approx(got.True, 0.3) || !approx(got.False, 0.42) || !approx(got.Uncertain, 0.28) {
		t.Errorf("Unexpected redistribution %+v", got)
	}

	// Never removes more than TRUE holds
	got = applyBoosts(dist(0.1, 0.6, 0.3), boosts)
	if !approx(got.True, 0) || !approx(got.False, 0.66) || !approx(got.Uncertain, 0.34) {
		t.Errorf("Unexpected redistribution %+v", got)
	}

	if got := applyBoosts(dist(0.5, 0.3, 0.2), nil); got != dist(0.5, 0.3, 0.2) {
		t.Errorf("Expected no change without boosts, got %+v", got)
	}
}
