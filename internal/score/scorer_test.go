package score

import (
	"math"
	"reflect"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func TestScorer_Classify(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		text     string
		expected model.ClaimType
		desc     string
	}{
		{"The video does not state where Dr. Lee trained", model.ClaimTypeAbsence, "absence wins over credential"},
		{"Big Pharma is hiding the truth about this study", model.ClaimTypeConspiracyTheory, "conspiracy before study"},
		{"Dr. Smith has a PhD from Harvard", model.ClaimTypeCredential, "credential"},
		{"Her book was published in 2019", model.ClaimTypePublication, "publication"},
		{"A clinical trial showed improvement", model.ClaimTypeStudy, "study"},
		{"Famous athletes use this product", model.ClaimTypeCelebrityEndorsement, "celebrity"},
		{"This supplement cures arthritis", model.ClaimTypeProductEfficacy, "product efficacy"},
		{"The sky is blue", model.ClaimTypeOther, "other"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := scorer.Classify(tt.text); got != tt.expected {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.expected)
			}
		})
	}
}

func TestScorer_Specificity_Breakdown(t *testing.T) {
	scorer := NewScorer()

	b := scorer.Specificity("According to the FDA, 45% of users lost weight in March 2021.")

	expected := model.SpecificityBreakdown{
		ProperNouns:  20, // FDA, March
		Temporal:     25, // year + month
		Quantitative: 15, // percent + 45
		Attribution:  15, // according to
	}
	if b != expected {
		t.Errorf("Expected %+v, got %+v", expected, b)
	}
	if b.Total() != 75 {
		t.Errorf("Expected total 75, got %d", b.Total())
	}
}

func TestScorer_Specificity_YearIsNotQuantity(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		text         string
		temporal     int
		quantitative int
	}{
		{"Dr. Jane Doe found that the diet works in 2019", 15, 0},
		{"The trial ended in 1998 with 40 patients", 15, 5},
		{"Users lost 12 pounds", 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			b := scorer.Specificity(tt.text)
			if b.Temporal != tt.temporal {
				t.Errorf("Temporal = %d, want %d", b.Temporal, tt.temporal)
			}
			if b.Quantitative != tt.quantitative {
				t.Errorf("Quantitative = %d, want %d", b.Quantitative, tt.quantitative)
			}
		})
	}
}

func TestScorer_Specificity_Bounds(t *testing.T) {
	scorer := NewScorer()

	texts := []string{
		"",
		"hello",
		"In January 2020 and February 2021, 10 20 30 40 50 60% of Alpha Beta Gamma Delta Epsilon, according to researchers at MIT, published in the journal Nature, said Bob last year.",
		"THE ALL CAPS CLAIM ABOUT NASA AND ESA AND JAXA",
		"1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19 20",
		"Nobody never mentions anything",
	}

	for _, text := range texts {
		b := scorer.Specificity(text)
		total := b.Total()
		if total < 0 || total > 100 {
			t.Errorf("%q: total %d out of bounds", text, total)
		}
		if b.ProperNouns > model.MaxProperNouns || b.Temporal > model.MaxTemporal ||
			b.Quantitative > model.MaxQuantitative || b.Attribution > model.MaxAttribution {
			t.Errorf("%q: sub-score above ceiling: %+v", text, b)
		}
		if b.ProperNouns+b.Temporal+b.Quantitative+b.Attribution != total {
			t.Errorf("%q: sub-scores do not sum to total", text)
		}

		claim := scorer.Score(model.RawClaim{Text: text})
		if claim.Specificity != total {
			t.Errorf("%q: claim specificity %d != breakdown total %d", text, claim.Specificity, total)
		}
		if claim.Verifiability < 0 || claim.Verifiability > 1 {
			t.Errorf("%q: verifiability %f out of bounds", text, claim.Verifiability)
		}
	}
}

func TestScorer_AbsenceShortCircuit(t *testing.T) {
	scorer := NewScorer()

	texts := []string{
		"The video does not state the credentials of Dr. Jones",
		"The presenter never mentions which university she attended",
		"Results are quoted without citing any study",
		"The funding source is not disclosed",
	}

	for _, text := range texts {
		claim := scorer.Score(model.RawClaim{Text: text})
		if claim.Type != model.ClaimTypeAbsence {
			t.Errorf("%q: expected absence, got %s", text, claim.Type)
			continue
		}
		if claim.Specificity != 85 {
			t.Errorf("%q: expected specificity 85, got %d", text, claim.Specificity)
		}
		if claim.Breakdown.Attribution != 25 || claim.Breakdown.ProperNouns != 20 {
			t.Errorf("%q: unexpected absence breakdown %+v", text, claim.Breakdown)
		}
		if claim.Verifiability < 0.85 {
			t.Errorf("%q: absence verifiability %f below floor", text, claim.Verifiability)
		}
		if claim.Quality != model.QualityExcellent {
			t.Errorf("%q: expected EXCELLENT, got %s", text, claim.Quality)
		}
	}
}

func TestScorer_PredictVerifiability(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		text      string
		claimType model.ClaimType
		expected  float64
		desc      string
	}{
		{
			text:      "According to the FDA, 45% of users lost weight in March 2021.",
			claimType: model.ClaimTypeOther,
			expected:  0.6, // 0.6*0.3 + 0.4*0.8 + year + institution
			desc:      "bonuses for year and institution",
		},
		{
			text:      "Experts say many studies show it works",
			claimType: model.ClaimTypeStudy,
			expected:  0.12, // 0.6*0.7 - 3 vague terms
			desc:      "vague language penalties",
		},
		{
			text:      "Experts say many studies show some people say it works",
			claimType: model.ClaimTypeConspiracyTheory,
			expected:  0,
			desc:      "clamped at zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := scorer.PredictVerifiability(tt.text, tt.claimType)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %.3f, got %.3f", tt.expected, got)
			}
		})
	}
}

func TestScorer_Idempotent(t *testing.T) {
	scorer := NewScorer()
	raw := model.RawClaim{
		Text:      "Dr. Mark Hyman published a study in the Journal of Nutrition in 2018 showing a 30% reduction",
		Timestamp: "04:12",
		Speaker:   "Host",
	}

	first := scorer.Score(raw)
	second := scorer.Score(raw)
	third := NewScorer().Score(raw)

	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(first, third) {
		t.Errorf("Scoring is not deterministic: %+v vs %+v vs %+v", first, second, third)
	}
	if first.Timestamp != "04:12" || first.Speaker != "Host" {
		t.Errorf("Expected timestamp and speaker to be preserved, got %+v", first)
	}
}

func TestCountProperNouns(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"Dr. Smith works at Mayo Clinic", 3},
		{"Smith said. Jones agreed.", 0},
		{"I think the FDA approved it", 1},
		{"", 0},
	}

	for _, tt := range tests {
		if got := countProperNouns(tt.text); got != tt.expected {
			t.Errorf("countProperNouns(%q) = %d, want %d", tt.text, got, tt.expected)
		}
	}
}
