package model

import "fmt"

// RawClaim is a candidate claim as returned by the extraction service
type RawClaim struct {
	Text      string `json:"claim_text"`
	Timestamp string `json:"timestamp,omitempty"` // Position in the video (e.g., "03:12")
	Speaker   string `json:"speaker,omitempty"`
}

// Claim is a scored claim. All score fields are attached by the scorer,
// CompositeScore by the selector. Never mutated after selection.
type Claim struct {
	Text           string               `json:"text"`
	Timestamp      string               `json:"timestamp,omitempty"`
	Speaker        string               `json:"speaker,omitempty"`
	Type           ClaimType            `json:"type"`
	Specificity    int                  `json:"specificity_score"` // 0-100
	Breakdown      SpecificityBreakdown `json:"specificity_breakdown"`
	Verifiability  float64              `json:"verifiability_score"` // 0.0-1.0
	Quality        QualityLevel         `json:"quality_level"`
	CompositeScore float64              `json:"composite_rank_score,omitempty"`
	Synthesized    bool                 `json:"synthesized,omitempty"` // Absence claim produced by the selector
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeCredential           ClaimType = "credential"            // Qualifications of a person
	ClaimTypePublication          ClaimType = "publication"           // Books, articles, journals
	ClaimTypeStudy                ClaimType = "study"                 // Research findings
	ClaimTypeProductEfficacy      ClaimType = "product_efficacy"      // What a product does
	ClaimTypeCelebrityEndorsement ClaimType = "celebrity_endorsement" // Famous users or endorsers
	ClaimTypeConspiracyTheory     ClaimType = "conspiracy_theory"     // Cover-ups and hidden agendas
	ClaimTypeAbsence              ClaimType = "absence"               // Information conspicuously missing
	ClaimTypeOther                ClaimType = "other"
)

// ClaimTypes lists every claim type in classification precedence order
var ClaimTypes = []ClaimType{
	ClaimTypeAbsence,
	ClaimTypeConspiracyTheory,
	ClaimTypeCredential,
	ClaimTypePublication,
	ClaimTypeStudy,
	ClaimTypeCelebrityEndorsement,
	ClaimTypeProductEfficacy,
	ClaimTypeOther,
}

// QualityLevel is the qualitative grade derived from the specificity score
type QualityLevel string

const (
	QualityExcellent  QualityLevel = "EXCELLENT"
	QualityGood       QualityLevel = "GOOD"
	QualityAcceptable QualityLevel = "ACCEPTABLE"
	QualityWeak       QualityLevel = "WEAK"
	QualityPoor       QualityLevel = "POOR"
)

// QualityFromSpecificity maps a 0-100 specificity score to a quality level
func QualityFromSpecificity(score int) QualityLevel {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityAcceptable
	case score >= 20:
		return QualityWeak
	default:
		return QualityPoor
	}
}

// Sub-score ceilings for the specificity breakdown
const (
	MaxProperNouns  = 30
	MaxTemporal     = 25
	MaxQuantitative = 20
	MaxAttribution  = 25
)

// SpecificityBreakdown holds the four sub-scores that sum to the specificity total
type SpecificityBreakdown struct {
	ProperNouns  int `json:"proper_nouns"`
	Temporal     int `json:"temporal"`
	Quantitative int `json:"quantitative"`
	Attribution  int `json:"attribution"`
}

// NewSpecificityBreakdown validates each sub-score against its ceiling
func NewSpecificityBreakdown(properNouns, temporal, quantitative, attribution int) (SpecificityBreakdown, error) {
	checks := []struct {
		name  string
		value int
		max   int
	}{
		{"proper_nouns", properNouns, MaxProperNouns},
		{"temporal", temporal, MaxTemporal},
		{"quantitative", quantitative, MaxQuantitative},
		{"attribution", attribution, MaxAttribution},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > c.max {
			return SpecificityBreakdown{}, fmt.Errorf("%s sub-score %d outside [0, %d]", c.name, c.value, c.max)
		}
	}
	return SpecificityBreakdown{
		ProperNouns:  properNouns,
		Temporal:     temporal,
		Quantitative: quantitative,
		Attribution:  attribution,
	}, nil
}

// Total returns the sum of the sub-scores
func (b SpecificityBreakdown) Total() int {
	return b.ProperNouns + b.Temporal + b.Quantitative + b.Attribution
}
