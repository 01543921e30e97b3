// Package score grades candidate claims by how concrete and checkable they are.
// Every function here is pure: identical text always yields identical scores.
package score

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/veracity/internal/model"
)

// Scorer calculates specificity, type and verifiability for claims
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score attaches all score fields to a raw claim
func (s *Scorer) Score(raw model.RawClaim) model.Claim {
	breakdown := s.Specificity(raw.Text)
	claimType := s.Classify(raw.Text)
	total := breakdown.Total()

	return model.Claim{
		Text:          raw.Text,
		Timestamp:     raw.Timestamp,
		Speaker:       raw.Speaker,
		Type:          claimType,
		Specificity:   total,
		Breakdown:     breakdown,
		Verifiability: s.verifiability(raw.Text, claimType, total),
		Quality:       model.QualityFromSpecificity(total),
	}
}

// ScoreAll scores claims in input order
func (s *Scorer) ScoreAll(raws []model.RawClaim) []model.Claim {
	claims := make([]model.Claim, 0, len(raws))
	for _, raw := range raws {
		claims = append(claims, s.Score(raw))
	}
	return claims
}

// Specificity calculates the specificity breakdown (0-100 in total).
// Absence claims short-circuit to a fixed high score.
func (s *Scorer) Specificity(text string) model.SpecificityBreakdown {
	if isAbsence(text) {
		return absenceBreakdown
	}

	breakdown, err := model.NewSpecificityBreakdown(
		min(countProperNouns(text)*properNounPoints, model.MaxProperNouns),
		min(temporalPoints(text), model.MaxTemporal),
		min(quantitativePoints(text), model.MaxQuantitative),
		min(attributionPoints(text), model.MaxAttribution),
	)
	if err != nil {
		return model.SpecificityBreakdown{}
	}
	return breakdown
}

// Classify determines the claim type. Absence wins over every keyword rule.
func (s *Scorer) Classify(text string) model.ClaimType {
	if isAbsence(text) {
		return model.ClaimTypeAbsence
	}
	for _, rule := range typeRules {
		if rule.pattern.MatchString(text) {
			return rule.label
		}
	}
	return model.ClaimTypeOther
}

// PredictVerifiability estimates how likely independent evidence can
// confirm or refute the claim (0.0-1.0)
func (s *Scorer) PredictVerifiability(text string, claimType model.ClaimType) float64 {
	return s.verifiability(text, claimType, s.Specificity(text).Total())
}

func (s *Scorer) verifiability(text string, claimType model.ClaimType, specificity int) float64 {
	base, ok := typeBaseScore[claimType]
	if !ok {
		base = typeBaseScore[model.ClaimTypeOther]
	}

	v := baseWeight*base + specificityWeight*float64(specificity)/100

	for _, vague := range vagueTerms {
		if vague.MatchString(text) {
			v -= vaguePenalty
		}
	}
	if yearPattern.MatchString(text) {
		v += yearBonus
	}
	if institutionPattern.MatchString(text) {
		v += institutionBonus
	}

	v = math.Max(0, math.Min(1, v))
	if claimType == model.ClaimTypeAbsence {
		v = math.Max(v, absenceFloor)
	}
	return v
}

// IsAbsence reports whether the text asserts that information is missing
func IsAbsence(text string) bool {
	return isAbsence(text)
}

func isAbsence(text string) bool {
	for _, p := range absencePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// abbreviations that end in a period without ending the sentence
var abbreviations = map[string]bool{
	"dr.": true, "mr.": true, "mrs.": true, "ms.": true, "prof.": true,
	"st.": true, "jr.": true, "sr.": true, "u.s.": true, "u.k.": true,
	"vs.": true, "e.g.": true, "i.e.": true, "inc.": true, "ph.d.": true,
}

// countProperNouns counts capitalized tokens that do not start a sentence
func countProperNouns(text string) int {
	count := 0
	sentenceStart := true

	for _, tok := range strings.Fields(text) {
		word := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" && !sentenceStart && word != "I" {
			if r, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(r) {
				count++
			}
		}

		last, _ := utf8.DecodeLastRuneInString(strings.TrimRight(tok, `"')]`))
		sentenceStart = strings.ContainsRune(".!?:", last) && !abbreviations[strings.ToLower(strings.Trim(tok, `"'([`))]
	}

	return count
}

func temporalPoints(text string) int {
	points := 0
	if yearPattern.MatchString(text) {
		points += yearPoints
	}
	if monthPattern.MatchString(text) {
		points += monthPoints
	}
	if relativePattern.MatchString(text) {
		points += relativePoints
	}
	return points
}

func quantitativePoints(text string) int {
	points := 0
	if percentPattern.MatchString(text) {
		points += percentPoints
	}
	// years already earn temporal points
	rest := yearPattern.ReplaceAllString(text, " ")
	points += len(numberPattern.FindAllString(rest, -1)) * numberPoints
	return points
}

func attributionPoints(text string) int {
	points := 0
	for _, rule := range attributionRules {
		if rule.pattern.MatchString(text) {
			points += rule.points
		}
	}
	return points
}
