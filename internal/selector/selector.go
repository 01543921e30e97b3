// Package selector chooses a bounded, type-diverse subset of scored claims
// worth spending verification calls on.
package selector

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/score"
	"github.com/ppiankov/veracity/internal/util"
)

// ErrMalformedClaim is returned when a claim record violates its invariants.
// This is the only failure that aborts a run.
var ErrMalformedClaim = errors.New("malformed claim")

// typePriority favors claim types that verification can settle decisively
var typePriority = map[model.ClaimType]float64{
	model.ClaimTypeAbsence:              1.0,
	model.ClaimTypeCredential:           0.9,
	model.ClaimTypePublication:          0.8,
	model.ClaimTypeStudy:                0.7,
	model.ClaimTypeProductEfficacy:      0.5,
	model.ClaimTypeCelebrityEndorsement: 0.4,
	model.ClaimTypeOther:                0.2,
	model.ClaimTypeConspiracyTheory:     0.0,
}

// guaranteedTypes get at least one slot each when present, in this order
var guaranteedTypes = []model.ClaimType{
	model.ClaimTypeAbsence,
	model.ClaimTypeCredential,
	model.ClaimTypePublication,
	model.ClaimTypeStudy,
}

// Composite score weights
const (
	verifiabilityWeight = 0.4
	specificityWeight   = 0.3
	priorityWeight      = 0.2
	temporalWeight      = 0.1
)

// Absence synthesis
const (
	maxCredentialGaps        = 3
	vagueStudyThreshold      = 2
	productClaimThreshold    = 3
	backingSpecificity       = 60
	synthesizedVerifiability = 0.95
)

var (
	titlePattern       = regexp.MustCompile(`\b(?:Dr\.?|Doctor|Professor|Prof\.)\s`)
	titledNamePattern  = regexp.MustCompile(`\b(?:Dr\.?|Doctor|Professor|Prof\.)\s+((?:[A-Z][a-z]+)(?:\s+[A-Z][a-z]+)?)`)
	institutionPattern = regexp.MustCompile(`\b((?:[A-Z][a-z]+\s+)+(?:University|Institute|Clinic|Hospital|College|Foundation))\b|\b(University of [A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)\b`)
	credentialPattern  = regexp.MustCompile(`(?i)\b(?:ph\.?d\b|m\.d\.|board[- ]certified|certified|licensed|degree|graduated|trained (?:at|in)|\w+-trained|years of (?:experience|practice)|physician|surgeon|nutritionist|dietitian|cardiologist|specialist|fellow of|professor (?:of|at)|credentials|faculty)`)
	vagueStudyPattern  = regexp.MustCompile(`(?i)\b(?:a study|one study|a recent study|studies (?:show|have shown|prove|suggest)|research (?:shows|suggests|proves)|scientists (?:say|found)|experts (?:say|agree))\b`)
)

// Selection is the result of a selector run
type Selection struct {
	Claims []model.Claim
	Meta   model.SelectionMeta
}

// Selector filters, augments, ranks and selects claims
type Selector struct {
	cfg    model.SelectionConfig
	scorer *score.Scorer
}

// NewSelector creates a new selector
func NewSelector(cfg model.SelectionConfig, scorer *score.Scorer) *Selector {
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = model.DefaultConfig().Selection.TargetCount
	}
	if scorer == nil {
		scorer = score.NewScorer()
	}
	return &Selector{cfg: cfg, scorer: scorer}
}

// Select runs the full selection pipeline: filter, synthesize absence
// claims, rank, then pick a diverse subset.
func (s *Selector) Select(claims []model.Claim) (Selection, error) {
	for i, c := range claims {
		if err := validateClaim(c); err != nil {
			return Selection{}, fmt.Errorf("claim %d: %w", i, err)
		}
	}

	filtered := s.Filter(claims)
	synthesized := s.SynthesizeAbsence(filtered)
	ranked := s.Rank(append(filtered, synthesized...))
	selected := s.selectDiverse(ranked)

	log.Debug("selector: %d claims, %d after filter, %d synthesized, %d selected",
		len(claims), len(filtered), len(synthesized), len(selected))

	quality := make(map[model.QualityLevel]int)
	for _, c := range selected {
		quality[c.Quality]++
	}

	return Selection{
		Claims: selected,
		Meta: model.SelectionMeta{
			InitialCount:        len(claims),
			AfterFilterCount:    len(filtered),
			AbsenceCount:        len(synthesized),
			FinalCount:          len(selected),
			QualityDistribution: quality,
		},
	}, nil
}

// Filter drops conspiracy claims and claims below the specificity floor
func (s *Selector) Filter(claims []model.Claim) []model.Claim {
	kept := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if c.Type == model.ClaimTypeConspiracyTheory {
			continue
		}
		if c.Specificity < s.cfg.MinSpecificity {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// SynthesizeAbsence produces one absence claim per detected information gap
func (s *Selector) SynthesizeAbsence(claims []model.Claim) []model.Claim {
	var texts []string

	// Named people and institutions with no credential stated about them.
	// A title alone ("Dr.", "Professor") does not count as a stated credential.
	var credentialText []string
	for _, c := range claims {
		if credentialPattern.MatchString(stripTitles(c.Text)) {
			credentialText = append(credentialText, c.Text)
		}
	}
	gaps := 0
	for _, name := range namedEntities(claims) {
		if gaps >= maxCredentialGaps {
			break
		}
		if mentionedIn(name, credentialText) {
			continue
		}
		texts = append(texts, fmt.Sprintf("The video does not state the credentials of %s", name))
		gaps++
	}

	// Repeated references to unnamed studies
	vague := 0
	for _, c := range claims {
		if vagueStudyPattern.MatchString(c.Text) {
			vague++
		}
	}
	if vague >= vagueStudyThreshold {
		texts = append(texts, "The video does not cite the specific studies it refers to")
	}

	// Product claims with nothing specific backing them
	products := 0
	backed := false
	for _, c := range claims {
		switch c.Type {
		case model.ClaimTypeProductEfficacy:
			products++
		case model.ClaimTypeStudy, model.ClaimTypePublication:
			if c.Specificity >= backingSpecificity {
				backed = true
			}
		}
	}
	if products >= productClaimThreshold && !backed {
		texts = append(texts, "The video does not provide specific evidence for its product efficacy claims")
	}

	existing := make(map[string]bool, len(claims))
	for _, c := range claims {
		existing[util.NormalizeKey(c.Text)] = true
	}

	synthesized := make([]model.Claim, 0, len(texts))
	for _, text := range texts {
		if existing[util.NormalizeKey(text)] {
			continue
		}
		c := s.scorer.Score(model.RawClaim{Text: text})
		c.Verifiability = math.Max(c.Verifiability, synthesizedVerifiability)
		c.Synthesized = true
		synthesized = append(synthesized, c)
	}
	return synthesized
}

// Rank attaches composite scores and orders claims best first.
// Ties keep input order.
func (s *Selector) Rank(claims []model.Claim) []model.Claim {
	ranked := make([]model.Claim, len(claims))
	for i, c := range claims {
		c.CompositeScore = CompositeScore(c)
		ranked[i] = c
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompositeScore > ranked[j].CompositeScore
	})
	return ranked
}

// CompositeScore combines verifiability, specificity, type priority and
// the temporal signal into a single ranking score
func CompositeScore(c model.Claim) float64 {
	temporalBase := float64(c.Breakdown.Temporal) / float64(model.MaxTemporal)
	return verifiabilityWeight*c.Verifiability +
		specificityWeight*float64(c.Specificity)/100 +
		priorityWeight*typePriority[c.Type] +
		temporalWeight*temporalBase
}

// selectDiverse guarantees one claim per priority type, then fills the
// remaining slots by rank. Input must already be ranked.
func (s *Selector) selectDiverse(ranked []model.Claim) []model.Claim {
	selected := make([]model.Claim, 0, s.cfg.TargetCount)
	taken := make([]bool, len(ranked))
	seen := make(map[string]bool)

	take := func(i int) bool {
		key := util.NormalizeKey(ranked[i].Text)
		if taken[i] || seen[key] {
			return false
		}
		taken[i] = true
		seen[key] = true
		selected = append(selected, ranked[i])
		return true
	}

	for _, t := range guaranteedTypes {
		if len(selected) >= s.cfg.TargetCount {
			break
		}
		for i, c := range ranked {
			if c.Type == t && take(i) {
				break
			}
		}
	}

	for i := range ranked {
		if len(selected) >= s.cfg.TargetCount {
			break
		}
		take(i)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].CompositeScore > selected[j].CompositeScore
	})
	return selected
}

// namedEntities returns titled person names and institution names in
// first-seen order
func namedEntities(claims []model.Claim) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := util.NormalizeKey(name)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	for _, c := range claims {
		for _, m := range titledNamePattern.FindAllStringSubmatch(c.Text, -1) {
			add(m[1])
		}
		for _, m := range institutionPattern.FindAllStringSubmatch(c.Text, -1) {
			if m[1] != "" {
				add(m[1])
			} else {
				add(m[2])
			}
		}
	}
	return names
}

func stripTitles(text string) string {
	return titlePattern.ReplaceAllString(text, " ")
}

func mentionedIn(name string, texts []string) bool {
	for _, text := range texts {
		if util.ContainsFold(text, name) {
			return true
		}
	}
	return false
}

func validateClaim(c model.Claim) error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: empty text", ErrMalformedClaim)
	}
	if c.Specificity < 0 || c.Specificity > 100 {
		return fmt.Errorf("%w: specificity %d outside [0, 100]", ErrMalformedClaim, c.Specificity)
	}
	if c.Breakdown.Total() != c.Specificity {
		return fmt.Errorf("%w: sub-scores sum to %d, specificity is %d", ErrMalformedClaim, c.Breakdown.Total(), c.Specificity)
	}
	if c.Verifiability < 0 || c.Verifiability > 1 || math.IsNaN(c.Verifiability) {
		return fmt.Errorf("%w: verifiability %f outside [0, 1]", ErrMalformedClaim, c.Verifiability)
	}
	if _, ok := typePriority[c.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrMalformedClaim, c.Type)
	}
	return nil
}
