package score

import (
	"regexp"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// typeRule maps a predicate over lowercased claim text to a claim type.
// Rules are evaluated top to bottom; the first match wins.
type typeRule struct {
	label   model.ClaimType
	pattern *regexp.Regexp
}

// keywordPattern builds a case-insensitive pattern matching any of the given
// phrases as whole words. Phrases may contain punctuation (e.g., "dr.").
func keywordPattern(phrases ...string) *regexp.Regexp {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:` + strings.Join(quoted, "|") + `)(?:[^\p{L}\p{N}]|$)`)
}

// absencePatterns detect claims asserting that the source material omits something
var absencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:does not|doesn't|did not|didn't|never|fails? to|failed to|do not|don't)\s+(?:\w+\s+){0,2}(?:state|states|mention|mentions|disclose|discloses|cite|cites|name|names|specify|specifies|provide|provides|reveal|reveals|identify|identifies)\b`),
	regexp.MustCompile(`(?i)\bno (?:mention|citation|source|sources|reference|references|evidence is (?:given|provided)) (?:of|for|to|is)\b`),
	regexp.MustCompile(`(?i)\bwithout (?:citing|naming|stating|specifying|disclosing|identifying)\b`),
	regexp.MustCompile(`(?i)\b(?:is|are|were|was) (?:not|never) (?:stated|mentioned|disclosed|cited|named|specified|identified)\b`),
}

// typeRules is the ordered claim classification table. Absence is handled
// separately by absencePatterns and always precedes these.
var typeRules = []typeRule{
	{model.ClaimTypeConspiracyTheory, keywordPattern(
		"cover-up", "cover up", "covered up", "conspiracy", "big pharma",
		"they don't want you to know", "hidden agenda", "suppressed",
		"secret plan", "hiding the truth", "mainstream media won't",
		"the elites", "censored", "plandemic", "new world order",
	)},
	{model.ClaimTypeCredential, keywordPattern(
		"phd", "ph.d", "ph.d.", "m.d.", "md", "dr.", "dr", "doctor", "professor",
		"board-certified", "board certified", "certified", "degree", "graduated",
		"trained at", "harvard-trained", "years of experience", "physician",
		"surgeon", "nutritionist", "dietitian", "scientist", "credentials",
		"licensed", "fellow of",
	)},
	{model.ClaimTypePublication, keywordPattern(
		"published", "journal", "book", "bestseller", "best-selling",
		"bestselling", "author of", "wrote", "peer-reviewed", "peer reviewed",
		"article", "paper", "the lancet", "new england journal",
	)},
	{model.ClaimTypeStudy, keywordPattern(
		"study", "studies", "research", "researchers", "trial", "trials",
		"clinical", "experiment", "meta-analysis", "data shows", "survey",
		"participants", "placebo",
	)},
	{model.ClaimTypeCelebrityEndorsement, keywordPattern(
		"celebrity", "celebrities", "endorsed by", "endorses", "famous",
		"hollywood", "oprah", "athletes", "athlete", "star", "stars",
		"recommended by", "influencer", "influencers",
	)},
	{model.ClaimTypeProductEfficacy, keywordPattern(
		"cure", "cures", "cured", "heals", "heal", "boosts", "boost",
		"burns fat", "weight loss", "lose weight", "reverses", "reverse",
		"eliminates", "detox", "supplement", "works", "improves", "reduces",
		"prevents", "treats", "guaranteed", "results", "effective",
	)},
}

// typeBaseScore is the prior verifiability of each claim type
var typeBaseScore = map[model.ClaimType]float64{
	model.ClaimTypeAbsence:              0.9,
	model.ClaimTypeCredential:           0.8,
	model.ClaimTypePublication:          0.85,
	model.ClaimTypeStudy:                0.7,
	model.ClaimTypeProductEfficacy:      0.4,
	model.ClaimTypeCelebrityEndorsement: 0.5,
	model.ClaimTypeConspiracyTheory:     0.1,
	model.ClaimTypeOther:                0.3,
}

// Verifiability weights and adjustments
const (
	baseWeight        = 0.6
	specificityWeight = 0.4
	vaguePenalty      = 0.1
	yearBonus         = 0.05
	institutionBonus  = 0.05
	absenceFloor      = 0.85
)

// vagueTerms each subtract vaguePenalty once when present
var vagueTerms = []*regexp.Regexp{
	keywordPattern("a study", "one study", "a recent study"),
	keywordPattern("studies show", "studies have shown", "research shows", "research suggests"),
	keywordPattern("experts", "scientists say", "doctors say"),
	keywordPattern("many", "some", "most people", "everyone knows"),
	keywordPattern("they say", "it is said", "people say"),
}

var institutionPattern = keywordPattern(
	"university", "institute", "college", "hospital", "clinic", "agency",
	"administration", "foundation", "fda", "nih", "cdc", "harvard",
	"stanford", "oxford", "cambridge", "mayo clinic", "johns hopkins",
	"world health organization",
)

// Specificity signal patterns
var (
	yearPattern     = regexp.MustCompile(`\b(?:1[89]\d{2}|20\d{2})\b`)
	monthPattern    = keywordPattern("january", "february", "march", "april", "june", "july", "august", "september", "october", "november", "december")
	relativePattern = regexp.MustCompile(`(?i)\b(?:last (?:year|month|week|decade)|this (?:year|month|week)|yesterday|recently|\d+ (?:years?|months?|weeks?|days?) ago|in the past \d+ (?:years?|months?))\b`)
	percentPattern  = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*(?:%|percent\b)`)
	numberPattern   = regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`)
)

// attributionRules are additive attribution signals
var attributionRules = []struct {
	pattern *regexp.Regexp
	points  int
}{
	{keywordPattern("according to"), 15},
	{keywordPattern("published in"), 15},
	{keywordPattern("researchers at", "study by", "scientists at", "a team at"), 10},
	{keywordPattern("journal", "the lancet", "nejm", "jama", "bmj", "nature"), 10},
	{keywordPattern("said", "says", "stated", "reported"), 5},
}

// Sub-score increments
const (
	properNounPoints = 10
	yearPoints       = 15
	monthPoints      = 10
	relativePoints   = 5
	percentPoints    = 10
	numberPoints     = 5
)

// absenceBreakdown is assigned to every absence claim. Absence claims name
// a concrete omission in a concrete source, so they are treated as specific.
var absenceBreakdown = model.SpecificityBreakdown{
	ProperNouns:  20,
	Temporal:     20,
	Quantitative: 20,
	Attribution:  25,
}
