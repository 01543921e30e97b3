// Package validate classifies raw evidence into independence groups and
// weights each item by how much it can validate a claim.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// Source type hints that mark counter-narrative video commentary
var videoSourceTypes = map[string]bool{
	model.SourceTypeVideo: true,
	"video":               true,
	"youtube":             true,
}

// GroupContext is what evidence is judged against
type GroupContext struct {
	Claim string
	Video model.Video
}

// Grouper buckets evidence and assigns validation power
type Grouper struct {
	domains          *DomainClassifier
	overlapThreshold int
	partialPower     float64
}

// NewGrouper creates a new grouper
func NewGrouper(cfg *model.GroupingConfig) *Grouper {
	if cfg == nil {
		cfg = &model.DefaultConfig().Grouping
	}
	threshold := cfg.OverlapThreshold
	if threshold <= 0 {
		threshold = model.DefaultConfig().Grouping.OverlapThreshold
	}

	return &Grouper{
		domains:          NewDomainClassifier(cfg),
		overlapThreshold: threshold,
		partialPower:     cfg.PartialPower,
	}
}

// Group classifies each raw item, preserving input order within groups.
// Never fails: unrecognized items are independent.
func (g *Grouper) Group(raw []model.RawEvidence, gc GroupContext) model.GroupedEvidence {
	var grouped model.GroupedEvidence
	refs := newSelfRefTerms(gc)

	for _, r := range raw {
		item := model.EvidenceItem{
			SourceName:      r.SourceName,
			SourceType:      r.SourceType,
			URL:             r.URL,
			Title:           r.Title,
			Text:            r.Text,
			ViewCount:       r.ViewCount,
			ValidationPower: 1.0,
		}

		sourceType := strings.ToLower(strings.TrimSpace(r.SourceType))
		class := g.domains.Classify(r.URL)

		switch {
		case videoSourceTypes[sourceType] || class == DomainVideo:
			item.Group = model.GroupYouTubeCounter
			grouped.YouTubeCounter = append(grouped.YouTubeCounter, item)

		case sourceType == model.SourceTypeScientific || class == DomainScientific:
			item.Group = model.GroupScientific
			item.SupportsClaim = SupportsClaim(r.Text)
			grouped.Scientific = append(grouped.Scientific, item)

		case class == DomainGovernment:
			// Official sources are never promotional, whatever the backend says
			item.Group = model.GroupIndependent
			item.Official = true
			grouped.Independent = append(grouped.Independent, item)

		case sourceType == model.SourceTypePressRelease || class == DomainPressRelease:
			item.Group = model.GroupPressRelease
			item.ValidationPower, item.SelfReferential = g.pressReleasePower(r, refs)
			grouped.PressRelease = append(grouped.PressRelease, item)

		default:
			item.Group = model.GroupIndependent
			grouped.Independent = append(grouped.Independent, item)
		}
	}

	return grouped
}

// pressReleasePower scores a press release by how closely it is tied to
// the subject of the video
func (g *Grouper) pressReleasePower(r model.RawEvidence, refs selfRefTerms) (float64, bool) {
	haystack := strings.Join([]string{r.URL, r.Title, r.Text}, " ")

	if refs.channel != "" && util.ContainsFold(haystack, refs.channel) {
		return 0.0, true
	}
	for _, brand := range refs.brands {
		if util.ContainsFold(haystack, brand) {
			return 0.0, true
		}
	}

	shared := 0
	normalized := " " + util.NormalizeKey(haystack) + " "
	for _, term := range refs.keyTerms {
		if strings.Contains(normalized, " "+term+" ") {
			shared++
		}
	}
	if shared >= g.overlapThreshold {
		return g.partialPower, false
	}
	return 1.0, false
}

// selfRefTerms are the subject markers a press release is checked against
type selfRefTerms struct {
	channel  string
	brands   []string
	keyTerms []string
}

func newSelfRefTerms(gc GroupContext) selfRefTerms {
	return selfRefTerms{
		channel:  strings.TrimSpace(gc.Video.Channel),
		brands:   BrandTerms(gc.Video.Title),
		keyTerms: KeyTerms(gc.Claim + " " + gc.Video.Title),
	}
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true, "that": true,
	"from": true, "your": true, "you": true, "what": true, "how": true, "why": true,
	"new": true, "free": true, "best": true, "truth": true, "about": true,
	"review": true, "watch": true, "video": true, "official": true, "omg": true,
	"wow": true, "must": true, "never": true, "ever": true, "will": true, "they": true,
	"their": true, "there": true, "these": true, "those": true, "which": true,
	"would": true, "could": true, "should": true, "because": true, "really": true,
	"people": true, "things": true, "after": true, "before": true, "every": true,
	"doctors": true, "doctor": true, "study": true, "studies": true, "claims": true,
}

var titleTokenPattern = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'™®-]*[™®]?`)

// BrandTerms extracts product and brand names from a video title:
// trademarked tokens, CamelCase tokens, all-caps tokens, and capitalized
// words that are not sentence-initial when the title is not in title case.
func BrandTerms(title string) []string {
	tokens := titleTokenPattern.FindAllString(title, -1)

	capitalized := 0
	for _, tok := range tokens {
		if r, _ := utf8.DecodeRuneInString(tok); unicode.IsUpper(r) {
			capitalized++
		}
	}
	titleCase := len(tokens) > 0 && capitalized*2 > len(tokens)

	var brands []string
	seen := make(map[string]bool)
	for i, tok := range tokens {
		trademarked := strings.ContainsAny(tok, "™®")
		word := strings.TrimRight(tok, "™®")
		if utf8.RuneCountInString(word) < 3 || stopwords[strings.ToLower(word)] {
			continue
		}

		first, _ := utf8.DecodeRuneInString(word)
		isBrand := trademarked || isCamelCase(word) || isAllCaps(word) ||
			(!titleCase && i > 0 && unicode.IsUpper(first))
		if !isBrand {
			continue
		}

		key := strings.ToLower(word)
		if !seen[key] {
			seen[key] = true
			brands = append(brands, word)
		}
	}
	return brands
}

func isCamelCase(word string) bool {
	for i, r := range word {
		if i > 0 && unicode.IsUpper(r) {
			prev, _ := utf8.DecodeLastRuneInString(word[:i])
			if unicode.IsLower(prev) {
				return true
			}
		}
	}
	return false
}

func isAllCaps(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

// KeyTerms extracts distinctive lowercased words (5+ letters, no stopwords)
// in first-seen order
func KeyTerms(text string) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(util.NormalizeKey(text)) {
		if utf8.RuneCountInString(word) < 5 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		terms = append(terms, word)
	}
	return terms
}

var (
	negativeFindings = regexp.MustCompile(`(?i)\b(?:no significant|not significant(?:ly)?|no evidence|insufficient evidence|limited evidence|did not|does not support|failed to|no effect|no benefit|ineffective|not effective|not associated|no association|contradicts?|refutes?|debunked|unsupported|no difference|null result)\b`)
	positiveFindings = regexp.MustCompile(`(?i)\b(?:significant(?:ly)?|effective|efficacy|evidence supports|supports|associated with|improved|improvement|reduced|reduction|demonstrated|confirms?|consistent with|benefits?|beneficial)\b`)
)

// SupportsClaim scans scientific text for positive versus negative findings.
// Negative phrases are removed before positive ones are counted, so
// "not significant" does not also count as "significant".
func SupportsClaim(text string) bool {
	negatives := len(negativeFindings.FindAllStringIndex(text, -1))
	remaining := negativeFindings.ReplaceAllString(text, " ")
	positives := len(positiveFindings.FindAllStringIndex(remaining, -1))
	return positives > negatives
}
