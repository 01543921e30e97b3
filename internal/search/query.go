package search

import (
	"strings"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
	"github.com/ppiankov/veracity/internal/validate"
)

// QueryKind tells a backend what sort of evidence a query is after
type QueryKind string

const (
	QueryClaim        QueryKind = "claim"
	QueryPressRelease QueryKind = "press_release"
	QueryScientific   QueryKind = "scientific"
	QueryCounter      QueryKind = "counter"
)

// Query is one search issued for a claim
type Query struct {
	Text    string    `json:"text"`
	Subject string    `json:"subject,omitempty"`
	Kind    QueryKind `json:"kind"`
}

const (
	maxQueryRunes   = 200
	maxSubjectTerms = 3
)

// BuildQueries derives the searches for one claim: the claim itself, plus
// press-release, study and debunk searches about its subject
func BuildQueries(claim model.Claim, video model.Video) []Query {
	text := strings.TrimSpace(claim.Text)
	if text == "" {
		return nil
	}

	queries := []Query{{Text: util.Truncate(text, maxQueryRunes), Kind: QueryClaim}}

	subject := Subject(claim.Text, video.Title)
	if subject == "" {
		return queries
	}
	queries = append(queries,
		Query{Text: subject + " press release", Subject: subject, Kind: QueryPressRelease},
		Query{Text: subject + " study", Subject: subject, Kind: QueryScientific},
		Query{Text: subject + " debunked", Subject: subject, Kind: QueryCounter},
	)
	return queries
}

// Subject picks what a claim is about: a brand from the video title that
// the claim mentions, else the first title brand, else the claim's
// leading key terms
func Subject(claimText, videoTitle string) string {
	brands := validate.BrandTerms(videoTitle)
	for _, b := range brands {
		if util.ContainsFold(claimText, b) {
			return b
		}
	}
	if len(brands) > 0 {
		return brands[0]
	}

	terms := validate.KeyTerms(claimText)
	if len(terms) > maxSubjectTerms {
		terms = terms[:maxSubjectTerms]
	}
	return strings.Join(terms, " ")
}
