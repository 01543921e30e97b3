package search

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// Snippets longer than this are cut before they reach the grouper
const maxSnippetRunes = 1000

var strictPolicy = bluemonday.StrictPolicy()

// Sanitize strips all markup from backend text and returns plain,
// whitespace-collapsed text
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return collapseSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func sanitizeEvidence(r model.RawEvidence) model.RawEvidence {
	r.Title = Sanitize(r.Title)
	r.Text = util.Truncate(Sanitize(r.Text), maxSnippetRunes)
	r.URL = strings.TrimSpace(r.URL)
	return r
}
