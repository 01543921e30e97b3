package extract

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/veracity/internal/model"
)

const (
	minSentenceLen = 20
	maxSentenceLen = 500
)

// TranscriptExtractor pulls candidate claims out of a transcript by
// keyword matching. Transcripts may be plain text, optionally with
// "[mm:ss] Speaker: text" lines, or HTML.
type TranscriptExtractor struct {
	path     string
	keywords []string
}

// NewTranscriptExtractor creates an extractor for the given transcript file
func NewTranscriptExtractor(path string) *TranscriptExtractor {
	return &TranscriptExtractor{
		path: path,
		keywords: []string{
			"cure", "cured", "heal", "proven", "clinically", "study", "studies",
			"research", "according to", "scientist", "doctor", "dr.", "professor",
			"university", "published", "journal", "fda", "approved", "percent", "%",
			"guarantee", "reverse", "eliminate", "million", "billion", "years",
			"they don't want", "won't tell", "hiding", "cover up", "endorsed",
			"recommended", "certified", "board-certified", "harvard", "nobel",
			"not mentioned", "no mention", "never mention",
		},
	}
}

// Extract reads the transcript and returns matching sentences in order
func (e *TranscriptExtractor) Extract(ctx context.Context, video model.Video) ([]model.RawClaim, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	claims, err := e.ExtractText(string(data))
	if err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, ErrNoClaimsExtracted
	}
	return claims, nil
}

// ExtractText extracts claims from transcript content
func (e *TranscriptExtractor) ExtractText(content string) ([]model.RawClaim, error) {
	if looksLikeHTML(content) {
		doc, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return nil, err
		}
		content = extractVisibleText(doc)
	}

	var claims []model.RawClaim
	for _, line := range transcriptLines(content) {
		for _, sentence := range splitSentences(line.text) {
			if !e.matches(sentence) {
				continue
			}
			claims = append(claims, model.RawClaim{
				Text:      sentence,
				Timestamp: line.timestamp,
				Speaker:   line.speaker,
			})
		}
	}

	return dedupeClaims(claims), nil
}

func (e *TranscriptExtractor) matches(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, keyword := range e.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

var (
	htmlTagPattern = regexp.MustCompile(`(?i)<(html|body|p|div|span|br)\b`)
	cuePattern     = regexp.MustCompile(`^\[?(\d{1,2}:\d{2}(?::\d{2})?)\]?\s*`)
	speakerPattern = regexp.MustCompile(`^([A-Z][\w.'-]*(?: [A-Z][\w.'-]*){0,3}):\s+`)
)

func looksLikeHTML(content string) bool {
	return htmlTagPattern.MatchString(content)
}

type transcriptLine struct {
	timestamp string
	speaker   string
	text      string
}

// transcriptLines splits content on newlines and peels off "[mm:ss]" and
// "Speaker:" prefixes. A line without a cue continues the previous cue.
func transcriptLines(content string) []transcriptLine {
	var lines []transcriptLine
	var timestamp, speaker string

	for _, raw := range strings.Split(content, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if m := cuePattern.FindStringSubmatch(text); m != nil {
			timestamp = m[1]
			speaker = ""
			text = text[len(m[0]):]
		}
		if m := speakerPattern.FindStringSubmatch(text); m != nil {
			speaker = m[1]
			text = text[len(m[0]):]
		}
		if text != "" {
			lines = append(lines, transcriptLine{timestamp: timestamp, speaker: speaker, text: text})
		}
	}
	return lines
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		// Block elements end a transcript line
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "li", "br", "h1", "h2", "h3":
				buf.WriteString("\n")
			}
		}
	}

	walk(n)
	return buf.String()
}

var abbreviations = map[string]bool{
	"dr": true, "mr": true, "mrs": true, "ms": true, "prof": true,
	"st": true, "vs": true, "etc": true, "inc": true, "jr": true, "sr": true,
	"e.g": true, "i.e": true, "u.s": true,
}

// splitSentences splits text into sentences, keeping those of a plausible
// claim length. Periods after known abbreviations do not end a sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if len(sentence) >= minSentenceLen && len(sentence) <= maxSentenceLen {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for i, r := range text {
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(text) && text[i+1] != ' ' && text[i+1] != '\t' {
			continue
		}
		if r == '.' && endsWithAbbreviation(current.String()) {
			continue
		}
		flush()
	}
	if current.Len() > 0 {
		flush()
	}

	return sentences
}

func endsWithAbbreviation(s string) bool {
	s = strings.TrimSuffix(s, ".")
	idx := strings.LastIndexAny(s, " \t(")
	word := strings.ToLower(s[idx+1:])
	return abbreviations[word]
}

// dedupeClaims removes duplicate claims, keeping the first occurrence
func dedupeClaims(claims []model.RawClaim) []model.RawClaim {
	seen := make(map[string]bool)
	var unique []model.RawClaim

	for _, claim := range claims {
		key := strings.ToLower(strings.TrimSpace(claim.Text))
		if !seen[key] {
			seen[key] = true
			unique = append(unique, claim)
		}
	}

	return unique
}
