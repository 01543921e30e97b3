package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// MalformedExplanation is attached to responses whose output could not be parsed
const MalformedExplanation = "The verification model returned output that could not be parsed; the default uncertain estimate was used."

// ParseVerification decodes model output into a response. Output that fails
// a strict parse goes through a repair pass. When both fail the returned
// response still carries the default draft and the raw text, together with
// an error wrapping ErrMalformedOutput.
func ParseVerification(raw string) (*VerifyResponse, error) {
	text := stripMarkdownFences(raw)

	fields, err := decodeObject(text)
	repaired := false
	if err != nil {
		for _, candidate := range repairCandidates(text) {
			if f, rerr := decodeObject(candidate); rerr == nil {
				fields, err, repaired = f, nil, true
				break
			}
		}
	}
	if err == nil {
		var resp *VerifyResponse
		resp, err = fromFields(fields)
		if err == nil {
			resp.Raw = raw
			resp.Repaired = repaired
			return resp, nil
		}
	}

	return &VerifyResponse{
		Explanation: MalformedExplanation,
		Draft:       model.DefaultDraftDistribution(),
		Raw:         raw,
	}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
}

func decodeObject(s string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	return fields, nil
}

// repairCandidates returns progressively more aggressive repairs of s
func repairCandidates(s string) []string {
	start := strings.Index(s, "{")
	if start < 0 {
		return nil
	}

	var candidates []string
	if end := strings.LastIndex(s, "}"); end > start {
		candidates = append(candidates, repairJSON(s[start:end+1]))
	}
	candidates = append(candidates, completeJSON(repairJSON(s[start:])))
	return candidates
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

func repairJSON(s string) string {
	s = fixInvalidJSONEscapes(s)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// fenceRe matches a markdown code fence block (``` or ~~~) with an optional
// language tag and captures the content between the fences.
var fenceRe = regexp.MustCompile("(?s)^(?:`{3}|~{3})[^\\n]*\\n(.*?)(?:`{3}|~{3})\\s*$")

// openFenceRe matches only an opening fence line, left behind by truncated output
var openFenceRe = regexp.MustCompile("^(?:`{3}|~{3})[^\\n]*\\n")

func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := openFenceRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[loc[1]:])
	}
	return s
}

// invalidJSONEscapeRe matches a backslash followed by a character that is not
// a valid JSON escape
var invalidJSONEscapeRe = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

func fixInvalidJSONEscapes(s string) string {
	return invalidJSONEscapeRe.ReplaceAllString(s, `\\$1`)
}

// completeJSON closes an open string and any open arrays or objects
func completeJSON(s string) string {
	var closers []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			closers = append(closers, '}')
		case '[':
			closers = append(closers, ']')
		case '}', ']':
			if len(closers) > 0 {
				closers = closers[:len(closers)-1]
			}
		}
	}

	result := s
	if inString {
		if escaped {
			result += `\`
		}
		result += `"`
	}
	result = strings.TrimRight(strings.TrimSpace(result), ",:")

	var b strings.Builder
	b.WriteString(result)
	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteByte(closers[i])
	}
	return b.String()
}

// fromFields maps a decoded object onto a response. Keys are matched
// case-insensitively; percentages are scaled to 0-1.
func fromFields(fields map[string]any) (*VerifyResponse, error) {
	rawDist, ok := lookup(fields, "probability_distribution", "distribution", "probabilities")
	if !ok {
		return nil, fmt.Errorf("missing probability_distribution")
	}
	distFields, ok := rawDist.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("probability_distribution is not an object")
	}

	var values [3]float64
	for i, key := range []string{"true", "false", "uncertain"} {
		v, ok := lookup(distFields, key)
		if !ok {
			return nil, fmt.Errorf("missing %s probability", strings.ToUpper(key))
		}
		p, ok := probability(v)
		if !ok || p < 0 {
			return nil, fmt.Errorf("invalid %s probability: %v", strings.ToUpper(key), v)
		}
		values[i] = p
	}

	if values[0] > 1 || values[1] > 1 || values[2] > 1 {
		for i := range values {
			values[i] /= 100
		}
	}
	d := model.Distribution{True: values[0], False: values[1], Uncertain: values[2]}
	if d.Sum() == 0 {
		return nil, fmt.Errorf("probability_distribution is all zero")
	}

	n := d.Normalize()
	draft, err := model.NewDistribution(n.True, n.False, n.Uncertain)
	if err != nil {
		return nil, fmt.Errorf("probability_distribution: %w", err)
	}

	resp := &VerifyResponse{Draft: draft}
	if v, ok := lookup(fields, "explanation", "reasoning"); ok {
		resp.Explanation, _ = v.(string)
	}
	if v, ok := lookup(fields, "sources", "source_urls"); ok {
		resp.SourceURLs = stringList(v)
	}
	return resp, nil
}

func lookup(fields map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		for k, v := range fields {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	}
	return nil, false
}

func probability(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		percent := strings.HasSuffix(s, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		if percent {
			f /= 100
		}
		return f, true
	default:
		return 0, false
	}
}

// stringList accepts a string, a list of strings, or a list of {"url": ...} objects
func stringList(v any) []string {
	var out []string
	switch val := v.(type) {
	case string:
		if val != "" {
			out = append(out, val)
		}
	case []any:
		for _, item := range val {
			switch it := item.(type) {
			case string:
				if it != "" {
					out = append(out, it)
				}
			case map[string]any:
				if u, ok := lookup(it, "url"); ok {
					if s, ok := u.(string); ok && s != "" {
						out = append(out, s)
					}
				}
			}
		}
	}
	return out
}
