// Package search gathers raw evidence for claims from JSON search
// backends and press-release feeds.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/validate"
	"github.com/ppiankov/veracity/internal/worker"
)

// ErrEvidenceGather marks a search backend failure. A failed backend
// contributes no evidence; it never fails the claim.
var ErrEvidenceGather = errors.New("evidence gathering failed")

// Searcher is a source of raw evidence
type Searcher interface {
	Name() string
	Search(ctx context.Context, q Query) ([]model.RawEvidence, error)
}

// HTTPSearcher queries a JSON search endpoint:
//
//	GET <url>?q=<text>&kind=<kind>&limit=<n>  ->  {"results": [...]}
type HTTPSearcher struct {
	name       string
	endpoint   string
	sourceType string
	apiKey     string
	userAgent  string
	maxResults int
	maxBytes   int64
	client     *http.Client
	limiter    *worker.Limiter
}

type searchResponse struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	SourceType string `json:"source_type"`
	ViewCount  int64  `json:"view_count"`
}

// NewHTTPSearcher creates a searcher for one configured endpoint.
// The API key is read from the endpoint's environment variable.
func NewHTTPSearcher(ep model.SearchEndpoint, client *http.Client, limiter *worker.Limiter, httpCfg model.HTTPConfig, maxResults int) *HTTPSearcher {
	name := ep.Name
	if name == "" {
		name = validate.Host(ep.URL)
	}
	sourceType := ep.SourceType
	if sourceType == "" {
		sourceType = model.SourceTypeWeb
	}
	var apiKey string
	if ep.APIKeyEnv != "" {
		apiKey = os.Getenv(ep.APIKeyEnv)
	}

	return &HTTPSearcher{
		name:       name,
		endpoint:   ep.URL,
		sourceType: sourceType,
		apiKey:     apiKey,
		userAgent:  httpCfg.UserAgent,
		maxResults: maxResults,
		maxBytes:   httpCfg.MaxBodyBytes,
		client:     client,
		limiter:    limiter,
	}
}

// Name returns the backend name
func (s *HTTPSearcher) Name() string {
	return s.name
}

// Search runs one query against the endpoint
func (s *HTTPSearcher) Search(ctx context.Context, q Query) ([]model.RawEvidence, error) {
	reqURL, err := s.buildURL(q)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, reqURL); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBytes)
	}
	var decoded searchResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var out []model.RawEvidence
	for _, hit := range decoded.Results {
		if s.maxResults > 0 && len(out) >= s.maxResults {
			break
		}
		if hit.URL == "" && hit.Snippet == "" && hit.Text == "" {
			continue
		}
		out = append(out, s.toEvidence(hit))
	}
	return out, nil
}

func (s *HTTPSearcher) buildURL(q Query) (string, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	params := u.Query()
	params.Set("q", q.Text)
	params.Set("kind", string(q.Kind))
	if s.maxResults > 0 {
		params.Set("limit", strconv.Itoa(s.maxResults))
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (s *HTTPSearcher) toEvidence(hit searchHit) model.RawEvidence {
	text := hit.Snippet
	if text == "" {
		text = hit.Text
	}
	sourceType := hit.SourceType
	if sourceType == "" {
		sourceType = s.sourceType
	}
	sourceName := hit.Source
	if sourceName == "" {
		sourceName = validate.Host(hit.URL)
	}
	if sourceName == "" {
		sourceName = s.name
	}

	return model.RawEvidence{
		SourceName: sourceName,
		SourceType: sourceType,
		URL:        hit.URL,
		Title:      hit.Title,
		Text:       text,
		ViewCount:  hit.ViewCount,
	}
}
