package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/ppiankov/veracity/internal/util"
	"github.com/ppiankov/veracity/internal/worker"
)

const (
	fetchMaxRetries = 3

	// Readability output shorter than this is usually navigation chrome
	minArticleLength = 100
)

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// ErrDisallowed is returned when robots.txt forbids fetching a page
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Fetcher fetches evidence pages whose search snippet was empty
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
}

// NewFetcher creates a new Fetcher. When respectRobots is set, every fetch is
// checked against the host's robots.txt first.
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, respectRobots bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	client := util.NewHTTPClient(httpProxy, httpsProxy, noProxy)
	client.Timeout = timeout
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  userAgent,
		maxBytes:   maxBytes,
	}
	if respectRobots {
		f.robots = util.NewRobotsChecker(client, userAgent, timeout)
	}
	return f
}

// WithLimiter shares a per-host rate limiter with the fetcher
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// FetchResult contains the fetched HTML and response metadata
type FetchResult struct {
	HTML        string
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetch retrieves a page once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		HTML:        string(body),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry fetches a page, retrying transient failures with
// exponential backoff. Robots.txt and the rate limiter are consulted first.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		crawlDelay = delay
	}

	var lastErr error
	for attempt := 0; attempt < fetchMaxRetries; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.WaitWithDelay(ctx, rawURL, crawlDelay); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
		if attempt < fetchMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			fetchSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

// FetchText fetches a page and extracts its readable text
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return ExtractText(result.HTML, result.FinalURL), nil
}

// isRetryableFetchError returns true for 5xx, 429 and transient network errors
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())

	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		code, convErr := strconv.Atoi(strings.Fields(rest + " ")[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
	}

	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}

// ExtractText returns the main article text of an HTML page, falling back to
// all visible text when readability finds no article
func ExtractText(rawHTML, pageURL string) string {
	parsed, _ := url.Parse(pageURL)
	if parsed != nil {
		article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
		if err == nil {
			text := collapseSpace(article.TextContent)
			if len(text) > minArticleLength {
				return text
			}
		}
	}
	return visibleText(rawHTML)
}

var invisibleTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

func visibleText(rawHTML string) string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if invisibleTags[string(name)] {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if invisibleTags[string(name)] && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
