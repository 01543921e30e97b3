package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
	"github.com/ppiankov/veracity/internal/worker"
)

// Concurrent (query, backend) searches per claim
const maxConcurrentSearches = 4

// Gatherer fans a claim's queries out to every backend and merges the hits
type Gatherer struct {
	searchers    []Searcher
	cache        cache.Cache
	cacheTTL     time.Duration
	fetcher      *Fetcher
	fetchWorkers int
	timeout      time.Duration
}

// NewGatherer creates a gatherer. A nil fetcher disables page enrichment.
func NewGatherer(searchers []Searcher, c cache.Cache, cacheTTL time.Duration, fetcher *Fetcher, cfg model.SearchConfig) *Gatherer {
	if c == nil {
		c = cache.Noop{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = model.DefaultConfig().Search.Timeout
	}
	return &Gatherer{
		searchers:    searchers,
		cache:        c,
		cacheTTL:     cacheTTL,
		fetcher:      fetcher,
		fetchWorkers: cfg.FetchWorkers,
		timeout:      timeout,
	}
}

// NewGathererFromConfig wires the configured endpoints and feeds behind one
// shared HTTP client and per-host rate limiter
func NewGathererFromConfig(cfg *model.Config, c cache.Cache) *Gatherer {
	client := util.NewHTTPClient(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	client.Timeout = cfg.Search.Timeout
	limiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst)

	var searchers []Searcher
	for _, ep := range cfg.Search.Endpoints {
		searchers = append(searchers, NewHTTPSearcher(ep, client, limiter, cfg.HTTP, cfg.Search.MaxResults))
	}
	if len(cfg.Search.Feeds) > 0 {
		searchers = append(searchers, NewFeedSearcher(cfg.Search.Feeds, client, limiter, cfg.HTTP.UserAgent, c, cfg.Cache.MemoryTTL))
	}

	var fetcher *Fetcher
	if cfg.Search.FetchPages {
		fetcher = NewFetcher(cfg.Search.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.RespectRobots,
			cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).WithLimiter(limiter)
	}

	return NewGatherer(searchers, c, cfg.Cache.DiskTTL, fetcher, cfg.Search)
}

// Backends returns the names of the configured searchers
func (g *Gatherer) Backends() []string {
	names := make([]string, len(g.searchers))
	for i, s := range g.searchers {
		names[i] = s.Name()
	}
	return names
}

// Gather collects deduplicated raw evidence for one claim. Backend
// failures are logged and contribute nothing, so the result may be empty.
func (g *Gatherer) Gather(ctx context.Context, claim model.Claim, video model.Video) []model.RawEvidence {
	queries := BuildQueries(claim, video)
	if len(queries) == 0 || len(g.searchers) == 0 {
		return nil
	}

	// One slot per (query, backend) keeps the merged order deterministic
	slots := make([][]model.RawEvidence, len(queries)*len(g.searchers))

	var eg errgroup.Group
	eg.SetLimit(maxConcurrentSearches)
	for qi, q := range queries {
		for si, s := range g.searchers {
			idx := qi*len(g.searchers) + si
			eg.Go(func() error {
				slots[idx] = g.search(ctx, s, q)
				return nil
			})
		}
	}
	_ = eg.Wait()

	var merged []model.RawEvidence
	seen := make(map[uint64]bool)
	for _, hits := range slots {
		for _, h := range hits {
			key := dedupeKey(h)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, h)
		}
	}

	g.enrich(ctx, merged)

	log.Debug("Gathered %d evidence items for %q from %d queries", len(merged), util.Truncate(claim.Text, 60), len(queries))
	return merged
}

func (g *Gatherer) search(ctx context.Context, s Searcher, q Query) []model.RawEvidence {
	key := cache.Key("search", s.Name(), string(q.Kind), q.Text)
	var hits []model.RawEvidence
	if cache.GetJSON(g.cache, key, &hits) {
		return hits
	}

	sctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := s.Search(sctx, q)
	if err != nil {
		err = fmt.Errorf("%w: %s: %q: %v", ErrEvidenceGather, s.Name(), q.Text, err)
		log.Warn("%v", err)
		return nil
	}

	for _, r := range raw {
		r = sanitizeEvidence(r)
		if r.URL == "" && r.Text == "" {
			continue
		}
		hits = append(hits, r)
	}

	if err := cache.SetJSON(g.cache, key, hits, g.cacheTTL); err != nil {
		log.Debug("Search cache write failed: %v", err)
	}
	return hits
}

// enrich fills empty snippets from the pages themselves
func (g *Gatherer) enrich(ctx context.Context, items []model.RawEvidence) {
	if g.fetcher == nil {
		return
	}

	var pending []int
	for i, it := range items {
		if it.Text == "" && it.URL != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	texts := worker.Map(ctx, g.fetchWorkers, pending, func(ctx context.Context, i int) string {
		text, err := g.fetcher.FetchText(ctx, items[i].URL)
		if err != nil {
			log.Debug("Page fetch failed for %s: %v", items[i].URL, err)
			return ""
		}
		return util.Truncate(text, maxSnippetRunes)
	})
	for j, i := range pending {
		items[i].Text = texts[j]
	}
}

// dedupeKey hashes the normalized URL, or the normalized text for URL-less hits
func dedupeKey(r model.RawEvidence) uint64 {
	if r.URL != "" {
		return xxhash.ChecksumString64("u:" + normalizeURL(r.URL))
	}
	return xxhash.ChecksumString64("t:" + util.NormalizeKey(r.Text))
}

// normalizeURL drops the scheme, "www.", fragments, tracking parameters and
// trailing slashes so the same page found by two backends collapses
func normalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	params := u.Query()
	for k := range params {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			params.Del(k)
		}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")
	if q := params.Encode(); q != "" {
		return host + path + "?" + q
	}
	return host + path
}
