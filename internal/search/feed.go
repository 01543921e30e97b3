package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/log"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
	"github.com/ppiankov/veracity/internal/validate"
	"github.com/ppiankov/veracity/internal/worker"
)

const (
	maxPerFeed = 50

	// Shared key terms before a feed item counts as being about the subject
	minFeedOverlap = 2
)

// FeedSearcher scans configured press-release feeds for items about a
// query's subject. Only press-release queries are answered.
type FeedSearcher struct {
	feeds     []model.FeedSource
	client    *http.Client
	userAgent string
	limiter   *worker.Limiter
	cache     cache.Cache
	cacheTTL  time.Duration
}

type feedItem struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NewFeedSearcher creates a feed searcher. Parsed feeds are cached for cacheTTL.
func NewFeedSearcher(feeds []model.FeedSource, client *http.Client, limiter *worker.Limiter, userAgent string, c cache.Cache, cacheTTL time.Duration) *FeedSearcher {
	if c == nil {
		c = cache.Noop{}
	}
	return &FeedSearcher{
		feeds:     feeds,
		client:    client,
		userAgent: userAgent,
		limiter:   limiter,
		cache:     c,
		cacheTTL:  cacheTTL,
	}
}

// Name returns the backend name
func (f *FeedSearcher) Name() string {
	return "feeds"
}

// Search returns feed items sharing enough key terms with the query subject
func (f *FeedSearcher) Search(ctx context.Context, q Query) ([]model.RawEvidence, error) {
	if q.Kind != QueryPressRelease {
		return nil, nil
	}

	subject := q.Subject
	if subject == "" {
		subject = q.Text
	}
	terms := subjectTerms(subject)
	if len(terms) == 0 {
		return nil, nil
	}
	need := minFeedOverlap
	if len(terms) < need {
		need = len(terms)
	}

	var out []model.RawEvidence
	failed := 0
	for _, fc := range f.feeds {
		items, err := f.load(ctx, fc.URL)
		if err != nil {
			log.Warn("Failed to parse feed %s: %v", fc.URL, err)
			failed++
			continue
		}

		name := fc.Name
		if name == "" {
			name = validate.Host(fc.URL)
		}
		for _, item := range items {
			if overlap(terms, item.Title+" "+item.Content) < need {
				continue
			}
			out = append(out, model.RawEvidence{
				SourceName: name,
				SourceType: model.SourceTypePressRelease,
				URL:        item.URL,
				Title:      item.Title,
				Text:       item.Content,
			})
		}
	}

	if failed > 0 && failed == len(f.feeds) {
		return nil, fmt.Errorf("all %d feeds failed", failed)
	}
	return out, nil
}

func (f *FeedSearcher) load(ctx context.Context, feedURL string) ([]feedItem, error) {
	key := cache.Key("feed", feedURL)
	var items []feedItem
	if cache.GetJSON(f.cache, key, &items) {
		return items, nil
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, feedURL); err != nil {
			return nil, err
		}
	}

	parser := gofeed.NewParser()
	if f.client != nil {
		parser.Client = f.client
	}
	if f.userAgent != "" {
		parser.UserAgent = f.userAgent
	}

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	for _, it := range feed.Items {
		if len(items) >= maxPerFeed {
			break
		}
		if entry := parseItem(it); entry != nil {
			items = append(items, *entry)
		}
	}

	if err := cache.SetJSON(f.cache, key, items, f.cacheTTL); err != nil {
		log.Debug("Feed cache write failed for %s: %v", feedURL, err)
	}
	return items, nil
}

func parseItem(item *gofeed.Item) *feedItem {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	return &feedItem{
		URL:     itemURL,
		Title:   Sanitize(title),
		Content: Sanitize(content),
	}
}

// subjectTerms are the words a feed item must mention. Brand subjects are
// often a single short word, so anything of 3+ runes counts.
func subjectTerms(subject string) []string {
	if terms := validate.KeyTerms(subject); len(terms) > 0 {
		return terms
	}
	var terms []string
	for _, w := range strings.Fields(strings.ToLower(subject)) {
		if len([]rune(w)) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

func overlap(terms []string, text string) int {
	n := 0
	for _, t := range terms {
		if util.ContainsFold(text, t) {
			n++
		}
	}
	return n
}
