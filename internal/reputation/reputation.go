// Package reputation looks up channel credibility from a YAML table
package reputation

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// Multiplier bounds
const (
	minMultiplier      = 0.5
	maxMultiplier      = 1.5
	trustedInvestBoost = 1.1
)

// Service looks up the reputation of a channel. Unknown channels return
// the neutral reputation, never an error.
type Service interface {
	Lookup(ctx context.Context, channel string) (model.ChannelReputation, error)
}

// Table is a static reputation table keyed by normalized channel name
type Table struct {
	entries map[string]model.ChannelReputation
	cache   cache.Cache
	ttl     time.Duration
}

// tableFile is the on-disk YAML layout
type tableFile struct {
	Channels map[string]model.ChannelReputation `yaml:"channels"`
}

// NewTable creates a table from in-memory entries
func NewTable(entries map[string]model.ChannelReputation) *Table {
	t := &Table{
		entries: make(map[string]model.ChannelReputation, len(entries)),
		cache:   cache.Noop{},
	}
	for name, rep := range entries {
		t.entries[util.NormalizeKey(name)] = clampReputation(rep)
	}
	return t
}

// LoadTable reads a YAML reputation table. An empty path yields an empty
// table, so every channel is neutral.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return NewTable(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reputation table: %w", err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse reputation table: %w", err)
	}

	return NewTable(file.Channels), nil
}

// WithCache memoizes lookups for the given TTL
func (t *Table) WithCache(c cache.Cache, ttl time.Duration) *Table {
	t.cache = c
	t.ttl = ttl
	return t
}

// Lookup returns the reputation for a channel
func (t *Table) Lookup(ctx context.Context, channel string) (model.ChannelReputation, error) {
	if err := ctx.Err(); err != nil {
		return model.NeutralReputation(), err
	}

	name := util.NormalizeKey(channel)
	if name == "" {
		return model.NeutralReputation(), nil
	}

	key := cache.Key("reputation", name)
	var rep model.ChannelReputation
	if cache.GetJSON(t.cache, key, &rep) {
		return rep, nil
	}

	rep, ok := t.entries[name]
	if !ok {
		rep = model.NeutralReputation()
	}
	_ = cache.SetJSON(t.cache, key, rep, t.ttl)
	return rep, nil
}

// Len returns the number of channels in the table
func (t *Table) Len() int {
	return len(t.entries)
}

// Multiplier converts a reputation into the credibility multiplier used by
// the probability engine: 0.5 for the least credible, 1.0 for neutral,
// 1.5 for the most credible, with a further boost for trusted investigators.
func Multiplier(rep model.ChannelReputation) float64 {
	m := math.Max(minMultiplier, math.Min(maxMultiplier, 0.5+rep.Score))
	if rep.IsTrustedInvestigator {
		m *= trustedInvestBoost
	}
	return m
}

func clampReputation(rep model.ChannelReputation) model.ChannelReputation {
	rep.Score = math.Max(0, math.Min(1, rep.Score))
	if strings.TrimSpace(rep.Category) == "" {
		rep.Category = "unknown"
	}
	return rep
}
