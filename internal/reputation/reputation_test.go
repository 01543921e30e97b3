package reputation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/model"
)

const sampleTable = `channels:
  "Coffeezilla":
    score: 0.9
    category: investigative
    trusted_investigator: true
  "Miracle Health Daily":
    score: 0.1
    category: wellness
  "Overconfident":
    score: 3
`

func writeTable(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reputation.yaml")
	if err := os.WriteFile(path, []byte(sampleTable), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTable_Lookup(t *testing.T) {
	table, err := LoadTable(writeTable(t))
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if table.Len() != 3 {
		t.Fatalf("Expected 3 channels, got %d", table.Len())
	}

	ctx := context.Background()

	rep, err := table.Lookup(ctx, "  coffeezilla ")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if rep.Score != 0.9 || !rep.IsTrustedInvestigator || rep.Category != "investigative" {
		t.Errorf("Unexpected reputation %+v", rep)
	}

	rep, _ = table.Lookup(ctx, "Miracle Health Daily")
	if rep.Score != 0.1 || rep.IsTrustedInvestigator {
		t.Errorf("Unexpected reputation %+v", rep)
	}

	rep, _ = table.Lookup(ctx, "Overconfident")
	if rep.Score != 1 || rep.Category != "unknown" {
		t.Errorf("Expected clamped score and default category, got %+v", rep)
	}

	rep, _ = table.Lookup(ctx, "Never Heard Of It")
	if rep != model.NeutralReputation() {
		t.Errorf("Expected neutral reputation, got %+v", rep)
	}
}

func TestLoadTable_Errors(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("channels: [unclosed"), 0644)
	if _, err := LoadTable(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}

	table, err := LoadTable("")
	if err != nil || table.Len() != 0 {
		t.Errorf("Expected empty table for empty path, got %v %v", table, err)
	}
}

func TestTable_CachedLookup(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute, time.Minute)
	table := NewTable(map[string]model.ChannelReputation{
		"Acme": {Score: 0.7, Category: "news"},
	}).WithCache(mem, time.Minute)

	first, _ := table.Lookup(context.Background(), "Acme")
	if mem.Len() != 1 {
		t.Fatalf("Expected lookup to be cached, got %d entries", mem.Len())
	}

	// The cached entry is served even after the table changes
	table.entries = nil
	second, _ := table.Lookup(context.Background(), "Acme")
	if first != second {
		t.Errorf("Expected cached reputation %+v, got %+v", first, second)
	}
}

func TestTable_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := NewTable(nil).Lookup(ctx, "x")
	if err == nil {
		t.Error("Expected context error")
	}
	if rep != model.NeutralReputation() {
		t.Errorf("Expected neutral reputation on error, got %+v", rep)
	}
}

func TestMultiplier(t *testing.T) {
	tests := []struct {
		rep      model.ChannelReputation
		expected float64
	}{
		{model.NeutralReputation(), 1.0},
		{model.ChannelReputation{Score: 0}, 0.5},
		{model.ChannelReputation{Score: 1}, 1.5},
		{model.ChannelReputation{Score: 0.9, IsTrustedInvestigator: true}, 1.4 * 1.1},
	}

	for _, tt := range tests {
		if got := Multiplier(tt.rep); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Multiplier(%+v) = %.3f, want %.3f", tt.rep, got, tt.expected)
		}
	}
}
