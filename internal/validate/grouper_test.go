package validate

import (
	"reflect"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func testContext() GroupContext {
	return GroupContext{
		Claim: "The supplement improves memory retention in seniors",
		Video: model.Video{
			Title:   "Memory Pill Review",
			Channel: "BrainHealth TV",
		},
	}
}

func TestGrouper_SelfReferenceChannel(t *testing.T) {
	g := NewGrouper(nil)
	gc := testContext()

	raw := []model.RawEvidence{{
		SourceName: "PR Newswire",
		SourceType: model.SourceTypePressRelease,
		URL:        "https://www.prnewswire.com/news-releases/123.html",
		Text:       "BrainHealth TV announces a partnership with a leading nutrition brand",
	}}

	grouped := g.Group(raw, gc)
	if len(grouped.PressRelease) != 1 {
		t.Fatalf("Expected 1 press release, got %d", len(grouped.PressRelease))
	}
	item := grouped.PressRelease[0]
	if item.ValidationPower != 0.0 || !item.SelfReferential {
		t.Errorf("Expected power 0.0 and self-referential, got power=%.2f self=%v", item.ValidationPower, item.SelfReferential)
	}
}

func TestGrouper_SelfReferenceChannelIsDeterministic(t *testing.T) {
	g := NewGrouper(nil)
	gc := testContext()

	raw := []model.RawEvidence{{
		SourceType: model.SourceTypePressRelease,
		URL:        "https://example.com/pr",
		Text:       "Statement from brainhealth tv",
	}}

	first := g.Group(raw, gc)
	for i := 0; i < 5; i++ {
		if got := g.Group(raw, gc); !reflect.DeepEqual(got, first) {
			t.Fatalf("Grouping is not deterministic")
		}
	}
	if first.PressRelease[0].ValidationPower != 0.0 || !first.PressRelease[0].SelfReferential {
		t.Errorf("Expected case-insensitive channel match, got %+v", first.PressRelease[0])
	}
}

func TestGrouper_SelfReferenceBrand(t *testing.T) {
	g := NewGrouper(nil)
	gc := GroupContext{
		Claim: "It improves recall",
		Video: model.Video{Title: "NeuroBoost™ changed my memory", Channel: "Some Channel"},
	}

	raw := []model.RawEvidence{{
		SourceType: model.SourceTypePressRelease,
		URL:        "https://www.globenewswire.com/news-release/1",
		Title:      "Acme Labs launches NeuroBoost nationwide",
	}}

	item := g.Group(raw, gc).PressRelease[0]
	if item.ValidationPower != 0.0 || !item.SelfReferential {
		t.Errorf("Expected brand self-reference, got power=%.2f self=%v", item.ValidationPower, item.SelfReferential)
	}
}

func TestGrouper_PartialOverlap(t *testing.T) {
	g := NewGrouper(nil)

	raw := []model.RawEvidence{{
		SourceType: model.SourceTypePressRelease,
		URL:        "https://www.businesswire.com/news/1",
		Text:       "New supplement shown to boost memory in adults",
	}}

	item := g.Group(raw, testContext()).PressRelease[0]
	if item.ValidationPower != 0.2 || item.SelfReferential {
		t.Errorf("Expected partial power 0.2 without self-reference, got power=%.2f self=%v", item.ValidationPower, item.SelfReferential)
	}
}

func TestGrouper_ConfigurablePartialPower(t *testing.T) {
	g := NewGrouper(&model.GroupingConfig{OverlapThreshold: 3, PartialPower: 0.4})

	raw := []model.RawEvidence{
		{SourceType: model.SourceTypePressRelease, URL: "https://x.com/1", Text: "supplement memory"},
		{SourceType: model.SourceTypePressRelease, URL: "https://x.com/2", Text: "supplement memory retention"},
	}

	grouped := g.Group(raw, testContext())
	if grouped.PressRelease[0].ValidationPower != 1.0 {
		t.Errorf("Expected full power below threshold, got %.2f", grouped.PressRelease[0].ValidationPower)
	}
	if grouped.PressRelease[1].ValidationPower != 0.4 {
		t.Errorf("Expected configured partial power, got %.2f", grouped.PressRelease[1].ValidationPower)
	}
}

func TestGrouper_UnrelatedPressRelease(t *testing.T) {
	g := NewGrouper(nil)

	raw := []model.RawEvidence{{
		SourceType: model.SourceTypePressRelease,
		URL:        "https://www.prweb.com/releases/2",
		Text:       "Regional bank reports quarterly earnings",
	}}

	item := g.Group(raw, testContext()).PressRelease[0]
	if item.ValidationPower != 1.0 || item.SelfReferential {
		t.Errorf("Expected full power, got power=%.2f self=%v", item.ValidationPower, item.SelfReferential)
	}
}

func TestGrouper_GovernmentWinsOverPressRelease(t *testing.T) {
	g := NewGrouper(nil)

	raw := []model.RawEvidence{{
		SourceName: "FDA",
		SourceType: model.SourceTypePressRelease,
		URL:        "https://www.fda.gov/news-events/press-announcements/x",
		Text:       "BrainHealth TV received a warning letter",
	}}

	grouped := g.Group(raw, testContext())
	if len(grouped.PressRelease) != 0 {
		t.Fatalf("Government source must never be a press release")
	}
	if len(grouped.Independent) != 1 {
		t.Fatalf("Expected government source in independent group")
	}
	item := grouped.Independent[0]
	if !item.Official || item.ValidationPower != 1.0 || item.SelfReferential {
		t.Errorf("Unexpected government item %+v", item)
	}
}

func TestGrouper_Buckets(t *testing.T) {
	g := NewGrouper(nil)

	raw := []model.RawEvidence{
		{SourceName: "Blog", SourceType: model.SourceTypeWeb, URL: "https://blog.example.com/a", Text: "a"},
		{SourceName: "Debunk", SourceType: model.SourceTypeVideo, URL: "https://www.youtube.com/watch?v=1", ViewCount: 500},
		{SourceName: "PubMed", SourceType: model.SourceTypeWeb, URL: "https://pubmed.ncbi.nlm.nih.gov/1/", Text: "The trial showed a significant reduction"},
		{SourceName: "Journal", SourceType: model.SourceTypeScientific, URL: "https://example.org/paper", Text: "The effect was not significant and showed no benefit"},
		{SourceName: "News", SourceType: model.SourceTypeNews, URL: "https://news.example.com/b", Text: "b"},
	}

	grouped := g.Group(raw, testContext())

	if grouped.Count() != len(raw) {
		t.Fatalf("Expected %d items, got %d", len(raw), grouped.Count())
	}
	if len(grouped.Independent) != 2 || grouped.Independent[0].SourceName != "Blog" || grouped.Independent[1].SourceName != "News" {
		t.Errorf("Unexpected independent group %+v", grouped.Independent)
	}
	if len(grouped.YouTubeCounter) != 1 {
		t.Fatalf("Expected 1 counter video")
	}
	video := grouped.YouTubeCounter[0]
	if video.ValidationPower != 1.0 || video.SupportsClaim || video.ViewCount != 500 || video.Group != model.GroupYouTubeCounter {
		t.Errorf("Unexpected counter video %+v", video)
	}
	if len(grouped.Scientific) != 2 {
		t.Fatalf("Expected 2 scientific items, got %d", len(grouped.Scientific))
	}
	if !grouped.Scientific[0].SupportsClaim {
		t.Error("Expected positive finding to support the claim")
	}
	if grouped.Scientific[1].SupportsClaim {
		t.Error("Expected negative finding not to support the claim")
	}
	for _, item := range grouped.All() {
		if item.ValidationPower < 0 || item.ValidationPower > 1 {
			t.Errorf("Validation power out of range: %+v", item)
		}
	}
}

func TestSupportsClaim(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"The trial showed a significant reduction in symptoms", true},
		{"The effect was not significant and showed no benefit", false},
		{"Results were inconclusive", false},
		{"Supplementation was ineffective; no difference was found despite an earlier improvement", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := SupportsClaim(tt.text); got != tt.expected {
			t.Errorf("SupportsClaim(%q) = %v, want %v", tt.text, got, tt.expected)
		}
	}
}

func TestBrandTerms(t *testing.T) {
	tests := []struct {
		title    string
		expected []string
	}{
		{"NeuroBoost™ changed my memory", []string{"NeuroBoost"}},
		{"Why I Quit ACME Keto Gummies", []string{"ACME"}},
		{"my honest thoughts on Keto Gummies", []string{"Keto", "Gummies"}},
		{"", nil},
	}

	for _, tt := range tests {
		if got := BrandTerms(tt.title); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("BrandTerms(%q) = %v, want %v", tt.title, got, tt.expected)
		}
	}
}

func TestKeyTerms(t *testing.T) {
	got := KeyTerms("The Supplement improves memory, and the supplement works")
	expected := []string{"supplement", "improves", "memory", "works"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
