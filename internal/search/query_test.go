package search

import (
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func TestBuildQueries(t *testing.T) {
	claim, video := testClaim()
	queries := BuildQueries(claim, video)

	expected := []Query{
		{Text: "Vitalix cured my arthritis in two weeks", Kind: QueryClaim},
		{Text: "Vitalix press release", Subject: "Vitalix", Kind: QueryPressRelease},
		{Text: "Vitalix study", Subject: "Vitalix", Kind: QueryScientific},
		{Text: "Vitalix debunked", Subject: "Vitalix", Kind: QueryCounter},
	}
	if len(queries) != len(expected) {
		t.Fatalf("expected %d queries, got %d: %+v", len(expected), len(queries), queries)
	}
	for i := range expected {
		if queries[i] != expected[i] {
			t.Errorf("query %d: expected %+v, got %+v", i, expected[i], queries[i])
		}
	}
}

func TestBuildQueries_Empty(t *testing.T) {
	if q := BuildQueries(model.Claim{Text: "   "}, model.Video{}); q != nil {
		t.Errorf("expected no queries for empty claim, got %+v", q)
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		title string
		want  string
	}{
		{"brand mentioned in claim", "Vitalix cured my knees", "Why I Trust Vitalix™ Every Day", "Vitalix"},
		{"first title brand", "It cured my knees", "NeuroMax and Vitalix™ compared", "NeuroMax"},
		{"key terms fallback", "Turmeric supplements reverse arthritis damage", "my morning routine", "turmeric supplements reverse"},
		{"nothing distinctive", "it is so", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Subject(tt.claim, tt.title); got != tt.want {
				t.Errorf("Subject(%q, %q) = %q, want %q", tt.claim, tt.title, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"plain text", "plain text"},
		{"<p>Tom &amp; Jerry <b>bold</b></p>", "Tom & Jerry bold"},
		{"<script>alert(1)</script>Safe", "Safe"},
		{"It&#39;s   spread\nout", "It's spread out"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
