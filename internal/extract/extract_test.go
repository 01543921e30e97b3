package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

func TestParseClaimSet(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantTitle string
		wantErr   bool
	}{
		{
			name: "object with video",
			input: `{"video": {"title": "Vitalix Review", "url": "https://youtube.com/watch?v=1", "channel": "Wellness Daily"},
				"claims": [{"claim_text": "Vitalix cures arthritis", "timestamp": "01:02", "speaker": "Host"}]}`,
			wantCount: 1,
			wantTitle: "Vitalix Review",
		},
		{
			name:      "bare array",
			input:     `[{"claim_text": "one"}, {"claim_text": "two"}]`,
			wantCount: 2,
		},
		{
			name:      "blank claims dropped",
			input:     `{"claims": [{"claim_text": "  "}, {"claim_text": "kept"}]}`,
			wantCount: 1,
		},
		{
			name:      "empty claims",
			input:     `{"claims": []}`,
			wantCount: 0,
		},
		{name: "empty input", input: "  ", wantErr: true},
		{name: "invalid json", input: `{"claims": [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseClaimSet([]byte(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(set.Claims) != tt.wantCount {
				t.Errorf("expected %d claims, got %d", tt.wantCount, len(set.Claims))
			}
			if set.Video.Title != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, set.Video.Title)
			}
		})
	}
}

func TestParseClaimSet_Fields(t *testing.T) {
	set, err := ParseClaimSet([]byte(`[{"claim_text": " Vitalix cures arthritis ", "timestamp": "01:02", "speaker": "Host"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.RawClaim{Text: "Vitalix cures arthritis", Timestamp: "01:02", Speaker: "Host"}
	if set.Claims[0] != want {
		t.Errorf("expected %+v, got %+v", want, set.Claims[0])
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestJSONExtractor(t *testing.T) {
	path := writeFile(t, "claims.json", `{"claims": [{"claim_text": "first"}, {"claim_text": "second"}]}`)

	claims, err := NewJSONExtractor(path).Extract(context.Background(), model.Video{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 2 || claims[0].Text != "first" || claims[1].Text != "second" {
		t.Errorf("expected claims in file order, got %+v", claims)
	}
}

func TestJSONExtractor_NoClaims(t *testing.T) {
	path := writeFile(t, "claims.json", `{"claims": []}`)

	_, err := NewJSONExtractor(path).Extract(context.Background(), model.Video{})
	if !errors.Is(err, ErrNoClaimsExtracted) {
		t.Errorf("expected ErrNoClaimsExtracted, got %v", err)
	}
}

func TestJSONExtractor_MissingFile(t *testing.T) {
	_, err := NewJSONExtractor(filepath.Join(t.TempDir(), "missing.json")).Extract(context.Background(), model.Video{})
	if err == nil || errors.Is(err, ErrNoClaimsExtracted) {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestStatic(t *testing.T) {
	claims, err := Static{{Text: "a"}}.Extract(context.Background(), model.Video{})
	if err != nil || len(claims) != 1 {
		t.Errorf("unexpected result %v, %v", claims, err)
	}
	if _, err := (Static{}).Extract(context.Background(), model.Video{}); !errors.Is(err, ErrNoClaimsExtracted) {
		t.Errorf("expected ErrNoClaimsExtracted, got %v", err)
	}
}
