// Package extract is the boundary to claim extraction: it reads the
// extraction service's JSON output, or pulls candidate claims out of a
// transcript when no extraction output is available.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// ErrNoClaimsExtracted is returned when extraction yields zero claims.
// Callers degrade to a no_claims report instead of failing.
var ErrNoClaimsExtracted = errors.New("no claims extracted")

// Extractor produces the ordered raw claims for one video
type Extractor interface {
	Extract(ctx context.Context, video model.Video) ([]model.RawClaim, error)
}

// ClaimSet is the extraction service's output document
type ClaimSet struct {
	Video  model.Video      `json:"video"`
	Claims []model.RawClaim `json:"claims"`
}

// ParseClaimSet decodes extraction output: either {"video": ..., "claims": [...]}
// or a bare array of claims. Records with blank text are dropped.
func ParseClaimSet(data []byte) (*ClaimSet, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("parse claims: empty input")
	}

	var set ClaimSet
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &set.Claims); err != nil {
			return nil, fmt.Errorf("parse claims: %w", err)
		}
	} else if err := json.Unmarshal([]byte(trimmed), &set); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	kept := set.Claims[:0]
	for _, c := range set.Claims {
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			continue
		}
		kept = append(kept, c)
	}
	set.Claims = kept
	return &set, nil
}

// JSONExtractor reads a claims file written by the extraction service
type JSONExtractor struct {
	path string
}

// NewJSONExtractor creates an extractor for the given claims file
func NewJSONExtractor(path string) *JSONExtractor {
	return &JSONExtractor{path: path}
}

// Load reads and parses the whole claims file, including video metadata
func (e *JSONExtractor) Load() (*ClaimSet, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}
	return ParseClaimSet(data)
}

// Extract returns the claims in file order
func (e *JSONExtractor) Extract(ctx context.Context, video model.Video) ([]model.RawClaim, error) {
	set, err := e.Load()
	if err != nil {
		return nil, err
	}
	if len(set.Claims) == 0 {
		return nil, ErrNoClaimsExtracted
	}
	return set.Claims, nil
}

// Static returns claims already in hand, such as those posted to the API
type Static []model.RawClaim

// Extract returns the claims unchanged
func (s Static) Extract(ctx context.Context, video model.Video) ([]model.RawClaim, error) {
	if len(s) == 0 {
		return nil, ErrNoClaimsExtracted
	}
	return s, nil
}
