package model

import (
	"math"
	"testing"
)

func TestNewDistribution(t *testing.T) {
	tests := []struct {
		name    string
		t, f, u float64
		wantErr bool
	}{
		{"valid", 0.6, 0.3, 0.1, false},
		{"within tolerance", 0.5, 0.3, 0.2005, false},
		{"fully uncertain", 0, 0, 1, false},
		{"negative component", 1.2, -0.2, 0, true},
		{"sum too low", 0.3, 0.3, 0.3, true},
		{"sum too high", 0.5, 0.5, 0.002, true},
		{"not finite", math.NaN(), 0.5, 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDistribution(tt.t, tt.f, tt.u)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %v/%v/%v, got %+v", tt.t, tt.f, tt.u, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.True != tt.t || d.False != tt.f || d.Uncertain != tt.u {
				t.Errorf("components changed: %+v", d)
			}
		})
	}
}

func TestDistribution_Normalize(t *testing.T) {
	d := Distribution{True: 2, False: -1, Uncertain: 2}.Normalize()
	if err := d.Validate(); err != nil {
		t.Fatalf("normalized distribution invalid: %v", err)
	}
	if d.False != 0 || d.True != 0.5 {
		t.Errorf("unexpected normalization: %+v", d)
	}

	if got := (Distribution{}).Normalize(); got != UncertainDistribution() {
		t.Errorf("all-zero should become uncertain, got %+v", got)
	}
}

func TestDefaultDistributionsAreValid(t *testing.T) {
	for _, d := range []Distribution{UncertainDistribution(), DefaultDraftDistribution()} {
		if err := d.Validate(); err != nil {
			t.Errorf("%+v: %v", d, err)
		}
	}
}
