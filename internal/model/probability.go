package model

import (
	"fmt"
	"math"
)

// DistributionTolerance is the allowed deviation of a distribution sum from 1.0
const DistributionTolerance = 0.001

// Distribution is a probability distribution over {TRUE, FALSE, UNCERTAIN}.
// Values must sum to 1.0 at every stage boundary.
type Distribution struct {
	True      float64 `json:"TRUE"`
	False     float64 `json:"FALSE"`
	Uncertain float64 `json:"UNCERTAIN"`
}

// NewDistribution validates that the components are non-negative and sum to 1.0
func NewDistribution(t, f, u float64) (Distribution, error) {
	d := Distribution{True: t, False: f, Uncertain: u}
	if err := d.Validate(); err != nil {
		return Distribution{}, err
	}
	return d, nil
}

// Validate checks the distribution invariant
func (d Distribution) Validate() error {
	for _, v := range []float64{d.True, d.False, d.Uncertain} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("distribution component is not finite: %+v", d)
		}
		if v < 0 {
			return fmt.Errorf("distribution component is negative: %+v", d)
		}
	}
	if math.Abs(d.Sum()-1.0) > DistributionTolerance {
		return fmt.Errorf("distribution sums to %.4f, want 1.0", d.Sum())
	}
	return nil
}

// Sum returns TRUE+FALSE+UNCERTAIN
func (d Distribution) Sum() float64 {
	return d.True + d.False + d.Uncertain
}

// Normalize clamps negatives to zero and rescales so the components sum to 1.0.
// An all-zero distribution becomes fully uncertain.
func (d Distribution) Normalize() Distribution {
	t := math.Max(d.True, 0)
	f := math.Max(d.False, 0)
	u := math.Max(d.Uncertain, 0)
	sum := t + f + u
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return UncertainDistribution()
	}
	return Distribution{True: t / sum, False: f / sum, Uncertain: u / sum}
}

// Percentages returns the components scaled to 0-100
func (d Distribution) Percentages() (t, f, u float64) {
	return d.True * 100, d.False * 100, d.Uncertain * 100
}

// UncertainDistribution is the distribution attached to results that never
// reached the probability engine (timeouts, open circuit, errors)
func UncertainDistribution() Distribution {
	return Distribution{True: 0, False: 0, Uncertain: 1}
}

// DefaultDraftDistribution is the draft used when the LLM output cannot be parsed
func DefaultDraftDistribution() Distribution {
	return Distribution{True: 0.15, False: 0.15, Uncertain: 0.70}
}
