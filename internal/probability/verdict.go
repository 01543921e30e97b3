package probability

import (
	"math"

	"github.com/ppiankov/veracity/internal/model"
)

// verdictRule is one row of the ordered verdict table; t, f and u are percentages
type verdictRule struct {
	match   func(t, f, u float64) bool
	verdict model.Verdict
}

var verdictRules = []verdictRule{
	{func(t, f, u float64) bool { return t > 70 && f < 10 }, model.VerdictHighlyLikelyTrue},
	{func(t, f, u float64) bool { return t+u > 65 && f < 35 }, model.VerdictLikelyTrue},
	{func(t, f, u float64) bool { return f+u > 65 && t < 35 }, model.VerdictLikelyFalse},
	{func(t, f, u float64) bool { return f > 75 }, model.VerdictHighlyLikelyFalse},
	{func(t, f, u float64) bool { return t > 50 && f < 20 }, model.VerdictLikelyTrue},
	{func(t, f, u float64) bool { return f > 45 && t < 25 }, model.VerdictLikelyFalse},
	{func(t, f, u float64) bool { return t > 40 && f < 35 }, model.VerdictLeaningTrue},
	{func(t, f, u float64) bool { return f > 35 && t < 30 }, model.VerdictLeaningFalse},
	{func(t, f, u float64) bool { return math.Abs(t-f) < 10 }, model.VerdictUncertain},
	{func(t, f, u float64) bool { return t > f }, model.VerdictLeaningTrue},
}

// Verdict maps a final distribution to its label. First matching rule wins.
func Verdict(d model.Distribution) model.Verdict {
	t, f, u := d.Percentages()
	for _, rule := range verdictRules {
		if rule.match(t, f, u) {
			return rule.verdict
		}
	}
	return model.VerdictLeaningFalse
}
