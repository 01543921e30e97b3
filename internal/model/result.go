package model

// Verdict is the qualitative label mapped from a final distribution
type Verdict string

const (
	VerdictHighlyLikelyTrue  Verdict = "HIGHLY_LIKELY_TRUE"
	VerdictLikelyTrue        Verdict = "LIKELY_TRUE"
	VerdictLeaningTrue       Verdict = "LEANING_TRUE"
	VerdictUncertain         Verdict = "UNCERTAIN"
	VerdictLeaningFalse      Verdict = "LEANING_FALSE"
	VerdictLikelyFalse       Verdict = "LIKELY_FALSE"
	VerdictHighlyLikelyFalse Verdict = "HIGHLY_LIKELY_FALSE"
	VerdictError             Verdict = "ERROR"
)

// Outcome records how a claim's verification ended
type Outcome string

const (
	OutcomeResult      Outcome = "result"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeError       Outcome = "error"
	OutcomeCircuitOpen Outcome = "circuit_open"
)

// Boost is a human-readable counter-intelligence adjustment
type Boost struct {
	// press_release or youtube_counter
	Source      EvidenceGroup `json:"source"`
	Description string        `json:"description"`
	Quotes      []string      `json:"quotes,omitempty"` // At most 2 quoted evidence snippets
	Reduction   float64       `json:"true_reduction"`   // Mass removed from TRUE
}

// VerificationResult is the terminal outcome for one claim.
// A re-verification produces a new result; results are never revised.
type VerificationResult struct {
	Claim        Claim          `json:"claim"`
	Verdict      Verdict        `json:"verdict"`
	Explanation  string         `json:"explanation"`
	Distribution Distribution   `json:"probability_distribution"`
	Draft        *Distribution  `json:"draft_distribution,omitempty"`
	Sources      []string       `json:"sources"`
	Evidence     []EvidenceItem `json:"evidence,omitempty"`
	Boosts       []Boost        `json:"counter_intelligence_boosts,omitempty"`
	Outcome      Outcome        `json:"outcome"`
	RawOutput    string         `json:"raw_llm_output,omitempty"` // Preserved when the LLM output could not be parsed
}
