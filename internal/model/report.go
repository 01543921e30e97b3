package model

import "time"

// Report represents the complete verification run for one video
type Report struct {
	RunID      string               `json:"run_id"`
	Video      Video                `json:"video"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Status     ReportStatus         `json:"status"`
	Reputation ChannelReputation    `json:"channel_reputation"`
	Selection  SelectionMeta        `json:"selection"`
	Results    []VerificationResult `json:"results"`
	Summary    map[Verdict]int      `json:"summary"`           // Verdict counts
	Failure    string               `json:"failure,omitempty"` // Set when Status is not ok
}

// ReportStatus describes how the run ended
type ReportStatus string

const (
	StatusOK       ReportStatus = "ok"
	StatusNoClaims ReportStatus = "no_claims" // Extraction returned zero claims
)

// SelectionMeta describes how the verified claims were chosen
type SelectionMeta struct {
	InitialCount        int                  `json:"initial_count"`
	AfterFilterCount    int                  `json:"after_filter_count"`
	AbsenceCount        int                  `json:"absence_count"`
	FinalCount          int                  `json:"final_count"`
	QualityDistribution map[QualityLevel]int `json:"quality_distribution"`
}

// Summarize counts results by verdict
func Summarize(results []VerificationResult) map[Verdict]int {
	summary := make(map[Verdict]int)
	for _, r := range results {
		summary[r.Verdict]++
	}
	return summary
}
