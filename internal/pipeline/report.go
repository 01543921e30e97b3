package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// WriteJSON writes the report as indented JSON, creating parent directories
func WriteJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

var verdictOrder = []model.Verdict{
	model.VerdictHighlyLikelyTrue,
	model.VerdictLikelyTrue,
	model.VerdictLeaningTrue,
	model.VerdictUncertain,
	model.VerdictLeaningFalse,
	model.VerdictLikelyFalse,
	model.VerdictHighlyLikelyFalse,
	model.VerdictError,
}

// WriteSummary prints a short human-readable digest of the report
func WriteSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "Run %s: %s\n", report.RunID, report.Video.Title)
	if report.Status != model.StatusOK {
		fmt.Fprintf(w, "Status: %s (%s)\n", report.Status, report.Failure)
		return
	}

	meta := report.Selection
	fmt.Fprintf(w, "Claims: %d extracted, %d kept, %d absence, %d verified\n",
		meta.InitialCount, meta.AfterFilterCount, meta.AbsenceCount, meta.FinalCount)
	fmt.Fprintf(w, "Channel reputation: %.2f (%s)\n\n", report.Reputation.Score, report.Reputation.Category)

	for i, r := range report.Results {
		t, f, u := r.Distribution.Percentages()
		fmt.Fprintf(w, "%2d. [%s] %s\n", i+1, r.Verdict, util.Truncate(r.Claim.Text, 100))
		fmt.Fprintf(w, "    TRUE %.0f%% / FALSE %.0f%% / UNCERTAIN %.0f%%\n", t, f, u)
	}

	var parts []string
	for _, v := range verdictOrder {
		if n := report.Summary[v]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", v, n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "\nSummary: %s\n", strings.Join(parts, ", "))
	}
}
