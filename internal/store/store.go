// Package store keeps the history of verification runs in SQLite
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/veracity/internal/model"
)

// Fixed-width so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun for unknown run IDs
var ErrRunNotFound = errors.New("run not found")

// Store wraps the run history database
type Store struct {
	conn *sql.DB
	path string
}

// RunSummary is one row of the run listing
type RunSummary struct {
	RunID      string                `json:"run_id"`
	VideoTitle string                `json:"video_title"`
	VideoURL   string                `json:"video_url,omitempty"`
	Channel    string                `json:"channel,omitempty"`
	Status     model.ReportStatus    `json:"status"`
	Claims     int                   `json:"claims"`
	Summary    map[model.Verdict]int `json:"summary"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

// Open creates or opens the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// One writer at a time
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{conn: conn, path: path}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// SaveReport stores a finished report and its per-claim results. Saving
// the same run twice replaces it.
func (s *Store) SaveReport(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM results WHERE run_id = ?`, `DELETE FROM runs WHERE run_id = ?`} {
		if _, err := tx.ExecContext(ctx, q, report.RunID); err != nil {
			return fmt.Errorf("replace run: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (run_id, video_title, video_url, channel, status, claims, summary, report, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.Video.Title, report.Video.URL, report.Video.Channel,
		string(report.Status), len(report.Results), string(summary), string(data),
		report.StartedAt.UTC().Format(timeLayout), report.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, r := range report.Results {
		_, err := tx.ExecContext(ctx, `
INSERT INTO results (run_id, position, claim, claim_type, verdict, outcome, p_true, p_false, p_uncertain)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID, i, r.Claim.Text, string(r.Claim.Type), string(r.Verdict), string(r.Outcome),
			r.Distribution.True, r.Distribution.False, r.Distribution.Uncertain)
		if err != nil {
			return fmt.Errorf("insert result %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.conn.QueryContext(ctx, `
SELECT run_id, video_title, video_url, channel, status, claims, summary, started_at, finished_at
FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var status, summary, started, finished string
		if err := rows.Scan(&r.RunID, &r.VideoTitle, &r.VideoURL, &r.Channel, &status, &r.Claims, &summary, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = model.ReportStatus(status)
		if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
			return nil, fmt.Errorf("decode summary for %s: %w", r.RunID, err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the full stored report for a run
func (s *Store) GetRun(ctx context.Context, runID string) (*model.Report, error) {
	var data string
	err := s.conn.QueryRowContext(ctx, `SELECT report FROM runs WHERE run_id = ?`, runID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", runID, err)
	}
	return &report, nil
}

// VerdictCounts tallies stored results by verdict across every run
func (s *Store) VerdictCounts(ctx context.Context) (map[model.Verdict]int, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT verdict, COUNT(*) FROM results GROUP BY verdict`)
	if err != nil {
		return nil, fmt.Errorf("count verdicts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Verdict]int)
	for rows.Next() {
		var verdict string
		var n int
		if err := rows.Scan(&verdict, &n); err != nil {
			return nil, err
		}
		counts[model.Verdict(verdict)] = n
	}
	return counts, rows.Err()
}
