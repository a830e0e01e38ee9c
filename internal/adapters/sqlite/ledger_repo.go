// Package sqlite contains the SQLite implementation of the ledger
// repository interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerRepository with SQLite.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append persists a new run entry inside a transaction, so a crash mid-write
// leaves the store fully pre-write. The entry must have RunID pre-populated
// by the service layer.
func (r *LedgerRepository) Append(ctx context.Context, entry *secondary.LedgerRecord) error {
	if entry.RunID == "" {
		return fmt.Errorf("run ID must be pre-populated by service layer")
	}
	if entry.OverallOutcome == "" {
		return fmt.Errorf("overall outcome must be pre-populated by service layer")
	}

	attempts, err := json.Marshal(entry.Attempts)
	if err != nil {
		return fmt.Errorf("failed to encode attempts: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ledger transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (run_id, theme_id, title, recorded_at, draft_quality, overall_outcome, attempts) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.RunID,
		article.NormalizeThemeID(entry.ThemeID),
		entry.Title,
		entry.Timestamp.UTC(),
		entry.DraftQuality,
		string(entry.OverallOutcome),
		string(attempts),
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to append run entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run entry: %w", err)
	}

	return nil
}

// Recent retrieves the most recent entries, newest first.
func (r *LedgerRepository) Recent(ctx context.Context, limit int) ([]*secondary.LedgerRecord, error) {
	query := "SELECT run_id, theme_id, title, recorded_at, draft_quality, overall_outcome, attempts FROM runs ORDER BY recorded_at DESC, run_id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list run entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.LedgerRecord
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run entries: %w", err)
	}

	return entries, nil
}

// UsedThemes returns the normalized theme IDs of the most recent window
// entries. A window of zero means all entries.
func (r *LedgerRepository) UsedThemes(ctx context.Context, window int) (map[string]bool, error) {
	query := "SELECT theme_id FROM (SELECT theme_id, recorded_at, run_id FROM runs ORDER BY recorded_at DESC, run_id DESC"
	args := []any{}
	if window > 0 {
		query += " LIMIT ?"
		args = append(args, window)
	}
	query += ")"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query used themes: %w", err)
	}
	defer rows.Close()

	used := make(map[string]bool)
	for rows.Next() {
		var theme string
		if err := rows.Scan(&theme); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		used[theme] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read used themes: %w", err)
	}

	return used, nil
}

// Statistics aggregates over all entries. Read-only; calling it twice
// without an intervening Append yields identical results.
func (r *LedgerRepository) Statistics(ctx context.Context) (*secondary.LedgerStatistics, error) {
	stats := &secondary.LedgerStatistics{PerThemeCounts: make(map[string]int)}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN overall_outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN overall_outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN overall_outcome = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(draft_quality), 0)
		FROM runs`,
		string(run.OutcomeSuccess), string(run.OutcomePartial), string(run.OutcomeFailure),
	).Scan(&stats.TotalRuns, &stats.SuccessCount, &stats.PartialCount, &stats.FailureCount, &stats.AverageQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT theme_id, COUNT(*) FROM runs GROUP BY theme_id")
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate themes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var theme string
		var count int
		if err := rows.Scan(&theme, &count); err != nil {
			return nil, fmt.Errorf("failed to scan theme count: %w", err)
		}
		stats.PerThemeCounts[theme] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read theme counts: %w", err)
	}

	// Draft-saved attempts are counted across entries, not per run.
	entries, err := r.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		for _, attempt := range entry.Attempts {
			if attempt.Outcome == run.AttemptDraftSaved {
				stats.DraftCount++
				break
			}
		}
	}

	return stats, nil
}

func scanEntry(rows *sql.Rows) (*secondary.LedgerRecord, error) {
	var (
		entry      secondary.LedgerRecord
		recordedAt time.Time
		outcome    string
		attempts   string
	)

	err := rows.Scan(&entry.RunID, &entry.ThemeID, &entry.Title, &recordedAt, &entry.DraftQuality, &outcome, &attempts)
	if err != nil {
		return nil, fmt.Errorf("failed to scan run entry: %w", err)
	}

	entry.Timestamp = recordedAt
	entry.OverallOutcome = run.Outcome(outcome)

	// Attempts are stored as JSON so new optional fields stay
	// backward-readable; unknown keys are ignored here.
	if err := json.Unmarshal([]byte(attempts), &entry.Attempts); err != nil {
		return nil, fmt.Errorf("failed to decode attempts for run %s: %w", entry.RunID, err)
	}

	return &entry, nil
}
