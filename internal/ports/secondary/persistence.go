// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the pipeline drives
// external systems: the ledger store, the generative API, the browser, and
// the notification channels.
package secondary

import (
	"context"
	"time"

	"github.com/example/autonote/internal/core/run"
)

// LedgerRepository defines the secondary port for run-history persistence.
// The ledger is append-only: Append is the sole mutating operation, and an
// entry is never rewritten after it is visible to readers.
type LedgerRepository interface {
	// Append durably persists a new entry. The write must be atomic with
	// respect to process crash: a partially written entry must never be
	// visible to subsequent reads.
	Append(ctx context.Context, entry *LedgerRecord) error

	// Recent retrieves the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]*LedgerRecord, error)

	// UsedThemes returns the normalized theme IDs appearing in the most
	// recent window entries. A window of zero means all entries.
	UsedThemes(ctx context.Context, window int) (map[string]bool, error)

	// Statistics aggregates over all entries. Read-only and idempotent.
	Statistics(ctx context.Context) (*LedgerStatistics, error)
}

// LedgerRecord represents one run as stored in persistence.
type LedgerRecord struct {
	RunID          string
	ThemeID        string
	Title          string
	Timestamp      time.Time
	DraftQuality   int
	OverallOutcome run.Outcome
	Attempts       []AttemptRecord
}

// AttemptRecord is one per-account publish attempt within a run. Optional
// fields may be added over time; readers ignore unknown fields.
type AttemptRecord struct {
	Account   string             `json:"account"`
	Outcome   run.AttemptOutcome `json:"outcome"`
	PostURL   string             `json:"post_url,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// LedgerStatistics is the read-side aggregation over all ledger entries.
type LedgerStatistics struct {
	TotalRuns      int
	SuccessCount   int
	PartialCount   int
	FailureCount   int
	DraftCount     int
	SuccessRate    float64
	AverageQuality float64
	PerThemeCounts map[string]int
}
