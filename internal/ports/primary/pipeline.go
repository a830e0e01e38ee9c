// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the CLI drives the
// publishing pipeline.
package primary

import (
	"context"
	"time"

	"github.com/example/autonote/internal/core/run"
)

// PipelineService defines the primary port for the publishing pipeline.
type PipelineService interface {
	// Run executes one full pipeline run: theme selection, generation and
	// quality loop, asset resolution, account fan-out, ledger commit, and
	// notification. It returns the recorded result, or an error only for
	// the fatal cases (no theme, generation exhausted, ledger write).
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
}

// LedgerService defines the primary port for read-side ledger operations.
type LedgerService interface {
	// Statistics aggregates over all recorded runs.
	Statistics(ctx context.Context) (*Statistics, error)

	// History returns the most recent runs, newest first.
	History(ctx context.Context, limit int) ([]*HistoryEntry, error)
}

// RunRequest is the invocation surface consumed from the CLI layer.
type RunRequest struct {
	DraftOnly        bool
	ThemeOverride    string
	ThumbnailEnabled bool
	NotifyEnabled    bool
}

// RunResult summarizes one completed (recorded) run.
type RunResult struct {
	RunID              string
	ThemeID            string
	Title              string
	QualityTotal       int
	QualityGrade       string
	QualityIssues      []string
	QualitySuggestions []string
	ThumbnailPath      string
	ThumbnailKind      string
	Attempts           []AttemptResult
	OverallOutcome     run.Outcome
}

// AttemptResult is one per-account publish attempt at the port boundary.
type AttemptResult struct {
	Account   string
	Outcome   run.AttemptOutcome
	PostURL   string
	Error     string
	Timestamp time.Time
}

// Statistics is the aggregate view over the ledger.
type Statistics struct {
	TotalRuns      int
	SuccessCount   int
	PartialCount   int
	FailureCount   int
	DraftCount     int
	SuccessRate    float64
	AverageQuality float64
	PerThemeCounts map[string]int
}

// HistoryEntry is one recorded run at the port boundary.
type HistoryEntry struct {
	RunID     string
	ThemeID   string
	Title     string
	Timestamp time.Time
	Quality   int
	Outcome   run.Outcome
	Accounts  int
}
