// Package app contains the application services that implement the primary
// ports: the publishing pipeline, the account fan-out dispatcher, the asset
// resolver, and the read-side ledger service.
package app

import (
	"context"
	"fmt"

	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface and the theme
// selection policy backed by the ledger.
type LedgerServiceImpl struct {
	repo secondary.LedgerRepository
}

// NewLedgerService creates a LedgerService with the injected repository.
func NewLedgerService(repo secondary.LedgerRepository) *LedgerServiceImpl {
	return &LedgerServiceImpl{repo: repo}
}

// SelectTheme returns the first candidate (in caller-supplied priority
// order) whose normalized ID does not appear in the most recent
// recencyWindow ledger entries. Fails with run.ErrNoAvailableTheme when
// every candidate is excluded.
func (s *LedgerServiceImpl) SelectTheme(ctx context.Context, candidates []article.Theme, recencyWindow int) (article.Theme, error) {
	used, err := s.repo.UsedThemes(ctx, recencyWindow)
	if err != nil {
		return article.Theme{}, fmt.Errorf("failed to load used themes: %w", err)
	}

	for _, candidate := range candidates {
		if !used[article.NormalizeThemeID(candidate.ID)] {
			return candidate, nil
		}
	}

	return article.Theme{}, run.ErrNoAvailableTheme
}

// Statistics aggregates over all recorded runs.
func (s *LedgerServiceImpl) Statistics(ctx context.Context) (*primary.Statistics, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ledger: %w", err)
	}

	return &primary.Statistics{
		TotalRuns:      stats.TotalRuns,
		SuccessCount:   stats.SuccessCount,
		PartialCount:   stats.PartialCount,
		FailureCount:   stats.FailureCount,
		DraftCount:     stats.DraftCount,
		SuccessRate:    stats.SuccessRate,
		AverageQuality: stats.AverageQuality,
		PerThemeCounts: stats.PerThemeCounts,
	}, nil
}

// History returns the most recent runs, newest first.
func (s *LedgerServiceImpl) History(ctx context.Context, limit int) ([]*primary.HistoryEntry, error) {
	entries, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	history := make([]*primary.HistoryEntry, len(entries))
	for i, entry := range entries {
		history[i] = &primary.HistoryEntry{
			RunID:     entry.RunID,
			ThemeID:   entry.ThemeID,
			Title:     entry.Title,
			Timestamp: entry.Timestamp,
			Quality:   entry.DraftQuality,
			Outcome:   entry.OverallOutcome,
			Accounts:  len(entry.Attempts),
		}
	}

	return history, nil
}
