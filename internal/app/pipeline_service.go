package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/quality"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/ports/secondary"
)

// generationBackoff is long enough to outlast a per-minute rate limit window.
const generationBackoff = 65 * time.Second

// PipelineServiceImpl implements the PipelineService interface: the
// top-level state machine from theme selection through notification.
type PipelineServiceImpl struct {
	cfg        *config.Config
	themes     []article.Theme
	accounts   []secondary.AccountCredential
	ledger     *LedgerServiceImpl
	repo       secondary.LedgerRepository
	generator  secondary.ArticleGenerator
	resolver   *AssetResolver
	dispatcher *Dispatcher
	notifiers  []secondary.Notifier
	logger     *log.Logger

	// Injected for tests.
	now      func() time.Time
	newRunID func() string
	sleep    func(context.Context, time.Duration) error
}

// NewPipelineService creates a PipelineService with injected dependencies.
func NewPipelineService(
	cfg *config.Config,
	themes []article.Theme,
	accounts []secondary.AccountCredential,
	repo secondary.LedgerRepository,
	generator secondary.ArticleGenerator,
	resolver *AssetResolver,
	dispatcher *Dispatcher,
	notifiers []secondary.Notifier,
	logger *log.Logger,
) *PipelineServiceImpl {
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineServiceImpl{
		cfg:        cfg,
		themes:     themes,
		accounts:   accounts,
		ledger:     NewLedgerService(repo),
		repo:       repo,
		generator:  generator,
		resolver:   resolver,
		dispatcher: dispatcher,
		notifiers:  notifiers,
		logger:     logger,
		now:        time.Now,
		newRunID:   func() string { return uuid.NewString() },
		sleep:      sleepCtx,
	}
}

// Run executes one full pipeline run. Fatal errors (no available theme,
// generation exhausted, ledger write failure) are returned; everything else
// is captured in the recorded result.
func (s *PipelineServiceImpl) Run(ctx context.Context, req primary.RunRequest) (*primary.RunResult, error) {
	// SelectingTheme
	theme, err := s.selectTheme(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("[pipeline] theme selected: %s", theme.ID)

	// Generating / Scoring / Regenerating
	draft, score, err := s.generateAccepted(ctx, theme)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("[pipeline] draft accepted: title=%q score=%d grade=%s", draft.Title, score.Total, score.Grade)

	// ResolvingAsset
	var thumbnail *Thumbnail
	if req.ThumbnailEnabled {
		thumbnail = s.resolver.Resolve(ctx, draft)
		s.logger.Printf("[pipeline] thumbnail resolved: kind=%s path=%s", thumbnail.SourceKind, thumbnail.Path)
	}

	// Dispatching. From here the run always reaches Recording: dispatch
	// failures are data, not errors.
	opts := secondary.PublishOptions{
		AsDraft:          req.DraftOnly,
		PaidArticle:      s.cfg.Publish.PaidArticle,
		PriceYen:         s.cfg.Publish.PriceYen,
		FreePreviewRatio: s.cfg.Publish.FreePreviewRatio,
	}
	thumbnailPath := ""
	if thumbnail != nil {
		thumbnailPath = thumbnail.Path
	}
	attempts := s.dispatcher.PublishAll(ctx, draft, thumbnailPath, s.accounts, opts)

	// Recording. Runs exactly once, on a context detached from the
	// caller's so cancellation cannot tear the ledger write.
	recordCtx := context.WithoutCancel(ctx)
	result := s.buildResult(theme, draft, score, thumbnail, attempts)
	if err := s.record(recordCtx, result); err != nil {
		// The run cannot be considered complete without a durable record,
		// even though publishing may have succeeded. Operator reconciles.
		return nil, &run.LedgerWriteError{Cause: err}
	}

	// Notifying. Best effort; never changes the recorded outcome.
	if req.NotifyEnabled {
		s.notify(recordCtx, result, req.DraftOnly)
	}

	return result, nil
}

func (s *PipelineServiceImpl) selectTheme(ctx context.Context, req primary.RunRequest) (article.Theme, error) {
	if req.ThemeOverride != "" {
		return article.Theme{ID: req.ThemeOverride, Title: req.ThemeOverride}, nil
	}
	return s.ledger.SelectTheme(ctx, s.themes, s.cfg.RecencyWindow)
}

// generateAccepted runs the bounded generation and quality loop. On reject
// it regenerates up to MaxRegenerations times, then proceeds with the
// best-scoring draft seen: a run is never failed solely on quality.
func (s *PipelineServiceImpl) generateAccepted(ctx context.Context, theme article.Theme) (article.Draft, quality.Score, error) {
	var (
		best      article.Draft
		bestScore quality.Score
		haveDraft bool
	)

	for attempt := 0; attempt <= s.cfg.MaxRegenerations; attempt++ {
		draft, err := s.generateWithRetry(ctx, theme)
		if err != nil {
			if !haveDraft {
				return article.Draft{}, quality.Score{}, err
			}
			// A mid-loop failure is not fatal once a draft exists.
			s.logger.Printf("[pipeline] regeneration failed, keeping best draft: %v", err)
			break
		}

		score := quality.Evaluate(draft)
		s.logger.Printf("[pipeline] draft scored: attempt=%d total=%d grade=%s", attempt+1, score.Total, score.Grade)

		if !haveDraft || score.Total > bestScore.Total {
			best, bestScore, haveDraft = draft, score, true
		}
		if quality.Accept(score, draft, s.cfg.Quality) {
			return draft, score, nil
		}
	}

	s.logger.Printf("[pipeline] quality gate not met after %d attempts, publishing best draft (score=%d)", s.cfg.MaxRegenerations+1, bestScore.Total)
	return best, bestScore, nil
}

// generateWithRetry retries rate-limited generation calls with a fixed
// backoff; hard errors surface immediately.
func (s *PipelineServiceImpl) generateWithRetry(ctx context.Context, theme article.Theme) (article.Draft, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxGenerationRetries; attempt++ {
		draft, err := s.generator.Generate(ctx, theme)
		if err == nil {
			return draft, nil
		}
		lastErr = err
		if !run.IsTransient(err) {
			return article.Draft{}, err
		}
		if attempt < s.cfg.MaxGenerationRetries {
			s.logger.Printf("[pipeline] generation rate limited, waiting %s (%d/%d)", generationBackoff, attempt, s.cfg.MaxGenerationRetries)
			if err := s.sleep(ctx, generationBackoff); err != nil {
				return article.Draft{}, fmt.Errorf("run canceled during generation backoff: %w", err)
			}
		}
	}
	return article.Draft{}, fmt.Errorf("generation retries exhausted: %w", lastErr)
}

func (s *PipelineServiceImpl) buildResult(theme article.Theme, draft article.Draft, score quality.Score, thumbnail *Thumbnail, attempts []primary.AttemptResult) *primary.RunResult {
	outcomes := make([]run.AttemptOutcome, len(attempts))
	for i, a := range attempts {
		outcomes[i] = a.Outcome
	}

	result := &primary.RunResult{
		RunID:              s.newRunID(),
		ThemeID:            article.NormalizeThemeID(theme.ID),
		Title:              draft.Title,
		QualityTotal:       score.Total,
		QualityGrade:       score.Grade,
		QualityIssues:      score.Issues,
		QualitySuggestions: score.Suggestions,
		Attempts:           attempts,
		OverallOutcome:     run.DeriveOutcome(outcomes),
	}
	if thumbnail != nil {
		result.ThumbnailPath = thumbnail.Path
		result.ThumbnailKind = thumbnail.SourceKind
	}
	return result
}

func (s *PipelineServiceImpl) record(ctx context.Context, result *primary.RunResult) error {
	attempts := make([]secondary.AttemptRecord, len(result.Attempts))
	for i, a := range result.Attempts {
		attempts[i] = secondary.AttemptRecord{
			Account:   a.Account,
			Outcome:   a.Outcome,
			PostURL:   a.PostURL,
			Error:     a.Error,
			Timestamp: a.Timestamp,
		}
	}

	return s.repo.Append(ctx, &secondary.LedgerRecord{
		RunID:          result.RunID,
		ThemeID:        result.ThemeID,
		Title:          result.Title,
		Timestamp:      s.now().UTC(),
		DraftQuality:   result.QualityTotal,
		OverallOutcome: result.OverallOutcome,
		Attempts:       attempts,
	})
}

func (s *PipelineServiceImpl) notify(ctx context.Context, result *primary.RunResult, draftOnly bool) {
	summary := secondary.RunSummary{
		Title:      result.Title,
		Success:    result.OverallOutcome == run.OutcomeSuccess,
		DraftSaved: draftOnly,
	}
	if !summary.Success {
		summary.ErrDetail = "some accounts failed to publish"
	}
	for _, attempt := range result.Attempts {
		if attempt.PostURL != "" {
			summary.PostURL = attempt.PostURL
			break
		}
	}

	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, summary); err != nil {
			s.logger.Printf("[notify] %s delivery failed: %v", notifier.Channel(), err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
