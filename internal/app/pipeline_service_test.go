package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/article"
	"github.com/example/autonote/internal/core/quality"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockLedgerRepo implements secondary.LedgerRepository for testing.
type mockLedgerRepo struct {
	entries   []*secondary.LedgerRecord
	appendErr error
	themesErr error
}

func (m *mockLedgerRepo) Append(ctx context.Context, entry *secondary.LedgerRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLedgerRepo) Recent(ctx context.Context, limit int) ([]*secondary.LedgerRecord, error) {
	entries := make([]*secondary.LedgerRecord, len(m.entries))
	for i := range m.entries {
		entries[i] = m.entries[len(m.entries)-1-i]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockLedgerRepo) UsedThemes(ctx context.Context, window int) (map[string]bool, error) {
	if m.themesErr != nil {
		return nil, m.themesErr
	}
	recent, _ := m.Recent(ctx, window)
	used := make(map[string]bool)
	for _, entry := range recent {
		used[article.NormalizeThemeID(entry.ThemeID)] = true
	}
	return used, nil
}

func (m *mockLedgerRepo) Statistics(ctx context.Context) (*secondary.LedgerStatistics, error) {
	stats := &secondary.LedgerStatistics{PerThemeCounts: make(map[string]int)}
	for _, entry := range m.entries {
		stats.TotalRuns++
		stats.PerThemeCounts[entry.ThemeID]++
		switch entry.OverallOutcome {
		case run.OutcomeSuccess:
			stats.SuccessCount++
		case run.OutcomePartial:
			stats.PartialCount++
		case run.OutcomeFailure:
			stats.FailureCount++
		}
	}
	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalRuns)
	}
	return stats, nil
}

// mockGenerator implements secondary.ArticleGenerator for testing.
type mockGenerator struct {
	drafts []article.Draft
	errs   []error
	calls  int
}

func (m *mockGenerator) Generate(ctx context.Context, theme article.Theme) (article.Draft, error) {
	idx := m.calls
	m.calls++
	if idx < len(m.errs) && m.errs[idx] != nil {
		return article.Draft{}, m.errs[idx]
	}
	if idx >= len(m.drafts) {
		idx = len(m.drafts) - 1
	}
	draft := m.drafts[idx]
	draft.Theme = theme
	return draft, nil
}

// mockImageSource implements secondary.ImageGenerator for testing.
type mockImageSource struct {
	data []byte
	err  error
}

func (m *mockImageSource) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// mockThumbStore implements secondary.ThumbnailStore for testing.
type mockThumbStore struct {
	saveErr       error
	fallbackCalls int
}

func (m *mockThumbStore) SaveCover(title string, data []byte) (*secondary.ThumbnailArtifact, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &secondary.ThumbnailArtifact{Path: "thumbnails/generated.png", Width: 1280, Height: 670}, nil
}

func (m *mockThumbStore) RenderFallback(title, themeTitle string) (*secondary.ThumbnailArtifact, error) {
	m.fallbackCalls++
	return &secondary.ThumbnailArtifact{Path: "thumbnails/fallback.png", Width: 1280, Height: 670}, nil
}

// mockSession implements secondary.Session for testing.
type mockSession struct {
	account string
	closed  bool
}

func (m *mockSession) Account() string { return m.account }
func (m *mockSession) Close() error    { m.closed = true; return nil }

// mockPublisher implements secondary.Publisher for testing. Per-account
// error queues are consumed one entry per call; an exhausted queue means
// success.
type mockPublisher struct {
	loginErrs  map[string][]error
	submitErrs map[string][]error
	logins     []string
	submits    []submitCall
	sessions   []*mockSession
}

type submitCall struct {
	account       string
	asDraft       bool
	thumbnailPath string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{
		loginErrs:  make(map[string][]error),
		submitErrs: make(map[string][]error),
	}
}

func (m *mockPublisher) Login(ctx context.Context, cred secondary.AccountCredential) (secondary.Session, error) {
	m.logins = append(m.logins, cred.Label)
	if errs := m.loginErrs[cred.Label]; len(errs) > 0 {
		err := errs[0]
		m.loginErrs[cred.Label] = errs[1:]
		if err != nil {
			return nil, err
		}
	}
	session := &mockSession{account: cred.Label}
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *mockPublisher) SubmitPost(ctx context.Context, session secondary.Session, draft article.Draft, thumbnailPath string, opts secondary.PublishOptions) (string, error) {
	account := session.Account()
	m.submits = append(m.submits, submitCall{account: account, asDraft: opts.AsDraft, thumbnailPath: thumbnailPath})
	if errs := m.submitErrs[account]; len(errs) > 0 {
		err := errs[0]
		m.submitErrs[account] = errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "https://note.com/" + account + "/n/abc123", nil
}

// mockNotifier implements secondary.Notifier for testing.
type mockNotifier struct {
	sent []secondary.RunSummary
	err  error
}

func (m *mockNotifier) Notify(ctx context.Context, summary secondary.RunSummary) error {
	m.sent = append(m.sent, summary)
	return m.err
}

func (m *mockNotifier) Channel() string { return "mock" }

// ============================================================================
// Fixtures
// ============================================================================

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Quality.MinTotalScore = 40
	cfg.Quality.MinWordCount = 10
	cfg.Quality.MinHeadingCount = 1
	cfg.MaxRegenerations = 2
	cfg.MaxGenerationRetries = 3
	cfg.RecencyWindow = 5
	return cfg
}

func goodDraft() article.Draft {
	body := `イントロダクションの段落です。この記事では具体的な手順を丁寧に解説します。

## 最初のステップを理解する
具体的な手順をステップごとに解説する段落です。手順とステップの説明が続きます。

## 実践で気をつけたいポイント
実践で気をつけたいポイントを解説します。失敗しやすい箇所も取り上げます。

## 継続のコツと習慣化
継続するためのコツを紹介します。小さな習慣の積み重ねが結果につながります。

## まとめと次の一歩
まとめの段落です。記事全体の手順とポイントを振り返り、次の行動を提案します。
`
	return article.NewDraft(
		article.Theme{ID: "python-basics", Title: "Python入門"},
		"初心者でも挫折しないPython学習の完全ロードマップ",
		body,
		[]string{"Python", "プログラミング", "学習", "初心者", "入門"},
	)
}

func weakDraft() article.Draft {
	return article.NewDraft(
		article.Theme{ID: "python-basics", Title: "Python入門"},
		"短い",
		"見出しのない短い本文。",
		nil,
	)
}

func testAccounts(n int) []secondary.AccountCredential {
	accounts := make([]secondary.AccountCredential, n)
	for i := range accounts {
		accounts[i] = secondary.AccountCredential{
			Label:    fmt.Sprintf("account-%d", i+1),
			Email:    fmt.Sprintf("user%d@example.com", i+1),
			Password: "secret",
		}
	}
	return accounts
}

type pipelineFixture struct {
	service   *PipelineServiceImpl
	repo      *mockLedgerRepo
	generator *mockGenerator
	publisher *mockPublisher
	store     *mockThumbStore
	notifier  *mockNotifier
}

func newPipelineFixture(t *testing.T, accounts int, imageErr error) *pipelineFixture {
	t.Helper()

	repo := &mockLedgerRepo{}
	generator := &mockGenerator{drafts: []article.Draft{goodDraft()}}
	publisher := newMockPublisher()
	store := &mockThumbStore{}
	notifier := &mockNotifier{}

	source := &mockImageSource{data: []byte("png"), err: imageErr}
	resolver := NewAssetResolver([]secondary.ImageGenerator{source}, store, testLogger())
	dispatcher := NewDispatcher(publisher, testLogger())

	service := NewPipelineService(
		testConfig(),
		[]article.Theme{{ID: "python-basics", Title: "Python入門"}, {ID: "go-basics", Title: "Go入門"}},
		testAccounts(accounts),
		repo,
		generator,
		resolver,
		dispatcher,
		[]secondary.Notifier{notifier},
		testLogger(),
	)
	service.sleep = func(context.Context, time.Duration) error { return nil }

	return &pipelineFixture{
		service:   service,
		repo:      repo,
		generator: generator,
		publisher: publisher,
		store:     store,
		notifier:  notifier,
	}
}

func qualityTotal(t *testing.T, draft article.Draft) int {
	t.Helper()
	return quality.Evaluate(draft).Total
}

func defaultRequest() primary.RunRequest {
	return primary.RunRequest{ThumbnailEnabled: true, NotifyEnabled: true}
}

// ============================================================================
// Tests
// ============================================================================

func TestRunEndToEndSuccess(t *testing.T) {
	f := newPipelineFixture(t, 2, errors.New("image api down"))

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.OverallOutcome != run.OutcomeSuccess {
		t.Errorf("expected success outcome, got %s", result.OverallOutcome)
	}
	if len(result.Attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(result.Attempts))
	}
	for _, attempt := range result.Attempts {
		if attempt.Outcome != run.AttemptPublished {
			t.Errorf("account %s: expected published, got %s", attempt.Account, attempt.Outcome)
		}
	}

	// Failing image API means the fallback thumbnail is used.
	if result.ThumbnailKind != ThumbnailFallback {
		t.Errorf("expected fallback thumbnail, got %s", result.ThumbnailKind)
	}
	if f.store.fallbackCalls != 1 {
		t.Errorf("expected 1 fallback render, got %d", f.store.fallbackCalls)
	}

	// Exactly one ledger entry with both attempts.
	if len(f.repo.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(f.repo.entries))
	}
	entry := f.repo.entries[0]
	if entry.OverallOutcome != run.OutcomeSuccess {
		t.Errorf("ledger outcome = %s, want success", entry.OverallOutcome)
	}
	if len(entry.Attempts) != 2 {
		t.Errorf("ledger attempts = %d, want 2", len(entry.Attempts))
	}

	if len(f.notifier.sent) != 1 || !f.notifier.sent[0].Success {
		t.Errorf("expected one success notification, got %+v", f.notifier.sent)
	}
}

func TestRunFanOutIsolation(t *testing.T) {
	f := newPipelineFixture(t, 3, nil)
	f.publisher.loginErrs["account-2"] = []error{&run.AuthError{Account: "account-2", Cause: errors.New("credentials rejected")}}

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(result.Attempts))
	}
	want := []run.AttemptOutcome{run.AttemptPublished, run.AttemptFailed, run.AttemptPublished}
	for i, attempt := range result.Attempts {
		if attempt.Outcome != want[i] {
			t.Errorf("attempt %d outcome = %s, want %s", i, attempt.Outcome, want[i])
		}
	}
	if result.Attempts[0].Account != "account-1" || result.Attempts[2].Account != "account-3" {
		t.Errorf("results not in account order: %+v", result.Attempts)
	}

	if result.OverallOutcome != run.OutcomePartial {
		t.Errorf("expected partial_success, got %s", result.OverallOutcome)
	}

	// Recording still happens.
	if len(f.repo.entries) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(f.repo.entries))
	}
}

func TestRunDraftOnly(t *testing.T) {
	f := newPipelineFixture(t, 2, nil)

	req := defaultRequest()
	req.DraftOnly = true
	result, err := f.service.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(f.publisher.submits) != 2 {
		t.Fatalf("expected 2 submits, got %d", len(f.publisher.submits))
	}
	for _, call := range f.publisher.submits {
		if !call.asDraft {
			t.Errorf("account %s: submit not marked as draft", call.account)
		}
	}
	for _, attempt := range result.Attempts {
		if attempt.Outcome != run.AttemptDraftSaved {
			t.Errorf("account %s: expected draft_saved, got %s", attempt.Account, attempt.Outcome)
		}
	}
	if result.OverallOutcome != run.OutcomeSuccess {
		t.Errorf("draft run outcome = %s, want success", result.OverallOutcome)
	}
}

func TestRunQualityLoopBounded(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	// Every generation yields a draft that fails the quality gate.
	f.generator.drafts = []article.Draft{weakDraft()}

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// MaxRegenerations=2 means at most 3 generation calls, and the run
	// proceeds with the best draft instead of failing on quality.
	if f.generator.calls != 3 {
		t.Errorf("generation calls = %d, want 3", f.generator.calls)
	}
	if len(f.repo.entries) != 1 {
		t.Fatalf("expected run to be recorded despite low quality")
	}
	if result.QualityTotal >= 40 {
		t.Errorf("weak draft unexpectedly scored %d", result.QualityTotal)
	}
}

func TestRunKeepsBestDraftAcrossRegenerations(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	better := weakDraft()
	better.Hashtags = []string{"a", "b", "c", "d"}
	f.generator.drafts = []article.Draft{weakDraft(), better, weakDraft()}

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The middle draft scores highest and must be the one published.
	if len(f.publisher.submits) != 1 {
		t.Fatalf("expected 1 submit, got %d", len(f.publisher.submits))
	}
	expected := qualityTotal(t, better)
	if result.QualityTotal != expected {
		t.Errorf("published quality = %d, want best seen %d", result.QualityTotal, expected)
	}
}

func TestRunNoAvailableTheme(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	f.repo.entries = []*secondary.LedgerRecord{
		{RunID: "r1", ThemeID: "python-basics", Timestamp: time.Now()},
		{RunID: "r2", ThemeID: "go-basics", Timestamp: time.Now()},
	}

	_, err := f.service.Run(context.Background(), defaultRequest())
	if !errors.Is(err, run.ErrNoAvailableTheme) {
		t.Fatalf("expected ErrNoAvailableTheme, got %v", err)
	}

	// Aborted before publish: no new ledger entry, no submits.
	if len(f.repo.entries) != 2 {
		t.Errorf("aborted run must not append to the ledger")
	}
	if len(f.publisher.submits) != 0 {
		t.Errorf("aborted run must not contact the publisher")
	}
}

func TestRunThemeOverrideSkipsSelection(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	f.repo.entries = []*secondary.LedgerRecord{
		{RunID: "r1", ThemeID: "python-basics", Timestamp: time.Now()},
		{RunID: "r2", ThemeID: "go-basics", Timestamp: time.Now()},
	}

	req := defaultRequest()
	req.ThemeOverride = "AI活用術"
	result, err := f.service.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ThemeID != article.NormalizeThemeID("AI活用術") {
		t.Errorf("theme = %s, want normalized override", result.ThemeID)
	}
}

func TestRunGenerationHardErrorAborts(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	f.generator.errs = []error{&run.GenerationError{Cause: errors.New("invalid api key")}}

	_, err := f.service.Run(context.Background(), defaultRequest())
	var genErr *run.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if f.generator.calls != 1 {
		t.Errorf("hard error must not be retried, got %d calls", f.generator.calls)
	}
	if len(f.repo.entries) != 0 {
		t.Errorf("aborted run must not append to the ledger")
	}
}

func TestRunGenerationRateLimitRetried(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	rateLimited := &run.GenerationError{Cause: errors.New("429"), Transient: true}
	f.generator.errs = []error{rateLimited, rateLimited}
	f.generator.drafts = []article.Draft{goodDraft(), goodDraft(), goodDraft()}

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed after retries: %v", err)
	}
	if f.generator.calls != 3 {
		t.Errorf("generation calls = %d, want 3 (two rate limits then success)", f.generator.calls)
	}
	if result.OverallOutcome != run.OutcomeSuccess {
		t.Errorf("outcome = %s, want success", result.OverallOutcome)
	}
}

func TestRunLedgerWriteErrorIsFatal(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	f.repo.appendErr = errors.New("disk full")

	_, err := f.service.Run(context.Background(), defaultRequest())
	var ledgerErr *run.LedgerWriteError
	if !errors.As(err, &ledgerErr) {
		t.Fatalf("expected LedgerWriteError, got %v", err)
	}

	// Publishing happened; only the record failed.
	if len(f.publisher.submits) != 1 {
		t.Errorf("expected publish to have happened before the ledger failure")
	}
}

func TestRunNotificationFailureSwallowed(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)
	f.notifier.err = errors.New("webhook gone")

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("notification failure must not fail the run: %v", err)
	}
	if result.OverallOutcome != run.OutcomeSuccess {
		t.Errorf("outcome = %s, want success", result.OverallOutcome)
	}
}

func TestRunAllAccountsFailed(t *testing.T) {
	f := newPipelineFixture(t, 2, nil)
	f.publisher.loginErrs["account-1"] = []error{&run.AuthError{Account: "account-1", Cause: errors.New("rejected")}}
	f.publisher.loginErrs["account-2"] = []error{&run.AuthError{Account: "account-2", Cause: errors.New("rejected")}}

	result, err := f.service.Run(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.OverallOutcome != run.OutcomeFailure {
		t.Errorf("outcome = %s, want failure", result.OverallOutcome)
	}
	if len(f.repo.entries) != 1 {
		t.Fatalf("failed run must still be recorded exactly once")
	}
}

func TestRunThumbnailDisabled(t *testing.T) {
	f := newPipelineFixture(t, 1, nil)

	req := defaultRequest()
	req.ThumbnailEnabled = false
	result, err := f.service.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ThumbnailPath != "" {
		t.Errorf("thumbnail unexpectedly resolved: %s", result.ThumbnailPath)
	}
	if f.publisher.submits[0].thumbnailPath != "" {
		t.Errorf("submit carried a thumbnail path despite --no-thumbnail")
	}
}
