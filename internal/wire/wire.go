// Package wire provides dependency injection for the autonote application.
// It creates singleton services with lazy initialization.
package wire

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/example/autonote/internal/adapters/browser"
	"github.com/example/autonote/internal/adapters/imaging"
	"github.com/example/autonote/internal/adapters/notify"
	openaiadapter "github.com/example/autonote/internal/adapters/openai"
	"github.com/example/autonote/internal/adapters/sqlite"
	"github.com/example/autonote/internal/app"
	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/db"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/ports/secondary"
)

var (
	ledgerService primary.LedgerService
	ledgerOnce    sync.Once
	ledgerErr     error
)

// LedgerService returns the singleton LedgerService instance. Only the
// database is required, so stats and history work without API keys.
func LedgerService() (primary.LedgerService, error) {
	ledgerOnce.Do(func() {
		database, err := db.GetDB()
		if err != nil {
			ledgerErr = fmt.Errorf("failed to initialize database: %w", err)
			return
		}
		ledgerService = app.NewLedgerService(sqlite.NewLedgerRepository(database))
	})
	return ledgerService, ledgerErr
}

// PipelineService builds a fully wired pipeline for one run. Unlike the
// ledger singleton this is constructed per invocation: it validates the
// environment (API key, accounts, theme catalog) at build time.
func PipelineService(cfg *config.Config, logger *log.Logger) (primary.PipelineService, error) {
	if logger == nil {
		logger = log.Default()
	}

	database, err := db.GetDB()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := sqlite.NewLedgerRepository(database)

	accounts, err := config.LoadAccounts()
	if err != nil {
		return nil, err
	}

	themes, err := config.LoadThemes(cfg.ThemesPath)
	if err != nil {
		return nil, err
	}

	generator, err := openaiadapter.NewGenerator(cfg.LLM, time.Duration(cfg.Timeouts.GenerationSeconds)*time.Second, logger)
	if err != nil {
		return nil, err
	}

	imageTimeout := time.Duration(cfg.Timeouts.ImageSeconds) * time.Second
	sources := []secondary.ImageGenerator{}
	if imageGen, err := openaiadapter.NewImageGenerator(cfg.LLM, imageTimeout, logger); err == nil {
		sources = append(sources, imageGen)
	} else {
		logger.Printf("[wire] image generation disabled: %v", err)
	}
	sources = append(sources, imaging.NewStockFetcher(imageTimeout, logger))

	resolver := app.NewAssetResolver(sources, imaging.NewStore(cfg.ThumbnailDir, logger), logger)
	dispatcher := app.NewDispatcher(browser.NewNotePublisher(cfg.Publish, cfg.Timeouts, logger), logger)

	return app.NewPipelineService(
		cfg, themes, accounts, repo, generator, resolver, dispatcher, Notifiers(), logger,
	), nil
}

// Notifiers assembles the configured notification channels. Channels with
// no webhook or token in the environment are skipped.
func Notifiers() []secondary.Notifier {
	const timeout = 10 * time.Second

	var notifiers []secondary.Notifier
	if url := os.Getenv("DISCORD_WEBHOOK_URL"); url != "" {
		notifiers = append(notifiers, notify.NewDiscordNotifier(url, timeout))
	}
	if token := os.Getenv("LINE_NOTIFY_TOKEN"); token != "" {
		notifiers = append(notifiers, notify.NewLineNotifier(token, timeout))
	}
	return notifiers
}
