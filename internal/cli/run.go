// Package cli contains the cobra commands for autonote.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/ports/primary"
	"github.com/example/autonote/internal/wire"
)

// RunCmd returns the run command, the full publishing pipeline.
func RunCmd() *cobra.Command {
	var (
		draft       bool
		theme       string
		noThumbnail bool
		noNotify    bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate an article and publish it to note.com",
		Long: `Run the full publishing pipeline once:

  theme selection → AI generation → quality check → thumbnail →
  publication to every configured account → ledger entry → notification

Accounts come from NOTE_EMAIL/NOTE_PASSWORD (or NOTE_EMAIL_1/... for
multiple accounts); the OpenAI key from the variable named in config.json.

Examples:
  autonote run                   # generate and publish
  autonote run --draft           # save as draft on every account
  autonote run --theme "AI活用"  # override theme selection`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			logger := log.New(io.Discard, "", log.LstdFlags)
			if verbose {
				logger = log.New(os.Stderr, "", log.LstdFlags)
			}

			dir, err := config.Dir()
			if err != nil {
				return err
			}
			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return fmt.Errorf("no configuration found, run `autonote init` first: %w", err)
			}

			pipeline, err := wire.PipelineService(cfg, logger)
			if err != nil {
				return err
			}

			mode := "publish"
			if draft {
				mode = "draft"
			}
			banner("note.com auto publisher")
			fmt.Printf("mode: %s\n\n", mode)

			result, err := pipeline.Run(cmd.Context(), primary.RunRequest{
				DraftOnly:        draft,
				ThemeOverride:    theme,
				ThumbnailEnabled: !noThumbnail,
				NotifyEnabled:    !noNotify,
			})
			if err != nil {
				return err
			}

			printResult(result)
			if result.OverallOutcome != run.OutcomeSuccess {
				// The outcome is already printed; main exits nonzero
				// after closing the database.
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&draft, "draft", false, "save as draft instead of publishing")
	cmd.Flags().StringVar(&theme, "theme", "", "override theme selection")
	cmd.Flags().BoolVar(&noThumbnail, "no-thumbnail", false, "skip thumbnail generation")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "skip notifications")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable info logs")

	return cmd
}

func printResult(result *primary.RunResult) {
	fmt.Println()
	banner("result")
	fmt.Printf("run:       %s\n", result.RunID)
	fmt.Printf("theme:     %s\n", result.ThemeID)
	fmt.Printf("title:     %s\n", result.Title)
	fmt.Printf("quality:   %d/100 (grade %s)\n", result.QualityTotal, result.QualityGrade)
	for _, issue := range result.QualityIssues {
		fmt.Printf("  %s %s\n", color.New(color.FgYellow).Sprint("!"), issue)
	}
	for _, suggestion := range result.QualitySuggestions {
		fmt.Printf("  - %s\n", suggestion)
	}
	if result.ThumbnailPath != "" {
		fmt.Printf("thumbnail: %s (%s)\n", result.ThumbnailPath, result.ThumbnailKind)
	}

	fmt.Println()
	for _, attempt := range result.Attempts {
		icon := color.New(color.FgGreen).Sprint("✓")
		detail := string(attempt.Outcome)
		if attempt.Outcome == run.AttemptFailed {
			icon = color.New(color.FgRed).Sprint("✗")
			detail = attempt.Error
		} else if attempt.PostURL != "" {
			detail = attempt.PostURL
		}
		fmt.Printf("  %s %-12s %s\n", icon, attempt.Account, detail)
	}

	fmt.Println()
	switch result.OverallOutcome {
	case run.OutcomeSuccess:
		color.New(color.FgGreen).Println("all accounts succeeded")
	case run.OutcomePartial:
		color.New(color.FgYellow).Println("some accounts failed")
	default:
		color.New(color.FgRed).Println("all accounts failed")
	}
}

func banner(title string) {
	fmt.Println(strings.Repeat("=", 48))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 48))
}
