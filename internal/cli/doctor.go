package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the autonote environment",
		Long: `Environment health check for autonote.

Validates:
- Configuration file (~/.autonote/config.json)
- Theme catalog
- Account credentials in the environment
- OpenAI API key
- Ledger database
- Notification channels (optional)

Examples:
  autonote doctor           # Run full health check
  autonote doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()

			results := []CheckResult{
				checkConfig(),
				checkThemes(),
				checkAccounts(),
				checkAPIKey(),
				checkDatabase(),
				checkNotifiers(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check          Status")
				fmt.Println("─────────────────────")
				for _, r := range results {
					fmt.Printf("%-14s %s\n", r.Name, r.Status)
				}

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println()
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("  %s: %s\n", r.Name, r.Details)
					}
				}
				fmt.Println()
			}

			if hasErrors {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&quiet, "quiet", false, "exit code only, no output")
	return cmd
}

func checkConfig() CheckResult {
	dir, err := config.Dir()
	if err != nil {
		return CheckResult{"config", "✗", err.Error()}
	}
	if _, err := config.LoadConfig(dir); err != nil {
		return CheckResult{"config", "✗", "run `autonote init` to create it"}
	}
	return CheckResult{"config", "✓", ""}
}

func checkThemes() CheckResult {
	dir, err := config.Dir()
	if err != nil {
		return CheckResult{"themes", "✗", err.Error()}
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return CheckResult{"themes", "⚠", "config missing, cannot locate catalog"}
	}
	themes, err := config.LoadThemes(cfg.ThemesPath)
	if err != nil {
		return CheckResult{"themes", "✗", err.Error()}
	}
	return CheckResult{"themes", "✓", fmt.Sprintf("%d candidates", len(themes))}
}

func checkAccounts() CheckResult {
	accounts, err := config.LoadAccounts()
	if err != nil {
		return CheckResult{"accounts", "✗", err.Error()}
	}
	return CheckResult{"accounts", "✓", fmt.Sprintf("%d configured", len(accounts))}
}

func checkAPIKey() CheckResult {
	keyEnv := "OPENAI_API_KEY"
	if dir, err := config.Dir(); err == nil {
		if cfg, err := config.LoadConfig(dir); err == nil && cfg.LLM.APIKeyEnv != "" {
			keyEnv = cfg.LLM.APIKeyEnv
		}
	}
	if os.Getenv(keyEnv) == "" {
		return CheckResult{"api key", "✗", keyEnv + " is not set"}
	}
	return CheckResult{"api key", "✓", ""}
}

func checkDatabase() CheckResult {
	if _, err := db.GetDB(); err != nil {
		return CheckResult{"database", "✗", err.Error()}
	}
	return CheckResult{"database", "✓", ""}
}

func checkNotifiers() CheckResult {
	hasDiscord := os.Getenv("DISCORD_WEBHOOK_URL") != ""
	hasLine := os.Getenv("LINE_NOTIFY_TOKEN") != ""
	if !hasDiscord && !hasLine {
		return CheckResult{"notify", "⚠", "no notification channel configured"}
	}
	return CheckResult{"notify", "✓", ""}
}
