package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/config"
	"github.com/example/autonote/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize autonote configuration and ledger database",
		Long: `Create ~/.autonote/config.json with defaults, seed the theme
catalog, and initialize the ledger database schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}

			if _, err := config.LoadConfig(dir); err == nil {
				fmt.Printf("Configuration already exists at %s\n", filepath.Join(dir, "config.json"))
			} else {
				cfg := config.DefaultConfig()
				cfg.ThemesPath = filepath.Join(dir, "themes.yaml")
				cfg.ThumbnailDir = filepath.Join(dir, "thumbnails")
				if err := config.SaveConfig(dir, cfg); err != nil {
					return err
				}
				fmt.Printf("✓ Configuration written to %s\n", filepath.Join(dir, "config.json"))
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return err
			}
			if _, statErr := os.Stat(cfg.ThemesPath); os.IsNotExist(statErr) {
				if err := config.SaveThemes(cfg.ThemesPath, config.DefaultThemes()); err != nil {
					return err
				}
				fmt.Printf("✓ Theme catalog seeded at %s\n", cfg.ThemesPath)
			}

			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			fmt.Println("✓ Ledger database initialized")

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  set NOTE_EMAIL / NOTE_PASSWORD and OPENAI_API_KEY (see `autonote doctor`)")
			fmt.Println("  autonote run --draft")

			return nil
		},
	}
}
