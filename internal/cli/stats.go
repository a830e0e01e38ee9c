package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/wire"
)

// StatsCmd returns the stats command.
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show publication statistics from the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := wire.LedgerService()
			if err != nil {
				return err
			}

			stats, err := ledger.Statistics(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println("Publication statistics")
			fmt.Println("──────────────────────")
			fmt.Printf("total runs:      %d\n", stats.TotalRuns)
			fmt.Printf("success:         %d\n", stats.SuccessCount)
			fmt.Printf("partial success: %d\n", stats.PartialCount)
			fmt.Printf("failure:         %d\n", stats.FailureCount)
			fmt.Printf("draft saves:     %d\n", stats.DraftCount)
			if stats.TotalRuns > 0 {
				fmt.Printf("success rate:    %.1f%%\n", stats.SuccessRate*100)
				fmt.Printf("avg quality:     %.1f/100\n", stats.AverageQuality)
			}

			if len(stats.PerThemeCounts) > 0 {
				fmt.Println()
				fmt.Println("Runs per theme:")
				themes := make([]string, 0, len(stats.PerThemeCounts))
				for theme := range stats.PerThemeCounts {
					themes = append(themes, theme)
				}
				sort.Strings(themes)
				for _, theme := range themes {
					fmt.Printf("  %-32s %d\n", theme, stats.PerThemeCounts[theme])
				}
			}

			return nil
		},
	}
}
