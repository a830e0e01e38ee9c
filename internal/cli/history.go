package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/core/run"
	"github.com/example/autonote/internal/wire"
)

// HistoryCmd returns the history command.
func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := wire.LedgerService()
			if err != nil {
				return err
			}

			entries, err := ledger.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, entry := range entries {
				icon := color.New(color.FgGreen).Sprint("✓")
				switch entry.Outcome {
				case run.OutcomePartial:
					icon = color.New(color.FgYellow).Sprint("!")
				case run.OutcomeFailure:
					icon = color.New(color.FgRed).Sprint("✗")
				}
				fmt.Printf("%s %s  %-24s q=%-3d accounts=%d  %s\n",
					icon,
					entry.Timestamp.Local().Format("2006-01-02 15:04"),
					entry.ThemeID,
					entry.Quality,
					entry.Accounts,
					entry.Title,
				)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}
