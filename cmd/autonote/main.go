package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/autonote/internal/cli"
	"github.com/example/autonote/internal/db"
	"github.com/example/autonote/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "autonote",
		Short:   "autonote - automated note.com article publisher",
		Version: version.String(),
		Long: `autonote generates articles with the OpenAI API, checks their quality,
renders a cover thumbnail, and publishes them to note.com across every
configured account, recording each run in a local ledger.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.StatsCmd())
	rootCmd.AddCommand(cli.HistoryCmd())

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	err := rootCmd.Execute()
	db.Close()
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// The command already reported its result.
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
