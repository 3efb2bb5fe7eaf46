package main

import (
	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats [repositories directory] [days]",
	Short: "Rank authors by commits over the last N days",
	Long: `Reads every repository in the directory and prints one line per author:
total commits, name and commits per repository. The closing line is the
number of distinct commits counted.

The directory and number of days default to repositories_directory and
default_days from the configuration.`,
	Example: `  twigg stats ~/src 7
  twigg stats --format table --domain example.com`,
	Args: usageArgs(cobra.MaximumNArgs(2)),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		cfg.RepositoriesDirectory = args[0]
	}
	if len(args) > 1 {
		days, err := parseDays(args[1])
		if err != nil {
			return err
		}
		cfg.DefaultDays = days
	}

	set, err := gatherSet(cmd, config.ValidationContextReport)
	if err != nil {
		return err
	}

	f, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	return f.Stats(cmd.OutOrStdout(), set)
}
