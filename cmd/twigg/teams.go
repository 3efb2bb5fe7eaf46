package main

import (
	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/config"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Total commits per team from the configuration",
	Long: `Groups authors into the teams listed under "teams" in the configuration.
A commit co-authored by two members of a team counts once for that team.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runTeams,
}

func runTeams(cmd *cobra.Command, args []string) error {
	set, err := gatherSet(cmd, config.ValidationContextTeams)
	if err != nil {
		return err
	}

	f, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	return f.Teams(cmd.OutOrStdout(), set, cfg.Teams)
}
