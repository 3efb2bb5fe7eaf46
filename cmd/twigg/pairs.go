package main

import (
	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/config"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Count co-authored commits per pair of authors",
	Args:  usageArgs(cobra.NoArgs),
	RunE:  runPairs,
}

func runPairs(cmd *cobra.Command, args []string) error {
	set, err := gatherSet(cmd, config.ValidationContextReport)
	if err != nil {
		return err
	}

	f, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	return f.Pairs(cmd.OutOrStdout(), set)
}
