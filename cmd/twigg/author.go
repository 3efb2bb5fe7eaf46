package main

import (
	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/config"
)

var authorCmd = &cobra.Command{
	Use:   "author <name>",
	Short: "Show one author's commits per day",
	Long: `Prints an author's commit count, line counts and repositories over the
window, followed by a per-day histogram. Names match exactly first, then
case-insensitively.`,
	Example: `  twigg author "Alice Liddell" --days 14`,
	Args:    usageArgs(cobra.ExactArgs(1)),
	RunE:    runAuthor,
}

func runAuthor(cmd *cobra.Command, args []string) error {
	set, err := gatherSet(cmd, config.ValidationContextReport)
	if err != nil {
		return err
	}

	f, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	return f.Author(cmd.OutOrStdout(), set, args[0])
}
