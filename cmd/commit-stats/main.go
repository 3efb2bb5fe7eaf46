// Command commit-stats prints per-author commit counts for every repository
// in a directory over the last N days.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/authors"
	"github.com/rohankatakam/twigg/internal/config"
	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/gather"
	"github.com/rohankatakam/twigg/internal/git"
	"github.com/rohankatakam/twigg/internal/logging"
	"github.com/rohankatakam/twigg/internal/output"
)

const usage = "USAGE: commit-stats <repos dir> <number of days>"

var (
	cfgFile string
	domain  string
	verbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.IsType(err, errors.ErrorTypeUsage) {
			fmt.Fprintln(os.Stdout, usage)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if e, ok := errors.As(err); ok && verbose {
				fmt.Fprint(os.Stderr, e.DetailedString())
			}
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "commit-stats <repos dir> <number of days>",
	Short:         "Commits per author across a directory of repositories",
	Args:          checkArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.Flags().StringVar(&domain, "domain", "", "only count authors with an email in this domain")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrorTypeUsage, errors.SeverityCritical, "commit-stats")
	})
}

func checkArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.UsageErrorf("expected 2 arguments, got %d", len(args))
	}
	if days, err := strconv.Atoi(args[1]); err != nil || days < 0 {
		return errors.UsageErrorf("number of days must be a non-negative integer, got %q", args[1])
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("domain") {
		cfg.Authors.Domain = domain
	}
	if cfg.Authors.Domain == "" {
		return errors.ConfigError("no author domain: pass --domain or set authors.domain")
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, logFile, err := logging.New(logging.Config{
		Level:      level,
		OutputFile: cfg.Log.File,
		JSONFormat: cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer logFile.Close()

	resolver := authors.New(cfg.Authors.Domain)
	if cfg.Authors.AliasesFile != "" {
		if err := resolver.LoadAliases(cfg.Authors.AliasesFile); err != nil {
			return err
		}
	}
	source, err := git.NewSource(cfg.Source, logger)
	if err != nil {
		return err
	}
	paths, err := git.ListRepositories(args[0])
	if err != nil {
		return errors.RepositoryError(err, args[0])
	}

	days, _ := strconv.Atoi(args[1])
	g := gather.New(cfg, source, resolver, logger)
	g.Diagnostics = cmd.ErrOrStderr()
	set, err := g.Gather(cmd.Context(), paths, days)
	if err != nil {
		return err
	}

	return (&output.TextFormatter{}).Stats(cmd.OutOrStdout(), set)
}
