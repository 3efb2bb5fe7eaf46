package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/twigg/internal/config"
	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logrus.Logger
	logFile io.Closer
	cfg     *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		reportError(os.Stderr, cmd, err)
		stop()
		os.Exit(1)
	}
}

// reportError prints err, the command usage for usage errors and, with
// --verbose, the error's type, severity and context
func reportError(w io.Writer, cmd *cobra.Command, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if e, ok := errors.As(err); ok && verbose {
		fmt.Fprintf(w, "\n%s", e.DetailedString())
	}
	if errors.IsType(err, errors.ErrorTypeUsage) {
		fmt.Fprintf(w, "\n%s", cmd.UsageString())
	}
}

var rootCmd = &cobra.Command{
	Use:   "twigg",
	Short: "Twigg - commit statistics per author across many repositories",
	Long: `Twigg reads the history of every repository in a directory and reports
who committed what over the last N days. Co-authored commits ("Alice & Bob")
count for each author; only authors with an email in the configured domain
are counted.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup loads configuration, applies flag overrides and creates the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "load configuration")
	}
	applyFlags(cmd)

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, logFile, err = logging.New(logging.Config{
		Level:      level,
		OutputFile: cfg.Log.File,
		JSONFormat: cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "configure logging")
	}

	logger.WithFields(logrus.Fields{
		"config":  cfgFile,
		"source":  cfg.Source,
		"workers": cfg.Workers,
	}).Debug("configuration loaded")
	return nil
}

// closeLog releases the log file once a command has finished, successful or not
func closeLog() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func init() {
	cobra.OnFinalize(closeLog)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: twigg.yaml in ., .twigg or ~/.twigg)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addReportFlags(rootCmd)

	rootCmd.SetVersionTemplate(`Twigg {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(err, errors.ErrorTypeUsage, errors.SeverityCritical, cmd.CommandPath())
	})

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(authorCmd)
	rootCmd.AddCommand(pairsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(configCmd)
}

// usageArgs marks argument validation failures as usage errors
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return errors.Wrap(err, errors.ErrorTypeUsage, errors.SeverityCritical, cmd.CommandPath())
		}
		return nil
	}
}
