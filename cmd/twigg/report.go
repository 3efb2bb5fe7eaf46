package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	progress "gopkg.in/cheggaaa/pb.v1"

	"github.com/rohankatakam/twigg/internal/authors"
	"github.com/rohankatakam/twigg/internal/config"
	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/gather"
	"github.com/rohankatakam/twigg/internal/git"
	"github.com/rohankatakam/twigg/internal/output"
)

// Flags shared by every report command. They override the configuration
// file only when given explicitly.
var (
	formatFlag  string
	colorFlag   string
	sourceFlag  string
	allFlag     bool
	domainFlag  string
	workersFlag int
	daysFlag    int
)

func addReportFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&formatFlag, "format", "text", "output format: text, table, json or yaml")
	flags.StringVar(&colorFlag, "color", "auto", "color output: auto, always or never")
	flags.StringVar(&sourceFlag, "source", "git", "history source: git (binary) or native (go-git)")
	flags.BoolVar(&allFlag, "all", false, "count commits on every branch, not only HEAD")
	flags.StringVar(&domainFlag, "domain", "", "only count authors with an email in this domain")
	flags.IntVarP(&workersFlag, "workers", "j", 4, "repositories read in parallel")
	flags.IntVarP(&daysFlag, "days", "d", 0, "window length in days (default: default_days from config)")
}

func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = formatFlag
	}
	if flags.Changed("color") {
		cfg.Output.Color = colorFlag
	}
	if flags.Changed("source") {
		cfg.Source = sourceFlag
	}
	if flags.Changed("all") {
		cfg.AllBranches = allFlag
	}
	if flags.Changed("domain") {
		cfg.Authors.Domain = domainFlag
	}
	if flags.Changed("workers") {
		cfg.Workers = workersFlag
	}
	if flags.Changed("days") {
		cfg.DefaultDays = daysFlag
	}
}

// parseDays reads a window length argument
func parseDays(arg string) (int, error) {
	days, err := strconv.Atoi(arg)
	if err != nil || days < 1 {
		return 0, errors.UsageErrorf("number of days must be a positive integer, got %q", arg)
	}
	return days, nil
}

// gatherSet validates the configuration for vctx and reads every repository
// of the configured directory
func gatherSet(cmd *cobra.Command, vctx config.ValidationContext) (*gather.ContributionSet, error) {
	result := cfg.Validate(vctx)
	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	resolver := authors.New(cfg.Authors.Domain)
	if cfg.Authors.AliasesFile != "" {
		if err := resolver.LoadAliases(cfg.Authors.AliasesFile); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "load aliases")
		}
	}

	source, err := git.NewSource(cfg.Source, logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "create log source")
	}

	paths, err := git.ListRepositories(cfg.RepositoriesDirectory)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityCritical, "list repositories")
	}

	g := gather.New(cfg, source, resolver, logger)
	g.Diagnostics = cmd.ErrOrStderr()
	if bar := newProgress(len(paths)); bar != nil {
		g.OnRepository = bar.update
	}

	return g.Gather(cmd.Context(), paths, cfg.DefaultDays)
}

// newFormatter creates the configured formatter, coloring only a terminal in auto mode
func newFormatter(cmd *cobra.Command) (output.Formatter, error) {
	out, _ := cmd.OutOrStdout().(*os.File)
	f, err := output.NewFormatter(cfg.Output.Format, output.UseColor(cfg.Output.Color, out))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUsage, errors.SeverityCritical, "output")
	}
	return f, nil
}

// progressBar shows repositories read so far on stderr
type progressBar struct {
	bar   *progress.ProgressBar
	total int
	done  int
}

// newProgress returns nil unless stderr is a terminal and there is more than one repository
func newProgress(total int) *progressBar {
	if total < 2 || verbose || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}

	bar := progress.New(total)
	bar.Output = os.Stderr
	bar.ShowSpeed = false
	bar.ShowTimeLeft = false
	bar.SetMaxWidth(80)
	bar.Start()
	return &progressBar{bar: bar, total: total}
}

// update is called once per repository; calls are serialised by the gatherer
func (p *progressBar) update(path string, err error) {
	p.done++
	p.bar.Postfix(" " + git.RepositoryName(path))
	p.bar.Increment()
	if p.done == p.total {
		p.bar.Finish()
	}
}
