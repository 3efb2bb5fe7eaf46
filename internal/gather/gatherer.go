// Package gather pools commits from many repositories into a ContributionSet.
package gather

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/twigg/internal/authors"
	"github.com/rohankatakam/twigg/internal/config"
	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/git"
	"github.com/rohankatakam/twigg/internal/gitlog"
)

// Gatherer reads repositories and builds contribution sets
type Gatherer struct {
	source   git.Source
	resolver *authors.Resolver
	logger   *logrus.Logger
	workers  int
	all      bool

	// Diagnostics receives two lines per skipped repository: the path, then the error
	Diagnostics io.Writer

	// Now returns the end of the window (default time.Now)
	Now func() time.Time

	// Location decides calendar dates (default time.Local)
	Location *time.Location

	// OnRepository is called once per repository as soon as it has been read.
	// Calls are serialised but arrive in completion order.
	OnRepository func(path string, err error)

	progressMu sync.Mutex
}

// New creates a gatherer reading through source with cfg's worker count and branch mode
func New(cfg *config.Config, source git.Source, resolver *authors.Resolver, logger *logrus.Logger) *Gatherer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Gatherer{
		source:      source,
		resolver:    resolver,
		logger:      logger,
		workers:     workers,
		all:         cfg.AllBranches,
		Diagnostics: os.Stderr,
		Now:         time.Now,
		Location:    time.Local,
	}
}

type repositoryResult struct {
	commits []*gitlog.Commit
	err     error
}

// Gather builds the contribution set for paths over the last days days.
// Repositories that cannot be read are skipped and reported; only a negative
// window or a cancelled context fail the whole run.
func (g *Gatherer) Gather(ctx context.Context, paths []string, days int) (*ContributionSet, error) {
	if days < 0 {
		return nil, errors.ValidationErrorf("window must be a non-negative number of days, got %d", days)
	}

	now := g.Now().In(g.Location)
	since := now.Add(-time.Duration(days) * 24 * time.Hour)
	set := NewContributionSet(since, now, days)

	log := g.logger.WithFields(logrus.Fields{
		"run":          set.ID,
		"repositories": len(paths),
		"days":         days,
	})
	log.Debug("gathering commits")

	results := make([]repositoryResult, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, path := range paths {
		i, path := i, path
		eg.Go(func() error {
			commits, err := g.read(egCtx, path, since)
			results[i] = repositoryResult{commits: commits, err: err}
			g.progress(path, err)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// merge in input order so output does not depend on scheduling
	var pooled []*gitlog.Commit
	for i, r := range results {
		if r.err != nil {
			g.skip(set, paths[i], r.err)
			continue
		}
		pooled = append(pooled, r.commits...)
	}

	cutoff := gitlog.CalendarDate(since, g.Location)
	excluded := 0
	for _, c := range pooled {
		if c.Date.Before(cutoff) {
			continue
		}
		names, ok := g.resolver.Resolve(c)
		if !ok {
			excluded++
			continue
		}
		set.Add(c, names)
	}

	log.WithFields(logrus.Fields{
		"pooled":   len(pooled),
		"excluded": excluded,
		"counted":  set.PooledCommitCount(),
		"people":   len(set.People),
		"skipped":  len(set.Failures),
	}).Debug("gathered commits")
	return set, nil
}

// read runs one repository's source and parser
func (g *Gatherer) read(ctx context.Context, path string, since time.Time) ([]*gitlog.Commit, error) {
	raw, err := g.source.Log(ctx, path, git.Query{Since: since, All: g.all})
	if err != nil {
		return nil, err
	}

	parser := gitlog.Parser{Repository: git.RepositoryName(path), Location: g.Location}
	commits, err := parser.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse log of %s: %w", path, err)
	}
	return commits, nil
}

func (g *Gatherer) skip(set *ContributionSet, path string, err error) {
	set.Failures = append(set.Failures, RepositoryFailure{Path: path, Err: err})

	g.logger.WithFields(logrus.Fields{
		"run":   set.ID,
		"repo":  path,
		"error": err.Error(),
	}).Debug("skipping repository")

	if g.Diagnostics != nil {
		msg := strings.Join(strings.Fields(err.Error()), " ")
		fmt.Fprintf(g.Diagnostics, "%s\n%s\n", path, msg)
	}
}

func (g *Gatherer) progress(path string, err error) {
	if g.OnRepository == nil {
		return
	}
	g.progressMu.Lock()
	defer g.progressMu.Unlock()
	g.OnRepository(path, err)
}
