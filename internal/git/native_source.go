package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/twigg/internal/errors"
)

// NativeSource walks history with go-git and renders it in the same raw
// numstat format the git binary produces, so both sources feed one parser.
type NativeSource struct {
	logger *logrus.Logger
}

// NewNativeSource creates a source that needs no git binary
func NewNativeSource(logger *logrus.Logger) *NativeSource {
	return &NativeSource{logger: logger}
}

// Log walks repoPath newest-first by committer time.
// When walking HEAD only, the walk stops at the first commit older than q.Since.
func (s *NativeSource) Log(ctx context.Context, repoPath string, q Query) ([]byte, error) {
	repo, err := gogit.PlainOpen(repoPath)
	if err != nil {
		return nil, errors.RepositoryError(err, repoPath)
	}

	opts := &gogit.LogOptions{Order: gogit.LogOrderCommitterTime}
	if q.All {
		opts.All = true
	} else {
		head, err := repo.Head()
		if err != nil {
			return nil, errors.RepositoryError(fmt.Errorf("resolve HEAD: %w", err), repoPath)
		}
		opts.From = head.Hash()
	}

	iter, err := repo.Log(opts)
	if err != nil {
		return nil, errors.RepositoryError(err, repoPath)
	}
	defer iter.Close()

	var buf bytes.Buffer
	count := 0
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !q.Since.IsZero() && c.Committer.When.Before(q.Since) {
			// --all interleaves refs, so only a HEAD walk is known to be monotonic
			if q.All {
				return nil
			}
			return storer.ErrStop
		}

		var stats object.FileStats
		if c.NumParents() <= 1 {
			// like `git log --numstat`, merges get no per-file stats
			fileStats, statErr := c.StatsContext(ctx)
			if statErr != nil {
				return fmt.Errorf("stats for %s: %w", c.Hash, statErr)
			}
			stats = fileStats
		}

		count++
		return WriteRaw(&buf, c, stats)
	})
	if err != nil {
		return nil, errors.RepositoryError(fmt.Errorf("walk history: %w", err), repoPath)
	}

	s.logger.WithFields(logrus.Fields{
		"repo":    repoPath,
		"commits": count,
	}).Debug("walked history")
	return buf.Bytes(), nil
}

// WriteRaw renders one commit the way `git log --numstat --format=raw` does
func WriteRaw(w io.Writer, c *object.Commit, stats object.FileStats) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "commit %s\n", c.Hash)
	fmt.Fprintf(&sb, "tree %s\n", c.TreeHash)
	for _, parent := range c.ParentHashes {
		fmt.Fprintf(&sb, "parent %s\n", parent)
	}
	writeSignature(&sb, "author", c.Author)
	writeSignature(&sb, "committer", c.Committer)
	sb.WriteString("\n")

	if message := strings.TrimRight(c.Message, "\n"); message != "" {
		for _, line := range strings.Split(message, "\n") {
			sb.WriteString("    " + line + "\n")
		}
		sb.WriteString("\n")
	}

	if len(stats) > 0 {
		for _, stat := range stats {
			fmt.Fprintf(&sb, "%d\t%d\t%s\n", stat.Addition, stat.Deletion, stat.Name)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeSignature(sb *strings.Builder, role string, sig object.Signature) {
	fmt.Fprintf(sb, "%s %s <%s> %d %s\n", role, sig.Name, sig.Email, sig.When.Unix(), sig.When.Format("-0700"))
}
