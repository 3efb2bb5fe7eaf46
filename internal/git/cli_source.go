package git

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rohankatakam/twigg/internal/errors"
)

// CLISource reads history by running the git binary in the repository
type CLISource struct {
	// GitPath is the git executable (default "git" from PATH)
	GitPath string
	logger  *logrus.Logger
}

// NewCLISource creates a source that shells out to git
func NewCLISource(logger *logrus.Logger) *CLISource {
	return &CLISource{GitPath: "git", logger: logger}
}

// Log validates repoPath and returns its raw numstat log
func (s *CLISource) Log(ctx context.Context, repoPath string, q Query) ([]byte, error) {
	if err := s.Validate(ctx, repoPath); err != nil {
		return nil, err
	}

	output, err := s.git(ctx, repoPath, LogArgs(q)...)
	if err != nil {
		return nil, errors.RepositoryError(err, repoPath)
	}

	s.logger.WithFields(logrus.Fields{
		"repo":  repoPath,
		"bytes": len(output),
	}).Debug("read git log")
	return output, nil
}

// LogArgs builds the git log invocation for a query
func LogArgs(q Query) []string {
	args := []string{"log", "--numstat", "--format=raw", "--no-color"}
	if q.All {
		args = append(args, "--all")
	}
	if !q.Since.IsZero() {
		args = append(args, fmt.Sprintf("--since=%d", q.Since.Unix()))
	}
	return args
}

// Validate checks that repoPath is the top level of a repository.
// `git rev-parse --show-prefix` succeeds with an empty prefix only there,
// for both bare and non-bare repositories.
func (s *CLISource) Validate(ctx context.Context, repoPath string) error {
	info, err := os.Stat(repoPath)
	if err != nil {
		return errors.RepositoryError(err, repoPath)
	}
	if !info.IsDir() {
		return errors.RepositoryErrorf(repoPath, "%s is not a directory", repoPath)
	}

	output, err := s.git(ctx, repoPath, "rev-parse", "--show-prefix")
	if err != nil {
		return errors.RepositoryError(err, repoPath)
	}
	if prefix := strings.TrimSpace(string(output)); prefix != "" {
		return errors.RepositoryErrorf(repoPath, "%s is not the top level of a repository (prefix %q)", repoPath, prefix)
	}
	return nil
}

func (s *CLISource) git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.GitPath, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		// one line, so diagnostics stay "path\nerror\n"
		if msg := strings.Join(strings.Fields(stderr.String()), " "); msg != "" {
			return nil, fmt.Errorf("git %s failed: %w (stderr: %s)", args[0], err, msg)
		}
		return nil, fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return output, nil
}
