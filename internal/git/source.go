package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Query bounds one history read
type Query struct {
	// Since drops commits committed before this instant (zero = no bound)
	Since time.Time
	// All walks every reference instead of HEAD only
	All bool
}

// Source returns the raw `git log --numstat --format=raw` text of one repository
type Source interface {
	Log(ctx context.Context, repoPath string, q Query) ([]byte, error)
}

// Source kinds accepted by NewSource
const (
	SourceCLI    = "git"
	SourceNative = "native"
)

// NewSource creates the adapter named by kind
func NewSource(kind string, logger *logrus.Logger) (Source, error) {
	switch kind {
	case SourceCLI, "":
		return NewCLISource(logger), nil
	case SourceNative:
		return NewNativeSource(logger), nil
	default:
		return nil, fmt.Errorf("unknown log source %q (want %q or %q)", kind, SourceCLI, SourceNative)
	}
}

// RepositoryName returns the display name of a repository path: its base
// name, without a trailing ".git" for bare repositories.
func RepositoryName(repoPath string) string {
	name := filepath.Base(filepath.Clean(repoPath))
	if trimmed := strings.TrimSuffix(name, ".git"); trimmed != "" {
		return trimmed
	}
	return name
}

// ListRepositories returns every non-hidden entry of dir, sorted by name.
// Entries are not checked here: anything that is not a repository fails later
// and is reported as a skipped repository.
func ListRepositories(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read repositories directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
