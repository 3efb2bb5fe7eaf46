package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// initRepo creates an empty non-bare repository in a temp dir
func initRepo(t *testing.T) (string, *gogit.Repository) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "widgets")
	require.NoError(t, os.MkdirAll(dir, 0755))

	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func signature(name, email string, when time.Time) *object.Signature {
	return &object.Signature{Name: name, Email: email, When: when}
}

// commitFile writes content to name and commits it with the given author
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content, message string, author *object.Signature) {
	t.Helper()
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	_, err = worktree.Add(name)
	require.NoError(t, err)

	_, err = worktree.Commit(message, &gogit.CommitOptions{Author: author, Committer: author})
	require.NoError(t, err)
}
