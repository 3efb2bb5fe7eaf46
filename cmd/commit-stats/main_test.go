package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/twigg/internal/errors"
)

func commitAs(t *testing.T, dir, name, email string, n int) {
	t.Helper()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte(time.Now().String()+string(rune('a'+i))), 0644))
		_, err = worktree.Add("README")
		require.NoError(t, err)
		sig := &object.Signature{Name: name, Email: email, When: time.Now().Add(-time.Hour)}
		_, err = worktree.Commit("update", &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
	}
}

func execute(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", "", "--verbose=false"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"one argument", []string{"repos"}},
		{"three arguments", []string{"repos", "7", "extra"}},
		{"days not a number", []string{"repos", "seven"}},
		{"negative days", []string{"repos", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeUsage), "got %v", err)
		})
	}
}

func TestEndToEnd(t *testing.T) {
	reposDir := t.TempDir()
	commitAs(t, filepath.Join(reposDir, "alpha"), "Alice", "alice@example.com", 2)
	commitAs(t, filepath.Join(reposDir, "beta"), "Alice", "alice@example.com", 3)
	commitAs(t, filepath.Join(reposDir, "gamma"), "Alice & Bob", "alice@example.com", 1)
	t.Setenv("TWIGG_SOURCE", "native")

	stdout, err := execute("--domain", "example.com", reposDir, "7")
	require.NoError(t, err)

	expected := "   6 Alice                    beta:3, alpha:2, gamma:1\n" +
		"   1 Bob                      gamma:1\n" +
		"----\n" +
		"   7\n"
	assert.Equal(t, expected, stdout)
}

func TestDomainRequired(t *testing.T) {
	t.Setenv("TWIGG_AUTHORS_DOMAIN", "")

	_, err := execute("--domain", "", t.TempDir(), "7")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
