package gather

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/twigg/internal/authors"
	"github.com/rohankatakam/twigg/internal/config"
	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/git"
	"github.com/rohankatakam/twigg/internal/logging"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// fakeSource serves canned raw logs. Unknown paths fail like a missing repository.
type fakeSource struct {
	logs map[string]string
	errs map[string]error

	mu      sync.Mutex
	queries map[string]git.Query
}

func (f *fakeSource) Log(ctx context.Context, path string, q git.Query) ([]byte, error) {
	f.mu.Lock()
	if f.queries == nil {
		f.queries = make(map[string]git.Query)
	}
	f.queries[path] = q
	f.mu.Unlock()

	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	text, ok := f.logs[path]
	if !ok {
		return nil, errors.RepositoryErrorf(path, "%s is not a repository", path)
	}
	return []byte(text), nil
}

// logBuilder writes raw numstat log text, newest commit first
type logBuilder struct {
	sb strings.Builder
	n  int
}

func (b *logBuilder) commit(author, email string, when time.Time, numstat ...string) *logBuilder {
	b.n++
	digest := fmt.Sprintf("%040x", b.n)
	fmt.Fprintf(&b.sb, "commit %s\n", digest)
	fmt.Fprintf(&b.sb, "tree %040x\n", 0)
	fmt.Fprintf(&b.sb, "author %s <%s> %d +0000\n", author, email, when.Unix())
	fmt.Fprintf(&b.sb, "committer %s <%s> %d +0000\n", author, email, when.Unix())
	fmt.Fprintf(&b.sb, "\n    change %d\n\n", b.n)
	if len(numstat) > 0 {
		for _, line := range numstat {
			b.sb.WriteString(line + "\n")
		}
		b.sb.WriteString("\n")
	}
	return b
}

func (b *logBuilder) String() string {
	return b.sb.String()
}

func daysAgo(d int) time.Time {
	return testNow.Add(-time.Duration(d) * 24 * time.Hour)
}

func newTestGatherer(source git.Source, domain string, workers int) (*Gatherer, *bytes.Buffer) {
	cfg := config.Default()
	cfg.Workers = workers

	g := New(cfg, source, authors.New(domain), logging.Discard())
	g.Now = func() time.Time { return testNow }
	g.Location = time.UTC

	var diagnostics bytes.Buffer
	g.Diagnostics = &diagnostics
	return g, &diagnostics
}

func TestGatherEndToEnd(t *testing.T) {
	alpha := new(logBuilder).
		commit("Alice", "alice@example.com", daysAgo(1), "3\t1\tmain.go").
		commit("Alice", "alice@example.com", daysAgo(2), "2\t0\tREADME")
	beta := new(logBuilder).
		commit("Alice", "alice@example.com", daysAgo(1)).
		commit("Alice", "alice@example.com", daysAgo(3)).
		commit("Alice", "alice@example.com", daysAgo(4))

	source := &fakeSource{logs: map[string]string{
		"/repos/alpha": alpha.String(),
		"/repos/beta":  beta.String(),
	}}
	g, diagnostics := newTestGatherer(source, "example.com", 2)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha", "/repos/beta"}, 7)
	require.NoError(t, err)

	require.Contains(t, set.People, "Alice")
	alice := set.People["Alice"]
	assert.Equal(t, 5, alice.CommitCount())
	assert.Equal(t, "beta:3, alpha:2", alice.ScorecardString())
	assert.Equal(t, 5, alice.Additions())
	assert.Equal(t, 1, alice.Deletions())

	assert.Equal(t, 5, set.TotalCommitCount())
	assert.Equal(t, 5, set.PooledCommitCount())
	assert.Empty(t, set.Failures)
	assert.Empty(t, diagnostics.String())
	assert.NotEmpty(t, set.ID)
	assert.Equal(t, 7, set.Days)
}

func TestGatherPassesWindowToSource(t *testing.T) {
	source := &fakeSource{logs: map[string]string{"/repos/alpha": ""}}
	g, _ := newTestGatherer(source, "example.com", 1)
	g.all = true

	set, err := g.Gather(context.Background(), []string{"/repos/alpha"}, 7)
	require.NoError(t, err)

	q := source.queries["/repos/alpha"]
	assert.Equal(t, daysAgo(7), q.Since)
	assert.True(t, q.All)
	assert.Equal(t, daysAgo(7), set.Since)
	assert.Equal(t, testNow, set.Until)
}

func TestGatherExcludesOtherDomains(t *testing.T) {
	log := new(logBuilder).
		commit("Alice", "alice@example.com", daysAgo(1)).
		commit("Mallory", "mallory@elsewhere.org", daysAgo(1)).
		commit("Alice & Mallory", "mallory@example.com.evil.org", daysAgo(2)).
		commit("Bob", "BOB@EXAMPLE.COM", daysAgo(2))

	source := &fakeSource{logs: map[string]string{"/repos/alpha": log.String()}}
	g, _ := newTestGatherer(source, "example.com", 1)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha"}, 7)
	require.NoError(t, err)

	assert.NotContains(t, set.People, "Mallory")
	assert.Equal(t, 1, set.People["Alice"].CommitCount())
	assert.Equal(t, 1, set.People["Bob"].CommitCount())
	assert.Equal(t, 2, set.TotalCommitCount())
	assert.Equal(t, 2, set.PooledCommitCount())
}

func TestGatherWindowPredicate(t *testing.T) {
	// the source ignores the window, so only the gatherer's own check applies
	log := new(logBuilder).
		commit("Alice", "alice@example.com", daysAgo(1)).
		commit("Alice", "alice@example.com", time.Date(2024, 6, 8, 1, 0, 0, 0, time.UTC)).
		commit("Alice", "alice@example.com", time.Date(2024, 6, 7, 23, 0, 0, 0, time.UTC)).
		commit("Alice", "alice@example.com", daysAgo(30))

	source := &fakeSource{logs: map[string]string{"/repos/alpha": log.String()}}
	g, _ := newTestGatherer(source, "example.com", 1)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha"}, 7)
	require.NoError(t, err)

	// since is 2024-06-08 12:00, compared by calendar date
	assert.Equal(t, 2, set.People["Alice"].CommitCount())
	for _, c := range set.Commits() {
		assert.False(t, c.Date.Before(time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)))
	}
}

func TestGatherWindowIsMonotonic(t *testing.T) {
	alpha := new(logBuilder)
	beta := new(logBuilder)
	for d := 0; d < 20; d++ {
		alpha.commit("Alice", "alice@example.com", daysAgo(d).Add(-time.Hour))
		if d%3 == 0 {
			beta.commit("Bob + Alice", "bob@example.com", daysAgo(d).Add(-2*time.Hour))
		}
	}

	source := &fakeSource{logs: map[string]string{
		"/repos/alpha": alpha.String(),
		"/repos/beta":  beta.String(),
	}}
	g, _ := newTestGatherer(source, "example.com", 2)
	paths := []string{"/repos/alpha", "/repos/beta"}

	prevTotal, prevPooled := 0, 0
	prevCounts := map[string]int{}
	for days := 0; days <= 25; days++ {
		set, err := g.Gather(context.Background(), paths, days)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, set.TotalCommitCount(), prevTotal, "days=%d", days)
		assert.GreaterOrEqual(t, set.PooledCommitCount(), prevPooled, "days=%d", days)
		for name, prev := range prevCounts {
			require.Contains(t, set.People, name, "days=%d", days)
			assert.GreaterOrEqual(t, set.People[name].CommitCount(), prev, "%s days=%d", name, days)
		}

		prevTotal, prevPooled = set.TotalCommitCount(), set.PooledCommitCount()
		for name, p := range set.People {
			prevCounts[name] = p.CommitCount()
		}
	}
	assert.Equal(t, 20+7, prevCounts["Alice"])
}

func TestGatherZeroRepositories(t *testing.T) {
	g, diagnostics := newTestGatherer(&fakeSource{}, "example.com", 4)

	set, err := g.Gather(context.Background(), nil, 30)
	require.NoError(t, err)

	assert.Empty(t, set.People)
	assert.Empty(t, set.Ranked())
	assert.Zero(t, set.TotalCommitCount())
	assert.Zero(t, set.PooledCommitCount())
	assert.Empty(t, set.Failures)
	assert.Empty(t, diagnostics.String())
}

func TestGatherSkipsFailedRepository(t *testing.T) {
	source := &fakeSource{logs: map[string]string{
		"/repos/alpha": new(logBuilder).commit("Alice", "alice@example.com", daysAgo(1)).String(),
		"/repos/gamma": new(logBuilder).commit("Carol", "carol@example.com", daysAgo(1)).String(),
	}}
	g, diagnostics := newTestGatherer(source, "example.com", 3)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha", "/repos/broken", "/repos/gamma"}, 7)
	require.NoError(t, err)

	assert.Len(t, set.People, 2)
	assert.Equal(t, "alpha:1", set.People["Alice"].ScorecardString())
	assert.Equal(t, "gamma:1", set.People["Carol"].ScorecardString())

	require.Len(t, set.Failures, 1)
	assert.Equal(t, "/repos/broken", set.Failures[0].Path)
	assert.True(t, errors.IsType(set.Failures[0].Err, errors.ErrorTypeRepository))

	lines := strings.Split(strings.TrimSuffix(diagnostics.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "/repos/broken", lines[0])
	assert.Contains(t, lines[1], "not a repository")
}

func TestGatherDiagnosticIsTwoLines(t *testing.T) {
	source := &fakeSource{errs: map[string]error{
		"/repos/broken": errors.RepositoryError(
			fmt.Errorf("warning: unable to access '.git/config'\nfatal: not a git repository"), "/repos/broken"),
	}}
	g, diagnostics := newTestGatherer(source, "example.com", 1)

	set, err := g.Gather(context.Background(), []string{"/repos/broken"}, 7)
	require.NoError(t, err)
	require.Len(t, set.Failures, 1)

	assert.Equal(t,
		"/repos/broken\nrepository /repos/broken: warning: unable to access '.git/config' fatal: not a git repository\n",
		diagnostics.String())
}

func TestGatherSkipsUnparseableRepository(t *testing.T) {
	source := &fakeSource{logs: map[string]string{
		"/repos/alpha":   new(logBuilder).commit("Alice", "alice@example.com", daysAgo(1)).String(),
		"/repos/garbled": "commit " + strings.Repeat("a", 40) + "\ncommit " + strings.Repeat("b", 40) + "\n",
	}}
	g, diagnostics := newTestGatherer(source, "example.com", 1)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha", "/repos/garbled"}, 7)
	require.NoError(t, err)

	assert.Equal(t, 1, set.TotalCommitCount())
	require.Len(t, set.Failures, 1)
	assert.True(t, errors.IsType(set.Failures[0].Err, errors.ErrorTypeParse))
	assert.True(t, strings.HasPrefix(diagnostics.String(), "/repos/garbled\n"))
}

func TestGatherSharesCompoundCommits(t *testing.T) {
	log := new(logBuilder).commit("Alice & Bob", "pair@example.com", daysAgo(1))
	source := &fakeSource{logs: map[string]string{"/repos/alpha": log.String()}}
	g, _ := newTestGatherer(source, "example.com", 1)

	set, err := g.Gather(context.Background(), []string{"/repos/alpha"}, 7)
	require.NoError(t, err)

	require.Len(t, set.People["Alice"].Commits, 1)
	require.Len(t, set.People["Bob"].Commits, 1)
	assert.Same(t, set.People["Alice"].Commits[0], set.People["Bob"].Commits[0])
	assert.Equal(t, 2, set.TotalCommitCount())
	assert.Equal(t, 1, set.PooledCommitCount())
}

func TestGatherAppliesAliases(t *testing.T) {
	log := new(logBuilder).
		commit("alice", "alice@example.com", daysAgo(1)).
		commit("Alice Liddell", "alice@example.com", daysAgo(2)).
		commit("ALICE and Bob", "bob@example.com", daysAgo(3))
	source := &fakeSource{logs: map[string]string{"/repos/alpha": log.String()}}
	g, _ := newTestGatherer(source, "example.com", 1)
	g.resolver.Aliases = map[string]string{"alice": "Alice Liddell", "alice liddell": "Alice Liddell"}

	set, err := g.Gather(context.Background(), []string{"/repos/alpha"}, 7)
	require.NoError(t, err)

	assert.Len(t, set.People, 2)
	assert.Equal(t, 3, set.People["Alice Liddell"].CommitCount())
	assert.Equal(t, 1, set.People["Bob"].CommitCount())
}

func TestGatherIsDeterministicAcrossWorkers(t *testing.T) {
	logs := make(map[string]string)
	var paths []string
	for r := 0; r < 12; r++ {
		path := fmt.Sprintf("/repos/repo%02d", r)
		paths = append(paths, path)
		b := new(logBuilder)
		for c := 0; c <= r%4; c++ {
			b.commit([]string{"Alice", "Bob", "Carol"}[(r+c)%3], "dev@example.com", daysAgo(c))
		}
		logs[path] = b.String()
	}
	source := &fakeSource{logs: logs}

	render := func(workers int) []string {
		g, _ := newTestGatherer(source, "example.com", workers)
		var seen []string
		g.OnRepository = func(path string, err error) { seen = append(seen, path) }

		set, err := g.Gather(context.Background(), paths, 7)
		require.NoError(t, err)
		assert.ElementsMatch(t, paths, seen)

		var rows []string
		for _, p := range set.Ranked() {
			rows = append(rows, fmt.Sprintf("%d %s %s", p.CommitCount(), p.Name, p.ScorecardString()))
		}
		return rows
	}

	assert.Equal(t, render(1), render(8))
}

func TestGatherRejectsNegativeWindow(t *testing.T) {
	g, _ := newTestGatherer(&fakeSource{}, "example.com", 1)

	_, err := g.Gather(context.Background(), nil, -1)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestGatherCancelled(t *testing.T) {
	source := &fakeSource{logs: map[string]string{"/repos/alpha": ""}}
	g, _ := newTestGatherer(source, "example.com", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Gather(ctx, []string{"/repos/alpha"}, 7)
	assert.ErrorIs(t, err, context.Canceled)
}
