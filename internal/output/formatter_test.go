package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/twigg/internal/gather"
	"github.com/rohankatakam/twigg/internal/gitlog"
)

func date(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

// testSet: Alice 2 (alpha, beta), Bob 1 (alpha, with Alice), Carol 1 (alpha)
func testSet() *gather.ContributionSet {
	set := gather.NewContributionSet(
		time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 12, 15, 0, 0, 0, time.UTC),
		2,
	)
	set.Add(&gitlog.Commit{Repository: "alpha", Date: date(11), Stat: gitlog.Stat{Additions: 3, Deletions: 1}}, []string{"Alice", "Bob"})
	set.Add(&gitlog.Commit{Repository: "beta", Date: date(12)}, []string{"Alice"})
	set.Add(&gitlog.Commit{Repository: "alpha", Date: date(12)}, []string{"Carol"})
	return set
}

func row(count int, name, rest string) string {
	return fmt.Sprintf("%4d %s%s %s\n", count, name, strings.Repeat(" ", 24-len(name)), rest)
}

func TestTextStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Stats(&buf, testSet()))

	expected := row(2, "Alice", "alpha:1, beta:1") +
		row(1, "Bob", "alpha:1") +
		row(1, "Carol", "alpha:1") +
		"----\n" +
		"   4\n"
	assert.Equal(t, expected, buf.String(), "the co-authored commit counts for Alice and Bob")
}

func TestTextStatsEmpty(t *testing.T) {
	set := gather.NewContributionSet(time.Now(), time.Now(), 0)

	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Stats(&buf, set))
	assert.Equal(t, "----\n   0\n", buf.String())
}

func TestTextStatsColor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{Color: true}).Stats(&buf, testSet()))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "Alice")
}

func TestTextAuthor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Author(&buf, testSet(), "alice"))

	expected := "Alice: 2 commits (+3 -1) in the last 2 days\n" +
		"alpha:1, beta:1\n" +
		"\n" +
		"2024-06-10   0 \n" +
		"2024-06-11   1 #\n" +
		"2024-06-12   1 #\n"
	assert.Equal(t, expected, buf.String())
}

func TestTextAuthorUnknown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Author(&buf, testSet(), "Mallory"))
	assert.Equal(t, "no commits by Mallory in the last 2 days\n", buf.String())
}

func TestTextPairs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextFormatter{}).Pairs(&buf, testSet()))
	assert.Equal(t, "   1 Alice & Bob\n", buf.String())

	buf.Reset()
	require.NoError(t, (&TextFormatter{}).Pairs(&buf, testSet().SelectAuthor("Carol")))
	assert.Equal(t, "no co-authored commits\n", buf.String())
}

func TestTextTeams(t *testing.T) {
	var buf bytes.Buffer
	teams := map[string][]string{"core": {"Alice", "Bob"}, "web": {"Carol"}}
	require.NoError(t, (&TextFormatter{}).Teams(&buf, testSet(), teams))

	expected := row(2, "core", "Alice:2, Bob:1") + row(1, "web", "Carol:1")
	assert.Equal(t, expected, buf.String())
}

func TestTableStats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Stats(&buf, testSet()))

	out := buf.String()
	assert.Contains(t, out, "REPOSITORIES")
	assert.Contains(t, out, "alpha:1, beta:1")
	assert.Contains(t, strings.ToUpper(out), "4 ATTRIBUTIONS")
	assert.Less(t, strings.Index(out, "Alice"), strings.Index(out, "Carol"))
}

func TestTableAuthor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Author(&buf, testSet(), "Alice"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Alice: 2 commits (+3 -1)\n"))
	assert.Contains(t, out, "2024-06-10")
	assert.Contains(t, out, "2024-06-12")
}

func TestJSONStats(t *testing.T) {
	set := testSet()
	set.Failures = []gather.RepositoryFailure{{Path: "/repos/broken", Err: fmt.Errorf("not a repository")}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Stats(&buf, set))

	var report StatsReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, set.ID, report.ID)
	assert.Equal(t, 4, report.TotalCommits)
	assert.Equal(t, 3, report.PooledCommits)
	require.Len(t, report.People, 3)
	assert.Equal(t, "Alice", report.People[0].Name)
	assert.Equal(t, 3, report.People[0].Additions)
	assert.Equal(t, []gather.RepositoryCount{{Repository: "alpha", Count: 1}, {Repository: "beta", Count: 1}}, report.People[0].Scorecard)
	assert.Equal(t, []FailureRow{{Path: "/repos/broken", Error: "not a repository"}}, report.Failures)
}

func TestJSONEmptyListsAreArrays(t *testing.T) {
	set := gather.NewContributionSet(time.Now(), time.Now(), 0)

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Stats(&buf, set))
	assert.Contains(t, buf.String(), `"people": []`)
	assert.NotContains(t, buf.String(), "failures")

	buf.Reset()
	require.NoError(t, (&JSONFormatter{}).Pairs(&buf, set))
	assert.Equal(t, "[]\n", buf.String())
}

func TestYAMLAuthor(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Author(&buf, testSet(), "Alice"))

	var report AuthorReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &report))

	assert.True(t, report.Found)
	assert.Equal(t, 2, report.Commits)
	require.Len(t, report.Daily, 3)
	assert.Equal(t, 0, report.Daily[0].Count)
	assert.True(t, report.Daily[1].Date.Equal(date(11)))
}

func TestYAMLTeams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLFormatter{}).Teams(&buf, testSet(), map[string][]string{"core": {"Alice"}}))

	var teams []gather.TeamCount
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &teams))
	require.Len(t, teams, 1)
	assert.Equal(t, "core", teams[0].Name)
	assert.Equal(t, 2, teams[0].CommitCount)
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format string
		want   Formatter
	}{
		{"", &TextFormatter{}},
		{FormatText, &TextFormatter{}},
		{FormatTable, &TableFormatter{}},
		{FormatJSON, &JSONFormatter{}},
		{FormatYAML, &YAMLFormatter{}},
	}
	for _, tt := range tests {
		f, err := NewFormatter(tt.format, false)
		require.NoError(t, err)
		assert.IsType(t, tt.want, f)
	}

	_, err := NewFormatter("csv", false)
	assert.Error(t, err)
}

func TestUseColor(t *testing.T) {
	assert.True(t, UseColor(ColorAlways, nil))
	assert.False(t, UseColor(ColorNever, nil))
	assert.False(t, UseColor(ColorAuto, nil))

	t.Setenv("NO_COLOR", "1")
	assert.True(t, UseColor(ColorAlways, nil))
	assert.False(t, UseColor(ColorAuto, nil))
}
