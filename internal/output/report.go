package output

import (
	"time"

	"github.com/rohankatakam/twigg/internal/gather"
)

// StatsReport is the serialisable form of the stats view
type StatsReport struct {
	ID    string    `json:"id" yaml:"id"`
	Since time.Time `json:"since" yaml:"since"`
	Until time.Time `json:"until" yaml:"until"`
	Days  int       `json:"days" yaml:"days"`

	People []PersonRow `json:"people" yaml:"people"`

	// Attributions: a commit with N authors counts N times
	TotalCommits int `json:"total_commits" yaml:"total_commits"`
	// Distinct commits
	PooledCommits int `json:"pooled_commits" yaml:"pooled_commits"`

	Failures []FailureRow `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// PersonRow is one ranked person
type PersonRow struct {
	Name      string                   `json:"name" yaml:"name"`
	Commits   int                      `json:"commits" yaml:"commits"`
	Additions int                      `json:"additions" yaml:"additions"`
	Deletions int                      `json:"deletions" yaml:"deletions"`
	Scorecard []gather.RepositoryCount `json:"scorecard" yaml:"scorecard"`
}

// FailureRow is one skipped repository
type FailureRow struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// AuthorReport is the serialisable form of the author view
type AuthorReport struct {
	Name      string                   `json:"name" yaml:"name"`
	Found     bool                     `json:"found" yaml:"found"`
	Days      int                      `json:"days" yaml:"days"`
	Commits   int                      `json:"commits" yaml:"commits"`
	Additions int                      `json:"additions" yaml:"additions"`
	Deletions int                      `json:"deletions" yaml:"deletions"`
	Scorecard []gather.RepositoryCount `json:"scorecard" yaml:"scorecard"`
	Daily     []gather.DayCount        `json:"daily" yaml:"daily"`
}

// NewStatsReport flattens a contribution set into ranked rows
func NewStatsReport(set *gather.ContributionSet) *StatsReport {
	report := &StatsReport{
		ID:            set.ID,
		Since:         set.Since,
		Until:         set.Until,
		Days:          set.Days,
		People:        []PersonRow{},
		TotalCommits:  set.TotalCommitCount(),
		PooledCommits: set.PooledCommitCount(),
	}

	for _, p := range set.Ranked() {
		report.People = append(report.People, PersonRow{
			Name:      p.Name,
			Commits:   p.CommitCount(),
			Additions: p.Additions(),
			Deletions: p.Deletions(),
			Scorecard: p.Scorecard(),
		})
	}

	for _, f := range set.Failures {
		report.Failures = append(report.Failures, FailureRow{Path: f.Path, Error: f.Err.Error()})
	}
	return report
}

// NewAuthorReport selects name from set and fills in every day of the window
func NewAuthorReport(set *gather.ContributionSet, name string) *AuthorReport {
	subset := set.SelectAuthor(name)
	report := &AuthorReport{
		Name:      name,
		Days:      set.Days,
		Scorecard: []gather.RepositoryCount{},
		Daily:     subset.DailyCounts(),
	}

	for _, p := range subset.People {
		report.Name = p.Name
		report.Found = true
		report.Commits = p.CommitCount()
		report.Additions = p.Additions()
		report.Deletions = p.Deletions()
		report.Scorecard = p.Scorecard()
	}
	return report
}
