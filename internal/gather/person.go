package gather

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rohankatakam/twigg/internal/gitlog"
)

// Person is one resolved contributor and the commits attributed to them.
// Commits are kept in the order they were attributed, which is not
// necessarily chronological. A commit shared by several people is the same
// pointer in each of their lists.
type Person struct {
	Name    string           `json:"name" yaml:"name"`
	Commits []*gitlog.Commit `json:"-" yaml:"-"`
}

// RepositoryCount is one scorecard entry
type RepositoryCount struct {
	Repository string `json:"repository" yaml:"repository"`
	Count      int    `json:"count" yaml:"count"`
}

// String renders the entry as "repo:count"
func (rc RepositoryCount) String() string {
	return fmt.Sprintf("%s:%d", rc.Repository, rc.Count)
}

// CommitCount returns the number of commits attributed to the person
func (p *Person) CommitCount() int {
	return len(p.Commits)
}

// Additions sums added lines across the person's commits
func (p *Person) Additions() int {
	total := 0
	for _, c := range p.Commits {
		total += c.Stat.Additions
	}
	return total
}

// Deletions sums deleted lines across the person's commits
func (p *Person) Deletions() int {
	total := 0
	for _, c := range p.Commits {
		total += c.Stat.Deletions
	}
	return total
}

// Scorecard counts the person's commits per repository, highest count first.
// Ties keep the order in which the repositories were first seen for this person.
func (p *Person) Scorecard() []RepositoryCount {
	index := make(map[string]int)
	var card []RepositoryCount
	for _, c := range p.Commits {
		i, seen := index[c.Repository]
		if !seen {
			i = len(card)
			index[c.Repository] = i
			card = append(card, RepositoryCount{Repository: c.Repository})
		}
		card[i].Count++
	}

	sort.SliceStable(card, func(i, j int) bool {
		return card[i].Count > card[j].Count
	})
	return card
}

// ScorecardString renders the scorecard as "B:5, C:5, A:3"
func (p *Person) ScorecardString() string {
	card := p.Scorecard()
	parts := make([]string, len(card))
	for i, entry := range card {
		parts[i] = entry.String()
	}
	return strings.Join(parts, ", ")
}

// CountByDay returns a sparse histogram of the person's commits by calendar date
func (p *Person) CountByDay() map[time.Time]int {
	return countByDay(p.Commits)
}

func countByDay(commits []*gitlog.Commit) map[time.Time]int {
	hist := make(map[time.Time]int)
	for _, c := range commits {
		hist[c.Date]++
	}
	return hist
}
