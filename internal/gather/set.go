package gather

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rohankatakam/twigg/internal/gitlog"
)

// RepositoryFailure records a repository that was skipped
type RepositoryFailure struct {
	Path string
	Err  error
}

// DayCount is one entry of a gap-filled histogram
type DayCount struct {
	Date  time.Time `json:"date" yaml:"date"`
	Count int       `json:"count" yaml:"count"`
}

// Pair counts the commits two people authored together
type Pair struct {
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
	Count  int    `json:"count" yaml:"count"`
}

// TeamCount summarises one configured team
type TeamCount struct {
	Name string `json:"name" yaml:"name"`
	// Distinct commits with at least one member among their authors
	CommitCount int           `json:"commits" yaml:"commits"`
	Members     []MemberCount `json:"members" yaml:"members"`
}

// MemberCount is one team member's commit count
type MemberCount struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

type attribution struct {
	commit *gitlog.Commit
	names  []string
}

// ContributionSet is the result of one report run: who committed what inside
// the window. Every commit it holds passed both the window and the domain filter.
type ContributionSet struct {
	// ID identifies the run in logs
	ID    string
	Since time.Time
	Until time.Time
	Days  int

	People map[string]*Person

	// Failures lists skipped repositories in input order
	Failures []RepositoryFailure

	attributions []attribution
}

// NewContributionSet creates an empty set for the window [since, until]
func NewContributionSet(since, until time.Time, days int) *ContributionSet {
	return &ContributionSet{
		ID:     uuid.New().String(),
		Since:  since,
		Until:  until,
		Days:   days,
		People: make(map[string]*Person),
	}
}

// Add attributes c to every name. Names must already be split and canonical.
func (s *ContributionSet) Add(c *gitlog.Commit, names []string) {
	if len(names) == 0 {
		return
	}
	s.attributions = append(s.attributions, attribution{commit: c, names: names})
	for _, name := range names {
		p := s.person(name)
		p.Commits = append(p.Commits, c)
	}
}

func (s *ContributionSet) person(name string) *Person {
	p, ok := s.People[name]
	if !ok {
		p = &Person{Name: name}
		s.People[name] = p
	}
	return p
}

// TotalCommitCount counts attributions: a commit with N authors counts N times
func (s *ContributionSet) TotalCommitCount() int {
	total := 0
	for _, p := range s.People {
		total += p.CommitCount()
	}
	return total
}

// PooledCommitCount counts distinct commits in the set
func (s *ContributionSet) PooledCommitCount() int {
	return len(s.attributions)
}

// Commits returns the distinct commits in the order they were added
func (s *ContributionSet) Commits() []*gitlog.Commit {
	commits := make([]*gitlog.Commit, len(s.attributions))
	for i, a := range s.attributions {
		commits[i] = a.commit
	}
	return commits
}

// Ranked orders people by commit count, highest first, then by name
func (s *ContributionSet) Ranked() []*Person {
	people := make([]*Person, 0, len(s.People))
	for _, p := range s.People {
		people = append(people, p)
	}
	sort.Slice(people, func(i, j int) bool {
		if people[i].CommitCount() != people[j].CommitCount() {
			return people[i].CommitCount() > people[j].CommitCount()
		}
		return people[i].Name < people[j].Name
	})
	return people
}

// CountByDay returns a sparse histogram of the set's distinct commits by calendar date
func (s *ContributionSet) CountByDay() map[time.Time]int {
	return countByDay(s.Commits())
}

// DailyCounts returns one entry per calendar day of the window, oldest first,
// with zero for days without commits
func (s *ContributionSet) DailyCounts() []DayCount {
	loc := s.Since.Location()
	return FillDays(s.CountByDay(), gitlog.CalendarDate(s.Since, loc), gitlog.CalendarDate(s.Until, loc))
}

// FillDays expands a sparse histogram into every calendar day from first to
// last inclusive. Keys and bounds are dates from gitlog.CalendarDate.
func FillDays(hist map[time.Time]int, first, last time.Time) []DayCount {
	y, m, d := first.Date()
	var days []DayCount
	for i := 0; ; i++ {
		day := time.Date(y, m, d+i, 0, 0, 0, 0, time.UTC)
		if day.After(last) {
			break
		}
		days = append(days, DayCount{Date: day, Count: hist[day]})
	}
	return days
}

// SelectAuthor returns a set holding only the named person and their commits.
// The name is matched exactly first, then case-insensitively. An unknown name
// gives an empty set.
func (s *ContributionSet) SelectAuthor(name string) *ContributionSet {
	subset := &ContributionSet{
		ID:       s.ID,
		Since:    s.Since,
		Until:    s.Until,
		Days:     s.Days,
		People:   make(map[string]*Person),
		Failures: s.Failures,
	}

	p := s.lookup(name)
	if p == nil {
		return subset
	}

	subset.People[p.Name] = p
	for _, a := range s.attributions {
		for _, n := range a.names {
			if n == p.Name {
				subset.attributions = append(subset.attributions, attribution{commit: a.commit, names: []string{p.Name}})
				break
			}
		}
	}
	return subset
}

func (s *ContributionSet) lookup(name string) *Person {
	if p, ok := s.People[name]; ok {
		return p
	}
	for _, p := range s.People {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// Pairs counts co-authored commits for every pair of people who share one,
// most frequent first, then by name
func (s *ContributionSet) Pairs() []Pair {
	counts := make(map[[2]string]int)
	for _, a := range s.attributions {
		names := append([]string(nil), a.names...)
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				counts[[2]string{names[i], names[j]}]++
			}
		}
	}

	pairs := make([]Pair, 0, len(counts))
	for key, count := range counts {
		pairs = append(pairs, Pair{First: key[0], Second: key[1], Count: count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	return pairs
}

// Teams summarises each team, busiest first, then by name. A commit by two
// members counts once for the team.
func (s *ContributionSet) Teams(teams map[string][]string) []TeamCount {
	result := make([]TeamCount, 0, len(teams))
	for name, members := range teams {
		memberSet := make(map[string]bool, len(members))
		tc := TeamCount{Name: name}
		for _, member := range members {
			memberSet[member] = true
			count := 0
			if p, ok := s.People[member]; ok {
				count = p.CommitCount()
			}
			tc.Members = append(tc.Members, MemberCount{Name: member, Count: count})
		}
		sort.SliceStable(tc.Members, func(i, j int) bool {
			return tc.Members[i].Count > tc.Members[j].Count
		})

		for _, a := range s.attributions {
			for _, n := range a.names {
				if memberSet[n] {
					tc.CommitCount++
					break
				}
			}
		}
		result = append(result, tc)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CommitCount != result[j].CommitCount {
			return result[i].CommitCount > result[j].CommitCount
		}
		return result[i].Name < result[j].Name
	})
	return result
}
