package gitlog

import "time"

// Commit represents one revision decoded from `git log --numstat --format=raw`
type Commit struct {
	Digest     string    `json:"digest" yaml:"digest"`
	Repository string    `json:"repository" yaml:"repository"` // repository name, not path
	AuthorRaw  string    `json:"author" yaml:"author"`         // may name several people
	Email      string    `json:"email" yaml:"email"`
	Date       time.Time `json:"date" yaml:"date"` // committer calendar date, see CalendarDate
	Subject    string    `json:"subject" yaml:"subject"`
	Stat       Stat      `json:"stat" yaml:"stat"`
}

// Stat is the sum of numstat lines across all files touched by a commit
type Stat struct {
	Additions int `json:"additions" yaml:"additions"`
	Deletions int `json:"deletions" yaml:"deletions"`
}

// Add accumulates one file's counts
func (s *Stat) Add(additions, deletions int) {
	s.Additions += additions
	s.Deletions += deletions
}
