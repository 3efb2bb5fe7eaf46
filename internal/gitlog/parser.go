// Package gitlog decodes the raw output of `git log --numstat --format=raw`
// into Commit records.
//
// The log is consumed line by line by a small state machine. Within one commit
// block the recognised tokens must appear in order:
//
//	commit <digest>
//	author <name> <email> <ts> <tz>
//	committer <name> <email> <ts> <tz>
//	    subject            (optional)
//	    body...            (optional, discarded)
//	<add>\t<del>\t<path>   (optional, accumulated)
//
// Lines that match none of the token shapes (tree, parent, gpgsig, blank lines)
// are skipped. A recognised token in the wrong place fails the whole parse.
package gitlog

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rohankatakam/twigg/internal/errors"
)

// maxLineSize keeps bufio.Scanner from failing on unusually long lines
const maxLineSize = 10 * 1024 * 1024 // 10MB

type state int

const (
	expectHeader state = iota
	expectAuthor
	expectCommitter
	expectSubject
	inBody
	inStats
)

func (s state) String() string {
	switch s {
	case expectHeader:
		return "expect-header"
	case expectAuthor:
		return "expect-author"
	case expectCommitter:
		return "expect-committer"
	case expectSubject:
		return "expect-subject"
	case inBody:
		return "in-body"
	case inStats:
		return "in-stats"
	default:
		return "unknown"
	}
}

type tokenKind int

const (
	tokenNoise tokenKind = iota
	tokenHeader
	tokenAuthor
	tokenCommitter
	tokenMessage
	tokenNumstat
)

var (
	headerRe    = regexp.MustCompile(`^commit ([0-9a-f]{40})(?:\s.*)?$`)
	signatureRe = regexp.MustCompile(`^(author|committer)\s+(.*?)\s*<([^>]*)>\s+(-?\d+)\s+[+-]\d{4}$`)
	numstatRe   = regexp.MustCompile(`^(\d+|-)\t(\d+|-)\t(.+)$`)
)

type token struct {
	kind   tokenKind
	fields []string
}

func classify(line string) token {
	if strings.HasPrefix(line, "    ") {
		return token{kind: tokenMessage, fields: []string{line[4:]}}
	}
	if m := headerRe.FindStringSubmatch(line); m != nil {
		return token{kind: tokenHeader, fields: m[1:]}
	}
	if m := signatureRe.FindStringSubmatch(line); m != nil {
		kind := tokenAuthor
		if m[1] == "committer" {
			kind = tokenCommitter
		}
		return token{kind: kind, fields: m[2:]}
	}
	if m := numstatRe.FindStringSubmatch(line); m != nil {
		return token{kind: tokenNumstat, fields: m[1:]}
	}
	return token{kind: tokenNoise}
}

// Parser turns raw log text into commits.
// The zero value parses in the local time zone and leaves Repository empty.
type Parser struct {
	// Repository is stamped onto every parsed commit
	Repository string
	// Location decides the calendar date of a committer timestamp (default time.Local)
	Location *time.Location
}

// Parse decodes raw log text, most recent commit first as produced by git
func Parse(text string) ([]*Commit, error) {
	return Parser{}.Parse(strings.NewReader(text))
}

// ParseRepository decodes raw log text for the named repository
func ParseRepository(repository, text string) ([]*Commit, error) {
	return Parser{Repository: repository}.Parse(strings.NewReader(text))
}

// Parse reads the whole log from r
func (p Parser) Parse(r io.Reader) ([]*Commit, error) {
	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	m := &machine{repository: p.Repository, loc: loc, commits: []*Commit{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		m.line++
		if err := m.feed(classify(strings.TrimSuffix(scanner.Text(), "\r"))); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, errors.SeverityMedium, "scanning git log output")
	}

	if err := m.finish(); err != nil {
		return nil, err
	}
	return m.commits, nil
}

type machine struct {
	repository string
	loc        *time.Location
	state      state
	line       int
	current    *Commit
	commits    []*Commit
}

func (m *machine) feed(tok token) error {
	switch tok.kind {
	case tokenNoise:
		return nil

	case tokenHeader:
		if m.state == expectAuthor || m.state == expectCommitter {
			return m.unexpected("commit header")
		}
		m.flush()
		m.current = &Commit{Digest: tok.fields[0], Repository: m.repository}
		m.state = expectAuthor

	case tokenAuthor:
		if m.state != expectAuthor {
			return m.unexpected("author line")
		}
		m.current.AuthorRaw = tok.fields[0]
		m.current.Email = tok.fields[1]
		m.state = expectCommitter

	case tokenCommitter:
		if m.state != expectCommitter {
			return m.unexpected("committer line")
		}
		ts, err := strconv.ParseInt(tok.fields[2], 10, 64)
		if err != nil {
			return errors.ParseErrorf(m.line, "invalid committer timestamp %q", tok.fields[2])
		}
		m.current.Date = CalendarDate(time.Unix(ts, 0), m.loc)
		m.state = expectSubject

	case tokenMessage:
		switch m.state {
		case expectSubject:
			m.current.Subject = tok.fields[0]
			m.state = inBody
		case inBody:
			// body lines are not retained
		default:
			return m.unexpected("message line")
		}

	case tokenNumstat:
		switch m.state {
		case expectSubject, inBody, inStats:
			// binary files report "-" for both counts and contribute nothing
			additions, _ := strconv.Atoi(tok.fields[0])
			deletions, _ := strconv.Atoi(tok.fields[1])
			m.current.Stat.Add(additions, deletions)
			m.state = inStats
		default:
			return m.unexpected("numstat line")
		}
	}
	return nil
}

func (m *machine) finish() error {
	if m.state == expectAuthor || m.state == expectCommitter {
		return errors.ParseErrorf(m.line, "log ended in state %s for commit %s", m.state, m.current.Digest)
	}
	m.flush()
	return nil
}

func (m *machine) flush() {
	if m.current != nil {
		m.commits = append(m.commits, m.current)
		m.current = nil
	}
}

func (m *machine) unexpected(what string) error {
	err := errors.ParseErrorf(m.line, "unexpected %s in state %s", what, m.state)
	if m.current != nil {
		err.WithContext("digest", m.current.Digest)
	}
	return err
}

// CalendarDate returns the calendar date of t in loc as midnight UTC.
// Local midnight does not exist in every zone (DST switches at 00:00), so
// dates are kept in UTC where consecutive days are always 24h apart.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, mo, d := t.In(loc).Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
