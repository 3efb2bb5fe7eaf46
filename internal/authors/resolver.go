package authors

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/rohankatakam/twigg/internal/gitlog"
)

// Split expands a raw author field such as "Alice & Bob" or
// "Alice, Bob and Carol" into the individual names it encodes. Separators are
// "+", "&", "," and "and" in any case, the latter only as a whole word.
func Split(raw string) []string {
	runes := []rune(raw)
	names := []string{}
	start := 0
	emit := func(end int) {
		if name := strings.TrimSpace(string(runes[start:end])); name != "" {
			names = append(names, name)
		}
	}

	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '+' || runes[i] == '&' || runes[i] == ',':
			emit(i)
			start = i + 1
		case isAndWord(runes, i):
			emit(i)
			start = i + 3
			i += 2
		}
	}
	emit(len(runes))
	return names
}

// isAndWord reports whether runes[i:] starts with "and" not touching other word characters
func isAndWord(runes []rune, i int) bool {
	if i+3 > len(runes) || !strings.EqualFold(string(runes[i:i+3]), "and") {
		return false
	}
	if i > 0 && isWordRune(runes[i-1]) {
		return false
	}
	return i+3 == len(runes) || !isWordRune(runes[i+3])
}

// isWordRune matches Unicode word characters, so "Ñand" is one name
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Resolver decides which people a commit is attributed to
type Resolver struct {
	// Domain restricts attribution to emails ending in "@<Domain>". Empty admits everyone.
	Domain string
	// Aliases maps lower-cased alternate names to a canonical name
	Aliases map[string]string
}

// New creates a resolver for the given email domain
func New(domain string) *Resolver {
	return &Resolver{Domain: strings.TrimPrefix(strings.TrimSpace(domain), "@")}
}

// Includes reports whether the email passes the domain filter
func (r *Resolver) Includes(email string) bool {
	if r.Domain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(r.Domain))
}

// Resolve returns the names a commit is attributed to.
// ok is false when the commit is out of scope and must not be counted at all.
func (r *Resolver) Resolve(c *gitlog.Commit) (names []string, ok bool) {
	if !r.Includes(c.Email) {
		return nil, false
	}

	split := Split(c.AuthorRaw)
	names = make([]string, 0, len(split))
	seen := make(map[string]bool, len(split))
	for _, name := range split {
		name = r.Canonical(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, len(names) > 0
}

// Canonical maps a name through the alias table
func (r *Resolver) Canonical(name string) string {
	if canonical, exists := r.Aliases[strings.ToLower(name)]; exists {
		return canonical
	}
	return name
}

// LoadAliases reads a people dict file into the resolver
func (r *Resolver) LoadAliases(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open aliases file: %w", err)
	}
	defer file.Close()

	aliases, err := ReadAliases(file)
	if err != nil {
		return fmt.Errorf("read aliases file %s: %w", path, err)
	}
	r.Aliases = aliases
	return nil
}

// ReadAliases parses people dict lines of the form "Canonical Name|alias|alias".
// The first entry of a line is the canonical name; blank lines and lines
// starting with '#' are skipped.
func ReadAliases(r io.Reader) (map[string]string, error) {
	aliases := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids := strings.Split(line, "|")
		canonical := strings.TrimSpace(ids[0])
		if canonical == "" {
			return nil, fmt.Errorf("empty canonical name in %q", line)
		}
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				aliases[strings.ToLower(id)] = canonical
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return aliases, nil
}
