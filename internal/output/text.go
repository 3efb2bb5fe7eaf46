package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/rohankatakam/twigg/internal/gather"
)

// TextFormatter prints fixed-width lines:
//
//	  12 Alice Liddell            widgets:9, gadgets:3
//	----
//	  12
type TextFormatter struct {
	Color bool
}

func (f *TextFormatter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if f.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Stats prints one line per person, a separator and the total of the rows.
// A co-authored commit counts once per author in the total as well.
func (f *TextFormatter) Stats(w io.Writer, set *gather.ContributionSet) error {
	count := f.paint(color.FgCyan, color.Bold)
	for _, p := range set.Ranked() {
		if _, err := fmt.Fprintf(w, "%s %-24s %s\n", count.Sprintf("%4d", p.CommitCount()), p.Name, p.ScorecardString()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "----\n%s\n", count.Sprintf("%4d", set.TotalCommitCount()))
	return err
}

// Author prints a summary line, the scorecard and a bar per day of the window
func (f *TextFormatter) Author(w io.Writer, set *gather.ContributionSet, name string) error {
	report := NewAuthorReport(set, name)
	heading := f.paint(color.Bold)
	bar := f.paint(color.FgGreen)

	if !report.Found {
		_, err := fmt.Fprintf(w, "no commits by %s in the last %d days\n", name, report.Days)
		return err
	}

	fmt.Fprintf(w, "%s: %d commits (+%d -%d) in the last %d days\n",
		heading.Sprint(report.Name), report.Commits, report.Additions, report.Deletions, report.Days)
	fmt.Fprintf(w, "%s\n\n", scorecardString(report.Scorecard))

	for _, d := range report.Daily {
		if _, err := fmt.Fprintf(w, "%s %3d %s\n", d.Date.Format("2006-01-02"), d.Count, bar.Sprint(strings.Repeat("#", d.Count))); err != nil {
			return err
		}
	}
	return nil
}

// Pairs prints one line per pair, most frequent first
func (f *TextFormatter) Pairs(w io.Writer, set *gather.ContributionSet) error {
	count := f.paint(color.FgCyan, color.Bold)
	pairs := set.Pairs()
	if len(pairs) == 0 {
		_, err := fmt.Fprintln(w, "no co-authored commits")
		return err
	}
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s %s & %s\n", count.Sprintf("%4d", p.Count), p.First, p.Second); err != nil {
			return err
		}
	}
	return nil
}

// Teams prints one line per team with its members' counts
func (f *TextFormatter) Teams(w io.Writer, set *gather.ContributionSet, teams map[string][]string) error {
	count := f.paint(color.FgCyan, color.Bold)
	for _, team := range set.Teams(teams) {
		if _, err := fmt.Fprintf(w, "%s %-24s %s\n", count.Sprintf("%4d", team.CommitCount), team.Name, membersString(team.Members)); err != nil {
			return err
		}
	}
	return nil
}

func scorecardString(card []gather.RepositoryCount) string {
	parts := make([]string, len(card))
	for i, entry := range card {
		parts[i] = entry.String()
	}
	return strings.Join(parts, ", ")
}

func membersString(members []gather.MemberCount) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprintf("%s:%d", m.Name, m.Count)
	}
	return strings.Join(parts, ", ")
}

