package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/rohankatakam/twigg/internal/gather"
)

// TableFormatter renders each view as a borderless table
type TableFormatter struct {
	Color bool
}

func (f *TableFormatter) newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	if f.Color {
		colors := make([]tablewriter.Colors, len(header))
		for i := range colors {
			colors[i] = tablewriter.Colors{tablewriter.Bold, tablewriter.FgCyanColor}
		}
		table.SetHeaderColor(colors...)
	}
	return table
}

// Stats renders rank, commits, line counts and scorecard per person
func (f *TableFormatter) Stats(w io.Writer, set *gather.ContributionSet) error {
	table := f.newTable(w, "#", "Commits", "Name", "Added", "Deleted", "Repositories")
	for i, p := range set.Ranked() {
		table.Append([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(p.CommitCount()),
			p.Name,
			"+" + strconv.Itoa(p.Additions()),
			"-" + strconv.Itoa(p.Deletions()),
			p.ScorecardString(),
		})
	}
	table.SetFooter([]string{"", strconv.Itoa(set.PooledCommitCount()), "commits", "", "", fmt.Sprintf("%d attributions", set.TotalCommitCount())})
	table.Render()
	return nil
}

// Author renders one row per day of the window
func (f *TableFormatter) Author(w io.Writer, set *gather.ContributionSet, name string) error {
	report := NewAuthorReport(set, name)
	if !report.Found {
		_, err := fmt.Fprintf(w, "no commits by %s in the last %d days\n", name, report.Days)
		return err
	}

	title := report.Name
	if f.Color {
		title = color.New(color.Bold).Sprint(title)
	}
	fmt.Fprintf(w, "%s: %d commits (+%d -%d)\n\n", title, report.Commits, report.Additions, report.Deletions)

	table := f.newTable(w, "Date", "Commits")
	for _, d := range report.Daily {
		table.Append([]string{d.Date.Format("2006-01-02"), strconv.Itoa(d.Count)})
	}
	table.SetFooter([]string{"total", strconv.Itoa(report.Commits)})
	table.Render()
	return nil
}

// Pairs renders one row per pair
func (f *TableFormatter) Pairs(w io.Writer, set *gather.ContributionSet) error {
	table := f.newTable(w, "Commits", "Author", "Co-author")
	for _, p := range set.Pairs() {
		table.Append([]string{strconv.Itoa(p.Count), p.First, p.Second})
	}
	table.Render()
	return nil
}

// Teams renders one row per team
func (f *TableFormatter) Teams(w io.Writer, set *gather.ContributionSet, teams map[string][]string) error {
	table := f.newTable(w, "Team", "Commits", "Members")
	for _, team := range set.Teams(teams) {
		table.Append([]string{team.Name, strconv.Itoa(team.CommitCount), membersString(team.Members)})
	}
	table.Render()
	return nil
}
