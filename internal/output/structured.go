package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/twigg/internal/gather"
)

// JSONFormatter writes indented JSON documents for scripts
type JSONFormatter struct{}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *JSONFormatter) Stats(w io.Writer, set *gather.ContributionSet) error {
	return f.encode(w, NewStatsReport(set))
}

func (f *JSONFormatter) Author(w io.Writer, set *gather.ContributionSet, name string) error {
	return f.encode(w, NewAuthorReport(set, name))
}

func (f *JSONFormatter) Pairs(w io.Writer, set *gather.ContributionSet) error {
	return f.encode(w, set.Pairs())
}

func (f *JSONFormatter) Teams(w io.Writer, set *gather.ContributionSet, teams map[string][]string) error {
	return f.encode(w, set.Teams(teams))
}

// YAMLFormatter writes YAML documents
type YAMLFormatter struct{}

func (f *YAMLFormatter) encode(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (f *YAMLFormatter) Stats(w io.Writer, set *gather.ContributionSet) error {
	return f.encode(w, NewStatsReport(set))
}

func (f *YAMLFormatter) Author(w io.Writer, set *gather.ContributionSet, name string) error {
	return f.encode(w, NewAuthorReport(set, name))
}

func (f *YAMLFormatter) Pairs(w io.Writer, set *gather.ContributionSet) error {
	return f.encode(w, set.Pairs())
}

func (f *YAMLFormatter) Teams(w io.Writer, set *gather.ContributionSet, teams map[string][]string) error {
	return f.encode(w, set.Teams(teams))
}
