package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/rohankatakam/twigg/internal/gather"
)

// Formatter renders the report views
type Formatter interface {
	// Stats renders the ranked per-person summary
	Stats(w io.Writer, set *gather.ContributionSet) error
	// Author renders one person's activity, day by day over the window
	Author(w io.Writer, set *gather.ContributionSet, name string) error
	// Pairs renders co-authorship counts
	Pairs(w io.Writer, set *gather.ContributionSet) error
	// Teams renders per-team totals
	Teams(w io.Writer, set *gather.ContributionSet, teams map[string][]string) error
}

// Output formats
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// NewFormatter creates the formatter for format. colorize only affects the
// human-readable formats.
func NewFormatter(format string, colorize bool) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{Color: colorize}, nil
	case FormatTable:
		return &TableFormatter{Color: colorize}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, table, json or yaml)", format)
	}
}

// UseColor resolves a color mode for output written to f. In auto mode color
// is used only on a terminal and only when NO_COLOR is unset.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		return f != nil && term.IsTerminal(int(f.Fd()))
	}
}
