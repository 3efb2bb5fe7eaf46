package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rohankatakam/twigg/internal/errors"
	"github.com/rohankatakam/twigg/internal/logging"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextReport - stats, author and pairs need repositories and a domain
	ValidationContextReport ValidationContext = "report"
	// ValidationContextTeams - teams also needs at least one team
	ValidationContextTeams ValidationContext = "teams"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

var (
	validSources = []string{"git", "native"}
	validFormats = []string{"text", "table", "json", "yaml"}
	validColors  = []string{"auto", "always", "never"}
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nwarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}

	return sb.String()
}

// Err returns the result as a config error, or nil when valid
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigError(strings.TrimRight(vr.Error(), "\n"))
}

// Validate validates configuration for the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextReport:
		c.validateReportSettings(result)
	case ValidationContextTeams:
		c.validateReportSettings(result)
		c.validateTeams(result, true)
	case ValidationContextAll:
		c.validateReportSettings(result)
		c.validateTeams(result, false)
	default:
		result.AddError("unknown validation context %q", ctx)
	}

	return result
}

func (c *Config) validateReportSettings(result *ValidationResult) {
	c.validateRepositories(result)
	c.validateAuthors(result)
	c.validateReport(result)
	c.validateOutput(result)
	c.validateLog(result)
}

func (c *Config) validateRepositories(result *ValidationResult) {
	if c.RepositoriesDirectory == "" {
		result.AddError("repositories_directory is required but not set")
		return
	}

	info, err := os.Stat(c.RepositoriesDirectory)
	if err != nil {
		result.AddError("repositories_directory %s: %v", c.RepositoriesDirectory, err)
		return
	}
	if !info.IsDir() {
		result.AddError("repositories_directory %s is not a directory", c.RepositoriesDirectory)
	}
}

func (c *Config) validateAuthors(result *ValidationResult) {
	domain := strings.TrimSpace(c.Authors.Domain)
	if domain == "" {
		result.AddError("authors.domain is required but not set")
	} else if strings.HasPrefix(domain, "@") {
		result.AddWarning("authors.domain %q should not start with @", domain)
	}

	if c.Authors.AliasesFile != "" {
		if _, err := os.Stat(c.Authors.AliasesFile); err != nil {
			result.AddError("authors.aliases_file %s: %v", c.Authors.AliasesFile, err)
		}
	}
}

func (c *Config) validateReport(result *ValidationResult) {
	if c.DefaultDays <= 0 {
		result.AddError("default_days must be a positive number of days, got %d", c.DefaultDays)
	}

	if !oneOf(c.Source, validSources) {
		result.AddError("source must be one of %s, got %q", strings.Join(validSources, ", "), c.Source)
	}

	if c.Workers <= 0 {
		result.AddError("workers must be at least 1, got %d", c.Workers)
	}
}

func (c *Config) validateTeams(result *ValidationResult, required bool) {
	if len(c.Teams) == 0 {
		if required {
			result.AddError("teams is required but no team is configured")
		}
		return
	}

	for _, name := range c.TeamNames() {
		if len(c.Teams[name]) == 0 {
			result.AddWarning("team %q has no members", name)
		}
	}
}

func (c *Config) validateOutput(result *ValidationResult) {
	if !oneOf(c.Output.Format, validFormats) {
		result.AddError("output.format must be one of %s, got %q", strings.Join(validFormats, ", "), c.Output.Format)
	}
	if !oneOf(c.Output.Color, validColors) {
		result.AddError("output.color must be one of %s, got %q", strings.Join(validColors, ", "), c.Output.Color)
	}
}

func (c *Config) validateLog(result *ValidationResult) {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		result.AddError("log.level: %v", err)
	}
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
