package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TWIGG_AUTHORS_DOMAIN
const EnvPrefix = "TWIGG"

// Config holds all configuration settings
type Config struct {
	// Directory whose entries are the repositories to report on
	RepositoriesDirectory string `yaml:"repositories_directory" mapstructure:"repositories_directory"`

	// Window length used when a command is given no days argument
	DefaultDays int `yaml:"default_days" mapstructure:"default_days"`

	// Log source: "git" (binary) or "native" (go-git)
	Source string `yaml:"source" mapstructure:"source"`

	// Walk every reference instead of HEAD only
	AllBranches bool `yaml:"all_branches" mapstructure:"all_branches"`

	// Repositories read in parallel
	Workers int `yaml:"workers" mapstructure:"workers"`

	Authors AuthorsConfig `yaml:"authors" mapstructure:"authors"`

	// Team name -> canonical member names
	Teams map[string][]string `yaml:"teams" mapstructure:"teams"`

	Output OutputConfig `yaml:"output" mapstructure:"output"`

	Log LogConfig `yaml:"log" mapstructure:"log"`
}

type AuthorsConfig struct {
	// Only commits whose author email ends in @Domain are counted
	Domain string `yaml:"domain" mapstructure:"domain"`
	// Alias file lines: "Canonical Name|alias|alias"
	AliasesFile string `yaml:"aliases_file" mapstructure:"aliases_file"`
}

type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format"` // "text", "table", "json", "yaml"
	Color  string `yaml:"color" mapstructure:"color"`   // "auto", "always", "never"
}

type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		DefaultDays: 30,
		Source:      "git",
		Workers:     4,
		Output: OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from path, or from the first twigg.yaml found in
// ".", ".twigg" and "~/.twigg" when path is empty. A missing file is not an
// error. Environment variables (TWIGG_*) override file values.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName("twigg")
		v.AddConfigPath(".")
		v.AddConfigPath(".twigg")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".twigg"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("repositories_directory", cfg.RepositoriesDirectory)
	v.SetDefault("default_days", cfg.DefaultDays)
	v.SetDefault("source", cfg.Source)
	v.SetDefault("all_branches", cfg.AllBranches)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("authors.domain", cfg.Authors.Domain)
	v.SetDefault("authors.aliases_file", cfg.Authors.AliasesFile)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.color", cfg.Output.Color)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.json", cfg.Log.JSON)
}

// loadEnvFiles loads .env files in order of precedence. godotenv never
// overwrites a variable that is already set, so earlier files win.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}
	if home, err := homedir.Dir(); err == nil {
		envFiles = append(envFiles, filepath.Join(home, ".twigg", ".env"))
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.RepositoriesDirectory, &c.Authors.AliasesFile, &c.Log.File} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// TeamNames returns the configured team names, sorted. Viper lowercases map
// keys, so names read from a file are lowercase.
func (c *Config) TeamNames() []string {
	names := make([]string, 0, len(c.Teams))
	for name := range c.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
