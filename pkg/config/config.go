// Package config loads interpreter settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

const (
	// ProjectFile is looked up in the working directory.
	ProjectFile = ".loxrc.yaml"
	// UserFile is looked up relative to the home directory.
	UserFile = ".lox/config.yaml"
)

// Config is the effective interpreter configuration.
type Config struct {
	MaxCallDepth int           `yaml:"max_call_depth"`
	Timeout      time.Duration `yaml:"timeout"`
	Natives      Natives       `yaml:"natives"`
	REPL         REPL          `yaml:"repl"`
	Diagnostics  Diagnostics   `yaml:"diagnostics"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Natives selects which native functions are installed. Deny overrides
// allow; an empty allow list means every registered native.
type Natives struct {
	Allow []string `yaml:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty"`
}

// REPL holds interactive-mode settings.
type REPL struct {
	Prompt         string `yaml:"prompt"`
	ContinuePrompt string `yaml:"continue_prompt"`
	HistoryFile    string `yaml:"history_file"`
}

// Diagnostics controls error rendering.
type Diagnostics struct {
	Pretty bool `yaml:"pretty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxCallDepth: interpreter.DefaultMaxCallDepth,
		REPL: REPL{
			Prompt:         "> ",
			ContinuePrompt: ". ",
			HistoryFile:    "~/.lox_history",
		},
	}
}

// Load reads the configuration with precedence project (./.loxrc.yaml) →
// user (~/.lox/config.yaml) → defaults. The first file that exists wins;
// a file that exists but does not parse is an error.
func Load(projectDir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(projectDir, ProjectFile))
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if home, herr := os.UserHomeDir(); herr == nil {
		cfg, err := LoadFile(filepath.Join(home, UserFile))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return Default(), nil
}

// LoadFile reads a single config file. Fields missing from the file keep
// their default values; unknown fields are rejected.
func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// Decode parses YAML from r on top of the defaults.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var issues []string
	if c.MaxCallDepth < 0 {
		issues = append(issues, fmt.Sprintf("max_call_depth must not be negative, got %d", c.MaxCallDepth))
	}
	if c.Timeout < 0 {
		issues = append(issues, fmt.Sprintf("timeout must not be negative, got %s", c.Timeout))
	}
	for _, name := range append(append([]string{}, c.Natives.Allow...), c.Natives.Deny...) {
		if strings.TrimSpace(name) == "" {
			issues = append(issues, "natives entries must not be empty")
			break
		}
	}
	if len(issues) > 0 {
		return fmt.Errorf("invalid: %s", strings.Join(issues, "; "))
	}
	return nil
}

// HistoryPath returns the REPL history file with a leading ~ expanded.
// It returns "" when history is disabled.
func (c *Config) HistoryPath() string {
	p := c.REPL.HistoryFile
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// YAML renders the configuration as it would be written to a file.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
