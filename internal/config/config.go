// Package config loads slopscan's configuration from a YAML file, expanding
// environment variables and filling in defaults for every field the file
// leaves unset, so an empty file still yields a working service. Load fails
// when the file itself cannot be read.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for the service.
type Config struct {
	Store        StoreConfig        `yaml:"store"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Codebase     CodebaseConfig     `yaml:"codebase"`
	LLM          LLMConfig          `yaml:"llm"`
	Tools        ToolsConfig        `yaml:"tools"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// StoreConfig configures the Findings Store's embedded database file.
type StoreConfig struct {
	// Path is the location of the SQLite database file. Defaults beneath
	// the user's configuration directory.
	Path string `yaml:"path"`
}

// OrchestratorConfig configures bounded-parallel loop scheduling.
type OrchestratorConfig struct {
	// MaxParallel is the maximum number of analysis loops running at once.
	MaxParallel int `yaml:"max_parallel"`
}

// CodebaseConfig points the service at the tree it analyzes.
type CodebaseConfig struct {
	// RootPath is the directory analysis loops enumerate files under when
	// the caller does not supply an explicit file list.
	RootPath string `yaml:"root_path"`
}

// LLMConfig configures the LLM Router.
type LLMConfig struct {
	// PreferredBackend, when set, is tried before the fixed priority order.
	PreferredBackend string `yaml:"preferred_backend"`

	// TimeoutOverridesSeconds overrides a named backend's default timeout.
	TimeoutOverridesSeconds map[string]int `yaml:"timeout_overrides_seconds"`
}

// ToolsConfig configures the External Tool Runner.
type ToolsConfig struct {
	// EnvDir is a project-local environment directory (for example a Python
	// virtualenv's bin directory) consulted after PATH when resolving a
	// tool's executable.
	EnvDir string `yaml:"env_dir"`

	// TimeoutOverridesSeconds maps tool names to timeouts in seconds. It is
	// parsed and kept here, but the External Tool Runner does not read it:
	// every tool runs with the timeout from its static table entry.
	TimeoutOverridesSeconds map[string]int `yaml:"timeout_overrides_seconds"`
}

// LoggingConfig configures the ambient slog logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Defaults to "info".
	Level string `yaml:"level"`

	// Format is "json" or "text". Defaults to "json".
	Format string `yaml:"format"`
}

// Load reads, expands, and validates a YAML config file, filling in defaults
// for any field the file left at its zero value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(strings.NewReader(os.ExpandEnv(string(data))))
}

// Parse decodes configuration from r, applying the same defaults as Load.
// Split out from Load so tests can exercise parsing without a filesystem.
func Parse(r io.Reader) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath()
	}
	if cfg.Orchestrator.MaxParallel <= 0 {
		cfg.Orchestrator.MaxParallel = 3
	}
	if cfg.Codebase.RootPath == "" {
		cfg.Codebase.RootPath = "."
	}
	if cfg.Tools.EnvDir == "" {
		cfg.Tools.EnvDir = ".venv/bin"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "slopscan", "findings.db")
}
