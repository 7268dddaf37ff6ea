package config

import (
	"strings"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Orchestrator.MaxParallel != 3 {
		t.Errorf("MaxParallel = %d, want 3", cfg.Orchestrator.MaxParallel)
	}
	if cfg.Codebase.RootPath != "." {
		t.Errorf("RootPath = %q, want \".\"", cfg.Codebase.RootPath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Store.Path == "" {
		t.Error("Store.Path should default to a non-empty path")
	}
}

func TestParseHonorsExplicitValues(t *testing.T) {
	yaml := `
store:
  path: /tmp/custom.db
orchestrator:
  max_parallel: 5
llm:
  preferred_backend: claude
`
	cfg, err := Parse(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Errorf("Store.Path = %q, want /tmp/custom.db", cfg.Store.Path)
	}
	if cfg.Orchestrator.MaxParallel != 5 {
		t.Errorf("MaxParallel = %d, want 5", cfg.Orchestrator.MaxParallel)
	}
	if cfg.LLM.PreferredBackend != "claude" {
		t.Errorf("PreferredBackend = %q, want claude", cfg.LLM.PreferredBackend)
	}
}
