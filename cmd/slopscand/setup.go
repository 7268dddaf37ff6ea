package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aa-workflow/slopscan/internal/config"
	"github.com/aa-workflow/slopscan/internal/llmrouter"
	"github.com/aa-workflow/slopscan/internal/orchestrator"
	"github.com/aa-workflow/slopscan/internal/store"
	"github.com/aa-workflow/slopscan/internal/toolrunner"
)

// app bundles everything a subcommand needs, built fresh per invocation.
type app struct {
	cfg    *config.Config
	store  *store.Store
	orch   *orchestrator.Orchestrator
	tools  *toolrunner.Runner
	router *llmrouter.Router
}

func newApp() (*app, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	tools := toolrunner.New(
		toolrunner.WithLogger(logger),
		toolrunner.WithEnvDir(cfg.Tools.EnvDir),
	)
	routerOpts := []llmrouter.Option{
		llmrouter.WithLogger(logger),
		llmrouter.WithPreferredBackend(cfg.LLM.PreferredBackend),
	}
	for name, secs := range cfg.LLM.TimeoutOverridesSeconds {
		routerOpts = append(routerOpts, llmrouter.WithTimeoutOverride(name, time.Duration(secs)*time.Second))
	}
	router := llmrouter.New(routerOpts...)

	orch := orchestrator.New(st, tools, router,
		orchestrator.WithLogger(logger),
		orchestrator.WithMaxParallel(cfg.Orchestrator.MaxParallel),
		orchestrator.WithRootPath(cfg.Codebase.RootPath),
	)
	orch.Initialize(context.Background())

	a := &app{cfg: cfg, store: st, orch: orch, tools: tools, router: router}
	cleanup := func() { st.Close() }
	return a, cleanup, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
