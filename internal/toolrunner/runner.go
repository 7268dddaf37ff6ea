package toolrunner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aa-workflow/slopscan/pkg/models"
)

// Runner discovers and invokes external static analyzers. It is
// constructor-injected wherever it is used; slopscan never keeps a
// package-level Runner singleton.
type Runner struct {
	log    *slog.Logger
	envDir string
	cache  *availabilityCache
	seq    atomic.Uint64
}

// Option configures a Runner at construction.
type Option func(*Runner)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithEnvDir sets the project-local environment directory consulted after
// PATH when resolving a tool's executable (for example a virtualenv's bin
// directory).
func WithEnvDir(dir string) Option {
	return func(r *Runner) { r.envDir = dir }
}

// New constructs a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		log:   slog.Default().With("component", "toolrunner"),
		cache: &availabilityCache{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports, per tool name, whether its version-check succeeds.
// Results are cached for a TTL; forceRefresh bypasses a fresh cache entry.
func (r *Runner) Available(ctx context.Context, forceRefresh bool) map[string]bool {
	if forceRefresh {
		r.cache.mu.Lock()
		r.cache.expiresAt = time.Time{}
		r.cache.mu.Unlock()
	}
	return r.cache.refresh(ctx, r.probeAll)
}

func (r *Runner) probeAll(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(tools))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, spec := range tools {
		wg.Add(1)
		go func(name string, spec toolSpec) {
			defer wg.Done()
			ok := r.probeOne(ctx, spec)
			mu.Lock()
			results[name] = ok
			mu.Unlock()
		}(name, spec)
	}
	wg.Wait()
	return results
}

func (r *Runner) probeOne(ctx context.Context, spec toolSpec) bool {
	path, found := resolveCommand(spec.CheckCmd[0], r.envDir)
	if !found {
		return false
	}
	_, _, err := runSubprocess(ctx, path, spec.CheckCmd[1:], checkCmdCeiling)
	return err == nil
}

// ToolsForFile returns the names of every tool applicable to path's
// extension, regardless of availability.
func (r *Runner) ToolsForFile(path string) []string {
	lang := extensionLanguage[strings.ToLower(filepath.Ext(path))]
	var names []string
	for name, spec := range tools {
		if spec.appliesTo(lang) {
			names = append(names, name)
		}
	}
	return names
}

// ToolsForCategory returns the names of every tool whose Detects list
// includes category.
func (r *Runner) ToolsForCategory(category string) []string {
	var names []string
	for name, spec := range tools {
		if spec.detectsCategory(category) {
			names = append(names, name)
		}
	}
	return names
}

// Run invokes a single named tool against path, returning normalized
// findings. An unavailable or timed-out tool returns an empty result, never
// an error the caller must special-case — only a genuinely unknown tool name
// is an error.
func (r *Runner) Run(ctx context.Context, tool, path string) ([]models.Finding, error) {
	spec, ok := tools[tool]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, tool)
	}

	avail := r.Available(ctx, false)
	if !avail[tool] {
		return nil, nil
	}

	execPath, found := resolveCommand(spec.Command[0], r.envDir)
	if !found {
		return nil, nil
	}

	args := append(append([]string{}, spec.Command[1:]...), path)
	stdout, stderr, err := runSubprocess(ctx, execPath, args, spec.Timeout)
	if err != nil {
		r.log.Warn("tool run failed", "tool", tool, "error", err, "stderr", string(stderr))
		return nil, nil
	}

	parser, ok := parsers[tool]
	if !ok {
		r.log.Warn("no parser registered for tool", "tool", tool)
		return nil, nil
	}
	findings := parser(stdout)
	for i := range findings {
		findings[i].Tool = tool
		if findings[i].ID == "" {
			findings[i].ID = r.nextFindingID(tool)
		}
	}
	return findings, nil
}

// RunAllApplicable runs every available tool applicable to path's extension
// concurrently and concatenates their findings.
func (r *Runner) RunAllApplicable(ctx context.Context, path string) ([]models.Finding, error) {
	avail := r.Available(ctx, false)
	candidates := r.ToolsForFile(path)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		all []models.Finding
	)
	for _, name := range candidates {
		if !avail[name] {
			continue
		}
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			findings, err := r.Run(ctx, name, path)
			if err != nil {
				r.log.Warn("run failed", "tool", name, "error", err)
				return
			}
			mu.Lock()
			all = append(all, findings...)
			mu.Unlock()
		}(name)
	}
	wg.Wait()
	return all, nil
}

func (r *Runner) nextFindingID(tool string) string {
	n := r.seq.Add(1)
	return fmt.Sprintf("slop-%s-%04d", tool, n)
}
