package llmrouter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Router discovers usable LLM backends and invokes them. It is always
// constructed explicitly and passed to whatever owns it (the Orchestrator);
// nothing in this package keeps a package-level instance.
type Router struct {
	log              *slog.Logger
	preferredBackend string
	timeoutOverrides map[string]time.Duration
	cache            *availabilityCache
}

// Option configures a Router at construction.
type Option func(*Router)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// WithPreferredBackend sets a backend tried before the fixed priority order.
func WithPreferredBackend(name string) Option {
	return func(r *Router) { r.preferredBackend = name }
}

// WithTimeoutOverride overrides a named backend's default timeout.
func WithTimeoutOverride(name string, timeout time.Duration) Option {
	return func(r *Router) {
		if r.timeoutOverrides == nil {
			r.timeoutOverrides = map[string]time.Duration{}
		}
		r.timeoutOverrides[name] = timeout
	}
}

// New constructs a Router.
func New(opts ...Option) *Router {
	r := &Router{
		log:   slog.Default().With("component", "llmrouter"),
		cache: &availabilityCache{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Available reports, per backend name, whether its version check succeeds.
func (r *Router) Available(ctx context.Context, forceRefresh bool) map[string]bool {
	if forceRefresh {
		r.cache.mu.Lock()
		r.cache.expiresAt = time.Time{}
		r.cache.mu.Unlock()
	}
	return r.cache.refresh(ctx, r.probeAll)
}

func (r *Router) probeAll(ctx context.Context) map[string]bool {
	results := make(map[string]bool, len(backends))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, spec := range backends {
		wg.Add(1)
		go func(name string, spec backendSpec) {
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

func (r *Router) probeOne(ctx context.Context, spec backendSpec) bool {
	path, found := resolveCommand(spec.CheckCmd[0])
	if !found {
		return false
	}
	_, _, err := runSubprocess(ctx, path, spec.CheckCmd[1:], "", checkCmdCeiling)
	return err == nil
}

// BestBackend selects a backend: the preferred one if set and available,
// otherwise the first available backend in priority order.
func (r *Router) BestBackend(ctx context.Context) (string, error) {
	avail := r.Available(ctx, false)
	if r.preferredBackend != "" && avail[r.preferredBackend] {
		return r.preferredBackend, nil
	}
	for _, name := range priority {
		if avail[name] {
			return name, nil
		}
	}
	return "", ErrBackendUnavailable
}

// Analyze invokes one LLM backend with prompt, appending the fixed JSON
// output contract. If backend is empty, the best available backend is
// selected; if it is set, that backend is used, failing with
// ErrBackendUnavailable if it is not available.
func (r *Router) Analyze(ctx context.Context, prompt, task, backend string, timeout time.Duration) (Response, error) {
	selected := backend
	if selected == "" {
		best, err := r.BestBackend(ctx)
		if err != nil {
			return Response{}, err
		}
		selected = best
	} else {
		avail := r.Available(ctx, false)
		if !avail[selected] {
			return Response{}, fmt.Errorf("%w: %s", ErrBackendUnavailable, selected)
		}
	}

	spec := backends[selected]
	effectiveTimeout := timeout
	if effectiveTimeout <= 0 {
		effectiveTimeout = r.timeoutFor(selected, spec)
	}

	fullPrompt := buildFullPrompt(task, prompt)
	path, found := resolveCommand(spec.Command[0])
	if !found {
		return Response{Backend: selected, Success: false, Error: "executable not found", Timestamp: time.Now()}, nil
	}

	start := time.Now()
	stdout, stderr, err := runSubprocess(ctx, path, spec.Command[1:], fullPrompt, effectiveTimeout)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		r.log.Error("analyze failed", "backend", selected, "error", err)
		errMsg := err.Error()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			errMsg = strings.TrimSpace(string(stderr))
		}
		return Response{
			Backend:   selected,
			LatencyMS: latency,
			Success:   false,
			Error:     errMsg,
			Timestamp: time.Now(),
		}, nil
	}
	if len(stderr) > 0 && len(stdout) == 0 {
		return Response{
			Backend:   selected,
			LatencyMS: latency,
			Success:   false,
			Error:     strings.TrimSpace(string(stderr)),
			Timestamp: time.Now(),
		}, nil
	}

	text := string(stdout)
	findings, done, parsed := parseReply(text)
	if !parsed {
		r.log.Warn("analyze: reply was not valid JSON", "backend", selected)
	}
	return Response{
		Text:      text,
		Findings:  findings,
		Done:      done,
		Backend:   selected,
		LatencyMS: latency,
		Success:   true,
		Timestamp: time.Now(),
	}, nil
}

func (r *Router) timeoutFor(name string, spec backendSpec) time.Duration {
	if override, ok := r.timeoutOverrides[name]; ok {
		return override
	}
	return spec.DefaultTimeout
}

// AnalyzeWithRetry iterates available backends in priority order, capped by
// maxRetries, returning the first successful response or ErrAllBackendsFailed
// carrying every attempted backend's error.
func (r *Router) AnalyzeWithRetry(ctx context.Context, prompt, task string, maxRetries int, timeout time.Duration) (Response, error) {
	avail := r.Available(ctx, false)
	var candidates []string
	for _, name := range priority {
		if avail[name] {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return Response{}, ErrBackendUnavailable
	}
	if maxRetries > 0 && maxRetries < len(candidates) {
		candidates = candidates[:maxRetries]
	}

	var errs []string
	for _, name := range candidates {
		resp, err := r.Analyze(ctx, prompt, task, name, timeout)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", name, err))
			continue
		}
		if resp.Success {
			return resp, nil
		}
		errs = append(errs, fmt.Sprintf("%s: %s", name, resp.Error))
	}
	return Response{}, fmt.Errorf("%w: %s", ErrAllBackendsFailed, strings.Join(errs, "; "))
}
