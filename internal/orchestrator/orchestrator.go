// Package orchestrator owns every analysis loop, runs them in priority
// order under a bounded-parallel semaphore, and exposes the read paths
// (status, findings, stats) and write paths (acknowledge, mark fixed, mark
// false positive) the outer surfaces use.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aa-workflow/slopscan/internal/llmrouter"
	"github.com/aa-workflow/slopscan/internal/looprunner"
	"github.com/aa-workflow/slopscan/internal/store"
	"github.com/aa-workflow/slopscan/internal/toolrunner"
	"github.com/aa-workflow/slopscan/pkg/models"
)

// Store is the subset of store.Store the Orchestrator needs.
type Store interface {
	looprunner.FindingStore
	Get(ctx context.Context, id string) (models.Finding, error)
	List(ctx context.Context, filters models.Filters, limit, offset int, orderBy models.OrderBy) ([]models.Finding, error)
	SetStatus(ctx context.Context, id string, status models.Status) (int64, error)
	Stats(ctx context.Context) (models.Stats, error)
	AddScanRun(ctx context.Context, run models.ScanRun) (int64, error)
	AddLoopRun(ctx context.Context, run models.LoopRun) (int64, error)
	RecentScans(ctx context.Context, limit int) ([]models.ScanRun, error)
	LoopHistory(ctx context.Context, loopName string, limit int) ([]models.LoopRun, error)
}

// Orchestrator owns one Loop per descriptor and coordinates running them.
type Orchestrator struct {
	store      Store
	tools      *toolrunner.Runner
	router     *llmrouter.Router
	log        *slog.Logger
	rootPath   string
	maxParallel int

	mu    sync.RWMutex
	loops map[string]*looprunner.Loop
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithMaxParallel bounds how many loops run concurrently in RunAll.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

// WithRootPath sets the codebase root loops enumerate files under.
func WithRootPath(path string) Option {
	return func(o *Orchestrator) { o.rootPath = path }
}

// New constructs an Orchestrator wired to the given store, tool runner, and
// LLM router. RunAll and RunSpecific call Initialize themselves; Status,
// LoopStatus, StopLoop, and StopAll see no loops until Initialize has run.
func New(st *store.Store, tools *toolrunner.Runner, router *llmrouter.Router, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       st,
		tools:       tools,
		router:      router,
		log:         slog.Default().With("component", "orchestrator"),
		rootPath:    ".",
		maxParallel: 3,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Initialize constructs a Loop for every registered descriptor and probes
// LLM backend and external tool availability, warning but not failing if
// none are usable. It is idempotent: calling it again is a no-op once loops
// already exist.
func (o *Orchestrator) Initialize(ctx context.Context) {
	o.mu.Lock()
	if o.loops != nil {
		o.mu.Unlock()
		return
	}
	var tools looprunner.ToolRunner
	if o.tools != nil {
		tools = o.tools
	}
	o.loops = make(map[string]*looprunner.Loop, len(looprunner.Descriptors))
	for name, d := range looprunner.Descriptors {
		o.loops[name] = looprunner.New(d, o.store, o.router, tools, o.log)
	}
	o.mu.Unlock()

	o.probeAvailability(ctx)
}

func (o *Orchestrator) probeAvailability(ctx context.Context) {
	if o.router != nil {
		backends := o.router.Available(ctx, false)
		if !anyAvailable(backends) {
			o.log.Warn("no LLM backends available at startup")
		}
	}
	if o.tools != nil {
		tools := o.tools.Available(ctx, false)
		if !anyAvailable(tools) {
			o.log.Warn("no external tools available at startup")
		}
	}
}

func anyAvailable(m map[string]bool) bool {
	for _, ok := range m {
		if ok {
			return true
		}
	}
	return false
}

func (o *Orchestrator) loop(name string) (*looprunner.Loop, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	l, ok := o.loops[name]
	return l, ok
}

// RunAll runs every loop in priority order, bounded by the configured
// max-parallel semaphore when parallel is true; otherwise loops run one at a
// time in priority order.
func (o *Orchestrator) RunAll(ctx context.Context, parallel bool) map[string]looprunner.Result {
	return o.RunSpecific(ctx, looprunner.PriorityOrder, parallel)
}

// RunSpecific runs the named loops (in the given order), bounded by the
// configured max-parallel semaphore when parallel is true.
func (o *Orchestrator) RunSpecific(ctx context.Context, names []string, parallel bool) map[string]looprunner.Result {
	o.Initialize(ctx)
	start := time.Now()

	results := make(map[string]looprunner.Result, len(names))
	var mu sync.Mutex

	run := func(name string) {
		l, ok := o.loop(name)
		if !ok {
			o.log.Warn("run requested for unknown loop", "loop", name)
			return
		}
		result := l.Run(ctx, nil, o.rootPath)
		o.recordLoopRun(ctx, result)
		mu.Lock()
		results[name] = result
		mu.Unlock()
	}

	if !parallel {
		for _, name := range names {
			run(name)
		}
	} else {
		sem := make(chan struct{}, o.maxParallel)
		var wg sync.WaitGroup
		for _, name := range names {
			name := name
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				run(name)
			}()
		}
		wg.Wait()
	}

	o.recordScanRun(ctx, names, results, start)
	return results
}

func (o *Orchestrator) recordLoopRun(ctx context.Context, result looprunner.Result) {
	run := models.LoopRun{
		LoopName:      result.LoopName,
		Status:        result.Status,
		Iterations:    result.Iterations,
		FindingsCount: result.FindingsCount,
		DurationMS:    result.DurationMS,
		Error:         result.Error,
		CompletedAt:   time.Now().UTC(),
	}
	if _, err := o.store.AddLoopRun(ctx, run); err != nil {
		o.log.Error("failed to record loop run", "loop", result.LoopName, "error", err)
	}
}

func (o *Orchestrator) recordScanRun(ctx context.Context, names []string, results map[string]looprunner.Result, start time.Time) {
	total := 0
	for _, r := range results {
		total += r.FindingsCount
	}
	scanType := "full"
	if len(names) != len(looprunner.PriorityOrder) {
		scanType = "partial"
	}
	run := models.ScanRun{
		ScanType:      scanType,
		LoopsRun:      names,
		FindingsCount: total,
		DurationMS:    time.Since(start).Milliseconds(),
		StartedAt:     start.UTC(),
		CompletedAt:   time.Now().UTC(),
	}
	if _, err := o.store.AddScanRun(ctx, run); err != nil {
		o.log.Error("failed to record scan run", "error", err)
	}
}

// StopLoop requests cooperative cancellation of one named loop. It reports
// whether a loop by that name exists.
func (o *Orchestrator) StopLoop(name string) bool {
	l, ok := o.loop(name)
	if !ok {
		return false
	}
	l.Stop()
	return true
}

// StopAll requests cooperative cancellation of every loop.
func (o *Orchestrator) StopAll() {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, l := range o.loops {
		l.Stop()
	}
}

// Status returns a read-only snapshot of every loop's current state.
func (o *Orchestrator) Status() map[string]looprunner.StatusSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]looprunner.StatusSnapshot, len(o.loops))
	for name, l := range o.loops {
		out[name] = l.Status()
	}
	return out
}

// LoopStatus returns one loop's status snapshot.
func (o *Orchestrator) LoopStatus(name string) (looprunner.StatusSnapshot, bool) {
	l, ok := o.loop(name)
	if !ok {
		return looprunner.StatusSnapshot{}, false
	}
	return l.Status(), true
}

// Findings delegates to the store's List.
func (o *Orchestrator) Findings(ctx context.Context, filters models.Filters, limit, offset int, orderBy models.OrderBy) ([]models.Finding, error) {
	return o.store.List(ctx, filters, limit, offset, orderBy)
}

// Stats delegates to the store's Stats.
func (o *Orchestrator) Stats(ctx context.Context) (models.Stats, error) {
	return o.store.Stats(ctx)
}

// Acknowledge marks a finding acknowledged.
func (o *Orchestrator) Acknowledge(ctx context.Context, id string) error {
	return o.setStatus(ctx, id, models.StatusAcknowledged)
}

// MarkFixed marks a finding fixed.
func (o *Orchestrator) MarkFixed(ctx context.Context, id string) error {
	return o.setStatus(ctx, id, models.StatusFixed)
}

// MarkFalsePositive marks a finding a false positive.
func (o *Orchestrator) MarkFalsePositive(ctx context.Context, id string) error {
	return o.setStatus(ctx, id, models.StatusFalsePositive)
}

func (o *Orchestrator) setStatus(ctx context.Context, id string, status models.Status) error {
	n, err := o.store.SetStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("orchestrator: no finding with id %s", id)
	}
	return nil
}
