package looprunner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aa-workflow/slopscan/internal/llmrouter"
	"github.com/aa-workflow/slopscan/pkg/models"
)

// Analyzer is the subset of llmrouter.Router a Loop needs. Declared as an
// interface so tests can substitute a stub backend without starting real
// subprocesses; *llmrouter.Router satisfies it directly.
type Analyzer interface {
	Analyze(ctx context.Context, prompt, task, backend string, timeout time.Duration) (llmrouter.Response, error)
}

// ToolRunner is the subset of toolrunner.Runner a Loop needs for pre-filter
// hints.
type ToolRunner interface {
	Run(ctx context.Context, tool, path string) ([]models.Finding, error)
}

// FindingStore is the subset of store.Store a Loop needs to persist its pass
// buffer.
type FindingStore interface {
	AddMany(ctx context.Context, findings []models.Finding) ([]string, error)
}

// Loop is one running instance of an analysis loop descriptor.
type Loop struct {
	descriptor models.LoopDescriptor
	store      FindingStore
	analyzer   Analyzer
	tools      ToolRunner // nil if no External Tool Runner is available
	log        *slog.Logger

	mu         sync.Mutex
	status     models.LoopStatus
	iteration  int
	findings   []models.Finding
	startedAt  time.Time
	cancel     context.CancelFunc
}

// New constructs a Loop for one descriptor.
func New(descriptor models.LoopDescriptor, store FindingStore, analyzer Analyzer, tools ToolRunner, log *slog.Logger) *Loop {
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		descriptor: descriptor,
		store:      store,
		analyzer:   analyzer,
		tools:      tools,
		log:        log.With("loop", descriptor.Name),
		status:     models.LoopStatusIdle,
	}
}

// Status returns a read-only snapshot of the loop's current state. Safe to
// call while the loop is running.
func (l *Loop) Status() StatusSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return StatusSnapshot{
		Name:          l.descriptor.Name,
		DisplayName:   l.descriptor.DisplayName,
		Status:        l.status,
		Iteration:     l.iteration,
		MaxIterations: l.descriptor.MaxIterations,
		FindingsCount: len(l.findings),
		Description:   l.descriptor.Description,
	}
}

// Stop requests cooperative cancellation: the loop finishes its current
// iteration's LLM call, persists what it has, and transitions to "stopped".
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run executes one pass: it enumerates files (unless given explicitly),
// collects pre-filter hints, iterates the LLM Router until the pass is done
// or the iteration cap is hit, and persists every finding gathered.
func (l *Loop) Run(ctx context.Context, files []string, rootPath string) Result {
	loopCtx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.status = models.LoopStatusRunning
	l.iteration = 0
	l.findings = nil
	l.startedAt = time.Now()
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	result := l.run(loopCtx, files, rootPath)

	l.mu.Lock()
	l.cancel = nil
	l.mu.Unlock()

	return result
}

func (l *Loop) run(ctx context.Context, files []string, rootPath string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("loop panicked", "panic", r)
			l.mu.Lock()
			l.status = models.LoopStatusError
			buffered := append([]models.Finding{}, l.findings...)
			l.mu.Unlock()
			if len(buffered) > 0 {
				if _, err := l.store.AddMany(context.WithoutCancel(ctx), buffered); err != nil {
					l.log.Error("failed to persist buffered findings after panic", "error", err)
				}
			}
			result = l.finalize(fmt.Sprintf("analysis error: %v", r))
		}
	}()

	if len(files) == 0 {
		files = relevantFiles(rootPath)
	}
	if len(files) == 0 {
		l.log.Warn("no relevant files found", "root", rootPath)
		l.mu.Lock()
		l.status = models.LoopStatusDone
		l.mu.Unlock()
		return l.finalize("")
	}

	var hints []models.Finding
	if len(l.descriptor.FastTools) > 0 && l.tools != nil {
		hints = l.runFastTools(ctx, rootPath)
	}

	for {
		l.mu.Lock()
		iteration := l.iteration
		maxIter := l.descriptor.MaxIterations
		l.mu.Unlock()

		if iteration >= maxIter {
			break
		}
		select {
		case <-ctx.Done():
			goto stopped
		default:
		}

		l.mu.Lock()
		l.iteration++
		prevFindings := append([]models.Finding{}, l.findings...)
		l.mu.Unlock()

		prompt := buildPrompt(l.descriptor, files, hints, prevFindings, l.iterationNumber(), maxIter)
		// Stop() is observed only between iterations (the select above), not by
		// aborting an in-flight LLM call: the analyze context carries no
		// cancellation signal from the loop, only whatever deadline Analyze
		// itself applies, so a cooperative stop lets the current call finish.
		resp, err := l.analyzer.Analyze(context.WithoutCancel(ctx), prompt, l.descriptor.Task, "", 0)
		if err != nil || !resp.Success {
			l.log.Warn("analyze call did not succeed, continuing", "error", err)
			continue
		}

		l.mu.Lock()
		for _, f := range resp.Findings {
			f.Loop = l.descriptor.Name
			if !l.descriptor.Allows(f.Category) {
				l.log.Debug("coercing finding category", "from", f.Category, "to", l.descriptor.PrimaryCategory)
				f.Category = l.descriptor.PrimaryCategory
			}
			l.findings = append(l.findings, f)
		}
		l.mu.Unlock()

		if resp.Done {
			break
		}
	}

stopped:
	l.mu.Lock()
	finalFindings := append([]models.Finding{}, l.findings...)
	stopRequested := ctx.Err() != nil
	l.mu.Unlock()

	if _, err := l.store.AddMany(context.WithoutCancel(ctx), finalFindings); err != nil {
		l.log.Error("failed to persist findings", "error", err)
	}

	l.mu.Lock()
	if stopRequested {
		l.status = models.LoopStatusStopped
	} else {
		l.status = models.LoopStatusDone
	}
	l.mu.Unlock()

	return l.finalize("")
}

func (l *Loop) iterationNumber() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.iteration
}

func (l *Loop) runFastTools(ctx context.Context, rootPath string) []models.Finding {
	target := rootPath
	if target == "" {
		target = "."
	}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		all []models.Finding
	)
	for _, tool := range l.descriptor.FastTools {
		wg.Add(1)
		go func(tool string) {
			defer wg.Done()
			findings, err := l.tools.Run(ctx, tool, target)
			if err != nil {
				l.log.Warn("pre-filter tool failed", "tool", tool, "error", err)
				return
			}
			mu.Lock()
			all = append(all, findings...)
			mu.Unlock()
		}(tool)
	}
	wg.Wait()
	return all
}

func (l *Loop) finalize(errMsg string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Result{
		LoopName:      l.descriptor.Name,
		Status:        l.status,
		Iterations:    l.iteration,
		MaxIterations: l.descriptor.MaxIterations,
		FindingsCount: len(l.findings),
		DurationMS:    time.Since(l.startedAt).Milliseconds(),
		Error:         errMsg,
	}
}
