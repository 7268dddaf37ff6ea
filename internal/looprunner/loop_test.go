package looprunner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aa-workflow/slopscan/internal/llmrouter"
	"github.com/aa-workflow/slopscan/pkg/models"
)

// fakeAnalyzer replays a fixed sequence of responses, one per call, repeating
// the last entry once exhausted.
type fakeAnalyzer struct {
	mu        sync.Mutex
	responses []llmrouter.Response
	errs      []error
	calls     int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, prompt, task, backend string, timeout time.Duration) (llmrouter.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.responses[i], err
}

// fakeStore records every AddMany call.
type fakeStore struct {
	mu       sync.Mutex
	added    [][]models.Finding
	failNext bool
}

func (s *fakeStore) AddMany(ctx context.Context, findings []models.Finding) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return nil, errors.New("store unavailable")
	}
	cp := append([]models.Finding{}, findings...)
	s.added = append(s.added, cp)
	ids := make([]string, len(findings))
	return ids, nil
}

func (s *fakeStore) all() []models.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Finding
	for _, batch := range s.added {
		out = append(out, batch...)
	}
	return out
}

func testDescriptor() models.LoopDescriptor {
	d := Descriptors["zombie"]
	d.MaxIterations = 3
	return d
}

func TestRunCoercesOutOfSetCategory(t *testing.T) {
	analyzer := &fakeAnalyzer{responses: []llmrouter.Response{
		{
			Success: true,
			Done:    true,
			Findings: []models.Finding{
				{File: "a.py", Line: 1, Category: models.CategoryComplexity, Severity: models.SeverityLow, Description: "nope"},
			},
		},
	}}
	store := &fakeStore{}
	l := New(testDescriptor(), store, analyzer, nil, nil)

	result := l.Run(context.Background(), []string{"a.py"}, ".")
	if result.Status != models.LoopStatusDone {
		t.Fatalf("status = %s, want done", result.Status)
	}

	got := store.all()
	if len(got) != 1 {
		t.Fatalf("expected 1 persisted finding, got %d", len(got))
	}
	if got[0].Category != models.CategoryDeadCode {
		t.Errorf("category = %s, want coercion to primary category dead_code", got[0].Category)
	}
}

func TestRunStopsAtMaxIterations(t *testing.T) {
	analyzer := &fakeAnalyzer{responses: []llmrouter.Response{
		{Success: true, Done: false},
	}}
	store := &fakeStore{}
	l := New(testDescriptor(), store, analyzer, nil, nil)

	result := l.Run(context.Background(), []string{"a.py"}, ".")
	if result.Iterations != result.MaxIterations {
		t.Errorf("iterations = %d, want %d (cap enforced)", result.Iterations, result.MaxIterations)
	}
	if result.Status != models.LoopStatusDone {
		t.Errorf("status = %s, want done", result.Status)
	}
}

func TestRunContinuesPastTransientFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{
		responses: []llmrouter.Response{
			{Success: false, Error: "backend exploded"},
			{Success: true, Done: true, Findings: []models.Finding{
				{File: "a.py", Line: 2, Category: models.CategoryDeadCode, Severity: models.SeverityLow, Description: "found it"},
			}},
		},
	}
	store := &fakeStore{}
	l := New(testDescriptor(), store, analyzer, nil, nil)

	result := l.Run(context.Background(), []string{"a.py"}, ".")
	if result.Status != models.LoopStatusDone {
		t.Fatalf("status = %s, want done", result.Status)
	}
	if len(store.all()) != 1 {
		t.Fatalf("expected the successful iteration's finding to persist")
	}
}

func TestRunHonorsDoneFlag(t *testing.T) {
	analyzer := &fakeAnalyzer{responses: []llmrouter.Response{
		{Success: true, Done: true},
	}}
	store := &fakeStore{}
	l := New(testDescriptor(), store, analyzer, nil, nil)

	result := l.Run(context.Background(), []string{"a.py"}, ".")
	if result.Iterations != 1 {
		t.Errorf("iterations = %d, want 1 (should exit on first done=true)", result.Iterations)
	}
}

func TestStopRequestsCooperativeCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	analyzer := &blockingAnalyzer{started: started, release: release}
	store := &fakeStore{}
	d := testDescriptor()
	d.MaxIterations = 10
	l := New(d, store, analyzer, nil, nil)

	var result Result
	done := make(chan struct{})
	go func() {
		result = l.Run(context.Background(), []string{"a.py"}, ".")
		close(done)
	}()

	<-started
	l.Stop()
	close(release)
	<-done

	if result.Status != models.LoopStatusStopped {
		t.Errorf("status = %s, want stopped", result.Status)
	}
	if analyzer.ctxCanceledDuringCall {
		t.Error("Stop() canceled the in-flight analyze call; it should only be observed between iterations")
	}
}

type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	ctxCanceledDuringCall bool
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, prompt, task, backend string, timeout time.Duration) (llmrouter.Response, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	b.ctxCanceledDuringCall = ctx.Err() != nil
	return llmrouter.Response{Success: true, Done: false}, nil
}

func TestRunRecoversFromPanicAndPersistsBuffer(t *testing.T) {
	analyzer := &panickingAnalyzer{}
	store := &fakeStore{}
	l := New(testDescriptor(), store, analyzer, nil, nil)

	result := l.Run(context.Background(), []string{"a.py"}, ".")
	if result.Status != models.LoopStatusError {
		t.Errorf("status = %s, want error", result.Status)
	}
	if result.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(ctx context.Context, prompt, task, backend string, timeout time.Duration) (llmrouter.Response, error) {
	panic("simulated analyzer failure")
}
