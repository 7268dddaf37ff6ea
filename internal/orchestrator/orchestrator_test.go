package orchestrator

import (
	"context"
	"testing"

	"github.com/aa-workflow/slopscan/internal/looprunner"
	"github.com/aa-workflow/slopscan/internal/store"
	"github.com/aa-workflow/slopscan/pkg/models"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInitializeIsIdempotent(t *testing.T) {
	o := New(openTestStore(t), nil, nil)
	o.Initialize(context.Background())
	first := o.Status()
	o.Initialize(context.Background())
	second := o.Status()
	if len(first) != len(second) {
		t.Fatalf("loop count changed across Initialize calls: %d vs %d", len(first), len(second))
	}
	if len(first) != len(looprunner.Descriptors) {
		t.Errorf("expected one loop per descriptor, got %d", len(first))
	}
}

func TestStopLoopReportsUnknownLoop(t *testing.T) {
	o := New(openTestStore(t), nil, nil)
	o.Initialize(context.Background())
	if o.StopLoop("does-not-exist") {
		t.Error("expected StopLoop to report false for an unknown loop name")
	}
}

func TestLoopStatusForUnknownLoop(t *testing.T) {
	o := New(openTestStore(t), nil, nil)
	o.Initialize(context.Background())
	if _, ok := o.LoopStatus("does-not-exist"); ok {
		t.Error("expected ok=false for an unknown loop name")
	}
}

func TestAcknowledgeUnknownFindingErrors(t *testing.T) {
	o := New(openTestStore(t), nil, nil)
	if err := o.Acknowledge(context.Background(), "does-not-exist"); err == nil {
		t.Error("expected an error acknowledging a finding that does not exist")
	}
}

func TestAcknowledgeExistingFinding(t *testing.T) {
	s := openTestStore(t)
	o := New(s, nil, nil)
	ctx := context.Background()

	id, err := s.Add(ctx, models.Finding{
		Loop: "leaky", File: "a.py", Line: 1, Category: models.CategoryMemoryLeaks,
		Severity: models.SeverityLow, Description: "leak",
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := o.Acknowledge(ctx, id); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusAcknowledged {
		t.Errorf("status = %s, want acknowledged", got.Status)
	}
}
