package store

import (
	"context"
	"testing"
	"time"

	"github.com/aa-workflow/slopscan/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddUpsertsOnDuplicateKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := models.Finding{
		Loop: "zombie", File: "a.py", Line: 1, Category: models.CategoryDeadCode,
		Severity: models.SeverityLow, Description: "unused function",
	}
	id1, err := s.Add(ctx, f)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	f.Severity = models.SeverityMedium
	id2, err := s.Add(ctx, f)
	if err != nil {
		t.Fatalf("Add (dup): %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected the same id across upsert, got %s and %s", id1, id2)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1 (duplicate should not create a new row)", stats.Total)
	}

	got, err := s.Get(ctx, id1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Severity != models.SeverityMedium {
		t.Errorf("severity = %s, want medium (overwritten on conflict)", got.Severity)
	}
	if !got.LastSeenAt.After(got.DetectedAt) && !got.LastSeenAt.Equal(got.DetectedAt) {
		t.Errorf("last_seen_at should be >= detected_at")
	}
}

func TestSetStatusStampsTimestamps(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	f := models.Finding{Loop: "leaker", File: "b.py", Line: 2, Category: models.CategorySecurity, Severity: models.SeverityHigh, Description: "sql injection"}
	id, err := s.Add(ctx, f)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := s.SetStatus(ctx, id, models.StatusAcknowledged)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if n != 1 {
		t.Errorf("RowsAffected = %d, want 1", n)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.AckedAt == nil {
		t.Error("expected acknowledged_at to be set")
	}
	if got.Status != models.StatusAcknowledged {
		t.Errorf("status = %s, want acknowledged", got.Status)
	}
}

func TestSetStatusRejectsInvalidTarget(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	f := models.Finding{Loop: "drifter", File: "c.py", Line: 1, Category: models.CategoryVerbosity, Severity: models.SeverityLow, Description: "verbose"}
	id, _ := s.Add(ctx, f)

	if _, err := s.SetStatus(ctx, id, models.Status("bogus")); err == nil {
		t.Error("expected an error for an invalid status transition")
	}
}

func TestSetStatusOnUnknownIDReturnsZeroRows(t *testing.T) {
	s := openTestStore(t)
	n, err := s.SetStatus(context.Background(), "does-not-exist", models.StatusFixed)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if n != 0 {
		t.Errorf("RowsAffected = %d, want 0 for an unknown id", n)
	}
}

func TestParseOrderByUnknownValueFallsBackToDefault(t *testing.T) {
	// models.ParseOrderBy is the boundary that defends against this; List
	// itself trusts its orderBy argument came through that boundary.
	ob := models.ParseOrderBy("DROP TABLE findings; --")
	if ob != models.DefaultOrderBy {
		t.Errorf("ParseOrderBy should fall back to the default for an unrecognized value, got %q", ob)
	}
}

func TestPurgeOlderThanRemovesStaleFindings(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, loop, file, line, category, severity, description, detected_at, last_seen_at, status)
		VALUES ('old-1', 'drifter', 'old.py', 1, 'verbosity', 'low', 'stale', ?, ?, 'open')
	`, time.Now().AddDate(0, 0, -90), time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("seed stale row: %v", err)
	}

	f := models.Finding{Loop: "drifter", File: "fresh.py", Line: 1, Category: models.CategoryVerbosity, Severity: models.SeverityLow, Description: "fresh"}
	if _, err := s.Add(ctx, f); err != nil {
		t.Fatalf("Add: %v", err)
	}

	n, err := s.PurgeOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("PurgeOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d rows, want 1", n)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("Total after purge = %d, want 1", stats.Total)
	}
}

func TestListFiltersByLoopAndSeverity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	findings := []models.Finding{
		{Loop: "leaky", File: "x.py", Line: 1, Category: models.CategoryMemoryLeaks, Severity: models.SeverityHigh, Description: "leak 1"},
		{Loop: "leaky", File: "y.py", Line: 2, Category: models.CategoryMemoryLeaks, Severity: models.SeverityLow, Description: "leak 2"},
		{Loop: "zombie", File: "z.py", Line: 3, Category: models.CategoryDeadCode, Severity: models.SeverityHigh, Description: "dead 1"},
	}
	if _, err := s.AddMany(ctx, findings); err != nil {
		t.Fatalf("AddMany: %v", err)
	}

	got, err := s.List(ctx, models.Filters{Loop: "leaky", Severity: "high"}, 100, 0, models.DefaultOrderBy)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Description != "leak 1" {
		t.Fatalf("unexpected filtered results: %+v", got)
	}
}
