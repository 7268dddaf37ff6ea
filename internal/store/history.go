package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aa-workflow/slopscan/pkg/models"
)

// AddScanRun records a completed orchestrated pass. Scan runs are append-only
// — created once, at the end of a pass, never mutated afterward.
func (s *Store) AddScanRun(ctx context.Context, run models.ScanRun) (int64, error) {
	loopsRun, err := json.Marshal(run.LoopsRun)
	if err != nil {
		return 0, fmt.Errorf("store: marshal loops_run: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_history (scan_type, loops_run, files_scanned, findings_count, duration_ms, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ScanType, string(loopsRun), run.FilesScanned, run.FindingsCount, run.DurationMS, run.StartedAt, run.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("store: add scan run: %w", err)
	}
	return result.LastInsertId()
}

// AddLoopRun records a completed loop pass, append-only like AddScanRun.
func (s *Store) AddLoopRun(ctx context.Context, run models.LoopRun) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO loop_history (loop_name, status, iterations, findings_count, duration_ms, error, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.LoopName, string(run.Status), run.Iterations, run.FindingsCount, run.DurationMS, nullString(run.Error), run.CompletedAt)
	if err != nil {
		return 0, fmt.Errorf("store: add loop run: %w", err)
	}
	return result.LastInsertId()
}

// RecentScans returns the most recent scan runs, newest first.
func (s *Store) RecentScans(ctx context.Context, limit int) ([]models.ScanRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scan_type, loops_run, files_scanned, findings_count, duration_ms, started_at, completed_at
		FROM scan_history ORDER BY completed_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent scans: %w", err)
	}
	defer rows.Close()

	var out []models.ScanRun
	for rows.Next() {
		var run models.ScanRun
		var loopsRun string
		if err := rows.Scan(&run.ID, &run.ScanType, &loopsRun, &run.FilesScanned, &run.FindingsCount, &run.DurationMS, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("store: scan recent scan row: %w", err)
		}
		_ = json.Unmarshal([]byte(loopsRun), &run.LoopsRun)
		out = append(out, run)
	}
	return out, rows.Err()
}

// LoopHistory returns recent loop runs, optionally filtered to one loop name.
func (s *Store) LoopHistory(ctx context.Context, loopName string, limit int) ([]models.LoopRun, error) {
	query := "SELECT id, loop_name, status, iterations, findings_count, duration_ms, error, completed_at FROM loop_history"
	args := []any{}
	if loopName != "" {
		query += " WHERE loop_name = ?"
		args = append(args, loopName)
	}
	query += " ORDER BY completed_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: loop history: %w", err)
	}
	defer rows.Close()

	var out []models.LoopRun
	for rows.Next() {
		var run models.LoopRun
		var errStr sql.NullString
		if err := rows.Scan(&run.ID, &run.LoopName, &run.Status, &run.Iterations, &run.FindingsCount, &run.DurationMS, &errStr, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("store: scan loop history row: %w", err)
		}
		run.Error = errStr.String
		out = append(out, run)
	}
	return out, rows.Err()
}
