package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aa-workflow/slopscan/pkg/models"
	"github.com/google/uuid"
)

// Add inserts a finding, or upserts onto an existing row sharing
// (file, line, category, description). On conflict, last_seen_at, severity,
// and suggestion are updated; detected_at and the original id are preserved.
// Add returns the id of the row that now holds the finding — which, on a
// conflict, is the pre-existing row's id, not a freshly generated one (this
// is a deliberate correction of the original service, whose returned id on
// conflict did not match the row that was actually updated).
func (s *Store) Add(ctx context.Context, f models.Finding) (string, error) {
	id := f.ID
	if id == "" {
		id = uuid.New().String()
	}

	rawOutput := "{}"
	if len(f.RawOutput) > 0 {
		b, err := json.Marshal(f.RawOutput)
		if err != nil {
			return "", fmt.Errorf("store: failed to marshal raw_output: %w", err)
		}
		rawOutput = string(b)
	}

	now := time.Now().UTC()
	status := f.Status
	if status == "" {
		status = models.StatusOpen
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, loop, file, line, category, severity, description, suggestion, tool, raw_output, detected_at, last_seen_at, status, git_commit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file, line, category, description) DO UPDATE SET
			last_seen_at = excluded.last_seen_at,
			severity = excluded.severity,
			suggestion = excluded.suggestion
	`, id, f.Loop, f.File, f.Line, string(f.Category), string(f.Severity), f.Description, f.Suggestion, f.Tool, rawOutput, now, now, string(status), nullString(f.GitCommit))
	if err != nil {
		return "", fmt.Errorf("store: add finding: %w", err)
	}

	existingID, err := s.idForUniqueKey(ctx, f.File, f.Line, f.Category, f.Description)
	if err != nil {
		return "", err
	}
	return existingID, nil
}

func (s *Store) idForUniqueKey(ctx context.Context, file string, line int, category models.Category, description string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM findings WHERE file = ? AND line = ? AND category = ? AND description = ?
	`, file, line, string(category), description).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("store: lookup after upsert: %w", err)
	}
	return id, nil
}

// AddMany adds each finding in order, one at a time, matching the original
// service's non-batched semantics (each call participates in the upsert
// dedup independently).
func (s *Store) AddMany(ctx context.Context, findings []models.Finding) ([]string, error) {
	ids := make([]string, 0, len(findings))
	for _, f := range findings {
		id, err := s.Add(ctx, f)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Get fetches a single finding by id.
func (s *Store) Get(ctx context.Context, id string) (models.Finding, error) {
	row := s.db.QueryRowContext(ctx, findingSelectColumns+" WHERE id = ?", id)
	return scanFinding(row)
}

// List returns findings matching filters, ordered by orderBy (already
// validated against the allow-list by the caller via models.ParseOrderBy),
// bounded by limit/offset.
func (s *Store) List(ctx context.Context, filters models.Filters, limit, offset int, orderBy models.OrderBy) ([]models.Finding, error) {
	where, args := buildWhere(filters)
	query := findingSelectColumns
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY " + string(orderBy) + " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list findings: %w", err)
	}
	defer rows.Close()

	var out []models.Finding
	for rows.Next() {
		f, err := scanFindingRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// ByFile returns findings for one file path.
func (s *Store) ByFile(ctx context.Context, path string, limit int) ([]models.Finding, error) {
	return s.List(ctx, models.Filters{File: path}, limit, 0, models.DefaultOrderBy)
}

// ByLoop returns findings produced by one named loop.
func (s *Store) ByLoop(ctx context.Context, loop string, limit int) ([]models.Finding, error) {
	return s.List(ctx, models.Filters{Loop: loop}, limit, 0, models.DefaultOrderBy)
}

// ByCategory returns findings tagged with one category.
func (s *Store) ByCategory(ctx context.Context, category string, limit int) ([]models.Finding, error) {
	return s.List(ctx, models.Filters{Category: category}, limit, 0, models.DefaultOrderBy)
}

// SetStatus transitions a finding's status, stamping acknowledged_at or
// fixed_at as appropriate. It returns the number of rows the UPDATE
// statement actually affected (0 or 1), read directly from the statement's
// own result rather than a connection-wide change counter.
func (s *Store) SetStatus(ctx context.Context, id string, status models.Status) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("store: %w: %s", ErrInvalidStatus, status)
	}

	var query string
	args := []any{string(status)}
	switch status {
	case models.StatusAcknowledged:
		query = "UPDATE findings SET status = ?, acknowledged_at = ? WHERE id = ?"
		args = append(args, time.Now().UTC())
	case models.StatusFixed:
		query = "UPDATE findings SET status = ?, fixed_at = ? WHERE id = ?"
		args = append(args, time.Now().UTC())
	default:
		query = "UPDATE findings SET status = ? WHERE id = ?"
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: set status: %w", err)
	}
	return result.RowsAffected()
}

// Delete removes a finding by id, returning the number of rows removed.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM findings WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("store: delete: %w", err)
	}
	return result.RowsAffected()
}

// PurgeOlderThan deletes findings whose detected_at predates the given
// number of days, returning the count removed.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	boundary := time.Now().UTC().AddDate(0, 0, -days)
	result, err := s.db.ExecContext(ctx, "DELETE FROM findings WHERE detected_at < ?", boundary)
	if err != nil {
		return 0, fmt.Errorf("store: purge: %w", err)
	}
	return result.RowsAffected()
}

const findingSelectColumns = `
SELECT id, loop, file, line, category, severity, description, suggestion, tool, raw_output, detected_at, last_seen_at, status, acknowledged_at, fixed_at, git_commit
FROM findings
`

type scannable interface {
	Scan(dest ...any) error
}

func scanFinding(row scannable) (models.Finding, error) {
	return scanFindingRows(row)
}

func scanFindingRows(row scannable) (models.Finding, error) {
	var (
		f         models.Finding
		rawOutput string
		ackedAt   sql.NullTime
		fixedAt   sql.NullTime
		gitCommit sql.NullString
	)
	err := row.Scan(
		&f.ID, &f.Loop, &f.File, &f.Line, &f.Category, &f.Severity, &f.Description,
		&f.Suggestion, &f.Tool, &rawOutput, &f.DetectedAt, &f.LastSeenAt, &f.Status,
		&ackedAt, &fixedAt, &gitCommit,
	)
	if err != nil {
		return models.Finding{}, fmt.Errorf("store: scan finding: %w", err)
	}
	if rawOutput != "" && rawOutput != "{}" {
		_ = json.Unmarshal([]byte(rawOutput), &f.RawOutput)
	}
	if ackedAt.Valid {
		t := ackedAt.Time
		f.AckedAt = &t
	}
	if fixedAt.Valid {
		t := fixedAt.Time
		f.FixedAt = &t
	}
	if gitCommit.Valid {
		f.GitCommit = gitCommit.String
	}
	return f, nil
}

func buildWhere(f models.Filters) (string, []any) {
	var clauses []string
	var args []any

	addExact := func(col, val string) {
		if val != "" {
			clauses = append(clauses, col+" = ?")
			args = append(args, val)
		}
	}
	addLike := func(col, val string) {
		if val != "" {
			clauses = append(clauses, col+" LIKE ?")
			args = append(args, "%"+val+"%")
		}
	}

	addExact("loop", f.Loop)
	addExact("file", f.File)
	addExact("category", f.Category)
	addExact("severity", f.Severity)
	addExact("status", f.Status)
	addLike("file", f.FileLike)
	addLike("description", f.DescriptionLike)

	return strings.Join(clauses, " AND "), args
}
