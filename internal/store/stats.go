package store

import (
	"context"
	"fmt"

	"github.com/aa-workflow/slopscan/pkg/models"
)

// Stats aggregates finding counts with one grouped read per dimension.
func (s *Store) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM findings").Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("store: stats total: %w", err)
	}

	var err error
	if stats.ByLoop, err = s.countBy(ctx, "loop"); err != nil {
		return stats, err
	}
	if stats.ByCategory, err = s.countBy(ctx, "category"); err != nil {
		return stats, err
	}
	if stats.BySeverity, err = s.countBy(ctx, "severity"); err != nil {
		return stats, err
	}
	if stats.ByStatus, err = s.countBy(ctx, "status"); err != nil {
		return stats, err
	}
	return stats, nil
}

func (s *Store) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s, COUNT(*) FROM findings GROUP BY %s", column, column))
	if err != nil {
		return nil, fmt.Errorf("store: stats by %s: %w", column, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("store: scan stats by %s: %w", column, err)
		}
		out[key] = count
	}
	return out, rows.Err()
}
