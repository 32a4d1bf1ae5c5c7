package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/subflash/internal/model"
)

// InsertSession stores a finished session and its per-category counts.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, cats []model.CategoryStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, interval_ms, duration_ms, flashes, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.Format(time.RFC3339Nano),
		stats.EndedAt.Format(time.RFC3339Nano),
		string(stats.Mode),
		stats.IntervalMs,
		stats.DurationMs,
		stats.Flashes,
		string(stats.Reason),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(cats) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_category_stats (session_id, category, flashes) VALUES (?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range cats {
			if _, err := stmt.ExecContext(ctx, id, cs.Category, cs.Flashes); err != nil {
				return 0, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns session aggregates filtered by stats config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, started_at, ended_at, flashes, reason
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var startedAt, endedAt, reason string
		if err := rows.Scan(&agg.SessionID, &startedAt, &endedAt, &agg.Flashes, &reason); err != nil {
			return nil, err
		}
		started, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, err
		}
		ended, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = ended
		agg.ElapsedMs = ended.Sub(started).Milliseconds()
		agg.Reason = model.StopReason(reason)
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListCategoryAggregatesForSessions sums per-category flashes across sessions.
func (s *Store) ListCategoryAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CategoryAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT category, SUM(flashes) AS flashes, COUNT(DISTINCT session_id) AS sessions
		FROM session_category_stats
		WHERE session_id IN (%s)
		GROUP BY category
		ORDER BY flashes DESC, category ASC`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.CategoryAggregate
	for rows.Next() {
		var agg model.CategoryAggregate
		if err := rows.Scan(&agg.Category, &agg.Flashes, &agg.Sessions); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
