package stats

import (
	"context"

	"github.com/verte-zerg/subflash/internal/model"
)

// Source is the session history read side of the store.
type Source interface {
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	ListCategoryAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.CategoryAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions   []model.SessionAggregate
	Categories []model.CategoryAggregate
}

// BuildReport loads sessions matching cfg, keeps the last cfg.Last of them
// and aggregates their per-category counts.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	sessions, err := src.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	cats, err := src.ListCategoryAggregatesForSessions(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	return Report{Sessions: sessions, Categories: cats}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
