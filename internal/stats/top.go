package stats

import (
	"sort"

	"github.com/verte-zerg/subflash/internal/model"
)

// TopCategories returns the names of the n most flashed categories.
func TopCategories(aggs []model.CategoryAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	sorted := append([]model.CategoryAggregate(nil), aggs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Flashes == sorted[j].Flashes {
			return sorted[i].Category < sorted[j].Category
		}
		return sorted[i].Flashes > sorted[j].Flashes
	})
	n = min(n, len(sorted))
	out := make([]string, 0, n)
	for _, agg := range sorted[:n] {
		out = append(out, agg.Category)
	}
	return out
}
