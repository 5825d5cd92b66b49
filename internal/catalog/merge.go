package catalog

import (
	"go.uber.org/zap"

	"github.com/autodocs/manuals-cli/internal/model"
)

// rank orders variants within a group: line-off date dominant, year as the
// tiebreak. Missing dates sort earliest, non-numeric years as -1.
func rankLess(a, b model.Product) bool {
	da, db := a.LineOffDay(), b.LineOffDay()
	if !da.Equal(db) {
		return da.Before(db)
	}
	return a.YearInt() < b.YearInt()
}

// Merge groups variants by identity key and keeps only the most recent one
// per group. Idempotent: merging an already-merged list is a no-op.
func Merge(products []model.Product) []model.Product {
	groups := make(map[model.ProductKey][]model.Product)
	var order []model.ProductKey
	for _, p := range products {
		key := p.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	merged := make([]model.Product, 0, len(groups))
	for _, key := range order {
		items := groups[key]
		best := items[0]
		for _, p := range items[1:] {
			if rankLess(best, p) {
				best = p
			}
		}
		merged = append(merged, best)
	}

	zap.L().Info("merged product variants",
		zap.Int("groups", len(merged)),
		zap.Int("originals", len(products)),
	)
	return merged
}
