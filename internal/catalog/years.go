package catalog

import (
	"sort"
	"strconv"

	"github.com/autodocs/manuals-cli/internal/model"
)

// YearsFor determines which model years to request on the publications page.
// Publications are shared across a model's production run, so a single
// variant's own year is often too narrow to surface its manual. The resolver
// collects the distinct years of every variant sharing the product's identity
// key in the pre-merge list, sorted descending and capped. Falls back to the
// product's own year, or an empty list when it has none.
//
// allProducts must be the unmerged list; the merged list carries only one
// year per group and would defeat the purpose.
func YearsFor(prod model.Product, allProducts []model.Product, cap int) []string {
	key := prod.Key()
	seen := make(map[int]bool)
	var years []int
	for _, p := range allProducts {
		if p.Key() != key {
			continue
		}
		y := p.YearInt()
		if y < 0 || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}

	if len(years) == 0 {
		if y := prod.YearInt(); y >= 0 {
			return []string{strconv.Itoa(y)}
		}
		return nil
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	if cap > 0 && len(years) > cap {
		years = years[:cap]
	}

	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
