package pubs

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/autodocs/manuals-cli/internal/model"
)

// ErrNoManual signals that a page carried no English Owner's Manual. Callers
// skip the product and continue.
var ErrNoManual = eris.New("no English owner's manual found")

// SelectOwnersManual returns the newest English Owner's Manual among the
// candidates: publicationType exactly "OM", language starting with "en"
// (case-insensitive), ordered by the date portion of lineOffDate descending.
// Lexicographic comparison on YYYY-MM-DD is chronological. Date ties keep
// discovery order (stable sort).
func SelectOwnersManual(publications []model.Publication) (model.Publication, error) {
	var oms []model.Publication
	for _, p := range publications {
		if p.PublicationType != "OM" {
			continue
		}
		if !strings.HasPrefix(strings.ToLower(p.Language), "en") {
			continue
		}
		oms = append(oms, p)
	}

	if len(oms) == 0 {
		return model.Publication{}, ErrNoManual
	}

	sort.SliceStable(oms, func(i, j int) bool {
		return model.DateOnly(oms[i].LineOffDate) > model.DateOnly(oms[j].LineOffDate)
	})
	return oms[0], nil
}
