// Package reconcile merges freshly fetched postings into the retained list.
package reconcile

import (
	"sort"

	"github.com/amishk599/hiringintel/internal/model"
)

// MaxRetained caps the retained list; anything ranked below is evicted.
const MaxRetained = 100

// Unseen returns the candidates whose identity is not already in current.
// A candidate repeating an identity earlier in the same batch is dropped too,
// so the first occurrence wins. Known postings are never updated in place.
func Unseen(current, candidates []model.Posting) []model.Posting {
	known := make(map[string]struct{}, len(current)+len(candidates))
	for _, p := range current {
		known[p.Identity()] = struct{}{}
	}

	var fresh []model.Posting
	for _, p := range candidates {
		id := p.Identity()
		if _, ok := known[id]; ok {
			continue
		}
		known[id] = struct{}{}
		fresh = append(fresh, p)
	}
	return fresh
}

// Merge produces the new retained list from current and candidates:
// unseen candidates go ahead of current, the result is ranked by
// RelevanceScore descending and cut to MaxRetained.
//
// The sort is stable, so equal scores keep their pre-sort order: new postings
// before retained ones, each group in the order it arrived.
func Merge(current, candidates []model.Posting) []model.Posting {
	fresh := Unseen(current, candidates)

	merged := make([]model.Posting, 0, len(fresh)+len(current))
	merged = append(merged, fresh...)
	merged = append(merged, current...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].RelevanceScore > merged[j].RelevanceScore
	})

	if len(merged) > MaxRetained {
		merged = merged[:MaxRetained]
	}
	return merged
}
