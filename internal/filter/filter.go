// Package filter narrows the retained postings for display. Filters never
// change what is stored.
package filter

import (
	"strings"

	"github.com/amishk599/hiringintel/internal/model"
)

// Apply returns the postings f matches, preserving order. A nil filter
// matches everything.
func Apply(ps []model.Posting, f model.PostingFilter) []model.Posting {
	out := make([]model.Posting, 0, len(ps))
	for _, p := range ps {
		if f == nil || f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Func adapts a plain function to model.PostingFilter.
type Func func(model.Posting) bool

func (f Func) Match(p model.Posting) bool { return f(p) }

// All matches when every filter matches. No filters matches everything.
func All(filters ...model.PostingFilter) model.PostingFilter {
	return Func(func(p model.Posting) bool {
		for _, f := range filters {
			if f != nil && !f.Match(p) {
				return false
			}
		}
		return true
	})
}

// SavedOnly matches bookmarked postings.
func SavedOnly() model.PostingFilter {
	return Func(func(p model.Posting) bool { return p.Saved })
}

// MinScore matches postings scoring at least min.
func MinScore(min float64) model.PostingFilter {
	return Func(func(p model.Posting) bool { return p.RelevanceScore >= min })
}

// LabelIs matches postings in the given band.
func LabelIs(l model.Label) model.PostingFilter {
	return Func(func(p model.Posting) bool { return p.RelevanceLabel == l })
}

// TitleAndLocationFilter is a case-insensitive substring match on title and
// location. A posting needs a hit in both lists; an empty list always hits.
type TitleAndLocationFilter struct {
	titleKeywords []string
	locations     []string
}

func NewTitleAndLocationFilter(titleKeywords []string, locations []string) *TitleAndLocationFilter {
	return &TitleAndLocationFilter{
		titleKeywords: titleKeywords,
		locations:     locations,
	}
}

func (f *TitleAndLocationFilter) Match(p model.Posting) bool {
	return containsAny(p.Title, f.titleKeywords) && containsAny(p.Location, f.locations)
}

func containsAny(s string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
