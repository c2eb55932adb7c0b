package filter

import (
	"testing"

	"github.com/amishk599/hiringintel/internal/model"
)

func posting(title, location string) model.Posting {
	return model.Posting{Title: title, Location: location}
}

func TestTitleAndLocationFilter_Match(t *testing.T) {
	tests := []struct {
		name          string
		titleKeywords []string
		locations     []string
		p             model.Posting
		wantMatch     bool
	}{
		{
			name:          "matches both title and location",
			titleKeywords: []string{"product analyst", "growth"},
			locations:     []string{"Dhaka", "Remote"},
			p:             posting("Product Analyst", "Remote - APAC"),
			wantMatch:     true,
		},
		{
			name:          "title match but location miss",
			titleKeywords: []string{"product analyst"},
			locations:     []string{"Dhaka", "Remote"},
			p:             posting("Product Analyst", "London, UK"),
			wantMatch:     false,
		},
		{
			name:          "case insensitive matching",
			titleKeywords: []string{"MARKETING"},
			locations:     []string{"dhaka"},
			p:             posting("Performance Marketing Lead", "Dhaka, Bangladesh"),
			wantMatch:     true,
		},
		{
			name:          "no keywords match",
			titleKeywords: []string{"strategy"},
			locations:     []string{"Remote"},
			p:             posting("Frontend Engineer", "Remote"),
			wantMatch:     false,
		},
		{
			name:          "empty keyword lists pass all",
			titleKeywords: []string{},
			locations:     []string{},
			p:             posting("Any Role", "Anywhere"),
			wantMatch:     true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTitleAndLocationFilter(tt.titleKeywords, tt.locations)
			if got := f.Match(tt.p); got != tt.wantMatch {
				t.Errorf("Match() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestViewFilters(t *testing.T) {
	strongSaved := model.Posting{ID: "1", RelevanceScore: 0.9, RelevanceLabel: model.LabelStrong, Saved: true}
	medium := model.Posting{ID: "2", RelevanceScore: 0.5, RelevanceLabel: model.LabelMedium}
	exploratorySaved := model.Posting{ID: "3", RelevanceScore: 0.25, RelevanceLabel: model.LabelExploratory, Saved: true}
	all := []model.Posting{strongSaved, medium, exploratorySaved}

	tests := []struct {
		name string
		f    model.PostingFilter
		want []string
	}{
		{"nil matches all", nil, []string{"1", "2", "3"}},
		{"saved only", SavedOnly(), []string{"1", "3"}},
		{"min score inclusive", MinScore(0.5), []string{"1", "2"}},
		{"label", LabelIs(model.LabelMedium), []string{"2"}},
		{"combined", All(SavedOnly(), MinScore(0.3)), []string{"1"}},
		{"empty All", All(), []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(all, tt.f)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d postings, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
