package reconcile

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/amishk599/hiringintel/internal/model"
)

func posting(id string, score float64) model.Posting {
	return model.Posting{
		ID:             id,
		Company:        "co-" + id,
		Title:          "Product Analyst",
		URL:            "https://example.com/" + id,
		RelevanceScore: score,
	}
}

func ids(ps []model.Posting) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func equalIDs(t *testing.T, got []model.Posting, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("ids = %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("ids = %v, want %v", g, want)
		}
	}
}

func TestMerge_EmptyRetainedRanksByScore(t *testing.T) {
	got := Merge(nil, []model.Posting{posting("B", 0.3), posting("A", 0.9)})
	equalIDs(t, got, "A", "B")
}

func TestMerge_DuplicateDroppedNewInsertedByScore(t *testing.T) {
	retained := []model.Posting{posting("A", 0.9)}
	got := Merge(retained, []model.Posting{posting("A", 0.9), posting("C", 0.95)})
	equalIDs(t, got, "C", "A")
}

func TestMerge_EmptyInputs(t *testing.T) {
	if got := Merge(nil, nil); len(got) != 0 {
		t.Errorf("Merge(nil, nil) len = %d, want 0", len(got))
	}

	retained := []model.Posting{posting("A", 0.9), posting("B", 0.5)}
	got := Merge(retained, nil)
	equalIDs(t, got, "A", "B")
}

func TestMerge_IdempotentOnRepeat(t *testing.T) {
	candidates := []model.Posting{posting("A", 0.4), posting("B", 0.7), posting("C", 0.1)}
	first := Merge(nil, candidates)
	second := Merge(first, candidates)

	if len(second) != len(first) {
		t.Fatalf("second merge grew list: %d -> %d", len(first), len(second))
	}
	equalIDs(t, second, ids(first)...)
}

func TestMerge_KnownPostingNotUpdatedInPlace(t *testing.T) {
	old := posting("A", 0.5)
	old.Saved = true
	old.Reason = "original"

	update := posting("A", 0.99)
	update.Reason = "changed"

	got := Merge([]model.Posting{old}, []model.Posting{update})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].RelevanceScore != 0.5 || got[0].Reason != "original" {
		t.Errorf("retained posting was modified: %+v", got[0])
	}
	if !got[0].Saved {
		t.Error("bookmark lost across merge")
	}
}

func TestMerge_IdentityFallsBackToCompanyAndTitle(t *testing.T) {
	a := model.Posting{ID: "1", Company: "Acme", Title: "PM", URL: "#", RelevanceScore: 0.6}
	dup := model.Posting{ID: "2", Company: "Acme", Title: "PM", URL: "#", RelevanceScore: 0.8}
	other := model.Posting{ID: "3", Company: "Acme", Title: "APM", URL: "#", RelevanceScore: 0.7}

	got := Merge([]model.Posting{a}, []model.Posting{dup, other})
	equalIDs(t, got, "3", "1")
}

func TestMerge_DuplicatesWithinBatchKeepFirst(t *testing.T) {
	first := posting("A", 0.4)
	second := posting("A", 0.8)
	second.ID = "A2"

	got := Merge(nil, []model.Posting{first, second})
	equalIDs(t, got, "A")
}

func TestMerge_StableTieBreakNewBeforeRetained(t *testing.T) {
	retained := []model.Posting{posting("R1", 0.5), posting("R2", 0.5)}
	candidates := []model.Posting{posting("N1", 0.5), posting("N2", 0.5)}

	got := Merge(retained, candidates)
	equalIDs(t, got, "N1", "N2", "R1", "R2")
}

func TestMerge_TruncatesToMaxRetained(t *testing.T) {
	var retained []model.Posting
	for i := 0; i < MaxRetained; i++ {
		retained = append(retained, posting(fmt.Sprintf("r%d", i), 0.5))
	}
	candidates := []model.Posting{posting("top", 0.99), posting("bottom", 0.01)}

	got := Merge(retained, candidates)
	if len(got) != MaxRetained {
		t.Fatalf("len = %d, want %d", len(got), MaxRetained)
	}
	if got[0].ID != "top" {
		t.Errorf("first = %s, want top", got[0].ID)
	}
	for _, p := range got {
		if p.ID == "bottom" {
			t.Error("lowest-ranked posting should have been evicted")
		}
	}
}

func TestMerge_RandomisedInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	var retained []model.Posting

	for round := 0; round < 50; round++ {
		var candidates []model.Posting
		for i := 0; i < r.IntN(30); i++ {
			// Small id space forces frequent identity collisions.
			id := fmt.Sprintf("p%d", r.IntN(150))
			candidates = append(candidates, posting(id, r.Float64()))
		}

		retained = Merge(retained, candidates)

		if len(retained) > MaxRetained {
			t.Fatalf("round %d: len = %d exceeds cap", round, len(retained))
		}
		seen := make(map[string]bool)
		for i, p := range retained {
			if seen[p.Identity()] {
				t.Fatalf("round %d: duplicate identity %s", round, p.Identity())
			}
			seen[p.Identity()] = true
			if i > 0 && retained[i-1].RelevanceScore < p.RelevanceScore {
				t.Fatalf("round %d: scores increase at %d", round, i)
			}
		}
	}
}

func TestUnseen(t *testing.T) {
	current := []model.Posting{posting("A", 0.1)}
	got := Unseen(current, []model.Posting{posting("A", 0.2), posting("B", 0.3)})
	equalIDs(t, got, "B")
}
