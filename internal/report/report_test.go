package report

import (
	"strings"
	"testing"
	"time"

	"github.com/amishk599/hiringintel/internal/model"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func TestComputeStats(t *testing.T) {
	ps := []model.Posting{
		{DateFound: now.Add(-2 * time.Hour), RelevanceLabel: model.LabelStrong, Saved: true},
		{DateFound: now.Add(-20 * time.Hour), RelevanceLabel: model.LabelStrong},
		{DateFound: now.Add(-1 * time.Hour), RelevanceLabel: model.LabelMedium, Saved: true},
	}
	got := ComputeStats(ps, now)
	want := Stats{Total: 3, FoundToday: 2, Strong: 2, Saved: 2}
	if got != want {
		t.Errorf("ComputeStats = %+v, want %+v", got, want)
	}
}

func TestTopCompany(t *testing.T) {
	tests := []struct {
		name string
		ps   []model.Posting
		want string
	}{
		{"empty", nil, "Various"},
		{"most postings", []model.Posting{{Company: "A"}, {Company: "B"}, {Company: "B"}}, "B"},
		{"tie goes to first seen", []model.Posting{{Company: "A"}, {Company: "B"}, {Company: "B"}, {Company: "A"}}, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TopCompany(tt.ps); got != tt.want {
				t.Errorf("TopCompany = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDaily(t *testing.T) {
	ps := []model.Posting{
		{Company: "Acme", Title: "Product Analyst", Location: "Remote", Reason: "Data heavy", URL: "https://acme.io/1", RelevanceLabel: model.LabelStrong},
		{Company: "Beta", Title: "Growth Marketer", Location: "Dhaka", Reason: "Funnel work", URL: "https://beta.io/2", RelevanceLabel: model.LabelExploratory},
		{Company: "Acme", Title: "Ops Intern", Location: "Dhaka", Reason: "Junior", URL: "#", RelevanceLabel: model.LabelWeak},
	}
	got := Daily(ps, now)

	want := "Subject: Daily Hiring Intel Report - 2026-03-14\n\n" +
		"TOTAL JOBS FOUND: 3\n" +
		"TOP HIRING COMPANY: Acme\n\n" +
		"=== STRONG MATCHES (1) ===\n\n" +
		"• Product Analyst @ Acme\n" +
		"  Location: Remote\n" +
		"  Why: Data heavy\n" +
		"  Link: https://acme.io/1\n\n" +
		"=== EXPLORATORY ROLES (1) ===\n\n" +
		"• Growth Marketer @ Beta\n" +
		"  Location: Dhaka\n" +
		"  Why: Funnel work\n" +
		"  Link: https://beta.io/2\n\n" +
		"--- End of Report ---"
	if got != want {
		t.Errorf("Daily mismatch.\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDaily_Empty(t *testing.T) {
	got := Daily(nil, now)
	if !strings.Contains(got, "TOTAL JOBS FOUND: 0") || !strings.Contains(got, "TOP HIRING COMPANY: Various") {
		t.Errorf("unexpected empty report:\n%s", got)
	}
	if strings.Contains(got, "===") {
		t.Errorf("empty report should have no sections:\n%s", got)
	}
	if !strings.HasSuffix(got, "--- End of Report ---") {
		t.Errorf("missing footer:\n%s", got)
	}
}
