// Package report builds the dashboard counters and the plain-text daily
// digest from the retained postings.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/hiringintel/internal/model"
)

// Stats are the headline counters.
type Stats struct {
	Total      int `json:"total"`
	FoundToday int `json:"foundToday"`
	Strong     int `json:"strong"`
	Saved      int `json:"saved"`
}

// ComputeStats counts postings. FoundToday uses now's calendar day in now's
// location.
func ComputeStats(ps []model.Posting, now time.Time) Stats {
	y, m, d := now.Date()
	s := Stats{Total: len(ps)}
	for _, p := range ps {
		py, pm, pd := p.DateFound.In(now.Location()).Date()
		if py == y && pm == m && pd == d {
			s.FoundToday++
		}
		if p.RelevanceLabel == model.LabelStrong {
			s.Strong++
		}
		if p.Saved {
			s.Saved++
		}
	}
	return s
}

// TopCompany returns the company with the most postings. Ties go to the
// company seen first; an empty list gives "Various".
func TopCompany(ps []model.Posting) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range ps {
		if _, ok := counts[p.Company]; !ok {
			order = append(order, p.Company)
		}
		counts[p.Company]++
	}

	top, best := "Various", 0
	for _, c := range order {
		if counts[c] > best {
			top, best = c, counts[c]
		}
	}
	return top
}

// Daily renders the email-style digest of every retained posting.
func Daily(ps []model.Posting, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: Daily Hiring Intel Report - %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "TOTAL JOBS FOUND: %d\n", len(ps))
	fmt.Fprintf(&b, "TOP HIRING COMPANY: %s\n\n", TopCompany(ps))

	section(&b, "Strong Matches", byLabel(ps, model.LabelStrong))
	section(&b, "Medium Matches", byLabel(ps, model.LabelMedium))
	section(&b, "Exploratory Roles", byLabel(ps, model.LabelExploratory))

	b.WriteString("--- End of Report ---")
	return b.String()
}

func section(b *strings.Builder, title string, items []model.Posting) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "=== %s (%d) ===\n\n", strings.ToUpper(title), len(items))
	for _, p := range items {
		fmt.Fprintf(b, "• %s @ %s\n", p.Title, p.Company)
		fmt.Fprintf(b, "  Location: %s\n", p.Location)
		fmt.Fprintf(b, "  Why: %s\n", p.Reason)
		fmt.Fprintf(b, "  Link: %s\n\n", p.URL)
	}
}

func byLabel(ps []model.Posting, l model.Label) []model.Posting {
	var out []model.Posting
	for _, p := range ps {
		if p.RelevanceLabel == l {
			out = append(out, p)
		}
	}
	return out
}
