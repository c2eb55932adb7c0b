package model

import (
	"context"
	"strings"
	"time"
)

// Label is the match band assigned to a posting by the analysis provider.
type Label string

const (
	LabelStrong      Label = "Strong Match"
	LabelMedium      Label = "Medium Match"
	LabelExploratory Label = "Exploratory"
	LabelWeak        Label = "Weak Match"
)

// ParseLabel maps a free-form label onto one of the four bands.
// Matching is a case-insensitive substring check; anything unrecognised is Weak.
func ParseLabel(s string) Label {
	l := strings.ToLower(s)
	switch {
	case strings.Contains(l, "strong"):
		return LabelStrong
	case strings.Contains(l, "medium"):
		return LabelMedium
	case strings.Contains(l, "exploratory"):
		return LabelExploratory
	default:
		return LabelWeak
	}
}

// PlaceholderURL is what the provider returns when it has no usable link.
const PlaceholderURL = "#"

// Posting is a single job lead as retained locally.
// JSON names match what the spreadsheet webhook reads.
type Posting struct {
	ID             string    `json:"id"`
	Company        string    `json:"company"`
	Title          string    `json:"title"`
	Location       string    `json:"location"`
	URL            string    `json:"url"`
	DateFound      time.Time `json:"dateFound"`            // our clock, set on ingestion
	PostedDate     string    `json:"postedDate,omitempty"` // provider text, e.g. "2 hours ago"
	RelevanceScore float64   `json:"relevanceScore"`       // 0.0 - 1.0
	RelevanceLabel Label     `json:"relevanceLabel"`
	Reason         string    `json:"reason"`
	Source         string    `json:"source,omitempty"`
	Saved          bool      `json:"saved,omitempty"` // bookmarked by the user
}

// Identity is the deduplication key: the link when it is usable,
// otherwise company and title together.
func (p Posting) Identity() string {
	u := strings.TrimSpace(p.URL)
	if u != "" && u != PlaceholderURL {
		return u
	}
	return p.Company + "::" + p.Title
}

// SheetTarget identifies where a sync goes.
type SheetTarget struct {
	WebhookURL string
	SheetID    string
}

// Configured reports whether both halves of the target are set.
func (t SheetTarget) Configured() bool {
	return t.WebhookURL != "" && t.SheetID != ""
}

// SyncResult is the webhook's reply.
type SyncResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	NewJobsAdded int    `json:"newJobsAdded"`
}

// PostingFetcher runs one search/analysis round and returns candidate postings.
type PostingFetcher interface {
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// SheetSyncer pushes a batch of postings to the spreadsheet webhook.
// A non-nil error means the request never got a usable reply (transport failure);
// an explicit rejection comes back as SyncResult.Success == false.
type SheetSyncer interface {
	Sync(ctx context.Context, target SheetTarget, postings []Posting) (SyncResult, error)
}

// KVStore is the local key-value persistence. Get returns ErrKeyNotFound for missing keys.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// PostingFilter decides whether a posting is shown in a view.
type PostingFilter interface {
	Match(p Posting) bool
}
