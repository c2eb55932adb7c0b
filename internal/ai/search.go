package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/hiringintel/internal/metrics"
	"github.com/amishk599/hiringintel/internal/model"
)

// Ensure SearchProvider implements model.PostingFetcher.
var _ model.PostingFetcher = (*SearchProvider)(nil)

const sourceName = "AI Search"

// Profile describes the user the postings are scored against.
type Profile struct {
	Background []string `json:"background"`
	Skills     []string `json:"skills"`
	Interests  []string `json:"interests"`
	Intent     []string `json:"intent"`
}

// Query is what the search step looks for.
type Query struct {
	Roles     []string
	Locations string
	Companies []string
}

// SearchConfig wires a SearchProvider.
type SearchConfig struct {
	SearchModel   string
	AnalysisModel string
	MinScore      float64
	Profile       Profile
	Query         Query
}

// postingsSchema is enforced server-side via structured outputs. Strict mode
// needs every property listed as required.
var postingsSchema = json.RawMessage(`{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "postings": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "properties": {
          "company":        {"type": "string"},
          "title":          {"type": "string"},
          "location":       {"type": "string"},
          "url":            {"type": "string"},
          "relevanceScore": {"type": "number"},
          "relevanceLabel": {"type": "string"},
          "reason":         {"type": "string"},
          "postedDate":     {"type": "string"}
        },
        "required": ["company", "title", "location", "url", "relevanceScore", "relevanceLabel", "reason", "postedDate"]
      }
    }
  },
  "required": ["postings"]
}`)

// SearchProvider finds postings in two rounds: a free-text search, then an
// analysis round that extracts and scores postings against the profile.
type SearchProvider struct {
	llm    *OpenAIProvider
	cfg    SearchConfig
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// NewSearchProvider creates a provider. MinScore is used as given; zero keeps
// every posting.
func NewSearchProvider(llm *OpenAIProvider, cfg SearchConfig, logger *slog.Logger) *SearchProvider {
	return &SearchProvider{
		llm:    llm,
		cfg:    cfg,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// FetchPostings runs both rounds and returns the postings that clear the
// relevance floor. An empty search result yields no postings and no error.
func (s *SearchProvider) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	if s.llm.apiKey == "" {
		return nil, model.ErrMissingCredential
	}

	searchPrompt, err := render(SearchTemplate, s.cfg.Query)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("starting search", "model", s.cfg.SearchModel)
	text, err := s.llm.Complete(ctx, completion{
		Model: s.cfg.SearchModel,
		User:  searchPrompt,
	})
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("search", metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("search: %w", err)
	}
	metrics.ProviderRequestsTotal.WithLabelValues("search", metrics.ResultSuccess).Inc()

	if strings.TrimSpace(text) == "" {
		s.logger.Info("search returned no text")
		return nil, nil
	}
	s.logger.Debug("search complete", "chars", len(text))

	profileJSON, err := json.MarshalIndent(s.cfg.Profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	system, err := render(AnalysisSystemTemplate, struct{ ProfileJSON string }{string(profileJSON)})
	if err != nil {
		return nil, err
	}
	cites := citations(text)
	s.logger.Debug("search citations", "count", len(cites))
	user, err := render(AnalysisUserTemplate, struct {
		SearchResults string
		Citations     []citation
		MinScore      float64
	}{text, cites, s.cfg.MinScore})
	if err != nil {
		return nil, err
	}

	raw, err := s.llm.Complete(ctx, completion{
		Model:      s.cfg.AnalysisModel,
		System:     system,
		User:       user,
		SchemaName: "job_postings",
		Schema:     postingsSchema,
	})
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("analysis", metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("analysis: %w", err)
	}
	metrics.ProviderRequestsTotal.WithLabelValues("analysis", metrics.ResultSuccess).Inc()

	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	postings, err := s.parsePostings(raw)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	return postings, nil
}

// rawPosting is the JSON shape returned by the analysis round (matches postingsSchema).
type rawPosting struct {
	Company        string  `json:"company"`
	Title          string  `json:"title"`
	Location       string  `json:"location"`
	URL            string  `json:"url"`
	RelevanceScore float64 `json:"relevanceScore"`
	RelevanceLabel string  `json:"relevanceLabel"`
	Reason         string  `json:"reason"`
	PostedDate     string  `json:"postedDate"`
}

// parsePostings maps the analysis output onto postings, filling defaults for
// blank fields and dropping anything under the relevance floor.
func (s *SearchProvider) parsePostings(raw string) ([]model.Posting, error) {
	var resp struct {
		Postings []rawPosting `json:"postings"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal postings JSON: %w", err)
	}

	now := s.now()
	var out []model.Posting
	dropped := 0
	for _, r := range resp.Postings {
		if r.RelevanceScore < s.cfg.MinScore {
			dropped++
			continue
		}
		out = append(out, model.Posting{
			ID:             s.newID(),
			Company:        orDefault(r.Company, "Unknown Company"),
			Title:          orDefault(r.Title, "Unknown Role"),
			Location:       orDefault(r.Location, "Remote"),
			URL:            orDefault(r.URL, model.PlaceholderURL),
			DateFound:      now,
			PostedDate:     strings.TrimSpace(r.PostedDate),
			RelevanceScore: clamp(r.RelevanceScore),
			RelevanceLabel: model.ParseLabel(r.RelevanceLabel),
			Reason:         orDefault(r.Reason, "No analysis provided"),
			Source:         sourceName,
		})
	}

	s.logger.Info("analysis complete", "postings", len(out), "below_floor", dropped)
	return out, nil
}

// citation is a source link the search model cited inline.
type citation struct {
	Title string
	URL   string
}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)

// citations collects the markdown links in the search text, first title per
// URL wins. Search models inline their url_citation annotations this way and
// the chat completion response type does not decode the annotations.
func citations(text string) []citation {
	seen := make(map[string]struct{})
	var out []citation
	for _, m := range markdownLink.FindAllStringSubmatch(text, -1) {
		url := m[2]
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		out = append(out, citation{Title: strings.TrimSpace(m[1]), URL: url})
	}
	return out
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
