package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/hiringintel/internal/model"
)

// Ensure WebhookSyncer implements model.SheetSyncer.
var _ model.SheetSyncer = (*WebhookSyncer)(nil)

const (
	maxResponseBytes = 1 << 20
	maxErrorText     = 200
	deploymentHint   = "(Check if Deployment is 'Web App' and Access is 'Anyone')"
)

// WebhookSyncer posts batches of postings to a spreadsheet Apps Script
// deployment.
type WebhookSyncer struct {
	httpClient *http.Client
	now        func() time.Time
	logger     *slog.Logger
}

// NewWebhookSyncer returns a syncer that posts with the given client.
func NewWebhookSyncer(httpClient *http.Client, logger *slog.Logger) *WebhookSyncer {
	return &WebhookSyncer{
		httpClient: httpClient,
		now:        time.Now,
		logger:     logger,
	}
}

type syncRequest struct {
	Jobs      []model.Posting `json:"jobs"`
	SheetID   string          `json:"sheetId"`
	Timestamp string          `json:"timestamp"`
}

type syncResponse struct {
	Success      *bool  `json:"success"`
	Message      string `json:"message"`
	NewJobsAdded int    `json:"newJobsAdded"`
}

// Sync sends one request and never retries. The body goes out as text/plain
// because Apps Script web apps reject anything that would need a preflight.
// Transport failures are returned as errors; every reply the script gives,
// including HTML error pages, becomes a SyncResult.
func (s *WebhookSyncer) Sync(ctx context.Context, target model.SheetTarget, postings []model.Posting) (model.SyncResult, error) {
	if !target.Configured() {
		return model.SyncResult{}, model.ErrSyncNotConfigured
	}
	if postings == nil {
		postings = []model.Posting{}
	}

	body, err := json.Marshal(syncRequest{
		Jobs:      postings,
		SheetID:   target.SheetID,
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("marshal sync payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("post to sheet webhook: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.SyncResult{}, fmt.Errorf("read sheet webhook response: %w", err)
	}

	result := interpret(resp.StatusCode, raw)
	s.logger.Debug("sheet webhook replied",
		"status", resp.StatusCode,
		"success", result.Success,
		"new_jobs_added", result.NewJobsAdded,
	)
	return result, nil
}

func interpret(status int, raw []byte) model.SyncResult {
	var r syncResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return model.SyncResult{
			Message: fmt.Sprintf(`Google Script Error: "%s..." %s`, describeBody(raw), deploymentHint),
		}
	}

	// Only an explicit "success": true on a 2xx counts.
	ok := status >= 200 && status < 300
	if !ok || r.Success == nil || !*r.Success {
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("Sync failed: %d", status)
		}
		return model.SyncResult{Message: msg}
	}

	return model.SyncResult{
		Success:      true,
		Message:      r.Message,
		NewJobsAdded: r.NewJobsAdded,
	}
}

// describeBody reduces an HTML error page to its visible text.
func describeBody(raw []byte) string {
	text := string(raw)
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw)); err == nil {
		doc.Find("script, style").Remove()
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxErrorText {
		text = string(r[:maxErrorText])
	}
	return text
}
