package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/export"
	"github.com/amishk599/hiringintel/internal/filter"
	"github.com/amishk599/hiringintel/internal/model"
	"github.com/amishk599/hiringintel/internal/report"
)

type handler struct {
	board  *board.Board
	scans  ScanControl
	logger *slog.Logger
	now    func() time.Time
}

type postingsResponse struct {
	Postings []model.Posting `json:"postings"`
	Total    int             `json:"total"`
}

type bookmarkResponse struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

type scanResponse struct {
	Retained int        `json:"retained"`
	LastScan *time.Time `json:"lastScan"`
}

type syncRequest struct {
	Limit int `json:"limit"`
}

type syncResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	NewJobsAdded int    `json:"newJobsAdded"`
}

type settingsResponse struct {
	WebhookURL   string     `json:"webhookUrl"`
	SheetID      string     `json:"sheetId"`
	Configured   bool       `json:"configured"`
	AutoScan     bool       `json:"autoScan"`
	ScanInFlight bool       `json:"scanInFlight"`
	LastScan     *time.Time `json:"lastScan"`
	LastSync     *time.Time `json:"lastSync"`
}

type settingsRequest struct {
	WebhookURL string `json:"webhookUrl"`
	SheetID    string `json:"sheetId"`
}

type autoScanRequest struct {
	Enabled *bool `json:"enabled"`
}

type autoScanResponse struct {
	Enabled bool `json:"enabled"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listPostings handles GET /api/postings?saved=&min_score=&label=&title=&location=.
func (h *handler) listPostings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filters []model.PostingFilter

	if v := q.Get("saved"); v != "" {
		saved, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", "saved must be a boolean")
			return
		}
		if saved {
			filters = append(filters, filter.SavedOnly())
		}
	}
	if v := q.Get("min_score"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "bad_request", "min_score must be a number")
			return
		}
		filters = append(filters, filter.MinScore(min))
	}
	if v := q.Get("label"); v != "" {
		filters = append(filters, filter.LabelIs(model.ParseLabel(v)))
	}
	if titles, locs := q["title"], q["location"]; len(titles) > 0 || len(locs) > 0 {
		filters = append(filters, filter.NewTitleAndLocationFilter(titles, locs))
	}

	ps := filter.Apply(h.board.Snapshot().Postings, filter.All(filters...))
	writeJSON(w, http.StatusOK, postingsResponse{Postings: ps, Total: len(ps)})
}

// toggleBookmark handles POST /api/postings/{id}/bookmark.
func (h *handler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	saved, err := h.board.ToggleBookmark(r.Context(), id)
	if err != nil {
		h.logError(r, "toggling bookmark", err)
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarkResponse{ID: id, Saved: saved})
}

// scan handles POST /api/scan. The scan runs to completion even if the
// client goes away.
func (h *handler) scan(w http.ResponseWriter, r *http.Request) {
	err := h.scans.Trigger(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, model.ErrScanInFlight), errors.Is(err, model.ErrMissingCredential):
		writeDomainError(w, r, err)
		return
	case err != nil:
		h.logError(r, "manual scan", err)
		writeError(w, r, http.StatusBadGateway, "scan_failed", err.Error())
		return
	}

	st := h.board.Snapshot()
	writeJSON(w, http.StatusOK, scanResponse{Retained: len(st.Postings), LastScan: st.LastScan})
}

// sync handles POST /api/sync with an optional {"limit": n} body.
func (h *handler) sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}

	out, err := h.board.Sync(r.Context(), req.Limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if !out.OK() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, syncResponse{
		Success:      out.OK(),
		Message:      out.Message(),
		NewJobsAdded: out.Result.NewJobsAdded,
	})
}

func (h *handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settings())
}

func (h *handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	if err := h.board.Configure(r.Context(), req.WebhookURL, req.SheetID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.settings())
}

func (h *handler) settings() settingsResponse {
	st := h.board.Snapshot()
	return settingsResponse{
		WebhookURL:   st.WebhookURL,
		SheetID:      st.SheetID,
		Configured:   st.Target().Configured(),
		AutoScan:     h.scans.Enabled(),
		ScanInFlight: h.scans.InFlight(),
		LastScan:     st.LastScan,
		LastSync:     st.LastSync,
	}
}

func (h *handler) putAutoScan(w http.ResponseWriter, r *http.Request) {
	var req autoScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", `body must be {"enabled": true|false}`)
		return
	}
	h.scans.SetEnabled(*req.Enabled)
	h.logger.Info("auto-scan toggled", "enabled", *req.Enabled)
	writeJSON(w, http.StatusOK, autoScanResponse{Enabled: h.scans.Enabled()})
}

func (h *handler) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, report.ComputeStats(h.board.Snapshot().Postings, h.now()))
}

func (h *handler) report(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, report.Daily(h.board.Snapshot().Postings, h.now()))
}

// export handles GET /api/export as a file download.
func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	ps := h.board.Snapshot().Postings
	if len(ps) == 0 {
		writeDomainError(w, r, model.ErrNothingToExport)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName(h.now())))
	if err := export.Write(w, ps); err != nil {
		h.logError(r, "writing export", err)
	}
}

func (h *handler) logError(r *http.Request, msg string, err error) {
	h.logger.Error(msg, "path", r.URL.Path, "error", err)
}
