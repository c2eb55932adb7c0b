// Package httpapi exposes the board over a small local JSON API.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/hiringintel/internal/board"
	"github.com/amishk599/hiringintel/internal/metrics"
)

// ScanControl is the part of the scheduler the API drives.
type ScanControl interface {
	Trigger(ctx context.Context) error
	SetEnabled(enabled bool)
	Enabled() bool
	InFlight() bool
}

type Deps struct {
	Board  *board.Board
	Scans  ScanControl
	Logger *slog.Logger
	Now    func() time.Time // defaults to time.Now
}

// NewRouter wires every route onto a chi router.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handler{board: d.Board, scans: d.Scans, logger: d.Logger, now: d.Now}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(jsonRecoverer(d.Logger))
	r.Use(accessLog(d.Logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/postings", h.listPostings)
		r.Post("/postings/{id}/bookmark", h.toggleBookmark)
		r.Post("/scan", h.scan)
		r.Post("/sync", h.sync)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.putSettings)
		r.Put("/autoscan", h.putAutoScan)
		r.Get("/stats", h.stats)
		r.Get("/report", h.report)
		r.Get("/export", h.export)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not_found", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return r
}
