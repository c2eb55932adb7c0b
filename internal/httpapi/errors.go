package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/amishk599/hiringintel/internal/model"
)

// APIError is the body of every non-2xx JSON response.
type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = chiMiddleware.GetReqID(r.Context())
	writeJSON(w, status, e)
}

// writeDomainError maps model sentinels onto status codes. Anything
// unrecognised is a 500 with a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrPostingNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrScanInFlight):
		writeError(w, r, http.StatusConflict, "scan_in_flight", err.Error())
	case errors.Is(err, model.ErrSyncNotConfigured):
		writeError(w, r, http.StatusPreconditionFailed, "sync_not_configured", err.Error())
	case errors.Is(err, model.ErrNothingToSync), errors.Is(err, model.ErrNothingToExport):
		writeError(w, r, http.StatusPreconditionFailed, "empty", err.Error())
	case errors.Is(err, model.ErrInvalidWebhookURL), errors.Is(err, model.ErrInvalidSheetID):
		writeError(w, r, http.StatusBadRequest, "invalid_settings", err.Error())
	case errors.Is(err, model.ErrMissingCredential):
		writeError(w, r, http.StatusPreconditionFailed, "missing_credential", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
