// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"walletledger/internal/util"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 30 * time.Second

// Pagination bounds for list endpoints.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Helper function to send JSON responses.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError translates err's kind to a status code. Internal errors are logged
// and never leak their message.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := util.KindOf(err)
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch kind {
	case util.KindInvalid:
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.KindNotFound:
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.KindConflict:
		statusCode = http.StatusConflict
		message = err.Error()
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, ErrorResponse{Error: message, Code: kind.String()})
}

// idParam parses a positive int64 path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// pagination reads limit and offset, falling back to defaults on bad input.
func pagination(r *http.Request) (limit, offset int) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit // Default limit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err = strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}
	return limit, offset
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return util.ErrInvalidInput
	}
	return nil
}
