package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/sakif/movie-platform/internal/apperror"
)

const internalErrorMessage = "An internal error occurred"

// ErrorResponse is the body of every non-2xx response:
//
//	{"error": "not_found", "message": "user not found with id abc123"}
//
// Field is set when a single input field is at fault, and Detail only when
// the server runs in development mode.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// responder is embedded in every handler. showDetail exposes the raw error
// text of 500s, which is only safe in development.
type responder struct {
	logger     *slog.Logger
	showDetail bool
}

// encodeJSON writes data as the response body. The status line is sent
// before encoding starts, so a returned error can only be logged.
func encodeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

func (h responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := encodeJSON(w, status, data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("path", r.URL.Path),
			slog.String("requestID", chimw.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
}

// statusOf maps an error to its HTTP status and machine-readable code.
// InvalidCredentials is checked before NotFound: an unknown login email
// matches both and must be a 400.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid_credentials"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps a service error to a JSON error response. Anything that
// is not an *apperror.AppError is logged and reported as a bare 500.
func (h responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status, code := statusOf(err)
		if status != http.StatusInternalServerError {
			h.writeJSON(w, r, status, ErrorResponse{
				Error:   code,
				Message: appErr.Message,
				Field:   appErr.Field,
			})
			return
		}
	}

	h.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("requestID", chimw.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)

	body := ErrorResponse{Error: "internal_error", Message: internalErrorMessage}
	if h.showDetail {
		body.Detail = err.Error()
	}
	h.writeJSON(w, r, http.StatusInternalServerError, body)
}

// NotFound is the catch-all for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = encodeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Not Found"})
}

// MethodNotAllowed answers a known path with the wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = encodeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: "Method Not Allowed"})
}
