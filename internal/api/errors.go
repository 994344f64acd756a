package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/alecgard/taskhub/internal/apperr"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

const msgInternal = "Error interno del servidor"

// errorEnvelope is the standard error response shape.
type errorEnvelope struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorCounter counts rejected operations by error kind.
type ErrorCounter interface {
	IncDomainError(kind string)
}

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeMessage writes the {"message": ...} body used by deletes.
func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// readJSON decodes the request body into v, enforcing a size limit.
func readJSON(r *http.Request, v any) error {
	lr := io.LimitReader(r.Body, maxBodySize)
	return json.NewDecoder(lr).Decode(v)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind error) int {
	switch kind {
	case apperr.ErrNotFound:
		return http.StatusNotFound
	case apperr.ErrForbidden:
		return http.StatusForbidden
	case apperr.ErrValidation:
		return http.StatusBadRequest
	case apperr.ErrConflict:
		return http.StatusConflict
	case apperr.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// responder renders service results and counts failures.
type responder struct {
	errs ErrorCounter
}

// fail renders err. Classified errors keep their message; anything else is
// logged and reported as a generic internal error.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	if kind == nil {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		rs.count("internal_error")
		writeError(w, http.StatusInternalServerError, "internal_error", msgInternal)
		return
	}
	rs.count(kind.Error())
	writeError(w, statusFor(kind), kind.Error(), apperr.Message(err))
}

// invalid reports a request that failed to parse before reaching a service.
func (rs responder) invalid(w http.ResponseWriter, message string) {
	rs.count(apperr.ErrValidation.Error())
	writeError(w, http.StatusBadRequest, apperr.ErrValidation.Error(), message)
}

func (rs responder) count(kind string) {
	if rs.errs != nil {
		rs.errs.IncDomainError(kind)
	}
}

