package http

import (
	"encoding/json"
	"errors"
	"net/http"

	applog "fintrack/internal/log"
	"fintrack/internal/records"
)

const (
	kindTransaction = "Transaction"
	kindBudget      = "Budget"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps a service error to its response status and message.
// Missing records are 404; every other failure, validation included, is 500
// with the raw error text.
func errorStatus(kind string, err error) (int, string) {
	if errors.Is(err, records.ErrNotFound) {
		return http.StatusNotFound, kind + " not found"
	}
	return http.StatusInternalServerError, err.Error()
}

// writeError logs err and writes the mapped JSON error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, kind, op string, err error) {
	status, msg := errorStatus(kind, err)

	logger := applog.FromContext(r.Context())
	fields := applog.NewFields()
	fields[applog.FieldRecordKind] = kind
	switch {
	case status == http.StatusNotFound:
		logger.DebugContext(r.Context(), "Record not found", fields.WithOperation(op).ToSlice()...)
	case records.IsValidation(err) || errors.Is(err, ErrMalformedBody):
		logger.WarnContext(r.Context(), "Request rejected", fields.WithOperation(op).WithError(err).ToSlice()...)
	default:
		applog.NewStructuredLogger(logger).LogError(r.Context(), "Request failed", err, op, fields)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldComponent, applog.ComponentRateLimit,
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path,
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r))
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Rate limit exceeded. Please try again later."})
}
