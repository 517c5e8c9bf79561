// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/models"
)

// Error codes for API responses. Codes are part of the public contract;
// clients branch on them.
const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeValidationFailed     = "VALIDATION_ERROR"
	ErrCodeNotConfigured        = "NOT_CONFIGURED"
	ErrCodeForbiddenHost        = "FORBIDDEN_HOST"
	ErrCodeRecommendationFailed = "RECOMMENDATION_FAILED"
	ErrCodeSearchFailed         = "SEARCH_FAILED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
)

// ResponseWriter writes standardized envelope responses for one request.
// It captures the construction time so Metadata.QueryTimeMS reflects actual
// handler duration.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a response writer bound to one request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

// Success writes a 200 envelope with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.SuccessWithMeta(data, models.Metadata{})
}

// SuccessWithMeta writes a 200 envelope with data and caller-supplied
// metadata. Timestamp and QueryTimeMS are filled in unless already set.
func (rw *ResponseWriter) SuccessWithMeta(data interface{}, meta models.Metadata) {
	meta.Timestamp = time.Now().UTC()
	if meta.QueryTimeMS == 0 && !meta.Cached {
		meta.QueryTimeMS = time.Since(rw.startTime).Milliseconds()
	}

	rw.writeJSON(http.StatusOK, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: meta,
	})
}

// Error writes an error envelope with the given HTTP status.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error envelope with structured details, such
// as per-field validation failures.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	rw.writeJSON(statusCode, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// BadRequest writes a 400 Bad Request error.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

// Unauthorized writes a 401 Unauthorized error.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.Error(http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

// NotConfigured writes a 503 for endpoints whose upstream credential is
// absent. The service stays up; only the dependent feature is unavailable.
func (rw *ResponseWriter) NotConfigured(message string) {
	rw.Error(http.StatusServiceUnavailable, ErrCodeNotConfigured, message)
}

// ForbiddenHost writes a 403 for media proxy requests targeting hosts
// outside the allow-list.
func (rw *ResponseWriter) ForbiddenHost(host string) {
	rw.Error(http.StatusForbidden, ErrCodeForbiddenHost, "Host not allowed: "+host)
}

// InternalError writes a 500 Internal Server Error.
func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// DatabaseError logs the underlying error and writes a generic 500. The
// raw error never reaches the client.
func (rw *ResponseWriter) DatabaseError(err error) {
	logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Database error")
	rw.Error(http.StatusInternalServerError, ErrCodeDatabaseError, "A storage error occurred")
}

// ValidationError writes a 400 with per-field details.
func (rw *ResponseWriter) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, details)
}

// writeJSON writes the envelope with proper headers.
func (rw *ResponseWriter) writeJSON(statusCode int, response models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(response); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteRawJSON writes an arbitrary JSON payload outside the envelope. Used
// by the auth identity endpoint, which returns a bare user object or null.
func WriteRawJSON(w http.ResponseWriter, r *http.Request, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}
