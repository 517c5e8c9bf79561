// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Components    map[string]bool `json:"components,omitempty"`
}

// HealthLive handles GET /api/v1/health/live: process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// HealthReady handles GET /api/v1/health/ready: the service is ready once
// storage is open. Provider keys are optional so they never gate readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.store == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeInternalError, "Storage is not available")
		return
	}

	rw.Success(HealthStatus{
		Status:        "ready",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// Health handles GET /api/v1/health: liveness plus which optional features
// are configured. Missing upstream keys degrade features rather than
// failing the health check.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Components: map[string]bool{
			"catalog_search": h.suggestions != nil && h.suggestions.Configured(),
			"steam_login":    h.sessions != nil && h.sessions.Configured(),
			"storage":        h.store != nil,
		},
	})
}
