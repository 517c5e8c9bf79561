// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/providers"
)

// AppMedia handles GET /api/v1/media/{appID}: trailer and screenshot URLs
// for one Steam app.
func (h *Handler) AppMedia(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	appID := chi.URLParam(r, "appID")
	if !isNumericAppID(appID) {
		rw.BadRequest("App ID must be numeric")
		return
	}

	media, err := h.media.FetchAppMedia(r.Context(), appID)
	if err != nil {
		if errors.Is(err, providers.ErrAppNotFound) {
			rw.NotFound("App not found")
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Str("app_id", appID).Msg("Media metadata fetch failed")
		rw.Error(http.StatusBadGateway, ErrCodeInternalError, "Could not load media metadata")
		return
	}

	rw.Success(media)
}

// imageVariants maps the public variant names to Steam CDN filenames.
var imageVariants = map[string]string{
	"header":  "header.jpg",
	"capsule": "capsule_616x353.jpg",
	"library": "library_600x900.jpg",
}

// ImageProxy handles GET /api/v1/media/image. It streams an upstream image
// through the service so the SPA never needs third-party origins in its
// CSP. Callers pass either appid= with an optional variant= (header,
// capsule, library), resolved against the configured CDN base, or an
// explicit url= which must point at an allow-listed host.
func (h *Handler) ImageProxy(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if appID := r.URL.Query().Get("appid"); appID != "" {
		if !isNumericAppID(appID) {
			rw.BadRequest("App ID must be numeric")
			return
		}
		variant := r.URL.Query().Get("variant")
		if variant == "" {
			variant = "header"
		}
		filename, ok := imageVariants[variant]
		if !ok {
			rw.BadRequest("Parameter 'variant' must be one of: header, capsule, library")
			return
		}
		// The CDN base comes from config, not the client, so the
		// allow-list does not apply here.
		h.streamMedia(rw, w, r, "image", fmt.Sprintf("%s/steam/apps/%s/%s", h.cdnBaseURL, appID, filename))
		return
	}

	h.proxyMedia(rw, w, r, "image")
}

// VideoProxy handles GET /api/v1/media/video?url=. Unlike the image proxy
// it forwards Range requests so browsers can seek within trailers.
func (h *Handler) VideoProxy(w http.ResponseWriter, r *http.Request) {
	h.proxyMedia(NewResponseWriter(w, r), w, r, "video")
}

// proxyMedia validates a caller-supplied url= against the host allow-list
// and streams it.
func (h *Handler) proxyMedia(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, kind string) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		rw.BadRequest("Query parameter 'url' is required")
		return
	}

	target, err := url.Parse(rawURL)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		rw.BadRequest("Parameter 'url' must be an absolute HTTP URL")
		return
	}
	if !h.hostAllowed(target.Hostname()) {
		logging.Ctx(r.Context()).Warn().Str("host", target.Hostname()).Str("kind", kind).Msg("Media proxy refused non-allow-listed host")
		rw.ForbiddenHost(target.Hostname())
		return
	}

	h.streamMedia(rw, w, r, kind, target.String())
}

// streamMedia fetches one upstream media resource and copies it to the
// client. Range negotiation headers pass through in both directions for
// video.
func (h *Handler) streamMedia(rw *ResponseWriter, w http.ResponseWriter, r *http.Request, kind, targetURL string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, targetURL, http.NoBody)
	if err != nil {
		rw.BadRequest("Parameter 'url' must be an absolute HTTP URL")
		return
	}
	if kind == "video" {
		if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
			req.Header.Set("Range", rangeHeader)
		}
	}

	resp, err := h.proxyClient.Do(req)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("kind", kind).Msg("Media proxy upstream fetch failed")
		rw.Error(http.StatusBadGateway, ErrCodeInternalError, "Upstream media fetch failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		rw.Error(http.StatusBadGateway, ErrCodeInternalError, "Upstream media fetch failed")
		return
	}

	copyHeader(w, resp, "Content-Type")
	copyHeader(w, resp, "Content-Length")
	if kind == "video" {
		copyHeader(w, resp, "Content-Range")
		copyHeader(w, resp, "Accept-Ranges")
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(resp.StatusCode)

	written, err := io.Copy(w, resp.Body)
	metrics.MediaProxyBytes.WithLabelValues(kind).Add(float64(written))
	if err != nil {
		// Headers are already out; nothing useful to send the client.
		logging.Ctx(r.Context()).Debug().Err(err).Str("kind", kind).Msg("Media proxy stream interrupted")
	}
}

// hostAllowed reports whether host matches the allow-list exactly or as a
// subdomain of an allowed host.
func (h *Handler) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, allowed := range h.allowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func copyHeader(w http.ResponseWriter, resp *http.Response, name string) {
	if value := resp.Header.Get(name); value != "" {
		w.Header().Set(name, value)
	}
}

// isNumericAppID reports whether s is a non-empty ASCII digit string.
func isNumericAppID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
