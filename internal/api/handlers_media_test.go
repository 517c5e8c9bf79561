// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
)

func TestAppMedia_Success(t *testing.T) {
	deps := defaultTestDeps()
	deps.media.media = &models.MediaInfo{
		TrailerURL:  "https://cdn.example.com/trailer.webm",
		Screenshots: []string{"https://cdn.example.com/s1.jpg"},
	}
	router := newTestRouter(t, deps)

	rec := getPath(router, "/api/v1/media/620")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if deps.media.gotAppID != "620" {
		t.Errorf("appID = %q", deps.media.gotAppID)
	}
	envelope := decodeEnvelope(t, rec)
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T", envelope.Data)
	}
	if data["microtrailer"] != "https://cdn.example.com/trailer.webm" {
		t.Errorf("microtrailer = %v", data["microtrailer"])
	}
}

func TestAppMedia_NonNumericID(t *testing.T) {
	router := newTestRouter(t, defaultTestDeps())

	rec := getPath(router, "/api/v1/media/not-an-id")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAppMedia_NotFound(t *testing.T) {
	deps := defaultTestDeps()
	deps.media.err = providers.ErrAppNotFound
	router := newTestRouter(t, deps)

	rec := getPath(router, "/api/v1/media/999999")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestImageProxy_StreamsAllowedHost(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegbytes"))
	}))
	defer upstream.Close()

	upstreamURL, _ := url.Parse(upstream.URL)
	deps := defaultTestDeps()
	deps.allowedHosts = []string{upstreamURL.Hostname()}
	router := newTestRouter(t, deps)

	rec := getPath(router, "/api/v1/media/image?url="+url.QueryEscape(upstream.URL+"/header.jpg"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "jpegbytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestImageProxy_RefusesForeignHost(t *testing.T) {
	router := newTestRouter(t, defaultTestDeps())

	rec := getPath(router, "/api/v1/media/image?url="+url.QueryEscape("https://evil.example.net/x.jpg"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Code != ErrCodeForbiddenHost {
		t.Errorf("error = %+v, want code %s", envelope.Error, ErrCodeForbiddenHost)
	}
}

func TestImageProxy_BadURLParameter(t *testing.T) {
	router := newTestRouter(t, defaultTestDeps())

	for _, raw := range []string{"", "not-absolute", "ftp%3A%2F%2Fcdn.example.com%2Fx"} {
		rec := getPath(router, "/api/v1/media/image?url="+raw)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("url=%q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestImageProxy_VariantResolution(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("variantbytes"))
	}))
	defer upstream.Close()

	tests := []struct {
		name     string
		query    string
		wantPath string
	}{
		{"default variant", "appid=620", "/steam/apps/620/header.jpg"},
		{"header", "appid=620&variant=header", "/steam/apps/620/header.jpg"},
		{"capsule", "appid=620&variant=capsule", "/steam/apps/620/capsule_616x353.jpg"},
		{"library", "appid=620&variant=library", "/steam/apps/620/library_600x900.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := defaultTestDeps()
			deps.cdnBaseURL = upstream.URL
			router := newTestRouter(t, deps)

			rec := getPath(router, "/api/v1/media/image?"+tt.query)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if gotPath != tt.wantPath {
				t.Errorf("upstream path = %q, want %q", gotPath, tt.wantPath)
			}
			if rec.Body.String() != "variantbytes" {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestImageProxy_BadVariantParameters(t *testing.T) {
	router := newTestRouter(t, defaultTestDeps())

	tests := []struct {
		name  string
		query string
	}{
		{"unknown variant", "appid=620&variant=poster"},
		{"non-numeric appid", "appid=portal&variant=header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := getPath(router, "/api/v1/media/image?"+tt.query)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestVideoProxy_ForwardsRange(t *testing.T) {
	var gotRange string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.Header.Get("Range")
		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Range", "bytes 0-3/100")
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte("mp4!"))
	}))
	defer upstream.Close()

	upstreamURL, _ := url.Parse(upstream.URL)
	deps := defaultTestDeps()
	deps.allowedHosts = []string{upstreamURL.Hostname()}
	router := newTestRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/media/video?url="+url.QueryEscape(upstream.URL+"/trailer.mp4"), nil)
	req.Header.Set("Range", "bytes=0-3")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if gotRange != "bytes=0-3" {
		t.Errorf("upstream Range = %q, want passthrough", gotRange)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 0-3/100" {
		t.Errorf("Content-Range = %q", got)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
}

func TestVideoProxy_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	upstreamURL, _ := url.Parse(upstream.URL)
	deps := defaultTestDeps()
	deps.allowedHosts = []string{upstreamURL.Hostname()}
	router := newTestRouter(t, deps)

	rec := getPath(router, "/api/v1/media/video?url="+url.QueryEscape(upstream.URL+"/gone.mp4"))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHostAllowed(t *testing.T) {
	h := &Handler{allowedHosts: []string{"cdn.example.com", "Steamstatic.com"}}

	tests := []struct {
		host string
		want bool
	}{
		{"cdn.example.com", true},
		{"CDN.Example.COM", true},
		{"shared.steamstatic.com", true},
		{"steamstatic.com", true},
		{"evil.example.net", false},
		{"notcdn.example.com.evil.net", false},
		{"fakesteamstatic.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := h.hostAllowed(tt.host); got != tt.want {
			t.Errorf("hostAllowed(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}
