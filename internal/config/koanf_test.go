// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8470 {
		t.Errorf("Server.Port = %d, want 8470", cfg.Server.Port)
	}
	if cfg.Steam.EnrichInterval != 300*time.Millisecond {
		t.Errorf("Steam.EnrichInterval = %v, want 300ms", cfg.Steam.EnrichInterval)
	}
	if cfg.Steam.AttemptTimeout != 10*time.Second {
		t.Errorf("Steam.AttemptTimeout = %v, want 10s", cfg.Steam.AttemptTimeout)
	}

	// URL builders append /steam/apps/<id>/... themselves, so the default
	// base must be the bare CDN host or every built URL doubles the path.
	if cfg.Media.CDNBaseURL != "https://cdn.akamai.steamstatic.com" {
		t.Errorf("Media.CDNBaseURL = %q, want bare CDN host", cfg.Media.CDNBaseURL)
	}
	if strings.Contains(cfg.Media.CDNBaseURL, "/steam/apps") {
		t.Errorf("Media.CDNBaseURL = %q must not carry the /steam/apps path", cfg.Media.CDNBaseURL)
	}
	if len(cfg.Media.AllowedHosts) == 0 {
		t.Error("Media.AllowedHosts should allow the Steam CDNs by default")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"GEMINI_API_KEY", "gemini.api_key"},
		{"SESSION_SECRET", "security.session_secret"},
		{"STEAM_RELAY_URLS", "steam.relay_urls"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
