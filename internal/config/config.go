// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package config provides centralized configuration for all Gamecurator
// components, loaded via Koanf v2 with layered sources (highest wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"time"
)

// Config holds all application configuration.
//
// Required deployment values:
//   - GEMINI_API_KEY: generative provider key (recommendation endpoints
//     fail with a configuration error when absent)
//   - SESSION_SECRET: HMAC secret for session tokens, 32+ characters
//     (the session-read endpoint fails when absent)
//
// Optional values degrade features rather than failing: a missing
// GGDEALS_API_KEY turns deal lookups into slug-derived placeholders, a
// missing RAWG_API_KEY disables typeahead search.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Gemini   GeminiConfig   `koanf:"gemini"`
	Steam    SteamConfig    `koanf:"steam"`
	GGDeals  GGDealsConfig  `koanf:"ggdeals"`
	Rawg     RawgConfig     `koanf:"rawg"`
	Media    MediaConfig    `koanf:"media"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// PublicURL is the externally reachable base URL, used to build the
	// Steam OpenID return-to address (e.g. https://games.example.com).
	PublicURL string `koanf:"public_url"`
}

// GeminiConfig holds the generative AI provider settings.
//
// Environment Variables:
//   - GEMINI_API_KEY: API key (required for recommendations)
//   - GEMINI_MODEL: model name (default: gemini-3-flash-preview)
type GeminiConfig struct {
	APIKey      string `koanf:"api_key"`
	Model       string `koanf:"model"`
	BaseURL     string `koanf:"base_url"`
	ResultCount int    `koanf:"result_count"`
}

// SteamConfig holds Steam Store and Steam Web API settings.
//
// RelayURLs are ordered CORS-relay endpoints tried in sequence by the
// resilience wrapper before DirectURL; each entry is a printf-style
// template receiving the fully escaped target URL.
type SteamConfig struct {
	// WebAPIKey is the Steam Web API key used for player profile lookups
	// after OpenID login. Optional; a derived username is used without it.
	WebAPIKey string `koanf:"web_api_key"`

	// StoreURL is the Steam storefront API base.
	StoreURL string `koanf:"store_url"`

	// RelayURLs are relay templates, e.g. "https://api.allorigins.win/raw?url=%s".
	RelayURLs []string `koanf:"relay_urls"`

	// AttemptTimeout bounds each single strategy attempt.
	AttemptTimeout time.Duration `koanf:"attempt_timeout"`

	// AttemptBackoff is the fixed delay between failed strategy attempts.
	AttemptBackoff time.Duration `koanf:"attempt_backoff"`

	// EnrichInterval paces sequential per-candidate storefront calls.
	EnrichInterval time.Duration `koanf:"enrich_interval"`
}

// GGDealsConfig holds deals-provider settings. The API key is optional;
// without it every deal lookup degrades to a placeholder search link.
type GGDealsConfig struct {
	APIKey  string `koanf:"api_key"`
	APIURL  string `koanf:"api_url"`
	SiteURL string `koanf:"site_url"`
}

// RawgConfig holds RAWG catalog API settings for typeahead search and
// reference data (genres, platforms, tags).
type RawgConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// MediaConfig holds media proxy settings.
type MediaConfig struct {
	// CDNBaseURL is the Steam CDN base for cover images and microtrailers.
	CDNBaseURL string `koanf:"cdn_base_url"`

	// AllowedHosts is the CDN host allow-list enforced by the video and
	// image proxies. Requests for any other upstream host are rejected.
	AllowedHosts []string `koanf:"allowed_hosts"`
}

// DatabaseConfig holds BadgerDB settings for the recommendation cache,
// favorites, and history stores.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Used by tests.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often the value-log garbage collector runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// RecommendationTTL expires cached recommendation records at write
	// time. Zero keeps records until overwritten.
	RecommendationTTL time.Duration `koanf:"recommendation_ttl"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// SessionSecret signs session tokens (HS256). Required for any
	// session-aware endpoint; 32+ characters.
	SessionSecret string `koanf:"session_secret"`

	SessionCookie  string        `koanf:"session_cookie"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	CookieSecure   bool          `koanf:"cookie_secure"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// CacheConfig holds in-process cache settings (reference-data memo).
type CacheConfig struct {
	ReferenceTTL time.Duration `koanf:"reference_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
