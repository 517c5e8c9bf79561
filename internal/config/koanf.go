// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/gamecurator/config.yaml",
	"/etc/gamecurator/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8470,
			Timeout:   30 * time.Second,
			PublicURL: "http://localhost:8470",
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta",
			ResultCount: 6,
		},
		Steam: SteamConfig{
			WebAPIKey: "",
			StoreURL:  "https://store.steampowered.com/api",
			RelayURLs: []string{
				"https://api.allorigins.win/raw?url=%s",
				"https://corsproxy.io/?url=%s",
			},
			AttemptTimeout: 10 * time.Second,
			AttemptBackoff: 500 * time.Millisecond,
			EnrichInterval: 300 * time.Millisecond,
		},
		GGDeals: GGDealsConfig{
			APIKey:  "",
			APIURL:  "https://api.gg.deals/v1",
			SiteURL: "https://gg.deals",
		},
		Rawg: RawgConfig{
			APIKey:  "",
			BaseURL: "https://api.rawg.io/api",
		},
		Media: MediaConfig{
			// Bare host only: cover and image-proxy builders append the
			// /steam/apps/<id>/... path themselves.
			CDNBaseURL: "https://cdn.akamai.steamstatic.com",
			AllowedHosts: []string{
				"cdn.akamai.steamstatic.com",
				"cdn.cloudflare.steamstatic.com",
			},
		},
		Database: DatabaseConfig{
			Path:              "/data/gamecurator",
			InMemory:          false,
			GCInterval:        10 * time.Minute,
			RecommendationTTL: 24 * time.Hour,
		},
		Security: SecurityConfig{
			SessionSecret:     "",
			SessionCookie:     "gamecurator_session",
			SessionTimeout:    24 * time.Hour,
			CookieSecure:      true,
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{},
		},
		Cache: CacheConfig{
			ReferenceTTL: 0, // 0 = never expire; reference data is near-static
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources: defaults, then an
// optional YAML file, then environment variables (highest priority).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// GEMINI_API_KEY -> gemini.api_key, STEAM_RELAY_URLS -> steam.relay_urls
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as comma-separated
// slices when they arrive as strings from environment variables.
var sliceConfigPaths = []string{
	"steam.relay_urls",
	"media.allowed_hosts",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - GEMINI_API_KEY    -> gemini.api_key
//   - SESSION_SECRET    -> security.session_secret
//   - STEAM_RELAY_URLS  -> steam.relay_urls
//   - HTTP_PORT         -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":  "server.host",
		"http_port":  "server.port",
		"public_url": "server.public_url",

		"gemini_api_key":      "gemini.api_key",
		"gemini_model":        "gemini.model",
		"gemini_base_url":     "gemini.base_url",
		"gemini_result_count": "gemini.result_count",

		"steam_api_key":         "steam.web_api_key",
		"steam_store_url":       "steam.store_url",
		"steam_relay_urls":      "steam.relay_urls",
		"steam_attempt_timeout": "steam.attempt_timeout",
		"steam_attempt_backoff": "steam.attempt_backoff",
		"steam_enrich_interval": "steam.enrich_interval",

		"ggdeals_api_key": "ggdeals.api_key",
		"ggdeals_api_url": "ggdeals.api_url",

		"rawg_api_key":  "rawg.api_key",
		"rawg_base_url": "rawg.base_url",

		"media_cdn_base_url":  "media.cdn_base_url",
		"media_allowed_hosts": "media.allowed_hosts",

		"badger_path":               "database.path",
		"badger_in_memory":          "database.in_memory",
		"badger_gc_interval":        "database.gc_interval",
		"badger_recommendation_ttl": "database.recommendation_ttl",

		"session_secret":      "security.session_secret",
		"session_cookie":      "security.session_cookie",
		"session_timeout":     "security.session_timeout",
		"cookie_secure":       "security.cookie_secure",
		"rate_limit_requests": "security.rate_limit_requests",
		"rate_limit_window":   "security.rate_limit_window",
		"rate_limit_disabled": "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		"cache_reference_ttl": "cache.reference_ttl",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown environment variables are ignored rather than polluting
	// the config tree.
	return ""
}
