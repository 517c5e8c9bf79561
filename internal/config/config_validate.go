// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minSessionSecretLength is the minimum length for the HMAC session secret.
const minSessionSecretLength = 32

// Validate checks that configuration is structurally valid.
//
// Missing provider keys are NOT validation errors: they are fatal
// configuration errors surfaced at first use by the owning component
// (spec'd degradation for optional providers, hard failure for Gemini and
// the session secret). Validate only rejects values that can never work.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	if _, err := url.Parse(c.Server.PublicURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_URL: %w", err)
	}
	return nil
}

func (c *Config) validateSteam() error {
	if c.Steam.StoreURL == "" {
		return fmt.Errorf("STEAM_STORE_URL must not be empty")
	}
	for _, relay := range c.Steam.RelayURLs {
		if !strings.Contains(relay, "%s") {
			return fmt.Errorf("relay URL template %q must contain a %%s placeholder", relay)
		}
	}
	if c.Steam.AttemptTimeout <= 0 {
		return fmt.Errorf("steam attempt timeout must be positive, got %s", c.Steam.AttemptTimeout)
	}
	if c.Steam.AttemptBackoff < 0 {
		return fmt.Errorf("steam attempt backoff must not be negative, got %s", c.Steam.AttemptBackoff)
	}
	if c.Steam.EnrichInterval < 0 {
		return fmt.Errorf("steam enrich interval must not be negative, got %s", c.Steam.EnrichInterval)
	}
	return nil
}

func (c *Config) validateMedia() error {
	if len(c.Media.AllowedHosts) == 0 {
		return fmt.Errorf("media allowed_hosts must not be empty; the proxy would reject every request")
	}
	for _, host := range c.Media.AllowedHosts {
		if strings.ContainsAny(host, "/?#") {
			return fmt.Errorf("media allowed host %q must be a bare hostname", host)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	// The secret is optional at startup (anonymous use works without it)
	// but when set it must be strong enough to sign tokens.
	if c.Security.SessionSecret != "" && len(c.Security.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters, got %d",
			minSessionSecretLength, len(c.Security.SessionSecret))
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("rate limit requests must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("rate limit window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "":
	default:
		return fmt.Errorf("invalid log format %q (expected json or console)", c.Logging.Format)
	}
	return nil
}
