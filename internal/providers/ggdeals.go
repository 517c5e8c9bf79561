// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/models"
)

// GGDealsClient looks up aggregated deal prices for Steam apps. Deal data is
// cosmetic: every failure mode (missing key, network error, malformed
// response, app unknown to the aggregator) degrades to a slug-derived search
// link instead of propagating an error, so a deals outage can never fail the
// recommendation pipeline.
//
// The fallback link is a guess built from the title; nothing verifies that
// the slug matches a real listing.
//
// Thread Safety: safe for concurrent use.
type GGDealsClient struct {
	apiKey  string
	apiURL  string
	siteURL string
	client  *http.Client
}

// NewGGDealsClient creates a deals client from configuration.
func NewGGDealsClient(cfg *config.GGDealsConfig) *GGDealsClient {
	return &GGDealsClient{
		apiKey:  cfg.APIKey,
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		siteURL: strings.TrimRight(cfg.SiteURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// dealsEnvelope is the by-steam-app-id response shape, keyed by app ID.
type dealsEnvelope struct {
	Success bool                  `json:"success"`
	Data    map[string]*dealEntry `json:"data"`
}

type dealEntry struct {
	URL    string     `json:"url"`
	Prices dealPrices `json:"prices"`
}

type dealPrices struct {
	CurrentRetail   string `json:"currentRetail"`
	CurrentKeyshops string `json:"currentKeyshops"`
}

// RequestDealInfo returns deal pricing for one app. It never fails: any
// error is logged and replaced by the placeholder built from the title.
func (c *GGDealsClient) RequestDealInfo(ctx context.Context, appID, title string) models.DealInfo {
	placeholder := c.placeholderDeal(title)

	if c.apiKey == "" {
		return placeholder
	}

	start := time.Now()

	reqURL := fmt.Sprintf("%s/prices/by-steam-app-id/?ids=%s&key=%s",
		c.apiURL, url.QueryEscape(appID), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return placeholder
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("ggdeals", "prices", "degraded", start)
		logging.Ctx(ctx).Debug().Err(err).Str("app_id", appID).Msg("Deal lookup failed, using placeholder")
		return placeholder
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProviderRequest("ggdeals", "prices", "degraded", start)
		logging.Ctx(ctx).Debug().Int("status", resp.StatusCode).Str("app_id", appID).Msg("Deal lookup failed, using placeholder")
		return placeholder
	}

	var envelope dealsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.ObserveProviderRequest("ggdeals", "prices", "degraded", start)
		logging.Ctx(ctx).Debug().Err(err).Str("app_id", appID).Msg("Deal response unparseable, using placeholder")
		return placeholder
	}

	entry := envelope.Data[appID]
	if !envelope.Success || entry == nil {
		metrics.ObserveProviderRequest("ggdeals", "prices", "not_found", start)
		return placeholder
	}

	cheapest := entry.Prices.CurrentRetail
	if cheapest == "" {
		cheapest = entry.Prices.CurrentKeyshops
	}
	if cheapest == "" || entry.URL == "" {
		metrics.ObserveProviderRequest("ggdeals", "prices", "degraded", start)
		return placeholder
	}

	metrics.ObserveProviderRequest("ggdeals", "prices", "success", start)

	return models.DealInfo{
		CheapestPrice: cheapest,
		DealURL:       c.siteURL + entry.URL,
	}
}

// placeholderDeal builds the structurally valid fallback: a search link
// derived from the title slug and a generic label.
func (c *GGDealsClient) placeholderDeal(title string) models.DealInfo {
	return models.DealInfo{
		CheapestPrice: "View Deals",
		DealURL:       fmt.Sprintf("%s/games/?title=%s", c.siteURL, Slugify(title)),
	}
}

// Slugify lowercases a title and collapses every non-alphanumeric run into a
// single hyphen, producing a URL-safe slug ("Half-Life 2" -> "half-life-2").
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
