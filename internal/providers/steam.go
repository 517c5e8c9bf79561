// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/resilience"
)

// ErrAppNotFound is the definitive-absence sentinel for storefront lookups.
// The candidate carrying the app ID is dropped, never retried.
var ErrAppNotFound = errors.New("steam: app not found")

// StoreClient resolves Steam app IDs against the storefront appdetails API.
// Detail lookups go through the resilience executor (relays first, direct
// last); media lookups are single-attempt because a failure only degrades
// the media feature, it never drops a candidate.
//
// Thread Safety: safe for concurrent use.
type StoreClient struct {
	exec     *resilience.Executor
	storeURL string
	client   *http.Client
}

// NewStoreClient creates a storefront client from configuration.
func NewStoreClient(cfg *config.SteamConfig) *StoreClient {
	strategies := resilience.StrategiesFromConfig(cfg.RelayURLs)

	return &StoreClient{
		exec:     resilience.NewExecutor(strategies, cfg.AttemptTimeout, cfg.AttemptBackoff),
		storeURL: strings.TrimRight(cfg.StoreURL, "/"),
		client: &http.Client{
			Timeout: cfg.AttemptTimeout,
		},
	}
}

// appDetailsURL builds the appdetails target URL for one app.
func (c *StoreClient) appDetailsURL(appID string) string {
	return fmt.Sprintf("%s/api/appdetails?appids=%s&cc=us&l=en", c.storeURL, appID)
}

// appDetailsEntry is one entry of the appdetails envelope, which is keyed by
// the requested app ID: {"620": {"success": true, "data": {...}}}.
type appDetailsEntry struct {
	Success bool            `json:"success"`
	Data    *appDetailsData `json:"data"`
}

type appDetailsData struct {
	Name             string          `json:"name"`
	ShortDescription string          `json:"short_description"`
	Developers       []string        `json:"developers"`
	IsFree           bool            `json:"is_free"`
	PriceOverview    *priceOverview  `json:"price_overview"`
	Movies           []appMovie      `json:"movies"`
	Screenshots      []appScreenshot `json:"screenshots"`
}

type priceOverview struct {
	FinalFormatted string `json:"final_formatted"`
}

type appMovie struct {
	Webm movieVariants `json:"webm"`
	MP4  movieVariants `json:"mp4"`
}

// movieVariants holds the resolution variants of one trailer encoding. The
// storefront names the low-resolution variant "480".
type movieVariants struct {
	Max string `json:"max"`
	Low string `json:"480"`
}

type appScreenshot struct {
	PathFull string `json:"path_full"`
}

// interpretAppDetails classifies one appdetails payload for appID.
// A parseable envelope whose entry reports success=false is a definitive
// not-found; anything unparseable is a transport-level failure (a relay
// returning an error page, truncated JSON, and so on).
func interpretAppDetails(appID string) resilience.Interpreter {
	return func(body []byte) (interface{}, resilience.Outcome) {
		var envelope map[string]appDetailsEntry
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, resilience.OutcomeTransport
		}

		entry, ok := envelope[appID]
		if !ok {
			return nil, resilience.OutcomeTransport
		}
		if !entry.Success || entry.Data == nil {
			return nil, resilience.OutcomeNotFound
		}

		return entry.Data, resilience.OutcomeSuccess
	}
}

// FetchAppDetails resolves title, description, developer, and display price
// for one app. Returns ErrAppNotFound when the storefront definitively does
// not know the app, or when every transport strategy exhausts.
func (c *StoreClient) FetchAppDetails(ctx context.Context, appID string) (*models.StorefrontDetails, error) {
	start := time.Now()

	result, err := c.exec.Fetch(ctx, c.appDetailsURL(appID), interpretAppDetails(appID))
	if err != nil {
		if errors.Is(err, resilience.ErrNotFound) {
			metrics.ObserveProviderRequest("steam_store", "appdetails", "not_found", start)
			return nil, ErrAppNotFound
		}
		metrics.ObserveProviderRequest("steam_store", "appdetails", "transport_error", start)
		return nil, fmt.Errorf("steam: appdetails fetch for %s: %w", appID, err)
	}

	data, ok := result.(*appDetailsData)
	if !ok {
		return nil, fmt.Errorf("steam: unexpected result type %T", result)
	}

	metrics.ObserveProviderRequest("steam_store", "appdetails", "success", start)

	return &models.StorefrontDetails{
		Title:       data.Name,
		Description: data.ShortDescription,
		Developer:   firstOrEmpty(data.Developers),
		Price:       displayPrice(data),
	}, nil
}

// FetchAppMedia resolves the trailer and screenshot URLs for one app with a
// single direct attempt. Trailer preference order: webm max, webm 480,
// mp4 max, mp4 480. Screenshots are deduplicated by URL and capped at
// models.MaxScreenshots.
func (c *StoreClient) FetchAppMedia(ctx context.Context, appID string) (*models.MediaInfo, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.appDetailsURL(appID), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("steam: failed to create media request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("steam_store", "media", "transport_error", start)
		return nil, fmt.Errorf("steam: media request for %s failed: %w", appID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProviderRequest("steam_store", "media", "transport_error", start)
		return nil, fmt.Errorf("steam: media request for %s: unexpected status %d", appID, resp.StatusCode)
	}

	var envelope map[string]appDetailsEntry
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		metrics.ObserveProviderRequest("steam_store", "media", "parse_error", start)
		return nil, fmt.Errorf("steam: failed to decode media response: %w", err)
	}

	entry, ok := envelope[appID]
	if !ok || !entry.Success || entry.Data == nil {
		metrics.ObserveProviderRequest("steam_store", "media", "not_found", start)
		return nil, ErrAppNotFound
	}

	metrics.ObserveProviderRequest("steam_store", "media", "success", start)

	return &models.MediaInfo{
		TrailerURL:  pickTrailer(entry.Data.Movies),
		Screenshots: collectScreenshots(entry.Data.Screenshots),
	}, nil
}

// pickTrailer selects the preferred trailer URL from the first movie.
func pickTrailer(movies []appMovie) string {
	if len(movies) == 0 {
		return ""
	}

	m := movies[0]
	for _, candidate := range []string{m.Webm.Max, m.Webm.Low, m.MP4.Max, m.MP4.Low} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

// collectScreenshots deduplicates screenshot URLs preserving order, capped
// at models.MaxScreenshots. Always returns a non-nil slice so the JSON
// response carries [] rather than null.
func collectScreenshots(shots []appScreenshot) []string {
	urls := make([]string, 0, models.MaxScreenshots)
	seen := make(map[string]struct{}, len(shots))

	for _, s := range shots {
		if s.PathFull == "" {
			continue
		}
		if _, dup := seen[s.PathFull]; dup {
			continue
		}
		seen[s.PathFull] = struct{}{}
		urls = append(urls, s.PathFull)
		if len(urls) == models.MaxScreenshots {
			break
		}
	}

	return urls
}

// displayPrice derives the display price string: "Free" for free apps,
// the storefront-formatted price when present, "N/A" otherwise (typically
// unreleased or delisted apps).
func displayPrice(data *appDetailsData) string {
	if data.IsFree {
		return "Free"
	}
	if data.PriceOverview != nil && data.PriceOverview.FinalFormatted != "" {
		return data.PriceOverview.FinalFormatted
	}
	return "N/A"
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
