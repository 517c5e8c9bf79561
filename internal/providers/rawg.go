// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/gamecurator/internal/cache"
	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/metrics"
)

// ErrMissingRawgKey is returned when catalog search or reference data is
// requested but no RAWG API key is configured. Typeahead search is disabled
// without it; the recommendation pipeline is unaffected.
var ErrMissingRawgKey = errors.New("rawg: API key is not configured")

// Typeahead sub-query result sizes.
const (
	suggestionGamesLimit      = 5
	suggestionDevelopersLimit = 3
	suggestionPublishersLimit = 3

	// referencePageSize bounds the reference lists (genres, platforms, tags).
	referencePageSize = 50
)

// RawgGame is one catalog game in a suggestion or listing response.
type RawgGame struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Released        string `json:"released,omitempty"`
	BackgroundImage string `json:"background_image,omitempty"`
}

// RawgCompany is a developer or publisher entry.
type RawgCompany struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	GamesCount int    `json:"games_count,omitempty"`
}

// FilterItem is one reference-data entry (genre, platform, or tag).
type FilterItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Suggestions is the joined typeahead result across the three catalog
// categories.
type Suggestions struct {
	Games      []RawgGame    `json:"games"`
	Developers []RawgCompany `json:"developers"`
	Publishers []RawgCompany `json:"publishers"`
}

// listResponse is the RAWG paginated list envelope.
type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// RawgClient talks to the RAWG catalog API. Responses are memoized by full
// request URL in an in-process cache, so identical queries (and in
// particular the reference lists) are fetched at most once per TTL window.
// A duplicate fetch under a concurrent race is benign: entries are written
// at most once per key and both writers store the same value.
//
// Thread Safety: safe for concurrent use.
type RawgClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	memo    *cache.Cache
}

// NewRawgClient creates a RAWG client. memoTTL controls how long memoized
// responses live; zero or negative means they never expire.
func NewRawgClient(cfg *config.RawgConfig, memoTTL time.Duration) *RawgClient {
	return &RawgClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		memo: cache.New(memoTTL),
	}
}

// Configured reports whether an API key is present.
func (c *RawgClient) Configured() bool {
	return c.apiKey != ""
}

// fetch performs one authenticated GET of path with params, memoized by the
// full request URL. The memo stores raw response bytes; callers decode into
// their own types.
func (c *RawgClient) fetch(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingRawgKey
	}

	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	if cached, ok := c.memo.Get(reqURL); ok {
		metrics.ReferenceCacheHits.Inc()
		if body, ok := cached.([]byte); ok {
			return body, nil
		}
	}
	metrics.ReferenceCacheMisses.Inc()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("rawg: failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("rawg", operation, "transport_error", start)
		return nil, fmt.Errorf("rawg: %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProviderRequest("rawg", operation, "transport_error", start)
		return nil, fmt.Errorf("rawg: %s request: unexpected status %d: %s",
			operation, resp.StatusCode, readBodyForError(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveProviderRequest("rawg", operation, "transport_error", start)
		return nil, fmt.Errorf("rawg: failed to read %s response: %w", operation, err)
	}

	metrics.ObserveProviderRequest("rawg", operation, "success", start)
	c.memo.Set(reqURL, body)

	return body, nil
}

// fetchList fetches and decodes one paginated list endpoint.
func fetchList[T any](ctx context.Context, c *RawgClient, operation, path string, params url.Values) ([]T, error) {
	body, err := c.fetch(ctx, operation, path, params)
	if err != nil {
		return nil, err
	}

	var list listResponse[T]
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("rawg: failed to decode %s response: %w", operation, err)
	}

	return list.Results, nil
}

// FetchSuggestions runs the three typeahead sub-queries (games, developers,
// publishers) concurrently and joins the results. Any sub-query error fails
// the whole batch; ctx cancellation (a newer keystroke superseding this one)
// aborts all three.
func (c *RawgClient) FetchSuggestions(ctx context.Context, query string) (*Suggestions, error) {
	if c.apiKey == "" {
		return nil, ErrMissingRawgKey
	}

	suggestions := &Suggestions{
		Games:      []RawgGame{},
		Developers: []RawgCompany{},
		Publishers: []RawgCompany{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		games, err := fetchList[RawgGame](gctx, c, "suggestions_games", "/games",
			searchParams(query, suggestionGamesLimit))
		if err != nil {
			return err
		}
		suggestions.Games = games
		return nil
	})

	g.Go(func() error {
		developers, err := fetchList[RawgCompany](gctx, c, "suggestions_developers", "/developers",
			searchParams(query, suggestionDevelopersLimit))
		if err != nil {
			return err
		}
		suggestions.Developers = developers
		return nil
	})

	g.Go(func() error {
		publishers, err := fetchList[RawgCompany](gctx, c, "suggestions_publishers", "/publishers",
			searchParams(query, suggestionPublishersLimit))
		if err != nil {
			return err
		}
		suggestions.Publishers = publishers
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return suggestions, nil
}

// FetchGenres returns the RAWG genre reference list.
func (c *RawgClient) FetchGenres(ctx context.Context) ([]FilterItem, error) {
	return fetchList[FilterItem](ctx, c, "genres", "/genres", pageParams(referencePageSize))
}

// FetchPlatforms returns the RAWG platform reference list.
func (c *RawgClient) FetchPlatforms(ctx context.Context) ([]FilterItem, error) {
	return fetchList[FilterItem](ctx, c, "platforms", "/platforms", pageParams(referencePageSize))
}

// FetchTags returns the RAWG popular-tag reference list.
func (c *RawgClient) FetchTags(ctx context.Context) ([]FilterItem, error) {
	return fetchList[FilterItem](ctx, c, "tags", "/tags", pageParams(referencePageSize))
}

func searchParams(query string, pageSize int) url.Values {
	params := url.Values{}
	params.Set("search", query)
	params.Set("page_size", strconv.Itoa(pageSize))
	return params
}

func pageParams(pageSize int) url.Values {
	params := url.Values{}
	params.Set("page_size", strconv.Itoa(pageSize))
	return params
}
