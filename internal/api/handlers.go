// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
	"github.com/tomtom215/gamecurator/internal/recommend"
	"github.com/tomtom215/gamecurator/internal/search"
)

// Recommender runs the full recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, userID string, answers models.QuizAnswers) (*recommend.Result, error)
}

// SuggestionProvider serves typeahead suggestions and reference filter
// lists from the games catalog.
type SuggestionProvider interface {
	Configured() bool
	FetchSuggestions(ctx context.Context, query string) (*providers.Suggestions, error)
	FetchGenres(ctx context.Context) ([]providers.FilterItem, error)
	FetchPlatforms(ctx context.Context) ([]providers.FilterItem, error)
	FetchTags(ctx context.Context) ([]providers.FilterItem, error)
}

// GameSearcher resolves a free-text query to a single game candidate.
type GameSearcher interface {
	SearchGame(ctx context.Context, query string) (*models.Candidate, error)
}

// MediaFetcher resolves trailer and screenshot URLs for one Steam app.
type MediaFetcher interface {
	FetchAppMedia(ctx context.Context, appID string) (*models.MediaInfo, error)
}

// SteamAuthenticator drives the Steam OpenID login flow.
type SteamAuthenticator interface {
	LoginURL(callbackPath string) string
	VerifyCallback(ctx context.Context, query url.Values) (*models.User, error)
}

// UserStore persists per-user favorites and recommendation history.
type UserStore interface {
	AddFavorite(ctx context.Context, favorite models.Favorite) error
	RemoveFavorite(ctx context.Context, userID string, source models.GameSource, gameID string) error
	ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error)
	ListHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error)
}

// Handler holds all HTTP handler dependencies. Store may be nil when the
// database is disabled; identity-backed endpoints then report unavailable.
type Handler struct {
	engine      Recommender
	suggestions SuggestionProvider
	searcher    GameSearcher
	media       MediaFetcher
	store       UserStore

	sessions *auth.SessionManager
	openID   SteamAuthenticator

	searchReg *search.CancellationRegistry

	publicURL    string
	cdnBaseURL   string
	allowedHosts []string
	proxyClient  *http.Client

	startTime time.Time
}

// HandlerConfig bundles the dependencies for NewHandler.
type HandlerConfig struct {
	Engine      Recommender
	Suggestions SuggestionProvider
	Searcher    GameSearcher
	Media       MediaFetcher
	Store       UserStore
	Sessions    *auth.SessionManager
	OpenID      SteamAuthenticator
	Config      *config.Config
}

// NewHandler creates the handler set.
func NewHandler(hc HandlerConfig) *Handler {
	return &Handler{
		engine:       hc.Engine,
		suggestions:  hc.Suggestions,
		searcher:     hc.Searcher,
		media:        hc.Media,
		store:        hc.Store,
		sessions:     hc.Sessions,
		openID:       hc.OpenID,
		searchReg:    search.NewCancellationRegistry(),
		publicURL:    hc.Config.Server.PublicURL,
		cdnBaseURL:   hc.Config.Media.CDNBaseURL,
		allowedHosts: hc.Config.Media.AllowedHosts,
		proxyClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		startTime: time.Now(),
	}
}
