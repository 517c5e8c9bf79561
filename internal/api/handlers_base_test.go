// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
	"github.com/tomtom215/gamecurator/internal/recommend"
)

// ---- fakes ----

type fakeEngine struct {
	result     *recommend.Result
	err        error
	calls      int
	gotUserID  string
	gotAnswers models.QuizAnswers
}

func (f *fakeEngine) Recommend(_ context.Context, userID string, answers models.QuizAnswers) (*recommend.Result, error) {
	f.calls++
	f.gotUserID = userID
	f.gotAnswers = answers
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSuggestions struct {
	configured  bool
	suggestions *providers.Suggestions
	genres      []providers.FilterItem
	platforms   []providers.FilterItem
	tags        []providers.FilterItem
	err         error
	gotQuery    string
	// block, when non-nil, holds FetchSuggestions until closed or the
	// context is canceled.
	block chan struct{}
}

func (f *fakeSuggestions) Configured() bool { return f.configured }

func (f *fakeSuggestions) FetchSuggestions(ctx context.Context, query string) (*providers.Suggestions, error) {
	f.gotQuery = query
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

func (f *fakeSuggestions) FetchGenres(context.Context) ([]providers.FilterItem, error) {
	return f.genres, f.err
}

func (f *fakeSuggestions) FetchPlatforms(context.Context) ([]providers.FilterItem, error) {
	return f.platforms, f.err
}

func (f *fakeSuggestions) FetchTags(context.Context) ([]providers.FilterItem, error) {
	return f.tags, f.err
}

type fakeSearcher struct {
	candidate *models.Candidate
	err       error
}

func (f *fakeSearcher) SearchGame(context.Context, string) (*models.Candidate, error) {
	return f.candidate, f.err
}

type fakeMedia struct {
	media    *models.MediaInfo
	err      error
	gotAppID string
}

func (f *fakeMedia) FetchAppMedia(_ context.Context, appID string) (*models.MediaInfo, error) {
	f.gotAppID = appID
	if f.err != nil {
		return nil, f.err
	}
	return f.media, nil
}

type fakeUserStore struct {
	favorites []models.Favorite
	history   []models.HistoryEntry
	err       error
	removed   []string
	gotLimit  int
}

func (f *fakeUserStore) AddFavorite(_ context.Context, favorite models.Favorite) error {
	if f.err != nil {
		return f.err
	}
	f.favorites = append(f.favorites, favorite)
	return nil
}

func (f *fakeUserStore) RemoveFavorite(_ context.Context, userID string, source models.GameSource, gameID string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, string(source)+"/"+gameID)
	return nil
}

func (f *fakeUserStore) ListFavorites(context.Context, string) ([]models.Favorite, error) {
	return f.favorites, f.err
}

func (f *fakeUserStore) ListHistory(_ context.Context, _ string, limit int) ([]models.HistoryEntry, error) {
	f.gotLimit = limit
	return f.history, f.err
}

type fakeSteamAuth struct {
	loginURL string
	user     *models.User
	err      error
	gotQuery url.Values
}

func (f *fakeSteamAuth) LoginURL(string) string { return f.loginURL }

func (f *fakeSteamAuth) VerifyCallback(_ context.Context, query url.Values) (*models.User, error) {
	f.gotQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// ---- harness ----

type testDeps struct {
	engine      *fakeEngine
	suggestions *fakeSuggestions
	searcher    *fakeSearcher
	media       *fakeMedia
	store       *fakeUserStore
	steamAuth   *fakeSteamAuth
	sessions    *auth.SessionManager
	// allowedHosts overrides the media proxy allow-list when non-nil.
	allowedHosts []string
	// cdnBaseURL overrides the image variant CDN base when non-empty.
	cdnBaseURL string
}

func defaultTestDeps() *testDeps {
	return &testDeps{
		engine: &fakeEngine{
			result: &recommend.Result{Response: models.RecommendationResponse{
				Recommendations: []models.EnrichedRecommendation{},
			}},
		},
		suggestions: &fakeSuggestions{configured: true, suggestions: &providers.Suggestions{
			Games:      []providers.RawgGame{},
			Developers: []providers.RawgCompany{},
			Publishers: []providers.RawgCompany{},
		}},
		searcher:  &fakeSearcher{},
		media:     &fakeMedia{media: &models.MediaInfo{Screenshots: []string{}}},
		store:     &fakeUserStore{},
		steamAuth: &fakeSteamAuth{loginURL: "https://steamcommunity.com/openid/login?openid.mode=checkid_setup"},
		sessions: auth.NewSessionManager(&config.SecurityConfig{
			SessionSecret:  "0123456789abcdef0123456789abcdef",
			SessionCookie:  "gamecurator_session",
			SessionTimeout: time.Hour,
		}),
	}
}

// newTestRouter builds the full Chi handler tree around the fakes so tests
// exercise routing, URL params, and session middleware together.
func newTestRouter(t *testing.T, deps *testDeps) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.PublicURL = "https://games.example.com"
	cfg.Media.AllowedHosts = []string{"cdn.example.com"}
	if deps.allowedHosts != nil {
		cfg.Media.AllowedHosts = deps.allowedHosts
	}
	cfg.Media.CDNBaseURL = "https://cdn.example.com"
	if deps.cdnBaseURL != "" {
		cfg.Media.CDNBaseURL = deps.cdnBaseURL
	}
	cfg.Security.RateLimitDisabled = true

	// A nil *fakeUserStore must become a nil interface, not a typed nil.
	var store UserStore
	if deps.store != nil {
		store = deps.store
	}

	handler := NewHandler(HandlerConfig{
		Engine:      deps.engine,
		Suggestions: deps.suggestions,
		Searcher:    deps.searcher,
		Media:       deps.media,
		Store:       store,
		Sessions:    deps.sessions,
		OpenID:      deps.steamAuth,
		Config:      cfg,
	})

	return NewRouter(handler, NewChiMiddleware(&cfg.Security), deps.sessions).Setup()
}

// sessionCookie mints a valid session cookie for the test user.
func sessionCookie(t *testing.T, deps *testDeps) *http.Cookie {
	t.Helper()
	cookie, err := deps.sessions.IssueCookie(models.User{
		SteamID:  "76561198012345678",
		Username: "gordon",
	})
	if err != nil {
		t.Fatalf("IssueCookie() error = %v", err)
	}
	return cookie
}

// decodeEnvelope unmarshals the standard response envelope.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var envelope models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not a valid envelope: %v\nbody: %s", err, rec.Body.String())
	}
	return envelope
}

func validAnswersJSON() string {
	return `{
		"preferredGenres": ["RPG", "Strategy"],
		"playstyle": "balanced",
		"timeAvailability": "medium",
		"specificKeywords": "dragons",
		"difficultyPreference": "normal"
	}`
}
