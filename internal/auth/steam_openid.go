// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/models"
)

// steamOpenIDURL is Steam's OpenID 2.0 provider endpoint.
const steamOpenIDURL = "https://steamcommunity.com/openid/login"

// steamPlayerSummaryURL is the Steam Web API profile lookup endpoint.
const steamPlayerSummaryURL = "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2/"

// ErrInvalidAssertion is returned when Steam refuses to confirm the OpenID
// assertion, which indicates a forged or replayed callback.
var ErrInvalidAssertion = errors.New("auth: invalid Steam OpenID assertion")

// claimedIDPattern extracts the numeric Steam ID from a claimed_id such as
// https://steamcommunity.com/openid/id/76561198000000000.
var claimedIDPattern = regexp.MustCompile(`/(\d+)$`)

// SteamOpenID drives the Steam OpenID 2.0 login flow: building the redirect
// to Steam, re-verifying the signed assertion on callback, and resolving the
// player's public profile.
//
// Thread Safety: safe for concurrent use.
type SteamOpenID struct {
	publicURL  string
	webAPIKey  string
	openIDURL  string
	summaryURL string
	client     *http.Client
}

// NewSteamOpenID creates the login flow helper. publicURL is the externally
// reachable base URL used for the OpenID realm and return_to address.
// webAPIKey is optional; without it usernames fall back to a derived form.
func NewSteamOpenID(publicURL, webAPIKey string) *SteamOpenID {
	return &SteamOpenID{
		publicURL:  strings.TrimRight(publicURL, "/"),
		webAPIKey:  webAPIKey,
		openIDURL:  steamOpenIDURL,
		summaryURL: steamPlayerSummaryURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// LoginURL builds the Steam OpenID redirect target. Steam authenticates the
// user and redirects back to the callback path.
func (s *SteamOpenID) LoginURL(callbackPath string) string {
	returnTo := s.publicURL + callbackPath

	params := url.Values{}
	params.Set("openid.ns", "http://specs.openid.net/auth/2.0")
	params.Set("openid.mode", "checkid_setup")
	params.Set("openid.return_to", returnTo)
	params.Set("openid.realm", s.publicURL)
	params.Set("openid.identity", "http://specs.openid.net/auth/2.0/identifier_select")
	params.Set("openid.claimed_id", "http://specs.openid.net/auth/2.0/identifier_select")

	return s.openIDURL + "?" + params.Encode()
}

// VerifyCallback re-validates the OpenID assertion with Steam
// (check_authentication mode) and resolves the player's public profile.
// Returns ErrInvalidAssertion when Steam does not confirm the assertion.
func (s *SteamOpenID) VerifyCallback(ctx context.Context, query url.Values) (*models.User, error) {
	steamID, err := s.checkAuthentication(ctx, query)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		SteamID:  steamID,
		Username: fallbackUsername(steamID),
	}

	// Profile lookup is best-effort; the derived username stands in when
	// the key is absent or the Web API misbehaves.
	if s.webAPIKey != "" {
		if username, avatarURL, err := s.fetchPlayerSummary(ctx, steamID); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("steam_id", steamID).Msg("Player summary lookup failed, using derived username")
		} else if username != "" {
			user.Username = username
			user.AvatarURL = avatarURL
		}
	}

	return user, nil
}

// checkAuthentication posts the callback parameters back to Steam with mode
// check_authentication and extracts the Steam ID from the claimed_id.
func (s *SteamOpenID) checkAuthentication(ctx context.Context, query url.Values) (string, error) {
	verifyParams := url.Values{}
	for key, values := range query {
		for _, v := range values {
			verifyParams.Add(key, v)
		}
	}
	verifyParams.Set("openid.mode", "check_authentication")

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.openIDURL,
		strings.NewReader(verifyParams.Encode()))
	if err != nil {
		return "", fmt.Errorf("auth: failed to create verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("steam_web", "check_authentication", "transport_error", start)
		return "", fmt.Errorf("auth: OpenID verification request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		metrics.ObserveProviderRequest("steam_web", "check_authentication", "transport_error", start)
		return "", fmt.Errorf("auth: failed to read verification response: %w", err)
	}

	if !strings.Contains(string(body), "is_valid:true") {
		metrics.ObserveProviderRequest("steam_web", "check_authentication", "not_found", start)
		return "", ErrInvalidAssertion
	}
	metrics.ObserveProviderRequest("steam_web", "check_authentication", "success", start)

	match := claimedIDPattern.FindStringSubmatch(query.Get("openid.claimed_id"))
	if match == nil {
		return "", fmt.Errorf("auth: could not extract Steam ID from claimed_id %q", query.Get("openid.claimed_id"))
	}

	return match[1], nil
}

// playerSummaryResponse is the GetPlayerSummaries envelope.
type playerSummaryResponse struct {
	Response struct {
		Players []struct {
			PersonaName string `json:"personaname"`
			AvatarFull  string `json:"avatarfull"`
		} `json:"players"`
	} `json:"response"`
}

// fetchPlayerSummary resolves display name and avatar for one Steam ID.
func (s *SteamOpenID) fetchPlayerSummary(ctx context.Context, steamID string) (username, avatarURL string, err error) {
	start := time.Now()

	reqURL := fmt.Sprintf("%s?key=%s&steamids=%s", s.summaryURL,
		url.QueryEscape(s.webAPIKey), url.QueryEscape(steamID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return "", "", fmt.Errorf("auth: failed to create summary request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ObserveProviderRequest("steam_web", "player_summary", "transport_error", start)
		return "", "", fmt.Errorf("auth: player summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ObserveProviderRequest("steam_web", "player_summary", "transport_error", start)
		return "", "", fmt.Errorf("auth: player summary request: unexpected status %d", resp.StatusCode)
	}

	var summary playerSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		metrics.ObserveProviderRequest("steam_web", "player_summary", "parse_error", start)
		return "", "", fmt.Errorf("auth: failed to decode player summary: %w", err)
	}

	if len(summary.Response.Players) == 0 {
		metrics.ObserveProviderRequest("steam_web", "player_summary", "not_found", start)
		return "", "", nil
	}

	metrics.ObserveProviderRequest("steam_web", "player_summary", "success", start)
	player := summary.Response.Players[0]
	return player.PersonaName, player.AvatarFull, nil
}

// fallbackUsername derives the stand-in display name from a Steam ID's last
// four digits.
func fallbackUsername(steamID string) string {
	suffix := steamID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return "SteamUser" + suffix
}
