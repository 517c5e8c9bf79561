// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package models

import "time"

// Candidate is an AI-proposed, not-yet-verified game recommendation as
// returned by the generative provider. Candidates that fail storefront
// resolution are dropped during enrichment and never persisted.
type Candidate struct {
	ID                 string   `json:"id" validate:"required"`
	SteamAppID         string   `json:"steamAppId" validate:"required,steamappid"`
	Title              string   `json:"title" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	Genres             []string `json:"genres"`
	Tags               []string `json:"tags"`
	MainStoryHours     float64  `json:"mainStoryTime" validate:"gte=0"`
	CompletionistHours float64  `json:"completionistTime" validate:"gte=0,gtefield=MainStoryHours"`
	SuitabilityScore   int      `json:"suitabilityScore" validate:"gte=0,lte=100"`
	ReasonForPick      string   `json:"reasonForPick" validate:"required"`
}

// StorefrontDetails holds the fields resolved from the Steam Store for a
// single app. Price is a display string ("$19.99" or "Free").
type StorefrontDetails struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Developer   string `json:"developer"`
	Price       string `json:"price"`
}

// DealInfo holds deal-aggregator pricing for one game. It is always
// structurally valid: when the deals provider is unavailable the fields
// carry a slug-derived search link and a "View Deals" label rather than
// verified data.
type DealInfo struct {
	CheapestPrice string `json:"cheapestPrice"`
	DealURL       string `json:"dealUrl"`
}

// MediaInfo holds trailer and screenshot URLs for one app. Screenshots are
// deduplicated by URL and capped at MaxScreenshots.
type MediaInfo struct {
	TrailerURL  string   `json:"microtrailer,omitempty"`
	Screenshots []string `json:"screenshots"`
}

// MaxScreenshots bounds the screenshot list returned by the media endpoint.
const MaxScreenshots = 8

// EnrichedRecommendation is a Candidate merged with verified storefront data
// and best-effort deal data. One exists only for candidates whose storefront
// lookup succeeded.
type EnrichedRecommendation struct {
	ID                 string   `json:"id"`
	SteamAppID         string   `json:"steamAppId"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Genres             []string `json:"genres"`
	Tags               []string `json:"tags"`
	MainStoryHours     float64  `json:"mainStoryTime"`
	CompletionistHours float64  `json:"completionistTime"`
	SuitabilityScore   int      `json:"suitabilityScore"`
	ImageURL           string   `json:"imageUrl"`
	Developer          string   `json:"developer"`
	ReasonForPick      string   `json:"reasonForPick"`
	SteamPrice         string   `json:"steamPrice"`
	CheapestPrice      string   `json:"cheapestPrice"`
	DealURL            string   `json:"dealUrl"`
}

// QuizAccuracy is the provider's overall assessment of how well a result
// set matches the quiz answers.
type QuizAccuracy struct {
	Percentage int    `json:"percentage" validate:"gte=0,lte=100"`
	Reasoning  string `json:"reasoning"`
}

// RecommendationResponse is the unit returned to the caller and stored in
// the recommendation cache. Recommendations preserve the AI provider's
// ranking order; an empty list is a valid response.
type RecommendationResponse struct {
	Recommendations []EnrichedRecommendation `json:"recommendations"`
	Accuracy        QuizAccuracy             `json:"accuracy"`
}

// CacheRecord is a cached recommendation response keyed by
// (user identity, answers hash). Records are upserted, never mutated.
type CacheRecord struct {
	UserID      string                 `json:"userId"`
	AnswersHash string                 `json:"answersHash"`
	Answers     QuizAnswers            `json:"answers"`
	Response    RecommendationResponse `json:"response"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// GameSource identifies which catalog a favorited game came from.
type GameSource string

// Favorite game sources.
const (
	SourceSteam GameSource = "steam"
	SourceRawg  GameSource = "rawg"
)

// Favorite is one game a user has marked as a favorite.
type Favorite struct {
	UserID    string      `json:"userId"`
	GameID    string      `json:"gameId" validate:"required"`
	Source    GameSource  `json:"gameSource" validate:"required,oneof=steam rawg"`
	Title     string      `json:"gameTitle" validate:"required"`
	ImageURL  string      `json:"gameImage,omitempty"`
	GameData  interface{} `json:"gameData,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// HistoryEntry is one append-only record of a served recommendation
// response for a user.
type HistoryEntry struct {
	UserID      string                 `json:"userId"`
	AnswersHash string                 `json:"answersHash"`
	Answers     QuizAnswers            `json:"answers"`
	Response    RecommendationResponse `json:"response"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// User is the authenticated caller identity resolved from the session
// cookie. A nil *User means anonymous.
type User struct {
	SteamID   string `json:"steamId"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
