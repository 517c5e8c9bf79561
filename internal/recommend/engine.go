// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package recommend implements the recommendation pipeline: AI candidate
// generation, sequential storefront enrichment, best-effort deal lookup, and
// best-effort result caching.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/providers"
)

// ErrCacheMiss is returned by Store implementations when no record exists
// for a (user, answers hash) pair.
var ErrCacheMiss = errors.New("recommend: cache miss")

// CandidateProvider generates ranked game candidates from quiz answers.
type CandidateProvider interface {
	RequestCandidates(ctx context.Context, answers models.QuizAnswers) ([]models.Candidate, models.QuizAccuracy, error)
}

// StorefrontResolver resolves one app ID against the storefront. It
// distinguishes definitive absence (providers.ErrAppNotFound) from
// transport-level failure.
type StorefrontResolver interface {
	FetchAppDetails(ctx context.Context, appID string) (*models.StorefrontDetails, error)
}

// DealProvider looks up deal pricing. Implementations never fail; they
// degrade to a placeholder.
type DealProvider interface {
	RequestDealInfo(ctx context.Context, appID, title string) models.DealInfo
}

// Store is the persistent recommendation cache and history log. All calls
// are best-effort from the engine's point of view: errors are logged and
// treated as a miss or a dropped write, never surfaced to the caller.
type Store interface {
	LookupRecommendation(ctx context.Context, userID, answersHash string) (*models.RecommendationResponse, error)
	StoreRecommendation(ctx context.Context, record models.CacheRecord) error
	AppendHistory(ctx context.Context, entry models.HistoryEntry) error
}

// Result is one engine run's outcome.
type Result struct {
	Response models.RecommendationResponse
	// Cached reports whether the response was served from the cache
	// without touching any provider.
	Cached bool
}

// Engine orchestrates one recommendation run. Safe for concurrent use; the
// pacing limiter is shared so concurrent runs jointly respect the upstream
// storefront rate limit.
type Engine struct {
	candidates CandidateProvider
	storefront StorefrontResolver
	deals      DealProvider
	store      Store

	limiter    *rate.Limiter
	cdnBaseURL string
}

// NewEngine creates an engine. enrichInterval paces sequential storefront
// calls; the burst of one lets the first call through without waiting.
// store may be nil, which disables caching and history entirely.
func NewEngine(
	candidates CandidateProvider,
	storefront StorefrontResolver,
	deals DealProvider,
	store Store,
	enrichInterval time.Duration,
	cdnBaseURL string,
) *Engine {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if enrichInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(enrichInterval), 1)
	}

	return &Engine{
		candidates: candidates,
		storefront: storefront,
		deals:      deals,
		store:      store,
		limiter:    limiter,
		cdnBaseURL: strings.TrimRight(cdnBaseURL, "/"),
	}
}

// Recommend runs the full pipeline for one quiz submission. userID is empty
// for anonymous callers, who always bypass the cache.
func (e *Engine) Recommend(ctx context.Context, userID string, answers models.QuizAnswers) (*Result, error) {
	answersHash, err := models.AnswersHash(answers)
	if err != nil {
		return nil, fmt.Errorf("recommend: failed to hash answers: %w", err)
	}

	log := logging.Ctx(ctx)

	if userID != "" && e.store != nil {
		cached, err := e.store.LookupRecommendation(ctx, userID, answersHash)
		switch {
		case err == nil:
			metrics.RecommendCacheHits.Inc()
			log.Debug().Str("answers_hash", answersHash).Msg("Recommendation served from cache")
			return &Result{Response: *cached, Cached: true}, nil
		case errors.Is(err, ErrCacheMiss):
			metrics.RecommendCacheMisses.Inc()
		default:
			// Backend failure is a miss, never a pipeline error.
			metrics.RecommendCacheErrors.Inc()
			log.Warn().Err(err).Msg("Recommendation cache lookup failed, treating as miss")
		}
	}

	candidates, accuracy, err := e.candidates.RequestCandidates(ctx, answers)
	if err != nil {
		return nil, err
	}

	enriched, err := e.enrich(ctx, candidates)
	if err != nil {
		return nil, err
	}

	response := models.RecommendationResponse{
		Recommendations: enriched,
		Accuracy:        accuracy,
	}

	if userID != "" && e.store != nil {
		now := time.Now().UTC()

		if err := e.store.StoreRecommendation(ctx, models.CacheRecord{
			UserID:      userID,
			AnswersHash: answersHash,
			Answers:     answers,
			Response:    response,
			CreatedAt:   now,
		}); err != nil {
			metrics.RecommendCacheErrors.Inc()
			log.Warn().Err(err).Msg("Recommendation cache write failed, dropping")
		}

		if err := e.store.AppendHistory(ctx, models.HistoryEntry{
			UserID:      userID,
			AnswersHash: answersHash,
			Answers:     answers,
			Response:    response,
			CreatedAt:   now,
		}); err != nil {
			log.Warn().Err(err).Msg("History append failed, dropping")
		}
	}

	return &Result{Response: response}, nil
}

// enrich resolves candidates in order, dropping any the storefront does not
// know. Output preserves the input ranking among survivors; an empty result
// is valid.
func (e *Engine) enrich(ctx context.Context, candidates []models.Candidate) ([]models.EnrichedRecommendation, error) {
	start := time.Now()
	defer func() {
		metrics.EnrichmentDuration.Observe(time.Since(start).Seconds())
	}()

	log := logging.Ctx(ctx)
	enriched := make([]models.EnrichedRecommendation, 0, len(candidates))

	for _, candidate := range candidates {
		// Pace storefront calls; the limiter's burst of one admits the
		// first candidate without delay.
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		details, err := e.storefront.FetchAppDetails(ctx, candidate.SteamAppID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.EnrichmentCandidates.WithLabelValues("dropped").Inc()
			if errors.Is(err, providers.ErrAppNotFound) {
				log.Debug().
					Str("app_id", candidate.SteamAppID).
					Str("title", candidate.Title).
					Msg("Candidate unknown to storefront, dropping")
			} else {
				log.Warn().Err(err).
					Str("app_id", candidate.SteamAppID).
					Msg("Storefront lookup failed, dropping candidate")
			}
			continue
		}

		// Deal lookup wants the resolved title, so it runs after the
		// storefront call. It never fails.
		deal := e.deals.RequestDealInfo(ctx, candidate.SteamAppID, details.Title)

		metrics.EnrichmentCandidates.WithLabelValues("enriched").Inc()
		enriched = append(enriched, mergeCandidate(candidate, details, deal, e.coverURL(candidate.SteamAppID)))
	}

	return enriched, nil
}

// coverURL builds the deterministic CDN cover path for an app. No network
// call is involved.
func (e *Engine) coverURL(appID string) string {
	return fmt.Sprintf("%s/steam/apps/%s/header.jpg", e.cdnBaseURL, appID)
}

// mergeCandidate joins AI-sourced, storefront-sourced, and deal-sourced
// fields. Storefront values win for title, description, and developer.
func mergeCandidate(c models.Candidate, details *models.StorefrontDetails, deal models.DealInfo, imageURL string) models.EnrichedRecommendation {
	title := details.Title
	if title == "" {
		title = c.Title
	}
	description := details.Description
	if description == "" {
		description = c.Description
	}

	return models.EnrichedRecommendation{
		ID:                 c.ID,
		SteamAppID:         c.SteamAppID,
		Title:              title,
		Description:        description,
		Genres:             c.Genres,
		Tags:               c.Tags,
		MainStoryHours:     c.MainStoryHours,
		CompletionistHours: c.CompletionistHours,
		SuitabilityScore:   c.SuitabilityScore,
		ImageURL:           imageURL,
		Developer:          details.Developer,
		ReasonForPick:      c.ReasonForPick,
		SteamPrice:         details.Price,
		CheapestPrice:      deal.CheapestPrice,
		DealURL:            deal.DealURL,
	}
}
