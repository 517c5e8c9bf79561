// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package main is the entry point for the Gamecurator server application.
//
// Gamecurator is a self-hosted game recommendation service. It turns a short
// quiz into a ranked list of Steam games by asking a Gemini model for
// candidates, resolving each candidate against the Steam storefront, and
// enriching the results with historical price data from GG.deals.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Open BadgerDB for recommendation caching, favorites, and history
//  3. Providers: Gemini, Steam storefront, GG.deals, and RAWG clients
//  4. Recommendation engine: candidate generation, resolution, and enrichment
//  5. Authentication: Steam OpenID login with JWT session cookies
//  6. HTTP Server: REST API under /api/v1 plus Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (GAMECURATOR_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// Only GEMINI_API_KEY is required to serve recommendations. Steam login,
// RAWG-backed search suggestions, and GG.deals price history each activate
// when their key is configured and degrade to 503 responses when it is not.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Stops the BadgerDB garbage collector and closes the store
//
// # Example Usage
//
// Minimal setup (recommendations only):
//
//	export GAMECURATOR_GEMINI_API_KEY=your-gemini-key
//	./gamecurator
//
// With Steam login and search suggestions:
//
//	export GAMECURATOR_GEMINI_API_KEY=your-gemini-key
//	export GAMECURATOR_STEAM_WEB_API_KEY=your-steam-key
//	export GAMECURATOR_RAWG_API_KEY=your-rawg-key
//	export GAMECURATOR_SERVER_PUBLIC_URL=https://games.example.com
//	export GAMECURATOR_SECURITY_SESSION_SECRET=$(openssl rand -hex 32)
//	./gamecurator
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/gamecurator/internal/api"
	"github.com/tomtom215/gamecurator/internal/auth"
	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/database"
	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/providers"
	"github.com/tomtom215/gamecurator/internal/recommend"
	"github.com/tomtom215/gamecurator/internal/supervisor"
	"github.com/tomtom215/gamecurator/internal/supervisor/services"
)

const httpShutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === CONFIGURATION ===

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Bool("gemini_configured", cfg.Gemini.APIKey != "").
		Bool("steam_login_configured", cfg.Steam.WebAPIKey != "").
		Bool("rawg_configured", cfg.Rawg.APIKey != "").
		Bool("ggdeals_configured", cfg.GGDeals.APIKey != "").
		Msg("Starting Gamecurator")

	// === DATABASE ===

	store, err := database.Open(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("Failed to open database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close database")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Bool("in_memory", cfg.Database.InMemory).Msg("Database opened")

	// === PROVIDERS ===

	gemini := providers.NewGeminiClient(&cfg.Gemini)
	steamStore := providers.NewStoreClient(&cfg.Steam)
	ggdeals := providers.NewGGDealsClient(&cfg.GGDeals)
	rawg := providers.NewRawgClient(&cfg.Rawg, cfg.Cache.ReferenceTTL)

	engine := recommend.NewEngine(gemini, steamStore, ggdeals, store,
		cfg.Steam.EnrichInterval, cfg.Media.CDNBaseURL)

	// === AUTHENTICATION ===

	sessions := auth.NewSessionManager(&cfg.Security)
	openID := auth.NewSteamOpenID(cfg.Server.PublicURL, cfg.Steam.WebAPIKey)

	// === HTTP SERVER ===

	handler := api.NewHandler(api.HandlerConfig{
		Engine:      engine,
		Suggestions: rawg,
		Searcher:    gemini,
		Media:       steamStore,
		Store:       store,
		Sessions:    sessions,
		OpenID:      openID,
		Config:      cfg,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(&cfg.Security), sessions)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddStorageService(services.NewDatabaseGCService(store, cfg.Database.GCInterval))
	logging.Info().Dur("interval", cfg.Database.GCInterval).Msg("Database GC service added")

	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
