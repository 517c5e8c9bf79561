// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package providers contains the HTTP clients for every upstream service
// Gamecurator talks to:
//
//   - Gemini (generative AI): candidate recommendations and single-game search
//   - Steam Store: storefront details and app media (reached through the
//     resilience executor, see internal/resilience)
//   - GG.deals: best-effort deal aggregation, never pipeline-fatal
//   - RAWG: typeahead suggestions and reference data (genres/platforms/tags)
//
// All clients accept context.Context on every call, record per-request
// Prometheus metrics, and are safe for concurrent use.
package providers
