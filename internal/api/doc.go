// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package api provides the HTTP surface of the service: a Chi router, the
// standardized JSON response envelope, and handlers for recommendations,
// search, filters, media proxying, Steam login, favorites, and history.
//
// All endpoints respond with models.APIResponse. Handlers never panic on
// bad input; validation failures and missing upstream credentials map to
// stable machine-readable error codes.
package api
