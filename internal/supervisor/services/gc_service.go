// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package services

import (
	"context"
	"time"
)

// GCRunner runs periodic storage maintenance until the context is canceled.
// Satisfied by database.Store.
type GCRunner interface {
	RunGC(ctx context.Context, interval time.Duration)
}

// DatabaseGCService runs Badger value-log garbage collection under
// supervision. Badger never reclaims value-log space on its own; without
// this loop the on-disk footprint only grows.
type DatabaseGCService struct {
	store    GCRunner
	interval time.Duration
	name     string
}

// NewDatabaseGCService wraps the maintenance loop as a supervised service.
func NewDatabaseGCService(store GCRunner, interval time.Duration) *DatabaseGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &DatabaseGCService{
		store:    store,
		interval: interval,
		name:     "database-gc",
	}
}

// Serve implements suture.Service. RunGC blocks until cancellation, so a
// normal return always carries ctx.Err() and suture will not restart it
// during shutdown.
func (s *DatabaseGCService) Serve(ctx context.Context) error {
	s.store.RunGC(ctx, s.interval)
	return ctx.Err()
}

// String identifies the service in supervision logs.
func (s *DatabaseGCService) String() string {
	return s.name
}
