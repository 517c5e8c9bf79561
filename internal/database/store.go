// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package database provides the BadgerDB-backed persistence layer: the
// recommendation cache, per-user favorites, and the recommendation history
// log. All values are JSON; keys are prefix-partitioned per concern.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/logging"
)

// Key prefixes partitioning the keyspace.
const (
	recommendationKeyPrefix = "rec:"
	favoriteKeyPrefix       = "fav:"
	historyKeyPrefix        = "hist:"
)

// Store wraps one BadgerDB handle shared by all persistence concerns.
//
// Thread Safety: safe for concurrent use; Badger transactions provide
// isolation.
type Store struct {
	db *badger.DB

	// recommendationTTL expires recommendation records at write time.
	// Zero keeps them until overwritten.
	recommendationTTL time.Duration
}

// Open opens (or creates) the database at the configured path. With
// cfg.InMemory set, the store lives entirely in memory; tests use this.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(badgerLogger{}).
		WithInMemory(cfg.InMemory)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open badger at %q: %w", cfg.Path, err)
	}

	return &Store{db: db, recommendationTTL: cfg.RecommendationTTL}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC runs the Badger value-log garbage collector until the context ends.
// Intended to run as a supervised background service.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Rerun while a GC pass actually rewrote a value-log file.
			for {
				err := s.db.RunValueLogGC(0.5)
				if err != nil {
					break
				}
			}
		}
	}
}

// badgerLogger bridges Badger's internal logging onto zerolog. Badger is
// chatty at INFO; its operational detail maps to debug level here.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logging.Error().Msgf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logging.Warn().Msgf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	logging.Debug().Msgf("badger: "+format, args...)
}
