// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/recommend"
)

// recommendationKey builds the cache key for one (user, answers hash) pair.
func recommendationKey(userID, answersHash string) []byte {
	return []byte(recommendationKeyPrefix + userID + ":" + answersHash)
}

// LookupRecommendation returns the cached response for a (user, answers
// hash) pair, or recommend.ErrCacheMiss when none exists.
func (s *Store) LookupRecommendation(ctx context.Context, userID, answersHash string) (*models.RecommendationResponse, error) {
	var record models.CacheRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recommendationKey(userID, answersHash))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return recommend.ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("get recommendation: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return nil, err
	}

	return &record.Response, nil
}

// StoreRecommendation upserts one cache record. Records are never mutated
// in place; a newer run for the same key simply overwrites. Records carry
// the configured TTL so stale recommendations age out without a sweeper.
func (s *Store) StoreRecommendation(ctx context.Context, record models.CacheRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal recommendation record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(recommendationKey(record.UserID, record.AnswersHash), data)
		if s.recommendationTTL > 0 {
			entry = entry.WithTTL(s.recommendationTTL)
		}
		return txn.SetEntry(entry)
	})
}
