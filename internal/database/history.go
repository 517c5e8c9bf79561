// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/models"
)

// historyKey builds an append-only key ordered by creation time. The
// nanosecond timestamp is zero-padded so lexicographic key order equals
// chronological order; the answers hash suffix keeps two entries written in
// the same nanosecond distinct.
func historyKey(entry models.HistoryEntry) []byte {
	ts := strconv.FormatInt(entry.CreatedAt.UnixNano(), 10)
	for len(ts) < 20 {
		ts = "0" + ts
	}
	return []byte(historyKeyPrefix + entry.UserID + ":" + ts + ":" + entry.AnswersHash)
}

// historyUserPrefix is the scan prefix covering one user's history.
func historyUserPrefix(userID string) []byte {
	return []byte(historyKeyPrefix + userID + ":")
}

// AppendHistory writes one history entry. History is append-only; entries
// are never updated.
func (s *Store) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(historyKey(entry), data)
	})
}

// ListHistory returns one user's history entries, newest first, capped at
// limit (0 means unlimited).
func (s *Store) ListHistory(ctx context.Context, userID string, limit int) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := historyUserPrefix(userID)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// A reverse iteration seeks to the last possible key under the
		// prefix; 0xff sorts after every timestamp digit.
		seek := append(append([]byte{}, prefix...), 0xff)

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(entries) == limit {
				break
			}

			var entry models.HistoryEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return fmt.Errorf("decode history entry: %w", err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
