// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package database

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/gamecurator/internal/models"
)

// favoriteKey builds the key for one favorite. A game is identified by
// (source, game ID) so a Steam app and a RAWG entry with colliding IDs stay
// distinct.
func favoriteKey(userID string, source models.GameSource, gameID string) []byte {
	return []byte(favoriteKeyPrefix + userID + ":" + string(source) + ":" + gameID)
}

// favoriteUserPrefix is the scan prefix covering one user's favorites.
func favoriteUserPrefix(userID string) []byte {
	return []byte(favoriteKeyPrefix + userID + ":")
}

// AddFavorite upserts one favorite. Adding the same game twice is a no-op
// overwrite, not an error.
func (s *Store) AddFavorite(ctx context.Context, favorite models.Favorite) error {
	data, err := json.Marshal(favorite)
	if err != nil {
		return fmt.Errorf("marshal favorite: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(favoriteKey(favorite.UserID, favorite.Source, favorite.GameID), data)
	})
}

// RemoveFavorite deletes one favorite. Removing an absent favorite is not
// an error.
func (s *Store) RemoveFavorite(ctx context.Context, userID string, source models.GameSource, gameID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(favoriteKey(userID, source, gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// IsFavorite reports whether the user has favorited the game.
func (s *Store) IsFavorite(ctx context.Context, userID string, source models.GameSource, gameID string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(favoriteKey(userID, source, gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

// ListFavorites returns one user's favorites, newest first.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]models.Favorite, error) {
	favorites := []models.Favorite{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = favoriteUserPrefix(userID)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var favorite models.Favorite
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &favorite)
			})
			if err != nil {
				return fmt.Errorf("decode favorite: %w", err)
			}
			favorites = append(favorites, favorite)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
	})

	return favorites, nil
}
