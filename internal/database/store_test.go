// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/gamecurator/internal/config"
	"github.com/tomtom215/gamecurator/internal/models"
	"github.com/tomtom215/gamecurator/internal/recommend"
)

// newTestStore opens an in-memory store torn down with the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(&config.DatabaseConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func sampleResponse(id string) models.RecommendationResponse {
	return models.RecommendationResponse{
		Recommendations: []models.EnrichedRecommendation{
			{ID: id, SteamAppID: "620", Title: "Portal 2"},
		},
		Accuracy: models.QuizAccuracy{Percentage: 85, Reasoning: "good"},
	}
}

func TestRecommendationCache_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := models.CacheRecord{
		UserID:      "7656119",
		AnswersHash: "aGFzaA==",
		Response:    sampleResponse("r1"),
		CreatedAt:   time.Now().UTC(),
	}

	if err := store.StoreRecommendation(ctx, record); err != nil {
		t.Fatalf("StoreRecommendation() error = %v", err)
	}

	got, err := store.LookupRecommendation(ctx, "7656119", "aGFzaA==")
	if err != nil {
		t.Fatalf("LookupRecommendation() error = %v", err)
	}
	if got.Recommendations[0].Title != "Portal 2" {
		t.Errorf("cached response = %+v", got)
	}
	if got.Accuracy.Percentage != 85 {
		t.Errorf("Accuracy.Percentage = %d", got.Accuracy.Percentage)
	}
}

func TestRecommendationCache_Miss(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LookupRecommendation(context.Background(), "7656119", "unknown")
	if !errors.Is(err, recommend.ErrCacheMiss) {
		t.Errorf("LookupRecommendation() error = %v, want ErrCacheMiss", err)
	}
}

func TestRecommendationCache_KeysArePartitionedByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := models.CacheRecord{
		UserID:      "user-a",
		AnswersHash: "aGFzaA==",
		Response:    sampleResponse("r1"),
	}
	if err := store.StoreRecommendation(ctx, record); err != nil {
		t.Fatal(err)
	}

	_, err := store.LookupRecommendation(ctx, "user-b", "aGFzaA==")
	if !errors.Is(err, recommend.ErrCacheMiss) {
		t.Errorf("cross-user lookup error = %v, want ErrCacheMiss", err)
	}
}

func TestRecommendationCache_Overwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.CacheRecord{UserID: "u", AnswersHash: "h", Response: sampleResponse("old")}
	second := models.CacheRecord{UserID: "u", AnswersHash: "h", Response: sampleResponse("new")}

	if err := store.StoreRecommendation(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreRecommendation(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := store.LookupRecommendation(ctx, "u", "h")
	if err != nil {
		t.Fatal(err)
	}
	if got.Recommendations[0].ID != "new" {
		t.Errorf("ID = %q, want new", got.Recommendations[0].ID)
	}
}

func TestRecommendationCache_WritesWithConfiguredTTL(t *testing.T) {
	store, err := Open(&config.DatabaseConfig{InMemory: true, RecommendationTTL: time.Hour})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	record := models.CacheRecord{
		UserID:      "7656119",
		AnswersHash: "aGFzaA==",
		Response:    sampleResponse("r1"),
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.StoreRecommendation(context.Background(), record); err != nil {
		t.Fatalf("StoreRecommendation() error = %v", err)
	}

	err = store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recommendationKey("7656119", "aGFzaA=="))
		if err != nil {
			return err
		}
		if item.ExpiresAt() == 0 {
			t.Error("ExpiresAt() = 0, record must carry the configured TTL")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reading stored record: %v", err)
	}
}

func TestRecommendationCache_ZeroTTLKeepsRecords(t *testing.T) {
	store := newTestStore(t)

	record := models.CacheRecord{
		UserID:      "7656119",
		AnswersHash: "aGFzaA==",
		Response:    sampleResponse("r1"),
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.StoreRecommendation(context.Background(), record); err != nil {
		t.Fatalf("StoreRecommendation() error = %v", err)
	}

	err := store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recommendationKey("7656119", "aGFzaA=="))
		if err != nil {
			return err
		}
		if item.ExpiresAt() != 0 {
			t.Errorf("ExpiresAt() = %d, zero TTL must not expire records", item.ExpiresAt())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("reading stored record: %v", err)
	}
}

func TestFavorites_AddListRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	favorites := []models.Favorite{
		{UserID: "u", GameID: "620", Source: models.SourceSteam, Title: "Portal 2", CreatedAt: base},
		{UserID: "u", GameID: "3498", Source: models.SourceRawg, Title: "GTA V", CreatedAt: base.Add(time.Second)},
	}
	for _, f := range favorites {
		if err := store.AddFavorite(ctx, f); err != nil {
			t.Fatalf("AddFavorite() error = %v", err)
		}
	}

	list, err := store.ListFavorites(ctx, "u")
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].GameID != "3498" {
		t.Errorf("list[0].GameID = %q, want newest first", list[0].GameID)
	}

	found, err := store.IsFavorite(ctx, "u", models.SourceSteam, "620")
	if err != nil || !found {
		t.Errorf("IsFavorite() = %v, %v, want true, nil", found, err)
	}

	if err := store.RemoveFavorite(ctx, "u", models.SourceSteam, "620"); err != nil {
		t.Fatalf("RemoveFavorite() error = %v", err)
	}

	found, err = store.IsFavorite(ctx, "u", models.SourceSteam, "620")
	if err != nil || found {
		t.Errorf("IsFavorite() after remove = %v, %v, want false, nil", found, err)
	}
}

func TestFavorites_SourceKeepsIDsDistinct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AddFavorite(ctx, models.Favorite{
		UserID: "u", GameID: "620", Source: models.SourceSteam, Title: "Portal 2",
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.AddFavorite(ctx, models.Favorite{
		UserID: "u", GameID: "620", Source: models.SourceRawg, Title: "Some RAWG Game",
	}); err != nil {
		t.Fatal(err)
	}

	list, err := store.ListFavorites(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2 (sources must not collide)", len(list))
	}
}

func TestFavorites_RemoveAbsentIsNoop(t *testing.T) {
	store := newTestStore(t)

	if err := store.RemoveFavorite(context.Background(), "u", models.SourceSteam, "999"); err != nil {
		t.Errorf("RemoveFavorite() on absent favorite error = %v, want nil", err)
	}
}

func TestFavorites_DuplicateAddIsUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	f := models.Favorite{UserID: "u", GameID: "620", Source: models.SourceSteam, Title: "Portal 2"}
	if err := store.AddFavorite(ctx, f); err != nil {
		t.Fatal(err)
	}
	f.Title = "Portal 2 (updated)"
	if err := store.AddFavorite(ctx, f); err != nil {
		t.Fatalf("duplicate AddFavorite() error = %v", err)
	}

	list, err := store.ListFavorites(ctx, "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Title != "Portal 2 (updated)" {
		t.Errorf("list = %+v, want single upserted entry", list)
	}
}

func TestHistory_AppendAndListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		entry := models.HistoryEntry{
			UserID:      "u",
			AnswersHash: "h" + string(rune('0'+i)),
			Response:    sampleResponse("r"),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := store.AppendHistory(ctx, entry); err != nil {
			t.Fatalf("AppendHistory() error = %v", err)
		}
	}

	entries, err := store.ListHistory(ctx, "u", 0)
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("len(entries) = %d, want 5", len(entries))
	}
	for i := 0; i < len(entries)-1; i++ {
		if entries[i].CreatedAt.Before(entries[i+1].CreatedAt) {
			t.Errorf("entries not newest-first at index %d", i)
		}
	}
}

func TestHistory_Limit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		if err := store.AppendHistory(ctx, models.HistoryEntry{
			UserID:      "u",
			AnswersHash: "h",
			CreatedAt:   base.Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.ListHistory(ctx, "u", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("len(entries) = %d, want 3", len(entries))
	}
}

func TestHistory_UserIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.AppendHistory(ctx, models.HistoryEntry{
		UserID: "a", AnswersHash: "h", CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.ListHistory(ctx, "b", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0 for other user", len(entries))
	}
}

func TestStore_OnDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(&config.DatabaseConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	record := models.CacheRecord{UserID: "u", AnswersHash: "h", Response: sampleResponse("r")}
	if err := store.StoreRecommendation(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(&config.DatabaseConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LookupRecommendation(context.Background(), "u", "h")
	if err != nil {
		t.Fatalf("LookupRecommendation() after reopen error = %v", err)
	}
	if got.Recommendations[0].ID != "r" {
		t.Errorf("got = %+v", got)
	}
}
