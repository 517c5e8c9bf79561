// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)

	c.Set("key1", "value1")
	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("Get() after Set() returned ok=false")
	}
	if got != "value1" {
		t.Errorf("Get() = %v, want value1", got)
	}
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)

	if _, ok := c.Get("absent"); ok {
		t.Error("Get() for unknown key returned ok=true")
	}

	stats := c.GetStats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)

	c.SetWithTTL("ephemeral", "data", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("ephemeral"); ok {
		t.Error("Get() returned expired entry")
	}

	stats := c.GetStats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
}

func TestCacheNoExpiry(t *testing.T) {
	t.Parallel()

	// Zero TTL means entries never expire (reference-data memo behavior).
	c := New(0)

	c.Set("genres", []string{"RPG", "Action"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("genres"); !ok {
		t.Error("entry in a no-expiry cache was evicted")
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("doomed", 1)
	c.Delete("doomed")

	if _, ok := c.Get("doomed"); ok {
		t.Error("Get() returned deleted entry")
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if stats := c.GetStats(); stats.TotalKeys != 0 {
		t.Errorf("TotalKeys after Clear() = %d, want 0", stats.TotalKeys)
	}
}

func TestCacheHitRate(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)
	c.Set("key", "value")

	c.Get("key")    // hit
	c.Get("absent") // miss

	if rate := c.HitRate(); rate != 50.0 {
		t.Errorf("HitRate() = %f, want 50.0", rate)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(fmt.Sprintf("key%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			c.Get(fmt.Sprintf("key%d", n))
		}(i)
	}
	wg.Wait()
}
