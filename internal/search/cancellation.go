// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package search coordinates typeahead suggestion queries against the
// game catalogue provider. Rapid keystrokes produce overlapping queries
// for the same client; only the latest one should survive, so the
// package keeps a per-key registry of cancellation functions and
// cancels the previous in-flight query whenever a new one begins.
package search

import (
	"context"
	"sync"
)

// pendingQuery is one registered in-flight query. The struct pointer
// doubles as an identity token so done() can tell whether its entry is
// still current or has been superseded by a newer query.
type pendingQuery struct {
	cancel context.CancelFunc
}

// CancellationRegistry tracks the in-flight query per key and cancels
// the previous query when a newer one for the same key begins.
// Keys are typically the client identity (session or remote address),
// so one user's typing never cancels another user's query.
type CancellationRegistry struct {
	mu      sync.Mutex
	pending map[string]*pendingQuery
}

// NewCancellationRegistry creates an empty registry.
func NewCancellationRegistry() *CancellationRegistry {
	return &CancellationRegistry{
		pending: make(map[string]*pendingQuery),
	}
}

// Begin registers a new query for key, cancelling any query previously
// registered under the same key. It returns a context derived from
// parent and a done function the caller must invoke when the query
// finishes, successfully or not.
func (r *CancellationRegistry) Begin(parent context.Context, key string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	entry := &pendingQuery{cancel: cancel}

	r.mu.Lock()
	if prev, ok := r.pending[key]; ok {
		prev.cancel()
	}
	r.pending[key] = entry
	r.mu.Unlock()

	done := func() {
		r.mu.Lock()
		// Only remove the entry if it is still ours; a newer query may
		// have replaced it already.
		if cur, ok := r.pending[key]; ok && cur == entry {
			delete(r.pending, key)
		}
		r.mu.Unlock()
		cancel()
	}

	return ctx, done
}

// CancelAll cancels every in-flight query. Used during shutdown.
func (r *CancellationRegistry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, entry := range r.pending {
		entry.cancel()
		delete(r.pending, key)
	}
}

// Pending returns the number of in-flight queries. Intended for tests
// and stats endpoints.
func (r *CancellationRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
