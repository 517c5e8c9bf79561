// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

// Package resilience implements the multi-strategy transport executor used
// for storefront lookups. The Steam Store API is fronted by a list of relay
// endpoints plus a direct attempt; one logical fetch walks the strategy list
// in order until a definitive answer arrives.
//
// Three outcomes drive the loop and must never be conflated:
//
//   - transport failure: the strategy could not deliver a usable payload
//     (network error, timeout, non-2xx, garbage body). Back off briefly and
//     try the next strategy.
//   - definitive not-found: the upstream answered and said the item does not
//     exist. Stop immediately; asking another relay cannot change the answer.
//   - success: the upstream answered with the item. First success wins and
//     no further strategy runs.
//
// Each strategy carries its own circuit breaker so a dead relay is skipped
// quickly instead of eating its full attempt timeout on every lookup.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/gamecurator/internal/logging"
	"github.com/tomtom215/gamecurator/internal/metrics"
)

// ErrNotFound is the definitive-absence sentinel. Callers drop the item and
// must not retry; it is also returned when every strategy exhausts without a
// definitive answer.
var ErrNotFound = errors.New("resilience: item not found")

// Outcome classifies one strategy attempt's payload.
type Outcome int

// Attempt outcomes, as reported by the caller's Interpreter.
const (
	// OutcomeSuccess: the payload contains the item; stop and return it.
	OutcomeSuccess Outcome = iota
	// OutcomeNotFound: the upstream definitively reported absence; stop.
	OutcomeNotFound
	// OutcomeTransport: the payload is unusable; try the next strategy.
	OutcomeTransport
)

// String returns the metrics label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "transport_error"
	}
}

// Interpreter inspects a 2xx response body and classifies it. On
// OutcomeSuccess the returned value is handed back to the caller unchanged.
type Interpreter func(body []byte) (interface{}, Outcome)

// Strategy is one way of reaching a target URL. A Template is a printf-style
// relay template receiving the escaped target URL; an empty Template means a
// direct request to the target itself.
type Strategy struct {
	Name     string
	Template string
}

// buildURL resolves the strategy against a target URL.
func (s Strategy) buildURL(target string) string {
	if s.Template == "" {
		return target
	}
	return fmt.Sprintf(s.Template, url.QueryEscape(target))
}

// StrategiesFromConfig builds the ordered strategy list from relay templates,
// appending the direct attempt as last resort. Strategy names are derived
// from the relay host so circuit-breaker metrics stay readable; two
// templates on the same host get an index suffix so each keeps its own
// breaker.
func StrategiesFromConfig(relayTemplates []string) []Strategy {
	strategies := make([]Strategy, 0, len(relayTemplates)+1)
	seen := make(map[string]int, len(relayTemplates))
	for _, tmpl := range relayTemplates {
		name := relayName(tmpl)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		strategies = append(strategies, Strategy{
			Name:     name,
			Template: tmpl,
		})
	}
	strategies = append(strategies, Strategy{Name: "direct"})
	return strategies
}

// relayName extracts a short stable name from a relay template URL.
func relayName(tmpl string) string {
	u, err := url.Parse(strings.SplitN(tmpl, "%s", 2)[0])
	if err != nil || u.Host == "" {
		return "relay"
	}
	return u.Host
}

// Executor walks an ordered strategy list for one logical GET. Safe for
// concurrent use; each strategy's circuit breaker is shared across calls.
type Executor struct {
	strategies     []Strategy
	breakers       map[string]*gobreaker.CircuitBreaker[[]byte]
	client         *http.Client
	attemptTimeout time.Duration
	backoff        time.Duration
}

// NewExecutor creates an executor over the given strategies. attemptTimeout
// bounds each single attempt; backoff is the fixed delay inserted after a
// transport failure before the next strategy runs.
func NewExecutor(strategies []Strategy, attemptTimeout, backoff time.Duration) *Executor {
	breakers := make(map[string]*gobreaker.CircuitBreaker[[]byte], len(strategies))
	for _, s := range strategies {
		breakers[s.Name] = newStrategyBreaker(s.Name)
	}

	return &Executor{
		strategies: strategies,
		breakers:   breakers,
		client: &http.Client{
			// Per-attempt deadlines come from the context; the client
			// timeout is a backstop only.
			Timeout: attemptTimeout + 5*time.Second,
		},
		attemptTimeout: attemptTimeout,
		backoff:        backoff,
	}
}

// newStrategyBreaker builds the circuit breaker for one strategy. Relays are
// flaky by nature, so the breaker trips on sustained failure only: at least
// 5 requests with an 80% failure rate, recovering after 30 seconds.
func newStrategyBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)

			logging.Info().
				Str("strategy", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Strategy circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "open"
	}
}

func breakerStateFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Fetch performs one logical GET of target, walking the strategy list until
// a definitive outcome. Returns the interpreter's value on success,
// ErrNotFound on definitive absence or full exhaustion, or the context error
// if the caller's context ends first.
func (e *Executor) Fetch(ctx context.Context, target string, interpret Interpreter) (interface{}, error) {
	log := logging.Ctx(ctx)

	for i, strategy := range e.strategies {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Backoff between attempts, not before the first.
		if i > 0 {
			select {
			case <-time.After(e.backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := e.attempt(ctx, strategy, target)
		if err != nil {
			log.Debug().
				Str("strategy", strategy.Name).
				Err(err).
				Msg("Strategy attempt failed, advancing")
			continue
		}

		result, outcome := interpret(body)
		switch outcome {
		case OutcomeSuccess:
			return result, nil
		case OutcomeNotFound:
			// Definitive negative: no further strategy may run.
			return nil, ErrNotFound
		default:
			log.Debug().
				Str("strategy", strategy.Name).
				Msg("Strategy returned unusable payload, advancing")
		}
	}

	return nil, ErrNotFound
}

// attempt runs a single strategy under its circuit breaker and per-attempt
// timeout, returning the raw 2xx body.
func (e *Executor) attempt(ctx context.Context, strategy Strategy, target string) ([]byte, error) {
	cb, ok := e.breakers[strategy.Name]
	if !ok {
		return nil, fmt.Errorf("resilience: unknown strategy %q", strategy.Name)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	return cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, strategy.buildURL(target), http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read body: %w", err)
		}

		return body, nil
	})
}
