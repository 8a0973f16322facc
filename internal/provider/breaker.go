// StudyBites - Preference-Aware Restaurant Discovery
// Copyright 2026 StudyBites contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/studybites/studybites

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/studybites/studybites/internal/cache"
	"github.com/studybites/studybites/internal/logging"
	"github.com/studybites/studybites/internal/metrics"
	"github.com/studybites/studybites/internal/models"
)

const (
	// breakerInterval resets the breaker's counts while closed.
	breakerInterval = time.Minute

	// breakerTimeout is how long the circuit stays open before probing.
	breakerTimeout = 2 * time.Minute
)

// CircuitBreakerClient wraps Client with circuit breaker protection so a slow
// or failing Qloo API cannot pile up blocked validation tasks and request
// handlers.
//
// The breaker uses real time for its interval and timeout calculations, so
// unit tests exercise the wrapped client directly rather than the breaker.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps a Qloo client with a circuit breaker.
// The circuit opens after a 60% failure rate with a minimum of 10 requests,
// waits 2 minutes before probing, and allows 3 requests while half-open.
func NewCircuitBreakerClient(client *Client) *CircuitBreakerClient {
	cbName := "qloo-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).
				Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		// An absent entity is an answer, not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a Qloo API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FetchCandidates retrieves a candidate batch with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchCandidates(ctx context.Context, key cache.Key) ([]models.Candidate, error) {
	return castResult[[]models.Candidate](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchCandidates(ctx, key)
	}))
}

// Lookup resolves an entity ID with circuit breaker protection.
func (cbc *CircuitBreakerClient) Lookup(ctx context.Context, entityID string) ([]models.Restaurant, error) {
	return castResult[[]models.Restaurant](cbc.execute(func() (interface{}, error) {
		return cbc.client.Lookup(ctx, entityID)
	}))
}

// Detail fetches a restaurant document with circuit breaker protection.
// ErrNotFound passes through without counting against the breaker.
func (cbc *CircuitBreakerClient) Detail(ctx context.Context, id string) (json.RawMessage, error) {
	return castResult[json.RawMessage](cbc.execute(func() (interface{}, error) {
		return cbc.client.Detail(ctx, id)
	}))
}
