// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/craftledger/internal/config"
	"github.com/tomtom215/craftledger/internal/logging"
	"github.com/tomtom215/craftledger/internal/metrics"
	"github.com/tomtom215/craftledger/internal/models"
)

// BreakerClient wraps Client with a circuit breaker so a dead upstream
// fails jobs fast instead of grinding every request through the full
// retry budget.
//
// The breaker uses real time for its interval and timeout calculations.
// Tests should fake the underlying CatalogClient, not the breaker.
type BreakerClient struct {
	client CatalogClient
	cb     *gobreaker.CircuitBreaker[any]
	name   string
}

// NewBreakerClient creates the production upstream client behind a
// circuit breaker. Opens after a 60% failure rate over at least 10
// requests; waits 2 minutes before probing half-open.
func NewBreakerClient(cfg *config.UpstreamConfig) *BreakerClient {
	return wrapWithBreaker(NewClient(cfg), "upstream-api")
}

func wrapWithBreaker(client CatalogClient, name string) *BreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).Msg("Opening upstream circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Upstream circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerClient{client: client, cb: cb, name: name}
}

// execute runs one upstream call through the breaker and keeps the
// request metrics current. An open breaker surfaces as ErrUnavailable so
// callers branch on the same taxonomy either way.
func (b *BreakerClient) execute(fn func() (any, error)) (any, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).
			Set(float64(b.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result back to its concrete type.
func castResult[T any](result any, err error) (T, error) {
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

func (b *BreakerClient) Ping(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.client.Ping(ctx)
	})
	return err
}

func (b *BreakerClient) Professions(ctx context.Context) ([]Profession, error) {
	return castResult[[]Profession](b.execute(func() (any, error) {
		return b.client.Professions(ctx)
	}))
}

func (b *BreakerClient) TierRecipes(ctx context.Context, profession Profession, tier Tier) ([]models.MasterCacheEntry, error) {
	return castResult[[]models.MasterCacheEntry](b.execute(func() (any, error) {
		return b.client.TierRecipes(ctx, profession, tier)
	}))
}

func (b *BreakerClient) QuestAreas(ctx context.Context) ([]QuestArea, error) {
	return castResult[[]QuestArea](b.execute(func() (any, error) {
		return b.client.QuestAreas(ctx)
	}))
}

func (b *BreakerClient) AreaQuests(ctx context.Context, area QuestArea) ([]models.MasterCacheEntry, error) {
	return castResult[[]models.MasterCacheEntry](b.execute(func() (any, error) {
		return b.client.AreaQuests(ctx, area)
	}))
}

func (b *BreakerClient) Characters(ctx context.Context, userID string) ([]Character, error) {
	return castResult[[]Character](b.execute(func() (any, error) {
		return b.client.Characters(ctx, userID)
	}))
}

func (b *BreakerClient) CharacterProfessions(ctx context.Context, userID string, characterID int64) ([]CharacterProfession, error) {
	return castResult[[]CharacterProfession](b.execute(func() (any, error) {
		return b.client.CharacterProfessions(ctx, userID, characterID)
	}))
}

func (b *BreakerClient) CompletedQuests(ctx context.Context, userID string, characterID int64) ([]int64, error) {
	return castResult[[]int64](b.execute(func() (any, error) {
		return b.client.CompletedQuests(ctx, userID, characterID)
	}))
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
