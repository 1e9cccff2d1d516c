package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/brightpath/authcore/internal/rate"
	"github.com/brightpath/authcore/internal/stores"
	"github.com/brightpath/authcore/kv"
	"github.com/brightpath/authcore/token"
)

// Engine is the facade over the token lifecycle and rate-limit core. Build
// one through [Builder]; after that every method is safe for concurrent use.
// The engine holds no mutable state of its own — all shared truth lives in
// the injected store.
type Engine struct {
	config       Config
	store        kv.Store
	provider     IdentityProvider
	sink         AuditSink
	tokenManager *token.Manager
	rateLimiter  *rate.Limiter
	revocations  *stores.RevocationList
	refreshStore *stores.RefreshStore
}

// Allow reports whether one more operation under key fits a budget of limit
// operations per window. The check is advisory-but-authoritative at call
// time: there is no reservation, so guarded operations re-check on every
// attempt. A store outage denies the operation and returns
// [ErrStoreUnavailable].
func (e *Engine) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	allowed, err := e.rateLimiter.AllowN(ctx, key, limit, window)
	if err != nil {
		return false, e.mapStoreErr(err)
	}
	return allowed, nil
}

// HealthCheck reports whether the shared store answers.
func (e *Engine) HealthCheck(ctx context.Context) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := e.store.Ping(ctx); err != nil {
		return e.mapStoreErr(err)
	}
	return nil
}

// enforceLimit applies the engine-wide budget to a flow key, translating
// limiter errors into the public taxonomy. Fail closed throughout.
func (e *Engine) enforceLimit(ctx context.Context, eventType, flowKey, email string) error {
	err := e.rateLimiter.Enforce(ctx, flowKey)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, rate.ErrRateLimited):
		e.emit(ctx, AuditEvent{
			EventType: eventType,
			Email:     email,
			Error:     "rate limited",
		})
		return ErrRateLimited
	default:
		return e.mapStoreErr(err)
	}
}

// mapStoreErr folds internal store sentinels into the public
// [ErrStoreUnavailable] so raw dependency errors never cross the facade.
func (e *Engine) mapStoreErr(err error) error {
	return joinSentinel(ErrStoreUnavailable, err)
}

func (e *Engine) emit(ctx context.Context, event AuditEvent) {
	if e.sink == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.Metadata = redactMetadata(event.Metadata)
	e.sink.Emit(ctx, event)
}
