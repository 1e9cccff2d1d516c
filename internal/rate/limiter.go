package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightpath/authcore/kv"
)

var (
	// ErrRateLimited is returned when a key has exhausted its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable is returned when the shared counter store cannot
	// be reached. Callers must treat this as a deny.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)

// Config holds rate limiter tuning parameters.
type Config struct {
	KeyPrefix   string
	MaxRequests int
	Window      time.Duration
}

// Limiter enforces per-key fixed-window rate limits using shared counters.
// One Limiter serves all keys; state lives entirely in the store, so every
// process sharing the store shares the same budgets.
type Limiter struct {
	store  kv.Store
	config Config
}

// New creates a [Limiter] backed by the given store.
func New(store kv.Store, cfg Config) *Limiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl"
	}
	return &Limiter{
		store:  store,
		config: cfg,
	}
}

// Allow reports whether one more operation under key fits the window budget,
// using the limiter's configured limit and window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, l.config.MaxRequests, l.config.Window)
}

// AllowN reports whether one more operation under key fits a budget of limit
// operations per window. The decision is made on the post-increment count of
// a single atomic increment, never on a separate read, so two concurrent
// callers can never both consume the final slot.
//
// A denied call still counts: retrying while blocked extends nothing but
// keeps the caller blocked until the window expires.
func (l *Limiter) AllowN(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return false, fmt.Errorf("invalid rate limit budget: limit=%d window=%s", limit, window)
	}

	counterKey := l.config.KeyPrefix + ":" + key

	count, err := l.store.Incr(ctx, counterKey)
	if err != nil {
		// Fail closed: an unreachable store denies the operation.
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// First hit in the window owns setting the expiry.
	if count == 1 {
		if err := l.store.Expire(ctx, counterKey, window); err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}

// Enforce is Allow folded into the error domain: nil when allowed,
// [ErrRateLimited] when denied, [ErrStoreUnavailable] on outage.
func (l *Limiter) Enforce(ctx context.Context, key string) error {
	allowed, err := l.Allow(ctx, key)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the counter for key, reopening the window immediately.
// Called after a successful login so honest users do not inherit the
// budget consumed by their own typos.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.store.Del(ctx, l.config.KeyPrefix+":"+key); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Attempts returns the current counter for key. Missing keys report zero
// and do not reveal whether the key was ever seen.
func (l *Limiter) Attempts(ctx context.Context, key string) (int, error) {
	val, err := l.store.Get(ctx, l.config.KeyPrefix+":"+key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var count int
	if _, err := fmt.Sscanf(val, "%d", &count); err != nil || count < 0 {
		return 0, nil
	}
	return count, nil
}
