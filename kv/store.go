package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key does not exist or has expired.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnavailable wraps backend failures (connection refused, timeout).
	// Callers decide fail-open vs fail-closed; this package only reports.
	ErrUnavailable = errors.New("kv: store unavailable")
)

// Store is the capability interface over the shared key-value backend.
//
// All mutating single-key operations (Incr, SetWithTTL, SAdd, Del) are atomic
// with respect to concurrent callers of the same key. A zero ttl on
// SetWithTTL means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	SAdd(ctx context.Context, key, member string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	LPush(ctx context.Context, key, value string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	Ping(ctx context.Context) error
	Close() error
}
