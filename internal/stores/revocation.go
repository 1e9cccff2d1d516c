package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightpath/authcore/kv"
)

// ErrStoreUnavailable wraps shared-store outages for every store in this
// package. Revocation callers must fail closed on it.
var ErrStoreUnavailable = errors.New("bookkeeping store unavailable")

const revokedMark = "1"

// RevocationList records tokens that must be rejected despite a valid
// signature and unexpired claims. Each entry carries its own TTL sized to
// outlive the token it blocks, so a revoked-but-unexpired token can never
// be replayed and the list never accumulates dead weight.
type RevocationList struct {
	store  kv.Store
	prefix string
}

// NewRevocationList creates a revocation list under the given key prefix.
func NewRevocationList(store kv.Store, prefix string) *RevocationList {
	if prefix == "" {
		prefix = "blacklisted_tokens"
	}
	return &RevocationList{store: store, prefix: prefix}
}

// Revoke marks tokenOrID as rejected for ttl. A non-positive ttl means the
// token is already past its natural expiry and nothing needs recording.
func (r *RevocationList) Revoke(ctx context.Context, tokenOrID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.store.SetWithTTL(ctx, r.key(tokenOrID), revokedMark, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether tokenOrID is on the list. A store outage is
// returned as an error, never as "not revoked".
func (r *RevocationList) IsRevoked(ctx context.Context, tokenOrID string) (bool, error) {
	_, err := r.store.Get(ctx, r.key(tokenOrID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return true, nil
}

func (r *RevocationList) key(tokenOrID string) string {
	return r.prefix + ":" + tokenOrID
}
