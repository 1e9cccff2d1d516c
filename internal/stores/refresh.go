package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brightpath/authcore/kv"
)

// ErrRecordNotFound is returned when no refresh record exists for a user.
var ErrRecordNotFound = errors.New("refresh record not found")

const (
	fieldTokenID   = "token_id"
	fieldCreatedAt = "created_at"
	fieldExpiresAt = "expires_at"
)

// RefreshRecord is the stored metadata for a user's active refresh token.
// The design keeps at most one active record per user: issuing overwrites,
// logout and revocation delete.
type RefreshRecord struct {
	UserID    string
	TokenID   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// RefreshStore persists refresh-token records keyed by user id.
type RefreshStore struct {
	store  kv.Store
	prefix string
}

// NewRefreshStore creates a refresh record store under the given key prefix.
func NewRefreshStore(store kv.Store, prefix string) *RefreshStore {
	if prefix == "" {
		prefix = "refresh_tokens"
	}
	return &RefreshStore{store: store, prefix: prefix}
}

// Save writes the record, replacing any prior record for the same user.
// The key expires with the token so stale records clean themselves up.
func (s *RefreshStore) Save(ctx context.Context, rec RefreshRecord) error {
	key := s.key(rec.UserID)

	// Delete first so fields from a previous record never survive a merge.
	if err := s.store.Del(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	fields := map[string]string{
		fieldTokenID:   rec.TokenID,
		fieldCreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		fieldExpiresAt: rec.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if err := s.store.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if ttl := time.Until(rec.ExpiresAt); ttl > 0 {
		if err := s.store.Expire(ctx, key, ttl); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}

// Get returns the active record for userID, or [ErrRecordNotFound].
func (s *RefreshStore) Get(ctx context.Context, userID string) (*RefreshRecord, error) {
	fields, err := s.store.HGetAll(ctx, s.key(userID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrRecordNotFound
	}

	rec := &RefreshRecord{
		UserID:  userID,
		TokenID: fields[fieldTokenID],
	}
	if createdAt, err := time.Parse(time.RFC3339, fields[fieldCreatedAt]); err == nil {
		rec.CreatedAt = createdAt
	}
	if expiresAt, err := time.Parse(time.RFC3339, fields[fieldExpiresAt]); err == nil {
		rec.ExpiresAt = expiresAt
	}
	return rec, nil
}

// Delete removes the record for userID. Idempotent.
func (s *RefreshStore) Delete(ctx context.Context, userID string) error {
	if err := s.store.Del(ctx, s.key(userID)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RefreshStore) key(userID string) string {
	return s.prefix + ":" + userID
}
