package authcore

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is the uniform authentication failure. It covers
	// unknown users and wrong passwords alike so callers cannot enumerate
	// accounts; the distinction is only visible in the audit trail.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when an operation exceeds its window budget.
	ErrRateLimited = errors.New("too many attempts")
	// ErrTokenRevoked is returned when an otherwise valid token is on the
	// revocation list.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrNotRefreshToken is returned when a non-refresh token is presented
	// to the refresh flow.
	ErrNotRefreshToken = errors.New("token is not a refresh token")
	// ErrRefreshTokenSuperseded is returned when a refresh token no longer
	// matches the user's single active record (overwritten by a newer issue,
	// or deleted by logout/revocation).
	ErrRefreshTokenSuperseded = errors.New("refresh token superseded")
	// ErrPasswordPolicy is returned when a password fails the configured
	// length or composition rules.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrEmailInvalid is returned when an email address fails shape or
	// domain validation.
	ErrEmailInvalid = errors.New("invalid email address")
	// ErrIdentityExists is returned when registration targets an address
	// the identity provider already knows.
	ErrIdentityExists = errors.New("identity already exists")
	// ErrIdentityNotFound is returned by [IdentityProvider] implementations
	// when no identity matches. The engine never surfaces it to callers;
	// it is folded into [ErrInvalidCredentials].
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrStoreUnavailable is returned when the shared key-value store cannot
	// be reached. Rate-limit and revocation checks fail closed on it.
	ErrStoreUnavailable = errors.New("shared store unavailable")
	// ErrProviderUnavailable is returned when the identity provider cannot
	// be reached.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrEngineNotReady is returned by methods on a nil or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// joinSentinel wraps err under sentinel unless it already carries it, so
// errors.Is(result, sentinel) holds exactly once.
func joinSentinel(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
