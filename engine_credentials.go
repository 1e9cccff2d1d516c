package authcore

import (
	"context"
	"errors"
	"strings"
)

// Register creates a new identity with the external provider and returns it
// with a fresh token pair. Input is validated and the operation is
// rate-limited per email before the provider is contacted.
func (e *Engine) Register(ctx context.Context, email, password, displayName string) (*Identity, *TokenPair, error) {
	if e == nil || e.provider == nil {
		return nil, nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if !validateEmail(e.config.Email, email) {
		return nil, nil, ErrEmailInvalid
	}
	if !validatePassword(e.config.Password, password) {
		return nil, nil, ErrPasswordPolicy
	}
	displayName = sanitizeDisplayName(displayName, e.config.Account.DisplayNameMaxLen)

	if err := e.enforceLimit(ctx, "registration_rate_limited", "register:"+email, email); err != nil {
		return nil, nil, err
	}

	identity, err := e.provider.CreateIdentity(ctx, email, password, displayName)
	if err != nil {
		if errors.Is(err, ErrIdentityExists) {
			e.emit(ctx, AuditEvent{
				EventType: "registration_failed",
				Email:     email,
				Error:     "identity already exists",
			})
			return nil, nil, ErrIdentityExists
		}
		return nil, nil, joinSentinel(ErrProviderUnavailable, err)
	}

	role := e.config.Account.DefaultRole
	if err := e.provider.SetRoleClaim(ctx, identity.ID, role); err != nil {
		return nil, nil, joinSentinel(ErrProviderUnavailable, err)
	}
	identity.Role = role

	pair, err := e.issuePair(ctx, identity.ID)
	if err != nil {
		return nil, nil, err
	}

	e.emit(ctx, AuditEvent{
		EventType: "user_registered",
		UserID:    identity.ID,
		Email:     email,
		Success:   true,
		Metadata:  map[string]string{"role": role},
	})
	return identity, pair, nil
}

// Login authenticates credentials against the external provider and returns
// the identity with a fresh token pair. Failures are uniform: unknown user
// and wrong password both come back as [ErrInvalidCredentials], with the
// real reason visible only in the audit trail. A successful login clears the
// caller's rate-limit budget.
func (e *Engine) Login(ctx context.Context, email, password string) (*Identity, *TokenPair, error) {
	if e == nil || e.provider == nil {
		return nil, nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	limitKey := "login:" + email
	if err := e.enforceLimit(ctx, "login_rate_limited", limitKey, email); err != nil {
		return nil, nil, err
	}

	identity, err := e.provider.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) || errors.Is(err, ErrInvalidCredentials) {
			e.emit(ctx, AuditEvent{
				EventType: "login_failed",
				Email:     email,
				Error:     err.Error(),
			})
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, joinSentinel(ErrProviderUnavailable, err)
	}

	// Honest users should not carry the budget consumed by their own typos
	// into the next window. Best-effort; the login already succeeded.
	_ = e.rateLimiter.Reset(ctx, limitKey)

	pair, err := e.issuePair(ctx, identity.ID)
	if err != nil {
		return nil, nil, err
	}

	e.emit(ctx, AuditEvent{
		EventType: "user_logged_in",
		UserID:    identity.ID,
		Email:     email,
		Success:   true,
	})
	return identity, pair, nil
}

func (e *Engine) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := e.IssueAccessToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := e.IssueRefreshToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
