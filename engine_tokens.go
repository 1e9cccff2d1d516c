package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/brightpath/authcore/internal/stores"
	"github.com/brightpath/authcore/token"
)

// revocationSlack is added to a revocation entry's TTL so the entry outlives
// the token it blocks even across clock skew between service instances.
const revocationSlack = time.Minute

// IssueAccessToken mints a signed access token for subjectID. No durable
// state is touched.
func (e *Engine) IssueAccessToken(ctx context.Context, subjectID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	return e.tokenManager.CreateAccess(subjectID)
}

// IssueRefreshToken mints a signed refresh token for subjectID and records
// it as the user's single active refresh token, overwriting any prior
// record. Persistence is best-effort: a store failure is reported to the
// audit sink but the token is still returned, since the record is a session
// cache, not an audit ledger.
func (e *Engine) IssueRefreshToken(ctx context.Context, subjectID string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	refreshToken, tokenID, err := e.tokenManager.CreateRefresh(subjectID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	record := stores.RefreshRecord{
		UserID:    subjectID,
		TokenID:   tokenID,
		CreatedAt: now,
		ExpiresAt: now.Add(e.tokenManager.RefreshTTL()),
	}
	if err := e.refreshStore.Save(ctx, record); err != nil {
		e.emit(ctx, AuditEvent{
			EventType: "refresh_record_write_failed",
			UserID:    subjectID,
			Error:     err.Error(),
		})
	}

	return refreshToken, nil
}

// Verify validates tokenString and returns its claims. Checks short-circuit
// in a fixed order: malformed, bad signature, expired, revoked. The
// signature is always verified before any claim is trusted, and revocation
// dominates everything a valid token says about itself. A store outage
// fails the revocation check closed.
func (e *Engine) Verify(ctx context.Context, tokenString string) (*token.Claims, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokenManager.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := e.revocations.IsRevoked(ctx, tokenString)
	if err != nil {
		return nil, e.mapStoreErr(err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
// The presented token must be of type refresh, must not be revoked, and must
// still match the user's single active refresh record — a token whose id has
// been overwritten by a newer issue is rejected as superseded.
func (e *Engine) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}

	claims, err := e.Verify(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != token.TypeRefresh {
		return "", ErrNotRefreshToken
	}

	record, err := e.refreshStore.Get(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, stores.ErrRecordNotFound) {
			return "", ErrRefreshTokenSuperseded
		}
		return "", e.mapStoreErr(err)
	}
	if record.TokenID != claims.ID {
		return "", ErrRefreshTokenSuperseded
	}

	accessToken, err := e.tokenManager.CreateAccess(claims.Subject)
	if err != nil {
		return "", err
	}

	e.emit(ctx, AuditEvent{
		EventType: "token_refreshed",
		UserID:    claims.Subject,
		Success:   true,
	})
	return accessToken, nil
}

// Revoke puts tokenString on the shared revocation list for the remainder of
// its validity, so it is rejected everywhere before its natural expiry.
// Revoking an already-expired token is a no-op. Revoking a refresh token
// also deletes the user's refresh record when the record still belongs to
// that token.
func (e *Engine) Revoke(ctx context.Context, tokenString string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	claims, err := e.tokenManager.Parse(tokenString)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil
		}
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time) + revocationSlack
	if err := e.revocations.Revoke(ctx, tokenString, remaining); err != nil {
		return e.mapStoreErr(err)
	}

	if claims.TokenType == token.TypeRefresh {
		record, err := e.refreshStore.Get(ctx, claims.Subject)
		if err == nil && record.TokenID == claims.ID {
			if err := e.refreshStore.Delete(ctx, claims.Subject); err != nil {
				return e.mapStoreErr(err)
			}
		}
	}

	e.emit(ctx, AuditEvent{
		EventType: "token_revoked",
		UserID:    claims.Subject,
		Success:   true,
		Metadata:  map[string]string{"token_type": string(claims.TokenType)},
	})
	return nil
}

// Logout revokes both tokens of a session and drops the refresh record.
// Empty token strings are skipped so callers can log out with whichever
// tokens they still hold.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	var errs []error
	if accessToken != "" {
		if err := e.Revoke(ctx, accessToken); err != nil {
			errs = append(errs, err)
		}
	}
	if refreshToken != "" {
		if err := e.Revoke(ctx, refreshToken); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	e.emit(ctx, AuditEvent{
		EventType: "user_logged_out",
		Success:   true,
	})
	return nil
}
