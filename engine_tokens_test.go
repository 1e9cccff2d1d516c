package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath/authcore/internal/stores"
	"github.com/brightpath/authcore/token"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	claims, err := engine.Verify(ctx, accessToken)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject = %q, want u1", claims.Subject)
	}
	if claims.TokenType != token.TypeAccess {
		t.Fatalf("type = %q, want access", claims.TokenType)
	}
}

func TestIssueRefreshPersistsRecord(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	refreshToken, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	claims, err := engine.Verify(ctx, refreshToken)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	record, err := engine.refreshStore.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("record lookup error: %v", err)
	}
	if record.TokenID != claims.ID {
		t.Fatalf("record token id = %q, want %q", record.TokenID, claims.ID)
	}
}

func TestRevokeThenVerifyIsRevoked(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if err := engine.Revoke(ctx, accessToken); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	// The token is far from its natural expiry; revocation alone rejects it.
	if _, err := engine.Verify(ctx, accessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Verify after Revoke = %v, want ErrTokenRevoked", err)
	}
}

func TestRefreshAccessTokenScenario(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	refreshToken, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	if _, err := engine.refreshStore.Get(ctx, "u1"); err != nil {
		t.Fatalf("no refresh record after issuance: %v", err)
	}

	before := time.Now()
	accessToken, err := engine.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken error: %v", err)
	}

	claims, err := engine.Verify(ctx, accessToken)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "u1" {
		t.Fatalf("subject = %q, want u1", claims.Subject)
	}
	if claims.TokenType != token.TypeAccess {
		t.Fatalf("type = %q, want access", claims.TokenType)
	}

	wantExpiry := before.Add(testingConfig().Token.AccessTTL)
	if diff := claims.ExpiresAt.Sub(wantExpiry); diff < -time.Second || diff > 2*time.Second {
		t.Fatalf("expiry off by %s", diff)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	if _, err := engine.RefreshAccessToken(ctx, accessToken); !errors.Is(err, ErrNotRefreshToken) {
		t.Fatalf("RefreshAccessToken(access) = %v, want ErrNotRefreshToken", err)
	}
}

// A second issuance overwrites the single active record, so the first
// refresh token is superseded even though its signature and expiry hold.
func TestRefreshSupersededByNewerIssue(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	first, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	second, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	if _, err := engine.RefreshAccessToken(ctx, first); !errors.Is(err, ErrRefreshTokenSuperseded) {
		t.Fatalf("RefreshAccessToken(first) = %v, want ErrRefreshTokenSuperseded", err)
	}
	if _, err := engine.RefreshAccessToken(ctx, second); err != nil {
		t.Fatalf("RefreshAccessToken(second) = %v, want nil", err)
	}
}

func TestRevokeRefreshDeletesRecord(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	refreshToken, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	if err := engine.Revoke(ctx, refreshToken); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	if _, err := engine.refreshStore.Get(ctx, "u1"); !errors.Is(err, stores.ErrRecordNotFound) {
		t.Fatalf("record lookup after Revoke = %v, want ErrRecordNotFound", err)
	}
	if _, err := engine.RefreshAccessToken(ctx, refreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("RefreshAccessToken after Revoke = %v, want ErrTokenRevoked", err)
	}
}

func TestRevokeMalformedTokenFails(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())

	if err := engine.Revoke(context.Background(), "not-a-token"); !errors.Is(err, token.ErrMalformed) {
		t.Fatalf("Revoke(garbage) = %v, want token.ErrMalformed", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	engine, _, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	refreshToken, err := engine.IssueRefreshToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	if err := engine.Logout(ctx, accessToken, refreshToken); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if _, err := engine.Verify(ctx, accessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Verify(access) after Logout = %v, want ErrTokenRevoked", err)
	}
	if _, err := engine.RefreshAccessToken(ctx, refreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("Refresh after Logout = %v, want ErrTokenRevoked", err)
	}
	if _, err := engine.refreshStore.Get(ctx, "u1"); !errors.Is(err, stores.ErrRecordNotFound) {
		t.Fatalf("record after Logout = %v, want ErrRecordNotFound", err)
	}
}

// Revocation checks fail closed: a dead store rejects the request rather
// than waving a possibly-revoked token through.
func TestVerifyFailsClosedOnStoreOutage(t *testing.T) {
	engine, mr, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	mr.Close()

	if _, err := engine.Verify(ctx, accessToken); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Verify on dead store = %v, want ErrStoreUnavailable", err)
	}
}

func TestHealthCheck(t *testing.T) {
	engine, mr, _ := newTestEngine(t, testingConfig())
	ctx := context.Background()

	if err := engine.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck = %v, want nil", err)
	}
	mr.Close()
	if err := engine.HealthCheck(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("HealthCheck on dead store = %v, want ErrStoreUnavailable", err)
	}
}
