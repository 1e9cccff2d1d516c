package authcore

import (
	"context"
	"errors"
	"testing"

	"github.com/brightpath/authcore/kv"
)

func TestBuildRequiresStore(t *testing.T) {
	if _, err := New().WithSecret("s").Build(); err == nil {
		t.Fatal("Build without store succeeded")
	}
}

func TestBuildRequiresSecret(t *testing.T) {
	if _, err := New().WithStore(kv.NewMemory()).Build(); err == nil {
		t.Fatal("Build without secret succeeded")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	builder := New().WithSecret("test-secret-0123456789abcdef").WithStore(kv.NewMemory())

	if _, err := builder.Build(); err != nil {
		t.Fatalf("first Build error: %v", err)
	}
	if _, err := builder.Build(); err == nil {
		t.Fatal("second Build succeeded")
	}
}

// Engines without an identity provider still run the token lifecycle;
// only the credential flows are gated.
func TestEngineWithoutProvider(t *testing.T) {
	engine, err := New().
		WithSecret("test-secret-0123456789abcdef").
		WithStore(kv.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ctx := context.Background()

	accessToken, err := engine.IssueAccessToken(ctx, "u1")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := engine.Verify(ctx, accessToken); err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if _, _, err := engine.Login(ctx, "a@example.com", "pw"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Login without provider = %v, want ErrEngineNotReady", err)
	}
	if _, _, err := engine.Register(ctx, "a@example.com", "pw", "A"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("Register without provider = %v, want ErrEngineNotReady", err)
	}
}

func TestNilEngineGuards(t *testing.T) {
	var engine *Engine
	ctx := context.Background()

	if _, err := engine.IssueAccessToken(ctx, "u1"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("nil IssueAccessToken = %v, want ErrEngineNotReady", err)
	}
	if _, err := engine.Verify(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("nil Verify = %v, want ErrEngineNotReady", err)
	}
	if err := engine.Revoke(ctx, "tok"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("nil Revoke = %v, want ErrEngineNotReady", err)
	}
}
