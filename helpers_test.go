package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testingConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = "test-secret-0123456789abcdef"
	cfg.Token.AccessTTL = 15 * time.Minute
	cfg.Token.RefreshTTL = 7 * 24 * time.Hour
	cfg.RateLimit.Window = time.Minute
	cfg.RateLimit.MaxRequests = 5
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *miniredis.Miniredis, *fakeProvider) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	provider := newFakeProvider()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityProvider(provider).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	return engine, mr, provider
}

// fakeProvider is an in-memory IdentityProvider standing in for the managed
// identity backend.
type fakeProvider struct {
	mu          sync.Mutex
	byEmail     map[string]*Identity
	passwords   map[string]string
	roles       map[string]string
	unavailable bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		byEmail:   make(map[string]*Identity),
		passwords: make(map[string]string),
		roles:     make(map[string]string),
	}
}

func (p *fakeProvider) seed(email, password string) *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()

	identity := &Identity{ID: uuid.NewString(), Email: email, DisplayName: "Seeded User"}
	p.byEmail[email] = identity
	p.passwords[email] = password
	return identity
}

func (p *fakeProvider) setUnavailable(down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unavailable = down
}

func (p *fakeProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return nil, errors.New("provider down")
	}
	if _, exists := p.byEmail[email]; exists {
		return nil, ErrIdentityExists
	}

	identity := &Identity{ID: uuid.NewString(), Email: email, DisplayName: displayName}
	p.byEmail[email] = identity
	p.passwords[email] = password
	return &Identity{ID: identity.ID, Email: identity.Email, DisplayName: identity.DisplayName}, nil
}

func (p *fakeProvider) FindIdentityByEmail(ctx context.Context, email string) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return nil, errors.New("provider down")
	}
	identity, ok := p.byEmail[email]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return &Identity{ID: identity.ID, Email: identity.Email, DisplayName: identity.DisplayName, Role: p.roles[identity.ID]}, nil
}

func (p *fakeProvider) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return nil, errors.New("provider down")
	}
	identity, ok := p.byEmail[email]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	if p.passwords[email] != password {
		return nil, ErrInvalidCredentials
	}
	return &Identity{ID: identity.ID, Email: identity.Email, DisplayName: identity.DisplayName, Role: p.roles[identity.ID]}, nil
}

func (p *fakeProvider) SetRoleClaim(ctx context.Context, id, role string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.unavailable {
		return errors.New("provider down")
	}
	p.roles[id] = role
	return nil
}

func (p *fakeProvider) roleOf(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[id]
}

// recorderSink captures emitted audit events for assertions.
type recorderSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *recorderSink) Emit(ctx context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recorderSink) byType(eventType string) []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AuditEvent
	for _, event := range s.events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}
