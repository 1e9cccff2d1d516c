package authcore

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/brightpath/authcore/internal/rate"
	"github.com/brightpath/authcore/internal/stores"
	"github.com/brightpath/authcore/kv"
	"github.com/brightpath/authcore/token"
)

// Builder assembles an [Engine]. Construction is allocation-only; the first
// store round-trip happens on the first Engine call, not at Build.
type Builder struct {
	config   Config
	store    kv.Store
	provider IdentityProvider
	sink     AuditSink

	built bool
}

// New starts a builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithSecret sets the signing secret, keeping the rest of the configuration.
func (b *Builder) WithSecret(secret string) *Builder {
	b.config.Token.Secret = secret
	return b
}

// WithStore injects the shared key-value store.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithRedis is a convenience for the common case: wrap an existing go-redis
// client as the shared store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.store = kv.NewRedis(client)
	return b
}

// WithIdentityProvider injects the external system of record for users.
// Engines without a provider still issue, verify, refresh, and revoke
// tokens; only Register and Login require one.
func (b *Builder) WithIdentityProvider(provider IdentityProvider) *Builder {
	b.provider = provider
	return b
}

// WithAuditSink injects the security event sink. The default discards
// events; [NewLogrusSink] and [NewTrailSink] are the usual choices.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// Build validates the configuration and assembles the engine. Configuration
// problems (missing secret, bad TTLs) fail here, before any traffic.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("shared store required: use WithStore or WithRedis")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	tokenManager, err := token.NewManager(token.Config{
		Secret:        []byte(b.config.Token.Secret),
		SigningMethod: token.MethodHS256,
		AccessTTL:     b.config.Token.AccessTTL,
		RefreshTTL:    b.config.Token.RefreshTTL,
		Issuer:        b.config.Token.Issuer,
		Leeway:        b.config.Token.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	sink := b.sink
	if sink == nil {
		sink = NoOpSink{}
	}
	if b.config.Audit.TrailEnabled {
		sink = NewFanoutSink(sink, NewTrailSink(b.store, b.config.Audit.TrailKey, b.config.Audit.TrailSize))
	}

	b.built = true
	return &Engine{
		config:       b.config,
		store:        b.store,
		provider:     b.provider,
		sink:         sink,
		tokenManager: tokenManager,
		rateLimiter: rate.New(b.store, rate.Config{
			KeyPrefix:   b.config.Store.RateLimitPrefix,
			MaxRequests: b.config.RateLimit.MaxRequests,
			Window:      b.config.RateLimit.Window,
		}),
		revocations:  stores.NewRevocationList(b.store, b.config.Store.RevocationPrefix),
		refreshStore: stores.NewRefreshStore(b.store, b.config.Store.RefreshPrefix),
	}, nil
}
