package authcore

import "context"

// Identity is the engine's view of a user held by the external identity
// provider. The core never sees or stores credentials; passwords flow
// through to the provider and are dropped.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

// IdentityProvider is the external system of record for users. Firebase
// Auth fills this role in production; tests inject an in-memory fake.
//
// Implementations return [ErrIdentityNotFound] for unknown identities,
// [ErrIdentityExists] for duplicate creation, and [ErrInvalidCredentials]
// for failed password checks. Any other error is treated as a provider
// outage.
type IdentityProvider interface {
	CreateIdentity(ctx context.Context, email, password, displayName string) (*Identity, error)
	FindIdentityByEmail(ctx context.Context, email string) (*Identity, error)
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
	SetRoleClaim(ctx context.Context, id, role string) error
}

// TokenPair is the access/refresh pair returned by credential flows.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
