package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SigningMethod selects the HMAC algorithm used for token signatures.
type SigningMethod string

// MethodHS256 is the only supported signing method. The secret is shared
// across every service instance that issues or verifies tokens.
const MethodHS256 SigningMethod = "hs256"

// Type discriminates access tokens from refresh tokens. A refresh token is
// never accepted where an access token is expected and vice versa.
type Type string

const (
	// TypeAccess marks short-lived tokens presented on protected requests.
	TypeAccess Type = "access"
	// TypeRefresh marks long-lived tokens exchangeable for new access tokens.
	TypeRefresh Type = "refresh"
)

var (
	// ErrMalformed is returned when the input does not decode as a token at all.
	ErrMalformed = errors.New("token malformed")
	// ErrBadSignature is returned when the signature does not verify.
	ErrBadSignature = errors.New("token signature invalid")
	// ErrExpired is returned when a correctly signed token is past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrEmptySubject is returned when issuance is attempted without a subject.
	ErrEmptySubject = errors.New("token subject required")
)

// Claims is the decoded payload of a verified token.
type Claims struct {
	TokenType Type `json:"type"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes for a [Manager].
type Config struct {
	Secret        []byte
	SigningMethod SigningMethod
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Manager issues and parses signed tokens. Safe for concurrent use.
type Manager struct {
	config Config

	// now is overridable in tests; production always uses time.Now.
	now func() time.Time
}

// NewManager validates cfg and returns a ready [Manager]. Misconfiguration
// (empty secret, non-positive TTL, unknown method) fails here, at startup,
// never at issuance time.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret required")
	}
	if cfg.SigningMethod != MethodHS256 {
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// CreateAccess mints a signed access token for subject.
func (m *Manager) CreateAccess(subject string) (string, error) {
	return m.create(subject, TypeAccess, m.config.AccessTTL, "")
}

// CreateRefresh mints a signed refresh token for subject and returns it with
// its generated token id. The caller persists the id so a presented refresh
// token can be matched against the single active record per user.
func (m *Manager) CreateRefresh(subject string) (tokenString, tokenID string, err error) {
	tokenID = uuid.NewString()
	tokenString, err = m.create(subject, TypeRefresh, m.config.RefreshTTL, tokenID)
	if err != nil {
		return "", "", err
	}
	return tokenString, tokenID, nil
}

func (m *Manager) create(subject string, typ Type, ttl time.Duration, tokenID string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := m.now()
	claims := Claims{
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tokenID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Parse decodes and verifies tokenString. Failures map to exactly one of
// [ErrMalformed], [ErrBadSignature], or [ErrExpired], checked in that order.
// Revocation is a separate concern layered above this package.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithLeeway(m.config.Leeway),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.config.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrMalformed
		}
	}
	if !parsed.Valid {
		return nil, ErrBadSignature
	}
	if claims.TokenType != TypeAccess && claims.TokenType != TypeRefresh {
		return nil, ErrMalformed
	}
	return claims, nil
}
