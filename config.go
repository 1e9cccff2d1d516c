package authcore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the engine recognizes. Instances are
// configured before [Builder.Build] and treated as immutable afterwards.
type Config struct {
	Token     TokenConfig
	RateLimit RateLimitConfig
	Password  PasswordConfig
	Email     EmailConfig
	Account   AccountConfig
	Store     StoreConfig
	Audit     AuditConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds the signing material and token lifetimes.
type TokenConfig struct {
	Secret        string
	SigningMethod string // "hs256" (default and only supported value)
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig bounds sensitive operations per logical key within a
// fixed window. The engine applies the same budget to login and
// registration; Allow exposes per-call budgets for other callers.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

/*
====================================
PASSWORD / EMAIL POLICY
====================================
*/

// PasswordConfig is the password composition policy. Hashing and storage
// belong to the identity provider; only the policy is enforced here.
type PasswordConfig struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// EmailConfig controls email validation at registration. An empty
// AllowedDomains list accepts any well-formed address.
type EmailConfig struct {
	AllowedDomains []string
}

// AccountConfig controls identity creation defaults.
type AccountConfig struct {
	DefaultRole       string
	DisplayNameMaxLen int
}

/*
====================================
STORE / AUDIT CONFIG
====================================
*/

// StoreConfig names the key prefixes used in the shared store. Defaults
// match the wire layout other service instances already expect.
type StoreConfig struct {
	RateLimitPrefix  string
	RevocationPrefix string
	RefreshPrefix    string
}

// AuditConfig controls the security event trail kept in the shared store.
type AuditConfig struct {
	TrailEnabled bool
	TrailKey     string
	TrailSize    int64
}

// DefaultConfig returns the baseline configuration. The signing secret has
// no default; Build fails until one is set.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "hs256",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 5,
		},
		Password: PasswordConfig{
			MinLength:      8,
			RequireUpper:   true,
			RequireLower:   true,
			RequireDigit:   true,
			RequireSpecial: true,
		},
		Account: AccountConfig{
			DefaultRole:       "member",
			DisplayNameMaxLen: 50,
		},
		Store: StoreConfig{
			RateLimitPrefix:  "rl",
			RevocationPrefix: "blacklisted_tokens",
			RefreshPrefix:    "refresh_tokens",
		},
		Audit: AuditConfig{
			TrailKey:  "security_events",
			TrailSize: 1000,
		},
	}
}

// ConfigFromEnv builds a Config from the environment, loading a .env file
// first when one exists. Unset variables keep their defaults; malformed
// values are configuration errors, not silent fallbacks.
func ConfigFromEnv() (Config, error) {
	// Missing .env is fine; the environment may be populated directly.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	var err error

	cfg.Token.Secret = os.Getenv("AUTHCORE_SECRET")
	if v := os.Getenv("AUTHCORE_SIGNING_METHOD"); v != "" {
		cfg.Token.SigningMethod = strings.ToLower(v)
	}
	if cfg.Token.AccessTTL, err = envMinutes("AUTHCORE_ACCESS_TTL_MINUTES", cfg.Token.AccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.Token.RefreshTTL, err = envDays("AUTHCORE_REFRESH_TTL_DAYS", cfg.Token.RefreshTTL); err != nil {
		return Config{}, err
	}
	cfg.Token.Issuer = os.Getenv("AUTHCORE_ISSUER")

	if cfg.RateLimit.Window, err = envSeconds("AUTHCORE_RATE_LIMIT_WINDOW_SECONDS", cfg.RateLimit.Window); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.MaxRequests, err = envInt("AUTHCORE_RATE_LIMIT_MAX_REQUESTS", cfg.RateLimit.MaxRequests); err != nil {
		return Config{}, err
	}

	if cfg.Password.MinLength, err = envInt("AUTHCORE_PASSWORD_MIN_LENGTH", cfg.Password.MinLength); err != nil {
		return Config{}, err
	}
	if cfg.Password.RequireUpper, err = envBool("AUTHCORE_PASSWORD_REQUIRE_UPPER", cfg.Password.RequireUpper); err != nil {
		return Config{}, err
	}
	if cfg.Password.RequireLower, err = envBool("AUTHCORE_PASSWORD_REQUIRE_LOWER", cfg.Password.RequireLower); err != nil {
		return Config{}, err
	}
	if cfg.Password.RequireDigit, err = envBool("AUTHCORE_PASSWORD_REQUIRE_DIGIT", cfg.Password.RequireDigit); err != nil {
		return Config{}, err
	}
	if cfg.Password.RequireSpecial, err = envBool("AUTHCORE_PASSWORD_REQUIRE_SPECIAL", cfg.Password.RequireSpecial); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("AUTHCORE_ALLOWED_EMAIL_DOMAINS"); v != "" {
		for _, domain := range strings.Split(v, ",") {
			if domain = strings.TrimSpace(domain); domain != "" {
				cfg.Email.AllowedDomains = append(cfg.Email.AllowedDomains, strings.ToLower(domain))
			}
		}
	}
	if v := os.Getenv("AUTHCORE_DEFAULT_ROLE"); v != "" {
		cfg.Account.DefaultRole = v
	}

	return cfg, nil
}

// validateConfig runs at Build so misconfiguration fails at startup rather
// than on the first request.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Token.Secret) == "" {
		return errors.New("config: signing secret required")
	}
	if cfg.Token.SigningMethod != "hs256" {
		return fmt.Errorf("config: unsupported signing method %q", cfg.Token.SigningMethod)
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 {
		return errors.New("config: token TTLs must be positive")
	}
	if cfg.Token.RefreshTTL <= cfg.Token.AccessTTL {
		return errors.New("config: refresh TTL must exceed access TTL")
	}
	if cfg.RateLimit.Window <= 0 || cfg.RateLimit.MaxRequests <= 0 {
		return errors.New("config: rate limit window and max requests must be positive")
	}
	if cfg.Password.MinLength < 1 {
		return errors.New("config: password min length must be positive")
	}
	if cfg.Audit.TrailEnabled && cfg.Audit.TrailSize <= 0 {
		return errors.New("config: audit trail size must be positive")
	}
	return nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %v", name, err)
	}
	return n, nil
}

func envBool(name string, fallback bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %v", name, err)
	}
	return b, nil
}

func envSeconds(name string, fallback time.Duration) (time.Duration, error) {
	n, err := envInt(name, int(fallback/time.Second))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func envMinutes(name string, fallback time.Duration) (time.Duration, error) {
	n, err := envInt(name, int(fallback/time.Minute))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Minute, nil
}

func envDays(name string, fallback time.Duration) (time.Duration, error) {
	n, err := envInt(name, int(fallback/(24*time.Hour)))
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * 24 * time.Hour, nil
}
