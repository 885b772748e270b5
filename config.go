package trustcore

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hoqouqi/trustcore/capability"
	"github.com/hoqouqi/trustcore/password"
	"github.com/hoqouqi/trustcore/ratelimit"
	"github.com/hoqouqi/trustcore/session"
)

// placeholderSecret is the shipped default operators are expected to
// replace. Starting with it is as fatal as starting with no secret at all.
const placeholderSecret = "change-me-in-production"

// Environment variables read by [ConfigFromEnv].
const (
	EnvSecretKey     = "APP_SECRET_KEY"
	EnvSessionTTL    = "APP_SESSION_TTL_SECONDS"
	EnvCapabilityTTL = "APP_SIGNED_URL_TTL_SECONDS"
)

// Config defines a public type used by trustcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// Secret is the single process-wide signing secret. It is read once at
	// construction and never rotated at runtime; rotation is a restart.
	Secret string

	Password   password.Config
	Session    SessionConfig
	Capability CapabilityConfig
	RateLimit  RateLimitConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by trustcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	TTL      time.Duration
	Encoding session.Encoding // "compact" (default) or "jwt"
}

/*
====================================
CAPABILITY CONFIG
====================================
*/

// CapabilityConfig defines a public type used by trustcore APIs.
//
// CapabilityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CapabilityConfig struct {
	TTL time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by trustcore APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Login    ratelimit.Policy
	Register ratelimit.Policy
	AIAssist ratelimit.Policy
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by trustcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by trustcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production defaults: 120k PBKDF2 iterations,
// one-week sessions in the compact encoding, ten-minute capability grants,
// and the platform's per-action rate budgets. The Secret field is left empty
// on purpose — there is no usable default for it.
func DefaultConfig() Config {
	return Config{
		Password: password.Config{
			Iterations: 120_000,
			SaltLength: 16,
			KeyLength:  32,
		},
		Session: SessionConfig{
			TTL:      session.DefaultTTL,
			Encoding: session.EncodingCompact,
		},
		Capability: CapabilityConfig{
			TTL: capability.DefaultTTL,
		},
		RateLimit: RateLimitConfig{
			Login:    ratelimit.PolicyLogin,
			Register: ratelimit.PolicyRegister,
			AIAssist: ratelimit.PolicyAIAssist,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// ConfigFromEnv builds a config from the process environment. The secret is
// mandatory; TTL overrides are optional decimal second counts. A missing or
// placeholder secret is a startup-fatal error, never a fallback.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Secret = os.Getenv(EnvSecretKey)

	if err := validateSecret(cfg.Secret); err != nil {
		return Config{}, err
	}

	if raw := os.Getenv(EnvSessionTTL); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid %s value %q", EnvSessionTTL, raw)
		}
		cfg.Session.TTL = time.Duration(seconds) * time.Second
	}

	if raw := os.Getenv(EnvCapabilityTTL); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid %s value %q", EnvCapabilityTTL, raw)
		}
		cfg.Capability.TTL = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func validateSecret(secret string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return ErrSecretMissing
	}
	if trimmed == placeholderSecret {
		return ErrSecretPlaceholder
	}
	return nil
}

func validateConfig(cfg Config) error {
	if err := validateSecret(cfg.Secret); err != nil {
		return err
	}
	if cfg.Session.TTL < 0 {
		return fmt.Errorf("invalid session TTL configuration")
	}
	if cfg.Capability.TTL < 0 {
		return fmt.Errorf("invalid capability TTL configuration")
	}
	return nil
}
