package multiAuth

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/multiAuth/otp"
	"github.com/MrEthical07/multiAuth/password"
	"github.com/MrEthical07/multiAuth/session"
)

// Config holds every tunable of the Engine. Start from DefaultConfig and
// override what you need; Build validates the result.
type Config struct {
	JWT          JWTConfig
	Session      SessionConfig
	Verification VerificationConfig
	Password     PasswordConfig
	Metrics      MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures access and refresh token issuance.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the Redis session store.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig configures phone-number one-time codes.
type VerificationConfig struct {
	RedisPrefix string
	CodeTTL     time.Duration
	VerifiedTTL time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the credential hasher.
type PasswordConfig struct {
	Algorithm  string // "argon2id" (default) or "bcrypt"
	MinLength  int
	Argon2     password.Config
	BcryptCost int
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles in-process counters and the validate latency
// histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when the builder is given
// none. The JWT secret is left empty and must be supplied.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Session: SessionConfig{
			RedisPrefix: session.DefaultPrefix,
			TTL:         24 * time.Hour,
		},
		Verification: VerificationConfig{
			RedisPrefix: otp.DefaultPrefix,
			CodeTTL:     otp.DefaultCodeTTL,
			VerifiedTTL: otp.DefaultVerifiedTTL,
		},
		Password: PasswordConfig{
			Algorithm:  string(password.AlgorithmArgon2id),
			MinLength:  password.DefaultMinLength,
			Argon2:     password.DefaultArgon2Config(),
			BcryptCost: password.DefaultBcryptCost,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// JWT
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must not be shorter than AccessTTL")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("hs256 requires a secret in PrivateKey")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("ed25519 requires PrivateKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}
	if c.JWT.Audience != "" && strings.TrimSpace(c.JWT.Audience) == "" {
		return errors.New("JWT Audience must not be blank")
	}

	// Session
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}
	if strings.ContainsAny(c.Session.RedisPrefix, ":*?[]") {
		return errors.New("Session RedisPrefix must not contain ':' or glob characters")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// Verification
	if strings.TrimSpace(c.Verification.RedisPrefix) == "" {
		return errors.New("Verification RedisPrefix must not be empty")
	}
	if c.Verification.RedisPrefix == c.Session.RedisPrefix {
		return errors.New("Verification RedisPrefix must differ from Session RedisPrefix")
	}
	if c.Verification.CodeTTL <= 0 || c.Verification.VerifiedTTL <= 0 {
		return errors.New("Verification TTLs must be > 0")
	}

	// Password
	switch password.Algorithm(c.Password.Algorithm) {
	case "", password.AlgorithmArgon2id, password.AlgorithmBcrypt:
	default:
		return errors.New("unsupported password algorithm")
	}
	if c.Password.MinLength < 0 {
		return errors.New("Password MinLength must be >= 0")
	}

	return nil
}
