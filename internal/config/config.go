// Package config loads and validates process configuration for the multiauth
// server from the environment and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

// Config holds server configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisUsername string `mapstructure:"REDIS_USERNAME"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	// RedisDialTimeout and RedisIOTimeout are Go durations (e.g. "5s").
	RedisDialTimeout string `mapstructure:"REDIS_DIAL_TIMEOUT"`
	RedisIOTimeout   string `mapstructure:"REDIS_IO_TIMEOUT"`

	// SessionTTLSeconds is the lifetime of a device session.
	SessionTTLSeconds int `mapstructure:"SESSION_TTL"`

	// JWTSecret signs access and refresh tokens (HS256). Required.
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	JWTAccessTTL  string `mapstructure:"JWT_ACCESS_TTL"`
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`

	// DatabaseDriver is "sqlite" or "postgres".
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	// PasswordHasher is "argon2id" or "bcrypt". Use bcrypt to keep verifying
	// hashes written by an existing deployment.
	PasswordHasher string `mapstructure:"PASSWORD_HASHER"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `mapstructure:"GOOGLE_CALLBACK_URL"`

	AppleClientID       string `mapstructure:"APPLE_CLIENT_ID"`
	AppleTeamID         string `mapstructure:"APPLE_TEAM_ID"`
	AppleKeyID          string `mapstructure:"APPLE_KEY_ID"`
	ApplePrivateKeyPath string `mapstructure:"APPLE_PRIVATE_KEY_PATH"`
	AppleCallbackURL    string `mapstructure:"APPLE_CALLBACK_URL"`

	// Twilio credentials. When unset, verification texts are only logged.
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `mapstructure:"TWILIO_PHONE_NUMBER"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`

	// LogLevel is debug, info, warn or error. LogFormat is json or text.
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// CookieSecure marks the OAuth state cookie Secure. Disable only for
	// plain-HTTP local development.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment. Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. A missing file is ignored.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore ErrConfigFileNotFound
	}

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_USERNAME", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_IO_TIMEOUT", "3s")
	v.SetDefault("SESSION_TTL", 86400)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "1h")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_URL", "multiauth.db")
	v.SetDefault("PASSWORD_HASHER", "argon2id")
	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_CALLBACK_URL", "")
	v.SetDefault("APPLE_CLIENT_ID", "")
	v.SetDefault("APPLE_TEAM_ID", "")
	v.SetDefault("APPLE_KEY_ID", "")
	v.SetDefault("APPLE_PRIVATE_KEY_PATH", "")
	v.SetDefault("APPLE_CALLBACK_URL", "")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("COOKIE_SECURE", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.RedisAddr == "" {
		return errors.New("config: REDIS_ADDR must be set")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	if c.SessionTTLSeconds <= 0 {
		return errors.New("config: SESSION_TTL must be a positive number of seconds")
	}
	for key, value := range map[string]string{
		"REDIS_DIAL_TIMEOUT": c.RedisDialTimeout,
		"REDIS_IO_TIMEOUT":   c.RedisIOTimeout,
		"JWT_ACCESS_TTL":     c.JWTAccessTTL,
		"JWT_REFRESH_TTL":    c.JWTRefreshTTL,
	} {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("config: %s must be a positive duration, got %q", key, value)
		}
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("config: PASSWORD_HASHER must be argon2id or bcrypt, got %q", c.PasswordHasher)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SessionTTL returns SESSION_TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// AccessTTL parses JWTAccessTTL. Returns 1h if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.JWTAccessTTL, time.Hour)
}

// RefreshTTL parses JWTRefreshTTL. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return durationOr(c.JWTRefreshTTL, 7*24*time.Hour)
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GoogleEnabled reports whether Google sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// AppleEnabled reports whether Sign in with Apple is configured.
func (c *Config) AppleEnabled() bool {
	return c.AppleClientID != "" && c.AppleTeamID != "" && c.AppleKeyID != "" && c.ApplePrivateKeyPath != ""
}

// TwilioEnabled reports whether SMS delivery through Twilio is configured.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// Engine returns the library configuration derived from c.
func (c *Config) Engine() multiAuth.Config {
	cfg := multiAuth.DefaultConfig()
	cfg.JWT.AccessTTL = c.AccessTTL()
	cfg.JWT.RefreshTTL = c.RefreshTTL()
	cfg.JWT.PrivateKey = []byte(c.JWTSecret)
	cfg.JWT.Issuer = c.JWTIssuer
	cfg.Session.TTL = c.SessionTTL()
	cfg.Password.Algorithm = c.PasswordHasher
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	return cfg
}

// RedisOptions returns client options for REDIS_*.
func (c *Config) RedisOptions() *redis.Options {
	ioTimeout := durationOr(c.RedisIOTimeout, 3*time.Second)
	return &redis.Options{
		Addr:         c.RedisAddr,
		Username:     c.RedisUsername,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		DialTimeout:  durationOr(c.RedisDialTimeout, 5*time.Second),
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	}
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, _ := parseLevel(c.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
