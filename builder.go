package multiAuth

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrEthical07/multiAuth/internal/flows"
	"github.com/MrEthical07/multiAuth/jwt"
	"github.com/MrEthical07/multiAuth/otp"
	"github.com/MrEthical07/multiAuth/password"
	"github.com/MrEthical07/multiAuth/provider"
	"github.com/MrEthical07/multiAuth/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an Engine. Configure it during start-up, call Build once
// and discard it.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users     UserDirectory
	sender    otp.Sender
	hasher    password.Hasher
	providers map[string]provider.Exchanger
	logger    *slog.Logger

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config:    DefaultConfig(),
		providers: make(map[string]provider.Exchanger),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client shared by the session and verification stores.
// The Engine never closes it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the user store. Required.
func (b *Builder) WithUserDirectory(users UserDirectory) *Builder {
	b.users = users
	return b
}

// WithSMSSender sets the transport for verification codes. Without one,
// SendVerificationCode fails with the send error.
func (b *Builder) WithSMSSender(sender otp.Sender) *Builder {
	b.sender = sender
	return b
}

// WithHasher overrides the hasher selected by Config.Password.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithProvider registers a federated identity provider under ex.Name().
func (b *Builder) WithProvider(ex provider.Exchanger) *Builder {
	if ex != nil {
		b.providers[ex.Name()] = ex
	}
	return b
}

// WithLogger sets the structured logger. Defaults to a discarding logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the ValidateSession latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user directory required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// -------- TOKENS --------
	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, fmt.Errorf("jwt manager: %w", err)
	}

	// -------- PASSWORDS --------
	hasher := b.hasher
	if hasher == nil {
		hasher, err = password.New(password.Options{
			Algorithm:  password.Algorithm(cfg.Password.Algorithm),
			MinLength:  cfg.Password.MinLength,
			Argon2:     cfg.Password.Argon2,
			BcryptCost: cfg.Password.BcryptCost,
		})
		if err != nil {
			return nil, fmt.Errorf("password hasher: %w", err)
		}
	}

	// -------- STORES --------
	sessions := session.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.TTL)
	codes := otp.NewStore(b.redis, cfg.Verification.RedisPrefix, cfg.Verification.CodeTTL, cfg.Verification.VerifiedTTL)

	providers := make(map[string]provider.Exchanger, len(b.providers))
	for name, ex := range b.providers {
		providers[name] = ex
	}

	engine := &Engine{
		config:       cfg,
		jwtManager:   jm,
		sessionStore: sessions,
		verifier:     otp.NewVerifier(codes, b.sender),
		passwordHash: hasher,
		users:        b.users,
		providers:    providers,
		metrics:      NewMetrics(cfg.Metrics),
		logger:       logger,
	}
	engine.flowDeps = flows.Deps{
		Login: flows.LoginDeps{
			IssueAccess:  jm.IssueAccess,
			IssueRefresh: jm.IssueRefresh,
			SessionStore: sessions,
		},
		Credential: flows.CredentialDeps{
			VerifyPassword: hasher.Verify,
		},
		Validate: flows.ValidateDeps{
			Verify:       jm.Verify,
			SessionStore: sessions,
			NotFound:     session.ErrNotFound,
		},
		Refresh: flows.RefreshDeps{
			IssueAccess: jm.IssueAccess,
		},
		Logout: flows.LogoutDeps{
			SessionStore: sessions,
		},
	}

	b.built = true

	return engine, nil
}
