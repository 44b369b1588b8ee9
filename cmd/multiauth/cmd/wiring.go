package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/internal/config"
	"github.com/MrEthical07/multiAuth/otp"
	"github.com/MrEthical07/multiAuth/provider"
	"github.com/MrEthical07/multiAuth/session"
	"github.com/MrEthical07/multiAuth/sms"
	"github.com/MrEthical07/multiAuth/userstore"
)

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(cfg.RedisOptions())
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

func openUserStore(ctx context.Context, cfg *config.Config) (*userstore.SQL, error) {
	store, err := userstore.Open(ctx, userstore.Dialect(cfg.DatabaseDriver), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}
	return store, nil
}

// sessionStore addresses the same keys as the engine built from cfg.
func sessionStore(cfg *config.Config, rdb redis.UniversalClient) *session.Store {
	sc := cfg.Engine().Session
	return session.NewStore(rdb, sc.RedisPrefix, sc.TTL)
}

func smsSender(cfg *config.Config, logger *slog.Logger) otp.Sender {
	if cfg.TwilioEnabled() {
		return sms.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	}
	logger.Warn("twilio not configured, verification codes are only logged")
	return sms.LogSender{Logger: logger}
}

func providers(cfg *config.Config) ([]provider.Exchanger, error) {
	var out []provider.Exchanger
	if cfg.GoogleEnabled() {
		g, err := provider.NewGoogle(provider.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if cfg.AppleEnabled() {
		key, err := os.ReadFile(cfg.ApplePrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read apple private key: %w", err)
		}
		a, err := provider.NewApple(provider.AppleConfig{
			ClientID:    cfg.AppleClientID,
			TeamID:      cfg.AppleTeamID,
			KeyID:       cfg.AppleKeyID,
			PrivateKey:  key,
			CallbackURL: cfg.AppleCallbackURL,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func buildEngine(cfg *config.Config, rdb redis.UniversalClient, users multiAuth.UserDirectory, logger *slog.Logger) (*multiAuth.Engine, error) {
	exchangers, err := providers(cfg)
	if err != nil {
		return nil, err
	}

	b := multiAuth.New().
		WithConfig(cfg.Engine()).
		WithRedis(rdb).
		WithUserDirectory(users).
		WithSMSSender(smsSender(cfg, logger)).
		WithLogger(logger)
	for _, ex := range exchangers {
		b = b.WithProvider(ex)
	}
	return b.Build()
}
