package multiAuth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MrEthical07/multiAuth/internal/flows"
	"github.com/MrEthical07/multiAuth/provider"
)

// Login resolves creds to a user and completes the login.
//
// Password and phone credentials fail with ErrUserNotFound,
// ErrFederatedAccount or ErrInvalidCredentials. Federated credentials are
// exchanged with the named provider; an unknown user is created from the
// provider profile.
func (e *Engine) Login(ctx context.Context, creds Credentials) (*SessionBundle, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	var (
		u   *User
		err error
	)
	switch c := creds.(type) {
	case PasswordCredentials:
		u, err = e.loginWithPassword(ctx, c.Password, func(ctx context.Context) (*User, error) {
			return e.users.FindByEmail(ctx, strings.TrimSpace(c.Email))
		})
	case PhoneCredentials:
		u, err = e.loginWithPassword(ctx, c.Password, func(ctx context.Context) (*User, error) {
			return e.users.FindByPhoneNumber(ctx, strings.TrimSpace(c.PhoneNumber))
		})
	case FederatedCredentials:
		u, err = e.loginWithProvider(ctx, c)
	default:
		return nil, errors.New("unsupported credentials")
	}
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	return e.CompleteLogin(ctx, u)
}

func (e *Engine) loginWithPassword(ctx context.Context, secret string, find func(context.Context) (*User, error)) (*User, error) {
	u, err := find(ctx)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	in := flows.CredentialInput{Found: u != nil, Password: secret}
	if u != nil {
		in.PasswordHash = u.PasswordHash
	}

	failure, err := flows.RunCheckCredential(in, e.flowDeps.Credential)
	switch failure {
	case flows.CredentialOK:
		return u, nil
	case flows.CredentialUserNotFound:
		return nil, ErrUserNotFound
	case flows.CredentialNoPassword:
		return nil, ErrFederatedAccount
	case flows.CredentialMismatch:
		return nil, ErrInvalidCredentials
	default:
		e.logger.WarnContext(ctx, "stored password hash rejected",
			slog.String("user_id", u.ID),
			slog.String("error", err.Error()),
		)
		return nil, ErrInvalidCredentials
	}
}

// loginWithProvider finds the user by provider id, then by email when the
// provider verified it, and creates one when neither matches. An unverified
// email that is already on file is rejected with ErrEmailExists.
func (e *Engine) loginWithProvider(ctx context.Context, c FederatedCredentials) (*User, error) {
	ex, ok := e.providers[c.Provider]
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	profile, err := ex.ExchangeProfile(ctx, c.Callback)
	if err != nil {
		e.logger.WarnContext(ctx, "provider exchange failed",
			slog.String("provider", c.Provider),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	u, err := e.users.FindByProviderID(ctx, profile.ProviderID, profile.Provider)
	if err != nil {
		return nil, fmt.Errorf("find user by provider id: %w", err)
	}
	if u == nil && profile.Email != "" && profile.EmailVerified {
		u, err = e.users.FindByEmail(ctx, profile.Email)
		if err != nil {
			return nil, fmt.Errorf("find user by email: %w", err)
		}
	}
	if u != nil {
		e.metricInc(MetricFederatedLogin)
		return u, nil
	}

	u, err = e.users.Create(ctx, createInputFromProfile(profile))
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			e.logger.WarnContext(ctx, "provider email unverified and already on file",
				slog.String("provider", profile.Provider),
			)
		}
		return nil, createUserError(err)
	}
	e.metricInc(MetricSignUpSuccess)
	e.metricInc(MetricFederatedLogin)
	e.logger.InfoContext(ctx, "user created from provider",
		slog.String("user_id", u.ID),
		slog.String("provider", profile.Provider),
	)
	return u, nil
}

func createInputFromProfile(p *provider.Profile) CreateUserInput {
	return CreateUserInput{
		Email:      p.Email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Picture:    p.Picture,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
	}
}
