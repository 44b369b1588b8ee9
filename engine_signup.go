package multiAuth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/password"
)

// SignUp creates a password account and logs it in.
//
// A phone-number sign-up requires the number to be in the verified state;
// the verification is consumed once the user exists. When both email and
// phone number are given the phone number still has to be verified.
func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (*SessionBundle, error) {
	if e == nil || e.users == nil {
		return nil, ErrEngineNotReady
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)

	if err := e.validateSignUp(req); err != nil {
		e.metricInc(MetricSignUpRejected)
		return nil, err
	}

	if req.PhoneNumber != "" {
		verified, err := e.verifier.IsVerified(ctx, req.PhoneNumber)
		if err != nil {
			e.logStoreError(ctx, "sign up", err)
			return nil, err
		}
		if !verified {
			e.metricInc(MetricSignUpRejected)
			return nil, ErrPhoneNotVerified
		}
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return nil, e.passwordTooShort()
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := e.users.Create(ctx, CreateUserInput{
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicatePhoneNumber) {
			e.metricInc(MetricSignUpDuplicate)
		} else {
			e.logger.ErrorContext(ctx, "create user failed", slog.String("error", err.Error()))
		}
		return nil, createUserError(err)
	}
	e.metricInc(MetricSignUpSuccess)
	e.logger.InfoContext(ctx, "user signed up", slog.String("user_id", u.ID))

	if req.PhoneNumber != "" {
		// The account exists already; a failed consume only leaves the
		// marker to expire on its own.
		if err := e.verifier.Consume(ctx, req.PhoneNumber); err != nil {
			e.logStoreError(ctx, "consume verification", err, slog.String("user_id", u.ID))
		}
	}

	return e.CompleteLogin(ctx, u)
}

func (e *Engine) validateSignUp(req SignUpRequest) error {
	if req.FirstName == "" || req.LastName == "" {
		return ErrNameRequired
	}
	if req.Email == "" && req.PhoneNumber == "" {
		return ErrIdentifierRequired
	}
	if utf8.RuneCountInString(req.Password) < e.minPasswordLength() {
		return e.passwordTooShort()
	}
	return nil
}

func (e *Engine) minPasswordLength() int {
	if e.config.Password.MinLength > 0 {
		return e.config.Password.MinLength
	}
	return password.DefaultMinLength
}

func (e *Engine) passwordTooShort() error {
	n := e.minPasswordLength()
	if n == password.DefaultMinLength {
		return ErrPasswordTooShort
	}
	return autherr.BadRequest(fmt.Sprintf("Password must be at least %d characters long", n))
}

func createUserError(err error) error {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return ErrEmailExists
	case errors.Is(err, ErrDuplicatePhoneNumber):
		return ErrPhoneNumberExists
	default:
		return autherr.Wrap(autherr.KindBadRequest, ErrCreateUser.Message, err)
	}
}
