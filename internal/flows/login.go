package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/multiAuth/session"
)

// LoginSessionStore creates the session backing a login.
type LoginSessionStore interface {
	Create(ctx context.Context, subjectID, ip, userAgent string) (*session.Session, error)
}

// LoginDeps captures complete-login dependencies.
type LoginDeps struct {
	IssueAccess  func(subjectID string) (string, error)
	IssueRefresh func(subjectID string) (string, error)
	SessionStore LoginSessionStore
}

// LoginRequest identifies who is logging in and from where.
type LoginRequest struct {
	SubjectID string
	IP        string
	UserAgent string
}

// LoginResult is the token pair plus the session created for it.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Session      *session.Session
}

// RunCompleteLogin issues both tokens and then opens a session. Tokens are
// discarded when the session cannot be stored.
func RunCompleteLogin(ctx context.Context, req LoginRequest, deps LoginDeps) (*LoginResult, error) {
	if req.SubjectID == "" {
		return nil, errors.New("complete login: empty subject")
	}

	access, err := deps.IssueAccess(req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := deps.IssueRefresh(req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	sess, err := deps.SessionStore.Create(ctx, req.SubjectID, req.IP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh, Session: sess}, nil
}

// CredentialFailure classifies why a password check did not pass.
type CredentialFailure int

const (
	CredentialOK CredentialFailure = iota
	CredentialUserNotFound
	CredentialNoPassword
	CredentialMismatch
	CredentialError
)

// CredentialDeps captures password-check dependencies.
type CredentialDeps struct {
	VerifyPassword func(password, encodedHash string) (bool, error)
}

// CredentialInput is what the directory returned for the supplied identifier.
type CredentialInput struct {
	Found        bool
	PasswordHash string
	Password     string
}

// RunCheckCredential decides whether Password unlocks the account. Accounts
// created through a federated provider carry no hash and are reported as
// CredentialNoPassword.
func RunCheckCredential(in CredentialInput, deps CredentialDeps) (CredentialFailure, error) {
	if !in.Found {
		return CredentialUserNotFound, nil
	}
	if in.PasswordHash == "" {
		return CredentialNoPassword, nil
	}
	ok, err := deps.VerifyPassword(in.Password, in.PasswordHash)
	if err != nil {
		return CredentialError, err
	}
	if !ok {
		return CredentialMismatch, nil
	}
	return CredentialOK, nil
}
