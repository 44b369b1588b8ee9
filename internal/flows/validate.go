package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/multiAuth/jwt"
	"github.com/MrEthical07/multiAuth/session"
)

// ValidateFailureKind classifies validation failures for root-level mapping.
type ValidateFailureKind int

const (
	ValidateFailureNone ValidateFailureKind = iota
	ValidateFailureToken
	ValidateFailureSessionNotFound
	ValidateFailureStore
)

// ValidateResult carries either the verified identity or the failure.
type ValidateResult struct {
	Failure ValidateFailureKind
	Err     error
	Payload *jwt.Payload
	Session *session.Session
}

type ValidateSessionStore interface {
	Get(ctx context.Context, subjectID, deviceID string) (*session.Session, error)
	Touch(ctx context.Context, subjectID, deviceID string) error
}

// ValidateDeps captures session-gate dependencies.
type ValidateDeps struct {
	Verify       func(string) (*jwt.Payload, error)
	SessionStore ValidateSessionStore
	NotFound     error
}

// RunValidateSession verifies token, looks up the (subject, device) session
// and stamps its activity. A failed activity stamp fails the request.
func RunValidateSession(ctx context.Context, token, deviceID string, deps ValidateDeps) ValidateResult {
	payload, err := deps.Verify(token)
	if err != nil {
		return ValidateResult{Failure: ValidateFailureToken, Err: err}
	}

	sess, err := deps.SessionStore.Get(ctx, payload.SubjectID, deviceID)
	if err != nil {
		if deps.NotFound != nil && errors.Is(err, deps.NotFound) {
			return ValidateResult{Failure: ValidateFailureSessionNotFound, Err: err}
		}
		return ValidateResult{Failure: ValidateFailureStore, Err: err}
	}

	if err := deps.SessionStore.Touch(ctx, payload.SubjectID, deviceID); err != nil {
		return ValidateResult{Failure: ValidateFailureStore, Err: err}
	}

	return ValidateResult{Payload: payload, Session: sess}
}
