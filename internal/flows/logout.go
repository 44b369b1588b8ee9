package flows

import (
	"context"

	"github.com/MrEthical07/multiAuth/session"
)

type LogoutSessionStore interface {
	Remove(ctx context.Context, subjectID, deviceID string) error
	RemoveAll(ctx context.Context, subjectID string) error
	ListAll(ctx context.Context, subjectID string) ([]*session.Session, error)
}

// LogoutDeps captures sign-out dependencies.
type LogoutDeps struct {
	SessionStore LogoutSessionStore
}

func RunSignOut(ctx context.Context, subjectID, deviceID string, deps LogoutDeps) error {
	return deps.SessionStore.Remove(ctx, subjectID, deviceID)
}

func RunSignOutAll(ctx context.Context, subjectID string, deps LogoutDeps) error {
	return deps.SessionStore.RemoveAll(ctx, subjectID)
}

// RunListSessions returns the subject's live sessions.
func RunListSessions(ctx context.Context, subjectID string, deps LogoutDeps) ([]*session.Session, error) {
	return deps.SessionStore.ListAll(ctx, subjectID)
}
