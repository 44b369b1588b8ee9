package flows

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/multiAuth/jwt"
)

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	IssueAccess func(subjectID string) (string, error)
}

// RunRefresh issues a new access token for an already verified refresh
// payload. The refresh token is not rotated and no session is consulted.
func RunRefresh(payload jwt.Payload, deps RefreshDeps) (string, error) {
	if payload.SubjectID == "" {
		return "", errors.New("refresh: empty subject")
	}
	access, err := deps.IssueAccess(payload.SubjectID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}
