package autherr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Unauthorized("Invalid token"), http.StatusUnauthorized},
		{NotFound("User not found"), http.StatusNotFound},
		{BadRequest("Email already exists"), http.StatusBadRequest},
		{errors.New("Failed to get session: dial tcp"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", Unauthorized("Session not found")), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Fatalf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestErrorsIsMatchesKindAndMessage(t *testing.T) {
	sentinel := Unauthorized("Invalid credentials")
	built := Unauthorized("Invalid credentials")
	if !errors.Is(built, sentinel) {
		t.Fatal("expected equal kind+message to match")
	}
	if errors.Is(BadRequest("Invalid credentials"), sentinel) {
		t.Fatal("expected different kind not to match")
	}
	if errors.Is(Unauthorized("Invalid token"), sentinel) {
		t.Fatal("expected different message not to match")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("token is expired")
	err := Wrap(KindUnauthorized, cause.Error(), cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "token is expired" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestPublicMessageHidesInternal(t *testing.T) {
	if got := PublicMessage(errors.New("Failed to create session: connection refused")); got != "Internal server error" {
		t.Fatalf("unexpected public message %q", got)
	}
	if got := PublicMessage(NotFound("Verification code not found")); got != "Verification code not found" {
		t.Fatalf("unexpected public message %q", got)
	}
}
