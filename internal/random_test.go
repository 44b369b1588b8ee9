package internal

import (
	"encoding/base64"
	"testing"
)

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken failed: %v", err)
	}
	b, err := RandomToken(32)
	if err != nil {
		t.Fatalf("RandomToken failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}

	raw, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("token is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes, got %d", len(raw))
	}
}

func TestRandomTokenRejectsShortSize(t *testing.T) {
	if _, err := RandomToken(8); err == nil {
		t.Fatal("expected error for 8-byte token")
	}
}
