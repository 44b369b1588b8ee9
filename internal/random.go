package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

const minTokenBytes = 16

// RandomToken returns size random bytes encoded as unpadded base64url.
func RandomToken(size int) (string, error) {
	if size < minTokenBytes {
		return "", errors.New("random token must carry at least 16 bytes")
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
