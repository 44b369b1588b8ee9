package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost used by existing deployments whose
// hashes must keep verifying.
const DefaultBcryptCost = 10

// Bcrypt hashes passwords with bcrypt ($2a$/$2b$ modular crypt strings).
type Bcrypt struct {
	cost      int
	minLength int
}

// NewBcrypt returns a bcrypt hasher. Zero values select DefaultBcryptCost and
// DefaultMinLength.
func NewBcrypt(cost, minLength int) (*Bcrypt, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if minLength < 0 {
		return nil, errors.New("password minimum length must be >= 0")
	}
	return &Bcrypt{cost: cost, minLength: minLength}, nil
}

// Hash returns the bcrypt encoding of password.
func (b *Bcrypt) Hash(password string) (string, error) {
	if err := checkLength(password, b.minLength); err != nil {
		return "", err
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify reports whether password matches encodedHash. A mismatch is not an
// error; a hash that bcrypt cannot decode is.
func (b *Bcrypt) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}
