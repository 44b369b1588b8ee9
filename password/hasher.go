package password

import "errors"

// DefaultMinLength is the shortest password accepted by Hash.
const DefaultMinLength = 6

var (
	// ErrTooShort is returned by Hash for passwords below the minimum length.
	ErrTooShort = errors.New("password too short")
	// ErrMalformedHash is returned by Verify when the stored hash cannot be decoded.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Hasher produces and checks one-way password hashes.
//
// Hash output is self-describing (algorithm and cost parameters are embedded),
// so Verify needs no configuration beyond the encoded string.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Algorithm names a supported hashing scheme.
type Algorithm string

const (
	// AlgorithmArgon2id selects Argon2id in PHC encoding.
	AlgorithmArgon2id Algorithm = "argon2id"
	// AlgorithmBcrypt selects bcrypt in modular crypt encoding.
	AlgorithmBcrypt Algorithm = "bcrypt"
)

// Options selects and tunes a Hasher.
type Options struct {
	Algorithm  Algorithm
	MinLength  int
	Argon2     Config
	BcryptCost int
}

// New builds the Hasher selected by opts.Algorithm. An empty algorithm
// selects Argon2id.
func New(opts Options) (Hasher, error) {
	switch opts.Algorithm {
	case "", AlgorithmArgon2id:
		cfg := opts.Argon2
		if cfg.MinLength == 0 {
			cfg.MinLength = opts.MinLength
		}
		return NewArgon2(cfg)
	case AlgorithmBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.MinLength)
	default:
		return nil, errors.New("unsupported password algorithm")
	}
}

func checkLength(password string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	// raw bytes, no normalization
	if len(password) < minLength {
		return ErrTooShort
	}
	return nil
}
