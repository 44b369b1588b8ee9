package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix is the key namespace for verification records.
	DefaultPrefix = "verification_code"
	// DefaultCodeTTL bounds how long an issued code can be checked.
	DefaultCodeTTL = 5 * time.Minute
	// DefaultVerifiedTTL bounds how long a checked number stays verified.
	DefaultVerifiedTTL = 10 * time.Minute

	verifiedMarker = "verified"
)

// ErrRedisUnavailable matches every store failure caused by Redis I/O.
var ErrRedisUnavailable = errors.New("verification redis unavailable")

// OpError reports a failed store operation as "Failed to <op>: <cause>".
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("Failed to %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{ErrRedisUnavailable, e.Err}
}

// State is the lifecycle position of a phone number's verification record.
type State uint8

const (
	// StateAbsent means no code was issued or the record expired.
	StateAbsent State = iota
	// StatePending means a code was issued and not yet matched.
	StatePending
	// StateVerified means a code was matched within the verified window.
	StateVerified
)

// Record is the stored value for one phone number.
type Record struct {
	State State
	Code  string
}

// Store keeps one string key per phone number at <prefix>:<phone>. The value
// is either the pending code or the verified marker.
type Store struct {
	redis       redis.UniversalClient
	prefix      string
	codeTTL     time.Duration
	verifiedTTL time.Duration
}

// NewStore returns a Store. Zero durations and an empty prefix select the
// package defaults.
func NewStore(rdb redis.UniversalClient, prefix string, codeTTL, verifiedTTL time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if verifiedTTL <= 0 {
		verifiedTTL = DefaultVerifiedTTL
	}
	return &Store{redis: rdb, prefix: prefix, codeTTL: codeTTL, verifiedTTL: verifiedTTL}
}

func (s *Store) key(phone string) string {
	return s.prefix + ":" + phone
}

// SaveCode overwrites any record for phone with a pending code.
func (s *Store) SaveCode(ctx context.Context, phone, code string) error {
	if err := s.redis.Set(ctx, s.key(phone), code, s.codeTTL).Err(); err != nil {
		return &OpError{Op: "create verification code", Err: err}
	}
	return nil
}

// MarkVerified replaces the record for phone with the verified marker.
func (s *Store) MarkVerified(ctx context.Context, phone string) error {
	if err := s.redis.Set(ctx, s.key(phone), verifiedMarker, s.verifiedTTL).Err(); err != nil {
		return &OpError{Op: "change verification code", Err: err}
	}
	return nil
}

// Load reads the record for phone.
func (s *Store) Load(ctx context.Context, phone string) (Record, error) {
	v, err := s.redis.Get(ctx, s.key(phone)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return Record{State: StateAbsent}, nil
	case err != nil:
		return Record{}, &OpError{Op: "get verification code", Err: err}
	case v == verifiedMarker:
		return Record{State: StateVerified}, nil
	default:
		return Record{State: StatePending, Code: v}, nil
	}
}

// Delete removes the record for phone.
func (s *Store) Delete(ctx context.Context, phone string) error {
	if err := s.redis.Del(ctx, s.key(phone)).Err(); err != nil {
		return &OpError{Op: "consume verification code", Err: err}
	}
	return nil
}
