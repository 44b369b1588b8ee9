package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"

	"github.com/MrEthical07/multiAuth/autherr"
)

const (
	minCode = 1000
	maxCode = 9999
)

var (
	// ErrCodeNotFound is returned by Check when there is no pending code.
	ErrCodeNotFound = autherr.NotFound("Verification code not found")
	// ErrSendFailed is returned by Issue when the SMS could not be delivered.
	ErrSendFailed = autherr.BadRequest("Failed to send SMS. Please try again later")
)

// Sender delivers a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, message, to string) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, message, to string) error

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, message, to string) error {
	return f(ctx, message, to)
}

// Verifier runs the phone verification state machine:
//
//	absent -> pending (Issue) -> verified (Check match) -> absent (TTL or Consume)
//
// There is no locking. A re-issue that lands between another request's
// IsVerified and Consume silently replaces the verified state.
type Verifier struct {
	store    *Store
	sender   Sender
	generate func() (string, error)
}

// NewVerifier returns a Verifier persisting through store and delivering
// through sender.
func NewVerifier(store *Store, sender Sender) *Verifier {
	return &Verifier{store: store, sender: sender, generate: GenerateCode}
}

// GenerateCode returns a uniformly random code in [1000, 9999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+minCode, 10), nil
}

// Message is the SMS body carrying code.
func Message(code string) string {
	return "Your verification code is: " + code
}

// Issue stores a fresh code for phone, replacing any previous record, then
// sends it. The code stays stored when sending fails.
func (v *Verifier) Issue(ctx context.Context, phone string) error {
	code, err := v.generate()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := v.store.SaveCode(ctx, phone, code); err != nil {
		return err
	}
	if v.sender == nil {
		return ErrSendFailed
	}
	if err := v.sender.Send(ctx, Message(code), phone); err != nil {
		return autherr.Wrap(autherr.KindBadRequest, ErrSendFailed.Message, err)
	}
	return nil
}

// Check compares input with the pending code for phone. A match moves the
// number to the verified state. A mismatch changes nothing.
func (v *Verifier) Check(ctx context.Context, input, phone string) (bool, error) {
	rec, err := v.store.Load(ctx, phone)
	if err != nil {
		return false, err
	}
	if rec.State != StatePending {
		return false, ErrCodeNotFound
	}
	if subtle.ConstantTimeCompare([]byte(input), []byte(rec.Code)) != 1 {
		return false, nil
	}
	if err := v.store.MarkVerified(ctx, phone); err != nil {
		return false, err
	}
	return true, nil
}

// IsVerified reports whether phone is in the verified state. It never writes.
func (v *Verifier) IsVerified(ctx context.Context, phone string) (bool, error) {
	rec, err := v.store.Load(ctx, phone)
	if err != nil {
		return false, err
	}
	return rec.State == StateVerified, nil
}

// Consume ends the verified state of phone after it has been used.
func (v *Verifier) Consume(ctx context.Context, phone string) error {
	return v.store.Delete(ctx, phone)
}
