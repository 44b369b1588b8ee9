// Package provider exchanges federated sign-in callbacks for a normalized
// user profile.
//
// Each [Exchanger] owns one OAuth 2.0 client: it builds the consent URL and
// turns the authorization code returned to the callback into a [Profile].
// Creating or finding the local user is the Engine's job.
package provider

import (
	"context"
	"errors"

	"github.com/MrEthical07/multiAuth/autherr"
)

// Provider names.
const (
	Google = "google"
	Apple  = "apple"
)

// ErrMissingCode is returned when a callback carries no authorization code.
var ErrMissingCode = autherr.BadRequest("Authorization code is missing")

// Profile is the identity reported by a provider, reduced to the fields the
// user directory stores.
type Profile struct {
	Provider   string
	ProviderID string
	Email      string
	// EmailVerified is true only when the provider itself vouches for Email.
	// The Engine links a profile to an existing account by email only then.
	EmailVerified bool
	FirstName     string
	LastName      string
	Picture       string
}

// Callback is what the provider sent back to the redirect URI.
type Callback struct {
	Code string
	// User is Apple's first-login "user" form field: a JSON object with the
	// name the user chose to share. Other providers leave it empty.
	User string
}

// Exchanger turns a provider callback into a Profile.
type Exchanger interface {
	Name() string
	AuthCodeURL(state string) string
	ExchangeProfile(ctx context.Context, cb Callback) (*Profile, error)
}

// exchangeFailed wraps a provider-side failure as Unauthorized.
func exchangeFailed(err error) error {
	var authErr *autherr.Error
	if errors.As(err, &authErr) {
		return err
	}
	return autherr.Wrap(autherr.KindUnauthorized, "Unauthorized", err)
}
