package multiAuth

import (
	"errors"

	"github.com/MrEthical07/multiAuth/autherr"
)

var (
	// ErrUserNotFound is returned by password logins for unknown identifiers.
	ErrUserNotFound = autherr.NotFound("User not found")
	// ErrFederatedAccount is returned when a password login targets an
	// account that was created through Google or Apple.
	ErrFederatedAccount = autherr.Unauthorized("Try signing in with Google or Apple")
	// ErrInvalidCredentials is returned on password mismatch.
	ErrInvalidCredentials = autherr.Unauthorized("Invalid credentials")
	// ErrUnsupportedProvider is returned for federated logins naming an
	// identity provider that was not registered on the builder.
	ErrUnsupportedProvider = autherr.BadRequest("Unsupported identity provider")

	// ErrSessionNotFound is returned by ValidateSession when the token is
	// valid but its device session is gone.
	ErrSessionNotFound = autherr.Unauthorized("Session not found")

	// ErrNameRequired is returned by SignUp without first and last name.
	ErrNameRequired = autherr.BadRequest("First name and last name are required")
	// ErrIdentifierRequired is returned by SignUp without email or phone number.
	ErrIdentifierRequired = autherr.BadRequest("Either email or phone number is required")
	// ErrPasswordTooShort is returned by SignUp for short passwords.
	ErrPasswordTooShort = autherr.BadRequest("Password must be at least 6 characters long")
	// ErrPhoneNotVerified is returned by a phone sign-up without a verified code.
	ErrPhoneNotVerified = autherr.BadRequest("Phone number not verified")
	// ErrEmailExists is returned by SignUp for an email already on file.
	ErrEmailExists = autherr.BadRequest("Email already exists")
	// ErrPhoneNumberExists is returned by SignUp for a phone number already on file.
	ErrPhoneNumberExists = autherr.BadRequest("Phone number already exists")
	// ErrCreateUser is returned when the directory rejects a new user for any
	// other reason.
	ErrCreateUser = autherr.BadRequest("Error creating user")

	// ErrDuplicateEmail is returned by UserDirectory.Create implementations.
	ErrDuplicateEmail = errors.New("duplicate email")
	// ErrDuplicatePhoneNumber is returned by UserDirectory.Create implementations.
	ErrDuplicatePhoneNumber = errors.New("duplicate phone number")

	// ErrEngineNotReady is returned by a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
