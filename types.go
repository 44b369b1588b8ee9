package multiAuth

import (
	"context"
	"time"

	"github.com/MrEthical07/multiAuth/provider"
	"github.com/MrEthical07/multiAuth/session"
)

// User is the directory record the Engine authenticates against. Either Email
// or PhoneNumber is set. PasswordHash is empty for accounts created through a
// federated provider.
type User struct {
	ID           string
	Email        string
	PhoneNumber  string
	PasswordHash string
	FirstName    string
	LastName     string
	Picture      string
	Provider     string
	ProviderID   string
	CreatedAt    time.Time
}

// CreateUserInput is what the Engine hands to UserDirectory.Create. The
// directory assigns ID and CreatedAt.
type CreateUserInput struct {
	Email        string
	PhoneNumber  string
	PasswordHash string
	FirstName    string
	LastName     string
	Picture      string
	Provider     string
	ProviderID   string
}

// UserDirectory is the persistent user store. Lookups return (nil, nil) when
// no user matches. Create reports uniqueness violations as ErrDuplicateEmail
// or ErrDuplicatePhoneNumber.
//
//	Implementations: userstore.Memory, userstore.SQL
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhoneNumber(ctx context.Context, phoneNumber string) (*User, error)
	FindByProviderID(ctx context.Context, providerID, provider string) (*User, error)
	Create(ctx context.Context, in CreateUserInput) (*User, error)
}

// UserView is the public part of a User returned to clients.
type UserView struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Picture     string `json:"picture,omitempty"`
}

func viewOf(u *User) UserView {
	return UserView{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Picture:     u.Picture,
	}
}

// SessionBundle is the result of every successful authentication.
type SessionBundle struct {
	User         UserView `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	DeviceID     string   `json:"deviceId"`
}

// RefreshResult carries the access token minted by Refresh. The refresh
// token is not rotated.
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
}

// Identity is what the request gate attaches to an authenticated request.
// Session is nil for gates that do not look the session up.
type Identity struct {
	SubjectID string
	DeviceID  string
	Session   *session.Session
}

// Credentials is one of PasswordCredentials, PhoneCredentials or
// FederatedCredentials.
type Credentials interface {
	credentials()
}

// PasswordCredentials authenticate with email and password.
type PasswordCredentials struct {
	Email    string
	Password string
}

// PhoneCredentials authenticate with phone number and password.
type PhoneCredentials struct {
	PhoneNumber string
	Password    string
}

// FederatedCredentials carry a provider callback to be exchanged for a
// profile.
type FederatedCredentials struct {
	Provider string
	Callback provider.Callback
}

func (PasswordCredentials) credentials()  {}
func (PhoneCredentials) credentials()     {}
func (FederatedCredentials) credentials() {}

// SignUpRequest creates a password account. PhoneNumber sign-ups require the
// number to be verified first through SendVerificationCode and VerifyCode.
type SignUpRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}
