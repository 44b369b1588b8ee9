package userstore

import (
	"context"
	"errors"
	"sync"
	"time"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/google/uuid"
)

// Memory is a process-local UserDirectory for development and tests.
type Memory struct {
	mu    sync.RWMutex
	users map[string]*multiAuth.User
	now   func() time.Time
}

var _ multiAuth.UserDirectory = (*Memory)(nil)

// NewMemory returns an empty Memory directory.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]*multiAuth.User), now: time.Now}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*multiAuth.User, error) {
	if email == "" {
		return nil, nil
	}
	return m.find(func(u *multiAuth.User) bool { return u.Email == email }), nil
}

func (m *Memory) FindByPhoneNumber(_ context.Context, phoneNumber string) (*multiAuth.User, error) {
	if phoneNumber == "" {
		return nil, nil
	}
	return m.find(func(u *multiAuth.User) bool { return u.PhoneNumber == phoneNumber }), nil
}

func (m *Memory) FindByProviderID(_ context.Context, providerID, provider string) (*multiAuth.User, error) {
	if providerID == "" || provider == "" {
		return nil, nil
	}
	return m.find(func(u *multiAuth.User) bool {
		return u.ProviderID == providerID && u.Provider == provider
	}), nil
}

// Create stores a new user with a random id.
func (m *Memory) Create(_ context.Context, in multiAuth.CreateUserInput) (*multiAuth.User, error) {
	if in.Email == "" && in.PhoneNumber == "" {
		return nil, errors.New("email or phone number required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if in.Email != "" && u.Email == in.Email {
			return nil, multiAuth.ErrDuplicateEmail
		}
		if in.PhoneNumber != "" && u.PhoneNumber == in.PhoneNumber {
			return nil, multiAuth.ErrDuplicatePhoneNumber
		}
	}

	u := &multiAuth.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Picture:      in.Picture,
		Provider:     in.Provider,
		ProviderID:   in.ProviderID,
		CreatedAt:    m.now().UTC(),
	}
	m.users[u.ID] = u

	out := *u
	return &out, nil
}

// Len returns the number of stored users.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

func (m *Memory) find(match func(*multiAuth.User) bool) *multiAuth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out
		}
	}
	return nil
}
