package multiAuth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/multiAuth/provider"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret")
	cfg.Password.Algorithm = "bcrypt"
	cfg.Password.BcryptCost = 4
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

type sentSMS struct {
	message string
	to      string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentSMS
	err  error
}

func (s *recordingSender) Send(_ context.Context, message, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentSMS{message: message, to: to})
	return nil
}

func (s *recordingSender) last() sentSMS {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentSMS{}
	}
	return s.sent[len(s.sent)-1]
}

type stubExchanger struct {
	name    string
	profile *provider.Profile
	err     error
}

func (s *stubExchanger) Name() string                   { return s.name }
func (s *stubExchanger) AuthCodeURL(state string) string { return "https://idp.test/auth?state=" + state }
func (s *stubExchanger) ExchangeProfile(context.Context, provider.Callback) (*provider.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := *s.profile
	return &p, nil
}

// fakeDirectory is an in-memory UserDirectory for engine tests.
type fakeDirectory struct {
	mu      sync.Mutex
	users   []*User
	nextID  int
	failErr error
}

func (d *fakeDirectory) find(match func(*User) bool) *User {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if match(u) {
			c := *u
			return &c
		}
	}
	return nil
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (*User, error) {
	return d.find(func(u *User) bool { return email != "" && u.Email == email }), nil
}

func (d *fakeDirectory) FindByPhoneNumber(_ context.Context, phone string) (*User, error) {
	return d.find(func(u *User) bool { return phone != "" && u.PhoneNumber == phone }), nil
}

func (d *fakeDirectory) FindByProviderID(_ context.Context, providerID, prov string) (*User, error) {
	return d.find(func(u *User) bool { return u.ProviderID == providerID && u.Provider == prov }), nil
}

func (d *fakeDirectory) Create(_ context.Context, in CreateUserInput) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failErr != nil {
		return nil, d.failErr
	}
	for _, u := range d.users {
		if in.Email != "" && u.Email == in.Email {
			return nil, ErrDuplicateEmail
		}
		if in.PhoneNumber != "" && u.PhoneNumber == in.PhoneNumber {
			return nil, ErrDuplicatePhoneNumber
		}
	}
	d.nextID++
	u := &User{
		ID:           "user-" + strconv.Itoa(d.nextID),
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Picture:      in.Picture,
		Provider:     in.Provider,
		ProviderID:   in.ProviderID,
		CreatedAt:    time.Now(),
	}
	d.users = append(d.users, u)
	c := *u
	return &c, nil
}

type testEngine struct {
	*Engine
	mr     *miniredis.Miniredis
	users  *fakeDirectory
	sender *recordingSender
}

func newTestEngine(t *testing.T, exchangers ...provider.Exchanger) testEngine {
	t.Helper()

	mr, rdb := newTestRedis(t)
	users := &fakeDirectory{}
	sender := &recordingSender{}

	b := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserDirectory(users).
		WithSMSSender(sender)
	for _, ex := range exchangers {
		b.WithProvider(ex)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return testEngine{Engine: engine, mr: mr, users: users, sender: sender}
}
