package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/internal/config"
	"github.com/MrEthical07/multiAuth/session"
	"github.com/MrEthical07/multiAuth/userstore"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return session.NewStore(rdb, session.DefaultPrefix, time.Hour)
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	var out bytes.Buffer
	require.NoError(t, listSessions(ctx, store, "user-1", &out))
	assert.Equal(t, "no sessions for user-1\n", out.String())

	a, err := store.Create(ctx, "user-1", "10.0.0.1", "curl/8")
	require.NoError(t, err)
	b, err := store.Create(ctx, "user-1", "10.0.0.2", "firefox")
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, listSessions(ctx, store, "user-1", &out))
	text := out.String()
	assert.Contains(t, text, "DEVICE")
	assert.Contains(t, text, a.DeviceID)
	assert.Contains(t, text, b.DeviceID)
	assert.Contains(t, text, "10.0.0.2")
	assert.Contains(t, text, "firefox")
}

func TestRevokeSessions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	a, err := store.Create(ctx, "user-1", "", "")
	require.NoError(t, err)
	_, err = store.Create(ctx, "user-1", "", "")
	require.NoError(t, err)
	other, err := store.Create(ctx, "user-2", "", "")
	require.NoError(t, err)

	var out bytes.Buffer
	require.Error(t, revokeSessions(ctx, store, "user-1", "", false, &out))
	require.Error(t, revokeSessions(ctx, store, "user-1", a.DeviceID, true, &out))

	require.NoError(t, revokeSessions(ctx, store, "user-1", a.DeviceID, false, &out))
	left, err := store.ListAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, left, 1)

	require.NoError(t, revokeSessions(ctx, store, "user-1", "", true, &out))
	left, err = store.ListAll(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = store.Get(ctx, "user-2", other.DeviceID)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "revoked every session of user-1")
}

func TestSessionStoreSharesEngineKeys(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PASSWORD_HASHER", "bcrypt")
	cfg, err := config.LoadFile("")
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := userstore.NewMemory()
	engine, err := buildEngine(cfg, rdb, users, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx := multiAuth.WithClientIP(context.Background(), "10.1.1.1")
	bundle, err := engine.SignUp(ctx, multiAuth.SignUpRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	u, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)

	store := sessionStore(cfg, rdb)
	assert.Equal(t, cfg.SessionTTL(), store.TTL())

	var out bytes.Buffer
	require.NoError(t, listSessions(ctx, store, u.ID, &out))
	assert.Contains(t, out.String(), bundle.DeviceID)

	require.NoError(t, revokeSessions(ctx, store, u.ID, bundle.DeviceID, false, &out))
	_, err = engine.ValidateSession(ctx, bundle.AccessToken, bundle.DeviceID)
	assert.Error(t, err)
}
