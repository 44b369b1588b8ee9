package multiAuth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/multiAuth/internal/flows"
	"github.com/MrEthical07/multiAuth/jwt"
	"github.com/MrEthical07/multiAuth/otp"
	"github.com/MrEthical07/multiAuth/password"
	"github.com/MrEthical07/multiAuth/provider"
	"github.com/MrEthical07/multiAuth/session"
)

// Engine is the login orchestrator. It turns a resolved user into a session
// bundle and serves the request gate, refresh and sign-out operations.
//
// Engine is safe for concurrent use once returned by Builder.Build.
type Engine struct {
	config       Config
	jwtManager   *jwt.Manager
	sessionStore *session.Store
	verifier     *otp.Verifier
	passwordHash password.Hasher
	users        UserDirectory
	providers    map[string]provider.Exchanger
	metrics      *Metrics
	logger       *slog.Logger
	flowDeps     flows.Deps
}

// Close releases engine resources. The Redis client passed to the builder is
// owned by the caller and stays open.
func (e *Engine) Close() {}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Ping checks that the session backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	_, err := e.sessionStore.Ping(ctx)
	return err
}

// Provider returns the registered exchanger for name.
func (e *Engine) Provider(name string) (provider.Exchanger, bool) {
	if e == nil {
		return nil, false
	}
	ex, ok := e.providers[name]
	return ex, ok
}

// CompleteLogin issues an access and a refresh token for u and opens a new
// device session. The client IP and user agent are read from ctx.
func (e *Engine) CompleteLogin(ctx context.Context, u *User) (*SessionBundle, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	if u == nil || u.ID == "" {
		return nil, errors.New("complete login: user without id")
	}

	res, err := flows.RunCompleteLogin(ctx, flows.LoginRequest{
		SubjectID: u.ID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
	}, e.flowDeps.Login)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.logStoreError(ctx, "complete login", err, slog.String("user_id", u.ID))
		return nil, err
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.logger.InfoContext(ctx, "session created",
		slog.String("user_id", u.ID),
		slog.String("device_id", res.Session.DeviceID),
	)

	return &SessionBundle{
		User:         viewOf(u),
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		DeviceID:     res.Session.DeviceID,
	}, nil
}

// VerifyToken checks signature and expiry of an access or refresh token.
func (e *Engine) VerifyToken(token string) (*jwt.Payload, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	return e.jwtManager.Verify(token)
}

// ValidateSession verifies token, requires a live session for
// (subject, deviceID) and stamps its activity time.
func (e *Engine) ValidateSession(ctx context.Context, token, deviceID string) (*Identity, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	res := flows.RunValidateSession(ctx, token, deviceID, e.flowDeps.Validate)
	switch res.Failure {
	case flows.ValidateFailureNone:
	case flows.ValidateFailureToken:
		e.metricInc(MetricSessionRejected)
		return nil, res.Err
	case flows.ValidateFailureSessionNotFound:
		e.metricInc(MetricSessionRejected)
		return nil, ErrSessionNotFound
	default:
		e.logStoreError(ctx, "validate session", res.Err, slog.String("device_id", deviceID))
		return nil, res.Err
	}

	return &Identity{
		SubjectID: res.Payload.SubjectID,
		DeviceID:  deviceID,
		Session:   res.Session,
	}, nil
}

// Refresh issues a new access token for a verified refresh token payload.
// The refresh token is not rotated and the session store is not consulted.
func (e *Engine) Refresh(ctx context.Context, payload jwt.Payload) (*RefreshResult, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}
	access, err := flows.RunRefresh(payload, e.flowDeps.Refresh)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		return nil, err
	}
	e.metricInc(MetricRefreshSuccess)
	return &RefreshResult{AccessToken: access}, nil
}

// SignOut removes the session of one device. Removing a session that is
// already gone succeeds.
func (e *Engine) SignOut(ctx context.Context, subjectID, deviceID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if err := flows.RunSignOut(ctx, subjectID, deviceID, e.flowDeps.Logout); err != nil {
		e.logStoreError(ctx, "sign out", err, slog.String("user_id", subjectID))
		return err
	}
	e.metricInc(MetricLogout)
	e.logger.InfoContext(ctx, "signed out",
		slog.String("user_id", subjectID),
		slog.String("device_id", deviceID),
	)
	return nil
}

// SignOutAll removes every session of subjectID.
func (e *Engine) SignOutAll(ctx context.Context, subjectID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if err := flows.RunSignOutAll(ctx, subjectID, e.flowDeps.Logout); err != nil {
		e.logStoreError(ctx, "sign out all", err, slog.String("user_id", subjectID))
		return err
	}
	e.metricInc(MetricLogoutAll)
	e.logger.InfoContext(ctx, "signed out everywhere", slog.String("user_id", subjectID))
	return nil
}

// ListSessions returns the live sessions of subjectID, most recent first.
func (e *Engine) ListSessions(ctx context.Context, subjectID string) ([]*session.Session, error) {
	if e == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}
	out, err := flows.RunListSessions(ctx, subjectID, e.flowDeps.Logout)
	if err != nil {
		e.logStoreError(ctx, "list sessions", err, slog.String("user_id", subjectID))
		return nil, err
	}
	return out, nil
}

func (e *Engine) logStoreError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if !errors.Is(err, session.ErrRedisUnavailable) && !errors.Is(err, otp.ErrRedisUnavailable) {
		return
	}
	e.metricInc(MetricSessionStoreError)
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("error", err.Error()))
	for _, a := range attrs {
		args = append(args, a)
	}
	e.logger.ErrorContext(ctx, msg, args...)
}
