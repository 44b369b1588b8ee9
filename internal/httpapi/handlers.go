package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/middleware"
	"github.com/MrEthical07/multiAuth/session"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = autherr.BadRequest("Invalid request body")

// SignInRequest is the JSON body for POST /sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PhoneSignInRequest is the JSON body for POST /sign-in-w-phone-number.
type PhoneSignInRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// HealthResponse is returned from GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// SignUp handles POST /sign-up.
func (a *API) SignUp(w http.ResponseWriter, r *http.Request) {
	var req multiAuth.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	bundle, err := a.engine.SignUp(r.Context(), req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, bundle)
}

// SignIn handles POST /sign-in.
func (a *API) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	a.login(w, r, multiAuth.PasswordCredentials{Email: req.Email, Password: req.Password})
}

// SignInWithPhoneNumber handles POST /sign-in-w-phone-number.
func (a *API) SignInWithPhoneNumber(w http.ResponseWriter, r *http.Request) {
	var req PhoneSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	a.login(w, r, multiAuth.PhoneCredentials{PhoneNumber: req.PhoneNumber, Password: req.Password})
}

func (a *API) login(w http.ResponseWriter, r *http.Request, creds multiAuth.Credentials) {
	bundle, err := a.engine.Login(r.Context(), creds)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, bundle)
}

// RefreshToken handles POST /refresh-token behind RequireRefreshToken.
func (a *API) RefreshToken(w http.ResponseWriter, r *http.Request) {
	payload, ok := middleware.RefreshPayloadFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, r, errors.New("refresh payload missing from context"))
		return
	}
	res, err := a.engine.Refresh(r.Context(), payload)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

// SignOut handles POST /sign-out behind RequireSignOutSingle.
func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := a.engine.SignOut(r.Context(), id.SubjectID, id.DeviceID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SignOutAll handles POST /sign-out-all behind RequireSignOutAll.
func (a *API) SignOutAll(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := a.engine.SignOutAll(r.Context(), id.SubjectID); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ListSessions handles GET /sessions behind RequireSession.
func (a *API) ListSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sessions, err := a.engine.ListSessions(r.Context(), id.SubjectID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*session.Session{}
	}
	middleware.WriteJSON(w, http.StatusOK, sessions)
}

// RevokeSession handles DELETE /sessions/{deviceId}: it ends one device
// session of the caller.
func (a *API) RevokeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := a.engine.SignOut(r.Context(), id.SubjectID, chi.URLParam(r, "deviceId")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetOTP handles POST /get-otp/{phoneNumber}.
func (a *API) GetOTP(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.SendVerificationCode(r.Context(), chi.URLParam(r, "phoneNumber")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// VerifyOTP handles POST /verify-otp/{phoneNumber}/{code}.
func (a *API) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ok, err := a.engine.VerifyCode(r.Context(), chi.URLParam(r, "phoneNumber"), chi.URLParam(r, "code"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, ok)
}

// Health handles GET /healthz by pinging Redis.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if err := a.engine.Ping(r.Context()); err != nil {
		a.logger.WarnContext(r.Context(), "health check failed", "error", err)
		middleware.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func identity(w http.ResponseWriter, r *http.Request) (*multiAuth.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok || id == nil {
		middleware.WriteError(w, r, errors.New("identity missing from context"))
		return nil, false
	}
	return id, true
}
