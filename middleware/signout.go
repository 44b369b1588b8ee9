package middleware

import (
	"net/http"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/jwt"
)

var (
	errTokenMissing       = autherr.Unauthorized("Token is missing")
	errSignOutDeviceID    = autherr.BadRequest("Device ID is missing")
	errSignOutAllNotFound = autherr.Unauthorized("Token not found")
)

// RequireSignOutSingle admits requests with a valid access token and a device
// id. The session itself is not looked up, so signing out an already expired
// session still succeeds.
func RequireSignOutSingle(engine *multiAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, r, multiAuth.ErrEngineNotReady)
				return
			}

			token, ok := jwt.ExtractBearer(r)
			if !ok {
				WriteError(w, r, errTokenMissing)
				return
			}
			deviceID := r.Header.Get(HeaderDeviceID)
			if deviceID == "" {
				WriteError(w, r, errSignOutDeviceID)
				return
			}

			payload, err := engine.VerifyToken(token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			id := &multiAuth.Identity{SubjectID: payload.SubjectID, DeviceID: deviceID}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireSignOutAll admits requests with a valid access token.
func RequireSignOutAll(engine *multiAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, r, multiAuth.ErrEngineNotReady)
				return
			}

			token, ok := jwt.ExtractBearer(r)
			if !ok {
				WriteError(w, r, errSignOutAllNotFound)
				return
			}

			payload, err := engine.VerifyToken(token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			id := &multiAuth.Identity{SubjectID: payload.SubjectID}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
