package middleware

import (
	"context"
	"net/http"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/jwt"
)

// HeaderDeviceID carries the device id returned in the session bundle.
const HeaderDeviceID = "X-Device-Id"

var (
	errAccessTokenMissing = autherr.Unauthorized("Access token is missing")
	errDeviceIDMissing    = autherr.Unauthorized("Device ID is missing")
)

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by one of the gates.
func IdentityFromContext(ctx context.Context) (*multiAuth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*multiAuth.Identity)
	return id, ok
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *multiAuth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// RequireSession admits requests carrying a valid access token and the device
// id of a live session, and stamps that session's activity time.
func RequireSession(engine *multiAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, r, multiAuth.ErrEngineNotReady)
				return
			}

			token, ok := jwt.ExtractBearer(r)
			if !ok {
				WriteError(w, r, errAccessTokenMissing)
				return
			}
			deviceID := r.Header.Get(HeaderDeviceID)
			if deviceID == "" {
				WriteError(w, r, errDeviceIDMissing)
				return
			}

			id, err := engine.ValidateSession(r.Context(), token, deviceID)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
