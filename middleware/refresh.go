package middleware

import (
	"context"
	"net/http"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/jwt"
)

// HeaderRefreshToken carries the raw refresh token (no Bearer prefix).
const HeaderRefreshToken = "X-Refresh-Token"

var errRefreshTokenMissing = autherr.Unauthorized("Refresh token is missing")

type refreshPayloadContextKey struct{}

// RefreshPayloadFromContext returns the payload attached by
// RequireRefreshToken.
func RefreshPayloadFromContext(ctx context.Context) (jwt.Payload, bool) {
	p, ok := ctx.Value(refreshPayloadContextKey{}).(jwt.Payload)
	return p, ok
}

// RequireRefreshToken admits requests whose X-Refresh-Token verifies. Only the
// subject is forwarded; issue and expiry times are dropped.
func RequireRefreshToken(engine *multiAuth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				WriteError(w, r, multiAuth.ErrEngineNotReady)
				return
			}

			token := r.Header.Get(HeaderRefreshToken)
			if token == "" {
				WriteError(w, r, errRefreshTokenMissing)
				return
			}

			payload, err := engine.VerifyToken(token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), refreshPayloadContextKey{}, jwt.Payload{SubjectID: payload.SubjectID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
