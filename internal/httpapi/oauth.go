package httpapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	multiAuth "github.com/MrEthical07/multiAuth"
	"github.com/MrEthical07/multiAuth/autherr"
	"github.com/MrEthical07/multiAuth/internal"
	"github.com/MrEthical07/multiAuth/middleware"
	"github.com/MrEthical07/multiAuth/provider"
	"github.com/go-chi/chi/v5"
)

const (
	stateCookieName = "oauthstate"
	stateCookieTTL  = 10 * time.Minute
)

var (
	errInvalidState  = autherr.Unauthorized("Invalid OAuth state")
	errProviderError = autherr.Unauthorized("Unauthorized")
)

// ProviderRedirect handles GET /{provider}: it sets the state cookie and
// redirects to the provider's consent page.
func (a *API) ProviderRedirect(w http.ResponseWriter, r *http.Request) {
	exchanger, ok := a.engine.Provider(chi.URLParam(r, "provider"))
	if !ok {
		middleware.WriteError(w, r, multiAuth.ErrUnsupportedProvider)
		return
	}

	state, err := newState()
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, a.stateCookie(state, int(stateCookieTTL/time.Second)))
	http.Redirect(w, r, exchanger.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// ProviderCallback handles the provider's redirect back, as a GET query
// (Google) or a form POST (Apple).
func (a *API) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	if _, ok := a.engine.Provider(name); !ok {
		middleware.WriteError(w, r, multiAuth.ErrUnsupportedProvider)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	// The state is single use whatever the outcome.
	http.SetCookie(w, a.stateCookie("", -1))
	if err != nil || cookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(r.FormValue("state"))) != 1 {
		middleware.WriteError(w, r, errInvalidState)
		return
	}
	if reason := r.FormValue("error"); reason != "" {
		a.logger.InfoContext(r.Context(), "provider denied sign-in", "provider", name, "reason", reason)
		middleware.WriteError(w, r, errProviderError)
		return
	}

	a.login(w, r, multiAuth.FederatedCredentials{
		Provider: name,
		Callback: provider.Callback{
			Code: r.FormValue("code"),
			User: r.FormValue("user"),
		},
	})
}

// stateCookie returns the state cookie. Apple posts its callback cross-site,
// which needs SameSite=None and therefore Secure.
func (a *API) stateCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     stateCookieName,
		Value:    value,
		Path:     Prefix,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if a.cookieSecure {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func newState() (string, error) {
	state, err := internal.RandomToken(32)
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return state, nil
}
