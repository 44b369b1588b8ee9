package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleConfig configures the Google exchanger. Endpoint and UserInfoURL
// default to Google's production URLs.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
	HTTPClient   *http.Client
}

// GoogleExchanger signs users in with Google OAuth 2.0.
type GoogleExchanger struct {
	oauth       oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// NewGoogle returns an exchanger requesting the email and profile scopes.
func NewGoogle(cfg GoogleConfig) (*GoogleExchanger, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google client id and secret are required")
	}
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}

	return &GoogleExchanger{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		userInfoURL: userInfoURL,
		httpClient:  cfg.HTTPClient,
	}, nil
}

// Name returns "google".
func (g *GoogleExchanger) Name() string { return Google }

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleExchanger) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// ExchangeProfile redeems the code and reads the userinfo endpoint.
func (g *GoogleExchanger) ExchangeProfile(ctx context.Context, cb Callback) (*Profile, error) {
	if cb.Code == "" {
		return nil, ErrMissingCode
	}
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	token, err := g.oauth.Exchange(ctx, cb.Code)
	if err != nil {
		return nil, exchangeFailed(fmt.Errorf("google code exchange: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, exchangeFailed(fmt.Errorf("google userinfo: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, exchangeFailed(fmt.Errorf("google userinfo status=%d body=%s", resp.StatusCode, raw))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, exchangeFailed(fmt.Errorf("decode google userinfo: %w", err))
	}
	if info.ID == "" {
		return nil, exchangeFailed(errors.New("google userinfo without id"))
	}

	return &Profile{
		Provider:      Google,
		ProviderID:    info.ID,
		Email:         info.Email,
		EmailVerified: info.Email != "" && info.VerifiedEmail,
		FirstName:     info.GivenName,
		LastName:      info.FamilyName,
		Picture:       info.Picture,
	}, nil
}
