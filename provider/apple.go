package provider

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	appleIssuer   = "https://appleid.apple.com"
	appleAuthURL  = "https://appleid.apple.com/auth/authorize"
	appleTokenURL = "https://appleid.apple.com/auth/token"
	appleKeysURL  = "https://appleid.apple.com/auth/keys"

	appleSecretTTL   = 5 * time.Minute
	// appleKeysRefetch bounds how often an unknown kid triggers a key fetch.
	appleKeysRefetch = time.Minute
)

// AppleConfig configures Sign in with Apple. PrivateKey is the PEM-encoded
// .p8 key registered under KeyID. The URL fields default to Apple's.
type AppleConfig struct {
	ClientID    string
	TeamID      string
	KeyID       string
	PrivateKey  []byte
	CallbackURL string
	AuthURL     string
	TokenURL    string
	KeysURL     string
	Issuer      string
	HTTPClient  *http.Client
}

// AppleExchanger signs users in with Apple. The client secret is a short-lived
// ES256 JWT minted per exchange; the returned id_token is verified against
// Apple's published RSA keys.
type AppleExchanger struct {
	oauth      oauth2.Config
	teamID     string
	keyID      string
	issuer     string
	signingKey *ecdsa.PrivateKey
	keys       *jwksCache
	httpClient *http.Client
	now        func() time.Time
}

type appleIDClaims struct {
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
	jwt.RegisteredClaims
}

// flexBool decodes a JSON boolean or its string form. Apple has sent
// email_verified both ways.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return fmt.Errorf("email_verified: %w", err)
		}
		*b = flexBool(parsed)
	case nil:
		*b = false
	default:
		return fmt.Errorf("email_verified: unexpected %T", v)
	}
	return nil
}

type appleUser struct {
	Name struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"name"`
	Email string `json:"email"`
}

// NewApple parses the signing key and returns an exchanger.
func NewApple(cfg AppleConfig) (*AppleExchanger, error) {
	if cfg.ClientID == "" || cfg.TeamID == "" || cfg.KeyID == "" {
		return nil, errors.New("apple client id, team id and key id are required")
	}
	key, err := jwt.ParseECPrivateKeyFromPEM(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("parse apple private key: %w", err)
	}

	authURL, tokenURL, keysURL, issuer := cfg.AuthURL, cfg.TokenURL, cfg.KeysURL, cfg.Issuer
	if authURL == "" {
		authURL = appleAuthURL
	}
	if tokenURL == "" {
		tokenURL = appleTokenURL
	}
	if keysURL == "" {
		keysURL = appleKeysURL
	}
	if issuer == "" {
		issuer = appleIssuer
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &AppleExchanger{
		oauth: oauth2.Config{
			ClientID:    cfg.ClientID,
			RedirectURL: cfg.CallbackURL,
			Scopes:      []string{"name", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		teamID:     cfg.TeamID,
		keyID:      cfg.KeyID,
		issuer:     issuer,
		signingKey: key,
		keys:       &jwksCache{url: keysURL, client: client, minInterval: appleKeysRefetch, now: time.Now},
		httpClient: client,
		now:        time.Now,
	}, nil
}

// Name returns "apple".
func (a *AppleExchanger) Name() string { return Apple }

// AuthCodeURL returns the consent URL. Apple posts the callback as a form
// because name and email scopes are requested.
func (a *AppleExchanger) AuthCodeURL(state string) string {
	return a.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("response_mode", "form_post"))
}

// ExchangeProfile redeems the code, verifies the id_token and merges in the
// name Apple only sends on the first authorization.
func (a *AppleExchanger) ExchangeProfile(ctx context.Context, cb Callback) (*Profile, error) {
	if cb.Code == "" {
		return nil, ErrMissingCode
	}

	secret, err := a.clientSecret()
	if err != nil {
		return nil, err
	}
	conf := a.oauth
	conf.ClientSecret = secret

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	token, err := conf.Exchange(ctx, cb.Code)
	if err != nil {
		return nil, exchangeFailed(fmt.Errorf("apple code exchange: %w", err))
	}
	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return nil, exchangeFailed(errors.New("apple token response without id_token"))
	}

	claims, err := a.verifyIDToken(ctx, rawIDToken)
	if err != nil {
		return nil, exchangeFailed(err)
	}

	profile := &Profile{
		Provider:      Apple,
		ProviderID:    claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.Email != "" && bool(claims.EmailVerified),
	}
	if cb.User != "" {
		var u appleUser
		if err := json.Unmarshal([]byte(cb.User), &u); err == nil {
			profile.FirstName = u.Name.FirstName
			profile.LastName = u.Name.LastName
			// The form field is client supplied, so its email stays unverified.
			if profile.Email == "" {
				profile.Email = u.Email
			}
		}
	}
	return profile, nil
}

func (a *AppleExchanger) clientSecret() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Issuer:    a.teamID,
		Subject:   a.oauth.ClientID,
		Audience:  jwt.ClaimStrings{a.issuer},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(appleSecretTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = a.keyID
	return token.SignedString(a.signingKey)
}

func (a *AppleExchanger) verifyIDToken(ctx context.Context, raw string) (*appleIDClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithAudience(a.oauth.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	claims := &appleIDClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		return a.keys.key(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("verify apple id_token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("apple id_token without subject")
	}
	return claims, nil
}

// jwksCache holds Apple's signing keys and refetches when an unknown kid
// appears, at most once per minInterval.
type jwksCache struct {
	url         string
	client      *http.Client
	minInterval time.Duration
	now         func() time.Time

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

type jwkSet struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (c *jwksCache) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if k, ok := c.keys[kid]; ok {
		return k, nil
	}
	now := c.now()
	if !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.minInterval {
		return nil, fmt.Errorf("unknown apple key id %q", kid)
	}
	// Failed fetches count too, so a broken endpoint is not hit per callback.
	c.fetchedAt = now
	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.keys = keys
	if k, ok := keys[kid]; ok {
		return k, nil
	}
	return nil, fmt.Errorf("unknown apple key id %q", kid)
}

func (c *jwksCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch apple keys: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch apple keys: status=%d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode apple keys: %w", err)
	}

	out := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		n, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		e, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		out[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(n),
			E: int(new(big.Int).SetBytes(e).Int64()),
		}
	}
	return out, nil
}
