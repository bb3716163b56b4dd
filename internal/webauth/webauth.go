// Package webauth is the hosted web sign-in client: it builds PKCE authorize
// and logout URLs for the configured domain and redeems the authorization
// code returned to the redirect URI.
package webauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// Endpoint paths below the hosted UI domain.
const (
	AuthorizePath = "/oauth2/authorize"
	TokenPath     = "/oauth2/token"
	LogoutPath    = "/logout"
)

var defaultScopes = []string{"openid"}

// Client implements environment.WebAuth.
type Client struct {
	hosted     config.HostedUIConfig
	oauth      oauth2.Config
	logoutURL  string
	httpClient *http.Client
}

var _ environment.WebAuth = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Client. Hosted UI must be enabled in h.
func New(p config.ProviderConfig, h config.HostedUIConfig, opts ...Option) (*Client, error) {
	if !h.Enabled() {
		return nil, data.NewError(data.KindConfiguration, "hosted UI domain is not set")
	}
	if h.SignInRedirectURI == "" {
		return nil, data.NewError(data.KindConfiguration, "hosted UI sign-in redirect URI is not set")
	}

	base := baseURL(h.Domain)
	c := &Client{
		hosted: h,
		oauth: oauth2.Config{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  h.SignInRedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   base + AuthorizePath,
				TokenURL:  base + TokenPath,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		logoutURL: base + LogoutPath,
	}
	if p.ClientSecret == "" {
		c.oauth.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// baseURL accepts a bare domain or a full origin (local servers in tests).
func baseURL(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}

// AuthorizeURL starts one authorize request with a fresh state and PKCE
// verifier. Scopes come from opts, then configuration, then "openid".
func (c *Client) AuthorizeURL(opts data.HostedUIOptions) (environment.Authorization, error) {
	conf := c.oauth
	conf.Scopes = c.scopes(opts)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	params := []oauth2.AuthCodeOption{oauth2.S256ChallengeOption(verifier)}
	if opts.IdentityProvider != "" {
		params = append(params, oauth2.SetAuthURLParam("identity_provider", opts.IdentityProvider))
	}
	if opts.IDPIdentifier != "" {
		params = append(params, oauth2.SetAuthURLParam("idp_identifier", opts.IDPIdentifier))
	}

	return environment.Authorization{
		URL:      conf.AuthCodeURL(state, params...),
		State:    state,
		Verifier: verifier,
	}, nil
}

func (c *Client) scopes(opts data.HostedUIOptions) []string {
	switch {
	case len(opts.Scopes) > 0:
		return opts.Scopes
	case len(c.hosted.Scopes) > 0:
		return c.hosted.Scopes
	}
	return defaultScopes
}

// Exchange validates the redirect and redeems its code.
func (c *Client) Exchange(ctx context.Context, callbackURL string, auth environment.Authorization) (data.Tokens, error) {
	code, err := ParseCallback(callbackURL, auth.State)
	if err != nil {
		return data.Tokens{}, err
	}

	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	tok, err := c.oauth.Exchange(ctx, code, oauth2.VerifierOption(auth.Verifier))
	if err != nil {
		return data.Tokens{}, classify(err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return data.Tokens{}, data.NewError(data.KindInvalidParameter, "token response has no id_token")
	}
	return data.Tokens{
		AccessToken:  tok.AccessToken,
		IDToken:      idToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}, nil
}

// LogoutURL returns the hosted logout page, redirecting to the configured
// sign-out URI.
func (c *Client) LogoutURL() (string, error) {
	if c.hosted.SignOutRedirectURI == "" {
		return "", data.NewError(data.KindConfiguration, "hosted UI sign-out redirect URI is not set")
	}
	q := url.Values{}
	q.Set("client_id", c.oauth.ClientID)
	q.Set("logout_uri", c.hosted.SignOutRedirectURI)
	return c.logoutURL + "?" + q.Encode(), nil
}

// ParseCallback extracts the authorization code from a redirect, rejecting
// provider errors, a missing code and a state that does not match.
func ParseCallback(callbackURL, wantState string) (string, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return "", data.WrapError(data.KindInvalidParameter, "parse callback url", err)
	}
	q := u.Query()

	if e := q.Get("error"); e != "" {
		if desc := q.Get("error_description"); desc != "" {
			return "", data.NewError(data.KindNotAuthorized, "hosted UI returned %s: %s", e, desc)
		}
		return "", data.NewError(data.KindNotAuthorized, "hosted UI returned %s", e)
	}
	code := q.Get("code")
	if code == "" {
		return "", data.NewError(data.KindInvalidParameter, "callback has no authorization code")
	}
	if q.Get("state") != wantState {
		return "", data.NewError(data.KindInvalidParameter, "callback state does not match the request")
	}
	return code, nil
}

func classify(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorCode == "invalid_grant" || re.ErrorCode == "invalid_client" {
			return data.WrapError(data.KindNotAuthorized, fmt.Sprintf("token exchange: %s", re.ErrorCode), err)
		}
		return data.WrapError(data.KindUnknown, "token exchange", err)
	}
	return data.WrapError(data.KindNetwork, "token exchange", err)
}
