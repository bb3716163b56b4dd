package webauth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/userpool"
	"github.com/roach88/authflow/internal/webauth"
)

const redirect = "myapp://callback"

func newClient(t *testing.T, domain string, scopes ...string) *webauth.Client {
	t.Helper()
	c, err := webauth.New(
		config.ProviderConfig{ClientID: "client-1"},
		config.HostedUIConfig{
			Domain:             domain,
			SignInRedirectURI:  redirect,
			SignOutRedirectURI: "myapp://signout",
			Scopes:             scopes,
		},
	)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresHostedUI(t *testing.T) {
	_, err := webauth.New(config.ProviderConfig{ClientID: "c"}, config.HostedUIConfig{})
	assert.Equal(t, data.KindConfiguration, data.KindOf(err))

	_, err = webauth.New(config.ProviderConfig{ClientID: "c"}, config.HostedUIConfig{Domain: "auth.example.com"})
	assert.Equal(t, data.KindConfiguration, data.KindOf(err))
}

func TestAuthorizeURL(t *testing.T) {
	c := newClient(t, "auth.example.com")

	auth, err := c.AuthorizeURL(data.HostedUIOptions{IdentityProvider: "Google", IDPIdentifier: "example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.State)
	assert.NotEmpty(t, auth.Verifier)

	u, err := url.Parse(auth.URL)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "auth.example.com", u.Host)
	assert.Equal(t, webauth.AuthorizePath, u.Path)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, redirect, q.Get("redirect_uri"))
	assert.Equal(t, auth.State, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "Google", q.Get("identity_provider"))
	assert.Equal(t, "example.com", q.Get("idp_identifier"))
}

func TestAuthorizeURL_FreshStatePerRequest(t *testing.T) {
	c := newClient(t, "auth.example.com")
	a, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)
	b, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, a.State, b.State)
	assert.NotEqual(t, a.Verifier, b.Verifier)
}

func TestAuthorizeURL_Scopes(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		requested  []string
		want       string
	}{
		{"default", nil, nil, "openid"},
		{"configured", []string{"openid", "email"}, nil, "openid email"},
		{"requested wins", []string{"openid", "email"}, []string{"profile"}, "profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, "auth.example.com", tt.configured...)
			auth, err := c.AuthorizeURL(data.HostedUIOptions{Scopes: tt.requested})
			require.NoError(t, err)
			u, _ := url.Parse(auth.URL)
			assert.Equal(t, tt.want, u.Query().Get("scope"))
		})
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name     string
		callback string
		wantCode string
		wantKind data.ErrorKind
	}{
		{"ok", redirect + "?code=abc&state=s1", "abc", ""},
		{"provider error", redirect + "?error=access_denied&error_description=denied&state=s1", "", data.KindNotAuthorized},
		{"missing code", redirect + "?state=s1", "", data.KindInvalidParameter},
		{"state mismatch", redirect + "?code=abc&state=other", "", data.KindInvalidParameter},
		{"unparseable", "::not a url", "", data.KindInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := webauth.ParseCallback(tt.callback, "s1")
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, data.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestLogoutURL(t *testing.T) {
	c := newClient(t, "auth.example.com")

	got, err := c.LogoutURL()
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, webauth.LogoutPath, u.Path)
	assert.Equal(t, "client-1", u.Query().Get("client_id"))
	assert.Equal(t, "myapp://signout", u.Query().Get("logout_uri"))
}

func newPoolServer(t *testing.T) (*userpool.Pool, *httptest.Server) {
	t.Helper()
	pool := userpool.New("client-1", []userpool.User{{Username: "alice", Password: "pw"}})
	mux := http.NewServeMux()
	mux.Handle(webauth.TokenPath, pool.TokenHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return pool, srv
}

func TestExchange_RoundTrip(t *testing.T) {
	pool, srv := newPoolServer(t)
	c := newClient(t, srv.URL)
	browser := &userpool.Browser{Pool: pool, Username: "alice"}
	ctx := context.Background()

	auth, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)
	callback, err := browser.Launch(ctx, auth.URL, data.HostedUIOptions{})
	require.NoError(t, err)

	tokens, err := c.Exchange(ctx, callback, auth)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.False(t, tokens.ExpiresAt.IsZero())

	claims, err := data.ParseIDTokenClaims(tokens.IDToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	// Codes are single use.
	_, err = c.Exchange(ctx, callback, auth)
	assert.Equal(t, data.KindNotAuthorized, data.KindOf(err))
}

func TestExchange_WrongVerifier(t *testing.T) {
	pool, srv := newPoolServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	auth, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)
	callback, err := (&userpool.Browser{Pool: pool, Username: "alice"}).Launch(ctx, auth.URL, data.HostedUIOptions{})
	require.NoError(t, err)

	other, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)
	auth.Verifier = other.Verifier

	_, err = c.Exchange(ctx, callback, auth)
	assert.Equal(t, data.KindNotAuthorized, data.KindOf(err))
}

func TestExchange_DeniedNeverCallsEndpoint(t *testing.T) {
	pool, srv := newPoolServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	auth, err := c.AuthorizeURL(data.HostedUIOptions{})
	require.NoError(t, err)
	callback, err := (&userpool.Browser{Pool: pool, Username: "alice", Deny: true}).Launch(ctx, auth.URL, data.HostedUIOptions{})
	require.NoError(t, err)

	_, err = c.Exchange(ctx, callback, auth)
	assert.Equal(t, data.KindNotAuthorized, data.KindOf(err))
	assert.Equal(t, 0, pool.Active())
}

func TestExchange_Unreachable(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1")
	_, err := c.Exchange(context.Background(), redirect+"?code=abc&state=s1", environmentAuth("s1"))
	assert.Equal(t, data.KindNetwork, data.KindOf(err))
}

func environmentAuth(state string) environment.Authorization {
	return environment.Authorization{State: state, Verifier: "v"}
}
