package userpool

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

type authCode struct {
	username  string
	challenge string
	redirect  string
}

// Browser stands in for the user's browser on the hosted pages. It signs in
// as Username without showing anything.
type Browser struct {
	Pool     *Pool
	Username string

	// Cancel simulates the user closing the browser.
	Cancel bool

	// Deny makes the authorize page redirect back with error=access_denied.
	Deny bool
}

var _ environment.HostedUILauncher = (*Browser)(nil)

// Launch implements environment.HostedUILauncher for the authorize and
// logout pages.
func (b *Browser) Launch(ctx context.Context, rawURL string, _ data.HostedUIOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.Cancel {
		return "", data.ErrUserCancelled
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", data.WrapError(data.KindInvalidParameter, "parse hosted UI url", err)
	}
	q := u.Query()

	if strings.HasSuffix(u.Path, "/logout") {
		return q.Get("logout_uri"), nil
	}

	redirect, err := url.Parse(q.Get("redirect_uri"))
	if err != nil || q.Get("redirect_uri") == "" {
		return "", data.NewError(data.KindInvalidParameter, "authorize request has no redirect_uri")
	}
	back := url.Values{}
	back.Set("state", q.Get("state"))

	if b.Deny {
		back.Set("error", "access_denied")
		back.Set("error_description", "user denied the request")
	} else {
		code, err := b.Pool.authorize(b.Username, q.Get("code_challenge"), redirect.String())
		if err != nil {
			return "", err
		}
		back.Set("code", code)
	}
	redirect.RawQuery = back.Encode()
	return redirect.String(), nil
}

func (p *Pool) authorize(username, challenge, redirect string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[username]; !ok {
		return "", data.NewError(data.KindUserNotFound, "user %s does not exist", username)
	}
	code := uuid.NewString()
	p.codes[code] = authCode{username: username, challenge: challenge, redirect: redirect}
	return code, nil
}

// TokenHandler serves the authorization_code grant of the hosted UI token
// endpoint, checking the PKCE verifier against the authorize request.
func (p *Pool) TokenHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			tokenError(w, "invalid_request")
			return
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			tokenError(w, "unsupported_grant_type")
			return
		}

		clientID, _, ok := r.BasicAuth()
		if !ok {
			clientID = r.PostForm.Get("client_id")
		}
		if clientID != p.clientID {
			tokenError(w, "invalid_client")
			return
		}

		tokens, ok := p.redeem(r.PostForm.Get("code"), r.PostForm.Get("code_verifier"), r.PostForm.Get("redirect_uri"))
		if !ok {
			tokenError(w, "invalid_grant")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  tokens.AccessToken,
			"id_token":      tokens.IDToken,
			"refresh_token": tokens.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    int(tokens.ExpiresAt.Sub(p.now()) / time.Second),
		})
	})
}

func (p *Pool) redeem(code, verifier, redirect string) (data.Tokens, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ac, ok := p.codes[code]
	if !ok {
		return data.Tokens{}, false
	}
	delete(p.codes, code)

	sum := sha256.Sum256([]byte(verifier))
	if base64.RawURLEncoding.EncodeToString(sum[:]) != ac.challenge || redirect != ac.redirect {
		return data.Tokens{}, false
	}
	return *p.issue(p.users[ac.username]).Tokens, true
}

func tokenError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}
