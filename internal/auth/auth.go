// Package auth is the caller-facing API over the authentication engine.
// Each call sends one event, then blocks until the tree settles in a
// variant that answers the call.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/machine"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/states/challenge"
	"github.com/roach88/authflow/internal/states/signin"
)

// NextStep tells the caller what a sign-in needs next.
type NextStep string

const (
	StepDone          NextStep = "DONE"
	StepConfirmSignIn NextStep = "CONFIRM_SIGN_IN"
)

const subscriptionCapacity = 64

// SignInResult is the outcome of SignIn and ConfirmSignIn.
type SignInResult struct {
	Next NextStep

	// Session is set when Next is StepDone.
	Session data.SignedInData

	// Challenge is set when Next is StepConfirmSignIn.
	Challenge data.AuthChallenge
}

// ErrNotStarted is returned by calls made before Start or after Close.
var ErrNotStarted = errors.New("auth: client not started")

// Client runs an engine on a background goroutine.
//
// Calls are safe for concurrent use, but the workflow is single-tenant:
// concurrent sign-in and sign-out calls race for the same tree.
type Client struct {
	eng *machine.Engine

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan error
}

// New creates a client. Options are passed to machine.New.
func New(env *environment.Environment, opts ...engine.Option) *Client {
	return &Client{eng: machine.New(env, opts...)}
}

// Engine exposes the underlying engine for observers and subscriptions.
func (c *Client) Engine() *machine.Engine {
	return c.eng
}

// State returns the current state tree.
func (c *Client) State() authn.State {
	return c.eng.Current()
}

// Start runs the loop and configures the tree from the stored credential.
// It returns once the tree is SignedIn or SignedOut.
func (c *Client) Start(ctx context.Context) (authn.State, error) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return c.eng.Current(), nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan error, 1)
	c.running = true
	c.mu.Unlock()

	go func() { c.done <- c.eng.Run(runCtx) }()

	t, err := c.await(ctx, authn.Configure{}, settled)
	if err != nil {
		return nil, err
	}
	if e, ok := t.To.(authn.Error); ok {
		return t.To, e.Err
	}
	return t.To, nil
}

// Close stops the loop and waits for in-flight actions.
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	c.eng.Stop()
	err := <-c.done
	c.cancel()
	c.eng.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// SignIn starts a sign-in. The tree must be SignedOut.
func (c *Client) SignIn(ctx context.Context, req data.SignInData) (SignInResult, error) {
	if _, ok := c.eng.Current().(authn.SignedOut); !ok {
		return SignInResult{}, data.NewError(data.KindInvalidParameter, "cannot sign in from %s", authn.Describe(c.eng.Current()))
	}
	t, err := c.await(ctx, authn.SignInRequested{SignIn: req}, signInAnswered)
	if err != nil {
		return SignInResult{}, err
	}
	return signInResult(t.To)
}

// ConfirmSignIn answers the pending challenge. A recoverable rejection
// returns StepConfirmSignIn again together with the error.
func (c *Client) ConfirmSignIn(ctx context.Context, answer string, metadata map[string]string) (SignInResult, error) {
	if _, ok := waitingForAnswer(c.eng.Current()); !ok {
		return SignInResult{}, data.NewError(data.KindInvalidParameter, "no challenge is waiting for an answer")
	}
	t, err := c.await(ctx, challenge.VerifyChallengeAnswer{Answer: answer, ClientMetadata: metadata}, signInAnswered)
	if err != nil {
		return SignInResult{}, err
	}
	return signInResult(t.To)
}

// CancelSignIn abandons the sign-in in progress.
func (c *Client) CancelSignIn(ctx context.Context) error {
	if _, ok := c.eng.Current().(authn.SigningIn); !ok {
		return nil
	}
	_, err := c.await(ctx, authn.CancelSignIn{}, settled)
	return err
}

// SignOut ends the session. Provider-side failures are not reported; only a
// failure to clear the stored credential is.
func (c *Client) SignOut(ctx context.Context, req data.SignOutData) (data.SignedOutData, error) {
	switch c.eng.Current().(type) {
	case authn.SignedIn, authn.SignedOut:
	default:
		return data.SignedOutData{}, data.NewError(data.KindInvalidParameter, "cannot sign out from %s", authn.Describe(c.eng.Current()))
	}
	t, err := c.await(ctx, authn.SignOutRequested{SignOut: req}, settled)
	if err != nil {
		return data.SignedOutData{}, err
	}
	switch s := t.To.(type) {
	case authn.SignedOut:
		return s.Data, nil
	case authn.SignedIn:
		return data.SignedOutData{}, data.ErrUserCancelled
	case authn.Error:
		return data.SignedOutData{}, s.Err
	}
	return data.SignedOutData{}, data.NewError(data.KindUnknown, "sign-out ended in %s", authn.Describe(t.To))
}

// RefreshSession refreshes the tokens of the current session. A provider
// outage returns the old session with the error; a rejected refresh token
// signs the user out.
func (c *Client) RefreshSession(ctx context.Context) (data.SignedInData, error) {
	cur, ok := c.eng.Current().(authn.SignedIn)
	if !ok {
		return data.SignedInData{}, data.NewError(data.KindInvalidParameter, "cannot refresh from %s", authn.Describe(c.eng.Current()))
	}
	t, err := c.await(ctx, authn.RefreshSession{}, refreshAnswered)
	if err != nil {
		return data.SignedInData{}, err
	}
	switch e := t.Event.(type) {
	case authn.SessionRefreshed:
		return e.Data, nil
	case authn.RefreshFailed:
		return cur.Data, e.Err
	case authn.SessionExpired:
		return data.SignedInData{}, e.Err
	}
	return data.SignedInData{}, data.NewError(data.KindUnknown, "refresh ended in %s", authn.Describe(t.To))
}

// await sends ev and returns the first transition at or after the one ev
// caused for which done holds. The subscription is opened before sending so
// no transition is missed.
func (c *Client) await(ctx context.Context, ev engine.Event, done func(machine.Transition) bool) (machine.Transition, error) {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if !running {
		return machine.Transition{}, ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return machine.Transition{}, err
	}

	ch, unsubscribe := c.eng.Subscribe(subscriptionCapacity)
	defer unsubscribe()

	if !c.eng.Send(ev) {
		return machine.Transition{}, engine.ErrStopped
	}

	seen := false
	for {
		select {
		case t, ok := <-ch:
			if !ok {
				return machine.Transition{}, engine.ErrStopped
			}
			if !seen && t.Event.Type() == ev.Type() {
				seen = true
			}
			if seen && done(t) {
				return t, nil
			}
		case <-ctx.Done():
			return machine.Transition{}, ctx.Err()
		}
	}
}

func settled(t machine.Transition) bool {
	return authn.IsSettled(t.To)
}

func signInAnswered(t machine.Transition) bool {
	if authn.IsSettled(t.To) {
		return true
	}
	_, ok := waitingForAnswer(t.To)
	return ok
}

func refreshAnswered(t machine.Transition) bool {
	switch t.Event.(type) {
	case authn.SessionRefreshed, authn.RefreshFailed, authn.SessionExpired:
		return true
	}
	_, isErr := t.To.(authn.Error)
	return isErr
}

func waitingForAnswer(s authn.State) (challenge.WaitingForAnswer, bool) {
	in, ok := s.(authn.SigningIn)
	if !ok {
		return challenge.WaitingForAnswer{}, false
	}
	rc, ok := in.SignIn.(signin.ResolvingChallenge)
	if !ok {
		return challenge.WaitingForAnswer{}, false
	}
	w, ok := rc.Challenge.(challenge.WaitingForAnswer)
	return w, ok
}

func signInResult(s authn.State) (SignInResult, error) {
	if w, ok := waitingForAnswer(s); ok {
		return SignInResult{Next: StepConfirmSignIn, Challenge: w.Challenge}, w.LastError
	}
	switch s := s.(type) {
	case authn.SignedIn:
		return SignInResult{Next: StepDone, Session: s.Data}, nil
	case authn.SignedOut:
		if s.Data.LastSignInError != nil {
			return SignInResult{}, s.Data.LastSignInError
		}
		return SignInResult{}, data.ErrUserCancelled
	case authn.Error:
		return SignInResult{}, s.Err
	}
	return SignInResult{}, data.NewError(data.KindUnknown, "sign-in ended in %s", authn.Describe(s))
}
