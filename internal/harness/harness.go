package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/environment"
	"github.com/roach88/authflow/internal/machine"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/store"
	"github.com/roach88/authflow/internal/testutil"
	"github.com/roach88/authflow/internal/userpool"
	"github.com/roach88/authflow/internal/webauth"
)

// Epoch is the fixed wall clock every scenario starts at.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Client id of the scenario user pool.
const ClientID = "authflow-scenario"

// Hosted UI redirect URIs used by scenarios with a browser.
const (
	SignInRedirectURI  = "authflow://callback"
	SignOutRedirectURI = "authflow://signout"
)

// errProviderOffline is the cause reported while a scenario has the
// provider offline.
var errProviderOffline = errors.New("provider offline")

// Harness holds the collaborators of one scenario run.
type Harness struct {
	pool   *userpool.Pool
	clock  *testutil.Clock
	env    *environment.Environment
	eng    *machine.Engine
	server *httptest.Server
	result *Result
}

// Option configures a scenario run.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	cfg        config.Config
	creds      environment.CredentialStore
	observers  []engine.Observer[authn.State]
	engineOpts []engine.Option
}

// WithLogger sets the logger handed to the engine and actions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfig sets the base configuration. The provider client id and the
// hosted UI settings are always replaced by the scenario's.
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithCredentialStore replaces the in-memory credential store.
func WithCredentialStore(creds environment.CredentialStore) Option {
	return func(o *options) {
		o.creds = creds
	}
}

// WithObserver registers an additional engine observer.
func WithObserver(obs engine.Observer[authn.State]) Option {
	return func(o *options) {
		o.observers = append(o.observers, obs)
	}
}

// WithEngineOptions appends engine options. Actions always run
// synchronously.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	}
}

// Run executes a scenario and evaluates its assertions.
//
// An error is returned only when the scenario cannot be executed (bad event
// args, hosted UI setup failure); failed expectations are reported in the
// Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h, err := newHarness(scenario, opts...)
	if err != nil {
		return nil, err
	}
	defer h.close()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, step); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if step.Expect != "" {
			if got := authn.Describe(h.eng.Current()); got != step.Expect {
				h.result.AddError(fmt.Sprintf("steps[%d]: expected state %s, got %s", i, step.Expect, got))
			}
		}
	}

	h.result.Final = authn.Describe(h.eng.Current())
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}
	return h.result, nil
}

func newHarness(scenario *Scenario, opts ...Option) (*Harness, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		cfg:    config.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.creds == nil {
		o.creds = store.NewMemory(nil)
	}

	h := &Harness{clock: testutil.NewClock(Epoch), result: NewResult()}
	h.pool = userpool.New(ClientID, scenario.Users, userpool.WithClock(h.clock.Now))

	cfg := o.cfg
	cfg.HostedUI = config.HostedUIConfig{}
	cfg.Provider.ClientID = ClientID
	cfg.Provider.ClientSecret = scenario.ClientSecret
	envOpts := []environment.Option{
		environment.WithClock(h.clock.Now),
		environment.WithLogger(o.logger),
	}

	if scenario.Browser != nil {
		mux := http.NewServeMux()
		mux.Handle(webauth.TokenPath, h.pool.TokenHandler())
		h.server = httptest.NewServer(mux)
		cfg.HostedUI = config.HostedUIConfig{
			Domain:             h.server.URL,
			SignInRedirectURI:  SignInRedirectURI,
			SignOutRedirectURI: SignOutRedirectURI,
		}
		client, err := webauth.New(cfg.Provider, cfg.HostedUI, webauth.WithHTTPClient(h.server.Client()))
		if err != nil {
			h.server.Close()
			return nil, fmt.Errorf("hosted UI: %w", err)
		}
		browser := &userpool.Browser{
			Pool:     h.pool,
			Username: scenario.Browser.Username,
			Cancel:   scenario.Browser.Cancel,
			Deny:     scenario.Browser.Deny,
		}
		envOpts = append(envOpts, environment.WithWebAuth(client, browser))
	}

	h.env = environment.New(cfg, h.pool, o.creds, envOpts...)
	engineOpts := append([]engine.Option{
		engine.WithLogger(o.logger),
		engine.WithIDGenerator(engine.NewSequentialGenerator("action-")),
	}, o.engineOpts...)
	h.eng = machine.New(h.env, append(engineOpts, engine.WithSynchronousActions())...)
	h.eng.Observe(engine.ObserverFunc[authn.State](func(_ context.Context, t machine.Transition) {
		h.result.Trace = append(h.result.Trace, store.RecordOf(t, authn.Describe))
	}))
	for _, obs := range o.observers {
		h.eng.Observe(obs)
	}
	return h, nil
}

func (h *Harness) executeStep(ctx context.Context, step Step) error {
	switch {
	case step.Send != "":
		ev, err := DecodeEvent(step.Send, step.Args)
		if err != nil {
			return err
		}
		if !h.eng.Send(ev) {
			return engine.ErrStopped
		}
		h.eng.ProcessPending(ctx)
		return ctx.Err()

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return err
		}
		h.clock.Advance(d)

	case step.Provider == ProviderOffline:
		h.pool.SetFailure(errProviderOffline)

	case step.Provider == ProviderOnline:
		h.pool.SetFailure(nil)
	}
	return nil
}

func (h *Harness) close() {
	if h.server != nil {
		h.server.Close()
	}
}
