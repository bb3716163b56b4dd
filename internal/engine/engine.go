package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Transition is the committed result of one resolution cycle.
type Transition[S any] struct {
	Seq     int64
	Event   Event
	From    S
	To      S
	Actions []string
}

// Observer is notified of every committed transition, on the loop goroutine,
// before the transition's actions are started. Observers must not block.
type Observer[S any] interface {
	OnTransition(ctx context.Context, t Transition[S])
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[S any] func(ctx context.Context, t Transition[S])

// OnTransition implements Observer.
func (f ObserverFunc[S]) OnTransition(ctx context.Context, t Transition[S]) { f(ctx, t) }

type config struct {
	logger      *slog.Logger
	synchronous bool
	ids         IDGenerator
	clock       *Clock
	panicEvent  func(action string, err error) Event
}

// Option configures an Engine.
type Option func(*config)

// WithLogger sets the structured logger. Defaults to a discard handler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithSynchronousActions runs every action inline on the loop goroutine,
// after the state commit. Used for deterministic tests and scenario runs.
func WithSynchronousActions() Option {
	return func(c *config) {
		c.synchronous = true
	}
}

// WithIDGenerator sets the generator for action execution ids.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) {
		c.ids = g
	}
}

// WithClock sets the clock used to stamp accepted events.
func WithClock(clock *Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithPanicEvent converts a panicking action into an event so the workflow
// can still reach an error variant. Without it the panic is only logged.
func WithPanicEvent(fn func(action string, err error) Event) Option {
	return func(c *config) {
		c.panicEvent = fn
	}
}

type waiter[S any] struct {
	pred func(S) bool
	ch   chan S
}

// Engine is the single-writer dispatcher for one state tree.
//
// Thread-safety model:
//   - Send(), Current(), WaitFor(), Subscribe(): safe from any goroutine
//   - Run() / ProcessPending(): must be driven by exactly one goroutine
//   - Observe(): call before the loop starts
type Engine[S, Env any] struct {
	resolver Resolver[S, Env]
	env      Env
	state    atomic.Pointer[S]
	queue    *intake
	cfg      config

	observers []Observer[S]
	inflight  sync.WaitGroup

	mu      sync.Mutex
	waiters []*waiter[S]
	subs    map[int]chan Transition[S]
	nextSub int
	stopped bool
}

// New creates an engine whose tree starts at the resolver's default state.
func New[S, Env any](resolver Resolver[S, Env], env Env, opts ...Option) *Engine[S, Env] {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:    UUIDv7Generator{},
		clock:  NewClock(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine[S, Env]{
		resolver: resolver,
		env:      env,
		queue:    newIntake(cfg.clock),
		cfg:      cfg,
		subs:     make(map[int]chan Transition[S]),
	}
	initial := resolver.DefaultState()
	e.state.Store(&initial)
	return e
}

// Observe registers an observer. Not safe to call while the loop runs.
func (e *Engine[S, Env]) Observe(o Observer[S]) {
	e.observers = append(e.observers, o)
}

// Send enqueues an event for processing.
// Returns false if the engine has been stopped.
func (e *Engine[S, Env]) Send(ev Event) bool {
	if ev == nil {
		return false
	}
	_, ok := e.queue.push(ev)
	if !ok {
		e.cfg.logger.Warn("event dropped: engine stopped", "event", ev.Type())
	}
	return ok
}

// Current returns the committed state tree. The value is immutable; callers
// cannot affect the engine through it.
func (e *Engine[S, Env]) Current() S {
	return *e.state.Load()
}

// QueueLen returns the number of events waiting to be resolved.
func (e *Engine[S, Env]) QueueLen() int {
	return e.queue.size()
}

// Run starts the single-writer event loop.
// Blocks until ctx is cancelled or Stop() is called and the queue drains.
func (e *Engine[S, Env]) Run(ctx context.Context) error {
	e.cfg.logger.Info("engine starting")
	defer e.release()

	for {
		if env, ok := e.queue.pop(); ok {
			e.process(ctx, env)
			continue
		}

		select {
		case <-ctx.Done():
			e.cfg.logger.Info("engine stopping: context cancelled")
			e.queue.close()
			return ctx.Err()

		case <-e.queue.wake():
			if e.queue.drained() {
				e.cfg.logger.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// ProcessPending resolves queued events on the calling goroutine until the
// queue is empty, and returns how many were processed. With synchronous
// actions this runs a workflow to quiescence.
func (e *Engine[S, Env]) ProcessPending(ctx context.Context) int {
	n := 0
	for ctx.Err() == nil {
		env, ok := e.queue.pop()
		if !ok {
			break
		}
		e.process(ctx, env)
		n++
	}
	return n
}

// Stop closes intake. Run returns once the queue drains.
func (e *Engine[S, Env]) Stop() {
	e.queue.close()
}

// Wait blocks until every asynchronously started action has returned.
func (e *Engine[S, Env]) Wait() {
	e.inflight.Wait()
}

// WaitFor blocks until the committed state satisfies pred, ctx ends, or the
// loop exits. The current state is checked first.
func (e *Engine[S, Env]) WaitFor(ctx context.Context, pred func(S) bool) (S, error) {
	e.mu.Lock()
	if cur := e.Current(); pred(cur) {
		e.mu.Unlock()
		return cur, nil
	}
	if e.stopped {
		e.mu.Unlock()
		var zero S
		return zero, ErrStopped
	}
	w := &waiter[S]{pred: pred, ch: make(chan S, 1)}
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	select {
	case s, ok := <-w.ch:
		if !ok {
			return s, ErrStopped
		}
		return s, nil
	case <-ctx.Done():
		e.removeWaiter(w)
		var zero S
		return zero, newWaitError(ctx.Err())
	}
}

// Subscribe returns a channel receiving every committed transition and a
// function that cancels the subscription. A subscriber that falls more than
// buffer transitions behind misses transitions; the engine never blocks on it.
func (e *Engine[S, Env]) Subscribe(buffer int) (<-chan Transition[S], func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Transition[S], buffer)

	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.mu.Unlock()

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(c)
		}
	}
}

// process runs one resolution cycle.
// CRITICAL: Called only from the loop goroutine.
func (e *Engine[S, Env]) process(ctx context.Context, env envelope) {
	old := e.Current()
	res := e.resolver.Resolve(old, env.event)

	next := res.NewState
	e.state.Store(&next)

	t := Transition[S]{
		Seq:     env.seq,
		Event:   env.event,
		From:    old,
		To:      next,
		Actions: ActionNames(res.Actions),
	}

	e.cfg.logger.Debug("event resolved",
		"seq", env.seq,
		"event", env.event.Type(),
		"actions", t.Actions,
	)

	for _, o := range e.observers {
		o.OnTransition(ctx, t)
	}
	e.notify(t)

	for _, a := range res.Actions {
		e.execute(ctx, a)
	}
}

func (e *Engine[S, Env]) notify(t Transition[S]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.waiters[:0]
	for _, w := range e.waiters {
		if w.pred(t.To) {
			w.ch <- t.To
			continue
		}
		kept = append(kept, w)
	}
	for i := len(kept); i < len(e.waiters); i++ {
		e.waiters[i] = nil
	}
	e.waiters = kept

	for _, ch := range e.subs {
		select {
		case ch <- t:
		default:
			e.cfg.logger.Warn("subscriber lagging, transition dropped", "seq", t.Seq)
		}
	}
}

func (e *Engine[S, Env]) execute(ctx context.Context, a Action[Env]) {
	id := e.cfg.ids.Generate()
	run := func() {
		defer func() {
			if r := recover(); r != nil {
				err := newPanicError(a.Name(), r)
				e.cfg.logger.Error("action panicked", "action", a.Name(), "id", id, "panic", r)
				if e.cfg.panicEvent != nil {
					e.Send(e.cfg.panicEvent(a.Name(), err))
				}
			}
		}()
		e.cfg.logger.Debug("action started", "action", a.Name(), "id", id)
		a.Execute(ctx, id, e, e.env)
	}

	if e.cfg.synchronous || isInline(a) {
		run()
		return
	}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		run()
	}()
}

func (e *Engine[S, Env]) removeWaiter(target *waiter[S]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, w := range e.waiters {
		if w == target {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

// release wakes every waiter once the loop has exited.
func (e *Engine[S, Env]) release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	for _, w := range e.waiters {
		close(w.ch)
	}
	e.waiters = nil
}
