package engine

import "context"

// Event is an immutable value submitted to the engine.
//
// Events are broadcast: every resolver in the tree sees every event and
// decides for itself whether it applies.
type Event interface {
	// Type returns a stable name such as "signIn.receivedChallenge".
	Type() string
}

// Dispatcher accepts follow-up events from running actions.
// Implemented by Engine.
type Dispatcher interface {
	// Send enqueues an event. Returns false if the engine has been stopped.
	Send(ev Event) bool
}

// Action is a named, side-effecting unit of work scheduled by a resolution.
//
// Actions never touch the state tree. The only way back into the machine is
// Dispatcher.Send. Failures must be turned into events inside Execute.
type Action[Env any] interface {
	Name() string
	Execute(ctx context.Context, id string, d Dispatcher, env Env)
}

// ActionFunc is the body of an action built with NewAction.
type ActionFunc[Env any] func(ctx context.Context, id string, d Dispatcher, env Env)

type funcAction[Env any] struct {
	name string
	fn   ActionFunc[Env]
}

// NewAction builds an Action from a closure. The closure is expected to
// capture the triggering event's payload at creation time.
func NewAction[Env any](name string, fn ActionFunc[Env]) Action[Env] {
	return funcAction[Env]{name: name, fn: fn}
}

func (a funcAction[Env]) Name() string { return a.name }

func (a funcAction[Env]) Execute(ctx context.Context, id string, d Dispatcher, env Env) {
	a.fn(ctx, id, d, env)
}

type inlineAction[Env any] struct {
	funcAction[Env]
}

// NewInlineAction builds an Action that runs on the loop goroutine before the
// next event is resolved, even when other actions run asynchronously. It
// suits short local writes that must land in commit order.
func NewInlineAction[Env any](name string, fn ActionFunc[Env]) Action[Env] {
	return inlineAction[Env]{funcAction[Env]{name: name, fn: fn}}
}

func (inlineAction[Env]) inline() {}

func isInline[Env any](a Action[Env]) bool {
	_, ok := a.(interface{ inline() })
	return ok
}

// ActionNames returns the names of actions in order.
func ActionNames[Env any](actions []Action[Env]) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name()
	}
	return names
}
