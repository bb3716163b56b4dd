package engine

import "slices"

// Resolution is the result of resolving one event at one level.
type Resolution[S, Env any] struct {
	NewState S
	Actions  []Action[Env]

	// Reset marks a transition whose new variant was seeded with fresh child
	// state. Child resolutions computed in the same cycle keep their actions
	// but their states are discarded.
	Reset bool
}

// Unchanged is the default resolution: same state, no actions.
func Unchanged[S, Env any](s S) Resolution[S, Env] {
	return Resolution[S, Env]{NewState: s}
}

// Resolver maps (state, event) to a Resolution for one nesting level.
//
// Resolve must be total and pure.
type Resolver[S, Env any] interface {
	DefaultState() S
	Resolve(old S, ev Event) Resolution[S, Env]
}

// Nested connects a child level to its parent level.
type Nested[P, C, Env any] struct {
	Resolver Resolver[C, Env]

	// Child returns the child held by a parent variant, or false when the
	// variant does not own a child of type C.
	Child func(P) (C, bool)

	// Attach is the parent level's builder. It returns the parent value with
	// the child installed, or the parent untouched when its variant cannot
	// own a C.
	Attach func(P, C) P
}

// Slot is a child level with its concrete type erased, ready for Compose.
type Slot[P, Env any] interface {
	merge(old, next P, ev Event, reset bool) (P, []Action[Env])
}

func (n Nested[P, C, Env]) merge(old, next P, ev Event, reset bool) (P, []Action[Env]) {
	child, ok := n.Child(old)
	if !ok {
		return next, nil
	}
	res := n.Resolver.Resolve(child, ev)
	if reset {
		return next, res.Actions
	}
	return n.Attach(next, res.NewState), res.Actions
}

// Compose merges a level's own resolution with its children.
//
// own must have been computed from old and ev alone. Each slot then resolves
// ev against the child of old (whether or not own changed variant) and the
// result is attached to own.NewState. Own actions come first, followed by
// child actions in slot order.
func Compose[P, Env any](own Resolution[P, Env], old P, ev Event, slots ...Slot[P, Env]) Resolution[P, Env] {
	next := own.NewState
	actions := slices.Clone(own.Actions)
	for _, slot := range slots {
		var childActions []Action[Env]
		next, childActions = slot.merge(old, next, ev, own.Reset)
		actions = append(actions, childActions...)
	}
	return Resolution[P, Env]{NewState: next, Actions: actions}
}
