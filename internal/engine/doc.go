// Package engine implements the hierarchical state machine runtime that drives
// the authentication workflows.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Events are resolved one at a time against an immutable state tree. This
// ensures:
// - No event is ever resolved against a partially applied resolution
// - Events are processed in submission order
// - Readers can load the current tree at any time without locking
//
// Resolution Cycle:
// 1. Send() appends an event to the FIFO intake queue
// 2. Run() (or ProcessPending()) dequeues exactly one event
// 3. The root Resolver returns a Resolution: a new tree plus ordered actions
// 4. The new tree replaces the old one with a single pointer swap
// 5. Observers and waiters see the committed Transition
// 6. Every action of the resolution is started in declared order
//
// Actions run on their own goroutines unless the engine was built with
// WithSynchronousActions. Actions built with NewInlineAction always run on the
// loop before the next event is resolved. Either way an action only talks back through
// Send, so follow-up events always queue behind whatever was already pending.
//
// Composition:
// Each nesting level owns one Resolver. A level computes its own transition
// first, then hands the same event to the resolver of every child the OLD
// variant owns (see Compose and Nested). Parent actions precede child actions.
//
// Resolvers must be total and side-effect free. An event that is meaningless
// for a level resolves to the unchanged state with no actions.
package engine
