// Package harness runs authentication scenarios described in YAML against the
// real state tree and actions.
//
// A scenario lists the users of an in-process user pool, the events to send
// and the assertions to check on the recorded trace. Every event runs to
// quiescence with synchronous actions, so a scenario produces the same trace
// on every run and the trace can be compared against a golden file.
//
// Example:
//
//	name: mfa_cancel
//	description: Cancelling at the MFA prompt ends signed out.
//	users:
//	  - {username: bob, password: hunter22, mfa: SOFTWARE_TOKEN_MFA, mfa_code: "654321"}
//	steps:
//	  - send: authn.configure
//	  - send: authn.signInRequested
//	    args: {method: srp, username: bob, password: hunter22}
//	    expect: SigningIn/ResolvingChallenge/WaitingForAnswer
//	  - send: authn.cancelSignIn
//	assertions:
//	  - {type: state, state: SignedOut}
//
// Assertion types:
//   - state: the final variant path equals State
//   - trace_contains: some transition matches Event, Action and To (each optional)
//   - trace_order: Actions were scheduled in this order, not necessarily adjacent
//   - no_actions: transitions caused by Event neither scheduled actions nor changed state
package harness
