// Package data holds the immutable values that travel through authflow:
// sign-in requests, provider results, tokens, signed-in/out data and the
// typed AuthError carried by error events.
//
// This package contains value types only. State and event packages import
// data; data imports nothing internal.
//
// Key design constraints:
//   - Values are never mutated after construction; maps are copied on entry
//   - Failures are carried as *AuthError values, never panics
//   - JSON tags use snake_case (persisted credentials, traces)
package data
