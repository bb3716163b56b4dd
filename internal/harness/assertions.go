package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/authflow/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string         // Assertion type for categorization
	Expected string         // Human-readable expected outcome
	Actual   string         // Human-readable actual outcome
	Trace    []store.Record // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, rec := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s: %s -> %s %v\n", rec.Seq, rec.Event, rec.From, rec.To, rec.Actions)
	}

	return buf.String()
}

func assertState(result *Result, a Assertion) error {
	if result.Final == a.State {
		return nil
	}
	return &AssertionError{
		Type:     AssertState,
		Expected: a.State,
		Actual:   result.Final,
		Trace:    result.Trace,
	}
}

// assertTraceContains checks that some transition matches every field set on
// the assertion.
func assertTraceContains(trace []store.Record, a Assertion) error {
	for _, rec := range trace {
		if a.Event != "" && rec.Event != a.Event {
			continue
		}
		if a.To != "" && rec.To != a.To {
			continue
		}
		if a.Action != "" && !slices.Contains(rec.Actions, a.Action) {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("transition with event=%q action=%q to=%q", a.Event, a.Action, a.To),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that actions were scheduled in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed).
func assertTraceOrder(trace []store.Record, a Assertion) error {
	var scheduled []string
	for _, rec := range trace {
		scheduled = append(scheduled, rec.Actions...)
	}

	// Find first position of each expected action (1-indexed for readability).
	positions := make(map[string]int)
	for i, name := range scheduled {
		if _, seen := positions[name]; !seen {
			positions[name] = i + 1
		}
	}

	for _, action := range a.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertNoActions checks that every transition caused by the event was a
// no-op. The event must appear at least once.
func assertNoActions(trace []store.Record, a Assertion) error {
	found := false
	for _, rec := range trace {
		if rec.Event != a.Event {
			continue
		}
		found = true
		if len(rec.Actions) > 0 || rec.From != rec.To {
			return &AssertionError{
				Type:     AssertNoActions,
				Expected: fmt.Sprintf("%s to be a no-op", a.Event),
				Actual:   fmt.Sprintf("seq %d: %s -> %s %v", rec.Seq, rec.From, rec.To, rec.Actions),
				Trace:    trace,
			}
		}
	}
	if !found {
		return &AssertionError{
			Type:     AssertNoActions,
			Expected: fmt.Sprintf("%s in trace", a.Event),
			Actual:   "not found in trace",
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertState:
			err = assertState(result, a)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertNoActions:
			err = assertNoActions(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
