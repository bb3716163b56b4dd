// Package hostedui drives hosted web sign-in: open the provider's page,
// wait for the redirect, then exchange the authorization code.
package hostedui

import (
	"github.com/roach88/authflow/internal/data"
)

// State is the hosted UI level's variant set.
type State interface {
	hostedUIState()
}

// NotStarted is the initial variant.
type NotStarted struct{}

// ShowingUI waits for the browser to redirect back.
type ShowingUI struct {
	Options data.HostedUIOptions
}

// FetchingToken waits for the code exchange.
type FetchingToken struct{}

// Done is terminal success.
type Done struct{}

// Cancelled is terminal: the user or caller abandoned the flow.
type Cancelled struct{}

// Error is terminal failure.
type Error struct {
	Err error
}

func (NotStarted) hostedUIState() {}
func (ShowingUI) hostedUIState() {}
func (FetchingToken) hostedUIState() {}
func (Done) hostedUIState() {}
func (Cancelled) hostedUIState() {}
func (Error) hostedUIState() {}

// Describe returns the variant name.
func Describe(s State) string {
	switch s.(type) {
	case NotStarted:
		return "NotStarted"
	case ShowingUI:
		return "ShowingUI"
	case FetchingToken:
		return "FetchingToken"
	case Done:
		return "Done"
	case Cancelled:
		return "Cancelled"
	case Error:
		return "Error"
	}
	return "Unknown"
}
