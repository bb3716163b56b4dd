package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/authflow/internal/userpool"
)

// Scenario is one authentication workflow with its expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Users populate the in-process user pool.
	Users []userpool.User `yaml:"users"`

	// ClientSecret, when set, makes every provider request carry a secret
	// hash.
	ClientSecret string `yaml:"client_secret,omitempty"`

	// Browser enables hosted UI sign-in through a simulated browser.
	Browser *BrowserSpec `yaml:"browser,omitempty"`

	// Steps run in order. Each step runs to quiescence before the next.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// BrowserSpec configures the simulated hosted UI browser.
type BrowserSpec struct {
	Username string `yaml:"username"`
	Cancel   bool   `yaml:"cancel,omitempty"`
	Deny     bool   `yaml:"deny,omitempty"`
}

// Step is exactly one of: send an event, advance the clock, or take the
// provider on- or offline.
type Step struct {
	// Send is the event type to send (e.g., "authn.signInRequested").
	Send string `yaml:"send,omitempty"`

	// Args are decoded into the event's fields.
	Args map[string]any `yaml:"args,omitempty"`

	// Advance moves the clock forward (e.g., "2h").
	Advance string `yaml:"advance,omitempty"`

	// Provider is "offline" or "online".
	Provider string `yaml:"provider,omitempty"`

	// Expect is the variant path required after the step.
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates the final state or the trace.
type Assertion struct {
	Type    string   `yaml:"type"`
	State   string   `yaml:"state,omitempty"`
	Event   string   `yaml:"event,omitempty"`
	Action  string   `yaml:"action,omitempty"`
	To      string   `yaml:"to,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion type constants.
const (
	AssertState         = "state"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertNoActions     = "no_actions"
)

// Provider step values.
const (
	ProviderOffline = "offline"
	ProviderOnline  = "online"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(b)
}

// ParseScenario parses scenario YAML.
func ParseScenario(b []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	for _, v := range []string{step.Send, step.Advance, step.Provider} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of send, advance or provider is required", index)
	}

	switch {
	case step.Send != "":
		if _, ok := eventDecoders[step.Send]; !ok {
			return fmt.Errorf("steps[%d]: unknown event %q", index, step.Send)
		}
	case step.Advance != "":
		if _, err := time.ParseDuration(step.Advance); err != nil {
			return fmt.Errorf("steps[%d]: advance: %w", index, err)
		}
		if step.Args != nil {
			return fmt.Errorf("steps[%d]: args are only valid with send", index)
		}
	default:
		if step.Provider != ProviderOffline && step.Provider != ProviderOnline {
			return fmt.Errorf("steps[%d]: provider must be %q or %q", index, ProviderOffline, ProviderOnline)
		}
		if step.Args != nil {
			return fmt.Errorf("steps[%d]: args are only valid with send", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for state", index)
		}
	case AssertTraceContains:
		if a.Event == "" && a.Action == "" && a.To == "" {
			return fmt.Errorf("assertions[%d]: one of event, action or to is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("assertions[%d]: actions list is required for trace_order", index)
		}
	case AssertNoActions:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for no_actions", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
