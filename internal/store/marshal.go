package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/authflow/internal/data"
)

// marshalActions converts an action name list to canonical JSON TEXT for
// storage.
func marshalActions(actions []string) (string, error) {
	if actions == nil {
		actions = []string{}
	}
	b, err := data.MarshalCanonical(actions)
	if err != nil {
		return "", fmt.Errorf("marshal actions: %w", err)
	}
	return string(b), nil
}

// unmarshalActions parses an action list written by marshalActions.
// Empty text is treated as an empty list.
func unmarshalActions(text string) ([]string, error) {
	actions := []string{}
	if text == "" {
		return actions, nil
	}
	if err := json.Unmarshal([]byte(text), &actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	return actions, nil
}
