package store

import (
	"context"
	"sync"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// Memory is an in-process credential store. The zero value is empty and
// ready to use.
type Memory struct {
	mu   sync.Mutex
	cred *data.SignedInData

	// ClearErr, when set, is returned by Clear. Used to exercise sign-out
	// failure.
	ClearErr error
}

var _ environment.CredentialStore = (*Memory)(nil)

// NewMemory creates a store, optionally pre-loaded with cred.
func NewMemory(cred *data.SignedInData) *Memory {
	m := &Memory{}
	if cred != nil {
		c := *cred
		m.cred = &c
	}
	return m
}

// Load implements environment.CredentialStore.
func (m *Memory) Load(context.Context) (data.SignedInData, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return data.SignedInData{}, false, nil
	}
	return *m.cred, true, nil
}

// Save implements environment.CredentialStore.
func (m *Memory) Save(_ context.Context, cred data.SignedInData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = &cred
	return nil
}

// Clear implements environment.CredentialStore.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.cred = nil
	return nil
}
