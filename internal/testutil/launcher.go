package testutil

import (
	"context"
	"sync"

	"github.com/roach88/authflow/internal/data"
	"github.com/roach88/authflow/internal/environment"
)

// Launcher is a scripted environment.HostedUILauncher. Each Launch returns
// Callback and Err and records the URL it was asked to open.
type Launcher struct {
	Callback string
	Err      error

	mu   sync.Mutex
	urls []string
}

var _ environment.HostedUILauncher = (*Launcher)(nil)

// Launch implements environment.HostedUILauncher.
func (l *Launcher) Launch(_ context.Context, url string, _ data.HostedUIOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.urls = append(l.urls, url)
	return l.Callback, l.Err
}

// URLs returns every launched URL in order.
func (l *Launcher) URLs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}
