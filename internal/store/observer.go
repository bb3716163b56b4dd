package store

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/authflow/internal/engine"
)

// TransitionLog is an engine observer appending every transition to a
// Store. Write failures are logged; the engine never waits on them beyond
// the single insert.
type TransitionLog[S any] struct {
	store    *Store
	describe func(S) string
	logger   *slog.Logger
}

// NewTransitionLog creates the observer. describe renders states as variant
// paths. A nil logger discards write errors.
func NewTransitionLog[S any](s *Store, describe func(S) string, logger *slog.Logger) *TransitionLog[S] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TransitionLog[S]{store: s, describe: describe, logger: logger}
}

// OnTransition implements engine.Observer.
func (l *TransitionLog[S]) OnTransition(ctx context.Context, t engine.Transition[S]) {
	rec := RecordOf(t, l.describe)
	if err := l.store.AppendTransition(context.WithoutCancel(ctx), rec); err != nil {
		l.logger.Error("transition not recorded", "seq", t.Seq, "event", rec.Event, "error", err)
	}
}
