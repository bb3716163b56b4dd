// Package metrics exports engine activity as Prometheus metrics through an
// engine observer.
package metrics

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/authflow/internal/engine"
)

const namespace = "authflow"

// Observer counts events, root transitions and scheduled actions, and
// tracks the current root variant. Register it with Engine.Observe.
type Observer[S any] struct {
	describe func(S) string

	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	actions     *prometheus.CounterVec
	state       *prometheus.GaugeVec
}

// New creates an Observer and registers its collectors on reg. describe
// renders a state as its variant path; only the first path segment is used
// as a label so cardinality stays bounded.
func New[S any](reg prometheus.Registerer, describe func(S) string) (*Observer[S], error) {
	o := &Observer[S]{
		describe: describe,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Events resolved by the engine.",
		}, []string{"event"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Root variant changes.",
		}, []string{"from", "to"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_scheduled_total",
			Help:      "Actions scheduled by resolutions.",
		}, []string{"action"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "1 for the current root variant, 0 otherwise.",
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{o.events, o.transitions, o.actions, o.state} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnTransition implements engine.Observer.
func (o *Observer[S]) OnTransition(_ context.Context, t engine.Transition[S]) {
	o.events.WithLabelValues(t.Event.Type()).Inc()
	for _, name := range t.Actions {
		o.actions.WithLabelValues(name).Inc()
	}

	from, to := root(o.describe(t.From)), root(o.describe(t.To))
	if from != to {
		o.transitions.WithLabelValues(from, to).Inc()
		o.state.WithLabelValues(from).Set(0)
	}
	o.state.WithLabelValues(to).Set(1)
}

func root(path string) string {
	head, _, _ := strings.Cut(path, "/")
	return head
}
