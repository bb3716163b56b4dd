package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/roach88/authflow/internal/config"
	"github.com/roach88/authflow/internal/engine"
	"github.com/roach88/authflow/internal/harness"
	"github.com/roach88/authflow/internal/metrics"
	"github.com/roach88/authflow/internal/states/authn"
	"github.com/roach88/authflow/internal/store"
	"github.com/roach88/authflow/internal/store/redisstore"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database string // overrides store.path and forces the sqlite driver
}

// SimulateResult is the outcome of one simulated session.
type SimulateResult struct {
	Scenario string             `json:"scenario"`
	Store    string             `json:"store"`
	Pass     bool               `json:"pass"`
	Final    string             `json:"final"`
	Trace    []store.Record     `json:"trace"`
	Errors   []string           `json:"errors,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <script>",
		Short: "Drive a session through a scripted workflow",
		Long: `Run a scripted session against an in-process user pool.

The script uses the scenario format: users, an optional browser for
hosted UI sign-in, and steps sending events. Unlike test, the credential
store comes from the configuration, so a sqlite or redis store keeps the
session between runs and sqlite also records every transition for the
trace command.

Examples:
  authflow simulate ./sign_in.yaml
  authflow simulate ./sign_in.yaml --db ./authflow.db
  authflow simulate ./refresh.yaml --config ./authflow.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record to this SQLite database")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load script", err)
	}

	cfg := config.Default()
	if opts.Config != "" {
		if cfg, err = config.Load(opts.Config); err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}
	if opts.Database != "" {
		cfg.Store.Driver = config.DriverSQLite
		cfg.Store.Path = opts.Database
	}

	runOpts, closeStore, err := storeOptions(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	obs, err := metrics.New[authn.State](reg, authn.Describe)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to register metrics", err)
	}
	runOpts = append(runOpts,
		harness.WithConfig(cfg),
		harness.WithLogger(logger),
		harness.WithObserver(obs),
	)

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "simulation failed", err)
	}

	out := SimulateResult{
		Scenario: scenario.Name,
		Store:    cfg.Store.Driver,
		Pass:     result.Pass,
		Final:    result.Final,
		Trace:    result.Trace,
		Errors:   result.Errors,
	}
	if out.Metrics, err = gatherMetrics(reg); err != nil {
		return WrapExitError(ExitCommandError, "failed to gather metrics", err)
	}

	output := newOutput(opts.RootOptions, cmd)
	text := func(w io.Writer) { printSimulation(w, out, opts.Verbose) }
	if out.Pass {
		return output.Result(out, text)
	}

	msg := fmt.Sprintf("%d expectation(s) not met", len(out.Errors))
	if err := output.Failure("E_SIMULATION_FAILED", msg, out, text); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// storeOptions opens the configured credential store. The sqlite store also
// records transitions, numbering them after the last recorded one.
func storeOptions(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]harness.Option, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		last, err := st.LastSeq(ctx)
		if err != nil {
			st.Close()
			return nil, nil, err
		}
		logger.Debug("sqlite store opened", "path", cfg.Store.Path, "last_seq", last)
		return []harness.Option{
			harness.WithCredentialStore(st),
			harness.WithObserver(store.NewTransitionLog[authn.State](st, authn.Describe, logger)),
			harness.WithEngineOptions(engine.WithClock(engine.NewClockAt(last))),
		}, func() { st.Close() }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("%w: %v", redisstore.ErrUnavailable, err)
		}
		logger.Debug("redis store connected", "addr", cfg.Store.RedisAddr, "prefix", cfg.Store.RedisPrefix)
		creds := redisstore.New(client, cfg.Store.RedisPrefix, cfg.Store.TTL)
		return []harness.Option{harness.WithCredentialStore(creds)}, func() { client.Close() }, nil

	default:
		return nil, func() {}, nil
	}
}

// gatherMetrics flattens counters and gauges into "name{label=value}" keys.
func gatherMetrics(reg *prometheus.Registry) (map[string]float64, error) {
	families, err := reg.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			key := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}

func printSimulation(w io.Writer, res SimulateResult, verbose bool) {
	fmt.Fprintf(w, "Simulation: %s (store: %s)\n", res.Scenario, res.Store)
	fmt.Fprintln(w)
	for _, rec := range res.Trace {
		fmt.Fprintf(w, "  [%d] %s: %s -> %s\n", rec.Seq, rec.Event, rec.From, rec.To)
		if len(rec.Actions) > 0 {
			fmt.Fprintf(w, "       actions: %s\n", strings.Join(rec.Actions, ", "))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Final: %s\n", res.Final)

	if verbose && len(res.Metrics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Metrics ===")
		keys := make([]string, 0, len(res.Metrics))
		for k := range res.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s %g\n", k, res.Metrics[k])
		}
	}

	if res.Pass {
		fmt.Fprintln(w, "✓ All expectations met")
		return
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "✗ %s\n", e)
	}
}
