package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/authflow/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Event    string // optional - filter to one event type
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Transitions []store.Record `json:"transitions"`
	Stats       TraceStats     `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Transitions int    `json:"transitions"`
	Actions     int    `json:"actions"`
	LastSeq     int64  `json:"last_seq"`
	Final       string `json:"final,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the recorded transition log",
		Long: `Show the transitions recorded in a SQLite store.

Every committed transition is listed in sequence order with its event,
source and target state paths, and the actions it scheduled.

Examples:
  authflow trace --db ./authflow.db
  authflow trace --db ./authflow.db --event authn.signInRequested
  authflow trace --db ./authflow.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to one event type")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	records, err := st.ReadTransitions(ctx, opts.Event)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read transitions", err)
	}

	result := TraceResult{Transitions: records, Stats: traceStats(records)}
	return newOutput(opts.RootOptions, cmd).Result(result, func(w io.Writer) {
		printTrace(w, result, opts.Verbose)
	})
}

func traceStats(records []store.Record) TraceStats {
	stats := TraceStats{Transitions: len(records)}
	for _, rec := range records {
		stats.Actions += len(rec.Actions)
	}
	if n := len(records); n > 0 {
		stats.LastSeq = records[n-1].Seq
		stats.Final = records[n-1].To
	}
	return stats
}

// printTrace writes the trace as text. Transitions that kept the state are
// collapsed unless verbose.
func printTrace(w io.Writer, result TraceResult, verbose bool) {
	fmt.Fprintln(w, "=== Transitions ===")
	if len(result.Transitions) == 0 {
		fmt.Fprintln(w, "  (no transitions)")
	}
	for _, rec := range result.Transitions {
		if rec.From == rec.To && !verbose {
			fmt.Fprintf(w, "  [%d] %s (no change)\n", rec.Seq, rec.Event)
		} else {
			fmt.Fprintf(w, "  [%d] %s: %s -> %s\n", rec.Seq, rec.Event, rec.From, rec.To)
		}
		if len(rec.Actions) > 0 {
			fmt.Fprintf(w, "       actions: %s\n", strings.Join(rec.Actions, ", "))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Transitions: %d\n", result.Stats.Transitions)
	fmt.Fprintf(w, "  Actions:     %d\n", result.Stats.Actions)
	if result.Stats.Final != "" {
		fmt.Fprintf(w, "  Final:       %s\n", result.Stats.Final)
	}
}
