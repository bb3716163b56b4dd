package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario, expectation or validation failure
	ExitCommandError = 2 // Command error (invalid paths, unreachable store, etc.)
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError creates an ExitError around err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError describes a failure in a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Output writes command results either as text or as a JSON Response.
type Output struct {
	Format  string
	Out     io.Writer
	Diag    io.Writer // verbose diagnostics; kept off Out so JSON stays parseable
	Verbose bool
}

func newOutput(opts *RootOptions, cmd *cobra.Command) *Output {
	return &Output{
		Format:  opts.Format,
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
}

// JSON reports whether the output format is JSON.
func (o *Output) JSON() bool {
	return o.Format == "json"
}

// Result writes data: wrapped in an "ok" Response for JSON, through text
// otherwise.
func (o *Output) Result(data any, text func(w io.Writer)) error {
	if o.JSON() {
		return o.encode(Response{Status: "ok", Data: data})
	}
	text(o.Out)
	return nil
}

// Failure is Result for a command that ran but did not succeed. The JSON
// Response carries both data and the error.
func (o *Output) Failure(code, message string, data any, text func(w io.Writer)) error {
	if o.JSON() {
		return o.encode(Response{
			Status: "error",
			Data:   data,
			Error:  &ResponseError{Code: code, Message: message},
		})
	}
	text(o.Out)
	return nil
}

// Error writes an error that left no result.
func (o *Output) Error(code, message string, details any) error {
	if o.JSON() {
		return o.encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(o.Out, "Error [%s]: %s\n", code, message)
	if o.Verbose && details != nil {
		fmt.Fprintf(o.Out, "Details: %v\n", details)
	}
	return nil
}

// Debugf writes a diagnostic line when verbose.
func (o *Output) Debugf(format string, args ...any) {
	if !o.Verbose {
		return
	}
	w := o.Diag
	if w == nil {
		w = o.Out
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (o *Output) encode(resp Response) error {
	enc := json.NewEncoder(o.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
