package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/authflow/internal/config"
)

// Error codes for configuration failures outside the schema.
const (
	ErrCodeConfigMissing = "E001" // no config path given
	ErrCodeConfigLoad    = "E002" // file unreadable or not YAML
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Config *config.Config           `json:"config,omitempty"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

// NewValidateConfigCommand creates the validate-config command.
func NewValidateConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate an authflow configuration against its schema.

The file is decoded strictly, overlaid with AUTHFLOW_* environment
variables and checked against the embedded CUE schema. Every failure
is reported, not just the first. The path defaults to --config.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runValidateConfig(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidateConfig(opts *RootOptions, path string, cmd *cobra.Command) error {
	out := newOutput(opts, cmd)

	if path == "" {
		_ = out.Error(ErrCodeConfigMissing, "no config file given", nil)
		return NewExitError(ExitCommandError, "no config file given")
	}
	out.Debugf("Validating %s", path)

	cfg, err := config.Load(path)
	var invalid *config.InvalidError
	switch {
	case errors.As(err, &invalid):
		return outputValidationErrors(out, invalid.Errors)
	case err != nil:
		_ = out.Error(ErrCodeConfigLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	return out.Result(ValidationResult{Valid: true, Config: redact(cfg)}, func(w io.Writer) {
		fmt.Fprintf(w, "✓ %s is valid (store: %s, hosted UI: %t)\n", path, cfg.Store.Driver, cfg.HostedUI.Enabled())
	})
}

// redact hides the client secret from printed configuration.
func redact(cfg config.Config) *config.Config {
	if cfg.Provider.ClientSecret != "" {
		cfg.Provider.ClientSecret = "REDACTED"
	}
	return &cfg
}

func outputValidationErrors(out *Output, errs []config.ValidationError) error {
	msg := fmt.Sprintf("%d validation error(s)", len(errs))
	err := out.Failure("E_INVALID_CONFIG", msg, ValidationResult{Valid: false, Errors: errs}, func(w io.Writer) {
		fmt.Fprintf(w, "✗ %s\n", msg)
		for _, e := range errs {
			fmt.Fprintf(w, "  [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	})
	if err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
