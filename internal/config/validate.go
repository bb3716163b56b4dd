package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

// Validation error codes (E200-E299)
const (
	ErrSchema          = "E200" // value rejected by the CUE schema
	ErrSchemaCompile   = "E201" // embedded schema failed to compile
	ErrHostedUIMissing = "E210" // hosted UI redirect without a domain
	ErrSecretNoClient  = "E211" // client secret without client id
)

// ValidationError represents a config validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks cfg against the CUE schema and the cross-field rules the
// schema cannot express. Returns all errors found (does not fail-fast).
func Validate(cfg Config) []ValidationError {
	var errs []ValidationError

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []ValidationError{{Field: "schema", Message: err.Error(), Code: ErrSchemaCompile}}
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(cfg))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			format, args := e.Msg()
			errs = append(errs, ValidationError{
				Field:   strings.Join(e.Path(), "."),
				Message: fmt.Sprintf(format, args...),
				Code:    ErrSchema,
			})
		}
	}

	if !cfg.HostedUI.Enabled() && cfg.HostedUI.SignOutRedirectURI != "" {
		errs = append(errs, ValidationError{
			Field:   "hosted_ui.sign_out_redirect_uri",
			Message: "set without hosted_ui.domain",
			Code:    ErrHostedUIMissing,
		})
	}
	if cfg.Provider.ClientSecret != "" && cfg.Provider.ClientID == "" {
		errs = append(errs, ValidationError{
			Field:   "provider.client_secret",
			Message: "set without provider.client_id",
			Code:    ErrSecretNoClient,
		})
	}

	return errs
}
