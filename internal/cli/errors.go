// Package cli provides shared configuration and utilities for the chameleon CLI.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// Exit codes. 4 is unused.
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitConfig      = 2
	ExitSchemaParse = 3
	ExitValidation  = 5
	ExitGeneration  = 6
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// ExitCode returns the exit code for err: the code of an *ExitError in its
// chain, ExitGeneral for any other error and ExitSuccess for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneral
}

// ExitWithError prints the error and exits with the appropriate code.
func ExitWithError(err error) {
	PrintError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

// PrintError writes err the way ExitWithError does. Validation errors are
// listed one per line.
func PrintError(w io.Writer, err error) {
	var verrs schema.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 1 {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			_, _ = fmt.Fprintf(w, "Error: %s (%d problems)\n", exitErr.Message, len(verrs))
		}
		for _, v := range verrs {
			_, _ = fmt.Fprintf(w, "  %s [%s]\n", v.Error(), v.Kind)
		}
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
}

// Classify wraps err in an ExitError whose code follows the error's kind.
// Errors that are already ExitErrors are returned unchanged.
func Classify(msg string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	switch {
	case parser.IsSyntaxErr(err):
		return SchemaParseError(msg, err)
	case schema.IsInvalidSchemaErr(err):
		return ValidationError(msg, err)
	case schema.IsGenerationErr(err), schema.IsMalformedInputErr(err):
		return GenerationError(msg, err)
	}
	return GeneralError(msg, err)
}

// ConfigError creates an ExitError with ExitConfig code.
func ConfigError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitConfig, Message: msg, Err: err}
}

// SchemaParseError creates an ExitError with ExitSchemaParse code.
func SchemaParseError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitSchemaParse, Message: msg, Err: err}
}

// ValidationError creates an ExitError with ExitValidation code.
func ValidationError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitValidation, Message: msg, Err: err}
}

// GenerationError creates an ExitError with ExitGeneration code.
func GenerationError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneration, Message: msg, Err: err}
}

// GeneralError creates an ExitError with ExitGeneral code.
func GeneralError(msg string, err error) *ExitError {
	return &ExitError{Code: ExitGeneral, Message: msg, Err: err}
}
