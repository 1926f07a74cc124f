package chameleon

import (
	"errors"

	"github.com/dperalta86/chameleondb/pkg/cache"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// Sentinel errors for each failure class. Every error returned by the engine
// wraps exactly one of them.
//
// Use the Is*Err helper functions to classify an error, or Kind to get the
// label used in JSON results.
var (
	// ErrSyntax is returned when schema DSL text is malformed. The error is a
	// *parser.ParseError carrying the line and column.
	ErrSyntax = parser.ErrSyntax

	// ErrInvalidSchema is returned when a schema fails validation. The error
	// is a schema.ValidationErrors listing every problem found.
	ErrInvalidSchema = schema.ErrInvalidSchema

	// ErrGeneration is returned when a query, mutation or schema cannot be
	// compiled to SQL.
	ErrGeneration = schema.ErrGeneration

	// ErrCircularDependency is returned by migration generation when tables
	// reference each other in a cycle. It also matches ErrGeneration.
	ErrCircularDependency = schema.ErrCircularDependency

	// ErrMalformedInput is returned when a JSON document does not have the
	// expected structure.
	ErrMalformedInput = schema.ErrMalformedInput

	// ErrNoSchemaCached is returned when an operation falls back to the
	// schema cache and it is empty. Call SetSchemaCache first.
	ErrNoSchemaCached = cache.ErrNoSchemaCached

	// ErrInternal signals a bug in the engine rather than bad input.
	ErrInternal = schema.ErrInternal
)

// IsSyntaxErr returns true if err is or wraps ErrSyntax.
func IsSyntaxErr(err error) bool {
	return errors.Is(err, ErrSyntax)
}

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsGenerationErr returns true if err is or wraps ErrGeneration.
func IsGenerationErr(err error) bool {
	return errors.Is(err, ErrGeneration)
}

// IsCircularDependencyErr returns true if err is or wraps ErrCircularDependency.
func IsCircularDependencyErr(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

// IsMalformedInputErr returns true if err is or wraps ErrMalformedInput.
func IsMalformedInputErr(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsNoSchemaCachedErr returns true if err is or wraps ErrNoSchemaCached.
func IsNoSchemaCachedErr(err error) bool {
	return errors.Is(err, ErrNoSchemaCached)
}

// IsInternalErr returns true if err is or wraps ErrInternal.
func IsInternalErr(err error) bool {
	return errors.Is(err, ErrInternal)
}

// Error kinds reported by Kind for failures that are not a GenerationError.
const (
	KindParseError     = "parse_error"
	KindInvalidSchema  = "invalid_schema"
	KindMalformedInput = "malformed_input"
	KindNoSchemaCached = "no_schema_cached"
	KindInternal       = "internal_error"
)

// Kind returns a stable label for err. Generation errors report their own
// kind ("unknown_field", "circular_dependency", ...). It returns "" for nil.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var genErr *schema.GenerationError
	switch {
	case IsNoSchemaCachedErr(err):
		return KindNoSchemaCached
	case errors.As(err, &genErr):
		return string(genErr.Kind)
	case IsSyntaxErr(err):
		return KindParseError
	case IsInvalidSchemaErr(err):
		return KindInvalidSchema
	case IsMalformedInputErr(err):
		return KindMalformedInput
	default:
		return KindInternal
	}
}
