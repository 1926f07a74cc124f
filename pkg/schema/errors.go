package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Sentinel errors. The typed errors below wrap one of these so callers can
// classify a failure with errors.Is without knowing the concrete type.
var (
	// ErrInvalidSchema is wrapped by ValidationErrors.
	ErrInvalidSchema = errors.New("chameleon/schema: invalid schema")

	// ErrGeneration is wrapped by every GenerationError.
	ErrGeneration = errors.New("chameleon/schema: generation failed")

	// ErrCircularDependency is wrapped by the GenerationError returned when
	// entities reference each other in a cycle.
	ErrCircularDependency = errors.New("chameleon/schema: circular dependency")

	// ErrMalformedInput is wrapped by InputError.
	ErrMalformedInput = errors.New("chameleon/schema: malformed input")

	// ErrInternal is wrapped by InternalError.
	ErrInternal = errors.New("chameleon/schema: internal error")
)

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

// ErrorKind classifies a validation or generation error.
type ErrorKind string

// Validation error kinds.
const (
	KindDuplicateEntity        ErrorKind = "duplicate_entity"
	KindDuplicateField         ErrorKind = "duplicate_field"
	KindMissingPrimaryKey      ErrorKind = "missing_primary_key"
	KindMultiplePrimaryKeys    ErrorKind = "multiple_primary_keys"
	KindDanglingRelation       ErrorKind = "dangling_relation"
	KindUnresolvedJoin         ErrorKind = "unresolved_join"
	KindInvalidDefault         ErrorKind = "invalid_default"
	KindConflictingForeignKey  ErrorKind = "conflicting_foreign_key"
	KindForeignKeyTypeMismatch ErrorKind = "foreign_key_type_mismatch"
	KindInvalidName            ErrorKind = "invalid_name"
	KindInvalidType            ErrorKind = "invalid_type"
)

// Generation error kinds.
const (
	KindUnknownEntity        ErrorKind = "unknown_entity"
	KindUnknownField         ErrorKind = "unknown_field"
	KindUnknownRelation      ErrorKind = "unknown_relation"
	KindUnsupportedOperator  ErrorKind = "unsupported_operator"
	KindTypeMismatch         ErrorKind = "type_mismatch"
	KindMissingRequiredField ErrorKind = "missing_required_field"
	KindNotNullViolation     ErrorKind = "not_null_violation"
	KindImmutableField       ErrorKind = "immutable_field"
	KindUnsafeMutation       ErrorKind = "unsafe_mutation"
	KindEmptyMutation        ErrorKind = "empty_mutation"
	KindInvalidMutation      ErrorKind = "invalid_mutation"
	KindInvalidPagination    ErrorKind = "invalid_pagination"
	KindAmbiguousRelation    ErrorKind = "ambiguous_relation"
	KindCircularDependency   ErrorKind = "circular_dependency"
)

// ValidationError is one semantic problem found in a Schema.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Path is "Entity" or "Entity.member".
	Path string   `json:"path,omitempty"`
	Pos  Position `json:"-"`
}

func (e ValidationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is the complete list of problems found by Validate.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d validation errors: %s", len(v), strings.Join(msgs, "; "))
}

// Is makes ValidationErrors match ErrInvalidSchema.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidSchema
}

// Kinds returns the kind of every error, in order.
func (v ValidationErrors) Kinds() []ErrorKind {
	kinds := make([]ErrorKind, len(v))
	for i, e := range v {
		kinds[i] = e.Kind
	}
	return kinds
}

// GenerationError reports a query, mutation or schema that cannot be
// compiled.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Path    string
	// Suggestion is a close match for an unknown name, if any.
	Suggestion string
	// Cycle holds entity indices for circular dependency errors. The first
	// index is repeated at the end.
	Cycle []int
}

func (e *GenerationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Is makes GenerationError match ErrGeneration, and ErrCircularDependency
// for cycle errors.
func (e *GenerationError) Is(target error) bool {
	if target == ErrGeneration {
		return true
	}
	return target == ErrCircularDependency && e.Kind == KindCircularDependency
}

// Generationf builds a GenerationError with a formatted message.
func Generationf(kind ErrorKind, path, format string, args ...any) *GenerationError {
	return &GenerationError{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// InputError reports a JSON document that does not match the expected
// structure, such as a required member that is absent.
type InputError struct {
	// Path is a JSON path like "entities[0].name".
	Path    string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = e.Path + " " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error { return e.Err }

// Is makes InputError match ErrMalformedInput.
func (e *InputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// InternalError reports a broken invariant inside the engine. It signals a
// bug, not bad input.
type InternalError struct {
	Message string
	Err     error
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Message, e.Err)
	}
	return "internal error: " + e.Message
}

func (e *InternalError) Unwrap() error { return e.Err }

// Is makes InternalError match ErrInternal.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// Suggest returns the candidate closest to name by edit distance, or "" if
// none is close enough to be a plausible typo.
func Suggest(name string, candidates []string) string {
	best, bestDist := "", -1
	limit := 2
	if len(name) > 8 {
		limit = 3
	}
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if d > limit {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
