package chameleon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dperalta86/chameleondb/pkg/cache"
	"github.com/dperalta86/chameleondb/pkg/compiler"
	"github.com/dperalta86/chameleondb/pkg/migrator"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

// Engine runs the compilation pipeline behind the text boundary. Every
// operation takes schema DSL or JSON documents and returns text.
//
// An Engine owns one schema cache. Operations that accept an optional
// schema fall back to the cached one when the argument is empty.
//
// Engine is safe for concurrent use.
type Engine struct {
	cache  cache.Cache
	naming schema.Naming
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache makes the engine use c instead of a private store.
func WithCache(c cache.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithNaming sets the table and column naming strategy for generated SQL
// and DDL. The default uses entity and field names unchanged.
func WithNaming(n schema.Naming) Option {
	return func(e *Engine) {
		e.naming = n
	}
}

// NewEngine creates an engine with an empty schema cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = cache.New()
	}
	return e
}

// Cache returns the engine's schema cache.
func (e *Engine) Cache() cache.Cache {
	return e.cache
}

// Parse parses DSL text and returns the JSON form of the schema. The schema
// is not validated. A syntax error is returned as a *parser.ParseError.
func (e *Engine) Parse(dsl string) (string, error) {
	s, err := parser.ParseSchemaString(dsl)
	if err != nil {
		return "", err
	}
	return encode(schema.Encode(s))
}

// ValidateSchema checks a schema given as DSL text or as its JSON form.
// Input whose first non-space character is '{' is treated as JSON.
//
// Parse and decode failures are reported as a single entry of the result,
// so the result always describes the input.
func (e *Engine) ValidateSchema(input string) *ValidationResult {
	s, err := decodeSchema(input)
	if err == nil {
		err = schema.Validate(s)
	}
	return newValidationResult(err)
}

// Validate is ValidateSchema rendered as JSON:
//
//	{"valid": false, "errors": [{"kind": "dangling_relation", "message": "...", "path": "Post.author", "line": 3, "column": 5}]}
func (e *Engine) Validate(input string) (string, error) {
	return encode(json.Marshal(e.ValidateSchema(input)))
}

// GenerateSQL compiles a JSON query against a JSON schema and returns
// {"sql": "...", "params": [...]}. An empty schemaJSON uses the cached
// schema.
func (e *Engine) GenerateSQL(queryJSON, schemaJSON string) (string, error) {
	s, err := e.resolveSchema(schemaJSON)
	if err != nil {
		return "", err
	}
	q, err := query.DecodeQuery([]byte(queryJSON))
	if err != nil {
		return "", fmt.Errorf("decoding query: %w", err)
	}
	out, err := compiler.CompileQuery(s, q, e.compileOptions())
	if err != nil {
		return "", err
	}
	return encode(json.Marshal(out))
}

// GenerateMigration returns the CREATE TABLE statements for a JSON schema,
// ordered so that every table is created after the tables it references.
// An empty schemaJSON uses the cached schema.
func (e *Engine) GenerateMigration(schemaJSON string) (string, error) {
	s, err := e.resolveSchema(schemaJSON)
	if err != nil {
		return "", err
	}
	return migrator.GenerateSQL(s, migrator.Options{Naming: e.naming})
}

// SetSchemaCache validates a JSON schema and makes it the cached schema.
// An invalid schema is not cached and the previous one stays current.
func (e *Engine) SetSchemaCache(schemaJSON string) error {
	s, err := schema.Decode([]byte(schemaJSON))
	if err != nil {
		return fmt.Errorf("decoding schema: %w", err)
	}
	return e.cache.Set(s)
}

// ClearSchemaCache discards the cached schema.
func (e *Engine) ClearSchemaCache() {
	e.cache.Clear()
}

// CompileMutation compiles a JSON mutation. An empty schemaJSON uses the
// cached schema; when none is cached the error matches ErrNoSchemaCached.
func (e *Engine) CompileMutation(mutationJSON, schemaJSON string) (*compiler.GeneratedSQL, error) {
	s, err := e.resolveSchema(schemaJSON)
	if err != nil {
		return nil, err
	}
	m, err := query.DecodeMutation([]byte(mutationJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding mutation: %w", err)
	}
	return compiler.CompileMutation(s, m, e.compileOptions())
}

// GenerateMutationSQL is CompileMutation rendered as a MutationResult. It
// never fails; the outcome is reported in the "valid" member:
//
//	{"valid": true, "sql": "INSERT INTO User (name) VALUES (?)", "params": ["Ann"]}
//	{"valid": false, "error": "no schema cached", "kind": "no_schema_cached"}
func (e *Engine) GenerateMutationSQL(mutationJSON, schemaJSON string) string {
	out, err := e.CompileMutation(mutationJSON, schemaJSON)
	res := newMutationResult(out, err)
	b, err := json.Marshal(res)
	if err != nil {
		b, _ = json.Marshal(MutationResult{Error: err.Error(), Kind: KindInternal})
	}
	return string(b)
}

func (e *Engine) compileOptions() compiler.Options {
	return compiler.Options{Naming: e.naming}
}

// resolveSchema decodes and validates schemaJSON, or returns the cached
// schema when schemaJSON is blank.
func (e *Engine) resolveSchema(schemaJSON string) (*schema.Schema, error) {
	if strings.TrimSpace(schemaJSON) == "" {
		return e.cache.Get()
	}
	s, err := schema.Decode([]byte(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	if err := schema.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// decodeSchema accepts DSL text or the JSON form of a schema.
func decodeSchema(input string) (*schema.Schema, error) {
	if strings.HasPrefix(strings.TrimSpace(input), "{") {
		return schema.Decode([]byte(input))
	}
	return parser.ParseSchemaString(input)
}

func encode(b []byte, err error) (string, error) {
	if err != nil {
		return "", &schema.InternalError{Message: "encoding result", Err: err}
	}
	return string(b), nil
}

// ErrorInfo describes one failure in a JSON result.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Path is "Entity" or "Entity.member" for semantic errors and a JSON
	// path for malformed input.
	Path       string `json:"path,omitempty"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult is the outcome of ValidateSchema. Errors is empty, not
// null, when Valid is true.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Errors []ErrorInfo `json:"errors"`
}

func newValidationResult(err error) *ValidationResult {
	if err == nil {
		return &ValidationResult{Valid: true, Errors: []ErrorInfo{}}
	}
	return &ValidationResult{Errors: ErrorInfos(err)}
}

// ErrorInfos flattens err into result entries. ValidationErrors produce one
// entry per problem; any other error produces a single entry.
func ErrorInfos(err error) []ErrorInfo {
	if verrs := schema.Errors(err); len(verrs) > 0 {
		out := make([]ErrorInfo, len(verrs))
		for i, v := range verrs {
			out[i] = ErrorInfo{
				Kind:    string(v.Kind),
				Message: v.Message,
				Path:    v.Path,
				File:    v.Pos.File,
				Line:    v.Pos.Line,
				Column:  v.Pos.Column,
			}
		}
		return out
	}

	info := ErrorInfo{Kind: Kind(err), Message: err.Error()}
	var (
		parseErr *parser.ParseError
		genErr   *schema.GenerationError
		inputErr *schema.InputError
	)
	switch {
	case errors.As(err, &parseErr):
		info.Message = parseErr.Error()
		info.File = parseErr.Pos.File
		info.Line = parseErr.Pos.Line
		info.Column = parseErr.Pos.Column
	case errors.As(err, &genErr):
		info.Message = genErr.Message
		info.Path = genErr.Path
		info.Suggestion = genErr.Suggestion
	case errors.As(err, &inputErr):
		info.Path = inputErr.Path
	}
	return []ErrorInfo{info}
}

// MutationResult is the outcome of GenerateMutationSQL. On success it
// encodes as {"valid": true, "sql", "params"}, otherwise as
// {"valid": false, "error", "kind"}.
type MutationResult struct {
	Valid  bool
	SQL    string
	Params []any
	Error  string
	Kind   string
}

func newMutationResult(out *compiler.GeneratedSQL, err error) MutationResult {
	if err != nil {
		return MutationResult{Error: err.Error(), Kind: Kind(err)}
	}
	return MutationResult{Valid: true, SQL: out.SQL, Params: out.Params}
}

// MarshalJSON implements json.Marshaler.
func (r MutationResult) MarshalJSON() ([]byte, error) {
	if r.Valid {
		params := r.Params
		if params == nil {
			params = []any{}
		}
		return json.Marshal(struct {
			Valid  bool   `json:"valid"`
			SQL    string `json:"sql"`
			Params []any  `json:"params"`
		}{true, r.SQL, params})
	}
	return json.Marshal(struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}{false, r.Error, r.Kind})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *MutationResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Valid  bool   `json:"valid"`
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
		Error  string `json:"error"`
		Kind   string `json:"kind"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = MutationResult(raw)
	return nil
}
