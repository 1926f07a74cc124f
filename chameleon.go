// Package chameleon compiles a schema description language into SQL.
//
// A schema declares entities with typed fields and relations:
//
//	entity User {
//	    id: uuid primary default uuid_v4(),
//	    name: string required,
//	    orders: [Order],
//	}
//
//	entity Order {
//	    id: uuid primary,
//	    total: decimal required,
//	    user: User,
//	}
//
// The pipeline has four stages:
//
//   - pkg/parser turns DSL text into a schema.Schema and stops at the first
//     syntax error.
//   - schema.Validate checks the model and reports every problem at once.
//   - pkg/compiler turns a query or mutation into SQL with "?" placeholders
//     and an ordered parameter list. Values are never written into the SQL
//     text.
//   - pkg/migrator emits CREATE TABLE statements ordered by foreign key
//     dependencies.
//
// # Text Boundary
//
// The functions in this package wrap the pipeline for callers that exchange
// text, such as other processes or language bindings. Every input and output
// is DSL text or JSON:
//
//	schemaJSON, err := chameleon.Parse(dsl)
//	result, err := chameleon.GenerateSQL(`{"entity":"User","select":["name"]}`, schemaJSON)
//	// {"sql":"SELECT name FROM User","params":[]}
//
// # Schema Cache
//
// Repeated calls can skip decoding and validating the schema by caching it:
//
//	if err := chameleon.SetSchemaCache(schemaJSON); err != nil {
//	    return err
//	}
//	out := chameleon.GenerateMutationSQL(`{"type":"insert","entity":"User","fields":{"name":"Ann"}}`, "")
//	// {"valid":true,"sql":"INSERT INTO User (name) VALUES (?)","params":["Ann"]}
//
// The package-level functions share one process-wide Engine. Tests and
// applications that need isolation should create their own with NewEngine.
//
// # Error Handling
//
// Errors wrap one of the sentinels in this package. Use the Is*Err helpers
// or Kind to classify them:
//
//	if chameleon.IsNoSchemaCachedErr(err) {
//	    // call SetSchemaCache first
//	}
package chameleon

var defaultEngine = NewEngine()

// Default returns the process-wide engine used by the package-level
// functions.
func Default() *Engine {
	return defaultEngine
}

// Parse parses DSL text into the JSON form of the schema.
func Parse(dsl string) (string, error) {
	return defaultEngine.Parse(dsl)
}

// Validate checks a DSL or JSON schema and returns {"valid", "errors"}.
func Validate(input string) (string, error) {
	return defaultEngine.Validate(input)
}

// GenerateSQL compiles a JSON query and returns {"sql", "params"}.
func GenerateSQL(queryJSON, schemaJSON string) (string, error) {
	return defaultEngine.GenerateSQL(queryJSON, schemaJSON)
}

// GenerateMigration returns ordered DDL for a JSON schema.
func GenerateMigration(schemaJSON string) (string, error) {
	return defaultEngine.GenerateMigration(schemaJSON)
}

// SetSchemaCache validates a JSON schema and caches it.
func SetSchemaCache(schemaJSON string) error {
	return defaultEngine.SetSchemaCache(schemaJSON)
}

// ClearSchemaCache discards the cached schema.
func ClearSchemaCache() {
	defaultEngine.ClearSchemaCache()
}

// GenerateMutationSQL compiles a JSON mutation and returns a MutationResult
// as JSON.
func GenerateMutationSQL(mutationJSON, schemaJSON string) string {
	return defaultEngine.GenerateMutationSQL(mutationJSON, schemaJSON)
}
