// Package main provides a CLI for chameleon schema projects.
//
// The CLI supports:
//   - parse: Print a schema as JSON, or reformat its DSL
//   - validate (check): Report every problem in a schema
//   - migrate: Write the CREATE TABLE migration for a schema
//   - query / mutate: Compile a JSON or YAML request to parameterized SQL
//   - generate models: Produce Go, TypeScript or Python model types
//   - doctor: Run health checks on a schema project
//   - watch: Re-validate and re-migrate when schema files change
//
// No command connects to a database. The SQL is written to files or stdout
// for the application or a migration tool to run.
//
// Usage:
//
//	chameleon [flags] <command>
package main

func main() {
	Execute()
}
