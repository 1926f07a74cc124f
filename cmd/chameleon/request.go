package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	chameleon "github.com/dperalta86/chameleondb"
	"github.com/dperalta86/chameleondb/internal/cli"
	"github.com/dperalta86/chameleondb/pkg/schema"
	"github.com/dperalta86/chameleondb/tooling"
)

// requestFlags are shared by query and mutate.
type requestFlags struct {
	schema string
	inline string
	sqlOut bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.schema, "schema", "", "schema file or directory (default: from config)")
	cmd.Flags().StringVarP(&f.inline, "eval", "e", "", "request given inline as JSON")
	cmd.Flags().BoolVar(&f.sqlOut, "sql", false, "print only the SQL and its parameters")
}

// readRequest returns the JSON request from --eval, a file or stdin ("-").
// Files ending in .yaml or .yml, and stdin that is not JSON, are read as
// YAML.
func readRequest(cmd *cobra.Command, args []string, inline string) ([]byte, error) {
	switch {
	case inline != "":
		return []byte(inline), nil
	case len(args) == 0:
		return nil, cli.ConfigError("a request file, '-' or --eval is required", nil)
	}

	var (
		data []byte
		err  error
		yml  bool
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		yml = !json.Valid(data)
	} else {
		data, err = os.ReadFile(args[0]) //nolint:gosec // path is from the command line
		ext := strings.ToLower(filepath.Ext(args[0]))
		yml = ext == ".yaml" || ext == ".yml"
	}
	if err != nil {
		return nil, cli.GeneralError("reading request", err)
	}
	if !yml {
		return data, nil
	}
	return yamlToJSON(data)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cli.GenerationError("decoding YAML request", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, cli.GenerationError("converting YAML request", err)
	}
	return out, nil
}

// loadEngine loads the schema project and returns an engine with it cached.
func loadEngine(path string) (*chameleon.Engine, error) {
	s, err := tooling.LoadSchema(path)
	if err != nil {
		return nil, cli.Classify("loading schema", err)
	}
	data, err := schema.Encode(s)
	if err != nil {
		return nil, cli.GeneralError("encoding schema", err)
	}
	engine := chameleon.NewEngine(chameleon.WithNaming(cfg.SchemaNaming()))
	if err := engine.SetSchemaCache(string(data)); err != nil {
		return nil, cli.Classify("caching schema", err)
	}
	logger.Debug("schema cached", "path", path, "entities", len(s.Entities))
	return engine, nil
}

// printSQL writes a {"sql", "params"} result either as indented JSON or, with
// sqlOnly, as the statement followed by a parameter comment.
func printSQL(w io.Writer, sqlText string, params []any, sqlOnly bool) error {
	if params == nil {
		params = []any{}
	}
	if sqlOnly {
		p, err := json.Marshal(params)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s;\n-- params: %s\n", sqlText, p)
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
	}{sqlText, params}); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
