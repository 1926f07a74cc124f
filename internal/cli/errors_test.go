package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func TestClassify(t *testing.T) {
	_, parseErr := parser.ParseSchemaString("entity {")
	require.Error(t, parseErr)

	invalid := schema.ValidationErrors{{Kind: schema.KindMissingPrimaryKey, Message: `entity "User" has no primary key`}}

	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "nil", err: nil, code: ExitSuccess},
		{name: "syntax", err: parseErr, code: ExitSchemaParse},
		{name: "invalid schema", err: fmt.Errorf("loading schema: %w", invalid), code: ExitValidation},
		{name: "generation", err: schema.Generationf(schema.KindUnknownField, "User.nme", "unknown field"), code: ExitGeneration},
		{name: "circular", err: schema.Generationf(schema.KindCircularDependency, "", "cycle"), code: ExitGeneration},
		{name: "other", err: errors.New("disk full"), code: ExitGeneral},
		{name: "already classified", err: ConfigError("bad config", nil), code: ExitConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ExitCode(Classify("failed", tt.err)))
		})
	}
}

func TestPrintError(t *testing.T) {
	verrs := schema.ValidationErrors{
		{Kind: schema.KindMissingPrimaryKey, Message: "no primary key", Path: "User"},
		{Kind: schema.KindDanglingRelation, Message: "unknown entity", Path: "User.orders"},
	}

	var buf bytes.Buffer
	PrintError(&buf, ValidationError("invalid schema", verrs))
	assert.Equal(t, "Error: invalid schema (2 problems)\n"+
		"  User: no primary key [missing_primary_key]\n"+
		"  User.orders: unknown entity [dangling_relation]\n", buf.String())

	buf.Reset()
	PrintError(&buf, GeneralError("boom", nil))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, LogLevel(0, false))
	assert.Equal(t, slog.LevelInfo, LogLevel(1, false))
	assert.Equal(t, slog.LevelDebug, LogLevel(3, false))
	assert.Equal(t, slog.LevelError, LogLevel(2, true))

	var buf bytes.Buffer
	logger := NewLogger(&buf, 1, false)
	logger.Debug("hidden")
	logger.Info("shown", "entity", "User")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown entity=User")
}
