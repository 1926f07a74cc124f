package compiler_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dperalta86/chameleondb/pkg/compiler"
	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/query"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func TestCompileBatch(t *testing.T) {
	s, err := parser.ParseSchemaString(`entity User { id: integer primary, name: string required }`)
	require.NoError(t, err)

	var reqs []compiler.Request
	for i := 0; i < 50; i++ {
		reqs = append(reqs, compiler.Request{Query: &query.Query{
			Entity:  "User",
			Select:  []string{"name"},
			Filters: []query.Filter{query.Eq("id", i)},
		}})
	}
	reqs = append(reqs,
		compiler.Request{Mutation: &query.Mutation{Type: query.Insert, Entity: "User", Fields: map[string]any{"id": 1, "name": "Ann"}}},
		compiler.Request{Query: &query.Query{Entity: "Nope"}},
		compiler.Request{},
	)

	out, err := compiler.CompileBatch(context.Background(), s, reqs, compiler.Options{}, 4)
	require.NoError(t, err)
	require.Len(t, out, len(reqs))

	for i := 0; i < 50; i++ {
		require.NoError(t, out[i].Err, fmt.Sprint(i))
		assert.Equal(t, "SELECT name FROM User WHERE id = ?", out[i].SQL.SQL)
		assert.Equal(t, []any{i}, out[i].SQL.Params)
	}
	require.NoError(t, out[50].Err)
	assert.Equal(t, "INSERT INTO User (id, name) VALUES (?, ?)", out[50].SQL.SQL)
	assert.True(t, schema.IsGenerationErr(out[51].Err))
	assert.Error(t, out[52].Err)
}

func TestCompileBatch_Cancelled(t *testing.T) {
	s, err := parser.ParseSchemaString(`entity User { id: integer primary }`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = compiler.CompileBatch(ctx, s, []compiler.Request{{Query: &query.Query{Entity: "User"}}}, compiler.Options{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
