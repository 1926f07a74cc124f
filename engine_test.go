package chameleon_test

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	chameleon "github.com/dperalta86/chameleondb"
	"github.com/dperalta86/chameleondb/pkg/cache"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

const userDSL = `entity User { id: uuid primary, name: string required, }`

func parseJSON(t *testing.T, e *chameleon.Engine, dsl string) string {
	t.Helper()
	js, err := e.Parse(dsl)
	require.NoError(t, err)
	return js
}

func mutationResult(t *testing.T, out string) chameleon.MutationResult {
	t.Helper()
	var res chameleon.MutationResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestEngine_Parse(t *testing.T) {
	e := chameleon.NewEngine()

	js := parseJSON(t, e, `
entity User { id: uuid primary, name: string required, posts: [Post] }
entity Post { id: integer primary, title: string, author: User }
`)
	s, err := schema.Decode([]byte(js))
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Post"}, s.EntityNames())
	assert.True(t, s.Entities[0].Fields[0].Required, "primary implies required")

	again := parseJSON(t, e, schema.Format(s))
	assert.JSONEq(t, js, again)

	_, err = e.Parse(`entity User { id uuid }`)
	require.Error(t, err)
	assert.True(t, chameleon.IsSyntaxErr(err))
	assert.Contains(t, err.Error(), "line 1")
}

func TestEngine_Validate(t *testing.T) {
	e := chameleon.NewEngine()

	tests := []struct {
		name  string
		input string
		valid bool
		kinds []string
	}{
		{
			name:  "valid dsl",
			input: userDSL,
			valid: true,
		},
		{
			name:  "valid json",
			input: parseJSON(t, e, userDSL),
			valid: true,
		},
		{
			name: "has_many with its belongs_to",
			input: `
entity User { id: uuid primary default uuid_v4(), name: string required, orders: [Order] }
entity Order { id: uuid primary, total: decimal required, user: User }`,
			valid: true,
		},
		{
			name: "all problems are reported",
			input: `
entity Post { id: integer primary, author: Author }
entity User { name: string }`,
			kinds: []string{"dangling_relation", "missing_primary_key"},
		},
		{
			name:  "syntax error",
			input: `entity User { id: uuid primary`,
			kinds: []string{"parse_error"},
		},
		{
			name:  "malformed json",
			input: `{"version": 1}`,
			kinds: []string{"malformed_input"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Validate(tt.input)
			require.NoError(t, err)

			var res chameleon.ValidationResult
			require.NoError(t, json.Unmarshal([]byte(out), &res))
			assert.Equal(t, tt.valid, res.Valid)
			assert.NotNil(t, res.Errors)

			kinds := make([]string, len(res.Errors))
			for i, e := range res.Errors {
				kinds[i] = e.Kind
				assert.NotEmpty(t, e.Message)
			}
			if tt.kinds == nil {
				tt.kinds = []string{}
			}
			assert.ElementsMatch(t, tt.kinds, kinds)
		})
	}

	t.Run("valid result encodes an empty list", func(t *testing.T) {
		out, err := e.Validate(userDSL)
		require.NoError(t, err)
		assert.JSONEq(t, `{"valid":true,"errors":[]}`, out)
	})

	t.Run("parse errors carry a location", func(t *testing.T) {
		res := e.ValidateSchema("entity User {\n  id: uuid primary\n  name string\n}")
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "parse_error", res.Errors[0].Kind)
		assert.Equal(t, 3, res.Errors[0].Line)
		assert.Positive(t, res.Errors[0].Column)
	})
}

func TestEngine_GenerateSQL(t *testing.T) {
	e := chameleon.NewEngine()
	js := parseJSON(t, e, `
entity User { id: integer primary, name: string required, age: integer, orders: [Order] }
entity Order { id: integer primary, total: decimal, user: User }
`)

	out, err := e.GenerateSQL(`{
		"entity": "User",
		"select": ["name", "orders.total"],
		"filters": [{"field": "age", "op": "gte", "value": 21}],
		"order_by": [{"field": "name"}],
		"limit": 10
	}`, js)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sql": "SELECT User.name, orders.total AS orders_total FROM User LEFT JOIN \"Order\" AS orders ON orders.user_id = User.id WHERE User.age >= ? ORDER BY User.name ASC LIMIT 10",
		"params": [21]
	}`, out)

	t.Run("unknown field", func(t *testing.T) {
		_, err := e.GenerateSQL(`{"entity": "User", "select": ["nmae"]}`, js)
		require.Error(t, err)
		assert.True(t, chameleon.IsGenerationErr(err))
		assert.Equal(t, "unknown_field", chameleon.Kind(err))
		assert.Contains(t, err.Error(), `did you mean "name"?`)
	})

	t.Run("malformed query", func(t *testing.T) {
		_, err := e.GenerateSQL(`{"select": ["name"]}`, js)
		require.Error(t, err)
		assert.True(t, chameleon.IsMalformedInputErr(err))
		assert.Contains(t, err.Error(), "entity is required")
	})

	t.Run("invalid schema", func(t *testing.T) {
		bad := parseJSON(t, e, `entity User { name: string }`)
		_, err := e.GenerateSQL(`{"entity": "User"}`, bad)
		assert.True(t, chameleon.IsInvalidSchemaErr(err))
	})
}

func TestEngine_GenerateMigration(t *testing.T) {
	e := chameleon.NewEngine()

	ddl, err := e.GenerateMigration(parseJSON(t, e, `
entity Post { id: integer primary, author: User }
entity User { id: integer primary, email: string unique }
`))
	require.NoError(t, err)
	user := strings.Index(ddl, "CREATE TABLE User")
	post := strings.Index(ddl, "CREATE TABLE Post")
	require.GreaterOrEqual(t, user, 0)
	require.GreaterOrEqual(t, post, 0)
	assert.Less(t, user, post, "referenced table is created first")
	assert.Contains(t, ddl, "author_id INTEGER REFERENCES User(id)")

	_, err = e.GenerateMigration(parseJSON(t, e, `
entity A { id: integer primary, b: B }
entity B { id: integer primary, a: A }
`))
	require.Error(t, err)
	assert.True(t, chameleon.IsCircularDependencyErr(err))
	assert.Equal(t, "circular_dependency", chameleon.Kind(err))
}

func TestEngine_ConcreteScenario(t *testing.T) {
	e := chameleon.NewEngine()
	const insert = `{"type":"insert","entity":"User","fields":{"name":"Ann"}}`

	t.Run("primary key without default must be supplied", func(t *testing.T) {
		res := mutationResult(t, e.GenerateMutationSQL(insert, parseJSON(t, e, userDSL)))
		assert.False(t, res.Valid)
		assert.Equal(t, "missing_required_field", res.Kind)
		assert.Contains(t, res.Error, "id")
	})

	t.Run("generated primary key is omitted", func(t *testing.T) {
		js := parseJSON(t, e, `entity User { id: uuid primary default uuid_v4(), name: string required, }`)
		out := e.GenerateMutationSQL(insert, js)
		assert.JSONEq(t, `{"valid":true,"sql":"INSERT INTO User (name) VALUES (?)","params":["Ann"]}`, out)
	})
}

func TestEngine_SchemaCache(t *testing.T) {
	store := cache.New()
	e := chameleon.NewEngine(chameleon.WithCache(store))
	js := parseJSON(t, e, `entity User { id: uuid primary default uuid_v4(), name: string required, email: string }`)
	mutations := []string{
		`{"type":"insert","entity":"User","fields":{"name":"Ann","email":"ann@example.com"}}`,
		`{"type":"update","entity":"User","fields":{"email":null},"filters":{"name":"Ann"}}`,
		`{"type":"delete","entity":"User","filters":[{"field":"email","op":"is_null"}]}`,
		`{"type":"delete","entity":"User"}`,
		`{"type":"insert","entity":"Missing","fields":{}}`,
	}

	res := mutationResult(t, e.GenerateMutationSQL(mutations[0], ""))
	assert.False(t, res.Valid)
	assert.Equal(t, "no_schema_cached", res.Kind)

	require.NoError(t, e.SetSchemaCache(js))
	assert.Same(t, store, e.Cache())

	for _, m := range mutations {
		assert.JSONEq(t, e.GenerateMutationSQL(m, js), e.GenerateMutationSQL(m, ""), m)
	}

	t.Run("invalid schema is not cached", func(t *testing.T) {
		err := e.SetSchemaCache(parseJSON(t, e, `entity Other { name: string }`))
		assert.True(t, chameleon.IsInvalidSchemaErr(err))

		res := mutationResult(t, e.GenerateMutationSQL(mutations[0], ""))
		assert.True(t, res.Valid, "previous schema stays cached")
	})

	t.Run("malformed schema is rejected", func(t *testing.T) {
		err := e.SetSchemaCache(`{"entities": [{"fields": []}]}`)
		assert.True(t, chameleon.IsMalformedInputErr(err))
	})

	t.Run("generate sql and migration fall back to the cache", func(t *testing.T) {
		out, err := e.GenerateSQL(`{"entity":"User","select":["name"]}`, "")
		require.NoError(t, err)
		assert.JSONEq(t, `{"sql":"SELECT name FROM User","params":[]}`, out)

		_, err = e.GenerateMigration("")
		require.NoError(t, err)
	})

	e.ClearSchemaCache()
	e.ClearSchemaCache()

	res = mutationResult(t, e.GenerateMutationSQL(mutations[0], ""))
	assert.False(t, res.Valid)
	assert.Equal(t, "no_schema_cached", res.Kind)
	assert.Equal(t, "no schema cached", res.Error)

	_, err := e.GenerateSQL(`{"entity":"User"}`, "")
	assert.True(t, chameleon.IsNoSchemaCachedErr(err))
}

func TestEngine_InjectionSafety(t *testing.T) {
	const payload = `'; DROP TABLE x; --`
	e := chameleon.NewEngine()
	js := parseJSON(t, e, `entity User { id: integer primary, name: string }`)

	lit, err := json.Marshal(payload)
	require.NoError(t, err)

	out, err := e.GenerateSQL(`{"entity":"User","filters":[{"field":"name","value":`+string(lit)+`}]}`, js)
	require.NoError(t, err)
	var q struct {
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.NotContains(t, q.SQL, "DROP")
	assert.Equal(t, []any{payload}, q.Params)

	for _, m := range []string{
		`{"type":"insert","entity":"User","fields":{"id":1,"name":` + string(lit) + `}}`,
		`{"type":"update","entity":"User","fields":{"name":` + string(lit) + `},"filters":{"id":1}}`,
		`{"type":"delete","entity":"User","filters":{"name":` + string(lit) + `}}`,
	} {
		res := mutationResult(t, e.GenerateMutationSQL(m, js))
		require.True(t, res.Valid, res.Error)
		assert.NotContains(t, res.SQL, "DROP")
		assert.Contains(t, res.Params, payload)
	}
}

func TestPackageFunctions(t *testing.T) {
	t.Cleanup(chameleon.ClearSchemaCache)

	js, err := chameleon.Parse(`entity Tag { id: integer primary, label: string required }`)
	require.NoError(t, err)

	out, err := chameleon.Validate(js)
	require.NoError(t, err)
	assert.JSONEq(t, `{"valid":true,"errors":[]}`, out)

	require.NoError(t, chameleon.SetSchemaCache(js))
	_, err = chameleon.Default().Cache().Get()
	require.NoError(t, err)

	out, err = chameleon.GenerateSQL(`{"entity":"Tag","filters":[{"field":"label","op":"like","value":"go%"}]}`, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"SELECT id, label FROM Tag WHERE label LIKE ?","params":["go%"]}`, out)

	ddl, err := chameleon.GenerateMigration(js)
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE Tag (\n    id INTEGER PRIMARY KEY,\n    label TEXT NOT NULL\n);", ddl)

	assert.JSONEq(t,
		`{"valid":true,"sql":"INSERT INTO Tag (id, label) VALUES (?, ?)","params":[1,"go"]}`,
		chameleon.GenerateMutationSQL(`{"type":"insert","entity":"Tag","fields":{"label":"go","id":1}}`, ""))

	chameleon.ClearSchemaCache()
	res := mutationResult(t, chameleon.GenerateMutationSQL(`{"type":"delete","entity":"Tag","all_rows":true}`, ""))
	assert.Equal(t, "no_schema_cached", res.Kind)
}

// The generated DDL and DML run unchanged on SQLite.
func TestEngine_SQLite(t *testing.T) {
	e := chameleon.NewEngine(chameleon.WithNaming(schema.Naming{Strategy: schema.NamingSnakePlural}))
	js := parseJSON(t, e, `
entity Book { id: integer primary, title: string required, pageCount: integer, author: Author }
entity Author { id: integer primary, name: string required unique, books: [Book] }
`)
	require.NoError(t, e.SetSchemaCache(js))

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	ddl, err := e.GenerateMigration("")
	require.NoError(t, err)
	for _, stmt := range strings.Split(ddl, "\n\n") {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	exec := func(mutation string) sql.Result {
		t.Helper()
		res := mutationResult(t, e.GenerateMutationSQL(mutation, ""))
		require.True(t, res.Valid, res.Error)
		r, err := db.Exec(res.SQL, res.Params...)
		require.NoError(t, err, res.SQL)
		return r
	}

	exec(`{"type":"insert","entity":"Author","fields":{"id":1,"name":"Ann"}}`)
	exec(`{"type":"insert","entity":"Author","fields":{"id":2,"name":"Bob"}}`)
	exec(`{"type":"insert","entity":"Book","fields":{"id":10,"title":"Go","pageCount":320,"author_id":1}}`)
	exec(`{"type":"insert","entity":"Book","fields":{"id":11,"title":"SQL","pageCount":90,"author_id":2}}`)
	exec(`{"type":"insert","entity":"Book","fields":{"id":12,"title":"Draft","author_id":1}}`)

	r := exec(`{"type":"update","entity":"Book","fields":{"pageCount":120},"filters":[{"field":"pageCount","op":"is_null"}]}`)
	n, err := r.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	out, err := e.GenerateSQL(`{
		"entity": "Book",
		"select": ["title", "author.name"],
		"filters": [{"field": "pageCount", "op": "gt", "value": 100}],
		"order_by": [{"field": "title"}]
	}`, "")
	require.NoError(t, err)
	var q struct {
		SQL    string `json:"sql"`
		Params []any  `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q))

	rows, err := db.Query(q.SQL, q.Params...)
	require.NoError(t, err, q.SQL)
	defer rows.Close()
	var got [][2]string
	for rows.Next() {
		var title, author string
		require.NoError(t, rows.Scan(&title, &author))
		got = append(got, [2]string{title, author})
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][2]string{{"Draft", "Ann"}, {"Go", "Ann"}}, got)

	r = exec(`{"type":"delete","entity":"Book","filters":{"author_id":2}}`)
	n, err = r.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
