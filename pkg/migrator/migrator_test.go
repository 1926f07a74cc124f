package migrator

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

const blogSchema = `
entity Comment { id: integer primary, body: string required, post: Post }
entity Post { id: integer primary, title: string required, published: boolean default false, author: User }
entity User { id: integer primary, name: string required unique, created: timestamp default now() }
`

func TestMigrator_Migrate(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewMigrator(dir, Options{})
	s := mustSchema(t, blogSchema)

	last, err := m.GetLastMigration()
	require.NoError(t, err)
	assert.Nil(t, last)

	skipped, err := m.Migrate(ctx, s, MigrateOptions{})
	require.NoError(t, err)
	assert.False(t, skipped)

	content, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	checksum, err := SchemaChecksum(s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "-- Generated by chameleon. DO NOT EDIT.\n-- Schema checksum: "+checksum+"\n"))
	assert.Contains(t, string(content), "-- Tables: User, Post, Comment\n\nCREATE TABLE User (")

	last, err = m.GetLastMigration()
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, checksum, last.SchemaChecksum)
	assert.Equal(t, CodegenVersion, last.CodegenVersion)
	assert.Equal(t, []string{"User", "Post", "Comment"}, last.Tables)

	t.Run("unchanged schema is skipped", func(t *testing.T) {
		reformatted := mustSchema(t, "// same schema\n"+blogSchema)
		skipped, err := m.Migrate(ctx, reformatted, MigrateOptions{})
		require.NoError(t, err)
		assert.True(t, skipped)
	})

	t.Run("force rewrites", func(t *testing.T) {
		skipped, err := m.Migrate(ctx, s, MigrateOptions{Force: true})
		require.NoError(t, err)
		assert.False(t, skipped)
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		changed := mustSchema(t, blogSchema+"entity Tag { id: integer primary }")
		var buf bytes.Buffer
		skipped, err := m.Migrate(ctx, changed, MigrateOptions{DryRun: &buf})
		require.NoError(t, err)
		assert.False(t, skipped)
		assert.Contains(t, buf.String(), "CREATE TABLE Tag (")

		after, err := os.ReadFile(m.Path())
		require.NoError(t, err)
		assert.Equal(t, content, after)
	})

	t.Run("invalid schema is rejected", func(t *testing.T) {
		_, err := m.Migrate(ctx, mustSchema(t, `entity A { name: string }`), MigrateOptions{Force: true})
		assert.True(t, schema.IsInvalidSchemaErr(err))
	})
}

func TestMigrator_Split(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewMigrator(dir, Options{})

	stale := filepath.Join(dir, tablesDir, "009_Old.sql")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("-- old"), 0o644))

	_, err := m.Migrate(ctx, mustSchema(t, blogSchema), MigrateOptions{Split: true})
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, tablesDir))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"001_User.sql", "002_Post.sql", "003_Comment.sql"}, names)

	post, err := os.ReadFile(filepath.Join(dir, tablesDir, "002_Post.sql"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(post), "CREATE TABLE Post ("))
}

func TestGenerate_ExecutesOnSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	plan, err := Generate(mustSchema(t, blogSchema+`
entity Tag { id: integer primary, label: string unique }
entity PostTag { id: integer primary, post: Post, tag: Tag }
`), Options{})
	require.NoError(t, err)

	for _, st := range plan.Statements {
		_, err := db.Exec(st.SQL)
		require.NoError(t, err, st.SQL)
	}

	_, err = db.Exec(`INSERT INTO User (id, name) VALUES (1, 'ann')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO User (id, name) VALUES (2, 'ann')`)
	assert.Error(t, err, "unique constraint")
	_, err = db.Exec(`INSERT INTO Post (id, title, author_id) VALUES (1, 'hello', 1)`)
	require.NoError(t, err)

	var published bool
	require.NoError(t, db.QueryRow(`SELECT published FROM Post WHERE id = 1`).Scan(&published))
	assert.False(t, published)
}
