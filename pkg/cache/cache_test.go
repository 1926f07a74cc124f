package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dperalta86/chameleondb/pkg/parser"
	"github.com/dperalta86/chameleondb/pkg/schema"
)

func parse(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := parser.ParseSchemaString(src)
	require.NoError(t, err)
	return s
}

func TestStore(t *testing.T) {
	c := New()

	_, err := c.Get()
	assert.ErrorIs(t, err, ErrNoSchemaCached)
	assert.True(t, IsNoSchemaCachedErr(err))

	c.Clear() // no-op on an empty store

	s := parse(t, `entity User { id: uuid primary, name: string required }`)
	require.NoError(t, c.Set(s))
	assert.Equal(t, uint64(1), c.Version())

	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, []string{"User"}, got.EntityNames())

	// The store keeps its own copy.
	s.Entities[0].Name = "Mutated"
	got, err = c.Get()
	require.NoError(t, err)
	assert.Equal(t, "User", got.Entities[0].Name)

	t.Run("invalid schema keeps the previous one", func(t *testing.T) {
		err := c.Set(parse(t, `entity A { name: string } entity A { id: integer primary }`))
		require.Error(t, err)
		assert.True(t, schema.IsInvalidSchemaErr(err))

		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, []string{"User"}, got.EntityNames())
		assert.Equal(t, uint64(1), c.Version())
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, c.Set(parse(t, `entity Tag { id: integer primary }`)))
		got, err := c.Get()
		require.NoError(t, err)
		assert.Equal(t, []string{"Tag"}, got.EntityNames())
	})

	t.Run("clear", func(t *testing.T) {
		c.Clear()
		_, err := c.Get()
		assert.ErrorIs(t, err, ErrNoSchemaCached)
	})

	assert.Error(t, c.Set(nil))
}

func TestStore_Concurrent(t *testing.T) {
	schemas := []*schema.Schema{
		parse(t, `entity A { id: integer primary, name: string }`),
		parse(t, `entity B { id: integer primary } entity C { id: integer primary, b: B }`),
	}
	c := New()

	eg, _ := errgroup.WithContext(context.Background())
	for w := 0; w < 8; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < 200; i++ {
				switch {
				case w == 0:
					if err := c.Set(schemas[i%2]); err != nil {
						return err
					}
				case w == 1 && i%50 == 0:
					c.Clear()
				default:
					s, err := c.Get()
					if IsNoSchemaCachedErr(err) {
						continue
					}
					if err != nil {
						return err
					}
					// A reader must see one complete schema.
					if err := schema.Validate(s); err != nil {
						return fmt.Errorf("reader saw a partial schema: %w", err)
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}
