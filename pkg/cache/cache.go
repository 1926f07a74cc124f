// Package cache holds the current schema shared by compilation calls that do
// not pass one explicitly.
package cache

import (
	"errors"
	"sync"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

// ErrNoSchemaCached is returned by Get when no schema has been set, or the
// cache was cleared.
var ErrNoSchemaCached = errors.New("no schema cached")

// IsNoSchemaCachedErr returns true if err is or wraps ErrNoSchemaCached.
func IsNoSchemaCachedErr(err error) bool {
	return errors.Is(err, ErrNoSchemaCached)
}

// Cache stores at most one confirmed schema.
// It is safe for concurrent use from multiple goroutines.
type Cache interface {
	// Set validates s and makes it the current schema, replacing any
	// previous one. An invalid schema is never stored; the previous schema,
	// if any, stays current.
	Set(s *schema.Schema) error

	// Get returns the current schema. The result must be treated as
	// read-only.
	Get() (*schema.Schema, error)

	// Clear discards the current schema. Clearing an empty cache is a no-op.
	Clear()
}

// Store is the default Cache implementation. The zero value is an empty
// store ready to use.
//
// Set and Clear exclude every reader while they run, so a reader sees
// either the previous schema or the new one, never a partial state.
type Store struct {
	mu      sync.RWMutex
	current *schema.Schema
	version uint64
}

var _ Cache = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Set validates s and stores a private copy of it. Validation runs before
// the write lock is taken, so readers are only blocked for the swap.
func (c *Store) Set(s *schema.Schema) error {
	if s == nil {
		return errors.New("cache: nil schema")
	}
	if err := schema.Validate(s); err != nil {
		return err
	}
	stored := s.Clone()
	stored.Normalize()

	c.mu.Lock()
	c.current = stored
	c.version++
	c.mu.Unlock()
	return nil
}

// Get returns the current schema or ErrNoSchemaCached.
func (c *Store) Get() (*schema.Schema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, ErrNoSchemaCached
	}
	return c.current, nil
}

// Clear discards the current schema.
func (c *Store) Clear() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}

// Version counts successful Set calls. It changes whenever the current
// schema is replaced and lets callers detect a swap between two reads.
func (c *Store) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
