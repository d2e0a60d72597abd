// Package optimistic applies local changes before the backend confirms
// them: snapshot, apply, attempt, then merge the server's record or roll
// back to the snapshot.
package optimistic

import (
	"context"
	"errors"
	"sync"
)

// ErrMissing is returned when a mutation targets an absent key and has no
// placeholder to synthesize
var ErrMissing = errors.New("entity not found")

// Mutation is one optimistic change to the entity at Key
type Mutation[K comparable, T any] struct {
	Key K
	// Placeholder builds a temporary entity when Key is absent. When nil,
	// mutating an absent key fails with ErrMissing.
	Placeholder func() T
	// Apply returns the locally changed entity
	Apply func(T) T
	// Commit performs the backend call and returns the authoritative record
	Commit func(ctx context.Context) (T, error)
	// Merge folds the server record into the local one. Nil means replace.
	// Placeholders are always replaced wholesale.
	Merge func(local, server T) T
}

// Collection is an ordered, keyed set of entities under optimistic control.
// Concurrent mutations of one key are not serialized: each rollback restores
// its own snapshot and the last response to arrive wins.
type Collection[K comparable, T any] struct {
	keyOf func(T) K

	mu    sync.Mutex
	items []T
}

func NewCollection[K comparable, T any](keyOf func(T) K) *Collection[K, T] {
	return &Collection[K, T]{keyOf: keyOf}
}

// Replace swaps in a fresh server listing
func (c *Collection[K, T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

// Items returns a copy in current order
func (c *Collection[K, T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T{}, c.items...)
}

func (c *Collection[K, T]) Get(key K) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(key); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Update rewrites the entity at key in place with no backend round trip.
// It reports whether the key was present.
func (c *Collection[K, T]) Update(key K, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.items[i] = fn(c.items[i])
	return true
}

// Mutate runs m. On success it returns the reconciled entity; on failure
// the collection is restored to exactly what it held before the change and
// the commit error is returned.
func (c *Collection[K, T]) Mutate(ctx context.Context, m Mutation[K, T]) (T, error) {
	var zero T

	c.mu.Lock()
	snapshot := append([]T(nil), c.items...)
	created := false
	if i := c.indexOf(m.Key); i >= 0 {
		c.items[i] = m.Apply(c.items[i])
	} else {
		if m.Placeholder == nil {
			c.mu.Unlock()
			return zero, ErrMissing
		}
		c.items = append(c.items, m.Apply(m.Placeholder()))
		created = true
	}
	c.mu.Unlock()

	server, err := m.Commit(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.items = snapshot
		return zero, err
	}

	i := c.indexOf(m.Key)
	if i < 0 {
		// Another mutation's rollback removed our placeholder; the server
		// still holds the record, so show it
		c.items = append(c.items, server)
		return server, nil
	}
	switch {
	case created || m.Merge == nil:
		c.items[i] = server
	default:
		c.items[i] = m.Merge(c.items[i], server)
	}
	return c.items[i], nil
}

func (c *Collection[K, T]) indexOf(key K) int {
	for i, it := range c.items {
		if c.keyOf(it) == key {
			return i
		}
	}
	return -1
}
