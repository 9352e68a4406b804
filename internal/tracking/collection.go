package tracking

import (
	"fmt"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Collection holds the records of one editing view, such as all attributes
// of an entity, in insertion order. Records are independent; no operation
// touches more than one of them.
type Collection[T any] struct {
	records []*Record[T]
	byID    map[string]*Record[T]
	newID   IDGenerator
}

// NewCollection creates an empty collection. Records it constructs use gen
// for their identity tokens; a nil gen uses UUID v7.
func NewCollection[T any](gen IDGenerator) *Collection[T] {
	if gen == nil {
		gen = NewUUID
	}
	return &Collection[T]{
		byID:  make(map[string]*Record[T]),
		newID: gen,
	}
}

// Load adds a Pristine record for every value.
func (c *Collection[T]) Load(values ...T) error {
	for i, v := range values {
		if _, err := c.add(v, types.StatusPristine); err != nil {
			return fmt.Errorf("load value %d: %w", i, err)
		}
	}
	return nil
}

// Create adds a New record for value and returns it.
func (c *Collection[T]) Create(value T) (*Record[T], error) {
	return c.add(value, types.StatusNew)
}

func (c *Collection[T]) add(value T, status types.Status) (*Record[T], error) {
	r, err := NewRecord(value, WithStatus(status), WithIDGenerator(c.newID))
	if err != nil {
		return nil, err
	}
	c.Add(r)
	return r, nil
}

// Add appends an existing record. Adding a record whose ID is already
// present replaces nothing and returns false.
func (c *Collection[T]) Add(r *Record[T]) bool {
	if _, ok := c.byID[r.ID()]; ok {
		return false
	}
	c.records = append(c.records, r)
	c.byID[r.ID()] = r
	return true
}

// Get returns the record with the given identity token.
func (c *Collection[T]) Get(id string) (*Record[T], bool) {
	r, ok := c.byID[id]
	return r, ok
}

// Find returns the first record whose current value satisfies match.
// Deleted records are skipped.
func (c *Collection[T]) Find(match func(T) bool) (*Record[T], bool) {
	for _, r := range c.records {
		if v, ok := r.Current(); ok && match(v) {
			return r, true
		}
	}
	return nil, false
}

// Records returns the records in insertion order. The slice is a copy.
func (c *Collection[T]) Records() []*Record[T] {
	out := make([]*Record[T], len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of records, deleted ones included.
func (c *Collection[T]) Len() int {
	return len(c.records)
}

// Export returns the current value of every record that is not Deleted.
func (c *Collection[T]) Export() []T {
	return Export(c.records)
}

// Dirty reports whether any record is not Pristine.
func (c *Collection[T]) Dirty() bool {
	for _, r := range c.records {
		if r.Status() != types.StatusPristine {
			return true
		}
	}
	return false
}

// Summary counts records per status.
func (c *Collection[T]) Summary() map[types.Status]int {
	out := make(map[types.Status]int, 4)
	for _, r := range c.records {
		out[r.Status()]++
	}
	return out
}

// Export filters out Deleted records and returns the current values of the
// rest, dropping any that sit on a tombstone. This is the value list handed
// to persistence.
func Export[T any](records []*Record[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.Status() == types.StatusDeleted {
			continue
		}
		if v, ok := r.Current(); ok {
			out = append(out, v)
		}
	}
	return out
}
