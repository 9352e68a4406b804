// Package tracking provides the public API for change-tracked records while
// keeping the history engine internal.
//
// Example:
//
//	rec, err := tracking.NewRecord(types.Attribute{Name: "title", Required: true})
//	if err != nil {
//	    return err
//	}
//	_ = rec.Update(types.Patch{"required": false}) // StatusModified
//	rec.Undo()                                       // StatusPristine
package tracking

import (
	"github.com/mesh-intelligence/apiconf/internal/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Record is a change-tracked record.
type Record[T any] = tracking.Record[T]

// Collection groups independent records of one kind.
type Collection[T any] = tracking.Collection[T]

// Option configures NewRecord.
type Option = tracking.Option

// IDGenerator returns a process-unique identity token.
type IDGenerator = tracking.IDGenerator

// NewRecord wraps value in a change-tracked record. See WithStatus and
// WithIDGenerator for the available options.
func NewRecord[T any](value T, opts ...Option) (*Record[T], error) {
	return tracking.NewRecord(value, opts...)
}

// NewCollection creates an empty collection whose records draw identity
// tokens from gen, or UUID v7 when gen is nil.
func NewCollection[T any](gen IDGenerator) *Collection[T] {
	return tracking.NewCollection[T](gen)
}

// WithStatus sets the initial status: types.StatusPristine or types.StatusNew.
func WithStatus(status types.Status) Option {
	return tracking.WithStatus(status)
}

// WithIDGenerator injects the identity generator.
func WithIDGenerator(gen IDGenerator) Option {
	return tracking.WithIDGenerator(gen)
}

// Export returns the current values of all records that are not Deleted.
func Export[T any](records []*Record[T]) []T {
	return tracking.Export(records)
}
