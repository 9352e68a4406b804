package tracking

import (
	"fmt"

	"github.com/mesh-intelligence/apiconf/internal/history"
	"github.com/mesh-intelligence/apiconf/internal/snapshot"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Record is a change-tracked record. It implements types.Tracker.
type Record[T any] struct {
	id       string
	original *T
	history  *history.History[T]
	status   types.Status
}

var _ types.Tracker[struct{}] = (*Record[struct{}])(nil)

// NewRecord wraps value in a change-tracked record. A Pristine record keeps
// a deep copy of value as its original; a New record has no original.
//
// Returns types.ErrInvalidArgument if value is nil or the requested initial
// status is not Pristine or New.
func NewRecord[T any](value T, opts ...Option) (*Record[T], error) {
	cfg := defaultRecordConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if snapshot.IsNil(value) {
		return nil, fmt.Errorf("new record: nil value: %w", types.ErrInvalidArgument)
	}
	if !cfg.status.IsInitial() {
		return nil, fmt.Errorf("new record: initial status %q: %w", cfg.status, types.ErrInvalidArgument)
	}

	r := &Record[T]{
		id:      cfg.newID(),
		history: history.New(value),
		status:  cfg.status,
	}
	if cfg.status == types.StatusPristine {
		original := snapshot.Clone(value)
		r.original = &original
	}
	return r, nil
}

// ID returns the identity token generated at construction.
func (r *Record[T]) ID() string {
	return r.id
}

// Status returns the record's lifecycle status.
func (r *Record[T]) Status() types.Status {
	return r.status
}

// Current returns the value at the history cursor, or false when deleted.
func (r *Record[T]) Current() (T, bool) {
	return r.history.Current()
}

// Previous returns the value one step behind the history cursor.
func (r *Record[T]) Previous() (T, bool) {
	return r.history.Previous()
}

// Original returns the value the record was loaded with. The boolean is
// false for records created New.
func (r *Record[T]) Original() (T, bool) {
	if r.original == nil {
		var zero T
		return zero, false
	}
	return *r.original, true
}

// CanUndo reports whether Undo would move the history cursor.
func (r *Record[T]) CanUndo() bool {
	return r.history.CanUndo()
}

// CanRedo reports whether Redo would move the history cursor.
func (r *Record[T]) CanRedo() bool {
	return r.history.CanRedo()
}

// HistoryLen returns the number of history entries.
func (r *Record[T]) HistoryLen() int {
	return r.history.Len()
}

// Update merges patch over the current value and marks the record
// Modified, including when the merge changed nothing. On error the record
// is unchanged.
func (r *Record[T]) Update(patch types.Patch) error {
	if err := r.history.Update(patch); err != nil {
		return fmt.Errorf("update record %s: %w", r.id, err)
	}
	r.status = types.StatusModified
	return nil
}

// Delete marks the record Deleted.
func (r *Record[T]) Delete() {
	r.history.MarkDeleted()
	r.status = types.StatusDeleted
}

// Restore reverses an immediately preceding Delete by stepping back once.
// The status becomes Pristine, or New for records without an original,
// whatever value the history lands on.
func (r *Record[T]) Restore() {
	r.status = r.baseStatus()
	if r.history.CurrentEntry().IsTombstone() {
		r.history.Undo()
	}
}

// Undo steps the history back and re-derives the status. Returns false
// when there is nothing to undo.
func (r *Record[T]) Undo() bool {
	entry, ok := r.history.Undo()
	if !ok {
		return false
	}
	value, live := entry.Value()
	switch {
	case !live:
		r.status = types.StatusDeleted
	case r.original != nil && snapshot.Equal(value, *r.original):
		r.status = types.StatusPristine
	default:
		r.status = types.StatusModified
	}
	return true
}

// Redo steps the history forward. The status becomes Deleted on a
// tombstone and Modified otherwise. Returns false when there is nothing
// to redo.
func (r *Record[T]) Redo() bool {
	entry, ok := r.history.Redo()
	if !ok {
		return false
	}
	if entry.IsTombstone() {
		r.status = types.StatusDeleted
	} else {
		r.status = types.StatusModified
	}
	return true
}

// Diff returns a unified diff from the original value to the current one.
// A New record diffs from an empty document; a deleted record diffs to one.
func (r *Record[T]) Diff() (string, error) {
	var base, target []string
	var err error
	if r.original != nil {
		if base, err = snapshot.Lines(*r.original); err != nil {
			return "", fmt.Errorf("diff record %s: %w", r.id, err)
		}
	}
	if current, ok := r.Current(); ok {
		if target, err = snapshot.Lines(current); err != nil {
			return "", fmt.Errorf("diff record %s: %w", r.id, err)
		}
	}
	return snapshot.Diff("original", base, "current", target), nil
}

func (r *Record[T]) baseStatus() types.Status {
	if r.original != nil {
		return types.StatusPristine
	}
	return types.StatusNew
}
