package history

import (
	"github.com/mesh-intelligence/apiconf/internal/snapshot"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// History is the edit timeline of one value. It is not safe for concurrent
// use; the owning record serialises access.
type History[T any] struct {
	entries []Entry[T]
	cursor  int
}

// New creates a History seeded with a copy of value as its permanent first
// entry.
func New[T any](value T) *History[T] {
	return &History[T]{
		entries: []Entry[T]{ValueEntry(snapshot.Clone(value))},
	}
}

// Current returns the value at the cursor, or false if it is a tombstone.
func (h *History[T]) Current() (T, bool) {
	return h.entries[h.cursor].Value()
}

// CurrentEntry returns the entry at the cursor.
func (h *History[T]) CurrentEntry() Entry[T] {
	return h.entries[h.cursor]
}

// Previous returns the value one step behind the cursor. The boolean is
// false at the first entry or when that step is a tombstone.
func (h *History[T]) Previous() (T, bool) {
	if h.cursor == 0 {
		var zero T
		return zero, false
	}
	return h.entries[h.cursor-1].Value()
}

// CanUndo reports whether the cursor can move back.
func (h *History[T]) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether the cursor can move forward.
func (h *History[T]) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of entries, including the first.
func (h *History[T]) Len() int {
	return len(h.entries)
}

// At returns the entry at index i.
func (h *History[T]) At(i int) (Entry[T], bool) {
	if i < 0 || i >= len(h.entries) {
		return Entry[T]{}, false
	}
	return h.entries[i], true
}

// Update merges patch over the current value and appends the result.
// Over a tombstone the patch is merged into an empty value. A merge equal
// to the current value appends nothing and keeps the redo future.
//
// Returns types.ErrInvalidArgument, leaving history untouched, when patch
// is nil or cannot be merged into T.
func (h *History[T]) Update(patch types.Patch) error {
	current, ok := h.Current()
	candidate, err := snapshot.Merge(current, ok, patch)
	if err != nil {
		return err
	}
	if ok && snapshot.Equal(candidate, current) {
		return nil
	}
	h.push(ValueEntry(candidate))
	return nil
}

// MarkDeleted appends a tombstone. Deleting an already deleted value does
// nothing.
func (h *History[T]) MarkDeleted() {
	if h.entries[h.cursor].IsTombstone() {
		return
	}
	h.push(Tombstone[T]())
}

// Undo moves the cursor back one step and returns the new current entry.
// Returns false, without moving, at the first entry.
func (h *History[T]) Undo() (Entry[T], bool) {
	if !h.CanUndo() {
		return Entry[T]{}, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor forward one step and returns the new current entry.
// Returns false, without moving, at the tip.
func (h *History[T]) Redo() (Entry[T], bool) {
	if !h.CanRedo() {
		return Entry[T]{}, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// push truncates the redo future and appends e at the new tip.
func (h *History[T]) push(e Entry[T]) {
	h.entries = append(h.entries[:h.cursor+1], e)
	h.cursor = len(h.entries) - 1
}
