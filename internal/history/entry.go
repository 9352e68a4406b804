package history

// Entry is one step of a History: either a value or a tombstone.
type Entry[T any] struct {
	value   T
	deleted bool
}

// ValueEntry wraps v as a live entry.
func ValueEntry[T any](v T) Entry[T] {
	return Entry[T]{value: v}
}

// Tombstone returns the entry that marks a deletion.
func Tombstone[T any]() Entry[T] {
	return Entry[T]{deleted: true}
}

// Value returns the entry's value. The boolean is false for a tombstone.
func (e Entry[T]) Value() (T, bool) {
	if e.deleted {
		var zero T
		return zero, false
	}
	return e.value, true
}

// IsTombstone reports whether the entry marks a deletion.
func (e Entry[T]) IsTombstone() bool {
	return e.deleted
}
