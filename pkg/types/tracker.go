package types

// Patch is a partial record keyed by JSON field name. Applying a patch
// shallowly replaces the named top-level fields of the current value.
type Patch map[string]any

// Tracker is the protocol list, table and dialog collaborators use to drive
// a change-tracked record. A Tracker is owned by one editing session at a
// time; implementations are not safe for concurrent use.
type Tracker[T any] interface {
	// ID returns the identity token generated at construction.
	ID() string

	// Status returns the lifecycle status derived from the record's history.
	Status() Status

	// Current returns the value at the history cursor. The boolean is false
	// when the record is deleted.
	Current() (T, bool)

	// Previous returns the value one step behind the cursor. The boolean is
	// false at the start of history or when that step is a deletion.
	Previous() (T, bool)

	// CanUndo and CanRedo report whether the cursor can move.
	CanUndo() bool
	CanRedo() bool

	// Update merges patch over the current value. Returns ErrInvalidArgument
	// for a nil patch or values that do not fit the record type.
	Update(patch Patch) error

	// Delete appends a deletion to the history.
	Delete()

	// Restore reverses an immediately preceding Delete.
	Restore()

	// Undo and Redo move the cursor one step. They return false, without
	// changing anything, when the move is not available.
	Undo() bool
	Redo() bool
}
