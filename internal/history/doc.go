// Package history provides the linear undo/redo timeline behind a tracked
// record.
//
// A History holds an ordered list of entries and a cursor. Every entry is
// either a snapshot of the value or a tombstone marking a deletion:
//
//	h := history.New(attr)
//	h.Update(types.Patch{"required": false})
//	h.MarkDeleted()
//	h.Undo() // back to the updated snapshot
//
// # Branching
//
// Undo and Redo only move the cursor. The entries after the cursor stay in
// place until the next Update or MarkDeleted, which discards them before
// appending. A new edit made after undoing therefore abandons the old
// future.
//
// # Invariants
//
// The first entry is the construction value and is never removed. The
// cursor always points at an existing entry. Values returned by Current,
// Previous and At are owned by the history and must not be modified.
package history
