// Package tracking implements change-tracked records on top of the history
// engine.
//
// A Record wraps one History, a stable identity, and the value it was loaded
// with. Every mutating verb updates the history and then sets the record's
// Status:
//
//	        New ──update──► Modified
//	Pristine ──update──► Modified ──undo──► Pristine (if equal to the original)
//	Pristine/Modified/New ──delete──► Deleted
//	Deleted ──restore/undo──► Pristine | Modified | New
//	Modified ──redo──► Modified
//
// Update and Redo always report Modified, even when the value matches the
// original again; only Undo compares against the original. Records are not
// safe for concurrent use. A Collection groups independent records and
// extracts their final values for saving.
package tracking
