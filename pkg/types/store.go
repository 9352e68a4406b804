package types

import "encoding/json"

// Store is the persistence collaborator for saved records. It receives only
// final record values; it never sees edit history.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	// After Detach, operations on tables return ErrStoreDetached.
	Detach() error
}

// Table provides CRUD over the JSON documents of one record kind.
type Table interface {
	// Get returns the stored document with the given ID.
	// Returns ErrNotFound if no record exists with that ID.
	Get(id string) (json.RawMessage, error)

	// Set creates or replaces a record. When the document's "id" field is
	// empty a new UUID v7 is generated and written into it. Parent
	// references are checked on every write; a missing parent returns
	// ErrDanglingReference. Returns the ID used.
	Set(data any) (string, error)

	// Delete removes the record with the given ID, cascading to records
	// that reference it. Returns ErrNotFound if no record exists.
	Delete(id string) error

	// Fetch returns every stored document in insertion order.
	Fetch() ([]json.RawMessage, error)
}
