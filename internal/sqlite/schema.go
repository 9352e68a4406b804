package sqlite

import (
	"database/sql"
	"fmt"
)

// Schema DDL. Every table stores the record document as JSON text, with
// the id and parent reference lifted into columns for lookups and cascades.
const (
	createEntities = `CREATE TABLE entities (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);`

	createAttributes = `CREATE TABLE attributes (
    id TEXT PRIMARY KEY,
    entity_id TEXT NOT NULL,
    data TEXT NOT NULL
);`

	createSecurity = `CREATE TABLE security (
    id TEXT PRIMARY KEY,
    entity_id TEXT,
    data TEXT NOT NULL
);`

	createDeployment = `CREATE TABLE deployment (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL
);`
)

// Index DDL for parent lookups.
const (
	idxAttributesEntity = `CREATE INDEX idx_attributes_entity ON attributes(entity_id);`
	idxSecurityEntity   = `CREATE INDEX idx_security_entity ON security(entity_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createEntities,
	createAttributes,
	createSecurity,
	createDeployment,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxAttributesEntity,
	idxSecurityEntity,
}

// createSchema executes all table and index DDL.
func createSchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
