package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// loadAllJSONL reads each table's JSONL file and inserts its records.
// Tables load in StandardTableNames order so entities precede the records
// that reference them. Loading is transactional: all tables load or the
// database stays empty. Lines without an id and duplicate ids are skipped.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, name := range types.StandardTableNames {
		records, err := readJSONL(jsonlPath(dataDir, name))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, name, records); err != nil {
			return fmt.Errorf("loading %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts raw JSONL documents into a table.
func insertRecords(tx *sql.Tx, tableName string, records []json.RawMessage) error {
	stmt, err := tx.Prepare(insertSQL(tableName))
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", tableName, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		doc := gjson.ParseBytes(rec)
		if !doc.IsObject() {
			continue
		}
		id := doc.Get("id").String()
		if id == "" {
			continue
		}
		if _, err := stmt.Exec(insertArgs(tableName, id, doc, rec)...); err != nil {
			// Duplicate ids keep the first occurrence.
			continue
		}
	}
	return nil
}

// insertSQL returns the plain INSERT statement for a table.
func insertSQL(tableName string) string {
	if parent, _ := types.ParentTable(tableName); parent != "" {
		return fmt.Sprintf("INSERT INTO %s (id, entity_id, data) VALUES (?, ?, ?)", tableName)
	}
	return fmt.Sprintf("INSERT INTO %s (id, data) VALUES (?, ?)", tableName)
}

// insertArgs returns the arguments matching insertSQL and upsertSQL.
// An empty parent reference is stored as NULL.
func insertArgs(tableName, id string, doc gjson.Result, raw []byte) []any {
	if parent, _ := types.ParentTable(tableName); parent != "" {
		var ref any
		if v := doc.Get("entity_id").String(); v != "" {
			ref = v
		}
		return []any{id, ref, string(raw)}
	}
	return []any{id, string(raw)}
}
