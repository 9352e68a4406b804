package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// table implements types.Table for a single record kind.
type table struct {
	name    string
	backend *Backend
}

// Get retrieves a record document by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Get(id string) (json.RawMessage, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	var data string
	err := t.backend.db.QueryRow(
		fmt.Sprintf("SELECT data FROM %s WHERE id = ?", t.name), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", t.name, id, err)
	}
	return json.RawMessage(data), nil
}

// Set creates or replaces a record. If the document has no id, a UUID v7
// is generated and written into it. Returns the record ID.
func (t *table) Set(data any) (string, error) {
	raw, err := encodeDocument(data)
	if err != nil {
		return "", err
	}

	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	id := gjson.GetBytes(raw, "id").String()
	if id == "" {
		id = newUUID()
		if raw, err = sjson.SetBytes(raw, "id", id); err != nil {
			return "", fmt.Errorf("set %s id: %w", t.name, err)
		}
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return "", fmt.Errorf("set %s %s: %w", t.name, id, err)
	}
	defer tx.Rollback()

	if err := t.checkParent(tx, raw); err != nil {
		return "", err
	}

	doc := gjson.ParseBytes(raw)
	if _, err := tx.Exec(upsertSQL(t.name), insertArgs(t.name, id, doc, raw)...); err != nil {
		return "", fmt.Errorf("set %s %s: %w", t.name, id, err)
	}

	// The JSONL file is written before the commit so a failed write
	// leaves the database unchanged.
	if err := t.backend.persist(tx, t.name); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("set %s %s: %w", t.name, id, err)
	}
	return id, nil
}

// Delete removes a record by ID. Deleting an entity also removes the
// attributes and security rules that reference it.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	tx, err := t.backend.db.Begin()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", t.name), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}

	touched := []string{t.name}
	for _, child := range childTables(t.name) {
		res, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE entity_id = ?", child), id)
		if err != nil {
			return fmt.Errorf("cascade delete %s: %w", child, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			touched = append(touched, child)
		}
	}

	for _, name := range touched {
		if err := t.backend.persist(tx, name); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	return nil
}

// Fetch returns every record document in insertion order.
func (t *table) Fetch() ([]json.RawMessage, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}
	return fetchAll(t.backend.db, t.name)
}

// checkParent verifies that the document's entity_id references an
// existing entity. The caller must hold the backend write lock.
func (t *table) checkParent(q querier, raw []byte) error {
	parent, required := types.ParentTable(t.name)
	if parent == "" {
		return nil
	}

	ref := gjson.GetBytes(raw, "entity_id").String()
	if ref == "" {
		if required {
			return fmt.Errorf("%s requires entity_id: %w", t.name, types.ErrInvalidData)
		}
		return nil
	}

	var found int
	err := q.QueryRow(
		fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", parent), ref).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s entity_id %q: %w", t.name, ref, types.ErrDanglingReference)
	}
	if err != nil {
		return fmt.Errorf("check %s parent: %w", t.name, err)
	}
	return nil
}

// querier is the read side shared by *sql.DB and *sql.Tx. The database
// holds a single connection, so reads inside a write must go through the
// open transaction.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// fetchAll reads every document of a table ordered by rowid.
// The caller must hold the backend lock.
func fetchAll(q querier, tableName string) ([]json.RawMessage, error) {
	rows, err := q.Query(fmt.Sprintf("SELECT data FROM %s ORDER BY rowid", tableName))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", tableName, err)
	}
	defer rows.Close()

	records := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", tableName, err)
		}
		records = append(records, json.RawMessage(data))
	}
	return records, rows.Err()
}

// persist rewrites a table's JSONL file from the rows visible to tx.
// The caller must hold the backend write lock.
func (b *Backend) persist(tx *sql.Tx, tableName string) error {
	records, err := fetchAll(tx, tableName)
	if err != nil {
		return err
	}
	if err := writeJSONL(jsonlPath(b.dataDir, tableName), records); err != nil {
		return fmt.Errorf("persist %s: %w", tableName, err)
	}
	return nil
}

// encodeDocument converts data to compact JSON and checks that it is an
// object. json.RawMessage and []byte are taken as already encoded.
func encodeDocument(data any) ([]byte, error) {
	var raw []byte
	switch v := data.(type) {
	case nil:
		return nil, types.ErrInvalidData
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode record: %v: %w", err, types.ErrInvalidData)
		}
		raw = b
	}

	// One document per JSONL line.
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("record is not valid JSON: %w", types.ErrInvalidData)
	}
	if !gjson.ParseBytes(buf.Bytes()).IsObject() {
		return nil, fmt.Errorf("record must be a JSON object: %w", types.ErrInvalidData)
	}
	return buf.Bytes(), nil
}

// upsertSQL returns an INSERT that replaces the document of an existing id
// in place, keeping its position in insertion order.
func upsertSQL(tableName string) string {
	if parent, _ := types.ParentTable(tableName); parent != "" {
		return insertSQL(tableName) +
			" ON CONFLICT(id) DO UPDATE SET entity_id = excluded.entity_id, data = excluded.data"
	}
	return insertSQL(tableName) + " ON CONFLICT(id) DO UPDATE SET data = excluded.data"
}

// childTables returns the tables whose entity_id references tableName.
func childTables(tableName string) []string {
	var out []string
	for _, name := range types.StandardTableNames {
		if parent, _ := types.ParentTable(name); parent == tableName {
			out = append(out, name)
		}
	}
	return out
}
