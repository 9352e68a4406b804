package sqlite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// jsonlPath returns the JSONL file backing a table.
func jsonlPath(dataDir, tableName string) string {
	return filepath.Join(dataDir, tableName+".jsonl")
}

// initJSONLFiles creates an empty JSONL file for every standard table that
// does not have one yet.
func initJSONLFiles(dataDir string) error {
	for _, name := range types.StandardTableNames {
		path := jsonlPath(dataDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil
}

// readJSONL returns each non-empty line of a JSONL file that is a JSON
// object. Other lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []json.RawMessage
	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || !gjson.ValidBytes(line) || !gjson.ParseBytes(line).IsObject() {
			continue
		}
		records = append(records, json.RawMessage(line))
	}
	return records, nil
}

// writeJSONL replaces path with one record per line. The file is written
// to a temporary sibling, synced and renamed, so readers see either the
// old or the new contents.
func writeJSONL(path string, records []json.RawMessage) (err error) {
	var buf bytes.Buffer
	for _, rec := range records {
		buf.Write(rec)
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
