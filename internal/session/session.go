// Package session connects change-tracked collections to a Store. A session
// loads a table into Pristine records, lets the caller edit them, and saves
// the final values back. The Store never sees edit history.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/apiconf/internal/snapshot"
	"github.com/mesh-intelligence/apiconf/internal/tracking"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// Session is one editing session over an attached Store.
type Session struct {
	store  types.Store
	logger *slog.Logger
	newID  tracking.IDGenerator
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger == nil {
			logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		s.logger = logger
	}
}

// WithIDGenerator sets the identity generator for loaded and created
// records.
func WithIDGenerator(gen tracking.IDGenerator) Option {
	return func(s *Session) {
		s.newID = gen
	}
}

// New creates a session over an attached store.
func New(store types.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  tracking.NewUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report summarizes a Save.
type Report struct {
	Table     string `json:"table"`
	Written   int    `json:"written"`
	Deleted   int    `json:"deleted"`
	Unchanged int    `json:"unchanged"`
	Discarded int    `json:"discarded"`
}

// Load reads every record of a table into a collection of Pristine records.
// Returns ErrInvalidData if a stored document does not decode into T.
func Load[T any](s *Session, tableName string) (*tracking.Collection[T], error) {
	tbl, err := s.store.GetTable(tableName)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableName, err)
	}
	docs, err := tbl.Fetch()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", tableName, err)
	}

	values := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("load %s: decode %s: %v: %w", tableName, doc, err, types.ErrInvalidData)
		}
		values = append(values, v)
	}

	coll := tracking.NewCollection[T](s.newID)
	if err := coll.Load(values...); err != nil {
		return nil, fmt.Errorf("load %s: %w", tableName, err)
	}

	s.logger.Debug("loaded table", "table", tableName, "records", coll.Len())
	return coll, nil
}

// Save writes a collection back to its table.
//
// Deleted records that were loaded from the store are removed by the id in
// their original value; deleted records created in this session are
// discarded. Records whose current value equals their original are left
// alone. The remaining values are taken from tracking.Export and written
// with Table.Set. If a record's id field was edited, the row under the old
// id is removed.
func Save[T any](s *Session, tableName string, coll *tracking.Collection[T]) (Report, error) {
	report := Report{Table: tableName}

	tbl, err := s.store.GetTable(tableName)
	if err != nil {
		return report, fmt.Errorf("save %s: %w", tableName, err)
	}

	var changed []*tracking.Record[T]
	var stale []string
	for _, r := range coll.Records() {
		original, hasOriginal := r.Original()
		if r.Status() == types.StatusDeleted {
			if !hasOriginal {
				report.Discarded++
				continue
			}
			if id := storeID(original); id != "" {
				stale = append(stale, id)
				continue
			}
			report.Discarded++
			continue
		}

		current, ok := r.Current()
		if !ok {
			continue
		}
		if hasOriginal && snapshot.Equal(current, original) {
			report.Unchanged++
			continue
		}
		if hasOriginal {
			if oldID := storeID(original); oldID != "" && oldID != storeID(current) {
				stale = append(stale, oldID)
			}
		}
		changed = append(changed, r)
	}

	for _, id := range stale {
		if err := tbl.Delete(id); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			return report, fmt.Errorf("save %s: delete %s: %w", tableName, id, err)
		}
		report.Deleted++
	}

	for _, v := range tracking.Export(changed) {
		if _, err := tbl.Set(v); err != nil {
			return report, fmt.Errorf("save %s: %w", tableName, err)
		}
		report.Written++
	}

	s.logger.Info("saved table",
		"table", tableName,
		"written", report.Written,
		"deleted", report.Deleted,
		"unchanged", report.Unchanged,
		"discarded", report.Discarded,
	)
	return report, nil
}

// storeID returns the "id" field of v's JSON form, or "" if it has none.
func storeID(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(raw, "id").String()
}
