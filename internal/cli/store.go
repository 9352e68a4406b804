package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mesh-intelligence/apiconf/internal/session"
	"github.com/mesh-intelligence/apiconf/internal/sqlite"
	"github.com/mesh-intelligence/apiconf/pkg/types"
)

// validTableNames is the comma-separated table list used in error output.
var validTableNames = strings.Join(types.StandardTableNames, ", ")

// withStore attaches the SQLite backend, runs fn and detaches.
func (a *app) withStore(fn func(store types.Store) error) error {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return sysError(fmt.Errorf("attach backend: %w", err))
	}
	a.logger.Debug("backend attached", "data_dir", cfg.DataDir)

	runErr := fn(backend)
	if err := backend.Detach(); err != nil && runErr == nil {
		runErr = sysError(fmt.Errorf("detach backend: %w", err))
	}
	return classify(runErr)
}

// withSession is withStore with an edit session on top.
func (a *app) withSession(fn func(s *session.Session) error) error {
	return a.withStore(func(store types.Store) error {
		return fn(session.New(store, session.WithLogger(a.logger)))
	})
}

// lookupKind returns the record kind stored in the named table.
func lookupKind(table string) (recordKind, error) {
	k, ok := kinds[table]
	if !ok {
		return nil, fmt.Errorf("unknown table %q (valid: %s): %w", table, validTableNames, types.ErrTableNotFound)
	}
	return k, nil
}

// storeID returns the "id" field of v's JSON form.
func storeID(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return gjson.GetBytes(raw, "id").String()
}
