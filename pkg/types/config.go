package types

import (
	"errors"
	"fmt"
	"slices"
)

// Config selects and parameterizes the backend passed to Store.Attach.
// An empty DataDir is resolved by the backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// BackendSQLite is the SQLite backend with JSONL files as source of truth.
const BackendSQLite = "sqlite"

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// Backends returns the backend names Validate accepts, sorted.
func Backends() []string {
	return []string{BackendSQLite}
}

// Validate reports whether the Config names a known backend. Errors wrap
// ErrBackendEmpty or ErrBackendUnknown.
func (c Config) Validate() error {
	switch {
	case c.Backend == "":
		return ErrBackendEmpty
	case !slices.Contains(Backends(), c.Backend):
		return fmt.Errorf("%q (known: %v): %w", c.Backend, Backends(), ErrBackendUnknown)
	}
	return nil
}
