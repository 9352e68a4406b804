package tracking

import "github.com/mesh-intelligence/apiconf/pkg/types"

type recordConfig struct {
	status types.Status
	newID  IDGenerator
}

func defaultRecordConfig() recordConfig {
	return recordConfig{
		status: types.StatusPristine,
		newID:  NewUUID,
	}
}

// Option configures NewRecord.
type Option func(*recordConfig)

// WithStatus sets the initial status. Only types.StatusPristine (the
// default) and types.StatusNew are accepted by NewRecord.
func WithStatus(status types.Status) Option {
	return func(cfg *recordConfig) {
		cfg.status = status
	}
}

// WithIDGenerator replaces the UUID v7 default. A nil generator keeps the
// default.
func WithIDGenerator(gen IDGenerator) Option {
	return func(cfg *recordConfig) {
		if gen != nil {
			cfg.newID = gen
		}
	}
}
