package config

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownBackend    = errors.New("unknown database backend")
	ErrMissingPath       = errors.New("database path is required for durable backends")
	ErrUnknownDriver     = errors.New("unknown archive driver")
	ErrMissingArchiveDSN = errors.New("archive destination is required")
	ErrInvalidCacheSize  = errors.New("cache size must be positive")
)

// ValidateConfig checks the complete configuration for consistency.
func ValidateConfig(c *Config) error {
	switch c.Database.Backend {
	case BackendMemory:
	case BackendPebble, BackendBBolt, BackendLevelDB:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: backend %s", ErrMissingPath, c.Database.Backend)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Database.Backend)
	}

	if c.Archive.Enabled {
		switch c.Archive.Driver {
		case DriverSQLite:
			if c.Archive.Path == "" {
				return fmt.Errorf("%w: sqlite archive needs a path", ErrMissingArchiveDSN)
			}
		case DriverPostgres:
			if c.Archive.ConnString == "" {
				return fmt.Errorf("%w: postgres archive needs a conn_string", ErrMissingArchiveDSN)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Archive.Driver)
		}
	}

	if c.Cache.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, c.Cache.Size)
	}

	return nil
}
