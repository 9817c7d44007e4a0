// Package config loads ledger deployment configuration from defaults, an
// optional TOML file and MESHPAY_-prefixed environment variables, in that
// priority order.
package config

// Config represents the complete ledger configuration.
type Config struct {
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Archive  ArchiveConfig  `toml:"archive" mapstructure:"archive"`
	Cache    CacheConfig    `toml:"cache" mapstructure:"cache"`
	Log      LogConfig      `toml:"log" mapstructure:"log"`
}

// DatabaseConfig selects the keyed-store backend holding ledger state.
type DatabaseConfig struct {
	// Backend is one of memory, pebble, bbolt, leveldb.
	Backend string `toml:"backend" mapstructure:"backend"`

	// Path is the on-disk location for durable backends. Unused by the
	// memory backend.
	Path string `toml:"path" mapstructure:"path"`
}

// ArchiveConfig configures the optional relational audit archive.
type ArchiveConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`

	// Driver is sqlite or postgres.
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the sqlite database file. ":memory:" is accepted.
	Path string `toml:"path" mapstructure:"path"`

	// ConnString is the postgres connection string.
	ConnString string `toml:"conn_string" mapstructure:"conn_string"`
}

// CacheConfig bounds the in-process payment read cache.
type CacheConfig struct {
	Size int `toml:"size" mapstructure:"size"`
}

// LogConfig controls log output.
type LogConfig struct {
	Verbose bool `toml:"verbose" mapstructure:"verbose"`
}
