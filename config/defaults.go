package config

import "github.com/spf13/viper"

// Backend and driver names accepted by validation.
const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendBBolt   = "bbolt"
	BackendLevelDB = "leveldb"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// setDefaults installs the defaults applied before any file or
// environment override.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.backend", BackendMemory)
	v.SetDefault("database.path", "")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.driver", DriverSQLite)
	v.SetDefault("archive.path", "")
	v.SetDefault("archive.conn_string", "")

	v.SetDefault("cache.size", 1024)

	v.SetDefault("log.verbose", false)
}
