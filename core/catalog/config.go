package catalog

// Config holds configuration for the catalog engine.
type Config struct {
	// Workers bounds the parallelism of catalog-wide passes. 0 uses GOMAXPROCS.
	Workers int `mapstructure:"workers" default:"0"`
	// LockShards is the size of the per-key lock table.
	LockShards int `mapstructure:"lock_shards" default:"256"`
	// Store selects the bucket store (memory, sql).
	Store string `mapstructure:"store" default:"sql"`
}

const (
	StoreMemory = "memory"
	StoreSQL    = "sql"
)

// IsValidStore checks if the configured store is supported.
func (c Config) IsValidStore() bool {
	switch c.Store {
	case StoreMemory, StoreSQL:
		return true
	default:
		return false
	}
}
