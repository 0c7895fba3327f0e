// Package am loads ionclm configuration from TOML files and IONCLM_*
// environment variables.
package am

// Config represents the ionclm configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
}

// DatabaseConfig configures the SQLite catalog
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig configures the published-table cache
type CacheConfig struct {
	Dir            string `mapstructure:"dir"`             // Empty = ~/.ionclm/cache
	Offline        bool   `mapstructure:"offline"`         // Never download; a cache miss is an error
	TimeoutSeconds int    `mapstructure:"timeout_seconds"` // Per-download timeout, 0 = none
	AllowPrivate   bool   `mapstructure:"allow_private"`   // Permit downloads from private or loopback hosts
}

// LogConfig configures logging
type LogConfig struct {
	JSON      bool `mapstructure:"json"`
	Verbosity int  `mapstructure:"verbosity"` // 0-5, raised by -v flags
}

// IngestConfig configures literature ingestion
type IngestConfig struct {
	Sources  []string `mapstructure:"sources"`  // Citation keys; empty = every registered source
	Layouts  []string `mapstructure:"layouts"`  // Extra layout files for 'ionclm layout'
	Parallel int      `mapstructure:"parallel"` // Sources normalized concurrently
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Defaults
const (
	DefaultDatabasePath = "ionclm.db"
	DefaultParallel     = 4
	DefaultTimeout      = 60
	MaxVerbosity        = 5
	configDirName       = ".ionclm"
	configFileName      = "am.toml"
	envPrefix           = "IONCLM"
)
