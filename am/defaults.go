package am

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)

	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.offline", false)
	v.SetDefault("cache.timeout_seconds", DefaultTimeout)
	v.SetDefault("cache.allow_private", false)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	v.SetDefault("ingest.sources", []string{})
	v.SetDefault("ingest.layouts", []string{})
	v.SetDefault("ingest.parallel", DefaultParallel)
}

// BindEnvVars binds every key to its IONCLM_* variable so that Unmarshal
// sees environment overrides even for keys absent from all files.
func BindEnvVars(v *viper.Viper) {
	for _, key := range Keys() {
		v.BindEnv(key, EnvName(key))
	}
}

// Keys lists every configuration key.
func Keys() []string {
	return []string{
		"database.path",
		"cache.dir",
		"cache.offline",
		"cache.timeout_seconds",
		"cache.allow_private",
		"log.json",
		"log.verbosity",
		"ingest.sources",
		"ingest.layouts",
		"ingest.parallel",
	}
}

// ConfigDir returns ~/.ionclm.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configDirName
	}
	return filepath.Join(home, configDirName)
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetCacheDir returns the table cache directory (default: ~/.ionclm/cache)
func (c *Config) GetCacheDir() string {
	if c.Cache.Dir == "" {
		return filepath.Join(ConfigDir(), "cache")
	}
	return c.Cache.Dir
}

// GetParallel returns the ingest concurrency, at least 1
func (c *Config) GetParallel() int {
	if c.Ingest.Parallel <= 0 {
		return 1
	}
	return c.Ingest.Parallel
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Cache: {Dir: %s, Offline: %t}, Ingest: {Sources: %v, Parallel: %d}}",
		c.GetDatabasePath(), c.GetCacheDir(), c.Cache.Offline, c.Ingest.Sources, c.Ingest.Parallel)
}
