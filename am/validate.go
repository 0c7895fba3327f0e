package am

import "github.com/teranos/ionclm/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Empty database path falls back to DefaultDatabasePath
	if c.Log.Verbosity < 0 || c.Log.Verbosity > MaxVerbosity {
		return errors.Newf("log.verbosity must be between 0 and %d, got %d", MaxVerbosity, c.Log.Verbosity)
	}

	if c.Cache.TimeoutSeconds < 0 {
		return errors.Newf("cache.timeout_seconds must be >= 0, got %d", c.Cache.TimeoutSeconds)
	}

	// 0 means one at a time
	if c.Ingest.Parallel < 0 {
		return errors.Newf("ingest.parallel must be >= 0, got %d", c.Ingest.Parallel)
	}

	seen := make(map[string]bool, len(c.Ingest.Sources))
	for _, s := range c.Ingest.Sources {
		if s == "" {
			return errors.New("ingest.sources contains an empty name")
		}
		if seen[s] {
			return errors.Newf("ingest.sources lists %s twice", s)
		}
		seen[s] = true
	}

	for _, l := range c.Ingest.Layouts {
		if l == "" {
			return errors.New("ingest.layouts contains an empty path")
		}
	}

	return nil
}
