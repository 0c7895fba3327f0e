package commands

import (
	"database/sql"
	"time"

	"github.com/teranos/ionclm/am"
	"github.com/teranos/ionclm/db"
	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/internal/httpclient"
	"github.com/teranos/ionclm/ixgest/fetch"
	"github.com/teranos/ionclm/logger"
	"github.com/teranos/ionclm/storage"
)

// loadConfig loads and validates the configuration.
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// newFetcher returns a table fetcher configured from cfg.
func newFetcher(cfg *am.Config, offline bool) *fetch.Fetcher {
	client := httpclient.New(httpclient.Options{
		Timeout:      time.Duration(cfg.Cache.TimeoutSeconds) * time.Second,
		AllowPrivate: cfg.Cache.AllowPrivate,
	})
	return fetch.New(cfg.GetCacheDir(), offline || cfg.Cache.Offline, logger.ComponentLogger("fetch")).
		WithHTTPClient(client)
}

// openDatabase opens the configured database and applies migrations.
func openDatabase(cfg *am.Config) (*sql.DB, error) {
	path := cfg.GetDatabasePath()
	database, err := db.OpenWithMigrations(path, logger.ComponentLogger("db"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}
	return database, nil
}

// openStore opens the configured database as a storage.SQLStore.
func openStore(cfg *am.Config) (*storage.SQLStore, func() error, error) {
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLStore(database, logger.ComponentLogger("storage")), database.Close, nil
}
