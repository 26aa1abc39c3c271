package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/autofill/internal/boltkv"
	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/db"
	"github.com/hpungsan/autofill/internal/kv"
)

// openStore opens the backend selected by cfg.Backend under baseDir and
// applies the document size limit. The returned func closes the backend.
func openStore(baseDir string, cfg *config.Config) (kv.Store, func() error, error) {
	var (
		store kv.Store
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case config.BackendSQLite:
		database, err := db.Init(baseDir)
		if err != nil {
			return nil, nil, err
		}
		db.ConfigurePool(database, cfg)
		store, closeFn = db.NewStore(database), database.Close

	case config.BackendBolt:
		if err := os.MkdirAll(baseDir, 0700); err != nil {
			return nil, nil, fmt.Errorf("failed to create base directory: %w", err)
		}
		bolt, err := boltkv.Open(filepath.Join(baseDir, boltkv.FileName))
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = bolt, bolt.Close

	case config.BackendMemory:
		store = kv.NewMemory()

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	return kv.WithDocumentLimit(store, cfg.MaxDocumentBytes), closeFn, nil
}
