package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/autofill/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the user_version of a fully migrated documents
// database. Each migration step bumps it by one.
const CurrentSchemaVersion = 1

// FileName is the SQLite file holding the profile documents, inside the base
// directory.
const FileName = "autofill.db"

// Init opens the document database at baseDir/autofill.db, creating baseDir
// and its exports directory (both 0700) on first use. Tests pass t.TempDir();
// the binary passes ~/.autofill.
func Init(baseDir string) (*sql.DB, error) {
	if err := ensurePrivateDir(baseDir, "base"); err != nil {
		return nil, err
	}
	if err := ensurePrivateDir(filepath.Join(baseDir, "exports"), "exports"); err != nil {
		return nil, err
	}

	// busy_timeout and WAL go in the DSN so every pooled connection gets them.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}
	// The first statement creates the file, so the documents table is in
	// place before any Store call.
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Profiles hold personal data: owner-only.
	_ = os.Chmod(dbPath, 0600)
	return db, nil
}

// ensurePrivateDir creates dir if needed and tightens it to 0700.
func ensurePrivateDir(dir, label string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", label, err)
	}
	_ = os.Chmod(dir, 0700)
	return nil
}

// ConfigurePool applies db_max_open_conns and db_max_idle_conns. Zero values
// keep database/sql's defaults.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if n := cfg.DBMaxOpenConns; n > 0 {
		db.SetMaxOpenConns(n)
	}
	if n := cfg.DBMaxIdleConns; n > 0 {
		db.SetMaxIdleConns(n)
	}
}

// migrate brings the schema up to CurrentSchemaVersion, one step at a time.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// 0 -> 1: one row per document key (autofill_profiles, autofill_settings,
	// autofill_templates), value is the JSON text.
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS documents (
		  name       TEXT PRIMARY KEY,
		  value      TEXT NOT NULL,
		  updated_at INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode fails unless the DSN pragma switched the journal to WAL.
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion reads the documents schema version from PRAGMA user_version.
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion records the documents schema version in PRAGMA user_version.
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
