package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"scribe/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/scribe.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.scribe.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "scribe.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS transcripts (
		  id               TEXT PRIMARY KEY,
		  library_raw      TEXT NOT NULL,
		  library_norm     TEXT NOT NULL,
		  title            TEXT NOT NULL,
		  source_kind      TEXT NOT NULL,
		  source_ref       TEXT,
		  duration_seconds INTEGER,
		  status           TEXT NOT NULL,
		  transcript_text  TEXT,
		  checksum         TEXT,
		  protected        INTEGER NOT NULL DEFAULT 0,
		  word_count       INTEGER NOT NULL DEFAULT 0,
		  created_at       INTEGER NOT NULL,
		  updated_at       INTEGER NOT NULL,
		  deleted_at       INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_transcripts_library_created
		ON transcripts(library_norm, created_at DESC)
		WHERE deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_transcripts_checksum
		ON transcripts(checksum)
		WHERE checksum IS NOT NULL AND deleted_at IS NULL;

		CREATE INDEX IF NOT EXISTS idx_transcripts_status
		ON transcripts(status)
		WHERE deleted_at IS NULL;

		CREATE TABLE IF NOT EXISTS tags (
		  id           TEXT PRIMARY KEY,
		  library_norm TEXT NOT NULL,
		  name         TEXT NOT NULL,
		  color        TEXT NOT NULL DEFAULT '#6b7280',
		  created_at   INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_library_name
		ON tags(library_norm, name);

		CREATE TABLE IF NOT EXISTS transcript_tags (
		  transcript_id TEXT NOT NULL,
		  tag_id        TEXT NOT NULL,
		  PRIMARY KEY (transcript_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS retention_policies (
		  library_norm       TEXT PRIMARY KEY,
		  enabled            INTEGER NOT NULL DEFAULT 0,
		  keep_latest        INTEGER NOT NULL DEFAULT 1,
		  age_threshold_days INTEGER NOT NULL DEFAULT 30,
		  schedule           TEXT NOT NULL DEFAULT '0 3 * * *',
		  last_run_at        INTEGER,
		  created_at         INTEGER NOT NULL,
		  updated_at         INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS activity_log (
		  id           TEXT PRIMARY KEY,
		  library_norm TEXT NOT NULL,
		  action       TEXT NOT NULL,
		  detail       TEXT,
		  record_count INTEGER NOT NULL DEFAULT 0,
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_activity_library_created
		ON activity_log(library_norm, created_at DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
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

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
