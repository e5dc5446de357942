// Package assetdb maintains a GUID <-> path index of a Unity project's assets.
// The index is built from the .meta files that sit beside every asset and is
// cached in SQLite so lookups do not rescan the project.
package assetdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"quickaccess/internal/logging"

	_ "modernc.org/sqlite"
)

// ErrNotIndexed is returned when the database has never been indexed.
var ErrNotIndexed = errors.New("asset database has not been indexed")

// DB is the SQLite-backed asset index. It implements handle.Resolver.
type DB struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open opens (or creates) the asset database at path.
func Open(dbPath string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.AssetDBDebug("opened asset database at %s", dbPath)
	return d, nil
}

// initialize creates the required tables.
func (d *DB) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		guid TEXT PRIMARY KEY,
		path TEXT NOT NULL UNIQUE,
		is_folder INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS index_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// GUIDForPath returns the GUID of a project-relative asset path.
func (d *DB) GUIDForPath(assetPath string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var guid string
	err := d.db.QueryRow("SELECT guid FROM assets WHERE path = ?", cleanAssetPath(assetPath)).Scan(&guid)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Get(logging.CategoryAssetDB).Error("guid lookup for %s failed: %v", assetPath, err)
		}
		return "", false
	}
	return guid, true
}

// PathForGUID returns the project-relative path of an asset GUID.
func (d *DB) PathForGUID(guid string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var p string
	err := d.db.QueryRow("SELECT path FROM assets WHERE guid = ?", strings.ToLower(strings.TrimSpace(guid))).Scan(&p)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Get(logging.CategoryAssetDB).Error("path lookup for %s failed: %v", guid, err)
		}
		return "", false
	}
	return p, true
}

// Count returns the number of indexed assets.
func (d *DB) Count() (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM assets").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count assets: %w", err)
	}
	return n, nil
}

// LastIndexed returns when the index was last rebuilt.
func (d *DB) LastIndexed() (time.Time, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var v string
	err := d.db.QueryRow("SELECT value FROM index_meta WHERE key = 'indexed_at'").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotIndexed
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read index time: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt index time %q: %w", v, err)
	}
	return t, nil
}

func cleanAssetPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
