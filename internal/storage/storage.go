package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Namespaces for the persisted collections.
const (
	NamespaceTasks    = "tasks"
	NamespaceGroups   = "groups"
	NamespaceProfile  = "profile"
	NamespaceSettings = "settings"
)

// Adapter is the persistence contract the stores write through. Collections
// are read and written whole, keyed by namespace; there are no
// partial-record updates.
type Adapter interface {
	// Load decodes the collection stored under namespace into v. It reports
	// false when the namespace has never been written (fresh database).
	Load(namespace string, v any) (bool, error)
	// SaveAll replaces the collection stored under namespace with v.
	SaveAll(namespace string, v any) error
	Close() error
}

// SQLite is an Adapter backed by a single-file SQLite database. Each
// namespace maps to one row holding the collection as a JSON document.
type SQLite struct {
	db *sql.DB
}

var _ Adapter = (*SQLite)(nil)

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory adapter for testing.
func NewMemory() (*SQLite, error) {
	return New(":memory:")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLite) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS collections (
		namespace   TEXT PRIMARY KEY,
		data        TEXT NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *SQLite) Load(namespace string, v any) (bool, error) {
	var data string
	err := s.db.QueryRow(
		`SELECT data FROM collections WHERE namespace = ?`, namespace,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %q: %w", namespace, err)
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("decode %q: %w", namespace, err)
	}
	return true, nil
}

func (s *SQLite) SaveAll(namespace string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", namespace, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO collections (namespace, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(namespace) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		namespace, string(data), now,
	)
	if err != nil {
		return fmt.Errorf("save %q: %w", namespace, err)
	}
	return nil
}

// DefaultDBPath returns ~/.config/taskdeck/taskdeck.db, or the value of
// TASKDECK_DB when set.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TASKDECK_DB"); p != "" {
		return p, nil
	}
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "taskdeck", "taskdeck.db"), nil
}
