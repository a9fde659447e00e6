package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// dateOnly is the storage format for deadlines; timestamps use RFC3339.
const dateOnly = "2006-01-02"

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas. foreign_keys=ON makes the declared cascades
	// (project -> tasks -> subtasks, note detach) actually fire.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
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

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS projects (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		client       TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'active',
		priority     TEXT NOT NULL DEFAULT 'medium',
		deadline     TEXT,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at TEXT
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		project_id     INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		parent_task_id INTEGER REFERENCES tasks(id) ON DELETE CASCADE,
		status         TEXT NOT NULL DEFAULT 'pending',
		priority       TEXT NOT NULL DEFAULT 'medium',
		deadline       TEXT,
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at   TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_project  ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent   ON tasks(parent_task_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_deadline ON tasks(deadline);

	CREATE TABLE IF NOT EXISTS notes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		tags       TEXT NOT NULL DEFAULT '',
		project_id INTEGER REFERENCES projects(id) ON DELETE SET NULL,
		task_id    INTEGER REFERENCES tasks(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		id                       INTEGER PRIMARY KEY CHECK (id = 1),
		daily_summary_time       TEXT NOT NULL DEFAULT '07:00',
		evening_reminder_time    TEXT NOT NULL DEFAULT '18:00',
		timezone                 TEXT NOT NULL DEFAULT 'Europe/Madrid',
		daily_summary_enabled    INTEGER NOT NULL DEFAULT 1,
		evening_reminder_enabled INTEGER NOT NULL DEFAULT 1
	);

	INSERT OR IGNORE INTO user_settings (id) VALUES (1);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/steward/steward.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "steward", "steward.db"), nil
}

// --- scan helpers ---

func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseNullTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseNullDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(dateOnly, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateOnly)
}

func nullID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func idPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// today returns the current date in storage format.
func today() string {
	return time.Now().UTC().Format(dateOnly)
}
