// Package store persists the schema, the attribute-value rows, and saved
// queries in SQLite, behind a narrow query interface. Soft deletion is a
// first-class filter here: every read excludes deleted rows, so the layers
// above never reason about deletion.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed attribute store.
type Store struct {
	db *sql.DB
}

var (
	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrEntityNotFound indicates the requested entity does not exist.
	ErrEntityNotFound = errors.New("entity not found")
	// ErrPropertyNotFound indicates the requested property does not exist.
	ErrPropertyNotFound = errors.New("property not found")
	// ErrInstanceNotFound indicates the requested record does not exist.
	ErrInstanceNotFound = errors.New("record not found")
	// ErrQueryNotFound indicates the requested saved query does not exist.
	ErrQueryNotFound = errors.New("saved query not found")
)

// DB returns the underlying sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Open opens or creates the store under a workspace directory.
func Open(workspacePath string) (*Store, error) {
	dbDir := filepath.Join(workspacePath, ".facet")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .facet directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, "facet.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens an in-memory store (for testing).
func OpenInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// initialize creates the database schema.
func (s *Store) initialize() error {
	ddl := `
		-- Enable WAL mode for better concurrency
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			display_template TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			label TEXT NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			is_list INTEGER NOT NULL DEFAULT 0,
			required INTEGER NOT NULL DEFAULT 0,
			default_value TEXT NOT NULL DEFAULT '',
			referenced_entity_id TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS entity_instances (
			id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS property_instances (
			id TEXT PRIMARY KEY,
			entity_instance_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queries (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS query_groups (
			id TEXT PRIMARY KEY,
			query_id TEXT NOT NULL,
			parent_group_id TEXT,
			operator TEXT NOT NULL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS query_rules (
			id TEXT PRIMARY KEY,
			group_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			operator TEXT NOT NULL,
			value TEXT,
			sort_order INTEGER NOT NULL DEFAULT 0,
			deleted INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_entities_project ON entities(project_id);
		CREATE INDEX IF NOT EXISTS idx_properties_entity ON properties(entity_id);
		CREATE INDEX IF NOT EXISTS idx_instances_entity ON entity_instances(entity_id);
		CREATE INDEX IF NOT EXISTS idx_prop_instances_instance ON property_instances(entity_instance_id);
		CREATE INDEX IF NOT EXISTS idx_prop_instances_property ON property_instances(property_id, deleted);
		CREATE INDEX IF NOT EXISTS idx_query_groups_query ON query_groups(query_id);
		CREATE INDEX IF NOT EXISTS idx_query_rules_group ON query_rules(group_id);
	`

	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return nil
}

// newID generates a UUID v4 string for a new row.
func newID() string {
	return uuid.NewString()
}

// nowUnix is the audit timestamp source, overridable in tests.
var nowUnix = func() int64 {
	return time.Now().Unix()
}
