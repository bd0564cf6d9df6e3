package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Projects table
CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root_path TEXT NOT NULL UNIQUE,
    total_files INTEGER DEFAULT 0,
    total_declarations INTEGER DEFAULT 0,
    index_version TEXT NOT NULL,
    last_indexed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_projects_root_path ON projects(root_path);

-- Files table
CREATE TABLE IF NOT EXISTS files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL,
    file_path TEXT NOT NULL,
    content_hash BLOB NOT NULL,
    mod_time TIMESTAMP,
    size_bytes INTEGER,
    parse_error TEXT,
    last_indexed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
    UNIQUE(project_id, file_path)
);

CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
CREATE INDEX IF NOT EXISTS idx_files_hash ON files(content_hash);
CREATE INDEX IF NOT EXISTS idx_files_mod_time ON files(mod_time);

-- Declarations table
CREATE TABLE IF NOT EXISTS declarations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    variant TEXT NOT NULL,
    name TEXT NOT NULL,
    qualified_path TEXT NOT NULL DEFAULT '',
    path_key TEXT NOT NULL,
    qualifiers TEXT NOT NULL DEFAULT '',
    return_type TEXT NOT NULL DEFAULT '',
    base_classes TEXT NOT NULL DEFAULT '',
    capture_list TEXT NOT NULL DEFAULT '',
    start_line INTEGER,
    start_col INTEGER,
    end_line INTEGER,
    end_col INTEGER,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_declarations_file ON declarations(file_id);
CREATE INDEX IF NOT EXISTS idx_declarations_name ON declarations(name);
CREATE INDEX IF NOT EXISTS idx_declarations_variant ON declarations(variant);
CREATE INDEX IF NOT EXISTS idx_declarations_path_key ON declarations(path_key);

-- Full-text search on declarations
CREATE VIRTUAL TABLE IF NOT EXISTS declarations_fts USING fts5(
    name, path_key, return_type,
    content='declarations',
    content_rowid='id'
);

-- Triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS declarations_ai AFTER INSERT ON declarations BEGIN
    INSERT INTO declarations_fts(rowid, name, path_key, return_type)
    VALUES (new.id, new.name, new.path_key, new.return_type);
END;

CREATE TRIGGER IF NOT EXISTS declarations_ad AFTER DELETE ON declarations BEGIN
    INSERT INTO declarations_fts(declarations_fts, rowid, name, path_key, return_type)
    VALUES ('delete', old.id, old.name, old.path_key, old.return_type);
END;

CREATE TRIGGER IF NOT EXISTS declarations_au AFTER UPDATE ON declarations BEGIN
    INSERT INTO declarations_fts(declarations_fts, rowid, name, path_key, return_type)
    VALUES ('delete', old.id, old.name, old.path_key, old.return_type);
    INSERT INTO declarations_fts(rowid, name, path_key, return_type)
    VALUES (new.id, new.name, new.path_key, new.return_type);
END;

-- Parameters table
CREATE TABLE IF NOT EXISTS parameters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    declaration_id INTEGER NOT NULL,
    ordinal INTEGER NOT NULL,
    type_text TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    is_reference BOOLEAN DEFAULT 0,
    default_value TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (declaration_id) REFERENCES declarations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_parameters_declaration ON parameters(declaration_id);

-- Skipped spans table
CREATE TABLE IF NOT EXISTS skipped_spans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    start_line INTEGER,
    start_col INTEGER,
    end_line INTEGER,
    end_col INTEGER,
    snippet TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_skipped_spans_file ON skipped_spans(file_id);
`

const migrationV1Down = `
DROP TABLE IF EXISTS skipped_spans;
DROP TABLE IF EXISTS parameters;
DROP TRIGGER IF EXISTS declarations_au;
DROP TRIGGER IF EXISTS declarations_ad;
DROP TRIGGER IF EXISTS declarations_ai;
DROP TABLE IF EXISTS declarations_fts;
DROP TABLE IF EXISTS declarations;
DROP TABLE IF EXISTS files;
DROP TABLE IF EXISTS projects;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations applies all pending migrations to the database
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	// Ensure version table exists before reading it
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		if applied[m.Version] {
			continue
		}

		if _, err := semver.NewVersion(m.Version); err != nil {
			return fmt.Errorf("invalid migration version %q: %w", m.Version, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}
	}

	return nil
}

// appliedVersions returns the set of already-applied migration versions
func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}
