package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Project operations

// createProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		INSERT INTO projects (root_path, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		project.RootPath, project.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateProject(ctx context.Context, project *Project) error {
	return s.createProjectWithQuerier(ctx, s.querier(), project)
}

// getProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getProjectWithQuerier(ctx context.Context, q querier, rootPath string) (*Project, error) {
	query := `
		SELECT id, root_path, total_files, total_declarations,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE root_path = ?
	`
	var project Project
	var lastIndexedAt sql.NullTime
	err := q.QueryRowContext(ctx, query, rootPath).Scan(
		&project.ID, &project.RootPath,
		&project.TotalFiles, &project.TotalDeclarations, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

func (s *SQLiteStorage) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return s.getProjectWithQuerier(ctx, s.querier(), rootPath)
}

// updateProjectWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) updateProjectWithQuerier(ctx context.Context, q querier, project *Project) error {
	query := `
		UPDATE projects
		SET total_files = ?, total_declarations = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		project.TotalFiles, project.TotalDeclarations,
		project.LastIndexedAt, now, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	project.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateProject(ctx context.Context, project *Project) error {
	return s.updateProjectWithQuerier(ctx, s.querier(), project)
}

// File operations

// upsertFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	query := `
		INSERT INTO files (project_id, file_path, content_hash, mod_time, size_bytes, parse_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			parse_error = excluded.parse_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.ProjectID, file.FilePath, file.ContentHash[:],
		file.ModTime, file.SizeBytes, file.ParseError, now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.querier(), file)
}

// getFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, projectID int64, filePath string) (*File, error) {
	query := `
		SELECT id, project_id, file_path, content_hash, mod_time,
		       size_bytes, parse_error, last_indexed_at, created_at, updated_at
		FROM files
		WHERE project_id = ? AND file_path = ?
	`
	var file File
	var hash []byte
	var parseError sql.NullString
	err := q.QueryRowContext(ctx, query, projectID, filePath).Scan(
		&file.ID, &file.ProjectID, &file.FilePath,
		&hash, &file.ModTime, &file.SizeBytes, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

func (s *SQLiteStorage) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.querier(), projectID, filePath)
}

// getFileByIDWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getFileByIDWithQuerier(ctx context.Context, q querier, fileID int64) (*File, error) {
	query := `
		SELECT id, project_id, file_path, content_hash, mod_time,
		       size_bytes, parse_error, last_indexed_at, created_at, updated_at
		FROM files
		WHERE id = ?
	`
	var file File
	var hash []byte
	var parseError sql.NullString
	err := q.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID, &file.ProjectID, &file.FilePath,
		&hash, &file.ModTime, &file.SizeBytes, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	copy(file.ContentHash[:], hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

func (s *SQLiteStorage) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return s.getFileByIDWithQuerier(ctx, s.querier(), fileID)
}

// deleteFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM files WHERE id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.querier(), fileID)
}

// listFilesWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, projectID int64) ([]*File, error) {
	query := `
		SELECT id, project_id, file_path, content_hash, mod_time,
		       size_bytes, parse_error, last_indexed_at, created_at, updated_at
		FROM files
		WHERE project_id = ?
		ORDER BY file_path
	`
	rows, err := q.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		var file File
		var hash []byte
		var parseError sql.NullString

		err := rows.Scan(
			&file.ID, &file.ProjectID, &file.FilePath,
			&hash, &file.ModTime, &file.SizeBytes, &parseError,
			&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		copy(file.ContentHash[:], hash)
		if parseError.Valid {
			file.ParseError = &parseError.String
		}

		files = append(files, &file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.querier(), projectID)
}

// Declaration operations

const declarationColumns = `id, file_id, variant, name, qualified_path, path_key,
       qualifiers, return_type, base_classes, capture_list,
       start_line, start_col, end_line, end_col, created_at`

func scanDeclaration(row interface{ Scan(...interface{}) error }) (*Declaration, error) {
	var d Declaration
	err := row.Scan(
		&d.ID, &d.FileID, &d.Variant, &d.Name, &d.QualifiedPath, &d.PathKey,
		&d.Qualifiers, &d.ReturnType, &d.BaseClasses, &d.CaptureList,
		&d.StartLine, &d.StartCol, &d.EndLine, &d.EndCol, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// insertDeclarationWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertDeclarationWithQuerier(ctx context.Context, q querier, decl *Declaration, params []Parameter) error {
	query := `
		INSERT INTO declarations (
			file_id, variant, name, qualified_path, path_key,
			qualifiers, return_type, base_classes, capture_list,
			start_line, start_col, end_line, end_col, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		decl.FileID, decl.Variant, decl.Name, decl.QualifiedPath, decl.PathKey,
		decl.Qualifiers, decl.ReturnType, decl.BaseClasses, decl.CaptureList,
		decl.StartLine, decl.StartCol, decl.EndLine, decl.EndCol, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert declaration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	decl.ID = id
	decl.CreatedAt = now

	paramQuery := `
		INSERT INTO parameters (declaration_id, ordinal, type_text, name, is_reference, default_value)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i := range params {
		p := &params[i]
		p.DeclarationID = id
		result, err := q.ExecContext(ctx, paramQuery,
			p.DeclarationID, p.Ordinal, p.TypeText, p.Name, p.IsReference, p.DefaultValue)
		if err != nil {
			return fmt.Errorf("failed to insert parameter %d: %w", p.Ordinal, err)
		}
		if pid, err := result.LastInsertId(); err == nil {
			p.ID = pid
		}
	}
	return nil
}

func (s *SQLiteStorage) InsertDeclaration(ctx context.Context, decl *Declaration, params []Parameter) error {
	return s.insertDeclarationWithQuerier(ctx, s.querier(), decl, params)
}

func (s *SQLiteStorage) GetDeclaration(ctx context.Context, declID int64) (*Declaration, error) {
	query := `SELECT ` + declarationColumns + ` FROM declarations WHERE id = ?`
	decl, err := scanDeclaration(s.db.QueryRowContext(ctx, query, declID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decl, nil
}

// listDeclarationsWithQuerier runs a declaration query returning full rows
func listDeclarationsWithQuerier(ctx context.Context, q querier, query string, args ...interface{}) ([]*Declaration, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	decls := make([]*Declaration, 0)
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

func (s *SQLiteStorage) ListDeclarationsByFile(ctx context.Context, fileID int64) ([]*Declaration, error) {
	query := `
		SELECT ` + declarationColumns + `
		FROM declarations
		WHERE file_id = ?
		ORDER BY start_line, start_col
	`
	return listDeclarationsWithQuerier(ctx, s.querier(), query, fileID)
}

func (s *SQLiteStorage) ListDeclarationsByVariant(ctx context.Context, projectID int64, variant string) ([]*Declaration, error) {
	query := `
		SELECT d.id, d.file_id, d.variant, d.name, d.qualified_path, d.path_key,
		       d.qualifiers, d.return_type, d.base_classes, d.capture_list,
		       d.start_line, d.start_col, d.end_line, d.end_col, d.created_at
		FROM declarations d
		JOIN files f ON d.file_id = f.id
		WHERE f.project_id = ? AND d.variant = ?
		ORDER BY d.path_key, d.start_line
	`
	return listDeclarationsWithQuerier(ctx, s.querier(), query, projectID, variant)
}

// lookupDeclarationsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) lookupDeclarationsWithQuerier(ctx context.Context, q querier, projectID int64, pathKey string) ([]*Declaration, error) {
	// Overload sets share a path key, so this may return multiple rows
	query := `
		SELECT d.id, d.file_id, d.variant, d.name, d.qualified_path, d.path_key,
		       d.qualifiers, d.return_type, d.base_classes, d.capture_list,
		       d.start_line, d.start_col, d.end_line, d.end_col, d.created_at
		FROM declarations d
		JOIN files f ON d.file_id = f.id
		WHERE f.project_id = ? AND d.path_key = ?
		ORDER BY d.start_line, d.start_col
	`
	return listDeclarationsWithQuerier(ctx, q, query, projectID, pathKey)
}

func (s *SQLiteStorage) LookupDeclarations(ctx context.Context, projectID int64, pathKey string) ([]*Declaration, error) {
	return s.lookupDeclarationsWithQuerier(ctx, s.querier(), projectID, pathKey)
}

// deleteDeclarationsByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteDeclarationsByFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM declarations WHERE file_id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteDeclarationsByFile(ctx context.Context, fileID int64) error {
	return s.deleteDeclarationsByFileWithQuerier(ctx, s.querier(), fileID)
}

// searchDeclarationsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) searchDeclarationsWithQuerier(ctx context.Context, q querier, projectID int64, query string, limit int) ([]*Declaration, error) {
	// Note: In FTS5, 'rank' is a built-in virtual column representing BM25 relevance score.
	// It should be accessed without table qualification when used in ORDER BY.
	// Lower rank values indicate better matches (negative values in FTS5).
	sqlQuery := `
		SELECT d.id, d.file_id, d.variant, d.name, d.qualified_path, d.path_key,
		       d.qualifiers, d.return_type, d.base_classes, d.capture_list,
		       d.start_line, d.start_col, d.end_line, d.end_col, d.created_at
		FROM declarations d
		JOIN declarations_fts fts ON d.id = fts.rowid
		JOIN files f ON d.file_id = f.id
		WHERE f.project_id = ? AND declarations_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`
	return listDeclarationsWithQuerier(ctx, q, sqlQuery, projectID, query, limit)
}

func (s *SQLiteStorage) SearchDeclarations(ctx context.Context, projectID int64, query string, limit int) ([]*Declaration, error) {
	return s.searchDeclarationsWithQuerier(ctx, s.querier(), projectID, query, limit)
}

func (s *SQLiteStorage) ListParameters(ctx context.Context, declID int64) ([]*Parameter, error) {
	query := `
		SELECT id, declaration_id, ordinal, type_text, name, is_reference, default_value
		FROM parameters
		WHERE declaration_id = ?
		ORDER BY ordinal
	`
	rows, err := s.db.QueryContext(ctx, query, declID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	params := make([]*Parameter, 0)
	for rows.Next() {
		var p Parameter
		err := rows.Scan(&p.ID, &p.DeclarationID, &p.Ordinal,
			&p.TypeText, &p.Name, &p.IsReference, &p.DefaultValue)
		if err != nil {
			return nil, err
		}
		params = append(params, &p)
	}
	return params, rows.Err()
}

// Skipped span operations

// insertSkippedSpanWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) insertSkippedSpanWithQuerier(ctx context.Context, q querier, span *SkippedSpan) error {
	query := `
		INSERT INTO skipped_spans (file_id, start_line, start_col, end_line, end_col, snippet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		span.FileID, span.StartLine, span.StartCol,
		span.EndLine, span.EndCol, span.Snippet, now)
	if err != nil {
		return fmt.Errorf("failed to insert skipped span: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		span.ID = id
	}
	span.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) InsertSkippedSpan(ctx context.Context, span *SkippedSpan) error {
	return s.insertSkippedSpanWithQuerier(ctx, s.querier(), span)
}

func (s *SQLiteStorage) ListSkippedSpansByFile(ctx context.Context, fileID int64) ([]*SkippedSpan, error) {
	query := `
		SELECT id, file_id, start_line, start_col, end_line, end_col, snippet, created_at
		FROM skipped_spans
		WHERE file_id = ?
		ORDER BY start_line, start_col
	`
	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	spans := make([]*SkippedSpan, 0)
	for rows.Next() {
		var span SkippedSpan
		err := rows.Scan(&span.ID, &span.FileID, &span.StartLine, &span.StartCol,
			&span.EndLine, &span.EndCol, &span.Snippet, &span.CreatedAt)
		if err != nil {
			return nil, err
		}
		spans = append(spans, &span)
	}
	return spans, rows.Err()
}

// deleteSkippedSpansByFileWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) deleteSkippedSpansByFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	query := `DELETE FROM skipped_spans WHERE file_id = ?`
	_, err := q.ExecContext(ctx, query, fileID)
	return err
}

func (s *SQLiteStorage) DeleteSkippedSpansByFile(ctx context.Context, fileID int64) error {
	return s.deleteSkippedSpansByFileWithQuerier(ctx, s.querier(), fileID)
}

// Status operations

func (s *SQLiteStorage) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	// Get project info
	project, err := s.getProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		Project:       project,
		LastIndexedAt: project.LastIndexedAt,
	}

	// Count files
	var fileCount int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE project_id = ?", projectID).Scan(&fileCount)
	if err != nil {
		return nil, err
	}
	status.FilesCount = fileCount

	// Count declarations
	var declCount int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM declarations d
		JOIN files f ON d.file_id = f.id
		WHERE f.project_id = ?
	`, projectID).Scan(&declCount)
	if err != nil {
		return nil, err
	}
	status.DeclarationsCount = declCount

	// Count skipped spans
	var skippedCount int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM skipped_spans sp
		JOIN files f ON sp.file_id = f.id
		WHERE f.project_id = ?
	`, projectID).Scan(&skippedCount)
	if err != nil {
		return nil, err
	}
	status.SkippedCount = skippedCount

	// Calculate database size
	var pageCount, pageSize int
	err = s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	if err == nil {
		_ = s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	// Check health status
	status.Health = HealthStatus{
		DatabaseAccessible: true,
		FTSIndexesBuilt:    true, // FTS indexes are created with migrations
	}

	return status, nil
}

// getProjectByID retrieves a project by ID
func (s *SQLiteStorage) getProjectByID(ctx context.Context, projectID int64) (*Project, error) {
	query := `
		SELECT id, root_path, total_files, total_declarations,
		       index_version, last_indexed_at, created_at, updated_at
		FROM projects
		WHERE id = ?
	`
	var project Project
	var lastIndexedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID, &project.RootPath,
		&project.TotalFiles, &project.TotalDeclarations, &project.IndexVersion,
		&lastIndexedAt, &project.CreatedAt, &project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		project.LastIndexedAt = lastIndexedAt.Time
	}
	return &project, nil
}

// Transaction implementations - delegate to main storage for now

// Delegate read-only operations to storage (they can use DB or Tx)
// Write operations should use the internal helper that uses querier()

func (t *sqliteTx) CreateProject(ctx context.Context, project *Project) error {
	return t.storage.createProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) GetProject(ctx context.Context, rootPath string) (*Project, error) {
	return t.storage.getProjectWithQuerier(ctx, t.querier(), rootPath)
}

func (t *sqliteTx) UpdateProject(ctx context.Context, project *Project) error {
	return t.storage.updateProjectWithQuerier(ctx, t.querier(), project)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.querier(), file)
}

func (t *sqliteTx) GetFile(ctx context.Context, projectID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.querier(), projectID, filePath)
}

func (t *sqliteTx) GetFileByID(ctx context.Context, fileID int64) (*File, error) {
	return t.storage.getFileByIDWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) ListFiles(ctx context.Context, projectID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.querier(), projectID)
}

func (t *sqliteTx) InsertDeclaration(ctx context.Context, decl *Declaration, params []Parameter) error {
	return t.storage.insertDeclarationWithQuerier(ctx, t.querier(), decl, params)
}

func (t *sqliteTx) GetDeclaration(ctx context.Context, declID int64) (*Declaration, error) {
	return t.storage.GetDeclaration(ctx, declID)
}

func (t *sqliteTx) ListDeclarationsByFile(ctx context.Context, fileID int64) ([]*Declaration, error) {
	return t.storage.ListDeclarationsByFile(ctx, fileID)
}

func (t *sqliteTx) ListDeclarationsByVariant(ctx context.Context, projectID int64, variant string) ([]*Declaration, error) {
	return t.storage.ListDeclarationsByVariant(ctx, projectID, variant)
}

func (t *sqliteTx) LookupDeclarations(ctx context.Context, projectID int64, pathKey string) ([]*Declaration, error) {
	return t.storage.lookupDeclarationsWithQuerier(ctx, t.querier(), projectID, pathKey)
}

func (t *sqliteTx) DeleteDeclarationsByFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteDeclarationsByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) SearchDeclarations(ctx context.Context, projectID int64, query string, limit int) ([]*Declaration, error) {
	return t.storage.searchDeclarationsWithQuerier(ctx, t.querier(), projectID, query, limit)
}

func (t *sqliteTx) ListParameters(ctx context.Context, declID int64) ([]*Parameter, error) {
	return t.storage.ListParameters(ctx, declID)
}

func (t *sqliteTx) InsertSkippedSpan(ctx context.Context, span *SkippedSpan) error {
	return t.storage.insertSkippedSpanWithQuerier(ctx, t.querier(), span)
}

func (t *sqliteTx) ListSkippedSpansByFile(ctx context.Context, fileID int64) ([]*SkippedSpan, error) {
	return t.storage.ListSkippedSpansByFile(ctx, fileID)
}

func (t *sqliteTx) DeleteSkippedSpansByFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteSkippedSpansByFileWithQuerier(ctx, t.querier(), fileID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error) {
	return t.storage.GetStatus(ctx, projectID)
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	// We return an error to prevent accidental misuse
	// If savepoints are needed in the future, implement here
	return nil, errors.New("nested transactions not supported")
}
