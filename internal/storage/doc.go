// Package storage provides SQLite-based persistence for analyzed C++
// source inventories.
//
// The storage layer manages:
//   - Project metadata
//   - File information and content hashes
//   - Recognized declarations and their parameters
//   - Skipped-span diagnostics
//   - Full-text search indexes over declarations
//
// # Database Schema
//
// Tables:
//   - projects: Project metadata (root path, index version)
//   - files: File paths, SHA-256 hashes, and parse errors
//   - declarations: Recognized declarations keyed by qualified path
//   - parameters: Ordered parameters of each declaration
//   - skipped_spans: Non-fatal skipped-span diagnostics per file
//   - declarations_fts: FTS5 full-text search index
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("~/.cppcontext/indices/project.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	row, params := storage.FromTypesDeclaration(decl, fileID)
//	if err := db.InsertDeclaration(ctx, row, params); err != nil {
//	    return err
//	}
//
// # Transactions
//
// Use transactions for per-file atomic replacement:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	_ = tx.DeleteDeclarationsByFile(ctx, fileID)
//	_ = tx.DeleteSkippedSpansByFile(ctx, fileID)
//	for _, d := range decls {
//	    row, params := storage.FromTypesDeclaration(d, fileID)
//	    _ = tx.InsertDeclaration(ctx, row, params)
//	}
//
//	if err := tx.Commit(); err != nil {
//	    return err
//	}
//
// # Incremental Updates
//
// Compare stored content hashes to detect changes:
//
//	file, err := db.GetFile(ctx, projectID, path)
//	if err == nil && file.ContentHash == sha256.Sum256(content) {
//	    // File unchanged, skip re-analysis
//	    return nil
//	}
//
// # Full-Text Search
//
// Query declarations using BM25 ranking:
//
//	results, err := db.SearchDeclarations(ctx, projectID, "Calculator", 10)
//
// FTS5 indexes are kept in sync with the declarations table by
// triggers installed during migration.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// CGO Build (cgo_sqlite tag):
//
//   - Uses github.com/mattn/go-sqlite3 driver
//
//   - Requires C compiler
//
//     CGO_ENABLED=1 go build -tags "cgo_sqlite,fts5"
//
// Pure Go Build (default, or purego tag):
//
//   - Uses modernc.org/sqlite driver
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build -tags "purego"
package storage
