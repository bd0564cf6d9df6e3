//go:build cgo_sqlite
// +build cgo_sqlite

package storage

// This file is compiled when building with CGO and the cgo_sqlite tag.
// It uses the C SQLite implementation with full FTS5 support.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "cgo_sqlite,fts5" ./...
//
// The C implementation provides:
//   - Fast native SQLite engine
//   - FTS5 full-text search support
//   - Recommended for large codebases
//
// Driver used: github.com/mattn/go-sqlite3

import (
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)
