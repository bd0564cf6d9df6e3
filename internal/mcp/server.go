package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/cppcontext-mcp/internal/indexer"
	"github.com/dshills/cppcontext-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "cppcontext-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultDBPath is the default location for the database
	DefaultDBPath = "~/.cppcontext/indices"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	storage storage.Storage
	indexer *indexer.Indexer
	lock    indexer.IndexLock
}

// NewServer creates a new MCP server instance
func NewServer(dbPath string) (*Server, error) {
	// Expand home directory if needed
	if dbPath == "" || dbPath == DefaultDBPath {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".cppcontext", "indices")
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// For now, use a single database file
	// In future, we could have per-project databases
	dbFile := filepath.Join(dbPath, "cppcontext.db")

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Create indexer
	idx := indexer.New(store)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:     mcpServer,
		storage: store,
		indexer: idx,
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.storage.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Register index_codebase tool
	s.mcp.AddTool(indexCodebaseTool(), s.handleIndexCodebase)

	// Register lookup_symbol tool
	s.mcp.AddTool(lookupSymbolTool(), s.handleLookupSymbol)

	// Register list_declarations tool
	s.mcp.AddTool(listDeclarationsTool(), s.handleListDeclarations)

	// Register search_declarations tool
	s.mcp.AddTool(searchDeclarationsTool(), s.handleSearchDeclarations)

	// Register get_status tool
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
