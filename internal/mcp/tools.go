package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/cppcontext-mcp/internal/indexer"
	"github.com/dshills/cppcontext-mcp/internal/storage"
	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain a C++ project
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIndexCodebase handles the index_codebase tool invocation
func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Parse optional parameters
	includeHeaders := getBoolDefault(args, "include_headers", true)
	forceReindex := getBoolDefault(args, "force_reindex", false)
	workers := getIntDefault(args, "workers", 0)

	// One indexing run at a time per server
	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "an indexing operation is already running", nil)
	}
	defer s.lock.Release()

	// Create indexer config
	config := &indexer.Config{
		Workers:        workers,
		IncludeHeaders: includeHeaders,
		ForceReindex:   forceReindex,
	}

	// Run indexing
	stats, err := s.indexer.IndexProject(ctx, path, config)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Format response
	response := map[string]interface{}{
		"indexed":               true,
		"files_indexed":         stats.FilesIndexed,
		"files_skipped":         stats.FilesSkipped,
		"files_failed":          stats.FilesFailed,
		"declarations_recorded": stats.DeclarationsRecorded,
		"skipped_spans":         stats.SkippedSpansRecorded,
		"duration_ms":           stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLookupSymbol handles the lookup_symbol tool invocation
func (s *Server) handleLookupSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol parameter is required", map[string]interface{}{
			"param":  "symbol",
			"reason": "missing or empty",
		})
	}

	project, err := s.requireProject(ctx, path)
	if err != nil {
		return nil, err
	}

	decls, err := s.storage.LookupDeclarations(ctx, project.ID, symbol)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results, err := s.renderDeclarations(ctx, decls)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"symbol":  symbol,
		"count":   len(results),
		"matches": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDeclarations handles the list_declarations tool invocation
func (s *Server) handleListDeclarations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	variant, ok := args["variant"].(string)
	if !ok || variant == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "variant parameter is required", map[string]interface{}{
			"param":  "variant",
			"reason": "missing or empty",
		})
	}
	if !types.DeclVariant(variant).Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid variant", map[string]interface{}{
			"param": "variant",
			"value": variant,
		})
	}

	project, err := s.requireProject(ctx, path)
	if err != nil {
		return nil, err
	}

	decls, err := s.storage.ListDeclarationsByVariant(ctx, project.ID, variant)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "list failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Optional scope filter: only declarations directly inside the scope
	if scopePath, ok := args["scope_path"].(string); ok && scopePath != "" {
		filtered := decls[:0]
		for _, d := range decls {
			if d.QualifiedPath == scopePath {
				filtered = append(filtered, d)
			}
		}
		decls = filtered
	}

	results, err := s.renderDeclarations(ctx, decls)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"variant":      variant,
		"count":        len(results),
		"declarations": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchDeclarations handles the search_declarations tool invocation
func (s *Server) handleSearchDeclarations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	project, err := s.requireProject(ctx, path)
	if err != nil {
		return nil, err
	}

	decls, err := s.storage.SearchDeclarations(ctx, project.ID, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results, err := s.renderDeclarations(ctx, decls)
	if err != nil {
		return nil, err
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// Extract and validate parameters
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	// Validate path exists and is accessible
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	// Try to get project
	project, err := s.storage.GetProject(ctx, path)
	if err == storage.ErrNotFound {
		// Project not indexed
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Project not indexed. Use index_codebase tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Get detailed status
	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Format response
	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"index_version":   project.IndexVersion,
			"last_indexed_at": project.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"files_count":        status.FilesCount,
			"declarations_count": status.DeclarationsCount,
			"skipped_count":      status.SkippedCount,
			"index_size_mb":      fmt.Sprintf("%.2f", status.IndexSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// requireProject resolves an indexed project or returns a NotIndexed error
func (s *Server) requireProject(ctx context.Context, path string) (*storage.Project, error) {
	if err := validatePath(path); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	project, err := s.storage.GetProject(ctx, path)
	if err == storage.ErrNotFound {
		return nil, newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
			"path": path,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return project, nil
}

// renderDeclarations converts declaration rows into response maps,
// loading parameters and file paths
func (s *Server) renderDeclarations(ctx context.Context, decls []*storage.Declaration) ([]map[string]interface{}, error) {
	results := make([]map[string]interface{}, 0, len(decls))
	for _, d := range decls {
		params, err := s.storage.ListParameters(ctx, d.ID)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to load parameters", map[string]interface{}{
				"error": err.Error(),
			})
		}

		entry := map[string]interface{}{
			"variant":    d.Variant,
			"name":       d.Name,
			"path_key":   d.PathKey,
			"start_line": d.StartLine,
			"end_line":   d.EndLine,
		}
		if d.QualifiedPath != "" {
			entry["qualified_path"] = d.QualifiedPath
		}
		if d.Qualifiers != "" {
			entry["qualifiers"] = strings.Split(d.Qualifiers, ",")
		}
		if d.ReturnType != "" {
			entry["return_type"] = d.ReturnType
		}
		if d.BaseClasses != "" {
			entry["base_classes"] = strings.Split(d.BaseClasses, ",")
		}
		if d.CaptureList != "" {
			entry["capture_list"] = strings.Split(d.CaptureList, ",")
		}

		if file, err := s.storage.GetFileByID(ctx, d.FileID); err == nil {
			entry["file"] = file.FilePath
		}

		if len(params) > 0 {
			paramList := make([]map[string]interface{}, 0, len(params))
			for _, p := range params {
				pm := map[string]interface{}{
					"type": p.TypeText,
				}
				if p.Name != "" {
					pm["name"] = p.Name
				}
				if p.IsReference {
					pm["is_reference"] = true
				}
				if p.DefaultValue != "" {
					pm["default_value"] = p.DefaultValue
				}
				paramList = append(paramList, pm)
			}
			entry["parameters"] = paramList
		}

		results = append(results, entry)
	}
	return results, nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a path exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it's a directory
	if !info.IsDir() {
		return ErrNotDirectory
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	// Check for C++ files
	hasCppFiles := false
	_ = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".cpp", ".cc", ".cxx", ".h", ".hpp", ".hh":
			hasCppFiles = true
		}
		return nil
	})

	if !hasCppFiles {
		return ErrNoCppFiles
	}

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoCppFiles      = errors.New("directory does not contain C++ files")
)
