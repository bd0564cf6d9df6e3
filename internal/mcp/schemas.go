package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexCodebaseTool returns the tool definition for index_codebase
func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index a C++ codebase to make its declarations queryable",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to C++ project root (must contain .cpp/.cc/.cxx files)",
				},
				"include_headers": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index .h/.hpp files alongside translation units",
					"default":     true,
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "Re-analyze all files even if unchanged since the last index",
					"default":     false,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of concurrent analysis workers (default: number of CPUs)",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// lookupSymbolTool returns the tool definition for lookup_symbol
func lookupSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name:        "lookup_symbol",
		Description: "Look up the overload set under a qualified path like Math::Advanced::Calculator::add",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed C++ project",
				},
				"symbol": map[string]interface{}{
					"type":        "string",
					"description": "Qualified symbol path using :: notation (e.g. Calculator::add)",
				},
			},
			Required: []string{"path", "symbol"},
		},
	}
}

// listDeclarationsTool returns the tool definition for list_declarations
func listDeclarationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_declarations",
		Description: "List declarations of one variant across an indexed C++ project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed C++ project",
				},
				"variant": map[string]interface{}{
					"type":        "string",
					"description": "Declaration variant to list",
					"enum": []string{
						"free_function", "function_template", "lambda",
						"class", "member_function", "namespace",
					},
				},
				"scope_path": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to declarations directly inside this scope (e.g. Math::Advanced)",
				},
			},
			Required: []string{"path", "variant"},
		},
	}
}

// searchDeclarationsTool returns the tool definition for search_declarations
func searchDeclarationsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_declarations",
		Description: "Full-text search over declaration names, paths, and return types",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed C++ project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (FTS5 match expression or plain keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a C++ project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to C++ project",
				},
			},
			Required: []string{"path"},
		},
	}
}
