// Package mcp implements the Model Context Protocol server exposing
// C++ declaration analysis to AI assistants.
//
// The server speaks MCP over stdio and registers five tools backed by
// the indexer and storage layers.
//
// # Tools
//
// index_codebase analyzes a C++ source tree and persists its
// declarations:
//
//	{
//	  "path": "/path/to/project",
//	  "include_headers": true,
//	  "workers": 8
//	}
//
// lookup_symbol returns the overload set under a qualified path:
//
//	{
//	  "path": "/path/to/project",
//	  "symbol": "Math::Advanced::Calculator::add"
//	}
//
// list_declarations lists every declaration of one variant:
//
//	{
//	  "path": "/path/to/project",
//	  "variant": "member_function"
//	}
//
// search_declarations runs a BM25-ranked full-text query over
// declaration names, paths, and return types:
//
//	{
//	  "path": "/path/to/project",
//	  "query": "Calculator",
//	  "limit": 10
//	}
//
// get_status reports index statistics and health for a project.
//
// # Error Codes
//
// Tool failures are reported as MCPError values with JSON-RPC style
// codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  path does not contain a C++ project
//	-32002  indexing already in progress
//	-32003  project not indexed
//	-32004  empty query
//
// # Usage
//
//	srv, err := mcp.NewServer(mcp.DefaultDBPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Serve(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The database location defaults to ~/.cppcontext/indices and can be
// overridden with the CPPCONTEXT_DB_PATH environment variable handled
// by the command entry point.
package mcp
