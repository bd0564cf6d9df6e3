// Package types provides shared type definitions for the CppContext MCP server.
//
// This package defines domain types used across multiple components of
// CppContext, including tokens, scopes, declarations, and analysis results.
//
// # Core Types
//
// Token is a single lexical unit produced by the lexer:
//
//	tok := types.Token{
//	    Kind: types.TokenKeyword,
//	    Text: "class",
//	    Pos:  types.Position{Line: 20, Column: 1},
//	}
//
// Declaration represents a recognized C++ construct (function, class,
// namespace, lambda, etc.) with its structural attributes:
//
//	decl := types.Declaration{
//	    Variant:       types.VariantMemberFunction,
//	    Name:          "getValue",
//	    QualifiedPath: []string{"Calculator"},
//	    Qualifiers:    types.NewQualifierSet(types.QualConst),
//	}
//
// # Qualified Paths
//
// A declaration's QualifiedPath holds the enclosing namespace and class
// names from outermost to innermost, excluding function scopes and the
// declaration's own name. The inventory key appends the name:
//
//	decl.PathKey() // "Calculator::getValue"
//
// Overload sets share a key; lookups return all declarations under it.
//
// # Error Surface
//
// Two fatal error types carry full position context:
//
//	LexError       // malformed token, aborts the whole pass
//	StructureError // unbalanced scope delimiters
//
// SkippedSpan is the non-fatal counterpart: a diagnostic for token runs
// outside the supported grammar subset, collected alongside the result
// while the pass continues.
package types
