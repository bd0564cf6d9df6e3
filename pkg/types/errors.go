package types

import "fmt"

// LexError represents a malformed token, such as an unterminated
// string literal or block comment. Lex errors are fatal for the
// enclosing source unit; no partial inventory is trusted.
type LexError struct {
	Label   string
	Pos     Position
	Message string
}

// Error implements the error interface
func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: lex error: %s", e.Label, e.Pos.Line, e.Pos.Column, e.Message)
}

// StructureError represents unbalanced scope delimiters, raised either
// at the offending closer or at finalization when scopes remain open.
type StructureError struct {
	Label   string
	Pos     Position
	Message string
}

// Error implements the error interface
func (e *StructureError) Error() string {
	return fmt.Sprintf("%s:%d:%d: structure error: %s", e.Label, e.Pos.Line, e.Pos.Column, e.Message)
}
