// Package lexer converts raw C++-like source text into a flat token
// sequence for the declaration recognizer.
//
// The lexer is a hand-written byte cursor over an in-memory UTF-8
// buffer. It classifies identifiers, a fixed keyword set, punctuation
// (including multi-character sequences like `::` and `&&`), numeric
// and string literals, and comments. Comments are retained as trivia
// tokens so callers can inspect them; whitespace and preprocessor
// directives are consumed silently.
//
// # Basic Usage
//
//	tokens, err := lexer.New("sample.cpp", source).Tokenize()
//	if err != nil {
//	    var lexErr *types.LexError
//	    if errors.As(err, &lexErr) {
//	        log.Fatalf("at %d:%d: %s", lexErr.Pos.Line, lexErr.Pos.Column, lexErr.Message)
//	    }
//	}
//
// Tokenization is deterministic and restartable: lexing identical text
// always yields an identical token sequence. The only fatal conditions
// are unterminated string literals and unterminated block comments,
// both reported as *types.LexError with the position of the opening
// delimiter.
package lexer
