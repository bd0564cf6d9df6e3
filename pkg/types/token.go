package types

// TokenKind represents the lexical category of a token
type TokenKind string

const (
	TokenIdentifier TokenKind = "identifier"
	TokenKeyword    TokenKind = "keyword"
	TokenPunct      TokenKind = "punct"
	TokenNumber     TokenKind = "number"
	TokenString     TokenKind = "string"
	TokenComment    TokenKind = "comment"
	TokenEOF        TokenKind = "eof"
)

// Position represents a location in source text (1-based)
type Position struct {
	Line   int
	Column int
}

// Token is a single lexical unit produced by the lexer.
// Tokens are immutable once produced.
type Token struct {
	Kind TokenKind
	Text string
	Pos  Position
}

// IsPunct reports whether the token is punctuation with the given text
func (t Token) IsPunct(text string) bool {
	return t.Kind == TokenPunct && t.Text == text
}

// IsKeyword reports whether the token is the given keyword
func (t Token) IsKeyword(word string) bool {
	return t.Kind == TokenKeyword && t.Text == word
}

// IsTrivia reports whether the token is excluded from declaration matching
func (t Token) IsTrivia() bool {
	return t.Kind == TokenComment
}
