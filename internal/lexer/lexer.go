package lexer

import (
	"unicode"

	"github.com/dshills/cppcontext-mcp/pkg/types"
)

// keywords is the fixed set of keywords the engine classifies. All
// other identifier-shaped runs lex as identifiers, including access
// specifiers and primitive type names.
var keywords = map[string]bool{
	"class": true, "struct": true, "namespace": true,
	"template": true, "typename": true,
	"const": true, "static": true, "virtual": true, "override": true,
	"auto": true, "return": true,
}

// multiCharPuncts are punctuation sequences lexed as a single token.
// Keeping `&&` and `==` whole lets downstream extraction distinguish
// reference markers and default-value assignment without re-scanning.
var multiCharPuncts = []string{
	"::", "->", "==", "!=", "<=", ">=", "&&", "||",
	"++", "--", "+=", "-=", "*=", "/=", "<<", ">>",
}

// Lexer tokenizes C++-like source text
type Lexer struct {
	label  string
	input  string
	pos    int
	line   int
	column int
	tokens []types.Token
}

// New creates a new lexer over an in-memory buffer. The label
// identifies the source unit in error messages only; the lexer never
// touches the filesystem.
func New(label, input string) *Lexer {
	return &Lexer{
		label:  label,
		input:  input,
		pos:    0,
		line:   1,
		column: 1,
	}
}

// Tokenize processes the entire input and returns all tokens,
// terminated by an EOF token. Comments are produced as trivia tokens;
// whitespace and preprocessor directives are consumed silently.
// Returns a LexError for unterminated strings or block comments.
// Each call re-lexes the full input from the start.
func (l *Lexer) Tokenize() ([]types.Token, error) {
	l.tokens = nil
	l.pos = 0
	l.line = 1
	l.column = 1

	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '/' && (l.peek() == '/' || l.peek() == '*'):
			if err := l.readComment(); err != nil {
				return nil, err
			}
		case ch == '#':
			l.skipPreprocessor()
		case ch == '"' || ch == '\'':
			if err := l.readString(ch); err != nil {
				return nil, err
			}
		case unicode.IsLetter(rune(ch)) || ch == '_':
			l.readIdentifier()
		case unicode.IsDigit(rune(ch)):
			l.readNumber()
		default:
			l.readPunct()
		}
	}

	l.tokens = append(l.tokens, types.Token{
		Kind: types.TokenEOF,
		Pos:  l.position(),
	})
	return l.tokens, nil
}

func (l *Lexer) position() types.Position {
	return types.Position{Line: l.line, Column: l.column}
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.pos++
	}
}

func (l *Lexer) peek() byte {
	if l.pos+1 < len(l.input) {
		return l.input[l.pos+1]
	}
	return 0
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
		} else {
			break
		}
	}
}

// readComment lexes `//` and `/* */` comments as trivia tokens.
// An unterminated block comment is a fatal lex error.
func (l *Lexer) readComment() error {
	start := l.position()
	startPos := l.pos

	if l.peek() == '/' {
		for l.pos < len(l.input) && l.input[l.pos] != '\n' {
			l.advance()
		}
		l.emit(types.TokenComment, l.input[startPos:l.pos], start)
		return nil
	}

	// Block comment
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.input) {
		if l.input[l.pos] == '*' && l.peek() == '/' {
			l.advance()
			l.advance()
			l.emit(types.TokenComment, l.input[startPos:l.pos], start)
			return nil
		}
		l.advance()
	}

	return &types.LexError{
		Label:   l.label,
		Pos:     start,
		Message: "unterminated block comment",
	}
}

// skipPreprocessor consumes a directive line, honoring backslash
// continuations. Macro expansion is out of scope; directives are not
// surfaced as tokens.
func (l *Lexer) skipPreprocessor() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		if l.input[l.pos] == '\\' && l.peek() == '\n' {
			l.advance()
			l.advance()
			continue
		}
		l.advance()
	}
}

// readString lexes a string or character literal, retaining the
// surrounding quotes in the token text. A newline or end of input
// before the closing quote is a fatal lex error.
func (l *Lexer) readString(quote byte) error {
	start := l.position()
	startPos := l.pos
	l.advance() // opening quote

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\\':
			l.advance()
			l.advance() // escaped character
		case ch == quote:
			l.advance()
			l.emit(types.TokenString, l.input[startPos:l.pos], start)
			return nil
		case ch == '\n':
			return &types.LexError{
				Label:   l.label,
				Pos:     start,
				Message: "unterminated string literal",
			}
		default:
			l.advance()
		}
	}

	return &types.LexError{
		Label:   l.label,
		Pos:     start,
		Message: "unterminated string literal",
	}
}

func (l *Lexer) readIdentifier() {
	start := l.position()
	startPos := l.pos

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			l.advance()
		} else {
			break
		}
	}

	text := l.input[startPos:l.pos]
	kind := types.TokenIdentifier
	if keywords[text] {
		kind = types.TokenKeyword
	}
	l.emit(kind, text, start)
}

func (l *Lexer) readNumber() {
	start := l.position()
	startPos := l.pos

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsDigit(rune(ch)) || ch == '.' || ch == 'x' || ch == 'X' ||
			(ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			l.advance()
		} else {
			break
		}
	}

	l.emit(types.TokenNumber, l.input[startPos:l.pos], start)
}

func (l *Lexer) readPunct() {
	start := l.position()

	if l.pos+1 < len(l.input) {
		two := l.input[l.pos : l.pos+2]
		for _, mp := range multiCharPuncts {
			if two == mp {
				l.advance()
				l.advance()
				l.emit(types.TokenPunct, two, start)
				return
			}
		}
	}

	text := string(l.input[l.pos])
	l.advance()
	l.emit(types.TokenPunct, text, start)
}

func (l *Lexer) emit(kind types.TokenKind, text string, pos types.Position) {
	l.tokens = append(l.tokens, types.Token{
		Kind: kind,
		Text: text,
		Pos:  pos,
	})
}
