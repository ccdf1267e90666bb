// Package lexer implements the tokenizer.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// MsgUnterminatedString is reported when input ends inside a string.
const MsgUnterminatedString = "Unterminated string."

type scanner struct {
	source   string
	filename string
	start    int
	pos      int
	line     int
	col      int

	startLine int
	startCol  int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

// match consumes the next byte if it equals want.
func (s *scanner) match(want byte) bool {
	if s.atEnd() || s.source[s.pos] != want {
		return false
	}
	s.advance()
	return true
}

func (s *scanner) mark() {
	s.start = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

func (s *scanner) startPos() token.Pos {
	return token.Pos{
		File:   s.filename,
		Offset: s.start,
		Line:   s.startLine,
		Column: s.startCol,
	}
}

func (s *scanner) make(typ token.Type, literal any) token.Token {
	return token.Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.pos],
		Literal: literal,
		Pos:     s.startPos(),
	}
}

func (s *scanner) skipWhitespaceAndComments() {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			// Skip comment to end of line
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanString() (token.Token, error) {
	s.advance() // consume opening "
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.atEnd() {
		return token.Token{}, s.lexError(MsgUnterminatedString)
	}
	s.advance() // consume closing "
	value := s.source[s.start+1 : s.pos-1]
	return s.make(token.String, value), nil
}

func (s *scanner) scanNumber() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A fractional part needs a digit after the dot.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	val, _ := strconv.ParseFloat(s.source[s.start:s.pos], 64)
	return s.make(token.Number, val)
}

func (s *scanner) scanIdentOrKeyword() token.Token {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.pos]
	if typ, ok := token.Keywords[text]; ok {
		return s.make(typ, nil)
	}
	return s.make(token.Identifier, nil)
}

func (s *scanner) lexError(msg string) error {
	pos := s.startPos()
	return &Error{
		Pos:     pos,
		Message: msg,
	}
}

// Error is a lex error at a source position.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Pos.Line, e.Message)
}

// Diag converts the error to a diagnostic.
func (e *Error) Diag() diagnostics.Diagnostic {
	pos := e.Pos
	return diagnostics.MakeDiag(diagnostics.ELex, e.Message, &pos, "")
}

// either returns a if the next byte is '=', else b.
func (s *scanner) either(a, b token.Type) token.Type {
	if s.match('=') {
		return a
	}
	return b
}

func (s *scanner) nextToken() (token.Token, error) {
	s.skipWhitespaceAndComments()
	s.mark()

	if s.atEnd() {
		return s.make(token.EOF, nil), nil
	}

	if s.peek() == '"' {
		return s.scanString()
	}

	ch := s.advance()

	// Single-char tokens
	switch ch {
	case '(':
		return s.make(token.LeftParen, nil), nil
	case ')':
		return s.make(token.RightParen, nil), nil
	case '{':
		return s.make(token.LeftBrace, nil), nil
	case '}':
		return s.make(token.RightBrace, nil), nil
	case ',':
		return s.make(token.Comma, nil), nil
	case '.':
		return s.make(token.Dot, nil), nil
	case '-':
		return s.make(token.Minus, nil), nil
	case '+':
		return s.make(token.Plus, nil), nil
	case ';':
		return s.make(token.Semicolon, nil), nil
	case '*':
		return s.make(token.Star, nil), nil
	case '/':
		return s.make(token.Slash, nil), nil
	}

	// Multi-char tokens
	switch ch {
	case '!':
		return s.make(s.either(token.BangEqual, token.Bang), nil), nil
	case '=':
		return s.make(s.either(token.EqualEqual, token.Equal), nil), nil
	case '<':
		return s.make(s.either(token.LessEqual, token.Less), nil), nil
	case '>':
		return s.make(s.either(token.GreaterEqual, token.Greater), nil), nil
	}

	if isDigit(ch) {
		return s.scanNumber(), nil
	}
	if isAlpha(ch) {
		return s.scanIdentOrKeyword(), nil
	}

	return token.Token{}, s.lexError(fmt.Sprintf("Unexpected character '%c'.", ch))
}

// Tokenize breaks source code into a slice of tokens terminated by EOF.
// Scanning stops at the first lex error.
func Tokenize(source, filename string) ([]token.Token, error) {
	s := newScanner(source, filename)
	var tokens []token.Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	return tokens, nil
}
