package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens, err := Tokenize(source, "test.lox")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []token.Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != token.EOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func expectTypes(t *testing.T, tokens []token.Token, want ...token.Type) {
	t.Helper()
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Type, w)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != token.EOF {
		t.Errorf("expected EOF, got %v", tokens[0].Type)
	}
}

// ---------------------------------------------------------------------------
// Test: all keywords
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected token.Type
	}{
		{"and", token.And},
		{"class", token.Class},
		{"else", token.Else},
		{"false", token.False},
		{"for", token.For},
		{"fun", token.Fun},
		{"if", token.If},
		{"nil", token.Nil},
		{"or", token.Or},
		{"print", token.Print},
		{"return", token.Return},
		{"super", token.Super},
		{"this", token.This},
		{"true", token.True},
		{"var", token.Var},
		{"while", token.While},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			toks := mustTokenizeNoEOF(t, tt.keyword)
			expectTypes(t, toks, tt.expected)
			if toks[0].Lexeme != tt.keyword {
				t.Errorf("lexeme: got %q, want %q", toks[0].Lexeme, tt.keyword)
			}
		})
	}
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "orchid variable _fun fun2")
	expectTypes(t, toks, token.Identifier, token.Identifier, token.Identifier, token.Identifier)
}

func TestPunctuationAndOperators(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "(){},.-+;/* ! != = == > >= < <=")
	expectTypes(t, toks,
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Slash, token.Star,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
	)
}

func TestOperatorsWithoutSpaces(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "a<=b==!c")
	expectTypes(t, toks,
		token.Identifier, token.LessEqual, token.Identifier,
		token.EqualEqual, token.Bang, token.Identifier,
	)
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.14", 3.14},
		{"10.0", 10},
	}
	for _, tt := range tests {
		toks := mustTokenizeNoEOF(t, tt.src)
		expectTypes(t, toks, token.Number)
		if got := toks[0].Literal.(float64); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestNumberTrailingDotIsSeparateToken(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "12.")
	expectTypes(t, toks, token.Number, token.Dot)
}

func TestLeadingDotIsNotNumber(t *testing.T) {
	toks := mustTokenizeNoEOF(t, ".5")
	expectTypes(t, toks, token.Dot, token.Number)
}

func TestStrings(t *testing.T) {
	toks := mustTokenizeNoEOF(t, `"hello" ""`)
	expectTypes(t, toks, token.String, token.String)
	if toks[0].Literal != "hello" {
		t.Errorf("literal: got %v, want hello", toks[0].Literal)
	}
	if toks[0].Lexeme != `"hello"` {
		t.Errorf("lexeme: got %q", toks[0].Lexeme)
	}
	if toks[1].Literal != "" {
		t.Errorf("empty literal: got %q", toks[1].Literal)
	}
}

func TestMultilineStringTracksLines(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "\"a\nb\" x")
	expectTypes(t, toks, token.String, token.Identifier)
	if toks[0].Literal != "a\nb" {
		t.Errorf("literal: got %q", toks[0].Literal)
	}
	if toks[1].Pos.Line != 2 {
		t.Errorf("expected identifier on line 2, got %d", toks[1].Pos.Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := Tokenize(`"never closed`, "test.lox")
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
	var lexErr *Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if lexErr.Message != "Unterminated string." {
		t.Errorf("message: got %q", lexErr.Message)
	}
	if lexErr.Diag().Code != diagnostics.ELex {
		t.Errorf("code: got %q", lexErr.Diag().Code)
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	_, err := Tokenize("var a = @;", "test.lox")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Unexpected character '@'.") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestComments(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "// whole line\nprint 1; // trailing\n// end")
	expectTypes(t, toks, token.Print, token.Number, token.Semicolon)
}

func TestSlashIsNotComment(t *testing.T) {
	toks := mustTokenizeNoEOF(t, "4 / 2")
	expectTypes(t, toks, token.Number, token.Slash, token.Number)
}

func TestPositions(t *testing.T) {
	toks := mustTokenize(t, "var x\n  = 1;")
	want := []token.Pos{
		{File: "test.lox", Offset: 0, Line: 1, Column: 1},
		{File: "test.lox", Offset: 4, Line: 1, Column: 5},
		{File: "test.lox", Offset: 8, Line: 2, Column: 3},
		{File: "test.lox", Offset: 10, Line: 2, Column: 5},
		{File: "test.lox", Offset: 11, Line: 2, Column: 6},
		{File: "test.lox", Offset: 12, Line: 2, Column: 7},
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, w := range want {
		if toks[i].Pos != w {
			t.Errorf("token %d (%s): got %+v, want %+v", i, toks[i].Lexeme, toks[i].Pos, w)
		}
	}
}

func TestPositionsAreUnique(t *testing.T) {
	toks := mustTokenize(t, "a a a (a)(a);")
	seen := make(map[token.Pos]bool)
	for _, tok := range toks {
		if seen[tok.Pos] {
			t.Fatalf("duplicate position %v", tok.Pos)
		}
		seen[tok.Pos] = true
	}
}

func TestFullStatement(t *testing.T) {
	toks := mustTokenizeNoEOF(t, `fun add(a, b) { return a + b; }`)
	expectTypes(t, toks,
		token.Fun, token.Identifier, token.LeftParen, token.Identifier, token.Comma,
		token.Identifier, token.RightParen, token.LeftBrace, token.Return,
		token.Identifier, token.Plus, token.Identifier, token.Semicolon, token.RightBrace,
	)
}
