// Package token defines the lexical vocabulary shared by the lexer, parser,
// resolver and interpreter.
package token

import "fmt"

// Type identifies the lexical category of a token.
type Type int

const (
	// Single-character punctuation
	LeftParen  Type = iota // (
	RightParen             // )
	LeftBrace              // {
	RightBrace             // }
	Comma                  // ,
	Dot                    // .
	Minus                  // -
	Plus                   // +
	Semicolon              // ;
	Slash                  // /
	Star                   // *

	// One or two character operators
	Bang         // !
	BangEqual    // !=
	Equal        // =
	EqualEqual   // ==
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	EOF
)

var names = [...]string{
	LeftParen:    "'('",
	RightParen:   "')'",
	LeftBrace:    "'{'",
	RightBrace:   "'}'",
	Comma:        "','",
	Dot:          "'.'",
	Minus:        "'-'",
	Plus:         "'+'",
	Semicolon:    "';'",
	Slash:        "'/'",
	Star:         "'*'",
	Bang:         "'!'",
	BangEqual:    "'!='",
	Equal:        "'='",
	EqualEqual:   "'=='",
	Greater:      "'>'",
	GreaterEqual: "'>='",
	Less:         "'<'",
	LessEqual:    "'<='",
	Identifier:   "identifier",
	String:       "string",
	Number:       "number",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	For:          "for",
	Fun:          "fun",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	EOF:          "end of file",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Keywords maps reserved words to their token types.
var Keywords = map[string]Type{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Pos is a source position. It is comparable and unique per token within a
// file, so it doubles as the identity key of the token.
type Pos struct {
	File   string `json:"file" yaml:"file"`
	Offset int    `json:"offset" yaml:"offset"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Token is a single lexeme produced by the lexer.
type Token struct {
	Type    Type
	Lexeme  string
	Literal any // float64 for Number, string for String, nil otherwise
	Pos     Pos
}

// Line returns the 1-based source line of the token.
func (t Token) Line() int { return t.Pos.Line }

func (t Token) String() string {
	if t.Type == EOF {
		return "end of file"
	}
	return fmt.Sprintf("'%s'", t.Lexeme)
}

// Synthetic builds a token that does not come from source text, anchored at
// pos. The parser uses it for desugared nodes.
func Synthetic(typ Type, lexeme string, literal any, pos Pos) Token {
	return Token{Type: typ, Lexeme: lexeme, Literal: literal, Pos: pos}
}
