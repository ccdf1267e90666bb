// Package parser implements the recursive-descent parser.
package parser

import (
	"fmt"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/token"
)

// MaxArgs caps both parameter and argument lists.
const MaxArgs = 8

// Error is a parse error at the offending token.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	if e.Token.Type == token.EOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Token.Line(), e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line(), e.Token.Lexeme, e.Message)
}

// Diag converts the error to a diagnostic.
func (e *Error) Diag() diagnostics.Diagnostic {
	return diagnostics.AtToken(diagnostics.EParse, e.Message, e.Token)
}

// AtEnd reports whether parsing ran out of input. The REPL uses it to ask
// for another line instead of reporting the error.
func (e *Error) AtEnd() bool {
	return e.Token.Type == token.EOF
}

type parser struct {
	tokens []token.Token
	pos    int
	err    *Error
}

// Parse parses a token stream terminated by EOF. It returns the first
// syntax error, if any.
func Parse(tokens []token.Token) (*ast.Program, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &parser{tokens: tokens}
	prog := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

// ParseSource tokenizes source and parses it.
func ParseSource(source, filename string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

func (p *parser) current() token.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() token.Type {
	return p.current().Type
}

func (p *parser) advance() token.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// match consumes the current token if it is one of types.
func (p *parser) match(types ...token.Type) (token.Token, bool) {
	for _, typ := range types {
		if p.peek() == typ {
			return p.advance(), true
		}
	}
	return token.Token{}, false
}

func (p *parser) expect(typ token.Type, msg string) (token.Token, bool) {
	tok := p.current()
	if tok.Type != typ {
		p.addError(tok, msg)
		return tok, false
	}
	return p.advance(), true
}

// addError keeps only the first error; parsing unwinds by returning nil.
func (p *parser) addError(tok token.Token, msg string) {
	if p.err == nil {
		p.err = &Error{Token: tok, Message: msg}
	}
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	var stmts []ast.Stmt
	for p.peek() != token.EOF {
		stmt := p.parseDeclaration()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	return &ast.Program{Statements: stmts}
}

// --- Statements ---

func (p *parser) parseDeclaration() ast.Stmt {
	switch p.peek() {
	case token.Var:
		return p.parseVarDecl()
	case token.Fun:
		p.advance()
		return p.parseFunction()
	default:
		return p.parseStatement()
	}
}

func (p *parser) parseVarDecl() ast.Stmt {
	p.advance() // consume 'var'
	name, ok := p.expect(token.Identifier, "Expect variable name.")
	if !ok {
		return nil
	}

	var init ast.Expr
	if _, ok := p.match(token.Equal); ok {
		if init = p.parseExpr(); init == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after variable declaration."); !ok {
		return nil
	}
	return &ast.VarStmt{Name: name, Init: init}
}

func (p *parser) parseFunction() ast.Stmt {
	name, ok := p.expect(token.Identifier, "Expect function name.")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LeftParen, "Expect '(' after function name."); !ok {
		return nil
	}

	var params []token.Token
	if p.peek() != token.RightParen {
		for {
			if len(params) >= MaxArgs {
				p.addError(p.current(), fmt.Sprintf("Cannot have more than %d parameters.", MaxArgs))
				return nil
			}
			param, ok := p.expect(token.Identifier, "Expect parameter name.")
			if !ok {
				return nil
			}
			params = append(params, param)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after parameters."); !ok {
		return nil
	}
	if _, ok := p.expect(token.LeftBrace, "Expect '{' before function body."); !ok {
		return nil
	}
	body := p.parseBlockBody()
	if body == nil {
		return nil
	}
	return &ast.FunctionStmt{Decl: &ast.FunctionDecl{Name: name, Params: params, Body: body}}
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.peek() {
	case token.Print:
		return p.parsePrint()
	case token.Return:
		return p.parseReturn()
	case token.If:
		return p.parseIf()
	case token.While:
		return p.parseWhile()
	case token.For:
		return p.parseFor()
	case token.LeftBrace:
		brace := p.advance()
		stmts := p.parseBlockBody()
		if stmts == nil {
			return nil
		}
		return &ast.BlockStmt{Brace: brace, Statements: stmts}
	default:
		return p.parseExprStmt()
	}
}

// parseBlockBody parses declarations up to the closing brace. The opening
// brace is already consumed. An empty block yields a non-nil empty slice.
func (p *parser) parseBlockBody() []ast.Stmt {
	stmts := []ast.Stmt{}
	for p.peek() != token.RightBrace && p.peek() != token.EOF {
		stmt := p.parseDeclaration()
		if stmt == nil {
			return nil
		}
		stmts = append(stmts, stmt)
	}
	if _, ok := p.expect(token.RightBrace, "Expect '}' after block."); !ok {
		return nil
	}
	return stmts
}

func (p *parser) parsePrint() ast.Stmt {
	kw := p.advance()
	value := p.parseExpr()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after value."); !ok {
		return nil
	}
	return &ast.PrintStmt{Keyword: kw, Expr: value}
}

func (p *parser) parseReturn() ast.Stmt {
	kw := p.advance()
	var value ast.Expr
	if p.peek() != token.Semicolon {
		if value = p.parseExpr(); value == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after return value."); !ok {
		return nil
	}
	return &ast.ReturnStmt{Keyword: kw, Value: value}
}

func (p *parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(token.Semicolon, "Expect ';' after expression."); !ok {
		return nil
	}
	return &ast.ExpressionStmt{Expr: expr}
}

// parseCondition parses `( expr )` after if/while.
func (p *parser) parseCondition(keyword string) ast.Expr {
	if _, ok := p.expect(token.LeftParen, fmt.Sprintf("Expect '(' after '%s'.", keyword)); !ok {
		return nil
	}
	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(token.RightParen, fmt.Sprintf("Expect ')' after %s condition.", keyword)); !ok {
		return nil
	}
	return cond
}

func (p *parser) parseIf() ast.Stmt {
	kw := p.advance()
	cond := p.parseCondition("if")
	if cond == nil {
		return nil
	}
	then := p.parseStatement()
	if then == nil {
		return nil
	}

	// A dangling else binds to the nearest if.
	var els ast.Stmt
	if _, ok := p.match(token.Else); ok {
		if els = p.parseStatement(); els == nil {
			return nil
		}
	}
	return &ast.IfStmt{Keyword: kw, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() ast.Stmt {
	kw := p.advance()
	cond := p.parseCondition("while")
	if cond == nil {
		return nil
	}
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Keyword: kw, Cond: cond, Body: body}
}

// parseFor desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`. The outer block exists only
// with an initializer, the inner one only with an increment.
func (p *parser) parseFor() ast.Stmt {
	kw := p.advance()
	if _, ok := p.expect(token.LeftParen, "Expect '(' after 'for'."); !ok {
		return nil
	}

	var init ast.Stmt
	switch p.peek() {
	case token.Semicolon:
		p.advance()
	case token.Var:
		if init = p.parseVarDecl(); init == nil {
			return nil
		}
	default:
		if init = p.parseExprStmt(); init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if p.peek() != token.Semicolon {
		if cond = p.parseExpr(); cond == nil {
			return nil
		}
	}
	semi, ok := p.expect(token.Semicolon, "Expect ';' after loop condition.")
	if !ok {
		return nil
	}

	var incr ast.Expr
	if p.peek() != token.RightParen {
		if incr = p.parseExpr(); incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.RightParen, "Expect ')' after for clauses."); !ok {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if incr != nil {
		body = &ast.BlockStmt{
			Brace:      token.Synthetic(token.LeftBrace, "{", nil, body.Pos()),
			Statements: []ast.Stmt{body, &ast.ExpressionStmt{Expr: incr}},
		}
	}
	if cond == nil {
		cond = &ast.Literal{Token: token.Synthetic(token.True, "true", nil, semi.Pos), Value: true}
	}
	var loop ast.Stmt = &ast.WhileStmt{Keyword: kw, Cond: cond, Body: body}
	if init != nil {
		loop = &ast.BlockStmt{
			Brace:      token.Synthetic(token.LeftBrace, "{", nil, kw.Pos),
			Statements: []ast.Stmt{init, loop},
		}
	}
	return loop
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Expr {
	expr := p.parseOr()
	if expr == nil {
		return nil
	}

	eq, ok := p.match(token.Equal)
	if !ok {
		return expr
	}
	value := p.parseAssignment()
	if value == nil {
		return nil
	}
	target, isVar := expr.(*ast.Variable)
	if !isVar {
		p.addError(eq, "Invalid assignment target.")
		return nil
	}
	return &ast.Assign{Name: target.Name, Value: value}
}

func (p *parser) parseOr() ast.Expr {
	return p.parseLogical(token.Or, p.parseAnd)
}

func (p *parser) parseAnd() ast.Expr {
	return p.parseLogical(token.And, p.parseEquality)
}

func (p *parser) parseLogical(op token.Type, next func() ast.Expr) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		opTok, ok := p.match(op)
		if !ok {
			return left
		}
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.Logical{Left: left, Operator: opTok, Right: right}
	}
}

// --- Precedence climbing ---

func (p *parser) parseEquality() ast.Expr {
	return p.parseBinary(p.parseComparison, token.BangEqual, token.EqualEqual)
}

func (p *parser) parseComparison() ast.Expr {
	return p.parseBinary(p.parseAdditive, token.Greater, token.GreaterEqual, token.Less, token.LessEqual)
}

func (p *parser) parseAdditive() ast.Expr {
	return p.parseBinary(p.parseMultiplicative, token.Minus, token.Plus)
}

func (p *parser) parseMultiplicative() ast.Expr {
	return p.parseBinary(p.parseUnary, token.Slash, token.Star)
}

// parseBinary is the shared left-associative loop for one precedence level.
func (p *parser) parseBinary(next func() ast.Expr, ops ...token.Type) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for {
		opTok, ok := p.match(ops...)
		if !ok {
			return left
		}
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.Binary{Left: left, Operator: opTok, Right: right}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if opTok, ok := p.match(token.Bang, token.Minus); ok {
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.Unary{Operator: opTok, Right: operand}
	}
	return p.parseCall()
}

func (p *parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for p.peek() == token.LeftParen {
		p.advance()
		if expr = p.finishCall(expr); expr == nil {
			return nil
		}
	}
	return expr
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.peek() != token.RightParen {
		for {
			if len(args) >= MaxArgs {
				p.addError(p.current(), fmt.Sprintf("Cannot have more than %d arguments.", MaxArgs))
				return nil
			}
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if _, ok := p.match(token.Comma); !ok {
				break
			}
		}
	}
	paren, ok := p.expect(token.RightParen, "Expect ')' after arguments.")
	if !ok {
		return nil
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.peek() {
	case token.False:
		return &ast.Literal{Token: p.advance(), Value: false}
	case token.True:
		return &ast.Literal{Token: p.advance(), Value: true}
	case token.Nil:
		return &ast.Literal{Token: p.advance(), Value: nil}
	case token.Number, token.String:
		tok := p.advance()
		return &ast.Literal{Token: tok, Value: tok.Literal}
	case token.Identifier:
		return &ast.Variable{Name: p.advance()}
	case token.LeftParen:
		paren := p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(token.RightParen, "Expect ')' after expression."); !ok {
			return nil
		}
		return &ast.Grouping{Paren: paren, Expr: expr}
	default:
		p.addError(p.current(), "Expect expression.")
		return nil
	}
}
