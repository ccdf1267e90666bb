// Package resolver implements the static scope pass that runs between
// parsing and execution.
package resolver

import (
	"fmt"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// Locals receives the lexical depth of every variable reference the
// resolver can place in a scope. Depth 0 is the innermost scope.
type Locals interface {
	Resolve(id ast.ID, depth int)
}

// Error is a static scoping error at the offending token.
type Error struct {
	Token   token.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Token.Line(), e.Token.Lexeme, e.Message)
}

// Diag converts the error to a diagnostic.
func (e *Error) Diag() diagnostics.Diagnostic {
	return diagnostics.AtToken(diagnostics.EResolve, e.Message, e.Token)
}

type functionKind int

const (
	kindNone functionKind = iota
	kindFunction
)

// scope maps a name to whether its initializer has finished resolving.
type scope map[string]bool

type resolver struct {
	locals  Locals
	scopes  []scope
	current functionKind
	err     *Error
}

// Resolve walks program and records variable depths into locals. It stops
// at the first error.
func Resolve(program *ast.Program, locals Locals) error {
	r := &resolver{locals: locals}
	r.beginScope()
	defer r.endScope()

	r.resolveStmts(program.Statements)
	if r.err != nil {
		return r.err
	}
	return nil
}

func (r *resolver) addError(tok token.Token, msg string) {
	if r.err == nil {
		r.err = &Error{Token: tok, Message: msg}
	}
}

func (r *resolver) failed() bool { return r.err != nil }

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, scope{})
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) innermost() scope {
	return r.scopes[len(r.scopes)-1]
}

func (r *resolver) declare(name token.Token) {
	s := r.innermost()
	if _, exists := s[name.Lexeme]; exists {
		r.addError(name, "Variable with this name already declared in this scope.")
		return
	}
	s[name.Lexeme] = false
}

func (r *resolver) define(name token.Token) {
	r.innermost()[name.Lexeme] = true
}

// resolveLocal records the distance to the nearest scope holding name.
// Misses are left for the runtime global lookup.
func (r *resolver) resolveLocal(id ast.ID, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals.Resolve(id, len(r.scopes)-1-i)
			return
		}
	}
}

// --- Statements ---

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if r.failed() {
			return
		}
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveStmt(s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		defer r.endScope()
		r.resolveStmts(stmt.Statements)
	case *ast.VarStmt:
		r.declare(stmt.Name)
		if stmt.Init != nil {
			r.resolveExpr(stmt.Init)
		}
		r.define(stmt.Name)
	case *ast.FunctionStmt:
		r.declare(stmt.Decl.Name)
		r.define(stmt.Decl.Name)
		r.resolveFunction(stmt.Decl, kindFunction)
	case *ast.ExpressionStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(stmt.Expr)
	case *ast.IfStmt:
		r.resolveExpr(stmt.Cond)
		r.resolveStmt(stmt.Then)
		if stmt.Else != nil {
			r.resolveStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(stmt.Cond)
		r.resolveStmt(stmt.Body)
	case *ast.ReturnStmt:
		if r.current == kindNone {
			r.addError(stmt.Keyword, "Cannot return from top-level code.")
			return
		}
		if stmt.Value != nil {
			r.resolveExpr(stmt.Value)
		}
	}
}

// resolveFunction opens one scope holding the parameters and the body's
// top-level declarations, the same shape the interpreter gives a call.
func (r *resolver) resolveFunction(decl *ast.FunctionDecl, kind functionKind) {
	enclosing := r.current
	r.current = kind
	r.beginScope()
	defer func() {
		r.endScope()
		r.current = enclosing
	}()

	for _, param := range decl.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(decl.Body)
}

// --- Expressions ---

func (r *resolver) resolveExpr(e ast.Expr) {
	if r.failed() {
		return
	}
	switch expr := e.(type) {
	case *ast.Variable:
		if initialized, ok := r.innermost()[expr.Name.Lexeme]; ok && !initialized {
			r.addError(expr.Name, "Cannot read local variable in its own initializer.")
			return
		}
		r.resolveLocal(expr.ID(), expr.Name)
	case *ast.Assign:
		r.resolveExpr(expr.Value)
		r.resolveLocal(expr.ID(), expr.Name)
	case *ast.Binary:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.Logical:
		r.resolveExpr(expr.Left)
		r.resolveExpr(expr.Right)
	case *ast.Unary:
		r.resolveExpr(expr.Right)
	case *ast.Grouping:
		r.resolveExpr(expr.Expr)
	case *ast.Call:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case *ast.Literal:
	}
}
