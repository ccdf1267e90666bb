// Package ast defines the syntax tree produced by the parser.
package ast

import "github.com/thomasrohde/lox/pkg/token"

// ID identifies one expression node for as long as the node is alive.
// Two parses of the same text at the same position yield different IDs.
type ID struct {
	node Expr
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	Pos() token.Pos
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	ID() ID
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

// Literal holds nil, bool, float64 or string.
type Literal struct {
	Token token.Token
	Value any
}

func (n *Literal) Kind() string   { return "Literal" }
func (n *Literal) Pos() token.Pos { return n.Token.Pos }
func (n *Literal) ID() ID         { return ID{n} }
func (n *Literal) exprNode()      {}

type Grouping struct {
	Paren token.Token // opening paren
	Expr  Expr
}

func (n *Grouping) Kind() string   { return "Grouping" }
func (n *Grouping) Pos() token.Pos { return n.Paren.Pos }
func (n *Grouping) ID() ID         { return ID{n} }
func (n *Grouping) exprNode()      {}

type Unary struct {
	Operator token.Token
	Right    Expr
}

func (n *Unary) Kind() string   { return "Unary" }
func (n *Unary) Pos() token.Pos { return n.Operator.Pos }
func (n *Unary) ID() ID         { return ID{n} }
func (n *Unary) exprNode()      {}

type Binary struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (n *Binary) Kind() string   { return "Binary" }
func (n *Binary) Pos() token.Pos { return n.Left.Pos() }
func (n *Binary) ID() ID         { return ID{n} }
func (n *Binary) exprNode()      {}

// Logical is a short-circuiting `and` / `or`.
type Logical struct {
	Left     Expr
	Operator token.Token
	Right    Expr
}

func (n *Logical) Kind() string   { return "Logical" }
func (n *Logical) Pos() token.Pos { return n.Left.Pos() }
func (n *Logical) ID() ID         { return ID{n} }
func (n *Logical) exprNode()      {}

type Variable struct {
	Name token.Token
}

func (n *Variable) Kind() string   { return "Variable" }
func (n *Variable) Pos() token.Pos { return n.Name.Pos }
func (n *Variable) ID() ID         { return ID{n} }
func (n *Variable) exprNode()      {}

type Assign struct {
	Name  token.Token
	Value Expr
}

func (n *Assign) Kind() string   { return "Assign" }
func (n *Assign) Pos() token.Pos { return n.Name.Pos }
func (n *Assign) ID() ID         { return ID{n} }
func (n *Assign) exprNode()      {}

type Call struct {
	Callee Expr
	Paren  token.Token // closing paren, used for error positions
	Args   []Expr
}

func (n *Call) Kind() string   { return "Call" }
func (n *Call) Pos() token.Pos { return n.Callee.Pos() }
func (n *Call) ID() ID         { return ID{n} }
func (n *Call) exprNode()      {}

// --- Statements ---

type ExpressionStmt struct {
	Expr Expr
}

func (n *ExpressionStmt) Kind() string   { return "ExpressionStmt" }
func (n *ExpressionStmt) Pos() token.Pos { return n.Expr.Pos() }
func (n *ExpressionStmt) stmtNode()      {}

type PrintStmt struct {
	Keyword token.Token
	Expr    Expr
}

func (n *PrintStmt) Kind() string   { return "PrintStmt" }
func (n *PrintStmt) Pos() token.Pos { return n.Keyword.Pos }
func (n *PrintStmt) stmtNode()      {}

// VarStmt declares a variable. Init is nil when no initializer is given.
type VarStmt struct {
	Name token.Token
	Init Expr
}

func (n *VarStmt) Kind() string   { return "VarStmt" }
func (n *VarStmt) Pos() token.Pos { return n.Name.Pos }
func (n *VarStmt) stmtNode()      {}

type BlockStmt struct {
	Brace      token.Token
	Statements []Stmt
}

func (n *BlockStmt) Kind() string   { return "BlockStmt" }
func (n *BlockStmt) Pos() token.Pos { return n.Brace.Pos }
func (n *BlockStmt) stmtNode()      {}

// IfStmt; Else is nil when absent.
type IfStmt struct {
	Keyword token.Token
	Cond    Expr
	Then    Stmt
	Else    Stmt
}

func (n *IfStmt) Kind() string   { return "IfStmt" }
func (n *IfStmt) Pos() token.Pos { return n.Keyword.Pos }
func (n *IfStmt) stmtNode()      {}

// WhileStmt is also the desugared form of `for`.
type WhileStmt struct {
	Keyword token.Token
	Cond    Expr
	Body    Stmt
}

func (n *WhileStmt) Kind() string   { return "WhileStmt" }
func (n *WhileStmt) Pos() token.Pos { return n.Keyword.Pos }
func (n *WhileStmt) stmtNode()      {}

// FunctionDecl is shared between the statement and every runtime Function
// created from it.
type FunctionDecl struct {
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

type FunctionStmt struct {
	Decl *FunctionDecl
}

func (n *FunctionStmt) Kind() string   { return "FunctionStmt" }
func (n *FunctionStmt) Pos() token.Pos { return n.Decl.Name.Pos }
func (n *FunctionStmt) stmtNode()      {}

// ReturnStmt; Value is nil for a bare `return;`.
type ReturnStmt struct {
	Keyword token.Token
	Value   Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) Pos() token.Pos { return n.Keyword.Pos }
func (n *ReturnStmt) stmtNode()      {}

// --- Program ---

type Program struct {
	Statements []Stmt
}

func (n *Program) Kind() string { return "Program" }

func (n *Program) Pos() token.Pos {
	if len(n.Statements) == 0 {
		return token.Pos{}
	}
	return n.Statements[0].Pos()
}
