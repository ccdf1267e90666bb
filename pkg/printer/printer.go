// Package printer renders syntax trees, either as parenthesized debug text
// or as re-indented source code.
package printer

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
)

const indent = "  "

// Print renders node as a single-line parenthesized form, e.g.
// `(print (+ 1 (group (* 2 3))))`.
func Print(node ast.Node) string {
	var b strings.Builder
	printNode(&b, node)
	return b.String()
}

func printNode(b *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Program:
		b.WriteString("(program")
		for _, s := range n.Statements {
			b.WriteByte(' ')
			printNode(b, s)
		}
		b.WriteByte(')')
	case ast.Stmt:
		printStmt(b, n)
	case ast.Expr:
		printExpr(b, n)
	}
}

func parens(b *strings.Builder, name string, parts ...func()) {
	b.WriteByte('(')
	b.WriteString(name)
	for _, part := range parts {
		b.WriteByte(' ')
		part()
	}
	b.WriteByte(')')
}

func stmtPart(b *strings.Builder, s ast.Stmt) func() {
	return func() { printStmt(b, s) }
}

func exprPart(b *strings.Builder, e ast.Expr) func() {
	return func() { printExpr(b, e) }
}

func textPart(b *strings.Builder, s string) func() {
	return func() { b.WriteString(s) }
}

func printStmt(b *strings.Builder, s ast.Stmt) {
	switch stmt := s.(type) {
	case *ast.ExpressionStmt:
		parens(b, "expr", exprPart(b, stmt.Expr))
	case *ast.PrintStmt:
		parens(b, "print", exprPart(b, stmt.Expr))
	case *ast.VarStmt:
		init := textPart(b, "nil")
		if stmt.Init != nil {
			init = exprPart(b, stmt.Init)
		}
		parens(b, "var", textPart(b, stmt.Name.Lexeme), init)
	case *ast.BlockStmt:
		parts := make([]func(), len(stmt.Statements))
		for i, inner := range stmt.Statements {
			parts[i] = stmtPart(b, inner)
		}
		parens(b, "block", parts...)
	case *ast.IfStmt:
		parts := []func(){exprPart(b, stmt.Cond), stmtPart(b, stmt.Then)}
		if stmt.Else != nil {
			parts = append(parts, stmtPart(b, stmt.Else))
		}
		parens(b, "if", parts...)
	case *ast.WhileStmt:
		parens(b, "while", exprPart(b, stmt.Cond), stmtPart(b, stmt.Body))
	case *ast.FunctionStmt:
		params := make([]string, len(stmt.Decl.Params))
		for i, p := range stmt.Decl.Params {
			params[i] = p.Lexeme
		}
		parts := []func(){
			textPart(b, stmt.Decl.Name.Lexeme),
			textPart(b, "("+strings.Join(params, " ")+")"),
		}
		for _, inner := range stmt.Decl.Body {
			parts = append(parts, stmtPart(b, inner))
		}
		parens(b, "fun", parts...)
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			parens(b, "return")
			return
		}
		parens(b, "return", exprPart(b, stmt.Value))
	}
}

func printExpr(b *strings.Builder, e ast.Expr) {
	switch expr := e.(type) {
	case *ast.Literal:
		b.WriteString(formatLiteral(expr.Value))
	case *ast.Grouping:
		parens(b, "group", exprPart(b, expr.Expr))
	case *ast.Unary:
		parens(b, expr.Operator.Lexeme, exprPart(b, expr.Right))
	case *ast.Binary:
		parens(b, expr.Operator.Lexeme, exprPart(b, expr.Left), exprPart(b, expr.Right))
	case *ast.Logical:
		parens(b, expr.Operator.Lexeme, exprPart(b, expr.Left), exprPart(b, expr.Right))
	case *ast.Variable:
		b.WriteString(expr.Name.Lexeme)
	case *ast.Assign:
		parens(b, "assign", textPart(b, expr.Name.Lexeme), exprPart(b, expr.Value))
	case *ast.Call:
		parts := []func(){exprPart(b, expr.Callee)}
		for _, arg := range expr.Args {
			parts = append(parts, exprPart(b, arg))
		}
		parens(b, "call", parts...)
	}
}

// formatLiteral renders a literal the way source would spell it. Strings
// have no escape sequences, so they are wrapped in quotes verbatim.
func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return `"` + val + `"`
	}
	return "?"
}

// Format pretty-prints a program back to source code with two-space
// indentation. `for` loops come back in their desugared while form.
func Format(program *ast.Program) string {
	lines := make([]string, len(program.Statements))
	for i, s := range program.Statements {
		lines[i] = formatStmt(s, 0)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.ExpressionStmt:
		return prefix + formatExpr(stmt.Expr) + ";"
	case *ast.PrintStmt:
		return prefix + "print " + formatExpr(stmt.Expr) + ";"
	case *ast.VarStmt:
		if stmt.Init == nil {
			return prefix + "var " + stmt.Name.Lexeme + ";"
		}
		return prefix + "var " + stmt.Name.Lexeme + " = " + formatExpr(stmt.Init) + ";"
	case *ast.BlockStmt:
		return prefix + formatBlock(stmt.Statements, depth)
	case *ast.IfStmt:
		out := prefix + "if (" + formatExpr(stmt.Cond) + ") " + formatBody(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatBody(stmt.Else, depth)
		}
		return out
	case *ast.WhileStmt:
		return prefix + "while (" + formatExpr(stmt.Cond) + ") " + formatBody(stmt.Body, depth)
	case *ast.FunctionStmt:
		params := make([]string, len(stmt.Decl.Params))
		for i, p := range stmt.Decl.Params {
			params[i] = p.Lexeme
		}
		return prefix + "fun " + stmt.Decl.Name.Lexeme + "(" + strings.Join(params, ", ") + ") " +
			formatBlock(stmt.Decl.Body, depth)
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Value) + ";"
	}
	return ""
}

// formatBody renders the statement after if/else/while on the same line
// as its keyword.
func formatBody(s ast.Stmt, depth int) string {
	if block, ok := s.(*ast.BlockStmt); ok {
		return formatBlock(block.Statements, depth)
	}
	return strings.TrimLeft(formatStmt(s, depth), " ")
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	prefix := strings.Repeat(indent, depth)
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + prefix + "}"
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Grouping:
		return "(" + formatExpr(expr.Expr) + ")"
	case *ast.Unary:
		return expr.Operator.Lexeme + formatExpr(expr.Right)
	case *ast.Binary:
		return formatExpr(expr.Left) + " " + expr.Operator.Lexeme + " " + formatExpr(expr.Right)
	case *ast.Logical:
		return formatExpr(expr.Left) + " " + expr.Operator.Lexeme + " " + formatExpr(expr.Right)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Assign:
		return expr.Name.Lexeme + " = " + formatExpr(expr.Value)
	case *ast.Call:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a)
		}
		return formatExpr(expr.Callee) + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}
