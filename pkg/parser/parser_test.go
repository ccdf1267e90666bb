package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/printer"
	"github.com/thomasrohde/lox/pkg/token"
)

// helper: parse source and assert no error
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseSource(source, "test.lox")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	return prog
}

// helper: parse source and assert a *parser.Error is returned
func mustFail(t *testing.T, source string) *parser.Error {
	t.Helper()
	prog, err := parser.ParseSource(source, "test.lox")
	if err == nil {
		t.Fatalf("expected parse error, got program %s", printer.Print(prog))
	}
	if prog != nil {
		t.Error("expected nil program alongside error")
	}
	var perr *parser.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %T: %v", err, err)
	}
	return perr
}

// helper: parse source and render it in parenthesized form
func sexpr(t *testing.T, source string) string {
	t.Helper()
	return printer.Print(mustParse(t, source))
}

// helper: extract the single expression statement's expression
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	es, ok := prog.Statements[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("expected ExpressionStmt, got %T", prog.Statements[0])
	}
	return es.Expr
}

// ---- 1. Expressions and precedence ----

func TestExpressionShapes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"1;", "(program (expr 1))"},
		{"2.5;", "(program (expr 2.5))"},
		{`"hi";`, `(program (expr "hi"))`},
		{"true; false; nil;", "(program (expr true) (expr false) (expr nil))"},
		{"1 + 2 * 3;", "(program (expr (+ 1 (* 2 3))))"},
		{"(1 + 2) * 3;", "(program (expr (* (group (+ 1 2)) 3)))"},
		{"1 - 2 - 3;", "(program (expr (- (- 1 2) 3)))"},
		{"8 / 4 / 2;", "(program (expr (/ (/ 8 4) 2)))"},
		{"-1 + 2;", "(program (expr (+ (- 1) 2)))"},
		{"!!true;", "(program (expr (! (! true))))"},
		{"- -x;", "(program (expr (- (- x))))"},
		{"1 < 2 == true;", "(program (expr (== (< 1 2) true)))"},
		{"a != b == c;", "(program (expr (== (!= a b) c)))"},
		{"1 >= 2 <= 3;", "(program (expr (<= (>= 1 2) 3)))"},
		{"a or b and c;", "(program (expr (or a (and b c))))"},
		{"a and b or c;", "(program (expr (or (and a b) c)))"},
		{"a or b or c;", "(program (expr (or (or a b) c)))"},
		{"a == b and c;", "(program (expr (and (== a b) c)))"},
		{"x = 1;", "(program (expr (assign x 1)))"},
		{"a = b = c;", "(program (expr (assign a (assign b c))))"},
		{"a = 1 + 2;", "(program (expr (assign a (+ 1 2))))"},
		{"f();", "(program (expr (call f)))"},
		{"f(1, 2);", "(program (expr (call f 1 2)))"},
		{"f(1)(2);", "(program (expr (call (call f 1) 2)))"},
		{"-f(1);", "(program (expr (- (call f 1))))"},
		{"f(a = 1);", "(program (expr (call f (assign a 1))))"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := sexpr(t, tt.source); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestLiteralValues(t *testing.T) {
	lit, ok := singleExpr(t, "42;").(*ast.Literal)
	if !ok {
		t.Fatal("expected *ast.Literal")
	}
	if lit.Value != 42.0 {
		t.Errorf("got %v, want 42", lit.Value)
	}

	str := singleExpr(t, `"x y";`).(*ast.Literal)
	if str.Value != "x y" {
		t.Errorf("got %v, want %q", str.Value, "x y")
	}

	null := singleExpr(t, "nil;").(*ast.Literal)
	if null.Value != nil {
		t.Errorf("got %v, want nil", null.Value)
	}
}

func TestAssignmentKeepsTargetToken(t *testing.T) {
	assign, ok := singleExpr(t, "answer = 42;").(*ast.Assign)
	if !ok {
		t.Fatal("expected *ast.Assign")
	}
	if assign.Name.Lexeme != "answer" || assign.Name.Type != token.Identifier {
		t.Errorf("unexpected target token %+v", assign.Name)
	}
}

func TestCallParenIsClosingParen(t *testing.T) {
	call := singleExpr(t, "f(1);").(*ast.Call)
	if call.Paren.Type != token.RightParen {
		t.Errorf("expected closing paren token, got %v", call.Paren.Type)
	}
}

// ---- 2. Statements ----

func TestStatementShapes(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print 1;", "(program (print 1))"},
		{"var a;", "(program (var a nil))"},
		{"var a = 1;", "(program (var a 1))"},
		{"{ var a = 1; print a; }", "(program (block (var a 1) (print a)))"},
		{"{}", "(program (block))"},
		{"if (a) print 1;", "(program (if a (print 1)))"},
		{"if (a) print 1; else print 2;", "(program (if a (print 1) (print 2)))"},
		{"if (a) if (b) print 1; else print 2;", "(program (if a (if b (print 1) (print 2))))"},
		{"while (x) x = x - 1;", "(program (while x (expr (assign x (- x 1)))))"},
		{"fun f() {}", "(program (fun f ()))"},
		{"fun add(a, b) { return a + b; }", "(program (fun add (a b) (return (+ a b))))"},
		{"fun f() { return; }", "(program (fun f () (return)))"},
		{"return 1;", "(program (return 1))"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := sexpr(t, tt.source); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestEmptyProgram(t *testing.T) {
	prog := mustParse(t, "")
	if len(prog.Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(prog.Statements))
	}
	prog = mustParse(t, "// only a comment\n")
	if len(prog.Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(prog.Statements))
	}
}

// ---- 3. For desugaring ----

func TestForDesugaring(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"(program (block (var i 0) (while (< i 3) (block (print i) (expr (assign i (+ i 1)))))))",
		},
		{
			"for (;;) print 1;",
			"(program (while true (print 1)))",
		},
		{
			"for (i = 0; i < 3;) print i;",
			"(program (block (expr (assign i 0)) (while (< i 3) (print i))))",
		},
		{
			"for (; x;) {}",
			"(program (while x (block)))",
		},
		{
			"for (;; x = x + 1) print x;",
			"(program (while true (block (print x) (expr (assign x (+ x 1))))))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := sexpr(t, tt.source); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestForSyntheticConditionHasUniqueID(t *testing.T) {
	prog := mustParse(t, "for (;;) print true;")
	loop := prog.Statements[0].(*ast.WhileStmt)
	cond := loop.Cond.(*ast.Literal)
	printed := loop.Body.(*ast.PrintStmt).Expr
	if cond.ID() == printed.ID() {
		t.Error("synthetic condition shares an ID with a source literal")
	}
}

// ---- 4. Errors ----

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source  string
		message string
		lexeme  string
	}{
		{"1 + ;", "Expect expression.", ";"},
		{"print 1", "Expect ';' after value.", ""},
		{"var 1 = 2;", "Expect variable name.", "1"},
		{"var a = 1", "Expect ';' after variable declaration.", ""},
		{"a + b = c;", "Invalid assignment target.", "="},
		{"(a) = 1;", "Invalid assignment target.", "="},
		{"f() = 1;", "Invalid assignment target.", "="},
		{"(1 + 2;", "Expect ')' after expression.", ";"},
		{"f(1, 2;", "Expect ')' after arguments.", ";"},
		{"{ print 1;", "Expect '}' after block.", ""},
		{"if a) print 1;", "Expect '(' after 'if'.", "a"},
		{"while (a print 1;", "Expect ')' after while condition.", "print"},
		{"for a;;) {}", "Expect '(' after 'for'.", "a"},
		{"for (;; a {}", "Expect ')' after for clauses.", "{"},
		{"fun (a) {}", "Expect function name.", "("},
		{"fun f a) {}", "Expect '(' after function name.", "a"},
		{"fun f(1) {}", "Expect parameter name.", "1"},
		{"fun f(a b) {}", "Expect ')' after parameters.", "b"},
		{"fun f() print 1;", "Expect '{' before function body.", "print"},
		{"return 1", "Expect ';' after return value.", ""},
		{"class A {}", "Expect expression.", "class"},
		{"this;", "Expect expression.", "this"},
		{"a.b;", "Expect ';' after expression.", "."},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			perr := mustFail(t, tt.source)
			if perr.Message != tt.message {
				t.Errorf("message: got %q, want %q", perr.Message, tt.message)
			}
			if tt.lexeme == "" {
				if !perr.AtEnd() {
					t.Errorf("expected error at end, got at %q", perr.Token.Lexeme)
				}
			} else if perr.Token.Lexeme != tt.lexeme {
				t.Errorf("token: got %q, want %q", perr.Token.Lexeme, tt.lexeme)
			}
		})
	}
}

func TestArgumentLimit(t *testing.T) {
	mustParse(t, "f(1, 2, 3, 4, 5, 6, 7, 8);")

	perr := mustFail(t, "f(1, 2, 3, 4, 5, 6, 7, 8, 9);")
	if perr.Message != "Cannot have more than 8 arguments." {
		t.Errorf("message: got %q", perr.Message)
	}
	if perr.Token.Lexeme != "9" {
		t.Errorf("expected error at the 9th argument, got %q", perr.Token.Lexeme)
	}
}

func TestParameterLimit(t *testing.T) {
	mustParse(t, "fun f(a, b, c, d, e, f, g, h) {}")

	perr := mustFail(t, "fun f(a, b, c, d, e, f, g, h, i) {}")
	if perr.Message != "Cannot have more than 8 parameters." {
		t.Errorf("message: got %q", perr.Message)
	}
	if perr.Token.Lexeme != "i" {
		t.Errorf("expected error at the 9th parameter, got %q", perr.Token.Lexeme)
	}
}

func TestFirstErrorOnly(t *testing.T) {
	perr := mustFail(t, "var = 1;\nprint ;\n")
	if perr.Message != "Expect variable name." {
		t.Errorf("expected the first error, got %q", perr.Message)
	}
	if perr.Token.Line() != 1 {
		t.Errorf("expected line 1, got %d", perr.Token.Line())
	}
}

func TestErrorFormatting(t *testing.T) {
	perr := mustFail(t, "var a = ;")
	if got := perr.Error(); got != "[line 1] Error at ';': Expect expression." {
		t.Errorf("got %q", got)
	}
	d := perr.Diag()
	if d.Code != diagnostics.EParse || d.Where != "at ';'" {
		t.Errorf("unexpected diagnostic %+v", d)
	}

	perr = mustFail(t, "print")
	if !strings.HasSuffix(perr.Error(), "Error at end: Expect expression.") {
		t.Errorf("got %q", perr.Error())
	}
}

func TestLexErrorPassesThrough(t *testing.T) {
	_, err := parser.ParseSource(`print "open;`, "test.lox")
	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T", err)
	}
}

func TestParseWithoutEOF(t *testing.T) {
	tokens, err := lexer.Tokenize("print 1;", "test.lox")
	if err != nil {
		t.Fatal(err)
	}
	prog, err := parser.Parse(tokens[:len(tokens)-1])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Errorf("expected 1 statement, got %d", len(prog.Statements))
	}
}
