package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart    TraceEventType = "run_start"
	TraceRunEnd      TraceEventType = "run_end"
	TraceStmtStart   TraceEventType = "stmt_start"
	TraceStmtEnd     TraceEventType = "stmt_end"
	TraceFnCallStart TraceEventType = "fn_call_start"
	TraceFnCallEnd   TraceEventType = "fn_call_end"
	TraceError       TraceEventType = "error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string         `json:"ts"`
	RunID     string         `json:"runId"`
	Event     TraceEventType `json:"event"`
	Pos       *token.Pos     `json:"pos,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// RuntimeError is an error raised while executing a program.
type RuntimeError struct {
	Code    string
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] Runtime error: %s", e.Token.Line(), e.Message)
}

// Diag converts the error to a diagnostic.
func (e *RuntimeError) Diag() diagnostics.Diagnostic {
	if e.Token.Lexeme != "" {
		return diagnostics.AtToken(e.Code, e.Message, e.Token)
	}
	pos := e.Token.Pos
	return diagnostics.MakeDiag(e.Code, e.Message, &pos, "")
}

// returnSignal carries a `return` value up to the enclosing call.
type returnSignal struct {
	value Value
}

// Interpreter executes resolved programs. It is not safe for concurrent
// use. Globals persist across Interpret calls.
type Interpreter struct {
	out     io.Writer
	env     *Environment
	globals *Frame
	locals  map[ast.ID]int
	budget  Budget
	tracker BudgetTracker
	ctx     context.Context
	trace   func(event TraceEvent)
	runID   string
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithOutput sets the writer `print` writes to. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

// WithNatives binds native functions in the global frame.
func WithNatives(natives ...*NativeFn) Option {
	return func(in *Interpreter) {
		for _, n := range natives {
			in.globals.bindings[n.Name()] = n
		}
	}
}

// WithMaxCallDepth sets the maximum number of nested calls.
func WithMaxCallDepth(n int) Option {
	return func(in *Interpreter) {
		in.budget.MaxCallDepth = n
	}
}

// WithTimeout limits the wall-clock time of each Interpret call.
func WithTimeout(d time.Duration) Option {
	return func(in *Interpreter) {
		in.budget.Timeout = d
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(in *Interpreter) {
		in.trace = fn
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(in *Interpreter) {
		in.runID = id
	}
}

// New creates an interpreter with an empty global frame.
func New(opts ...Option) *Interpreter {
	env := NewEnvironment()
	in := &Interpreter{
		out:     os.Stdout,
		env:     env,
		globals: env.Global(),
		locals:  make(map[ast.ID]int),
		ctx:     context.Background(),
		runID:   "cli",
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Resolve records the scope depth of a variable reference.
func (in *Interpreter) Resolve(id ast.ID, depth int) {
	in.locals[id] = depth
}

// Global returns the value bound to name in the global frame.
func (in *Interpreter) Global(name string) (Value, bool) {
	return in.globals.Lookup(name)
}

// Depth returns the current number of environment frames.
func (in *Interpreter) Depth() int {
	return in.env.Depth()
}

// Stats returns the resource counters accumulated so far.
func (in *Interpreter) Stats() BudgetTracker {
	return in.tracker
}

func (in *Interpreter) emit(event TraceEventType, pos *token.Pos, data map[string]any) {
	if in.trace != nil {
		in.trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     in.runID,
			Event:     event,
			Pos:       pos,
			Data:      data,
		})
	}
}

// Interpret executes program statement by statement. The first error
// aborts the run and is returned as a *RuntimeError.
func (in *Interpreter) Interpret(ctx context.Context, program *ast.Program) error {
	if in.budget.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, in.budget.Timeout)
		defer cancel()
	}
	in.ctx = ctx
	in.tracker.CallDepth = 0

	pos := program.Pos()
	in.emit(TraceRunStart, &pos, nil)

	for _, stmt := range program.Statements {
		ret, err := in.execute(stmt)
		if err != nil {
			rerr := asRuntimeError(err, token.Token{Pos: stmt.Pos()})
			errPos := rerr.Token.Pos
			in.emit(TraceError, &errPos, map[string]any{"code": rerr.Code, "message": rerr.Message})
			in.emit(TraceRunEnd, &pos, map[string]any{"ok": false})
			return rerr
		}
		if ret != nil {
			// Only reachable for programs that skipped resolution.
			break
		}
	}

	in.emit(TraceRunEnd, &pos, map[string]any{"ok": true})
	return nil
}

func asRuntimeError(err error, at token.Token) *RuntimeError {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr
	}
	return &RuntimeError{Code: diagnostics.ERuntime, Token: at, Message: err.Error()}
}

func (in *Interpreter) checkBudget(stmt ast.Stmt) error {
	err := in.ctx.Err()
	if err == nil {
		return nil
	}
	msg := "Execution canceled."
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("Time budget exceeded (%s).", in.budget.Timeout)
	}
	return &RuntimeError{
		Code:    diagnostics.EBudget,
		Token:   token.Token{Pos: stmt.Pos()},
		Message: msg,
	}
}

// --- Statements ---

func (in *Interpreter) execute(stmt ast.Stmt) (*returnSignal, error) {
	if err := in.checkBudget(stmt); err != nil {
		return nil, err
	}
	in.tracker.Statements++

	if in.trace != nil {
		pos := stmt.Pos()
		in.emit(TraceStmtStart, &pos, map[string]any{"kind": stmt.Kind()})
		defer in.emit(TraceStmtEnd, &pos, nil)
	}

	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		_, err := in.evaluate(s.Expr)
		return nil, err

	case *ast.PrintStmt:
		val, err := in.evaluate(s.Expr)
		if err != nil {
			return nil, err
		}
		if _, err := fmt.Fprintln(in.out, Display(val)); err != nil {
			return nil, &RuntimeError{Code: diagnostics.EIO, Token: s.Keyword, Message: fmt.Sprintf("Cannot write output: %v.", err)}
		}
		return nil, nil

	case *ast.VarStmt:
		val := NewNil()
		if s.Init != nil {
			v, err := in.evaluate(s.Init)
			if err != nil {
				return nil, err
			}
			val = v
		}
		in.env.Define(s.Name.Lexeme, val)
		return nil, nil

	case *ast.BlockStmt:
		return in.executeBlock(s.Statements)

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil, nil

	case *ast.WhileStmt:
		for {
			cond, err := in.evaluate(s.Cond)
			if err != nil {
				return nil, err
			}
			if !Truthy(cond) {
				return nil, nil
			}
			ret, err := in.execute(s.Body)
			if err != nil || ret != nil {
				return ret, err
			}
		}

	case *ast.FunctionStmt:
		fn := &Function{decl: s.Decl, closure: in.env.Clone()}
		in.env.Define(s.Decl.Name.Lexeme, fn)
		return nil, nil

	case *ast.ReturnStmt:
		val := NewNil()
		if s.Value != nil {
			v, err := in.evaluate(s.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &returnSignal{value: val}, nil
	}

	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Token:   token.Token{Pos: stmt.Pos()},
		Message: fmt.Sprintf("Unsupported statement %s.", stmt.Kind()),
	}
}

// executeBlock runs stmts in a new frame that is popped on every exit path.
func (in *Interpreter) executeBlock(stmts []ast.Stmt) (*returnSignal, error) {
	env := in.env
	env.Push()
	defer env.Pop()

	for _, stmt := range stmts {
		ret, err := in.execute(stmt)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

// --- Expressions ---

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evaluate(e.Expr)

	case *ast.Unary:
		return in.evalUnary(e)

	case *ast.Binary:
		return in.evalBinary(e)

	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == token.Or {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.Variable:
		return in.lookUp(e.Name, e.ID())

	case *ast.Assign:
		val, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := in.assign(e.Name, e.ID(), val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.Call:
		callee, err := in.evaluate(e.Callee)
		if err != nil {
			return nil, err
		}
		args := make([]Value, 0, len(e.Args))
		for _, arg := range e.Args {
			v, err := in.evaluate(arg)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		return in.call(callee, e.Paren, args)
	}

	return nil, &RuntimeError{
		Code:    diagnostics.ERuntime,
		Token:   token.Token{Pos: expr.Pos()},
		Message: fmt.Sprintf("Unsupported expression %s.", expr.Kind()),
	}
}

// lookUp reads a variable from the frame the resolver placed it in, or from
// the global frame when the resolver left it unresolved.
func (in *Interpreter) lookUp(name token.Token, id ast.ID) (Value, error) {
	depth, ok := in.locals[id]
	if !ok {
		depth = in.env.GlobalDepth()
	}
	return in.env.GetAt(depth, name)
}

func (in *Interpreter) assign(name token.Token, id ast.ID, val Value) error {
	depth, ok := in.locals[id]
	if !ok {
		depth = in.env.GlobalDepth()
	}
	return in.env.AssignAt(depth, name, val)
}

func (in *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}
	switch e.Operator.Type {
	case token.Bang:
		return NewBool(!Truthy(right)), nil
	case token.Minus:
		if num, ok := right.(Number); ok {
			return NewNumber(-num.Value), nil
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Token:   e.Operator,
			Message: fmt.Sprintf("Operator '-' requires a number, got %s.", TypeName(right)),
		}
	}
	return nil, &RuntimeError{Code: diagnostics.ERuntime, Token: e.Operator, Message: "Unknown unary operator."}
}

func (in *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.EqualEqual:
		return NewBool(Equal(left, right)), nil
	case token.BangEqual:
		return NewBool(!Equal(left, right)), nil
	case token.Plus:
		// Number + Number or String + String
		if lNum, ok := left.(Number); ok {
			if rNum, ok := right.(Number); ok {
				return NewNumber(lNum.Value + rNum.Value), nil
			}
		}
		if lStr, ok := left.(String); ok {
			if rStr, ok := right.(String); ok {
				return NewString(lStr.Value + rStr.Value), nil
			}
		}
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Token:   e.Operator,
			Message: fmt.Sprintf("Operator '+' requires two numbers or two strings, got %s and %s.", TypeName(left), TypeName(right)),
		}
	}

	lNum, lOk := left.(Number)
	rNum, rOk := right.(Number)
	if !lOk || !rOk {
		return nil, &RuntimeError{
			Code:    diagnostics.EType,
			Token:   e.Operator,
			Message: fmt.Sprintf("Operator '%s' requires two numbers, got %s and %s.", e.Operator.Lexeme, TypeName(left), TypeName(right)),
		}
	}

	switch e.Operator.Type {
	case token.Minus:
		return NewNumber(lNum.Value - rNum.Value), nil
	case token.Star:
		return NewNumber(lNum.Value * rNum.Value), nil
	case token.Slash:
		// IEEE 754: division by zero yields an infinity or NaN.
		return NewNumber(lNum.Value / rNum.Value), nil
	case token.Greater:
		return NewBool(lNum.Value > rNum.Value), nil
	case token.GreaterEqual:
		return NewBool(lNum.Value >= rNum.Value), nil
	case token.Less:
		return NewBool(lNum.Value < rNum.Value), nil
	case token.LessEqual:
		return NewBool(lNum.Value <= rNum.Value), nil
	}
	return nil, &RuntimeError{Code: diagnostics.ERuntime, Token: e.Operator, Message: "Unknown binary operator."}
}

// call checks the callee, its arity and the call depth, then dispatches.
func (in *Interpreter) call(callee Value, paren token.Token, args []Value) (Value, error) {
	fn, ok := callee.(Callable)
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.ENotCallable,
			Token:   paren,
			Message: fmt.Sprintf("Can only call functions, got %s.", TypeName(callee)),
		}
	}
	if len(args) != fn.Arity() {
		return nil, &RuntimeError{
			Code:    diagnostics.EArity,
			Token:   paren,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
		}
	}
	if in.tracker.CallDepth >= in.budget.maxCallDepth() {
		return nil, &RuntimeError{
			Code:    diagnostics.EStackOverflow,
			Token:   paren,
			Message: "Stack overflow.",
		}
	}

	in.tracker.CallDepth++
	in.tracker.Calls++
	defer func() { in.tracker.CallDepth-- }()

	pos := paren.Pos
	in.emit(TraceFnCallStart, &pos, map[string]any{"fn": fn.Name(), "args": len(args)})
	result, err := fn.Call(in, args)
	if err != nil {
		in.emit(TraceFnCallEnd, &pos, map[string]any{"fn": fn.Name(), "ok": false})
		return nil, asRuntimeError(err, paren)
	}
	in.emit(TraceFnCallEnd, &pos, map[string]any{"fn": fn.Name(), "ok": true, "result": valueToRaw(result)})
	return result, nil
}
