package interpreter

import (
	"github.com/thomasrohde/lox/pkg/ast"
)

// Callable is a value that can be invoked with `callee(args)`. The
// interpreter checks arity and call depth before calling Call.
type Callable interface {
	Value
	Arity() int
	Name() string
	Call(in *Interpreter, args []Value) (Value, error)
}

// NativeFn is a function implemented in Go.
type NativeFn struct {
	name  string
	arity int
	fn    func(args []Value) (Value, error)
}

// NewNative creates a native function. fn receives exactly arity arguments.
func NewNative(name string, arity int, fn func(args []Value) (Value, error)) *NativeFn {
	return &NativeFn{name: name, arity: arity, fn: fn}
}

func (*NativeFn) value() {}

func (n *NativeFn) Arity() int   { return n.arity }
func (n *NativeFn) Name() string { return n.name }

func (n *NativeFn) Call(_ *Interpreter, args []Value) (Value, error) {
	return n.fn(args)
}

// Function is a user-defined function together with the environment that
// was active when its declaration executed.
type Function struct {
	decl    *ast.FunctionDecl
	closure *Environment
}

func (*Function) value() {}

func (f *Function) Arity() int   { return len(f.decl.Params) }
func (f *Function) Name() string { return f.decl.Name.Lexeme }

// Call runs the body in one fresh frame on top of the captured environment.
// The frame holds the parameters and the body's top-level declarations.
// The caller's environment is restored on every exit path.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	previous := in.env
	in.env = f.closure.Clone()
	in.env.Push()
	defer func() { in.env = previous }()

	for i, param := range f.decl.Params {
		in.env.Define(param.Lexeme, args[i])
	}

	for _, stmt := range f.decl.Body {
		ret, err := in.execute(stmt)
		if err != nil {
			return nil, err
		}
		if ret != nil {
			return ret.value, nil
		}
	}
	return NewNil(), nil
}
