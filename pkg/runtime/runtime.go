// Package runtime wires the lexer, parser, resolver and interpreter into a
// single pipeline.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/interpreter"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/printer"
	"github.com/thomasrohde/lox/pkg/resolver"
	"github.com/thomasrohde/lox/pkg/stdlib"
)

// Runtime owns one interpreter, so successive Run calls share globals.
type Runtime struct {
	natives      *stdlib.Registry
	config       *config.Config
	out          io.Writer
	runID        string
	trace        func(event interpreter.TraceEvent)
	maxCallDepth int
	timeout      time.Duration

	in     *interpreter.Interpreter
	chunks int
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the native function registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.natives = r
	}
}

// WithConfig sets the configuration. Explicit options such as
// WithMaxCallDepth take precedence over it.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		rt.config = cfg
	}
}

// WithOutput sets the writer `print` writes to.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event interpreter.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithMaxCallDepth overrides the configured call depth limit.
func WithMaxCallDepth(n int) Option {
	return func(rt *Runtime) {
		rt.maxCallDepth = n
	}
}

// WithTimeout overrides the configured time budget per Run.
func WithTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		rt.timeout = d
	}
}

// New creates a new Runtime with the given options.
// By default the built-in natives are installed, subject to the config's
// allow and deny lists.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		natives: stdlib.Defaults(),
		config:  config.Default(),
		out:     os.Stdout,
		runID:   "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}

	depth := rt.config.MaxCallDepth
	if rt.maxCallDepth > 0 {
		depth = rt.maxCallDepth
	}
	timeout := rt.config.Timeout
	if rt.timeout > 0 {
		timeout = rt.timeout
	}

	iopts := []interpreter.Option{
		interpreter.WithOutput(rt.out),
		interpreter.WithNatives(rt.natives.Select(rt.config.Natives.Allow, rt.config.Natives.Deny)...),
		interpreter.WithMaxCallDepth(depth),
		interpreter.WithTimeout(timeout),
		interpreter.WithRunID(rt.runID),
	}
	if rt.trace != nil {
		iopts = append(iopts, interpreter.WithTrace(rt.trace))
	}
	rt.in = interpreter.New(iopts...)
	return rt
}

// Interpreter returns the interpreter backing this runtime.
func (rt *Runtime) Interpreter() *interpreter.Interpreter {
	return rt.in
}

// Run lexes, parses, resolves and executes a program. Static errors are
// returned as *DiagnosticError and nothing runs; execution errors are
// returned as *interpreter.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	program, err := rt.compile(source, filename, rt.in)
	if err != nil {
		return err
	}
	return rt.in.Interpret(ctx, program)
}

// Eval runs one interactive input. Each input gets its own file name so
// that diagnostics say which input they came from.
func (rt *Runtime) Eval(ctx context.Context, source string) error {
	rt.chunks++
	return rt.Run(ctx, source, ChunkName(rt.chunks))
}

// ChunkName is the file name given to the n-th interactive input.
func ChunkName(n int) string {
	return fmt.Sprintf("<repl:%d>", n)
}

// Check lexes, parses and resolves a program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	_, err := rt.compile(source, filename, discard{})
	var derr *DiagnosticError
	if errors.As(err, &derr) {
		return derr.Diagnostics
	}
	return nil
}

// Dump parses a program and renders its syntax tree.
func (rt *Runtime) Dump(source, filename string) (string, error) {
	program, err := parse(source, filename)
	if err != nil {
		return "", err
	}
	return printer.Print(program), nil
}

// Format parses a program and re-emits it in canonical layout.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, err := parse(source, filename)
	if err != nil {
		return "", err
	}
	return printer.Format(program), nil
}

// Incomplete reports whether source fails only because more input is
// needed, e.g. an open block or an unterminated string.
func Incomplete(source string) bool {
	_, err := parser.ParseSource(source, "<probe>")
	if err == nil {
		return false
	}
	var lerr *lexer.Error
	if errors.As(err, &lerr) {
		return lerr.Message == lexer.MsgUnterminatedString
	}
	var perr *parser.Error
	return errors.As(err, &perr) && perr.AtEnd()
}

func parse(source, filename string) (*ast.Program, error) {
	program, err := parser.ParseSource(source, filename)
	if err != nil {
		return nil, newDiagnosticError(err)
	}
	return program, nil
}

func (rt *Runtime) compile(source, filename string, locals resolver.Locals) (*ast.Program, error) {
	program, err := parse(source, filename)
	if err != nil {
		return nil, err
	}
	if err := resolver.Resolve(program, locals); err != nil {
		return nil, newDiagnosticError(err)
	}
	return program, nil
}

// discard records nothing; Check resolves for errors only.
type discard struct{}

func (discard) Resolve(ast.ID, int) {}

// DiagnosticError wraps a static (lex, parse or resolve) error together
// with its diagnostics.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
	Err         error
}

func newDiagnosticError(err error) *DiagnosticError {
	derr := &DiagnosticError{Err: err}
	var d diagnostics.Diagnoser
	if errors.As(err, &d) {
		derr.Diagnostics = []diagnostics.Diagnostic{d.Diag()}
	}
	return derr
}

func (e *DiagnosticError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *DiagnosticError) Unwrap() error {
	return e.Err
}
