package interpreter

import (
	"fmt"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// Frame is one scope's bindings. Frames are shared by pointer between the
// active environment and every closure captured while it was active.
type Frame struct {
	bindings map[string]Value
}

func newFrame() *Frame {
	return &Frame{bindings: make(map[string]Value)}
}

// Lookup returns the binding for name in this frame only.
func (f *Frame) Lookup(name string) (Value, bool) {
	v, ok := f.bindings[name]
	return v, ok
}

// Len returns the number of bindings in the frame.
func (f *Frame) Len() int {
	return len(f.bindings)
}

// Environment is a stack of frames, innermost last. The first frame is
// always the global frame.
type Environment struct {
	frames []*Frame
}

// NewEnvironment creates an environment holding only a global frame.
func NewEnvironment() *Environment {
	return &Environment{frames: []*Frame{newFrame()}}
}

// Push adds a new innermost frame.
func (e *Environment) Push() {
	e.frames = append(e.frames, newFrame())
}

// Pop removes the innermost frame. The global frame is never removed.
func (e *Environment) Pop() {
	if len(e.frames) > 1 {
		e.frames[len(e.frames)-1] = nil
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Depth returns the number of frames, the global frame included.
func (e *Environment) Depth() int {
	return len(e.frames)
}

// Global returns the outermost frame.
func (e *Environment) Global() *Frame {
	return e.frames[0]
}

// Clone returns an environment with its own frame stack that shares every
// frame with e. Pushes and pops on either side do not affect the other,
// but bindings written into a shared frame are visible to both.
func (e *Environment) Clone() *Environment {
	frames := make([]*Frame, len(e.frames))
	copy(frames, e.frames)
	return &Environment{frames: frames}
}

// Define binds name in the innermost frame, shadowing any outer binding.
func (e *Environment) Define(name string, val Value) {
	e.frames[len(e.frames)-1].bindings[name] = val
}

// GlobalDepth returns the depth at which GetAt and AssignAt reach the
// global frame.
func (e *Environment) GlobalDepth() int {
	return len(e.frames) - 1
}

// ancestor returns the frame depth steps out from the innermost one.
func (e *Environment) ancestor(depth int) (*Frame, bool) {
	if depth < 0 || depth > e.GlobalDepth() {
		return nil, false
	}
	return e.frames[len(e.frames)-1-depth], true
}

// GetAt reads name from exactly the frame depth steps out.
func (e *Environment) GetAt(depth int, name token.Token) (Value, error) {
	f, ok := e.ancestor(depth)
	if !ok {
		return nil, scopeMismatch(depth, name)
	}
	v, ok := f.bindings[name.Lexeme]
	if !ok {
		return nil, undefined(name)
	}
	return v, nil
}

// AssignAt writes name into exactly the frame depth steps out.
func (e *Environment) AssignAt(depth int, name token.Token, val Value) error {
	f, ok := e.ancestor(depth)
	if !ok {
		return scopeMismatch(depth, name)
	}
	if _, ok := f.bindings[name.Lexeme]; !ok {
		return undefined(name)
	}
	f.bindings[name.Lexeme] = val
	return nil
}

func undefined(name token.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.EUndefined,
		Token:   name,
		Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
	}
}

func scopeMismatch(depth int, name token.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.ERuntime,
		Token:   name,
		Message: fmt.Sprintf("No scope %d levels out for '%s'.", depth, name.Lexeme),
	}
}
