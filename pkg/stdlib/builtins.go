package stdlib

import (
	"time"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

// now is replaced in tests.
var now = time.Now

// RegisterDefaults adds all built-in natives.
func RegisterDefaults(r *Registry) {
	r.Register(interpreter.NewNative("clock", 0, nativeClock))
	r.Register(interpreter.NewNative("typeof", 1, nativeTypeof))

	// String ops
	r.Register(interpreter.NewNative("str", 1, nativeStr))
	r.Register(interpreter.NewNative("len", 1, nativeLen))

	// Math
	r.Register(interpreter.NewNative("max", 2, nativeMax))
	r.Register(interpreter.NewNative("min", 2, nativeMin))
}

// Defaults returns a registry holding the built-in natives.
func Defaults() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// clock() → seconds since the Unix epoch, with sub-second precision
func nativeClock(_ []interpreter.Value) (interpreter.Value, error) {
	t := now()
	return interpreter.NewNumber(float64(t.UnixNano()) / float64(time.Second)), nil
}

// typeof(v) → "nil" | "boolean" | "number" | "string" | "function"
func nativeTypeof(args []interpreter.Value) (interpreter.Value, error) {
	return interpreter.NewString(interpreter.TypeName(args[0])), nil
}
