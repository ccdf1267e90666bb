package stdlib

import (
	"fmt"
	"unicode/utf8"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

// str(v) → display form of v, as `print` would write it
func nativeStr(args []interpreter.Value) (interpreter.Value, error) {
	return interpreter.NewString(interpreter.Display(args[0])), nil
}

// len(s) → number of characters in s
func nativeLen(args []interpreter.Value) (interpreter.Value, error) {
	s, ok := args[0].(interpreter.String)
	if !ok {
		return nil, fmt.Errorf("len: argument must be a string, got %s.", interpreter.TypeName(args[0]))
	}
	return interpreter.NewNumber(float64(utf8.RuneCountInString(s.Value))), nil
}
