package stdlib

import (
	"fmt"
	"math"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

// max(a, b) → the larger number
func nativeMax(args []interpreter.Value) (interpreter.Value, error) {
	a, b, err := twoNumbers("max", args)
	if err != nil {
		return nil, err
	}
	return interpreter.NewNumber(math.Max(a, b)), nil
}

// min(a, b) → the smaller number
func nativeMin(args []interpreter.Value) (interpreter.Value, error) {
	a, b, err := twoNumbers("min", args)
	if err != nil {
		return nil, err
	}
	return interpreter.NewNumber(math.Min(a, b)), nil
}

func twoNumbers(name string, args []interpreter.Value) (float64, float64, error) {
	a, aOk := args[0].(interpreter.Number)
	b, bOk := args[1].(interpreter.Number)
	if !aOk || !bOk {
		return 0, 0, fmt.Errorf("%s: arguments must be numbers, got %s and %s.",
			name, interpreter.TypeName(args[0]), interpreter.TypeName(args[1]))
	}
	return a.Value, b.Value, nil
}
