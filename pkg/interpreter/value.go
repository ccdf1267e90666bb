// Package interpreter implements the tree-walking runtime: values, the
// environment, callables and statement execution.
package interpreter

import (
	"strconv"
)

// Value is the interface for all runtime values.
// The sealed marker method restricts implementations to this package.
type Value interface {
	value() // sealed marker
}

// Nil represents the absence of a value.
type Nil struct{}

func (Nil) value() {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) value() {}

// Number represents a numeric value. All numbers are float64.
type Number struct {
	Value float64
}

func (Number) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// NewNil creates a nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// FromLiteral converts a parsed literal (nil, bool, float64 or string).
func FromLiteral(v any) Value {
	switch val := v.(type) {
	case bool:
		return NewBool(val)
	case float64:
		return NewNumber(val)
	case string:
		return NewString(val)
	}
	return NewNil()
}

// Truthy returns the boolean interpretation of a value.
// Only nil and false are falsy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return val.Value
	default:
		return true
	}
}

// Equal compares primitives by value and callables by identity.
// NaN is not equal to itself.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Callable:
		bv, ok := b.(Callable)
		return ok && av == bv
	}
	return false
}

// Display renders a value the way `print` shows it.
func Display(v Value) string {
	switch val := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(val.Value)
	case Number:
		return FormatNumber(val.Value)
	case String:
		return val.Value
	case Callable:
		return "<fn " + val.Name() + ">"
	}
	return "?"
}

// FormatNumber gives the shortest decimal form without an exponent, so
// whole numbers print without a fractional part.
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// TypeName returns the type name used in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Callable:
		return "function"
	default:
		return "unknown"
	}
}
