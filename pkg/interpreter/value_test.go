package interpreter_test

import (
	"math"
	"testing"

	"github.com/thomasrohde/lox/pkg/interpreter"
)

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    interpreter.Value
		expected bool
	}{
		{interpreter.NewNil(), false},
		{interpreter.NewBool(false), false},
		{interpreter.NewBool(true), true},
		{interpreter.NewNumber(0), true},
		{interpreter.NewNumber(-1), true},
		{interpreter.NewString(""), true},
		{interpreter.NewString("hello"), true},
		{interpreter.NewNative("f", 0, nil), true},
	}

	for i, tt := range tests {
		got := interpreter.Truthy(tt.value)
		if got != tt.expected {
			t.Errorf("test %d: Truthy(%v) = %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	f := interpreter.NewNative("f", 0, nil)
	g := interpreter.NewNative("f", 0, nil)

	tests := []struct {
		name string
		a, b interpreter.Value
		want bool
	}{
		{"nil nil", interpreter.NewNil(), interpreter.NewNil(), true},
		{"nil false", interpreter.NewNil(), interpreter.NewBool(false), false},
		{"bools", interpreter.NewBool(true), interpreter.NewBool(true), true},
		{"numbers", interpreter.NewNumber(1), interpreter.NewNumber(1), true},
		{"different numbers", interpreter.NewNumber(1), interpreter.NewNumber(2), false},
		{"NaN", interpreter.NewNumber(math.NaN()), interpreter.NewNumber(math.NaN()), false},
		{"strings", interpreter.NewString("a"), interpreter.NewString("a"), true},
		{"number vs string", interpreter.NewNumber(1), interpreter.NewString("1"), false},
		{"zero vs false", interpreter.NewNumber(0), interpreter.NewBool(false), false},
		{"same function", f, f, true},
		{"twin functions", f, g, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interpreter.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		value interpreter.Value
		want  string
	}{
		{interpreter.NewNil(), "nil"},
		{interpreter.NewBool(true), "true"},
		{interpreter.NewBool(false), "false"},
		{interpreter.NewNumber(3), "3"},
		{interpreter.NewNumber(2.5), "2.5"},
		{interpreter.NewNumber(0.1), "0.1"},
		{interpreter.NewNumber(-7), "-7"},
		{interpreter.NewNumber(1e21), "1000000000000000000000"},
		{interpreter.NewString("raw \"text\""), "raw \"text\""},
		{interpreter.NewNative("clock", 0, nil), "<fn clock>"},
	}

	for _, tt := range tests {
		if got := interpreter.Display(tt.value); got != tt.want {
			t.Errorf("Display(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		value interpreter.Value
		want  string
	}{
		{interpreter.NewNil(), "nil"},
		{interpreter.NewBool(true), "boolean"},
		{interpreter.NewNumber(1), "number"},
		{interpreter.NewString("s"), "string"},
		{interpreter.NewNative("f", 0, nil), "function"},
	}
	for _, tt := range tests {
		if got := interpreter.TypeName(tt.value); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	if _, ok := interpreter.FromLiteral(nil).(interpreter.Nil); !ok {
		t.Error("nil literal should become Nil")
	}
	if v := interpreter.FromLiteral(2.0).(interpreter.Number); v.Value != 2 {
		t.Errorf("got %v", v)
	}
	if v := interpreter.FromLiteral("s").(interpreter.String); v.Value != "s" {
		t.Errorf("got %v", v)
	}
	if v := interpreter.FromLiteral(true).(interpreter.Bool); !v.Value {
		t.Errorf("got %v", v)
	}
}

func TestValueToJSON(t *testing.T) {
	tests := []struct {
		value interpreter.Value
		want  string
	}{
		{interpreter.NewNil(), "null"},
		{interpreter.NewBool(true), "true"},
		{interpreter.NewNumber(42), "42"},
		{interpreter.NewNumber(2.5), "2.5"},
		{interpreter.NewNumber(math.Inf(1)), `"+Inf"`},
		{interpreter.NewString("hi"), `"hi"`},
		{interpreter.NewNative("clock", 0, nil), `"<fn clock>"`},
	}
	for _, tt := range tests {
		if got := interpreter.ValueToJSONString(tt.value); got != tt.want {
			t.Errorf("ValueToJSONString(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
