package interpreter

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a value to JSON bytes. Whole numbers are written
// without a decimal point and functions as their display form.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case nil, Nil:
		return nil
	case Bool:
		return val.Value
	case Number:
		// encoding/json rejects NaN and infinities
		if math.IsInf(val.Value, 0) || math.IsNaN(val.Value) {
			return FormatNumber(val.Value)
		}
		if val.Value == math.Trunc(val.Value) && math.Abs(val.Value) < 1<<53 {
			return int64(val.Value)
		}
		return val.Value
	case String:
		return val.Value
	case Callable:
		return Display(val)
	}
	return nil
}
