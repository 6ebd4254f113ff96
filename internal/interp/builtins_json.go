package interp

import (
	"fmt"

	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/pkg/token"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// registerJSONNatives seeds the __native__ registry with a small JSON
// round-trip surface, gated by the same SecurityPolicy.AllowNative check as
// every other native binding. It backs the case where a JsonObject/JsonArray
// literal's source text arrives at runtime rather than through the parser's
// own recursive-descent literal parsing (docstrings, values read back out of
// a __native__ payload) and needs re-decoding.
func registerJSONNatives(i *Interpreter) {
	i.NativeRegistry["json.parse"] = nativeJSONParse
	i.NativeRegistry["json.get"] = nativeJSONGet
	i.NativeRegistry["json.set"] = nativeJSONSet
}

func nativeJSONParse(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("json.parse expects exactly one argument")
	}
	raw, ok := args[0].(String)
	if !ok {
		return nil, fmt.Errorf("json.parse argument must be a string")
	}
	if !gjson.Valid(string(raw)) {
		return nil, corperr.New(corperr.TypeError, token.Position{}, "", "json.parse: not valid JSON")
	}
	return decodeJSONValue(gjson.Parse(string(raw))), nil
}

func nativeJSONGet(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("json.get expects (json, path)")
	}
	raw, ok := args[0].(String)
	if !ok {
		return nil, fmt.Errorf("json.get: first argument must be a string")
	}
	path, ok := args[1].(String)
	if !ok {
		return nil, fmt.Errorf("json.get: second argument must be a string")
	}
	result := gjson.Get(string(raw), string(path))
	if !result.Exists() {
		return NullValue, nil
	}
	return decodeJSONValue(result), nil
}

func nativeJSONSet(i *Interpreter, args []Value) (Value, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("json.set expects (json, path, value)")
	}
	raw, ok := args[0].(String)
	if !ok {
		return nil, fmt.Errorf("json.set: first argument must be a string")
	}
	path, ok := args[1].(String)
	if !ok {
		return nil, fmt.Errorf("json.set: second argument must be a string")
	}
	out, err := sjson.Set(string(raw), string(path), encodeJSONValue(args[2]))
	if err != nil {
		return nil, corperr.New(corperr.RuntimeError, token.Position{}, "", fmt.Sprintf("json.set: %v", err))
	}
	return String(out), nil
}

// decodeJSONValue walks a gjson.Result into the interpreter's own Value
// hierarchy, matching the types the parser's JsonObject/JsonArray evaluation
// produces (Map, List, Int, Float, String, Bool, Null).
func decodeJSONValue(r gjson.Result) Value {
	switch r.Type {
	case gjson.Null:
		return NullValue
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		if r.Num == float64(int64(r.Num)) {
			return Int(int64(r.Num))
		}
		return Float(r.Num)
	case gjson.String:
		return String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			elems := []Value{}
			r.ForEach(func(_, v gjson.Result) bool {
				elems = append(elems, decodeJSONValue(v))
				return true
			})
			return NewList(elems)
		}
		m := NewMap()
		r.ForEach(func(k, v gjson.Result) bool {
			m.Set(k.String(), decodeJSONValue(v))
			return true
		})
		return m
	default:
		return NullValue
	}
}

// encodeJSONValue renders a Value as a Go value sjson.Set can marshal back
// into JSON text (its raw-string fallback handles anything unrecognized).
func encodeJSONValue(v Value) interface{} {
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case *List:
		out := make([]interface{}, len(val.Elements))
		for idx, e := range val.Elements {
			out[idx] = encodeJSONValue(e)
		}
		return out
	case *Map:
		out := make(map[string]interface{}, val.Len())
		for _, k := range val.Keys() {
			e, _ := val.Get(k)
			out[k] = encodeJSONValue(e)
		}
		return out
	default:
		return v.String()
	}
}
