package evaluator

import (
	"encoding/json"
	"sort"
)

// valueToGo converts a lazylang Value to a plain Go value suitable for
// json.Marshal / yaml.Marshal, forcing thunks as it walks. Grounded on the
// teacher's objectToGo (pkg/parsley/evaluator/eval_encoders.go), rewritten
// against this evaluator's Value/Thunk model instead of eagerly-evaluated
// Dictionary/Array.
func valueToGo(v Value) (interface{}, error) {
	switch val := v.(type) {
	case Null:
		return nil, nil
	case Boolean:
		return val.Value, nil
	case Integer:
		return val.Value, nil
	case Float:
		return val.Value, nil
	case String:
		return val.Value, nil
	case Symbol:
		return "#" + val.Name, nil
	case Array:
		out := make([]interface{}, len(val.Elements))
		for i, t := range val.Elements {
			ev, ferr := t.Force()
			if ferr != nil {
				return nil, ferr
			}
			g, err := valueToGo(ev)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case Tuple:
		out := make([]interface{}, len(val.Elements))
		for i, t := range val.Elements {
			ev, ferr := t.Force()
			if ferr != nil {
				return nil, ferr
			}
			g, err := valueToGo(ev)
			if err != nil {
				return nil, err
			}
			out[i] = g
		}
		return out, nil
	case *Object:
		out := make(map[string]interface{}, len(val.Fields))
		for _, f := range val.Fields {
			ev, ferr := f.Value.Force()
			if ferr != nil {
				return nil, ferr
			}
			g, err := valueToGo(ev)
			if err != nil {
				return nil, err
			}
			out[f.Key] = g
		}
		return out, nil
	default:
		return val.Inspect(), nil
	}
}

// goToValue converts a decoded JSON/YAML Go value (the shapes produced by
// encoding/json and gopkg.in/yaml.v3: nil, bool, float64/int, string,
// []interface{}, map[string]interface{} or map[interface{}]interface{})
// into a lazylang Value.
func goToValue(g interface{}) Value {
	switch x := g.(type) {
	case nil:
		return Null{}
	case bool:
		return Boolean{Value: x}
	case int:
		return Integer{Value: int64(x)}
	case int64:
		return Integer{Value: x}
	case float64:
		if x == float64(int64(x)) {
			return Integer{Value: int64(x)}
		}
		return Float{Value: x}
	case string:
		return String{Value: x}
	case []interface{}:
		elements := make([]*Thunk, len(x))
		for i, e := range x {
			elements[i] = ThunkOf(goToValue(e))
		}
		return Array{Elements: elements}
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: ThunkOf(goToValue(x[k]))}
		}
		return NewObject(fields)
	case map[interface{}]interface{}:
		keys := make([]string, 0, len(x))
		str := make(map[string]interface{}, len(x))
		for k, v := range x {
			ks, _ := k.(string)
			keys = append(keys, ks)
			str[ks] = v
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: ThunkOf(goToValue(str[k]))}
		}
		return NewObject(fields)
	default:
		return String{Value: ""}
	}
}

// ValueToGo exposes valueToGo to other lazylang packages (the format
// package's JSON/YAML styles build on the same conversion the Json/Yaml
// stdlib modules use).
func ValueToGo(v Value) (interface{}, error) {
	return valueToGo(v)
}

// loadJSONModule builds the Json stdlib module (SPEC_FULL §4.7): encode and
// decode built on encoding/json, grounded on the teacher's encodeJSON.
func loadJSONModule() *Object {
	return NewObject([]Field{
		{Key: "encode", Value: ThunkOf(NewNativeFn("Json.encode", 1, func(ec *EvalContext, args []Value) (Value, error) {
			g, err := valueToGo(args[0])
			if err != nil {
				return nil, err
			}
			b, jerr := json.MarshalIndent(g, "", "  ")
			if jerr != nil {
				return nil, badArg("Json.encode: " + jerr.Error())
			}
			return String{Value: string(b)}, nil
		}))},
		{Key: "decode", Value: ThunkOf(NewNativeFn("Json.decode", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, ok := args[0].(String)
			if !ok {
				return nil, badArg("Json.decode requires a string")
			}
			var g interface{}
			if jerr := json.Unmarshal([]byte(s.Value), &g); jerr != nil {
				return nil, badArg("Json.decode: " + jerr.Error())
			}
			return goToValue(g), nil
		}))},
	})
}
