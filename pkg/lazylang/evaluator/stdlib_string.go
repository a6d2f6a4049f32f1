package evaluator

import "strings"

func requireString(name string, v Value) (string, error) {
	s, ok := v.(String)
	if !ok {
		return "", badArg(name + " requires a string, got " + string(v.Kind()))
	}
	return s.Value, nil
}

// loadStringModule builds the String stdlib module (SPEC_FULL §4.7),
// grounded on the teacher's string-handling built-ins and generalized to
// the String value type: concat, case conversion, trimming, splitting,
// and substring search.
func loadStringModule() *Object {
	return NewObject([]Field{
		{Key: "concat", Value: ThunkOf(NewNativeFn("String.concat", 2, func(ec *EvalContext, args []Value) (Value, error) {
			a, err := requireString("String.concat", args[0])
			if err != nil {
				return nil, err
			}
			b, err := requireString("String.concat", args[1])
			if err != nil {
				return nil, err
			}
			return String{Value: a + b}, nil
		}))},

		{Key: "length", Value: ThunkOf(NewNativeFn("String.length", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.length", args[0])
			if err != nil {
				return nil, err
			}
			return Integer{Value: int64(len([]rune(s)))}, nil
		}))},

		{Key: "upper", Value: ThunkOf(NewNativeFn("String.upper", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.upper", args[0])
			if err != nil {
				return nil, err
			}
			return String{Value: strings.ToUpper(s)}, nil
		}))},

		{Key: "lower", Value: ThunkOf(NewNativeFn("String.lower", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.lower", args[0])
			if err != nil {
				return nil, err
			}
			return String{Value: strings.ToLower(s)}, nil
		}))},

		{Key: "trim", Value: ThunkOf(NewNativeFn("String.trim", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.trim", args[0])
			if err != nil {
				return nil, err
			}
			return String{Value: strings.TrimSpace(s)}, nil
		}))},

		{Key: "split", Value: ThunkOf(NewNativeFn("String.split", 2, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.split", args[0])
			if err != nil {
				return nil, err
			}
			sep, err := requireString("String.split", args[1])
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			elements := make([]*Thunk, len(parts))
			for i, p := range parts {
				elements[i] = ThunkOf(String{Value: p})
			}
			return Array{Elements: elements}, nil
		}))},

		{Key: "contains", Value: ThunkOf(NewNativeFn("String.contains", 2, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.contains", args[0])
			if err != nil {
				return nil, err
			}
			sub, err := requireString("String.contains", args[1])
			if err != nil {
				return nil, err
			}
			return Boolean{Value: strings.Contains(s, sub)}, nil
		}))},

		{Key: "startsWith", Value: ThunkOf(NewNativeFn("String.startsWith", 2, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.startsWith", args[0])
			if err != nil {
				return nil, err
			}
			prefix, err := requireString("String.startsWith", args[1])
			if err != nil {
				return nil, err
			}
			return Boolean{Value: strings.HasPrefix(s, prefix)}, nil
		}))},

		{Key: "endsWith", Value: ThunkOf(NewNativeFn("String.endsWith", 2, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.endsWith", args[0])
			if err != nil {
				return nil, err
			}
			suffix, err := requireString("String.endsWith", args[1])
			if err != nil {
				return nil, err
			}
			return Boolean{Value: strings.HasSuffix(s, suffix)}, nil
		}))},

		{Key: "replace", Value: ThunkOf(NewNativeFn("String.replace", 3, func(ec *EvalContext, args []Value) (Value, error) {
			s, err := requireString("String.replace", args[0])
			if err != nil {
				return nil, err
			}
			old, err := requireString("String.replace", args[1])
			if err != nil {
				return nil, err
			}
			repl, err := requireString("String.replace", args[2])
			if err != nil {
				return nil, err
			}
			return String{Value: strings.ReplaceAll(s, old, repl)}, nil
		}))},
	})
}
