package evaluator

import (
	"sort"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

func requireArray(name string, v Value) (Array, error) {
	arr, ok := v.(Array)
	if !ok {
		return Array{}, badArg(name + " requires an array, got " + string(v.Kind()))
	}
	return arr, nil
}

func requireCallable(name string, v Value) error {
	switch v.(type) {
	case *Function, *NativeFn, *OperatorFn:
		return nil
	}
	return badArg(name + " requires a function, got " + string(v.Kind()))
}

// loadArrayModule builds the Array stdlib module (SPEC_FULL §4.7): map,
// filter, fold, length, and the other array combinators, implemented over
// applyCallable so user lambdas, native functions, and operator-as-function
// values are all accepted interchangeably, mirroring lazylang's unary
// application model (spec §3).
func loadArrayModule() *Object {
	return NewObject([]Field{
		{Key: "length", Value: ThunkOf(NewNativeFn("Array.length", 1, func(ec *EvalContext, args []Value) (Value, error) {
			arr, err := requireArray("Array.length", args[0])
			if err != nil {
				return nil, err
			}
			return Integer{Value: int64(len(arr.Elements))}, nil
		}))},

		{Key: "map", Value: ThunkOf(NewNativeFn("Array.map", 2, func(ec *EvalContext, args []Value) (Value, error) {
			if err := requireCallable("Array.map", args[0]); err != nil {
				return nil, err
			}
			arr, err := requireArray("Array.map", args[1])
			if err != nil {
				return nil, err
			}
			out := make([]*Thunk, len(arr.Elements))
			for i, t := range arr.Elements {
				v, serr := applyCallable(args[0], t, ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				out[i] = ThunkOf(v)
			}
			return Array{Elements: out}, nil
		}))},

		{Key: "filter", Value: ThunkOf(NewNativeFn("Array.filter", 2, func(ec *EvalContext, args []Value) (Value, error) {
			if err := requireCallable("Array.filter", args[0]); err != nil {
				return nil, err
			}
			arr, err := requireArray("Array.filter", args[1])
			if err != nil {
				return nil, err
			}
			var out []*Thunk
			for _, t := range arr.Elements {
				v, serr := applyCallable(args[0], t, ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				b, ok := Truthy(v)
				if !ok {
					return nil, badArg("Array.filter: predicate must return a boolean")
				}
				if b {
					out = append(out, t)
				}
			}
			return Array{Elements: out}, nil
		}))},

		{Key: "fold", Value: ThunkOf(NewNativeFn("Array.fold", 3, func(ec *EvalContext, args []Value) (Value, error) {
			init := args[0]
			if err := requireCallable("Array.fold", args[1]); err != nil {
				return nil, err
			}
			arr, err := requireArray("Array.fold", args[2])
			if err != nil {
				return nil, err
			}
			acc := init
			for _, t := range arr.Elements {
				step, serr := applyCallable(args[1], ThunkOf(acc), ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				acc, serr = applyCallable(step, t, ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
			}
			return acc, nil
		}))},

		{Key: "reverse", Value: ThunkOf(NewNativeFn("Array.reverse", 1, func(ec *EvalContext, args []Value) (Value, error) {
			arr, err := requireArray("Array.reverse", args[0])
			if err != nil {
				return nil, err
			}
			out := make([]*Thunk, len(arr.Elements))
			for i, t := range arr.Elements {
				out[len(arr.Elements)-1-i] = t
			}
			return Array{Elements: out}, nil
		}))},

		{Key: "concat", Value: ThunkOf(NewNativeFn("Array.concat", 2, func(ec *EvalContext, args []Value) (Value, error) {
			a, err := requireArray("Array.concat", args[0])
			if err != nil {
				return nil, err
			}
			b, err := requireArray("Array.concat", args[1])
			if err != nil {
				return nil, err
			}
			out := make([]*Thunk, 0, len(a.Elements)+len(b.Elements))
			out = append(out, a.Elements...)
			out = append(out, b.Elements...)
			return Array{Elements: out}, nil
		}))},

		{Key: "contains", Value: ThunkOf(NewNativeFn("Array.contains", 2, func(ec *EvalContext, args []Value) (Value, error) {
			arr, err := requireArray("Array.contains", args[1])
			if err != nil {
				return nil, err
			}
			for _, t := range arr.Elements {
				ev, serr := t.Force()
				if serr != nil {
					return nil, serr
				}
				eq, serr := valuesEqual(args[0], ev, nil, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				if eq {
					return Boolean{Value: true}, nil
				}
			}
			return Boolean{Value: false}, nil
		}))},

		{Key: "find", Value: ThunkOf(NewNativeFn("Array.find", 2, func(ec *EvalContext, args []Value) (Value, error) {
			if err := requireCallable("Array.find", args[0]); err != nil {
				return nil, err
			}
			arr, err := requireArray("Array.find", args[1])
			if err != nil {
				return nil, err
			}
			for _, t := range arr.Elements {
				v, serr := applyCallable(args[0], t, ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				b, ok := Truthy(v)
				if !ok {
					return nil, badArg("Array.find: predicate must return a boolean")
				}
				if b {
					found, serr := t.Force()
					if serr != nil {
						return nil, serr
					}
					return found, nil
				}
			}
			return Null{}, nil
		}))},

		{Key: "slice", Value: ThunkOf(NewNativeFn("Array.slice", 3, func(ec *EvalContext, args []Value) (Value, error) {
			arr, err := requireArray("Array.slice", args[0])
			if err != nil {
				return nil, err
			}
			from, ok1 := args[1].(Integer)
			to, ok2 := args[2].(Integer)
			if !ok1 || !ok2 {
				return nil, badArg("Array.slice requires integer bounds")
			}
			n := int64(len(arr.Elements))
			lo, hi := clampIndex(from.Value, n), clampIndex(to.Value, n)
			if lo > hi {
				lo = hi
			}
			return Array{Elements: append([]*Thunk{}, arr.Elements[lo:hi]...)}, nil
		}))},

		{Key: "join", Value: ThunkOf(NewNativeFn("Array.join", 2, func(ec *EvalContext, args []Value) (Value, error) {
			arr, err := requireArray("Array.join", args[0])
			if err != nil {
				return nil, err
			}
			sep, ok := args[1].(String)
			if !ok {
				return nil, badArg("Array.join requires a string separator")
			}
			out := ""
			for i, t := range arr.Elements {
				if i > 0 {
					out += sep.Value
				}
				ev, serr := t.Force()
				if serr != nil {
					return nil, serr
				}
				out += stringify(ev)
			}
			return String{Value: out}, nil
		}))},

		{Key: "sortBy", Value: ThunkOf(NewNativeFn("Array.sortBy", 2, func(ec *EvalContext, args []Value) (Value, error) {
			if err := requireCallable("Array.sortBy", args[0]); err != nil {
				return nil, err
			}
			arr, err := requireArray("Array.sortBy", args[1])
			if err != nil {
				return nil, err
			}
			keyed := make([]struct {
				key float64
				t   *Thunk
			}, len(arr.Elements))
			for i, t := range arr.Elements {
				kv, serr := applyCallable(args[0], t, ec, errors.Location{})
				if serr != nil {
					return nil, serr
				}
				k, ok := f64(kv)
				if !ok {
					return nil, badArg("Array.sortBy: key function must return a number")
				}
				keyed[i] = struct {
					key float64
					t   *Thunk
				}{k, t}
			}
			sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].key < keyed[j].key })
			out := make([]*Thunk, len(keyed))
			for i, k := range keyed {
				out[i] = k.t
			}
			return Array{Elements: out}, nil
		}))},
	})
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}
