package evaluator

import "github.com/lazylang/lazylang/pkg/lazylang/errors"

// loadObjectModule builds the Object stdlib module (SPEC_FULL §4.7): keys,
// values, hasField, and a native merge entry point equivalent to the `&`
// operator, for code that wants merge as a first-class value rather than
// an infix operator.
func loadObjectModule() *Object {
	return NewObject([]Field{
		{Key: "keys", Value: ThunkOf(NewNativeFn("Object.keys", 1, func(ec *EvalContext, args []Value) (Value, error) {
			obj, ok := args[0].(*Object)
			if !ok {
				return nil, badArg("Object.keys requires an object")
			}
			elements := make([]*Thunk, len(obj.Fields))
			for i, f := range obj.Fields {
				elements[i] = ThunkOf(String{Value: f.Key})
			}
			return Array{Elements: elements}, nil
		}))},

		{Key: "values", Value: ThunkOf(NewNativeFn("Object.values", 1, func(ec *EvalContext, args []Value) (Value, error) {
			obj, ok := args[0].(*Object)
			if !ok {
				return nil, badArg("Object.values requires an object")
			}
			elements := make([]*Thunk, len(obj.Fields))
			for i, f := range obj.Fields {
				elements[i] = f.Value
			}
			return Array{Elements: elements}, nil
		}))},

		{Key: "hasField", Value: ThunkOf(NewNativeFn("Object.hasField", 2, func(ec *EvalContext, args []Value) (Value, error) {
			obj, ok := args[0].(*Object)
			if !ok {
				return nil, badArg("Object.hasField requires an object")
			}
			name, ok := args[1].(String)
			if !ok {
				return nil, badArg("Object.hasField requires a string field name")
			}
			_, found := obj.Get(name.Value)
			return Boolean{Value: found}, nil
		}))},

		{Key: "merge", Value: ThunkOf(NewNativeFn("Object.merge", 2, func(ec *EvalContext, args []Value) (Value, error) {
			base, ok := args[0].(*Object)
			if !ok {
				return nil, badArg("Object.merge requires two objects")
			}
			patch, ok := args[1].(*Object)
			if !ok {
				return nil, badArg("Object.merge requires two objects")
			}
			merged, serr := mergeObjects(base, patch.Fields, ec, errors.Location{})
			if serr != nil {
				return nil, serr
			}
			return merged, nil
		}))},
	})
}
