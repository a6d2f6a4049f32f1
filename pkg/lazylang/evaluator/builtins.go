package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

// badArg is the common-case native-function failure: an InvalidArgument
// error with only a detail message, left for applyNative to stamp with the
// call-site Location.
func badArg(detail string) error {
	return errors.New(errors.InvalidArgument, errors.Location{}, detail).
		WithPayload(errors.InvalidArgumentPayload{Detail: detail})
}

// StdlibEnvironment builds the root Environment every top-level evaluation
// and every imported module starts from: the flat built-ins (crash,
// docstring, print, debug) plus the stdlib module objects (SPEC_FULL
// §4.7), bound as capitalized identifiers (Array, String, Math, Object,
// Json, Yaml, Type).
func StdlibEnvironment() *Environment {
	env := NewEnvironment()
	env = env.Bind("crash", ThunkOf(NewNativeFn("crash", 1, func(ec *EvalContext, args []Value) (Value, error) {
		msg := stringify(args[0])
		return nil, errors.New(errors.UserCrash, errors.Location{}, msg).
			WithPayload(errors.UserCrashPayload{Message: msg})
	})))
	env = env.Bind("print", ThunkOf(NewNativeFn("print", 1, func(ec *EvalContext, args []Value) (Value, error) {
		if ec.Logger != nil {
			ec.Logger.Log(stringify(args[0]))
		}
		return args[0], nil
	})))
	env = env.Bind("debug", ThunkOf(NewNativeFn("debug", 1, func(ec *EvalContext, args []Value) (Value, error) {
		if ec.Logger != nil {
			ec.Logger.LogLine(args[0].Inspect())
		}
		return args[0], nil
	})))
	env = env.Bind("docstring", ThunkOf(NewNativeFn("docstring", 1, func(ec *EvalContext, args []Value) (Value, error) {
		if obj, ok := args[0].(*Object); ok {
			if obj.Doc != "" {
				return String{Value: obj.Doc}, nil
			}
		}
		return Null{}, nil
	})))

	env = env.Bind("Array", ThunkOf(loadArrayModule()))
	env = env.Bind("String", ThunkOf(loadStringModule()))
	env = env.Bind("Math", ThunkOf(loadMathModule()))
	env = env.Bind("Object", ThunkOf(loadObjectModule()))
	env = env.Bind("Json", ThunkOf(loadJSONModule()))
	env = env.Bind("Yaml", ThunkOf(loadYAMLModule()))
	env = env.Bind("Type", ThunkOf(loadTypeModule()))
	return env
}
