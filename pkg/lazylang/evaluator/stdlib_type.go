package evaluator

// loadTypeModule builds the Type stdlib module (SPEC_FULL §4.7): `of`
// reports a value's Kind as a string, and the is* predicates classify a
// value without forcing more than the single argument already forced by
// application.
func loadTypeModule() *Object {
	predicate := func(name string, k Kind) *NativeFn {
		return NewNativeFn(name, 1, func(ec *EvalContext, args []Value) (Value, error) {
			return Boolean{Value: args[0].Kind() == k}, nil
		})
	}
	return NewObject([]Field{
		{Key: "of", Value: ThunkOf(NewNativeFn("Type.of", 1, func(ec *EvalContext, args []Value) (Value, error) {
			return String{Value: string(args[0].Kind())}, nil
		}))},
		{Key: "isInteger", Value: ThunkOf(predicate("Type.isInteger", KindInteger))},
		{Key: "isFloat", Value: ThunkOf(predicate("Type.isFloat", KindFloat))},
		{Key: "isBoolean", Value: ThunkOf(predicate("Type.isBoolean", KindBoolean))},
		{Key: "isNull", Value: ThunkOf(predicate("Type.isNull", KindNull))},
		{Key: "isSymbol", Value: ThunkOf(predicate("Type.isSymbol", KindSymbol))},
		{Key: "isString", Value: ThunkOf(predicate("Type.isString", KindString))},
		{Key: "isArray", Value: ThunkOf(predicate("Type.isArray", KindArray))},
		{Key: "isTuple", Value: ThunkOf(predicate("Type.isTuple", KindTuple))},
		{Key: "isObject", Value: ThunkOf(predicate("Type.isObject", KindObject))},
		{Key: "isFunction", Value: ThunkOf(NewNativeFn("Type.isFunction", 1, func(ec *EvalContext, args []Value) (Value, error) {
			k := args[0].Kind()
			return Boolean{Value: k == KindFunction || k == KindNative}, nil
		}))},
	})
}
