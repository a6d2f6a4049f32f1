package evaluator

import "gopkg.in/yaml.v3"

// loadYAMLModule builds the Yaml stdlib module (SPEC_FULL §4.7), grounded
// on the teacher's encodeYAML (pkg/parsley/evaluator/eval_encoders.go),
// sharing valueToGo/goToValue with the Json module.
func loadYAMLModule() *Object {
	return NewObject([]Field{
		{Key: "encode", Value: ThunkOf(NewNativeFn("Yaml.encode", 1, func(ec *EvalContext, args []Value) (Value, error) {
			g, err := valueToGo(args[0])
			if err != nil {
				return nil, err
			}
			b, yerr := yaml.Marshal(g)
			if yerr != nil {
				return nil, badArg("Yaml.encode: " + yerr.Error())
			}
			return String{Value: string(b)}, nil
		}))},
		{Key: "decode", Value: ThunkOf(NewNativeFn("Yaml.decode", 1, func(ec *EvalContext, args []Value) (Value, error) {
			s, ok := args[0].(String)
			if !ok {
				return nil, badArg("Yaml.decode requires a string")
			}
			var g interface{}
			if yerr := yaml.Unmarshal([]byte(s.Value), &g); yerr != nil {
				return nil, badArg("Yaml.decode: " + yerr.Error())
			}
			return goToValue(g), nil
		}))},
	})
}
