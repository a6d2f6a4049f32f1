package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/parser"
)

// testEval parses and evaluates src from a fresh stdlib environment,
// mirroring the wiring lazylang.Evaluate does in the public package
// (parser.Parse, StdlibEnvironment, a throwaway EvalContext).
func testEval(t *testing.T, src string) Value {
	t.Helper()
	expr, perr := parser.Parse(src, "test.lazy")
	if perr != nil {
		t.Fatalf("parse error: %s: %s", perr.Kind, perr.Message)
	}
	ctx := errors.NewContext("test.lazy")
	ec := &EvalContext{
		Err:         ctx,
		File:        "test.lazy",
		Cwd:         ".",
		ModulePath:  NewModulePath(""),
		ModuleCache: NewModuleCache(),
		Logger:      DefaultLogger,
	}
	v, err := Eval(expr, StdlibEnvironment(), ec)
	if err != nil {
		t.Fatalf("eval error for %q: %s: %s", src, err.Kind, err.Message)
	}
	return v
}

// testEvalErr is like testEval but expects an error, returning it.
func testEvalErr(t *testing.T, src string) *errors.SourceError {
	t.Helper()
	expr, perr := parser.Parse(src, "test.lazy")
	if perr != nil {
		t.Fatalf("parse error: %s: %s", perr.Kind, perr.Message)
	}
	ctx := errors.NewContext("test.lazy")
	ec := &EvalContext{
		Err:         ctx,
		File:        "test.lazy",
		Cwd:         ".",
		ModulePath:  NewModulePath(""),
		ModuleCache: NewModuleCache(),
		Logger:      DefaultLogger,
	}
	_, err := Eval(expr, StdlibEnvironment(), ec)
	if err == nil {
		t.Fatalf("expected an error evaluating %q, got none", src)
	}
	return err
}

func forceField(t *testing.T, obj Value, field string) Value {
	t.Helper()
	o, ok := obj.(*Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", obj)
	}
	th, ok := o.Get(field)
	if !ok {
		t.Fatalf("object has no field %q", field)
	}
	v, err := th.Force()
	if err != nil {
		t.Fatalf("forcing field %q: %s", field, err.Message)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 3 - 2", 5},
		{"2 + 3 \\ (\\n -> n * 10)", 50},
	}
	for _, tt := range tests {
		v := testEval(t, tt.src)
		i, ok := v.(Integer)
		if !ok || i.Value != tt.want {
			t.Errorf("%q: expected Integer(%d), got %T %v", tt.src, tt.want, v, v)
		}
	}
}

func TestEvalFloatArithmetic(t *testing.T) {
	v := testEval(t, "1.5 + 2.5")
	f, ok := v.(Float)
	if !ok || f.Value != 4.0 {
		t.Fatalf("expected Float(4), got %T %v", v, v)
	}
}

func TestEvalComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"1 < 2", true},
		{"2 < 1", false},
		{"\"abc\" < \"abd\"", true},
		{"1 == 1.0", true},
		{"1 != 2", true},
	}
	for _, tt := range tests {
		v := testEval(t, tt.src)
		b, ok := v.(Boolean)
		if !ok || b.Value != tt.want {
			t.Errorf("%q: expected Boolean(%v), got %T %v", tt.src, tt.want, v, v)
		}
	}
}

func TestEvalLetBinding(t *testing.T) {
	v := testEval(t, "let x = 1 + 2; x * 4")
	i, ok := v.(Integer)
	if !ok || i.Value != 12 {
		t.Fatalf("expected Integer(12), got %T %v", v, v)
	}
}

func TestEvalWhereClause(t *testing.T) {
	v := testEval(t, "w * h where w = 10, h = 20")
	i, ok := v.(Integer)
	if !ok || i.Value != 200 {
		t.Fatalf("expected Integer(200), got %T %v", v, v)
	}
}

func TestEvalIfThenElse(t *testing.T) {
	v := testEval(t, "if 3 > 0 then 1 else -1")
	i, ok := v.(Integer)
	if !ok || i.Value != 1 {
		t.Fatalf("expected Integer(1), got %T %v", v, v)
	}
	v2 := testEval(t, "if 0 > 3 then 1 else -1")
	i2, ok := v2.(Integer)
	if !ok || i2.Value != -1 {
		t.Fatalf("expected Integer(-1), got %T %v", v2, v2)
	}
}

func TestEvalWhenMatches(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`when 1 matches 1 then "one"; otherwise "many"`, "one"},
		{`when 5 matches 1 then "one"; otherwise "many"`, "many"},
	}
	for _, tt := range tests {
		v := testEval(t, tt.src)
		s, ok := v.(String)
		if !ok || s.Value != tt.want {
			t.Errorf("%q: expected String(%q), got %T %v", tt.src, tt.want, v, v)
		}
	}
}

func TestEvalLambdaApplication(t *testing.T) {
	v := testEval(t, `(\n -> n * n) 5`)
	i, ok := v.(Integer)
	if !ok || i.Value != 25 {
		t.Fatalf("expected Integer(25), got %T %v", v, v)
	}
}

func TestEvalCurrying(t *testing.T) {
	v := testEval(t, `let add = \a -> \b -> a + b; add 2 3`)
	i, ok := v.(Integer)
	if !ok || i.Value != 5 {
		t.Fatalf("expected Integer(5), got %T %v", v, v)
	}
}

func TestEvalObjectLiteralAndFieldAccess(t *testing.T) {
	v := testEval(t, `{ name: "ok", count: 1 }.count`)
	i, ok := v.(Integer)
	if !ok || i.Value != 1 {
		t.Fatalf("expected Integer(1), got %T %v", v, v)
	}
}

func TestEvalObjectPatch(t *testing.T) {
	v := testEval(t, `let base = { port: 8080, host: "localhost" }; (base { port: 9000 }).port`)
	i, ok := v.(Integer)
	if !ok || i.Value != 9000 {
		t.Fatalf("expected Integer(9000), got %T %v", v, v)
	}
}

func TestEvalObjectMerge(t *testing.T) {
	v := testEval(t, `let base = { a: 1, b: 2 }; let override = { b: 3, c: 4 }; (base & override).b`)
	i, ok := v.(Integer)
	if !ok || i.Value != 3 {
		t.Fatalf("expected Integer(3), got %T %v", v, v)
	}
}

// A standalone object literal carrying a patch field must evaluate
// successfully on its own, retaining the patch intent rather than
// erroring for lack of a base to patch against.
func TestEvalObjectLiteralWithPatchFieldEvaluatesStandalone(t *testing.T) {
	v := testEval(t, `let right = { user { age: 2 } }; (right.user).age`)
	i, ok := v.(Integer)
	if !ok || i.Value != 2 {
		t.Fatalf("expected Integer(2), got %T %v", v, v)
	}
}

// Deep merge via `&`: the right operand is an ordinary object literal
// whose patch field must be honored against the left operand's existing
// sub-object, not overwrite it wholesale.
func TestEvalDeepMergeViaPatchLiteral(t *testing.T) {
	v := testEval(t, `{ user: { name: "a", age: 1 } } & { user { age: 2 } }`)
	name := forceField(t, v, "user")
	nameField := forceField(t, name, "name")
	s, ok := nameField.(String)
	if !ok || s.Value != "a" {
		t.Fatalf("expected name to survive the merge as String(a), got %T %v", nameField, nameField)
	}
	ageField := forceField(t, name, "age")
	i, ok := ageField.(Integer)
	if !ok || i.Value != 2 {
		t.Fatalf("expected age patched to Integer(2), got %T %v", ageField, ageField)
	}
}

// SPEC_FULL scenario 14: nested multi-level patch fields.
func TestEvalDeepMergeNestedPatchFields(t *testing.T) {
	v := testEval(t, `{ a: { b: { c: 1, d: 9 } } } & { a { b { c: 2 } } }`)
	a := forceField(t, v, "a")
	b := forceField(t, a, "b")
	c := forceField(t, b, "c")
	d := forceField(t, b, "d")
	ci, ok := c.(Integer)
	if !ok || ci.Value != 2 {
		t.Fatalf("expected c patched to Integer(2), got %T %v", c, c)
	}
	di, ok := d.(Integer)
	if !ok || di.Value != 9 {
		t.Fatalf("expected d to survive the merge as Integer(9), got %T %v", d, d)
	}
}

func TestEvalFieldProjection(t *testing.T) {
	v := testEval(t, `{ name: "a", age: 1, extra: true }.{name, age}`)
	name := forceField(t, v, "name")
	s, ok := name.(String)
	if !ok || s.Value != "a" {
		t.Fatalf("expected String(a), got %T %v", name, name)
	}
	if o, ok := v.(*Object); !ok || len(o.Fields) != 2 {
		t.Fatalf("expected projected object with 2 fields, got %v", v)
	}
}

func TestEvalArrayAndIndex(t *testing.T) {
	v := testEval(t, "[1, 2, 3][1]")
	i, ok := v.(Integer)
	if !ok || i.Value != 2 {
		t.Fatalf("expected Integer(2), got %T %v", v, v)
	}
}

func TestEvalArrayNegativeIndex(t *testing.T) {
	v := testEval(t, "[1, 2, 3][-1]")
	i, ok := v.(Integer)
	if !ok || i.Value != 3 {
		t.Fatalf("expected Integer(3), got %T %v", v, v)
	}
}

func TestEvalArrayComprehension(t *testing.T) {
	v := testEval(t, "[n * n for n in [1, 2, 3, 4] when n > 1]")
	arr, ok := v.(Array)
	if !ok {
		t.Fatalf("expected Array, got %T %v", v, v)
	}
	got := make([]int64, len(arr.Elements))
	for i, th := range arr.Elements {
		ev, err := th.Force()
		if err != nil {
			t.Fatalf("forcing element %d: %s", i, err.Message)
		}
		iv, ok := ev.(Integer)
		if !ok {
			t.Fatalf("element %d: expected Integer, got %T", i, ev)
		}
		got[i] = iv.Value
	}
	want := []int64{4, 9, 16}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("comprehension result mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalRangeInclusiveExclusive(t *testing.T) {
	v := testEval(t, "1..3")
	arr, ok := v.(Array)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected inclusive range of 3, got %T %v", v, v)
	}
	v2 := testEval(t, "1...3")
	arr2, ok := v2.(Array)
	if !ok || len(arr2.Elements) != 2 {
		t.Fatalf("expected exclusive range of 2, got %T %v", v2, v2)
	}
}

func TestEvalFieldAccessorAsFunction(t *testing.T) {
	v := testEval(t, `Array.map .name [{ name: "a" }, { name: "b" }]`)
	arr, ok := v.(Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected 2-element array, got %T %v", v, v)
	}
	first, err := arr.Elements[0].Force()
	if err != nil {
		t.Fatalf("forcing first element: %s", err.Message)
	}
	s, ok := first.(String)
	if !ok || s.Value != "a" {
		t.Fatalf("expected String(a), got %T %v", first, first)
	}
}

func TestEvalArrayPatternWithRest(t *testing.T) {
	v := testEval(t, `(\[head, ...tail] -> head) [1, 2, 3]`)
	i, ok := v.(Integer)
	if !ok || i.Value != 1 {
		t.Fatalf("expected Integer(1), got %T %v", v, v)
	}
}

func TestEvalObjectPatternShortForm(t *testing.T) {
	v := testEval(t, `(\{name, age} -> name) ({ name: "a", age: 9 })`)
	s, ok := v.(String)
	if !ok || s.Value != "a" {
		t.Fatalf("expected String(a), got %T %v", v, v)
	}
}

func TestEvalStringInterpolation(t *testing.T) {
	v := testEval(t, `let name = "world"; "hello $name, total is ${1 + 2}"`)
	s, ok := v.(String)
	if !ok || s.Value != "hello world, total is 3" {
		t.Fatalf("expected interpolated string, got %T %v", v, v)
	}
}

func TestEvalLazyNonStrictness(t *testing.T) {
	// The second tuple element is never forced, so a field that would crash
	// if evaluated must not surface an error here.
	v := testEval(t, `let pair = (1, crash "boom"); pair`)
	tup, ok := v.(Tuple)
	if !ok || len(tup.Elements) != 2 {
		t.Fatalf("expected 2-tuple, got %T %v", v, v)
	}
	first, err := tup.Elements[0].Force()
	if err != nil || first.(Integer).Value != 1 {
		t.Fatalf("expected first element 1, got %v err=%v", first, err)
	}
}

func TestEvalUnknownIdentifierError(t *testing.T) {
	err := testEvalErr(t, "doesNotExist")
	if err.Kind != errors.UnknownIdentifier {
		t.Fatalf("expected UnknownIdentifier, got %s", err.Kind)
	}
}

func TestEvalTypeMismatchOnStringAddition(t *testing.T) {
	err := testEvalErr(t, `"a" + "b"`)
	if err.Kind != errors.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %s", err.Kind)
	}
}

func TestEvalArrayStdlibModule(t *testing.T) {
	v := testEval(t, `Array.length [1, 2, 3]`)
	i, ok := v.(Integer)
	if !ok || i.Value != 3 {
		t.Fatalf("expected Integer(3), got %T %v", v, v)
	}
}

func TestEvalStringStdlibModule(t *testing.T) {
	v := testEval(t, `String.upper "abc"`)
	s, ok := v.(String)
	if !ok || s.Value != "ABC" {
		t.Fatalf("expected String(ABC), got %T %v", v, v)
	}
}

func TestEvalMathStdlibModule(t *testing.T) {
	v := testEval(t, `Math.max [3, 1, 4, 1, 5]`)
	f, ok := v.(Float)
	if !ok || f.Value != 5 {
		t.Fatalf("expected Float(5), got %T %v", v, v)
	}
}

func TestEvalMathModeStdlibFunction(t *testing.T) {
	v := testEval(t, `Math.mode [1, 2, 2, 3]`)
	f, ok := v.(Float)
	if !ok || f.Value != 2 {
		t.Fatalf("expected Float(2), got %T %v", v, v)
	}
}

func TestEvalObjectStdlibModule(t *testing.T) {
	v := testEval(t, `Object.keys ({ a: 1, b: 2 })`)
	arr, ok := v.(Array)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("expected 2-element array of keys, got %T %v", v, v)
	}
}

func TestEvalObjectHasFieldAndMerge(t *testing.T) {
	v := testEval(t, `Object.hasField ({ a: 1 }) "a"`)
	b, ok := v.(Boolean)
	if !ok || !b.Value {
		t.Fatalf("expected Boolean(true), got %T %v", v, v)
	}
	v2 := testEval(t, `(Object.merge ({ a: 1, b: 2 }) ({ b: 3 })).b`)
	i, ok := v2.(Integer)
	if !ok || i.Value != 3 {
		t.Fatalf("expected Integer(3), got %T %v", v2, v2)
	}
}

func TestEvalTypeStdlibModule(t *testing.T) {
	v := testEval(t, `Type.of 1`)
	s, ok := v.(String)
	if !ok || s.Value != "integer" {
		t.Fatalf("expected String(integer), got %T %v", v, v)
	}
}
