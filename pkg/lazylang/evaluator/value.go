// Package evaluator implements the lazy tree-walking evaluator: the Value
// model, the immutable Environment, the Thunk force protocol, pattern
// matching, operators, object merge, comprehensions, imports, and the
// native built-in stdlib modules.
//
// The shape mirrors the teacher's Object-interface-plus-concrete-struct
// value model (pkg/parsley/evaluator/evaluator.go), generalized from
// Basil's statement-oriented, eagerly-evaluated Object set to lazylang's
// single-expression, lazily-evaluated Value set built around Thunk cells.
package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lazylang/lazylang/pkg/lazylang/ast"
)

// Kind identifies the runtime type of a Value, used for error messages and
// the `Type.of` built-in.
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBoolean  Kind = "boolean"
	KindNull     Kind = "null"
	KindSymbol   Kind = "symbol"
	KindString   Kind = "string"
	KindArray    Kind = "array"
	KindTuple    Kind = "tuple"
	KindObject   Kind = "object"
	KindFunction Kind = "function"
	KindNative   Kind = "native_fn"
)

// Value is any fully-forced runtime value. Eval always returns a Value,
// never a Thunk: laziness lives one layer down, in the *Thunk cells held by
// Array elements, Tuple elements, Object field values, and Environment
// bindings (spec §4.3 "Laziness").
type Value interface {
	Kind() Kind
	Inspect() string
}

type Integer struct{ Value int64 }

func (Integer) Kind() Kind         { return KindInteger }
func (v Integer) Inspect() string  { return strconv.FormatInt(v.Value, 10) }

type Float struct{ Value float64 }

func (Float) Kind() Kind        { return KindFloat }
func (v Float) Inspect() string { return strconv.FormatFloat(v.Value, 'g', -1, 64) }

type Boolean struct{ Value bool }

func (Boolean) Kind() Kind        { return KindBoolean }
func (v Boolean) Inspect() string { return strconv.FormatBool(v.Value) }

type Null struct{}

func (Null) Kind() Kind        { return KindNull }
func (Null) Inspect() string   { return "null" }

type Symbol struct{ Name string }

func (Symbol) Kind() Kind        { return KindSymbol }
func (v Symbol) Inspect() string { return "#" + v.Name }

type String struct{ Value string }

func (String) Kind() Kind        { return KindString }
func (v String) Inspect() string { return strconv.Quote(v.Value) }

// Array holds its elements as Thunks: spec §4.3 "Array and tuple elements
// are stored as thunks."
type Array struct{ Elements []*Thunk }

func (Array) Kind() Kind { return KindArray }
func (v Array) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, t := range v.Elements {
		parts[i] = t.inspectUnforced()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type Tuple struct{ Elements []*Thunk }

func (Tuple) Kind() Kind { return KindTuple }
func (v Tuple) Inspect() string {
	parts := make([]string, len(v.Elements))
	for i, t := range v.Elements {
		parts[i] = t.inspectUnforced()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Field is one key/value slot of an Object, in declaration order. Object
// field values are stored as thunks (spec §4.3). IsPatch survives into the
// resolved value (SPEC_FULL §9's open-question resolution: the merge
// algorithm acts on the resolved (key, value, is_patch) field list, which
// no longer distinguishes static from dynamic key origin).
type Field struct {
	Key     string
	Value   *Thunk
	IsPatch bool
}

// Object is a lazylang object value: an ordered field list plus an index
// for O(1) lookup. Order is preserved per the merge-algorithm invariant in
// spec §4.3 ("Iteration order of object.fields in output...").
type Object struct {
	Fields []Field
	index  map[string]int
	// Doc is the object literal's module doc comment, if any (spec §4.3's
	// docstring built-in reads this back).
	Doc string
}

func NewObject(fields []Field) *Object {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Key] = i
	}
	return &Object{Fields: fields, index: idx}
}

func (*Object) Kind() Kind { return KindObject }
func (v *Object) Inspect() string {
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		parts[i] = f.Key + ": " + f.Value.inspectUnforced()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// Get looks up a field's thunk by name.
func (v *Object) Get(name string) (*Thunk, bool) {
	i, ok := v.index[name]
	if !ok {
		return nil, false
	}
	return v.Fields[i].Value, true
}

// Function is a user-defined lazylang lambda closing over its defining
// Environment (teacher: pkg/parsley/evaluator/evaluator.go's Function).
type Function struct {
	Param ast.Pattern
	Body  ast.Expr
	Env   *Environment
	// Name, when non-empty, is a label shown by Inspect. lazylang has no
	// named-function syntax and no evaluator path sets it, so lambdas
	// (let-bound or not) inspect as "<function>".
	Name string
}

func (*Function) Kind() Kind { return KindFunction }
func (f *Function) Inspect() string {
	if f.Name != "" {
		return "<function " + f.Name + ">"
	}
	return "<function>"
}

// NativeFunc is the Go implementation behind a NativeFn value, invoked
// once all of its arguments have been supplied. Arguments are already
// forced; handlers return a Value or a plain error (wrapped into a
// *errors.SourceError by applyNative).
type NativeFunc func(ec *EvalContext, args []Value) (Value, error)

// NativeFn is a built-in function value, assembled into stdlib module
// objects (spec §4.7). Application is always unary (spec §3), so a
// multi-argument native curries: each application appends to accum until
// arityN arguments have accumulated, at which point Fn runs.
type NativeFn struct {
	Name   string
	Arity  string
	arityN int
	accum  []Value
	Fn     NativeFunc
}

// NewNativeFn builds a fixed-arity native function value.
func NewNativeFn(name string, arity int, fn NativeFunc) *NativeFn {
	return &NativeFn{Name: name, Arity: strconv.Itoa(arity), arityN: arity, Fn: fn}
}

func (*NativeFn) Kind() Kind { return KindNative }
func (n *NativeFn) Inspect() string {
	return fmt.Sprintf("<native function %s>", n.Name)
}

// OperatorFn is the `(op)` operator-as-function value: applying it once
// partially applies the left operand, applying it twice evaluates the
// operator. See apply.go's applyOperatorFn for the two-stage dispatch.
type OperatorFn struct {
	Op ast.BinaryOp
	// Left is set once the operator function has received its first
	// argument; nil means "awaiting left operand".
	Left *Thunk
}

func (OperatorFn) Kind() Kind { return KindFunction }
func (o OperatorFn) Inspect() string {
	if o.Left == nil {
		return "(" + string(o.Op) + ")"
	}
	return "<partial " + string(o.Op) + ">"
}

// Truthy implements lazylang's boolean-short-circuit rule: only Boolean
// values participate in &&/||/if conditions; anything else is a type error
// at the call site (checked by the caller, not here).
func Truthy(v Value) (bool, bool) {
	b, ok := v.(Boolean)
	return b.Value, ok
}
