package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

type thunkState int

const (
	Unevaluated thunkState = iota
	Evaluating
	Forced
)

// Thunk is the deferred-computation cell lazylang's evaluator threads
// through let/where bindings, lambda application arguments, and array/
// object/tuple elements (spec §4.3 "Laziness" and "Force protocol").
//
// A Thunk built over an already-known Value (ThunkOf) starts in the Forced
// state and never re-evaluates — used for pattern-match sub-bindings and
// native built-in results, which have no source expression to defer.
type Thunk struct {
	state thunkState
	expr  ast.Expr
	env   *Environment
	ec    *EvalContext

	value Value
	err   *errors.SourceError
}

// NewThunk captures expr, env, and the current evaluation context (which
// carries the working directory) without evaluating anything.
func NewThunk(expr ast.Expr, env *Environment, ec *EvalContext) *Thunk {
	return &Thunk{state: Unevaluated, expr: expr, env: env, ec: ec}
}

// ThunkOf wraps an already-computed Value as a pre-forced Thunk, for
// positions (pattern-match rest-bindings, native built-in return values)
// that have a Value but no deferred expression.
func ThunkOf(v Value) *Thunk {
	return &Thunk{state: Forced, value: v}
}

// Force runs the Unevaluated -> Evaluating -> Forced state machine (spec
// §4.3). A re-entrant force while Evaluating is a cyclic-dependency error.
// Forcing an already-Forced thunk returns its cached value or error.
func (t *Thunk) Force() (Value, *errors.SourceError) {
	switch t.state {
	case Forced:
		return t.value, t.err
	case Evaluating:
		loc := errors.Location{}
		if t.expr != nil {
			loc = t.expr.Loc()
		}
		err := t.ec.Err.Fail(errors.New(errors.CycleDetected, loc,
			"cyclic reference detected while forcing a value"))
		return nil, err
	}
	t.state = Evaluating
	v, err := Eval(t.expr, t.env, t.ec)
	t.state = Forced
	t.value, t.err = v, err
	return v, err
}

// inspectUnforced renders a thunk for Inspect() without forcing it, so
// printing a container holding an un-demanded cyclic or expensive thunk
// never triggers evaluation as a side effect of formatting an error.
func (t *Thunk) inspectUnforced() string {
	switch t.state {
	case Forced:
		if t.err != nil {
			return "<error>"
		}
		return t.value.Inspect()
	case Evaluating:
		return "<evaluating>"
	default:
		return "<thunk>"
	}
}
