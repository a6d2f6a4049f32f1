package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

// match implements match(pattern, value, env) -> env' from spec §4.3. The
// returned bool is false for a structural mismatch (wrong shape/arity,
// missing object key, unequal literal) — never an error; callers decide
// whether that's fatal (let-binding) or "try the next branch"
// (when-matches). A genuine *errors.SourceError is returned only for
// failures unrelated to shape (forcing errors propagating from val).
func match(pat ast.Pattern, val *Thunk, env *Environment, ec *EvalContext) (*Environment, bool, *errors.SourceError) {
	switch p := pat.(type) {
	case *ast.IdentifierPattern:
		return env.Bind(p.Name, val), true, nil

	case *ast.LiteralPattern:
		forced, err := val.Force()
		if err != nil {
			return env, false, err
		}
		want, err := Eval(p.Value, env, ec)
		if err != nil {
			return env, false, err
		}
		eq, err := valuesEqual(forced, want, ec, p.Location)
		if err != nil {
			return env, false, err
		}
		return env, eq, nil

	case *ast.TuplePattern:
		forced, err := val.Force()
		if err != nil {
			return env, false, err
		}
		tup, ok := forced.(Tuple)
		if !ok || len(tup.Elements) != len(p.Elements) {
			return env, false, nil
		}
		cur := env
		for i, sub := range p.Elements {
			var matched bool
			cur, matched, err = match(sub, tup.Elements[i], cur, ec)
			if err != nil {
				return env, false, err
			}
			if !matched {
				return env, false, nil
			}
		}
		return cur, true, nil

	case *ast.ArrayPattern:
		forced, err := val.Force()
		if err != nil {
			return env, false, err
		}
		arr, ok := forced.(Array)
		if !ok {
			return env, false, nil
		}
		if p.Rest == "" {
			if len(arr.Elements) != len(p.Elements) {
				return env, false, nil
			}
		} else if len(arr.Elements) < len(p.Elements) {
			return env, false, nil
		}
		cur := env
		for i, sub := range p.Elements {
			var matched bool
			cur, matched, err = match(sub, arr.Elements[i], cur, ec)
			if err != nil {
				return env, false, err
			}
			if !matched {
				return env, false, nil
			}
		}
		if p.Rest != "" {
			rest := append([]*Thunk{}, arr.Elements[len(p.Elements):]...)
			cur = cur.Bind(p.Rest, ThunkOf(Array{Elements: rest}))
		}
		return cur, true, nil

	case *ast.ObjectPattern:
		forced, err := val.Force()
		if err != nil {
			return env, false, err
		}
		obj, ok := forced.(*Object)
		if !ok {
			return env, false, nil
		}
		cur := env
		for _, f := range p.Fields {
			fieldThunk, ok := obj.Get(f.Key)
			if !ok {
				return env, false, nil
			}
			var matched bool
			cur, matched, err = match(f.SubPat, fieldThunk, cur, ec)
			if err != nil {
				return env, false, err
			}
			if !matched {
				return env, false, nil
			}
		}
		return cur, true, nil
	}
	return env, false, ec.Err.Fail(errors.New(errors.TypeMismatch, pat.Loc(), "internal: unhandled pattern node"))
}
