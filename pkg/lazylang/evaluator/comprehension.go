package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

// evalRange realizes a range into an array of integers (spec §4.3 "a
// range, which lazily realizes into an array" — realized eagerly here
// since ranges are small enough in practice that a dedicated lazy range
// value would add complexity this evaluator's single-pass walk doesn't
// need; each element thunk is still a Thunk, so downstream consumers that
// never force an element still pay nothing for it).
func evalRange(n *ast.Range, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	sv, err := Eval(n.Start, env, ec)
	if err != nil {
		return nil, err
	}
	ev, err := Eval(n.End, env, ec)
	if err != nil {
		return nil, err
	}
	si, ok := sv.(Integer)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Start.Loc(), "range bounds must be integers"))
	}
	ei, ok := ev.(Integer)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.End.Loc(), "range bounds must be integers"))
	}
	hi := ei.Value
	if n.Inclusive {
		hi++
	}
	var elements []*Thunk
	for i := si.Value; i < hi; i++ {
		elements = append(elements, ThunkOf(Integer{Value: i}))
	}
	return Array{Elements: elements}, nil
}

// iterate forces iterable to an Array and calls visit once per element
// with the Environment extended by matching clauses[idx].Pattern, then
// recurses into clauses[idx+1:], invoking visit once per fully-bound
// combination — the standard nested-for-comprehension walk.
func iterate(clauses []ast.ComprehensionClause, idx int, env *Environment, ec *EvalContext, filter ast.Expr, visit func(*Environment) *errors.SourceError) *errors.SourceError {
	if idx == len(clauses) {
		if filter != nil {
			fv, err := Eval(filter, env, ec)
			if err != nil {
				return err
			}
			b, ok := Truthy(fv)
			if !ok {
				return ec.Err.Fail(errors.New(errors.TypeMismatch, filter.Loc(), "when clause must be a boolean"))
			}
			if !b {
				return nil
			}
		}
		return visit(env)
	}
	clause := clauses[idx]
	iv, err := Eval(clause.Iterable, env, ec)
	if err != nil {
		return err
	}
	arr, ok := iv.(Array)
	if !ok {
		return ec.Err.Fail(errors.New(errors.TypeMismatch, clause.Iterable.Loc(),
			"comprehension iterable must be an array").
			WithPayload(errors.TypeMismatchPayload{Expected: string(KindArray), Found: string(iv.Kind())}))
	}
	for _, elemThunk := range arr.Elements {
		nextEnv, matched, err := match(clause.Pattern, elemThunk, env, ec)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		if err := iterate(clauses, idx+1, nextEnv, ec, filter, visit); err != nil {
			return err
		}
	}
	return nil
}

func evalArrayComprehension(n *ast.ArrayComprehension, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	var elements []*Thunk
	err := iterate(n.Clauses, 0, env, ec, n.Filter, func(scopedEnv *Environment) *errors.SourceError {
		elements = append(elements, NewThunk(n.Body, scopedEnv, ec))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Array{Elements: elements}, nil
}

func evalObjectComprehension(n *ast.ObjectComprehension, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	var fields []Field
	err := iterate(n.Clauses, 0, env, ec, n.Filter, func(scopedEnv *Environment) *errors.SourceError {
		kv, err := Eval(n.Body.KeyExpr, scopedEnv, ec)
		if err != nil {
			return err
		}
		ks, ok := kv.(String)
		if !ok {
			return ec.Err.Fail(errors.New(errors.TypeMismatch, n.Body.KeyExpr.Loc(),
				"object comprehension key must be a string").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindString), Found: string(kv.Kind())}))
		}
		fields = append(fields, Field{Key: ks.Value, Value: NewThunk(n.Body.ValueExpr, scopedEnv, ec)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mergeObjects(NewObject(nil), fields, ec, n.Location)
}
