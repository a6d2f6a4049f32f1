package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

func evalApplication(n *ast.Application, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	fnVal, err := Eval(n.Function, env, ec)
	if err != nil {
		return nil, err
	}
	arg := NewThunk(n.Argument, env, ec)
	return applyCallable(fnVal, arg, ec, n.Location)
}

// applyCallable applies one already-forced function value to one argument
// thunk (spec §3 "Application is always unary"). User lambdas bind their
// parameter pattern lazily; native functions curry until saturated;
// operator-as-function values curry exactly two arguments then evaluate.
func applyCallable(fn Value, arg *Thunk, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	switch f := fn.(type) {
	case *Function:
		bodyEnv, matched, err := match(f.Param, arg, f.Env, ec)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, ec.Err.Fail(errors.New(errors.PatternMatchFailure, loc,
				"function argument did not match its parameter pattern"))
		}
		return Eval(f.Body, bodyEnv, ec)
	case *NativeFn:
		return applyNative(f, arg, ec, loc)
	case *OperatorFn:
		return applyOperatorFn(f, arg, ec, loc)
	default:
		return nil, ec.Err.Fail(errors.New(errors.ExpectedFunction, loc,
			"cannot apply a "+string(fn.Kind())+" as a function"))
	}
}

func applyNative(f *NativeFn, arg *Thunk, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	argVal, err := arg.Force()
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(f.accum)+1)
	args = append(args, f.accum...)
	args = append(args, argVal)
	if len(args) < f.arityN {
		return &NativeFn{Name: f.Name, Arity: f.Arity, arityN: f.arityN, Fn: f.Fn, accum: args}, nil
	}
	v, goErr := f.Fn(ec, args)
	if goErr == nil {
		return v, nil
	}
	if se, ok := goErr.(*errors.SourceError); ok {
		if se.Location == (errors.Location{}) {
			se.Location = loc
		}
		return nil, ec.Err.Fail(se)
	}
	return nil, ec.Err.Fail(errors.New(errors.InvalidArgument, loc, goErr.Error()))
}

func applyOperatorFn(f *OperatorFn, arg *Thunk, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	if f.Left == nil {
		return &OperatorFn{Op: f.Op, Left: arg}, nil
	}
	return applyBinaryOp(f.Op, f.Left, arg, ec, loc)
}
