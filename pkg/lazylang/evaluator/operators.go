package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

func evalUnary(n *ast.Unary, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	v, err := Eval(n.Operand, env, ec)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpNeg:
		switch x := v.(type) {
		case Integer:
			return Integer{Value: -x.Value}, nil
		case Float:
			return Float{Value: -x.Value}, nil
		}
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Location,
			"unary - requires a number").WithPayload(errors.TypeMismatchPayload{Expected: "integer|float", Found: string(v.Kind())}))
	case ast.OpNot:
		b, ok := v.(Boolean)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Location,
				"unary ! requires a boolean").WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(v.Kind())}))
		}
		return Boolean{Value: !b.Value}, nil
	}
	return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Location, "unknown unary operator"))
}

func evalBinary(n *ast.Binary, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	left := NewThunk(n.Left, env, ec)
	right := NewThunk(n.Right, env, ec)
	return applyBinaryOp(n.Op, left, right, ec, n.Location)
}

// applyBinaryOp evaluates one binary operator over two argument thunks.
// Shared by evalBinary (syntactic `a op b`) and the `(op)` operator-function
// value, so both forms implement the exact same semantics (spec §4.3
// "Binary operators").
func applyBinaryOp(op ast.BinaryOp, left, right *Thunk, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	switch op {
	case ast.OpAnd:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(Boolean)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "&& requires booleans").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(lv.Kind())}))
		}
		if !lb.Value {
			return Boolean{Value: false}, nil
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(Boolean)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "&& requires booleans").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(rv.Kind())}))
		}
		return Boolean{Value: rb.Value}, nil

	case ast.OpOr:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		lb, ok := lv.(Boolean)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "|| requires booleans").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(lv.Kind())}))
		}
		if lb.Value {
			return Boolean{Value: true}, nil
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		rb, ok := rv.(Boolean)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "|| requires booleans").
				WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(rv.Kind())}))
		}
		return Boolean{Value: rb.Value}, nil

	case ast.OpPipeline:
		// x \ f desugars to f x (spec §4.3).
		fv, err := right.Force()
		if err != nil {
			return nil, err
		}
		return applyCallable(fv, left, ec, loc)

	case ast.OpMerge:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		lo, ok := lv.(*Object)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
				"& requires two objects").WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: string(lv.Kind())}))
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		ro, ok := rv.(*Object)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
				"& requires two objects").WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: string(rv.Kind())}))
		}
		return mergeObjects(lo, ro.Fields, ec, loc)

	case ast.OpEq, ast.OpNeq:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		eq, err := valuesEqual(lv, rv, ec, loc)
		if err != nil {
			return nil, err
		}
		if op == ast.OpNeq {
			eq = !eq
		}
		return Boolean{Value: eq}, nil

	case ast.OpLt, ast.OpGt, ast.OpLte, ast.OpGte:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		return compareValues(op, lv, rv, ec, loc)

	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		lv, err := left.Force()
		if err != nil {
			return nil, err
		}
		rv, err := right.Force()
		if err != nil {
			return nil, err
		}
		return arithmetic(op, lv, rv, ec, loc)
	}
	return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "unknown binary operator"))
}

func arithmetic(op ast.BinaryOp, l, r Value, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	lf, lIsFloat, lok := asNumber(l)
	rf, rIsFloat, rok := asNumber(r)
	if !lok || !rok {
		if op == ast.OpAdd {
			if _, ok := l.(String); ok {
				return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
					"+ on strings is not concatenation; use String.concat"))
			}
		}
		bad := l
		if lok {
			bad = r
		}
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
			"operator "+string(op)+" requires numbers").
			WithPayload(errors.TypeMismatchPayload{Expected: "integer|float", Found: string(bad.Kind())}))
	}

	useFloat := lIsFloat || rIsFloat
	switch op {
	case ast.OpAdd:
		if useFloat {
			return Float{Value: lf + rf}, nil
		}
		return Integer{Value: l.(Integer).Value + r.(Integer).Value}, nil
	case ast.OpSub:
		if useFloat {
			return Float{Value: lf - rf}, nil
		}
		return Integer{Value: l.(Integer).Value - r.(Integer).Value}, nil
	case ast.OpMul:
		if useFloat {
			return Float{Value: lf * rf}, nil
		}
		return Integer{Value: l.(Integer).Value * r.(Integer).Value}, nil
	case ast.OpDiv:
		if rf == 0 {
			return nil, ec.Err.Fail(errors.New(errors.DivisionByZero, loc, "division by zero"))
		}
		if useFloat {
			return Float{Value: lf / rf}, nil
		}
		li, ri := l.(Integer).Value, r.(Integer).Value
		if li%ri == 0 {
			return Integer{Value: li / ri}, nil
		}
		return Float{Value: float64(li) / float64(ri)}, nil
	}
	return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc, "unknown arithmetic operator"))
}

// asNumber returns (value-as-float64, wasFloat, ok).
func asNumber(v Value) (float64, bool, bool) {
	switch n := v.(type) {
	case Integer:
		return float64(n.Value), false, true
	case Float:
		return n.Value, true, true
	}
	return 0, false, false
}

func compareValues(op ast.BinaryOp, l, r Value, ec *EvalContext, loc errors.Location) (Value, *errors.SourceError) {
	lf, _, lok := asNumber(l)
	rf, _, rok := asNumber(r)
	if lok && rok {
		return Boolean{Value: cmpResult(op, cmpFloat(lf, rf))}, nil
	}
	ls, lsok := l.(String)
	rs, rsok := r.(String)
	if lsok && rsok {
		return Boolean{Value: cmpResult(op, cmpString(ls.Value, rs.Value))}, nil
	}
	return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, loc,
		"ordering operators require two numbers or two strings"))
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpResult(op ast.BinaryOp, c int) bool {
	switch op {
	case ast.OpLt:
		return c < 0
	case ast.OpGt:
		return c > 0
	case ast.OpLte:
		return c <= 0
	case ast.OpGte:
		return c >= 0
	}
	return false
}

// valuesEqual implements structural equality (spec §4.3): integer/float
// cross-compare by numeric value, closures compare by reference identity,
// containers compare element-wise, forcing as needed.
func valuesEqual(l, r Value, ec *EvalContext, loc errors.Location) (bool, *errors.SourceError) {
	if lf, _, lok := asNumber(l); lok {
		if rf, _, rok := asNumber(r); rok {
			return lf == rf, nil
		}
		return false, nil
	}
	switch lv := l.(type) {
	case Boolean:
		rv, ok := r.(Boolean)
		return ok && lv.Value == rv.Value, nil
	case Null:
		_, ok := r.(Null)
		return ok, nil
	case Symbol:
		rv, ok := r.(Symbol)
		return ok && lv.Name == rv.Name, nil
	case String:
		rv, ok := r.(String)
		return ok && lv.Value == rv.Value, nil
	case Array:
		rv, ok := r.(Array)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false, nil
		}
		for i := range lv.Elements {
			a, err := lv.Elements[i].Force()
			if err != nil {
				return false, err
			}
			b, err := rv.Elements[i].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(a, b, ec, loc)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case Tuple:
		rv, ok := r.(Tuple)
		if !ok || len(lv.Elements) != len(rv.Elements) {
			return false, nil
		}
		for i := range lv.Elements {
			a, err := lv.Elements[i].Force()
			if err != nil {
				return false, err
			}
			b, err := rv.Elements[i].Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(a, b, ec, loc)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *Object:
		rv, ok := r.(*Object)
		if !ok || len(lv.Fields) != len(rv.Fields) {
			return false, nil
		}
		for _, f := range lv.Fields {
			rt, ok := rv.Get(f.Key)
			if !ok {
				return false, nil
			}
			a, err := f.Value.Force()
			if err != nil {
				return false, err
			}
			b, err := rt.Force()
			if err != nil {
				return false, err
			}
			eq, err := valuesEqual(a, b, ec, loc)
			if err != nil || !eq {
				return eq, err
			}
		}
		return true, nil
	case *Function:
		rv, ok := r.(*Function)
		return ok && lv == rv, nil
	case *NativeFn:
		rv, ok := r.(*NativeFn)
		return ok && lv == rv, nil
	}
	return false, nil
}
