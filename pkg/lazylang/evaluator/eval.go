package evaluator

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

// Eval is the evaluator's single entry point (spec §4.3 contract):
// evaluate(expr, env, cwd, ctx) -> value. It never mutates env and never
// returns a Thunk — laziness lives one layer down in the cells built by
// evalLet, evalApplication, and the container literals below.
func Eval(expr ast.Expr, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	switch n := expr.(type) {
	case *ast.IntegerLiteral:
		return Integer{Value: n.Value}, nil
	case *ast.FloatLiteral:
		return Float{Value: n.Value}, nil
	case *ast.BooleanLiteral:
		return Boolean{Value: n.Value}, nil
	case *ast.NullLiteral:
		return Null{}, nil
	case *ast.SymbolLiteral:
		return Symbol{Name: n.Name}, nil
	case *ast.StringLiteral:
		return String{Value: n.Value}, nil
	case *ast.StringInterpolation:
		return evalStringInterpolation(n, env, ec)
	case *ast.Identifier:
		return evalIdentifier(n, env, ec)
	case *ast.Lambda:
		return &Function{Param: n.Param, Body: n.Body, Env: env}, nil
	case *ast.Application:
		return evalApplication(n, env, ec)
	case *ast.Let:
		return evalLet(n, env, ec)
	case *ast.WhereExpr:
		return evalWhere(n, env, ec)
	case *ast.Unary:
		return evalUnary(n, env, ec)
	case *ast.Binary:
		return evalBinary(n, env, ec)
	case *ast.OperatorFunction:
		return &OperatorFn{Op: n.Op}, nil
	case *ast.If:
		return evalIf(n, env, ec)
	case *ast.WhenMatches:
		return evalWhenMatches(n, env, ec)
	case *ast.Object:
		return evalObject(n, env, ec)
	case *ast.ObjectExtend:
		return evalObjectExtend(n, env, ec)
	case *ast.Array:
		return evalArray(n, env, ec)
	case *ast.Tuple:
		return evalTuple(n, env, ec)
	case *ast.ArrayComprehension:
		return evalArrayComprehension(n, env, ec)
	case *ast.ObjectComprehension:
		return evalObjectComprehension(n, env, ec)
	case *ast.Range:
		return evalRange(n, env, ec)
	case *ast.FieldAccess:
		return evalFieldAccess(n, env, ec)
	case *ast.Index:
		return evalIndex(n, env, ec)
	case *ast.FieldAccessor:
		return evalFieldAccessor(n, env, ec)
	case *ast.FieldProjection:
		return evalFieldProjection(n, env, ec)
	case *ast.ImportExpr:
		return evalImport(n, env, ec)
	default:
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, expr.Loc(),
			"internal: unhandled expression node"))
	}
}

func evalIdentifier(n *ast.Identifier, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	t, ok := env.Get(n.Name)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.UnknownIdentifier, n.Location,
			"unknown identifier: "+n.Name).WithPayload(errors.UnknownIdentifierPayload{Name: n.Name}))
	}
	return t.Force()
}

func evalLet(n *ast.Let, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	valueThunk := NewThunk(n.Value, env, ec)
	bodyEnv, matched, err := match(n.Pattern, valueThunk, env, ec)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ec.Err.Fail(errors.New(errors.PatternMatchFailure, n.Pattern.Loc(),
			"pattern did not match the bound value"))
	}
	return Eval(n.Body, bodyEnv, ec)
}

func evalWhere(n *ast.WhereExpr, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	cur := env
	for _, b := range n.Bindings {
		t := NewThunk(b.Value, cur, ec)
		var matched bool
		var err *errors.SourceError
		cur, matched, err = match(b.Pattern, t, cur, ec)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, ec.Err.Fail(errors.New(errors.PatternMatchFailure, b.Pattern.Loc(),
				"where-binding pattern did not match"))
		}
	}
	return Eval(n.Expr, cur, ec)
}

func evalIf(n *ast.If, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	cond, err := Eval(n.Cond, env, ec)
	if err != nil {
		return nil, err
	}
	b, ok := Truthy(cond)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Cond.Loc(),
			"if condition must be a boolean").WithPayload(errors.TypeMismatchPayload{Expected: string(KindBoolean), Found: string(cond.Kind())}))
	}
	if b {
		return Eval(n.Then, env, ec)
	}
	if n.Else == nil {
		return Null{}, nil
	}
	return Eval(n.Else, env, ec)
}

func evalWhenMatches(n *ast.WhenMatches, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	scrutinee := NewThunk(n.Value, env, ec)
	for _, br := range n.Branches {
		branchEnv, matched, err := match(br.Pattern, scrutinee, env, ec)
		if err != nil {
			return nil, err
		}
		if matched {
			return Eval(br.Result, branchEnv, ec)
		}
	}
	if n.Otherwise != nil {
		return Eval(n.Otherwise, env, ec)
	}
	return nil, ec.Err.Fail(errors.New(errors.PatternMatchFailure, n.Location,
		"no branch matched and no otherwise clause was given"))
}

func evalStringInterpolation(n *ast.StringInterpolation, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	var b []byte
	for _, part := range n.Parts {
		if part.Expr == nil {
			b = append(b, part.Literal...)
			continue
		}
		v, err := Eval(part.Expr, env, ec)
		if err != nil {
			return nil, err
		}
		b = append(b, stringify(v)...)
	}
	return String{Value: string(b)}, nil
}

// stringify renders a value for interpolation: strings drop their quotes,
// everything else uses its Inspect form.
func stringify(v Value) string {
	if s, ok := v.(String); ok {
		return s.Value
	}
	return v.Inspect()
}

func evalObjectFieldList(fields []ast.ObjectField, env *Environment, ec *EvalContext) ([]Field, *errors.SourceError) {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		key := f.Key
		if f.KeyExpr != nil {
			kv, err := Eval(f.KeyExpr, env, ec)
			if err != nil {
				return nil, err
			}
			ks, ok := kv.(String)
			if !ok {
				return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, f.KeyLocation,
					"dynamic object key must be a string").WithPayload(errors.TypeMismatchPayload{Expected: string(KindString), Found: string(kv.Kind())}))
			}
			key = ks.Value
		}
		out = append(out, Field{Key: key, Value: NewThunk(f.Value, env, ec), IsPatch: f.IsPatch})
	}
	return out, nil
}

func evalObject(n *ast.Object, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	fields, err := evalObjectFieldList(n.Fields, env, ec)
	if err != nil {
		return nil, err
	}
	// buildObjectLiteral, not mergeObjects against an empty base: a patch
	// field here (e.g. `{ user { age: 2 } }`) has no base yet to patch, and
	// must still evaluate, retaining its patch intent for a later `&` or
	// `base { … }` to apply (spec §4.3 scenarios 4 & 14).
	obj, err := buildObjectLiteral(fields, ec, n.Location)
	if err != nil {
		return nil, err
	}
	obj.Doc = n.ModuleDoc
	return obj, nil
}

func evalObjectExtend(n *ast.ObjectExtend, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	baseVal, err := Eval(n.Base, env, ec)
	if err != nil {
		return nil, err
	}
	base, ok := baseVal.(*Object)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Base.Loc(),
			"object-extend base must be an object").WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: string(baseVal.Kind())}))
	}
	patch, err := evalObjectFieldList(n.Fields, env, ec)
	if err != nil {
		return nil, err
	}
	return mergeObjects(base, patch, ec, n.Location)
}

func evalArray(n *ast.Array, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	var elements []*Thunk
	for _, el := range n.Elements {
		switch el.Kind {
		case ast.ElemNormal:
			elements = append(elements, NewThunk(el.Expr, env, ec))
		case ast.ElemSpread:
			v, err := Eval(el.Expr, env, ec)
			if err != nil {
				return nil, err
			}
			arr, ok := v.(Array)
			if !ok {
				return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, el.Expr.Loc(),
					"spread element must be an array").WithPayload(errors.TypeMismatchPayload{Expected: string(KindArray), Found: string(v.Kind())}))
			}
			elements = append(elements, arr.Elements...)
		case ast.ElemConditionalIf, ast.ElemConditionalUnless:
			cv, err := Eval(el.Cond, env, ec)
			if err != nil {
				return nil, err
			}
			b, ok := Truthy(cv)
			if !ok {
				return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, el.Cond.Loc(),
					"conditional array element condition must be a boolean"))
			}
			include := b
			if el.Kind == ast.ElemConditionalUnless {
				include = !b
			}
			if include {
				elements = append(elements, NewThunk(el.Expr, env, ec))
			}
		}
	}
	return Array{Elements: elements}, nil
}

func evalTuple(n *ast.Tuple, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	elements := make([]*Thunk, len(n.Elements))
	for i, e := range n.Elements {
		elements[i] = NewThunk(e, env, ec)
	}
	return Tuple{Elements: elements}, nil
}

func evalFieldAccess(n *ast.FieldAccess, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	ov, err := Eval(n.Object, env, ec)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(*Object)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.FieldLoc,
			"cannot access field "+n.Field+" on a "+string(ov.Kind())).
			WithPayload(errors.TypeMismatchPayload{Expected: string(KindObject), Found: string(ov.Kind())}))
	}
	t, ok := obj.Get(n.Field)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.UnknownIdentifier, n.FieldLoc,
			"object has no field "+n.Field).WithPayload(errors.UnknownIdentifierPayload{Name: n.Field}))
	}
	return t.Force()
}

func evalIndex(n *ast.Index, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	ov, err := Eval(n.Object, env, ec)
	if err != nil {
		return nil, err
	}
	iv, err := Eval(n.IndexExp, env, ec)
	if err != nil {
		return nil, err
	}
	switch o := ov.(type) {
	case Array:
		i, ok := iv.(Integer)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.IndexExp.Loc(), "array index must be an integer"))
		}
		idx := i.Value
		if idx < 0 {
			idx += int64(len(o.Elements))
		}
		if idx < 0 || idx >= int64(len(o.Elements)) {
			return nil, ec.Err.Fail(errors.New(errors.InvalidArgument, n.IndexExp.Loc(),
				"array index out of range").WithPayload(errors.InvalidArgumentPayload{Detail: "index out of range"}))
		}
		return o.Elements[idx].Force()
	case Tuple:
		i, ok := iv.(Integer)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.IndexExp.Loc(), "tuple index must be an integer"))
		}
		if i.Value < 0 || i.Value >= int64(len(o.Elements)) {
			return nil, ec.Err.Fail(errors.New(errors.InvalidArgument, n.IndexExp.Loc(), "tuple index out of range"))
		}
		return o.Elements[i.Value].Force()
	default:
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Object.Loc(),
			"cannot index a "+string(ov.Kind())))
	}
}

func evalFieldAccessor(n *ast.FieldAccessor, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	return NewNativeFn("."+joinDots(n.Fields), 1, func(ec *EvalContext, args []Value) (Value, error) {
		cur := args[0]
		for _, f := range n.Fields {
			obj, ok := cur.(*Object)
			if !ok {
				return nil, errors.New(errors.TypeMismatch, n.Location,
					"cannot access field "+f+" on a "+string(cur.Kind()))
			}
			t, ok := obj.Get(f)
			if !ok {
				return nil, errors.New(errors.UnknownIdentifier, n.Location, "object has no field "+f)
			}
			v, serr := t.Force()
			if serr != nil {
				return nil, serr
			}
			cur = v
		}
		return cur, nil
	}), nil
}

func joinDots(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += "."
		}
		out += f
	}
	return out
}

func evalFieldProjection(n *ast.FieldProjection, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	ov, err := Eval(n.Object, env, ec)
	if err != nil {
		return nil, err
	}
	obj, ok := ov.(*Object)
	if !ok {
		return nil, ec.Err.Fail(errors.New(errors.TypeMismatch, n.Object.Loc(),
			"field projection requires an object"))
	}
	fields := make([]Field, 0, len(n.Fields))
	for _, f := range n.Fields {
		t, ok := obj.Get(f)
		if !ok {
			return nil, ec.Err.Fail(errors.New(errors.UnknownIdentifier, n.Location,
				"object has no field "+f).WithPayload(errors.UnknownIdentifierPayload{Name: f}))
		}
		fields = append(fields, Field{Key: f, Value: t})
	}
	return NewObject(fields), nil
}
