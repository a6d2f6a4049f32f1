package parser

import (
	"testing"

	"github.com/lazylang/lazylang/pkg/lazylang/ast"
)

func mustParse(t *testing.T, src string) ast.Expr {
	t.Helper()
	expr, err := Parse(src, "test.lazy")
	if err != nil {
		t.Fatalf("parse error: %s: %s", err.Kind, err.Message)
	}
	return expr
}

func TestParseArithmeticPrecedence(t *testing.T) {
	expr := mustParse(t, "1 + 2 * 3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpAdd {
		t.Fatalf("expected top-level +, got %T %v", expr, expr)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected right-hand side to be *, got %T %v", bin.Right, bin.Right)
	}
}

func TestParseLetBinding(t *testing.T) {
	expr := mustParse(t, "let x = 1 + 2; x * 4")
	let, ok := expr.(*ast.Let)
	if !ok {
		t.Fatalf("expected *ast.Let, got %T", expr)
	}
	if id, ok := let.Pattern.(*ast.IdentifierPattern); !ok || id.Name != "x" {
		t.Fatalf("expected pattern x, got %v", let.Pattern)
	}
	if _, ok := let.Body.(*ast.Binary); !ok {
		t.Fatalf("expected body to be a binary expr, got %T", let.Body)
	}
}

func TestParseLambda(t *testing.T) {
	expr := mustParse(t, `\n -> n * n`)
	lam, ok := expr.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected *ast.Lambda, got %T", expr)
	}
	if id, ok := lam.Param.(*ast.IdentifierPattern); !ok || id.Name != "n" {
		t.Fatalf("expected param n, got %v", lam.Param)
	}
}

func TestParseApplication(t *testing.T) {
	expr := mustParse(t, "f a b")
	outer, ok := expr.(*ast.Application)
	if !ok {
		t.Fatalf("expected *ast.Application, got %T", expr)
	}
	inner, ok := outer.Function.(*ast.Application)
	if !ok {
		t.Fatalf("expected left-associative nesting, got %T", outer.Function)
	}
	if id, ok := inner.Function.(*ast.Identifier); !ok || id.Name != "f" {
		t.Fatalf("expected innermost function to be f, got %v", inner.Function)
	}
}

func TestParseOperatorAsFunction(t *testing.T) {
	expr := mustParse(t, "(+)")
	opFn, ok := expr.(*ast.OperatorFunction)
	if !ok || opFn.Op != ast.OpAdd {
		t.Fatalf("expected operator function +, got %T %v", expr, expr)
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	expr := mustParse(t, "(1 + 2) * 3")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpMul {
		t.Fatalf("expected top-level *, got %T", expr)
	}
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Fatalf("expected parenthesized left side to be a binary expr, got %T", bin.Left)
	}
}

func TestParseTuple(t *testing.T) {
	expr := mustParse(t, "(1, 2, 3)")
	tup, ok := expr.(*ast.Tuple)
	if !ok || len(tup.Elements) != 3 {
		t.Fatalf("expected 3-tuple, got %T %v", expr, expr)
	}
}

func TestParseObjectLiteral(t *testing.T) {
	expr := mustParse(t, `{ name: "ok", count: 1 }`)
	obj, ok := expr.(*ast.Object)
	if !ok || len(obj.Fields) != 2 {
		t.Fatalf("expected 2-field object, got %T %v", expr, expr)
	}
	if obj.Fields[0].Key != "name" {
		t.Fatalf("expected first field name, got %q", obj.Fields[0].Key)
	}
}

func TestParseObjectShortFieldAndPatch(t *testing.T) {
	expr := mustParse(t, "base { port: 9000 }")
	ext, ok := expr.(*ast.ObjectExtend)
	if !ok {
		t.Fatalf("expected *ast.ObjectExtend, got %T", expr)
	}
	if id, ok := ext.Base.(*ast.Identifier); !ok || id.Name != "base" {
		t.Fatalf("expected base identifier, got %v", ext.Base)
	}

	obj, ok := mustParse(t, "{ name, user { age: 2 } }").(*ast.Object)
	if !ok || len(obj.Fields) != 2 {
		t.Fatalf("expected 2-field object, got %T %v", obj, obj)
	}
	if id, ok := obj.Fields[0].Value.(*ast.Identifier); !ok || id.Name != "name" || obj.Fields[0].IsPatch {
		t.Fatalf("expected short field name: name, got %+v", obj.Fields[0])
	}
	if obj.Fields[1].Key != "user" || !obj.Fields[1].IsPatch {
		t.Fatalf("expected patch field user, got %+v", obj.Fields[1])
	}
}

func TestParseIfThenElse(t *testing.T) {
	expr := mustParse(t, "if x > 0 then 1 else -1")
	ifExpr, ok := expr.(*ast.If)
	if !ok || ifExpr.Else == nil {
		t.Fatalf("expected if/then/else, got %T %v", expr, expr)
	}
}

func TestParseWhenMatches(t *testing.T) {
	expr := mustParse(t, `when x matches 1 then "one"; otherwise "many"`)
	wm, ok := expr.(*ast.WhenMatches)
	if !ok || len(wm.Branches) != 1 || wm.Otherwise == nil {
		t.Fatalf("expected when-matches with 1 branch + otherwise, got %T %v", expr, expr)
	}
}

func TestParseArrayComprehension(t *testing.T) {
	expr := mustParse(t, "[n * n for n in xs when n > 0]")
	comp, ok := expr.(*ast.ArrayComprehension)
	if !ok || len(comp.Clauses) != 1 || comp.Filter == nil {
		t.Fatalf("expected array comprehension with filter, got %T %v", expr, expr)
	}
}

func TestParseRangeInclusiveExclusive(t *testing.T) {
	incl := mustParse(t, "1..5")
	r, ok := incl.(*ast.Range)
	if !ok || !r.Inclusive {
		t.Fatalf("expected inclusive range, got %T %v", incl, incl)
	}
	excl := mustParse(t, "1...5")
	r2, ok := excl.(*ast.Range)
	if !ok || r2.Inclusive {
		t.Fatalf("expected exclusive range, got %T %v", excl, excl)
	}
}

func TestParseFieldAccessAndIndex(t *testing.T) {
	expr := mustParse(t, "config.server.port")
	fa, ok := expr.(*ast.FieldAccess)
	if !ok || fa.Field != "port" {
		t.Fatalf("expected trailing field port, got %T %v", expr, expr)
	}
	idx := mustParse(t, "xs[0]")
	if _, ok := idx.(*ast.Index); !ok {
		t.Fatalf("expected *ast.Index, got %T", idx)
	}
}

func TestParseFieldAccessorAndProjection(t *testing.T) {
	expr := mustParse(t, "map .name list")
	app, ok := expr.(*ast.Application)
	if !ok {
		t.Fatalf("expected application, got %T", expr)
	}
	inner, ok := app.Function.(*ast.Application)
	if !ok {
		t.Fatalf("expected nested application, got %T", app.Function)
	}
	if _, ok := inner.Argument.(*ast.FieldAccessor); !ok {
		t.Fatalf("expected field accessor argument, got %T", inner.Argument)
	}

	proj := mustParse(t, "user.{name, age}")
	fp, ok := proj.(*ast.FieldProjection)
	if !ok || len(fp.Fields) != 2 {
		t.Fatalf("expected 2-field projection, got %T %v", proj, proj)
	}
}

func TestParseMergeOperator(t *testing.T) {
	expr := mustParse(t, "base & override")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpMerge {
		t.Fatalf("expected merge operator, got %T %v", expr, expr)
	}
}

func TestParseStringInterpolation(t *testing.T) {
	expr := mustParse(t, `"hello $name, total is ${1 + 2}"`)
	interp, ok := expr.(*ast.StringInterpolation)
	if !ok {
		t.Fatalf("expected *ast.StringInterpolation, got %T", expr)
	}
	foundIdent, foundExpr := false, false
	for _, part := range interp.Parts {
		if id, ok := part.Expr.(*ast.Identifier); ok && id.Name == "name" {
			foundIdent = true
		}
		if bin, ok := part.Expr.(*ast.Binary); ok && bin.Op == ast.OpAdd {
			foundExpr = true
		}
	}
	if !foundIdent || !foundExpr {
		t.Fatalf("expected both $name and ${...} parts, got %+v", interp.Parts)
	}
}

func TestParsePlainStringHasNoInterpolation(t *testing.T) {
	expr := mustParse(t, `"just text"`)
	lit, ok := expr.(*ast.StringLiteral)
	if !ok || lit.Value != "just text" {
		t.Fatalf("expected plain string literal, got %T %v", expr, expr)
	}
}

func TestParseArrayPatternWithRest(t *testing.T) {
	expr := mustParse(t, `\[head, ...tail] -> head`)
	lam, ok := expr.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected lambda, got %T", expr)
	}
	arrPat, ok := lam.Param.(*ast.ArrayPattern)
	if !ok || arrPat.Rest != "tail" || len(arrPat.Elements) != 1 {
		t.Fatalf("expected array pattern with rest, got %v", lam.Param)
	}
}

func TestParseObjectPatternShortForm(t *testing.T) {
	expr := mustParse(t, `\{ name, age } -> name`)
	lam, ok := expr.(*ast.Lambda)
	if !ok {
		t.Fatalf("expected lambda, got %T", expr)
	}
	objPat, ok := lam.Param.(*ast.ObjectPattern)
	if !ok || len(objPat.Fields) != 2 {
		t.Fatalf("expected object pattern with 2 fields, got %v", lam.Param)
	}
}

func TestParseImport(t *testing.T) {
	expr := mustParse(t, `import "std/array"`)
	imp, ok := expr.(*ast.ImportExpr)
	if !ok || imp.Path != "std/array" {
		t.Fatalf("expected import of std/array, got %T %v", expr, expr)
	}
}

func TestParseWhereClause(t *testing.T) {
	expr := mustParse(t, "area where w = 10, h = 20")
	where, ok := expr.(*ast.WhereExpr)
	if !ok || len(where.Bindings) != 2 {
		t.Fatalf("expected where expr with 2 bindings, got %T %v", expr, expr)
	}
}

func TestParsePipelineIsLowestPrecedence(t *testing.T) {
	expr := mustParse(t, "1 + 2 \\ double")
	bin, ok := expr.(*ast.Binary)
	if !ok || bin.Op != ast.OpPipeline {
		t.Fatalf("expected top-level pipeline, got %T %v", expr, expr)
	}
	if _, ok := bin.Left.(*ast.Binary); !ok {
		t.Fatalf("expected left side to be the addition, got %T", bin.Left)
	}
}

func TestParseErrorOnUnexpectedToken(t *testing.T) {
	_, err := Parse("let = 1; x", "test.lazy")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}
