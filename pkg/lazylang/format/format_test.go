package format

import (
	"strings"
	"testing"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
	"github.com/lazylang/lazylang/pkg/lazylang/parser"
)

// testEval parses and evaluates src, mirroring the wiring in
// pkg/lazylang/lazylang.Evaluate, so format tests exercise real evaluator
// values rather than hand-built ones.
func testEval(t *testing.T, src string) evaluator.Value {
	t.Helper()
	expr, perr := parser.Parse(src, "test.lazy")
	if perr != nil {
		t.Fatalf("parse error: %s: %s", perr.Kind, perr.Message)
	}
	ctx := errors.NewContext("test.lazy")
	ec := &evaluator.EvalContext{
		Err:         ctx,
		File:        "test.lazy",
		Cwd:         ".",
		ModulePath:  evaluator.NewModulePath(""),
		ModuleCache: evaluator.NewModuleCache(),
		Logger:      evaluator.DefaultLogger,
	}
	v, err := evaluator.Eval(expr, evaluator.StdlibEnvironment(), ec)
	if err != nil {
		t.Fatalf("eval error for %q: %s: %s", src, err.Kind, err.Message)
	}
	return v
}

func mustFormat(t *testing.T, v evaluator.Value, style Style) string {
	t.Helper()
	out, err := Format(v, style)
	if err != nil {
		t.Fatalf("format error: %s: %s", err.Kind, err.Message)
	}
	return out
}

func TestFormatPrettyScalars(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"1.5", "1.5"},
		{"true", "true"},
		{"null", "null"},
		{`"hello"`, `"hello"`},
	}
	for _, tt := range tests {
		v := testEval(t, tt.src)
		got := mustFormat(t, v, StylePretty)
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.src, tt.want, got)
		}
	}
}

func TestFormatPrettySmallArrayInline(t *testing.T) {
	v := testEval(t, "[1, 2, 3]")
	got := mustFormat(t, v, StylePretty)
	if got != "[1, 2, 3]" {
		t.Fatalf("expected inline array, got %q", got)
	}
}

func TestFormatPrettyLargeArrayMultiline(t *testing.T) {
	// Long enough element strings push the joined inline form past
	// ArrayThreshold, forcing one element per line.
	v := testEval(t, `["aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", "cccccccccccccccc", "dddddddddddddddd"]`)
	got := mustFormat(t, v, StylePretty)
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected multiline array, got %q", got)
	}
	if !strings.HasSuffix(strings.TrimRight(got, "\n"), "]") {
		t.Fatalf("expected array to close on its own line, got %q", got)
	}
	if !strings.Contains(got, "\t\"aaaaaaaaaaaaaaaa\",\n") {
		t.Fatalf("expected indented, comma-terminated first element, got %q", got)
	}
}

func TestFormatPrettyEmptyArray(t *testing.T) {
	v := testEval(t, "[]")
	if got := mustFormat(t, v, StylePretty); got != "[]" {
		t.Fatalf("expected [], got %q", got)
	}
}

func TestFormatPrettyObjectInline(t *testing.T) {
	v := testEval(t, `{ name: "ok", count: 1 }`)
	got := mustFormat(t, v, StylePretty)
	if got != `{ name: "ok", count: 1 }` {
		t.Fatalf("expected inline object, got %q", got)
	}
}

func TestFormatPrettyObjectQuotesInvalidKeys(t *testing.T) {
	v := testEval(t, `{ ["not-an-identifier"]: 1 }`)
	got := mustFormat(t, v, StylePretty)
	if got != `{ "not-an-identifier": 1 }` {
		t.Fatalf("expected quoted key, got %q", got)
	}
}

func TestFormatPrettyNestedContainerForcesParentMultiline(t *testing.T) {
	// The nested array is itself large enough to go multiline, which must
	// propagate outward and force the enclosing array multiline too.
	v := testEval(t, `[["aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", "cccccccccccccccc", "dddddddddddddddd"], 1]`)
	got := mustFormat(t, v, StylePretty)
	if !strings.Contains(got, "\n") {
		t.Fatalf("expected outer array to go multiline, got %q", got)
	}
}

func TestFormatPrettyTuple(t *testing.T) {
	v := testEval(t, "(1, 2, 3)")
	got := mustFormat(t, v, StylePretty)
	if got != "(1, 2, 3)" {
		t.Fatalf("expected inline tuple, got %q", got)
	}
}

func TestFormatJSON(t *testing.T) {
	v := testEval(t, `{ a: 1, b: [1, 2] }`)
	got := mustFormat(t, v, StyleJSON)
	if !strings.Contains(got, `"a": 1`) || !strings.Contains(got, `"b": [`) {
		t.Fatalf("expected indented json, got %q", got)
	}
}

func TestFormatYAML(t *testing.T) {
	v := testEval(t, `{ a: 1, b: 2 }`)
	got := mustFormat(t, v, StyleYAML)
	if !strings.Contains(got, "a: 1") || !strings.Contains(got, "b: 2") {
		t.Fatalf("expected yaml mapping, got %q", got)
	}
}

func TestFormatFunctionFallsBackToInspect(t *testing.T) {
	v := testEval(t, `\n -> n * n`)
	got := mustFormat(t, v, StylePretty)
	if got != "<function>" {
		t.Fatalf("expected <function> placeholder, got %q", got)
	}
}
