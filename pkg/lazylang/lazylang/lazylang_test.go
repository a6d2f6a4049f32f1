package lazylang

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

func TestParseReturnsExpr(t *testing.T) {
	expr, err := Parse("1 + 2", "test.lazy")
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err.Message)
	}
	if expr == nil {
		t.Fatalf("expected a non-nil expression")
	}
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("let = 1; x", "test.lazy")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	v, err := Evaluate("1 + 2 * 3", "test.lazy", ".")
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	out, ferr := Format(v, StylePretty)
	if ferr != nil {
		t.Fatalf("unexpected format error: %s", ferr.Message)
	}
	if out != "7" {
		t.Fatalf("expected 7, got %q", out)
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	_, err := Evaluate("doesNotExist", "test.lazy", ".")
	if err == nil {
		t.Fatalf("expected a runtime error")
	}
	if !strings.Contains(err.Error(), "doesNotExist") {
		t.Fatalf("expected error to mention the identifier, got %q", err.Error())
	}
}

func TestForceAndProject(t *testing.T) {
	v, err := Evaluate(`{ name: "ok", nested: { count: 3 } }`, "test.lazy", ".")
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	name, perr := ForceAndProject(v, "name")
	if perr != nil {
		t.Fatalf("unexpected project error: %s", perr.Message)
	}
	out, ferr := Format(name, StylePretty)
	if ferr != nil {
		t.Fatalf("unexpected format error: %s", ferr.Message)
	}
	if out != `"ok"` {
		t.Fatalf("expected quoted ok, got %q", out)
	}
}

func TestForceAndProjectMissingFieldError(t *testing.T) {
	v, err := Evaluate(`{ name: "ok" }`, "test.lazy", ".")
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	if _, perr := ForceAndProject(v, "missing"); perr == nil {
		t.Fatalf("expected an error projecting a missing field")
	}
}

func TestForceAndProjectNonObjectError(t *testing.T) {
	v, err := Evaluate("1", "test.lazy", ".")
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	if _, perr := ForceAndProject(v, "field"); perr == nil {
		t.Fatalf("expected an error projecting a field from a non-object")
	}
}

func TestFormatStyles(t *testing.T) {
	v, err := Evaluate(`{ a: 1 }`, "test.lazy", ".")
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	pretty, ferr := Format(v, StylePretty)
	if ferr != nil || pretty != "{ a: 1 }" {
		t.Fatalf("expected pretty { a: 1 }, got %q err=%v", pretty, ferr)
	}
	asJSON, ferr := Format(v, StyleJSON)
	if ferr != nil || !strings.Contains(asJSON, `"a": 1`) {
		t.Fatalf("expected json with a:1, got %q err=%v", asJSON, ferr)
	}
	asYAML, ferr := Format(v, StyleYAML)
	if ferr != nil || !strings.Contains(asYAML, "a: 1") {
		t.Fatalf("expected yaml with a: 1, got %q err=%v", asYAML, ferr)
	}
}

func TestEvaluateWithLoggerCapturesPrint(t *testing.T) {
	logger := NewBufferedLogger()
	_, err := Evaluate(`print "hello"`, "test.lazy", ".", WithLogger(logger))
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	if !strings.Contains(logger.String(), "hello") {
		t.Fatalf("expected buffered logger to capture print output, got %q", logger.String())
	}
}

func TestEvaluateWithModulePathResolvesImport(t *testing.T) {
	dir := t.TempDir()
	modFile := filepath.Join(dir, "double.lazy")
	if err := os.WriteFile(modFile, []byte(`\n -> n * 2`), 0o644); err != nil {
		t.Fatalf("writing module file: %v", err)
	}

	src := `(import "double") 21`
	v, err := Evaluate(src, "main.lazy", ".", WithModulePath(dir))
	if err != nil {
		t.Fatalf("unexpected eval error: %s", err.Message)
	}
	out, ferr := Format(v, StylePretty)
	if ferr != nil {
		t.Fatalf("unexpected format error: %s", ferr.Message)
	}
	if out != "42" {
		t.Fatalf("expected 42, got %q", out)
	}
}

func TestEvaluateSharedSourceRegistryAcrossCalls(t *testing.T) {
	reg := errors.NewSourceRegistry()
	_, err1 := Evaluate("1 + 1", "<repl:1>", ".", WithSourceRegistry(reg))
	if err1 != nil {
		t.Fatalf("unexpected eval error: %s", err1.Message)
	}
	_, err2 := Evaluate("doesNotExist", "<repl:2>", ".", WithSourceRegistry(reg))
	if err2 == nil {
		t.Fatalf("expected an error on the second evaluation")
	}
	if _, ok := reg.Get("<repl:1>"); !ok {
		t.Fatalf("expected the shared registry to hold the first call's source")
	}
	if _, ok := reg.Get("<repl:2>"); !ok {
		t.Fatalf("expected the shared registry to hold the second call's source")
	}
}
