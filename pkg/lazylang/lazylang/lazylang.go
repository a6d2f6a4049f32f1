package lazylang

import (
	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
	"github.com/lazylang/lazylang/pkg/lazylang/format"
	"github.com/lazylang/lazylang/pkg/lazylang/parser"
)

// Style selects the rendering Format produces (spec §6).
type Style = format.Style

const (
	StylePretty = format.StylePretty
	StyleJSON   = format.StyleJSON
	StyleYAML   = format.StyleYAML
)

// Format renders an evaluated value as a lazylang literal, JSON, or YAML
// (spec §6).
func Format(v evaluator.Value, style Style) (string, *errors.SourceError) {
	return format.Format(v, style)
}

// Parse parses a complete lazylang program into its expression tree
// (spec §6). filename is used only to label error locations.
func Parse(source, filename string) (ast.Expr, *errors.SourceError) {
	expr, perr := parser.Parse(source, filename)
	if perr != nil {
		return nil, errors.New(errors.Kind(perr.Kind), perr.Location, perr.Message).WithFile(filename)
	}
	return expr, nil
}

// options holds the state assembled by the functional Option values passed
// to Evaluate.
type options struct {
	logger      Logger
	modulePath  string
	sources     *errors.SourceRegistry
	moduleCache *evaluator.ModuleCache
}

// Option configures Evaluate: the Logger behind print/debug, the module
// search path, and an injected SourceRegistry so a long-lived caller (an
// LSP, a REPL) can share diagnostics across many evaluations of the same
// workspace (spec §6).
type Option func(*options)

// WithLogger overrides the Logger used for print/debug built-ins.
func WithLogger(l Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithModulePath overrides the LAZYLANG_PATH-style module search list.
func WithModulePath(path string) Option {
	return func(o *options) { o.modulePath = path }
}

// WithSourceRegistry injects a shared SourceRegistry, so error locations
// across several Evaluate calls can be resolved against one source map.
func WithSourceRegistry(reg *errors.SourceRegistry) Option {
	return func(o *options) { o.sources = reg }
}

// WithModuleCache injects a shared ModuleCache, so repeated Evaluate calls
// against the same workspace do not re-evaluate common imports.
func WithModuleCache(c *evaluator.ModuleCache) Option {
	return func(o *options) { o.moduleCache = c }
}

// Evaluate parses and evaluates a complete lazylang program (spec §6).
// filename anchors relative imports; cwd is the second entry in the import
// search order after filename's own directory (SPEC_FULL §4.6).
func Evaluate(source, filename, cwd string, opts ...Option) (evaluator.Value, *errors.SourceError) {
	expr, err := Parse(source, filename)
	if err != nil {
		return nil, err
	}

	o := options{logger: evaluator.DefaultLogger}
	for _, opt := range opts {
		opt(&o)
	}

	sources := o.sources
	if sources == nil {
		sources = errors.NewSourceRegistry()
	}
	sources.Register(filename, source)

	ctx := errors.NewContext(filename)
	ctx.Sources = sources

	moduleCache := o.moduleCache
	if moduleCache == nil {
		moduleCache = evaluator.NewModuleCache()
	}

	ec := &evaluator.EvalContext{
		Err:         ctx,
		File:        filename,
		Cwd:         cwd,
		ModulePath:  evaluator.NewModulePath(o.modulePath),
		ModuleCache: moduleCache,
		Logger:      o.logger,
	}

	env := evaluator.StdlibEnvironment()
	ctx.Reset()
	return evaluator.Eval(expr, env, ec)
}

// ForceAndProject forces v to an *Object and returns the value at field,
// forcing that field too (spec §6 — the CLI's fmt-value command builds on
// this to let a caller drill into one field of a program's result).
func ForceAndProject(v evaluator.Value, field string) (evaluator.Value, *errors.SourceError) {
	obj, ok := v.(*evaluator.Object)
	if !ok {
		return nil, errors.New(errors.TypeMismatch, errors.Location{},
			"cannot project field "+field+" from a "+string(v.Kind())).
			WithPayload(errors.TypeMismatchPayload{Expected: string(evaluator.KindObject), Found: string(v.Kind())})
	}
	t, ok := obj.Get(field)
	if !ok {
		return nil, errors.New(errors.UnknownIdentifier, errors.Location{},
			"object has no field "+field).WithPayload(errors.UnknownIdentifierPayload{Name: field})
	}
	return t.Force()
}
