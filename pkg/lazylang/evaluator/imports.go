package evaluator

import (
	"os"
	"path/filepath"

	"github.com/lazylang/lazylang/pkg/lazylang/ast"
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/parser"
)

// evalImport resolves and evaluates `import "path"` (SPEC_FULL §4.6). The
// search order is: the importing file's own directory, then the evaluation
// cwd, then each entry of ec.ModulePath, trying both the literal path and
// path+".lazy" at each step. The evaluated module value is memoized in
// ec.ModuleCache by its canonical resolved path, so importing the same
// module twice (directly or transitively) evaluates it once.
func evalImport(n *ast.ImportExpr, env *Environment, ec *EvalContext) (Value, *errors.SourceError) {
	resolved, found := resolveImport(n.Path, ec)
	if !found {
		return nil, ec.Err.Fail(errors.New(errors.ModuleNotFound, n.PathLocation,
			"module not found: "+n.Path).WithPayload(errors.ModuleNotFoundPayload{ModuleName: n.Path}))
	}

	if v, ok := ec.ModuleCache.values[resolved]; ok {
		return v, nil
	}
	if ec.ModuleCache.loading[resolved] {
		return nil, ec.Err.Fail(errors.New(errors.CycleDetected, n.PathLocation,
			"cyclic import: "+n.Path))
	}

	src, readErr := os.ReadFile(resolved)
	if readErr != nil {
		return nil, ec.Err.Fail(errors.New(errors.ModuleNotFound, n.PathLocation,
			"could not read module "+n.Path+": "+readErr.Error()).
			WithPayload(errors.ModuleNotFoundPayload{ModuleName: n.Path}))
	}
	if ec.Err.Sources != nil {
		ec.Err.Sources.Register(resolved, string(src))
	}

	moduleExpr, perr := parser.Parse(string(src), resolved)
	if perr != nil {
		return nil, ec.Err.Fail(errors.New(errors.Kind(perr.Kind), perr.Location, perr.Message).WithFile(resolved))
	}

	ec.ModuleCache.loading[resolved] = true
	moduleEc := ec.WithFile(resolved)
	v, serr := Eval(moduleExpr, StdlibEnvironment(), moduleEc)
	delete(ec.ModuleCache.loading, resolved)
	if serr != nil {
		return nil, serr
	}
	ec.ModuleCache.values[resolved] = v
	return v, nil
}

// resolveImport finds the file backing an import path, trying the literal
// path and a ".lazy"-suffixed variant at each search-order step.
func resolveImport(path string, ec *EvalContext) (string, bool) {
	var dirs []string
	if ec.File != "" {
		dirs = append(dirs, filepath.Dir(ec.File))
	}
	if ec.Cwd != "" {
		dirs = append(dirs, ec.Cwd)
	}
	if ec.ModulePath != nil {
		dirs = append(dirs, ec.ModulePath.Dirs...)
	}

	for _, dir := range dirs {
		candidate := path
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(dir, path)
		}
		if fileExists(candidate) {
			return filepath.Clean(candidate), true
		}
		withExt := candidate + ".lazy"
		if fileExists(withExt) {
			return filepath.Clean(withExt), true
		}
		if filepath.IsAbs(path) {
			break
		}
	}
	return "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
