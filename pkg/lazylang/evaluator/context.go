package evaluator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
)

// Logger is the interface behind the `print`/`debug` built-ins (SPEC_FULL
// §10), grounded directly on pkg/parsley/evaluator.Logger (teacher).
type Logger interface {
	Log(values ...any)
	LogLine(values ...any)
}

// defaultStdoutLogger writes straight to stdout, mirroring the teacher's
// default Logger implementation (pkg/parsley/evaluator/evaluator.go).
type defaultStdoutLogger struct{}

func (defaultStdoutLogger) Log(values ...any)     { fmt.Print(values...) }
func (defaultStdoutLogger) LogLine(values ...any)  { fmt.Println(values...) }

// DefaultLogger is used by EvalContext when no Logger option overrides it.
var DefaultLogger Logger = defaultStdoutLogger{}

// ModulePath is the search list consulted by `import` once the importing
// file's own directory and the evaluation cwd have both missed
// (SPEC_FULL §4.6): split on os.PathListSeparator, empty segments dropped,
// with a trailing default of "stdlib/lib".
type ModulePath struct {
	Dirs []string
}

// NewModulePath builds the search list from the LAZYLANG_PATH environment
// variable (or an explicit override), appending the default stdlib
// directory.
func NewModulePath(raw string) *ModulePath {
	if raw == "" {
		raw = os.Getenv("LAZYLANG_PATH")
	}
	var dirs []string
	for _, seg := range strings.Split(raw, string(os.PathListSeparator)) {
		if seg != "" {
			dirs = append(dirs, seg)
		}
	}
	dirs = append(dirs, filepath.Join("stdlib", "lib"))
	return &ModulePath{Dirs: dirs}
}

// ModuleCache memoizes evaluated import bodies by canonical resolved path
// (spec §4.3 "memoize the resulting value per canonical resolved path").
type ModuleCache struct {
	values map[string]Value
	// loading guards against re-entrant imports of the same path, which
	// would otherwise re-enter Eval instead of surfacing CycleDetected.
	loading map[string]bool
}

func NewModuleCache() *ModuleCache {
	return &ModuleCache{values: map[string]Value{}, loading: map[string]bool{}}
}

// EvalContext is threaded through every Eval call: the mutable error
// context, the current file (for relative import resolution), the
// evaluation working directory, the module search path and cache, and the
// logger for print/debug. Unlike Environment it is shared by reference
// across an entire top-level evaluation — only File changes as imports are
// entered, via WithFile.
type EvalContext struct {
	Err         *errors.Context
	File        string
	Cwd         string
	ModulePath  *ModulePath
	ModuleCache *ModuleCache
	Logger      Logger
}

// WithFile returns a shallow copy of ec with File set to the resolved path
// of an imported module, so thunks created while evaluating that module
// resolve their own nested imports relative to it.
func (ec *EvalContext) WithFile(file string) *EvalContext {
	c := *ec
	c.File = file
	return &c
}
