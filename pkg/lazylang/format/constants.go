// Package format renders evaluated lazylang values (SPEC_FULL §6's Format),
// in three styles: a pretty-printed lazylang literal, JSON, and YAML.
//
// The pretty-printer's layout rules (inline-vs-multiline thresholds,
// indentation) are ported from the teacher's source-code printer
// (pkg/parsley/format/{constants,printer,format}.go), generalized from
// formatting parsed AST/typed-object pairs to formatting this evaluator's
// Value tree directly.
package format

// MaxLineWidth is the target maximum line length; ArrayThreshold and
// DictThreshold below leave headroom under it before switching a container
// from inline to multiline rendering.
const MaxLineWidth = 92

const thresholdSmallPercent = 50

var (
	ArrayThreshold = MaxLineWidth * thresholdSmallPercent / 100
	DictThreshold  = MaxLineWidth * thresholdSmallPercent / 100
)

// IndentString is one indentation level: a tab, matching the teacher's
// gofmt-style choice of tabs for indent, spaces for alignment.
const IndentString = "\t"

// TrailingCommaMultiline adds a trailing comma to the last element of a
// multiline array or object, matching the teacher's default.
const TrailingCommaMultiline = true
