package format

import (
	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
)

// Style selects one of Format's three renderings (SPEC_FULL §6).
type Style int

const (
	// StylePretty renders v as a lazylang literal, the same syntax it
	// would be written back in.
	StylePretty Style = iota
	// StyleJSON renders v as indented JSON.
	StyleJSON
	// StyleYAML renders v as YAML.
	StyleYAML
)

// Format renders an evaluated value in the requested style. Forcing a
// thunk Format reaches that fails (a crash, a cycle) surfaces as a
// *errors.SourceError rather than panicking.
func Format(v evaluator.Value, style Style) (string, *errors.SourceError) {
	switch style {
	case StyleJSON:
		return formatJSON(v)
	case StyleYAML:
		return formatYAML(v)
	default:
		return formatPretty(v)
	}
}
