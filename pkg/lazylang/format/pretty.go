package format

import (
	"strconv"
	"strings"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
)

// formatPretty renders v as a lazylang literal, forcing every thunk it
// reaches (an un-demanded cyclic thunk that formatPretty forces is a real
// error here, unlike Inspect's lazy preview — Format is meant to show the
// fully realized result of a program).
func formatPretty(v evaluator.Value) (string, *errors.SourceError) {
	p := newPrinter()
	if err := p.formatValue(v); err != nil {
		return "", err
	}
	return p.String(), nil
}

// formatInline renders v with a fresh printer at indent 0, used only to
// measure whether a container's elements fit on one line. If v is itself a
// large container, formatValue already chose multiline for it, so the
// measured string contains a newline and fitsInThreshold correctly forces
// the parent multiline too.
func formatInline(v evaluator.Value) (string, *errors.SourceError) {
	p := newPrinter()
	if err := p.formatValue(v); err != nil {
		return "", err
	}
	return p.String(), nil
}

func (p *printer) formatValue(v evaluator.Value) *errors.SourceError {
	switch val := v.(type) {
	case evaluator.String:
		p.write(strconv.Quote(val.Value))
		return nil
	case evaluator.Array:
		return p.formatArray(val)
	case evaluator.Tuple:
		return p.formatTuple(val)
	case *evaluator.Object:
		return p.formatObject(val)
	default:
		// Integer, Float, Boolean, Null, Symbol, Function, NativeFn,
		// OperatorFn all have a sufficient Inspect() already.
		p.write(v.Inspect())
		return nil
	}
}

func (p *printer) formatArray(v evaluator.Array) *errors.SourceError {
	if len(v.Elements) == 0 {
		p.write("[]")
		return nil
	}
	forced := make([]evaluator.Value, len(v.Elements))
	parts := make([]string, len(v.Elements))
	for i, t := range v.Elements {
		ev, err := t.Force()
		if err != nil {
			return err
		}
		forced[i] = ev
		s, err2 := formatInline(ev)
		if err2 != nil {
			return err2
		}
		parts[i] = s
	}
	inline := "[" + strings.Join(parts, ", ") + "]"
	if fitsInThreshold(inline, ArrayThreshold) {
		p.write(inline)
		return nil
	}
	p.write("[")
	p.newline()
	p.indentInc()
	for i, ev := range forced {
		p.writeIndent()
		if err := p.formatValue(ev); err != nil {
			return err
		}
		if TrailingCommaMultiline || i < len(forced)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("]")
	return nil
}

func (p *printer) formatTuple(v evaluator.Tuple) *errors.SourceError {
	if len(v.Elements) == 0 {
		p.write("()")
		return nil
	}
	forced := make([]evaluator.Value, len(v.Elements))
	parts := make([]string, len(v.Elements))
	for i, t := range v.Elements {
		ev, err := t.Force()
		if err != nil {
			return err
		}
		forced[i] = ev
		s, err2 := formatInline(ev)
		if err2 != nil {
			return err2
		}
		parts[i] = s
	}
	inline := "(" + strings.Join(parts, ", ") + ")"
	if fitsInThreshold(inline, ArrayThreshold) {
		p.write(inline)
		return nil
	}
	p.write("(")
	p.newline()
	p.indentInc()
	for i, ev := range forced {
		p.writeIndent()
		if err := p.formatValue(ev); err != nil {
			return err
		}
		if TrailingCommaMultiline || i < len(forced)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write(")")
	return nil
}

func (p *printer) formatObject(v *evaluator.Object) *errors.SourceError {
	if len(v.Fields) == 0 {
		p.write("{}")
		return nil
	}
	forced := make([]evaluator.Value, len(v.Fields))
	parts := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		ev, err := f.Value.Force()
		if err != nil {
			return err
		}
		forced[i] = ev
		s, err2 := formatInline(ev)
		if err2 != nil {
			return err2
		}
		parts[i] = formatKey(f.Key) + ": " + s
	}
	inline := "{ " + strings.Join(parts, ", ") + " }"
	if fitsInThreshold(inline, DictThreshold) {
		p.write(inline)
		return nil
	}
	p.write("{")
	p.newline()
	p.indentInc()
	for i, f := range v.Fields {
		p.writeIndent()
		p.write(formatKey(f.Key))
		p.write(": ")
		if err := p.formatValue(forced[i]); err != nil {
			return err
		}
		if TrailingCommaMultiline || i < len(v.Fields)-1 {
			p.write(",")
		}
		p.newline()
	}
	p.indentDec()
	p.writeIndent()
	p.write("}")
	return nil
}

// formatKey renders an object key bare when it is a valid lazylang
// identifier, quoted otherwise.
func formatKey(key string) string {
	if isValidIdentifier(key) {
		return key
	}
	return strconv.Quote(key)
}

func isValidIdentifier(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isLetter(r) {
				return false
			}
		} else if !isLetter(r) && !isDigit(r) {
			return false
		}
	}
	return true
}

func isLetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
