package format

import (
	"encoding/json"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
)

// formatJSON renders v as indented JSON, sharing the Value-to-Go conversion
// the Json stdlib module uses (evaluator.ValueToGo), grounded on the
// teacher's encodeJSON (pkg/parsley/evaluator/eval_encoders.go).
func formatJSON(v evaluator.Value) (string, *errors.SourceError) {
	g, err := evaluator.ValueToGo(v)
	if err != nil {
		return "", asSourceError(err)
	}
	b, jerr := json.MarshalIndent(g, "", "  ")
	if jerr != nil {
		return "", errors.New(errors.TypeMismatch, errors.Location{}, "cannot encode value as json: "+jerr.Error())
	}
	return string(b), nil
}

// asSourceError converts a generic error returned by forcing a thunk deep
// inside ValueToGo back into a *errors.SourceError; ValueToGo only ever
// returns nil or a *errors.SourceError produced by Thunk.Force, so the
// assertion always succeeds when err is non-nil.
func asSourceError(err error) *errors.SourceError {
	if se, ok := err.(*errors.SourceError); ok {
		return se
	}
	return errors.New(errors.TypeMismatch, errors.Location{}, err.Error())
}
