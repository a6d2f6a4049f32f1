package format

import (
	"gopkg.in/yaml.v3"

	"github.com/lazylang/lazylang/pkg/lazylang/errors"
	"github.com/lazylang/lazylang/pkg/lazylang/evaluator"
)

// formatYAML renders v as YAML, grounded on the teacher's encodeYAML
// (pkg/parsley/evaluator/eval_encoders.go), sharing evaluator.ValueToGo
// with formatJSON and the Json/Yaml stdlib modules.
func formatYAML(v evaluator.Value) (string, *errors.SourceError) {
	g, err := evaluator.ValueToGo(v)
	if err != nil {
		return "", asSourceError(err)
	}
	b, yerr := yaml.Marshal(g)
	if yerr != nil {
		return "", errors.New(errors.TypeMismatch, errors.Location{}, "cannot encode value as yaml: "+yerr.Error())
	}
	return string(b), nil
}
