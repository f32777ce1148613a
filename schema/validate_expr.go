package schema

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// ExprValidate compiles expr once with govaluate and returns a ValidateFunc
// that evaluates it against the populated value. It lets a schema author
// write a rule as data ("age >= 0 && age <= 150") instead of a Go closure,
// while keeping the same per-field validation hook contract as a
// hand-written ValidateFunc.
//
// The expression sees the populated value under the parameter name "value"
// for a scalar slot, or its individual fields by key for a Mapping slot.
func ExprValidate(expr string) (ValidateFunc, error) {
	compiled, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("compile validation expression %q: %w", expr, err)
	}
	return func(path string, v any) bool {
		params, ok := v.(map[string]any)
		if !ok {
			params = map[string]any{"value": v}
		}
		result, err := compiled.Evaluate(params)
		if err != nil {
			return false
		}
		ok, _ = result.(bool)
		return ok
	}, nil
}
