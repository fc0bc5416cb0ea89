package tool

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/habiliai/spoar/errors"
)

const calculateDescription = "Calculate a math expression. Args: expression (e.g. \"25*4+100\")."

var arithmeticPattern = regexp.MustCompile(`^[0-9\s+\-*/%().]+$`)

type CalculateRequest struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression using numbers, + - * / % ** and parentheses"`
	Expr       string `json:"expr,omitempty" jsonschema_description:"Alias of expression"`
}

// Calculate evaluates a plain arithmetic expression. Anything beyond digits,
// operators and parentheses is rejected before evaluation.
func Calculate(ctx context.Context, req CalculateRequest) (string, error) {
	expr := strings.TrimSpace(req.Expression)
	if expr == "" {
		expr = strings.TrimSpace(req.Expr)
	}
	if expr == "" {
		return "", errors.Wrapf(errors.ErrInvalidParams, "expression is required")
	}
	if !arithmeticPattern.MatchString(expr) {
		return "", errors.Wrapf(errors.ErrInvalidParams, "unsupported characters in expression %q", expr)
	}

	vm := goja.New()
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	v, err := vm.RunString(expr)
	if err != nil {
		return "", errors.Wrapf(err, "failed to evaluate %q", expr)
	}

	switch n := v.Export().(type) {
	case int64:
		return strconv.FormatInt(n, 10), nil
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return "", errors.Errorf("expression %q does not evaluate to a finite number", expr)
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	default:
		return "", errors.Errorf("expression %q does not evaluate to a number", expr)
	}
}

func RegisterCalculate(r *Registry) error {
	return RegisterFunc(r, "calculate", calculateDescription, Calculate)
}
