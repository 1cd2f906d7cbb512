/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package condition evaluates the boolean expressions guarding condition nodes and
// conditional edges, and applies the configured policy when an expression is broken.
package condition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ConditionEvaluationError reports an expression that could not produce a boolean.
type ConditionEvaluationError struct {
	Expression string
	Reason     string
	Cause      error
}

func (e *ConditionEvaluationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("condition %q: %s: %v", e.Expression, e.Reason, e.Cause)
	}
	return fmt.Sprintf("condition %q: %s", e.Expression, e.Reason)
}

func (e *ConditionEvaluationError) Unwrap() error {
	return e.Cause
}

// Evaluate parses expr and evaluates it against vars. Only literals, variable references,
// comparison, arithmetic and logical operators and parentheses are accepted.
func Evaluate(expr string, vars map[string]interface{}) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "expression is empty"}
	}

	parsed, diags := hclsyntax.ParseExpression([]byte(expr), "condition", hcl.InitialPos)
	if diags.HasErrors() {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "syntax error", Cause: diags}
	}

	if err := checkGrammar(parsed); err != nil {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "unsupported construct", Cause: err}
	}

	ctx, err := evalContext(parsed, vars)
	if err != nil {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "unusable variable", Cause: err}
	}

	value, diags := parsed.Value(ctx)
	if diags.HasErrors() {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "evaluation failed", Cause: diags}
	}
	if !value.IsKnown() || value.IsNull() {
		return false, &ConditionEvaluationError{Expression: expr, Reason: "result is null"}
	}
	if !value.Type().Equals(cty.Bool) {
		return false, &ConditionEvaluationError{
			Expression: expr,
			Reason:     fmt.Sprintf("result is %s, not bool", value.Type().FriendlyName()),
		}
	}
	return value.True(), nil
}

// checkGrammar rejects every node outside the allowed subset of the expression language.
func checkGrammar(expr hclsyntax.Expression) error {
	var rejected error
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if rejected != nil {
			return nil
		}
		switch n := node.(type) {
		case *hclsyntax.LiteralValueExpr, *hclsyntax.ScopeTraversalExpr, *hclsyntax.BinaryOpExpr,
			*hclsyntax.UnaryOpExpr, *hclsyntax.ParenthesesExpr:
		case *hclsyntax.TemplateExpr:
			if !n.IsStringLiteral() {
				rejected = errors.New("string interpolation is not allowed")
			}
		case *hclsyntax.FunctionCallExpr:
			rejected = fmt.Errorf("function call %q is not allowed", n.Name)
		default:
			rejected = fmt.Errorf("%T is not allowed", node)
		}
		return nil
	})
	return rejected
}

// evalContext exposes the variables referenced by expr as cty values.
func evalContext(expr hclsyntax.Expression, vars map[string]interface{}) (*hcl.EvalContext, error) {
	values := make(map[string]cty.Value)
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if _, done := values[name]; done {
			continue
		}
		raw, ok := vars[name]
		if !ok {
			// Left out so evaluation reports an unknown variable.
			continue
		}
		value, err := toCty(raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		values[name] = value
	}
	return &hcl.EvalContext{Variables: values}, nil
}

func toCty(v interface{}) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, err
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}
