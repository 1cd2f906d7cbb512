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

package condition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConditionTestSuite struct {
	suite.Suite
	vars map[string]interface{}
}

func TestConditionSuite(t *testing.T) {
	suite.Run(t, new(ConditionTestSuite))
}

func (suite *ConditionTestSuite) SetupTest() {
	suite.vars = map[string]interface{}{
		"battery":  64,
		"altitude": 12.5,
		"status":   "ready",
		"armed":    true,
		"drone": map[string]interface{}{
			"battery": 30,
			"sensors": []interface{}{"camera", "lidar"},
		},
	}
}

func (suite *ConditionTestSuite) TestEvaluate() {
	testCases := []struct {
		name     string
		expr     string
		expected bool
	}{
		{"NumberComparison", "battery > 20", true},
		{"NumberComparisonFalse", "battery < 20", false},
		{"FloatComparison", "altitude >= 12.5", true},
		{"StringEquality", `status == "ready"`, true},
		{"StringInequality", `status != "ready"`, false},
		{"BoolVariable", "armed", true},
		{"Negation", "!armed", false},
		{"And", `armed && status == "ready"`, true},
		{"Or", "battery < 10 || altitude > 10", true},
		{"Arithmetic", "battery - 60 == 4", true},
		{"Parentheses", "(battery > 100 || armed) && !(altitude < 0)", true},
		{"NestedAttribute", "drone.battery < battery", true},
		{"IndexTraversal", `drone.sensors[1] == "lidar"`, true},
		{"Literal", "true", true},
		{"LiteralFalse", "false", false},
		{"Whitespace", "  battery == 64  ", true},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			result, err := Evaluate(tc.expr, suite.vars)
			require.NoError(suite.T(), err)
			assert.Equal(suite.T(), tc.expected, result)
		})
	}
}

func (suite *ConditionTestSuite) TestEvaluateErrors() {
	testCases := []struct {
		name   string
		expr   string
		reason string
	}{
		{"Empty", "", "expression is empty"},
		{"Blank", "   ", "expression is empty"},
		{"Syntax", "battery >", "syntax error"},
		{"NonBoolean", "battery + 1", "result is number, not bool"},
		{"StringResult", "status", "result is string, not bool"},
		{"UnknownVariable", "fuel > 10", "evaluation failed"},
		{"FunctionCall", `upper(status) == "READY"`, "unsupported construct"},
		{"Interpolation", `"${status}" == "ready"`, "unsupported construct"},
		{"ForExpression", "[for s in drone.sensors : s]", "unsupported construct"},
		{"Conditional", "armed ? true : false", "unsupported construct"},
		{"TypeMismatch", "armed && battery", "evaluation failed"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := Evaluate(tc.expr, suite.vars)

			var condErr *ConditionEvaluationError
			require.True(suite.T(), errors.As(err, &condErr), "expected ConditionEvaluationError, got %v", err)
			assert.Equal(suite.T(), tc.expr, condErr.Expression)
			assert.Equal(suite.T(), tc.reason, condErr.Reason)
		})
	}
}

func (suite *ConditionTestSuite) TestUnserializableVariable() {
	_, err := Evaluate("callback", map[string]interface{}{"callback": func() {}})

	var condErr *ConditionEvaluationError
	require.True(suite.T(), errors.As(err, &condErr))
	assert.Equal(suite.T(), "unusable variable", condErr.Reason)
	assert.NotNil(suite.T(), errors.Unwrap(err))
}

func (suite *ConditionTestSuite) TestParsePolicy() {
	policy, err := ParsePolicy("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), FailOpen, policy)

	policy, err = ParsePolicy("FAIL_CLOSED")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), FailClosed, policy)

	_, err = ParsePolicy("fail_sideways")
	assert.Error(suite.T(), err)
}

func (suite *ConditionTestSuite) TestDecideLegitimateFalse() {
	for _, policy := range []Policy{FailOpen, FailClosed} {
		decision := NewEvaluator(policy).Decide("n1", "battery < 20", suite.vars)

		assert.False(suite.T(), decision.Proceed)
		assert.NoError(suite.T(), decision.Err)
	}
}

func (suite *ConditionTestSuite) TestDecideBrokenConditionFailOpen() {
	evaluator := NewEvaluator("")
	assert.Equal(suite.T(), FailOpen, evaluator.Policy())

	decision := evaluator.Decide("n1", "fuel > 10", suite.vars)

	assert.True(suite.T(), decision.Proceed)
	assert.Error(suite.T(), decision.Err)
}

func (suite *ConditionTestSuite) TestDecideBrokenConditionFailClosed() {
	decision := NewEvaluator(FailClosed).Decide("n1", "battery +", suite.vars)

	assert.False(suite.T(), decision.Proceed)
	var condErr *ConditionEvaluationError
	assert.True(suite.T(), errors.As(decision.Err, &condErr))
}

func (suite *ConditionTestSuite) TestDecideTrue() {
	decision := NewEvaluator(FailClosed).Decide("n1", "armed", suite.vars)

	assert.True(suite.T(), decision.Proceed)
	assert.NoError(suite.T(), decision.Err)
}
