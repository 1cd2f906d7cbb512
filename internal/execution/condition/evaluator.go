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
	"fmt"
	"strings"

	"github.com/skyforge/missionflow/internal/system/log"
)

const loggerComponentName = "ConditionEvaluator"

// Policy decides the outcome of a condition that cannot be evaluated.
type Policy string

const (
	// FailOpen treats a broken condition as true.
	FailOpen Policy = "fail_open"
	// FailClosed treats a broken condition as false.
	FailClosed Policy = "fail_closed"
)

// ParsePolicy converts a configured policy name. An empty name yields FailOpen.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", FailOpen:
		return FailOpen, nil
	case FailClosed:
		return FailClosed, nil
	default:
		return "", fmt.Errorf("unknown condition policy %q", name)
	}
}

// Decision is the outcome of a guarded condition.
type Decision struct {
	Proceed bool
	// Err is set when the expression was broken and the policy decided the outcome.
	Err error
}

// Evaluator applies a policy on top of Evaluate.
type Evaluator struct {
	policy Policy
	logger *log.Logger
}

// NewEvaluator creates an evaluator with the given policy.
func NewEvaluator(policy Policy) *Evaluator {
	if policy == "" {
		policy = FailOpen
	}
	return &Evaluator{
		policy: policy,
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Policy returns the policy in effect.
func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Decide evaluates expr for the given node. A broken expression is logged as a warning and
// resolved by the policy; a legitimate false is logged at debug level.
func (e *Evaluator) Decide(nodeID, expr string, vars map[string]interface{}) Decision {
	ok, err := Evaluate(expr, vars)
	if err != nil {
		proceed := e.policy == FailOpen
		e.logger.Warn("broken condition",
			log.String(log.LoggerKeyNodeID, nodeID),
			log.String("expression", expr),
			log.String("policy", string(e.policy)),
			log.Bool("proceed", proceed),
			log.Error(err))
		return Decision{Proceed: proceed, Err: err}
	}
	if !ok {
		e.logger.Debug("Condition evaluated to false",
			log.String(log.LoggerKeyNodeID, nodeID), log.String("expression", expr))
	}
	return Decision{Proceed: ok}
}
