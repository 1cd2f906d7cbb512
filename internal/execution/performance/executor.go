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

package performance

import (
	"context"
	"fmt"

	"github.com/skyforge/missionflow/internal/workflow/model"
)

// Executor performs the work of one node. Implementations must honour ctx cancellation;
// the manager stops waiting once ctx is done whether or not Execute returns.
type Executor interface {
	Execute(ctx context.Context, node model.WorkflowNode, vars *model.Variables) (interface{}, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, node model.WorkflowNode, vars *model.Variables) (interface{}, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, node model.WorkflowNode,
	vars *model.Variables) (interface{}, error) {
	return f(ctx, node, vars)
}

// DryRunExecutor completes every node immediately without side effects. The result echoes
// the node type and parameters so a plan can be inspected end to end.
type DryRunExecutor struct{}

// Execute implements Executor.
func (DryRunExecutor) Execute(ctx context.Context, node model.WorkflowNode, _ *model.Variables) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"simulated":  true,
		"type":       node.NodeType,
		"parameters": node.Parameters,
	}, nil
}

// safeExecute converts an executor panic into an error.
func safeExecute(ctx context.Context, exec Executor, node model.WorkflowNode,
	vars *model.Variables) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("executor panicked: %v", r)
		}
	}()
	return exec.Execute(ctx, node, vars)
}
