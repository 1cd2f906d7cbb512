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

package nodetype

import (
	"go.uber.org/multierr"

	"github.com/skyforge/missionflow/internal/validation"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

// ValidateNode checks the parameters of one node against its type's schemas.
// It returns nil when the node is valid.
func (r *Registry) ValidateNode(node model.WorkflowNode) *validation.ParameterValidationError {
	verr := validation.ValidateParameters(r.Get(node.NodeType).Parameters, node.Parameters)
	if verr == nil {
		return nil
	}
	verr.NodeID = node.ID
	verr.NodeType = node.NodeType
	return verr
}

// ValidateParameters checks every node of the definition and combines the violations of all
// invalid nodes, one *validation.ParameterValidationError per node.
func (r *Registry) ValidateParameters(def *model.WorkflowDefinition) error {
	var err error
	for _, node := range def.Nodes {
		if verr := r.ValidateNode(node); verr != nil {
			err = multierr.Append(err, verr)
		}
	}
	return err
}
