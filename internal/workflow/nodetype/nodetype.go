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

// Package nodetype holds the registry of workflow node types and their capabilities.
package nodetype

import (
	"time"

	"github.com/skyforge/missionflow/internal/validation"
)

// Category groups node types for palettes and reporting.
type Category string

const (
	CategoryControl   Category = "control"
	CategoryFlight    Category = "flight"
	CategoryMovement  Category = "movement"
	CategorySensor    Category = "sensor"
	CategoryVision    Category = "vision"
	CategoryAI        Category = "ai"
	CategoryLogic     Category = "logic"
	CategoryChallenge Category = "challenge"
)

// DefaultEstimatedDuration is the duration estimate of node types without a declared estimate.
const DefaultEstimatedDuration = time.Second

// Type declares a node type and the capabilities the scheduler relies on.
type Type struct {
	Name     string   `json:"name"`
	Label    string   `json:"label,omitempty"`
	Category Category `json:"category"`
	// Cacheable allows results to be served from the result cache. Side-effecting types stay false.
	Cacheable bool `json:"cacheable"`
	// ContinueOnFail records a failure instead of aborting the run.
	ContinueOnFail bool `json:"continueOnFail"`
	// IsCondition marks branch nodes whose condition gates their dispatch.
	IsCondition bool `json:"isCondition"`
	// ToleratesMissingInputs lets a node run even when every upstream dependency was skipped.
	ToleratesMissingInputs bool `json:"toleratesMissingInputs"`
	IsStart                bool `json:"isStart"`
	IsEnd                  bool `json:"isEnd"`
	// Timeout bounds one dispatch. Zero means the scheduler default.
	Timeout           time.Duration                `json:"timeout,omitempty"`
	EstimatedDuration time.Duration                `json:"estimatedDuration"`
	Parameters        []validation.ParameterSchema `json:"parameters,omitempty"`
}

// Estimate returns the static duration estimate of the type.
func (t Type) Estimate() time.Duration {
	if t.EstimatedDuration <= 0 {
		return DefaultEstimatedDuration
	}
	return t.EstimatedDuration
}
