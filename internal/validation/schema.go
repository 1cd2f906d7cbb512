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

// Package validation validates node parameter values against typed parameter schemas.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// ParameterType is the declared type of a node parameter.
type ParameterType string

const (
	// TypeNumber is a numeric value. Numeric strings are accepted.
	TypeNumber ParameterType = "number"
	// TypeString is a single line string.
	TypeString ParameterType = "string"
	// TypeText is a multi line string.
	TypeText ParameterType = "text"
	// TypeBoolean is a boolean value.
	TypeBoolean ParameterType = "boolean"
	// TypeSelect is one value out of a fixed option list.
	TypeSelect ParameterType = "select"
	// TypeJSON is a JSON object or array, given either decoded or as a JSON string.
	TypeJSON ParameterType = "json"
	// TypeSlider is a bounded numeric value.
	TypeSlider ParameterType = "slider"
	// TypeCoordinates is a point given as {x, y[, z]} or as [x, y[, z]].
	TypeCoordinates ParameterType = "coordinates"
)

// CustomValidator checks a value after the built-in checks passed.
type CustomValidator func(value interface{}) error

// ParameterSchema declares one parameter of a node type.
type ParameterSchema struct {
	Name        string          `json:"name"`
	Label       string          `json:"label,omitempty"`
	Type        ParameterType   `json:"type"`
	Required    bool            `json:"required"`
	Min         *float64        `json:"min,omitempty"`
	Max         *float64        `json:"max,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Default     interface{}     `json:"default,omitempty"`
	Description string          `json:"description,omitempty"`
	Custom      CustomValidator `json:"-"`
}

// Float returns a pointer to v, for schema bounds.
func Float(v float64) *float64 {
	return &v
}

// ParameterValidationError collects every invalid parameter of one node, keyed by parameter name.
type ParameterValidationError struct {
	NodeID   string            `json:"nodeId,omitempty"`
	NodeType string            `json:"nodeType,omitempty"`
	Errors   map[string]string `json:"errors"`
}

func (e *ParameterValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Errors[name]))
	}

	subject := "parameters"
	if e.NodeID != "" {
		subject = fmt.Sprintf("parameters of node %q", e.NodeID)
	}
	return fmt.Sprintf("invalid %s: %s", subject, strings.Join(parts, "; "))
}
