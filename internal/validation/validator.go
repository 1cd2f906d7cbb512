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

package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
)

// ValidateParameter checks one value against its schema. Checks run in order: required, type,
// range, options, custom. The first failing check decides the message.
func ValidateParameter(schema ParameterSchema, value interface{}) error {
	if isEmpty(value) {
		if schema.Required {
			return errors.New("is required")
		}
		return nil
	}

	if err := checkType(schema.Type, value); err != nil {
		return err
	}

	if schema.Type == TypeNumber || schema.Type == TypeSlider {
		if err := checkRange(schema, value); err != nil {
			return err
		}
	}

	if schema.Type == TypeSelect {
		if err := checkOptions(schema, value); err != nil {
			return err
		}
	}

	if schema.Custom != nil {
		if err := schema.Custom(value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateParameters validates every schema against params and reports all violations at once.
// It returns nil when all parameters are valid. Parameters without a schema are ignored.
func ValidateParameters(schemas []ParameterSchema, params map[string]interface{}) *ParameterValidationError {
	var violations map[string]string
	for _, schema := range schemas {
		if err := ValidateParameter(schema, params[schema.Name]); err != nil {
			if violations == nil {
				violations = make(map[string]string)
			}
			violations[schema.Name] = err.Error()
		}
	}
	if violations == nil {
		return nil
	}
	return &ParameterValidationError{Errors: violations}
}

// ToFloat converts a number or numeric string to float64.
func ToFloat(value interface{}) (float64, error) {
	if s, ok := value.(string); ok {
		value = strings.TrimSpace(s)
	}
	if _, ok := value.(bool); ok {
		return 0, errors.New("boolean is not a number")
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func checkType(t ParameterType, value interface{}) error {
	switch t {
	case TypeNumber, TypeSlider:
		if _, err := ToFloat(value); err != nil {
			return errors.New("must be a number")
		}
	case TypeString, TypeText:
		if _, ok := value.(string); !ok {
			return errors.New("must be a string")
		}
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
		case string:
			if _, err := cast.ToBoolE(strings.ToLower(v)); err != nil {
				return errors.New("must be a boolean")
			}
		default:
			return errors.New("must be a boolean")
		}
	case TypeSelect:
		if _, err := cast.ToStringE(value); err != nil {
			return errors.New("must be one of the listed options")
		}
	case TypeJSON:
		return checkJSON(value)
	case TypeCoordinates:
		return checkCoordinates(value)
	default:
		return fmt.Errorf("has unsupported type %q", t)
	}
	return nil
}

func checkRange(schema ParameterSchema, value interface{}) error {
	f, err := ToFloat(value)
	if err != nil {
		return errors.New("must be a number")
	}
	if schema.Min != nil && f < *schema.Min {
		return fmt.Errorf("must be at least %s", cast.ToString(*schema.Min))
	}
	if schema.Max != nil && f > *schema.Max {
		return fmt.Errorf("must be at most %s", cast.ToString(*schema.Max))
	}
	return nil
}

func checkOptions(schema ParameterSchema, value interface{}) error {
	s := cast.ToString(value)
	if !slices.Contains(schema.Options, s) {
		return fmt.Errorf("must be one of: %s", strings.Join(schema.Options, ", "))
	}
	return nil
}

func checkJSON(value interface{}) error {
	switch v := value.(type) {
	case map[string]interface{}, []interface{}:
		return nil
	case string:
		if !gjson.Valid(v) {
			return errors.New("must be valid JSON")
		}
		return nil
	default:
		if _, err := json.Marshal(v); err != nil {
			return errors.New("must be valid JSON")
		}
		return nil
	}
}

func checkCoordinates(value interface{}) error {
	var parts []interface{}
	switch v := value.(type) {
	case map[string]interface{}:
		x, hasX := v["x"]
		y, hasY := v["y"]
		if !hasX || !hasY {
			return errors.New("must have x and y")
		}
		parts = []interface{}{x, y}
		if z, ok := v["z"]; ok {
			parts = append(parts, z)
		}
	case []interface{}:
		parts = v
	case []float64:
		for _, f := range v {
			parts = append(parts, f)
		}
	default:
		return errors.New("must be a coordinate object or array")
	}

	if len(parts) < 2 || len(parts) > 3 {
		return errors.New("must have two or three components")
	}
	for _, p := range parts {
		if _, err := ToFloat(p); err != nil {
			return errors.New("components must be numbers")
		}
	}
	return nil
}
