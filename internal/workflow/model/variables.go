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

package model

import (
	"sync"

	"github.com/skyforge/missionflow/internal/system/utils"
)

// Variables is the shared variable store of a single run. Nodes of one batch run on
// separate goroutines, so every access is guarded.
type Variables struct {
	mu     sync.RWMutex
	values map[string]interface{}
}

// NewVariables creates a variable store seeded with a deep copy of initial.
func NewVariables(initial map[string]interface{}) *Variables {
	values := utils.DeepCopyMap(initial)
	if values == nil {
		values = make(map[string]interface{})
	}
	return &Variables{values: values}
}

// Get returns the value of a variable.
func (v *Variables) Get(name string) (interface{}, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.values[name]
	return value, ok
}

// Set assigns a variable.
func (v *Variables) Set(name string, value interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[name] = value
}

// Delete removes a variable.
func (v *Variables) Delete(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.values, name)
}

// Snapshot returns a deep copy of all variables.
func (v *Variables) Snapshot() map[string]interface{} {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return utils.DeepCopyMap(v.values)
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}
