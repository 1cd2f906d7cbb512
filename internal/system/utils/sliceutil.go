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

package utils

// DeepCopyValue returns a deep copy of a JSON-shaped value. Maps and slices are copied
// recursively; every other value is returned as is.
func DeepCopyValue(src interface{}) interface{} {
	switch v := src.(type) {
	case map[string]interface{}:
		return DeepCopyMap(v)
	case []interface{}:
		dst := make([]interface{}, len(v))
		for i, item := range v {
			dst[i] = DeepCopyValue(item)
		}
		return dst
	default:
		return v
	}
}

// DeepCopyMap creates a deep copy of a JSON-shaped map.
func DeepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = DeepCopyValue(v)
	}
	return dst
}
