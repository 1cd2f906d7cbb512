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

import "time"

// Thresholds of the node count used by Tune.
const (
	SmallWorkflowLimit  = 20
	MediumWorkflowLimit = 100
)

// Settings are the optimization parameters applied to a run.
type Settings struct {
	BatchingEnabled       bool          `json:"batchingEnabled"`
	MaxBatchSize          int           `json:"maxBatchSize"`
	VirtualizationEnabled bool          `json:"virtualizationEnabled"`
	BufferZone            float64       `json:"bufferZone"`
	CacheTTL              time.Duration `json:"cacheTtl"`
}

// Tune derives settings from the size of a workflow. Small graphs skip batching and
// virtualization overhead, large ones get bigger batches, a wider buffer and a longer TTL.
func Tune(nodeCount int) Settings {
	switch {
	case nodeCount < SmallWorkflowLimit:
		return Settings{
			BatchingEnabled:       false,
			MaxBatchSize:          0,
			VirtualizationEnabled: false,
			BufferZone:            200,
			CacheTTL:              300 * time.Second,
		}
	case nodeCount < MediumWorkflowLimit:
		return Settings{
			BatchingEnabled:       true,
			MaxBatchSize:          10,
			VirtualizationEnabled: true,
			BufferZone:            200,
			CacheTTL:              300 * time.Second,
		}
	default:
		return Settings{
			BatchingEnabled:       true,
			MaxBatchSize:          15,
			VirtualizationEnabled: true,
			BufferZone:            300,
			CacheTTL:              600 * time.Second,
		}
	}
}
