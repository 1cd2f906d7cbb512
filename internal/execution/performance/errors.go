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
	"errors"
	"fmt"
)

var (
	// ErrRunInProgress is returned when a manager is asked to start a second concurrent run.
	ErrRunInProgress = errors.New("a workflow run is already in progress")
	// ErrRunAborted is returned when the caller cancels an active run.
	ErrRunAborted = errors.New("workflow run aborted")
)

// ExecutionError reports the node failure that ended a run or was recorded for a node type
// allowed to continue on failure.
type ExecutionError struct {
	NodeID   string
	NodeType string
	TimedOut bool
	Cause    error
}

func (e *ExecutionError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("node %q (%s) timed out: %v", e.NodeID, e.NodeType, e.Cause)
	}
	return fmt.Sprintf("node %q (%s) failed: %v", e.NodeID, e.NodeType, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// isTimeout reports whether err came from a node deadline rather than a run cancellation.
func isTimeout(nodeCtx, runCtx context.Context) bool {
	return errors.Is(nodeCtx.Err(), context.DeadlineExceeded) && runCtx.Err() == nil
}
