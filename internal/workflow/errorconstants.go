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

package workflow

import "github.com/skyforge/missionflow/internal/system/error/serviceerror"

// Client errors for workflow operations.
var (
	// ErrorInvalidRequestFormat is the error returned when the request body cannot be parsed.
	ErrorInvalidRequestFormat = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60001",
		Error:            "Invalid request format",
		ErrorDescription: "The request body is malformed or contains invalid data",
	}
	// ErrorWorkflowNotFound is the error returned when no workflow has the requested id.
	ErrorWorkflowNotFound = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60002",
		Error:            "Workflow not found",
		ErrorDescription: "The workflow with the specified id does not exist",
	}
	// ErrorInvalidWorkflow is the error returned when the workflow graph is structurally invalid.
	ErrorInvalidWorkflow = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60003",
		Error:            "Invalid workflow",
		ErrorDescription: "The workflow graph has duplicate ids, dangling edges or cycles",
	}
	// ErrorInvalidParameters is the error returned when node parameters fail their schema.
	ErrorInvalidParameters = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60004",
		Error:            "Invalid node parameters",
		ErrorDescription: "One or more nodes have parameters that do not match their schema",
	}
	// ErrorInvalidDocument is the error returned when an imported document is not a workflow.
	ErrorInvalidDocument = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60005",
		Error:            "Invalid workflow document",
		ErrorDescription: "The document is not a valid workflow definition",
	}
	// ErrorRunInProgress is the error returned when a run is requested while another is active.
	ErrorRunInProgress = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60006",
		Error:            "Run in progress",
		ErrorDescription: "Another workflow run is in progress",
	}
	// ErrorInvalidLayoutDirection is the error returned for an unknown layout direction.
	ErrorInvalidLayoutDirection = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60007",
		Error:            "Invalid layout direction",
		ErrorDescription: "The layout direction must be TB or LR",
	}
	// ErrorInvalidCanvas is the error returned when the canvas size is not positive.
	ErrorInvalidCanvas = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60008",
		Error:            "Invalid canvas",
		ErrorDescription: "The canvas width and height must be positive",
	}
	// ErrorMissingWorkflowID is the error returned when the workflow id is missing.
	ErrorMissingWorkflowID = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WFS-60009",
		Error:            "Invalid request format",
		ErrorDescription: "Workflow id is required",
	}
)

// Server errors for workflow operations.
var (
	// ErrorInternalServerError is the error returned when an internal server error occurs.
	ErrorInternalServerError = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "WFS-65001",
		Error:            "Internal server error",
		ErrorDescription: "An unexpected error occurred while processing the request",
	}
	// ErrorStorageFailure is the error returned when the workflow storage cannot be read or written.
	ErrorStorageFailure = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "WFS-65002",
		Error:            "Storage failure",
		ErrorDescription: "The workflow storage could not be accessed",
	}
)
