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

import (
	"encoding/json"
	"fmt"
	"net/http"

	serverconst "github.com/skyforge/missionflow/internal/system/constants"
	"github.com/skyforge/missionflow/internal/system/error/apierror"
	"github.com/skyforge/missionflow/internal/system/error/serviceerror"
	"github.com/skyforge/missionflow/internal/system/log"
	sysutils "github.com/skyforge/missionflow/internal/system/utils"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

const handlerLoggerComponentName = "WorkflowHandler"

// workflowHandler is the handler for workflow operations.
type workflowHandler struct {
	workflowService WorkflowServiceInterface
}

// newWorkflowHandler creates a new instance of workflowHandler.
func newWorkflowHandler(workflowService WorkflowServiceInterface) *workflowHandler {
	return &workflowHandler{
		workflowService: workflowService,
	}
}

// HandleWorkflowListRequest handles the list workflows request.
func (wh *workflowHandler) HandleWorkflowListRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	list, svcErr := wh.workflowService.ListWorkflows()
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, list)
	logger.Debug("Successfully listed workflows", log.Int("count", len(list)))
}

// HandleWorkflowPostRequest handles the create or replace workflow request.
func (wh *workflowHandler) HandleWorkflowPostRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	def, err := sysutils.DecodeJSONBody[model.WorkflowDefinition](r)
	if err != nil {
		writeDecodeError(w, logger, err)
		return
	}

	result, svcErr := wh.workflowService.SaveWorkflow(def)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusCreated, result)
	logger.Debug("Successfully saved workflow",
		log.String(log.LoggerKeyWorkflowID, result.Definition.Metadata.ID))
}

// HandleWorkflowPutRequest handles the replace workflow request. The path id wins over the body.
func (wh *workflowHandler) HandleWorkflowPutRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	id := pathID(r)
	if id == "" {
		wh.handleError(w, logger, &ErrorMissingWorkflowID)
		return
	}
	def, err := sysutils.DecodeJSONBody[model.WorkflowDefinition](r)
	if err != nil {
		writeDecodeError(w, logger, err)
		return
	}
	def.Metadata.ID = id

	result, svcErr := wh.workflowService.SaveWorkflow(def)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, result)
}

// HandleWorkflowGetRequest handles the get workflow request.
func (wh *workflowHandler) HandleWorkflowGetRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	result, svcErr := wh.workflowService.GetWorkflow(pathID(r))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, result)
}

// HandleWorkflowDeleteRequest handles the delete workflow request.
func (wh *workflowHandler) HandleWorkflowDeleteRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	id := pathID(r)
	if svcErr := wh.workflowService.DeleteWorkflow(id); svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logger.Debug("Successfully deleted workflow", log.String(log.LoggerKeyWorkflowID, id))
}

// HandleWorkflowExportRequest returns a workflow as a downloadable JSON document.
func (wh *workflowHandler) HandleWorkflowExportRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	data, fileName, svcErr := wh.workflowService.ExportWorkflow(pathID(r))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}

	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.Header().Set(serverconst.ContentDispositionHeaderName, fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error("Error writing export", log.Error(err))
	}
}

// HandleWorkflowImportRequest stores the workflow document in the request body.
func (wh *workflowHandler) HandleWorkflowImportRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	data, err := sysutils.ReadBody(r)
	if err != nil {
		writeDecodeError(w, logger, err)
		return
	}

	result, svcErr := wh.workflowService.ImportWorkflow(data)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusCreated, result)
	logger.Debug("Successfully imported workflow",
		log.String(log.LoggerKeyWorkflowID, result.Definition.Metadata.ID))
}

// HandleDefinitionValidateRequest validates the definition in the request body without storing it.
func (wh *workflowHandler) HandleDefinitionValidateRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	def, err := sysutils.DecodeJSONBody[model.WorkflowDefinition](r)
	if err != nil {
		writeDecodeError(w, logger, err)
		return
	}
	writeJSON(w, logger, http.StatusOK, wh.workflowService.ValidateDefinition(def))
}

// HandleWorkflowValidateRequest validates a stored workflow.
func (wh *workflowHandler) HandleWorkflowValidateRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	response, svcErr := wh.workflowService.ValidateWorkflow(pathID(r))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, response)
}

// HandleWorkflowPlanRequest returns the execution plan of a stored workflow.
func (wh *workflowHandler) HandleWorkflowPlanRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	plan, svcErr := wh.workflowService.PlanWorkflow(pathID(r))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, plan)
}

// HandleWorkflowLayoutRequest lays out a stored workflow. An empty body uses the defaults.
func (wh *workflowHandler) HandleWorkflowLayoutRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	request := LayoutRequest{}
	if r.ContentLength != 0 {
		decoded, err := sysutils.DecodeJSONBody[LayoutRequest](r)
		if err != nil {
			writeDecodeError(w, logger, err)
			return
		}
		request = *decoded
	}

	response, svcErr := wh.workflowService.LayoutWorkflow(pathID(r), request)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, response)
}

// HandleWorkflowVisibleRequest returns the elements of a stored workflow inside a viewport.
func (wh *workflowHandler) HandleWorkflowVisibleRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	request, err := sysutils.DecodeJSONBody[VisibleRequest](r)
	if err != nil {
		writeDecodeError(w, logger, err)
		return
	}

	response, svcErr := wh.workflowService.GetVisibleElements(pathID(r), *request)
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, response)
}

// HandleWorkflowDryRunRequest runs a stored workflow without side effects.
func (wh *workflowHandler) HandleWorkflowDryRunRequest(w http.ResponseWriter, r *http.Request) {
	logger := handlerLogger()

	result, svcErr := wh.workflowService.DryRunWorkflow(r.Context(), pathID(r))
	if svcErr != nil {
		wh.handleError(w, logger, svcErr)
		return
	}
	writeJSON(w, logger, http.StatusOK, result)
	logger.Debug("Dry run finished", log.String(log.LoggerKeyRunID, result.RunID),
		log.String("status", string(result.Status)))
}

// HandleStatsRequest returns the optimization and performance statistics.
func (wh *workflowHandler) HandleStatsRequest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, handlerLogger(), http.StatusOK, wh.workflowService.GetStats())
}

// HandleCacheDeleteRequest clears the node result cache.
func (wh *workflowHandler) HandleCacheDeleteRequest(w http.ResponseWriter, r *http.Request) {
	wh.workflowService.ClearCache()
	w.WriteHeader(http.StatusNoContent)
}

// handleError handles service errors and returns appropriate HTTP responses.
func (wh *workflowHandler) handleError(w http.ResponseWriter, logger *log.Logger,
	svcErr *serviceerror.ServiceError) {
	statusCode := http.StatusInternalServerError
	if svcErr.Type == serviceerror.ClientErrorType {
		switch svcErr.Code {
		case ErrorWorkflowNotFound.Code:
			statusCode = http.StatusNotFound
		case ErrorRunInProgress.Code:
			statusCode = http.StatusConflict
		default:
			statusCode = http.StatusBadRequest
		}
	}

	if statusCode == http.StatusInternalServerError {
		logger.Error("Internal server error occurred", log.String("error", svcErr.Error),
			log.String("description", svcErr.ErrorDescription))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, statusCode, apierror.ErrorResponse{
		Code:        svcErr.Code,
		Message:     svcErr.Error,
		Description: svcErr.ErrorDescription,
	})
}

// pathID returns the sanitized workflow id of the request path.
func pathID(r *http.Request) string {
	return sysutils.SanitizeString(r.PathValue("id"))
}

func handlerLogger() *log.Logger {
	return log.GetLogger().With(log.String(log.LoggerKeyComponentName, handlerLoggerComponentName))
}

func writeDecodeError(w http.ResponseWriter, logger *log.Logger, err error) {
	writeJSON(w, logger, http.StatusBadRequest, apierror.ErrorResponse{
		Code:        ErrorInvalidRequestFormat.Code,
		Message:     ErrorInvalidRequestFormat.Error,
		Description: "Failed to parse request body: " + err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, statusCode int, body interface{}) {
	w.Header().Set(serverconst.ContentTypeHeaderName, serverconst.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", log.Error(err))
	}
}
