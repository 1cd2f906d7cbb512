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

// Package workflow exposes workflow storage, planning, layout and dry runs over HTTP.
package workflow

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"

	"github.com/skyforge/missionflow/internal/execution/batcher"
	"github.com/skyforge/missionflow/internal/execution/performance"
	"github.com/skyforge/missionflow/internal/render/layout"
	"github.com/skyforge/missionflow/internal/system/error/serviceerror"
	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/validation"
	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
	"github.com/skyforge/missionflow/internal/workflow/store"
)

const loggerComponentName = "WorkflowService"

// WorkflowServiceInterface defines the workflow operations exposed to clients.
type WorkflowServiceInterface interface {
	ListWorkflows() ([]model.Metadata, *serviceerror.ServiceError)
	SaveWorkflow(def *model.WorkflowDefinition) (*store.SaveResult, *serviceerror.ServiceError)
	GetWorkflow(id string) (*store.SaveResult, *serviceerror.ServiceError)
	DeleteWorkflow(id string) *serviceerror.ServiceError
	ExportWorkflow(id string) ([]byte, string, *serviceerror.ServiceError)
	ImportWorkflow(data []byte) (*store.SaveResult, *serviceerror.ServiceError)
	ValidateDefinition(def *model.WorkflowDefinition) *ValidationResponse
	ValidateWorkflow(id string) (*ValidationResponse, *serviceerror.ServiceError)
	PlanWorkflow(id string) (*PlanResponse, *serviceerror.ServiceError)
	LayoutWorkflow(id string, request LayoutRequest) (*LayoutResponse, *serviceerror.ServiceError)
	GetVisibleElements(id string, request VisibleRequest) (*VisibleResponse, *serviceerror.ServiceError)
	DryRunWorkflow(ctx context.Context, id string) (*model.RunResult, *serviceerror.ServiceError)
	GetStats() *StatsResponse
	ClearCache()
}

// workflowService is the default implementation of WorkflowServiceInterface.
type workflowService struct {
	store     *store.Store
	manager   *performance.Manager
	layout    layout.Options
	visibleMu sync.Mutex
	logger    *log.Logger
}

// newWorkflowService creates a new instance of workflowService.
func newWorkflowService(workflowStore *store.Store, manager *performance.Manager,
	layoutOpts layout.Options) WorkflowServiceInterface {
	return &workflowService{
		store:   workflowStore,
		manager: manager,
		layout:  layoutOpts,
		logger:  log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// ListWorkflows returns the metadata of all stored workflows.
func (ws *workflowService) ListWorkflows() ([]model.Metadata, *serviceerror.ServiceError) {
	list, err := ws.store.List()
	if err != nil {
		return nil, ws.mapError(err, ErrorStorageFailure)
	}
	return list, nil
}

// SaveWorkflow creates or replaces a workflow.
func (ws *workflowService) SaveWorkflow(def *model.WorkflowDefinition) (*store.SaveResult, *serviceerror.ServiceError) {
	if def == nil {
		return nil, &ErrorInvalidRequestFormat
	}
	result, err := ws.store.Save(def)
	if err != nil {
		return nil, ws.mapError(err, ErrorStorageFailure)
	}
	return result, nil
}

// GetWorkflow returns a stored workflow with its validation warnings.
func (ws *workflowService) GetWorkflow(id string) (*store.SaveResult, *serviceerror.ServiceError) {
	if id == "" {
		return nil, &ErrorMissingWorkflowID
	}
	result, err := ws.store.Load(id)
	if err != nil {
		return nil, ws.mapError(err, ErrorStorageFailure)
	}
	return result, nil
}

// DeleteWorkflow removes a stored workflow.
func (ws *workflowService) DeleteWorkflow(id string) *serviceerror.ServiceError {
	if id == "" {
		return &ErrorMissingWorkflowID
	}
	if err := ws.store.Delete(id); err != nil {
		return ws.mapError(err, ErrorStorageFailure)
	}
	return nil
}

// ExportWorkflow returns the JSON document of a workflow and its download file name.
func (ws *workflowService) ExportWorkflow(id string) ([]byte, string, *serviceerror.ServiceError) {
	if id == "" {
		return nil, "", &ErrorMissingWorkflowID
	}
	data, fileName, err := ws.store.Export(id)
	if err != nil {
		return nil, "", ws.mapError(err, ErrorStorageFailure)
	}
	return data, fileName, nil
}

// ImportWorkflow stores a workflow document, migrating the legacy format.
func (ws *workflowService) ImportWorkflow(data []byte) (*store.SaveResult, *serviceerror.ServiceError) {
	result, err := ws.store.Import(data)
	if err != nil {
		return nil, ws.mapError(err, ErrorStorageFailure)
	}
	return result, nil
}

// ValidateDefinition checks the structure and node parameters of a definition. Unlike saving,
// invalid parameters are reported as errors because a run would reject them.
func (ws *workflowService) ValidateDefinition(def *model.WorkflowDefinition) *ValidationResponse {
	response := &ValidationResponse{Errors: make([]ValidationIssue, 0), Warnings: make([]string, 0)}

	structErr := graph.ValidateStructure(def)
	response.Errors = append(response.Errors, issuesOf(structErr)...)
	response.Errors = append(response.Errors, issuesOf(ws.manager.Registry().ValidateParameters(def))...)
	if structErr == nil {
		response.Warnings = append(response.Warnings, store.EndpointWarnings(def, ws.manager.Registry())...)
	}
	response.Valid = len(response.Errors) == 0
	return response
}

// ValidateWorkflow validates a stored workflow.
func (ws *workflowService) ValidateWorkflow(id string) (*ValidationResponse, *serviceerror.ServiceError) {
	if id == "" {
		return nil, &ErrorMissingWorkflowID
	}
	loaded, err := ws.store.Load(id)
	if err != nil {
		var structErr *graph.GraphStructureError
		if errors.As(err, &structErr) {
			return &ValidationResponse{
				Valid:    false,
				Errors:   issuesOf(errors.Unwrap(err)),
				Warnings: make([]string, 0),
			}, nil
		}
		return nil, ws.mapError(err, ErrorStorageFailure)
	}
	return ws.ValidateDefinition(loaded.Definition), nil
}

// PlanWorkflow returns the batches a run of the workflow would dispatch.
func (ws *workflowService) PlanWorkflow(id string) (*PlanResponse, *serviceerror.ServiceError) {
	loaded, svcErr := ws.GetWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}
	batches, settings, err := ws.manager.Plan(loaded.Definition)
	if err != nil {
		return nil, ws.mapError(err, ErrorInternalServerError)
	}
	return &PlanResponse{
		WorkflowID:        id,
		Settings:          settings,
		Batches:           batches,
		EstimatedDuration: batcher.TotalEstimate(batches),
	}, nil
}

// LayoutWorkflow computes a hierarchical layout for a stored workflow and optionally stores it.
func (ws *workflowService) LayoutWorkflow(id string, request LayoutRequest) (*LayoutResponse,
	*serviceerror.ServiceError) {
	opts := ws.layout
	if request.Direction != "" {
		direction, err := layout.ParseDirection(request.Direction)
		if err != nil {
			return nil, serviceerror.CustomServiceError(ErrorInvalidLayoutDirection, err.Error())
		}
		opts.Direction = direction
	}

	loaded, svcErr := ws.GetWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}
	def := loaded.Definition.Clone()
	engine := layout.NewEngine(opts)
	if err := engine.Apply(def); err != nil {
		return nil, ws.mapError(err, ErrorInternalServerError)
	}

	positions := make(map[string]model.Position, len(def.Nodes))
	for _, n := range def.Nodes {
		positions[n.ID] = n.Position
	}
	response := &LayoutResponse{
		WorkflowID: id,
		Direction:  string(engine.Options().Direction),
		Positions:  positions,
	}
	if request.Persist {
		if _, err := ws.store.Save(def); err != nil {
			return nil, ws.mapError(err, ErrorStorageFailure)
		}
		response.Persisted = true
	}
	ws.logger.Debug("Workflow laid out", log.String(log.LoggerKeyWorkflowID, id),
		log.String("direction", response.Direction), log.Bool("persisted", response.Persisted))
	return response, nil
}

// GetVisibleElements returns the nodes and edges of a workflow that intersect the viewport.
func (ws *workflowService) GetVisibleElements(id string, request VisibleRequest) (*VisibleResponse,
	*serviceerror.ServiceError) {
	if request.Width <= 0 || request.Height <= 0 {
		return nil, &ErrorInvalidCanvas
	}
	loaded, svcErr := ws.GetWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}
	def := loaded.Definition

	ws.visibleMu.Lock()
	defer ws.visibleMu.Unlock()

	ws.manager.Optimize(len(def.Nodes))
	virtualizer := ws.manager.Virtualizer()
	nodes := virtualizer.GetVisibleNodes(def.Nodes, request.Viewport, request.Width, request.Height)
	edges := virtualizer.GetVisibleEdges(def.Edges, nodes)
	return &VisibleResponse{
		Nodes: nodes,
		Edges: edges,
		Stats: virtualizer.GetVirtualizationStats(),
	}, nil
}

// DryRunWorkflow runs a stored workflow with an executor that only echoes node parameters.
// A run that fails or is aborted still returns its result.
func (ws *workflowService) DryRunWorkflow(ctx context.Context, id string) (*model.RunResult,
	*serviceerror.ServiceError) {
	loaded, svcErr := ws.GetWorkflow(id)
	if svcErr != nil {
		return nil, svcErr
	}
	result, err := ws.manager.Run(ctx, loaded.Definition, performance.DryRunExecutor{})
	if result != nil {
		if err != nil {
			ws.logger.Debug("Dry run did not complete", log.String(log.LoggerKeyWorkflowID, id), log.Error(err))
		}
		return result, nil
	}
	return nil, ws.mapError(err, ErrorInternalServerError)
}

// GetStats returns the optimization and performance statistics.
func (ws *workflowService) GetStats() *StatsResponse {
	return &StatsResponse{
		Optimization: ws.manager.GetOptimizationStats(),
		Performance:  ws.manager.GetPerformanceStats(),
	}
}

// ClearCache drops every cached node result.
func (ws *workflowService) ClearCache() {
	ws.manager.ClearCache()
	ws.logger.Info("Result cache cleared")
}

// mapError converts a domain error into a service error. Unknown errors become fallback.
func (ws *workflowService) mapError(err error, fallback serviceerror.ServiceError) *serviceerror.ServiceError {
	var structErr *graph.GraphStructureError
	var paramErr *validation.ParameterValidationError
	switch {
	case errors.Is(err, store.ErrWorkflowNotFound):
		return &ErrorWorkflowNotFound
	case errors.Is(err, store.ErrInvalidDocument):
		return serviceerror.CustomServiceError(ErrorInvalidDocument, err.Error())
	case errors.Is(err, performance.ErrRunInProgress):
		return &ErrorRunInProgress
	case errors.As(err, &structErr):
		return serviceerror.CustomServiceError(ErrorInvalidWorkflow, err.Error())
	case errors.As(err, &paramErr):
		return serviceerror.CustomServiceError(ErrorInvalidParameters, err.Error())
	}
	ws.logger.Error("Workflow operation failed", log.Error(err))
	return &fallback
}

// issuesOf flattens a combined validation error into issues.
func issuesOf(err error) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	for _, e := range multierr.Errors(err) {
		var structErr *graph.GraphStructureError
		var paramErr *validation.ParameterValidationError
		switch {
		case errors.As(e, &structErr):
			issues = append(issues, ValidationIssue{
				Kind:    string(structErr.Kind),
				NodeIDs: structErr.NodeIDs,
				EdgeID:  structErr.EdgeID,
				Message: structErr.Error(),
			})
		case errors.As(e, &paramErr):
			var nodeIDs []string
			if paramErr.NodeID != "" {
				nodeIDs = []string{paramErr.NodeID}
			}
			issues = append(issues, ValidationIssue{
				Kind:     "invalid_parameters",
				NodeIDs:  nodeIDs,
				NodeType: paramErr.NodeType,
				Fields:   paramErr.Errors,
				Message:  paramErr.Error(),
			})
		default:
			issues = append(issues, ValidationIssue{Kind: "invalid", Message: e.Error()})
		}
	}
	return issues
}
