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
	"net/http"

	"github.com/skyforge/missionflow/internal/execution/performance"
	"github.com/skyforge/missionflow/internal/render/layout"
	"github.com/skyforge/missionflow/internal/system/middleware"
	"github.com/skyforge/missionflow/internal/workflow/store"
)

// Initialize initializes the workflow service and registers its routes.
func Initialize(
	mux *http.ServeMux,
	workflowStore *store.Store,
	manager *performance.Manager,
	layoutOpts layout.Options,
) WorkflowServiceInterface {
	workflowService := newWorkflowService(workflowStore, manager, layoutOpts)
	workflowHandler := newWorkflowHandler(workflowService)
	registerRoutes(mux, workflowHandler)
	return workflowService
}

// registerRoutes registers the routes for workflow operations.
func registerRoutes(mux *http.ServeMux, workflowHandler *workflowHandler) {
	opts1 := middleware.CORSOptions{
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /workflows", workflowHandler.HandleWorkflowListRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("POST /workflows", workflowHandler.HandleWorkflowPostRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/import",
		workflowHandler.HandleWorkflowImportRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/validate",
		workflowHandler.HandleDefinitionValidateRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("GET /workflows/stats", workflowHandler.HandleStatsRequest, opts1))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows", middleware.NoContent, opts1))

	opts2 := middleware.CORSOptions{
		AllowedMethods:   "GET, PUT, DELETE",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}", workflowHandler.HandleWorkflowGetRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("PUT /workflows/{id}", workflowHandler.HandleWorkflowPutRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/{id}", workflowHandler.HandleWorkflowDeleteRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("DELETE /workflows/cache", workflowHandler.HandleCacheDeleteRequest, opts2))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows/{id}", middleware.NoContent, opts2))

	opts3 := middleware.CORSOptions{
		AllowedMethods:   "GET, POST",
		AllowedHeaders:   "Content-Type, Authorization",
		AllowCredentials: true,
	}
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}/export",
		workflowHandler.HandleWorkflowExportRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("GET /workflows/{id}/plan", workflowHandler.HandleWorkflowPlanRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/validate",
		workflowHandler.HandleWorkflowValidateRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/layout",
		workflowHandler.HandleWorkflowLayoutRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/visible",
		workflowHandler.HandleWorkflowVisibleRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("POST /workflows/{id}/dry-run",
		workflowHandler.HandleWorkflowDryRunRequest, opts3))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /workflows/{id}/{action}", middleware.NoContent, opts3))
}
