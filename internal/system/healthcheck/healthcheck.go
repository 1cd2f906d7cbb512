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

// Package healthcheck reports the liveness and readiness of the server.
package healthcheck

import (
	"fmt"
	"sync"

	dbmodel "github.com/skyforge/missionflow/internal/system/database/model"
	"github.com/skyforge/missionflow/internal/system/database/provider"
	"github.com/skyforge/missionflow/internal/system/log"
)

// Status is the health of the server or of one of its dependencies.
type Status string

const (
	// StatusUp denotes a healthy component.
	StatusUp Status = "UP"
	// StatusDown denotes an unhealthy component.
	StatusDown Status = "DOWN"
)

// ServiceStatus is the health of one dependency.
type ServiceStatus struct {
	ServiceName string `json:"service_name"`
	Status      Status `json:"status"`
}

// ServerStatus is the overall health of the server.
type ServerStatus struct {
	Status        Status          `json:"status"`
	ServiceStatus []ServiceStatus `json:"service_status"`
}

// Check tests one dependency and returns an error when it is unusable.
type Check func() error

// HealthCheckServiceInterface defines the interface for the health check service.
type HealthCheckServiceInterface interface {
	CheckReadiness() ServerStatus
}

type namedCheck struct {
	name  string
	check Check
}

// HealthCheckService runs the registered readiness checks.
type HealthCheckService struct {
	mu     sync.RWMutex
	checks []namedCheck
	logger *log.Logger
}

// NewHealthCheckService creates a service without checks. Such a service is always ready.
func NewHealthCheckService() *HealthCheckService {
	return &HealthCheckService{
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService")),
	}
}

// Register adds a readiness check. Checks run in registration order.
func (hcs *HealthCheckService) Register(name string, check Check) {
	hcs.mu.Lock()
	defer hcs.mu.Unlock()
	hcs.checks = append(hcs.checks, namedCheck{name: name, check: check})
}

// CheckReadiness checks the readiness of the server and its dependencies.
func (hcs *HealthCheckService) CheckReadiness() ServerStatus {
	hcs.mu.RLock()
	checks := append([]namedCheck(nil), hcs.checks...)
	hcs.mu.RUnlock()

	status := StatusUp
	statuses := make([]ServiceStatus, 0, len(checks))
	for _, c := range checks {
		s := StatusUp
		if err := c.check(); err != nil {
			hcs.logger.Error("Readiness check failed", log.String("service", c.name), log.Error(err))
			s = StatusDown
			status = StatusDown
		}
		statuses = append(statuses, ServiceStatus{ServiceName: c.name, Status: s})
	}
	return ServerStatus{Status: status, ServiceStatus: statuses}
}

// DatabaseCheck returns a check that runs query against the named database.
func DatabaseCheck(dbProvider provider.DBProviderInterface, dbName string, query dbmodel.DBQuery) Check {
	return func() error {
		dbClient, err := dbProvider.GetDBClient(dbName)
		if err != nil {
			return fmt.Errorf("failed to get database client: %w", err)
		}
		if _, err := dbClient.Query(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		return nil
	}
}
