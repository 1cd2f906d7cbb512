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

// Package provider provides functionality for managing database connections and clients.
package provider

import (
	"database/sql"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/skyforge/missionflow/internal/system/config"
	"github.com/skyforge/missionflow/internal/system/database/client"
	"github.com/skyforge/missionflow/internal/system/database/model"
	"github.com/skyforge/missionflow/internal/system/log"
)

const (
	dataSourceTypePostgres = "postgres"
	dataSourceTypeSQLite   = "sqlite"

	// WorkflowDB is the name of the database holding workflow blobs.
	WorkflowDB = "workflow"
)

// dbConfig represents the local database configuration.
type dbConfig struct {
	dsn        string
	driverName string
}

// DBProviderInterface defines the interface for getting database clients.
type DBProviderInterface interface {
	GetDBClient(dbName string) (client.DBClientInterface, error)
	Close() error
}

// DBProvider is the implementation of DBProviderInterface.
type DBProvider struct {
	serverHome     string
	workflowSource config.DataSource
	workflowClient client.DBClientInterface
	mu             sync.RWMutex
}

var (
	instance *DBProvider
	once     sync.Once
)

// GetDBProvider returns the process wide DBProvider configured from the server runtime.
func GetDBProvider() DBProviderInterface {
	once.Do(func() {
		runtime := config.GetRuntime()
		instance = NewDBProvider(runtime.ServerHome, runtime.Config.Database.Workflow)
	})
	return instance
}

// NewDBProvider creates a DBProvider for the given workflow data source.
func NewDBProvider(serverHome string, workflowSource config.DataSource) *DBProvider {
	return &DBProvider{
		serverHome:     serverHome,
		workflowSource: workflowSource,
	}
}

// GetDBClient returns a database client based on the provided database name.
// The returned client manages its own connection pool and is closed with the provider.
func (d *DBProvider) GetDBClient(dbName string) (client.DBClientInterface, error) {
	if dbName != WorkflowDB {
		return nil, fmt.Errorf("unsupported database name: %s", dbName)
	}

	d.mu.RLock()
	if d.workflowClient != nil {
		c := d.workflowClient
		d.mu.RUnlock()
		return c, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.workflowClient != nil {
		return d.workflowClient, nil
	}

	c, err := d.openClient(d.workflowSource)
	if err != nil {
		return nil, err
	}
	d.workflowClient = c
	return c, nil
}

// Close closes the open database connections.
func (d *DBProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.workflowClient == nil {
		return nil
	}
	err := d.workflowClient.Close()
	d.workflowClient = nil
	if err != nil {
		return fmt.Errorf("failed to close %s client: %w", WorkflowDB, err)
	}
	log.GetLogger().Debug("Database connections closed successfully")
	return nil
}

func (d *DBProvider) openClient(dataSource config.DataSource) (client.DBClientInterface, error) {
	dbConfig, err := d.getDBConfig(dataSource)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dbConfig.driverName, dbConfig.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dataSource.Name, err)
	}

	if dataSource.MaxOpenConns > 0 {
		db.SetMaxOpenConns(dataSource.MaxOpenConns)
	}
	if dataSource.MaxIdleConns > 0 {
		db.SetMaxIdleConns(dataSource.MaxIdleConns)
	}
	if dataSource.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(dataSource.ConnMaxLifetime) * time.Second)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database %s: %w (close error: %w)", dataSource.Name, err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database %s: %w", dataSource.Name, err)
	}

	return client.NewDBClient(model.NewDB(db), dbConfig.driverName), nil
}

// getDBConfig returns the driver and DSN for the provided data source.
func (d *DBProvider) getDBConfig(dataSource config.DataSource) (dbConfig, error) {
	switch dataSource.Type {
	case dataSourceTypePostgres:
		return dbConfig{
			driverName: dataSourceTypePostgres,
			dsn: fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
				dataSource.Hostname, dataSource.Port, dataSource.Username, dataSource.Password,
				dataSource.Name, dataSource.SSLMode),
		}, nil
	case dataSourceTypeSQLite:
		options := dataSource.Options
		if options != "" && options[0] != '?' {
			options = "?" + options
		}
		dbPath := dataSource.Path
		if !path.IsAbs(dbPath) {
			dbPath = path.Join(d.serverHome, dbPath)
		}
		return dbConfig{driverName: dataSourceTypeSQLite, dsn: dbPath + options}, nil
	default:
		return dbConfig{}, fmt.Errorf("unsupported data source type: %q", dataSource.Type)
	}
}
