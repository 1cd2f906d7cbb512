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

package store

import (
	"fmt"
	"time"

	"github.com/skyforge/missionflow/internal/system/database/provider"
)

// DBBlobStore keeps blobs in the WORKFLOW_BLOB table of the workflow database.
type DBBlobStore struct {
	dbProvider provider.DBProviderInterface
	now        func() time.Time
}

// NewDBBlobStore creates a blob store on top of the given database provider.
func NewDBBlobStore(dbProvider provider.DBProviderInterface) *DBBlobStore {
	return &DBBlobStore{dbProvider: dbProvider, now: time.Now}
}

// EnsureSchema creates the blob table when it does not exist.
func (s *DBBlobStore) EnsureSchema() error {
	dbClient, err := s.dbProvider.GetDBClient(provider.WorkflowDB)
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}
	if _, err := dbClient.Execute(QueryCreateBlobTable); err != nil {
		return fmt.Errorf("failed to create blob table: %w", err)
	}
	return nil
}

// Get implements BlobStore.
func (s *DBBlobStore) Get(key string) ([]byte, bool, error) {
	dbClient, err := s.dbProvider.GetDBClient(provider.WorkflowDB)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get database client: %w", err)
	}

	results, err := dbClient.Query(QueryGetBlob, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to execute query: %w", err)
	}
	if len(results) == 0 {
		return nil, false, nil
	}

	switch content := results[0]["content"].(type) {
	case []byte:
		return content, true, nil
	case string:
		return []byte(content), true, nil
	default:
		return nil, false, fmt.Errorf("unexpected content type %T for blob %q", content, key)
	}
}

// Put implements BlobStore.
func (s *DBBlobStore) Put(key string, value []byte) error {
	dbClient, err := s.dbProvider.GetDBClient(provider.WorkflowDB)
	if err != nil {
		return fmt.Errorf("failed to get database client: %w", err)
	}

	if _, err := dbClient.Execute(QueryPutBlob, key, string(value), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}
