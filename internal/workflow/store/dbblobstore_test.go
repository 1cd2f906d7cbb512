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
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/skyforge/missionflow/internal/system/config"
	"github.com/skyforge/missionflow/internal/system/database/client"
	dbmodel "github.com/skyforge/missionflow/internal/system/database/model"
	"github.com/skyforge/missionflow/internal/system/database/provider"
	"github.com/skyforge/missionflow/tests/mocks/databasemock"
)

type DBBlobStoreTestSuite struct {
	suite.Suite
	mockClient   *databasemock.MockDBClient
	mockProvider *databasemock.MockDBProvider
	store        *DBBlobStore
}

func TestDBBlobStoreSuite(t *testing.T) {
	suite.Run(t, new(DBBlobStoreTestSuite))
}

func (suite *DBBlobStoreTestSuite) SetupTest() {
	suite.mockClient = &databasemock.MockDBClient{}
	suite.mockProvider = &databasemock.MockDBProvider{
		MockGetDBClient: func(dbName string) (client.DBClientInterface, error) {
			return suite.mockClient, nil
		},
	}
	suite.store = NewDBBlobStore(suite.mockProvider)
	suite.store.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
}

func (suite *DBBlobStoreTestSuite) TestGetString() {
	suite.mockClient.MockQuery = func(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
		return []map[string]interface{}{{"content": `[1]`}}, nil
	}

	value, ok, err := suite.store.Get("workflows")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), `[1]`, string(value))

	require.Len(suite.T(), suite.mockClient.QueryCalls, 1)
	assert.Equal(suite.T(), QueryGetBlob.ID, suite.mockClient.QueryCalls[0].Query.ID)
	assert.Equal(suite.T(), []interface{}{"workflows"}, suite.mockClient.QueryCalls[0].Args)
	assert.Equal(suite.T(), []string{provider.WorkflowDB}, suite.mockProvider.GetDBClientCalls)
}

func (suite *DBBlobStoreTestSuite) TestGetBytes() {
	suite.mockClient.MockQuery = func(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
		return []map[string]interface{}{{"content": []byte(`[2]`)}}, nil
	}

	value, ok, err := suite.store.Get("workflows")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), `[2]`, string(value))
}

func (suite *DBBlobStoreTestSuite) TestGetMissing() {
	value, ok, err := suite.store.Get("workflows")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
	assert.Nil(suite.T(), value)
}

func (suite *DBBlobStoreTestSuite) TestGetUnexpectedContentType() {
	suite.mockClient.MockQuery = func(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
		return []map[string]interface{}{{"content": 42}}, nil
	}

	_, _, err := suite.store.Get("workflows")
	assert.ErrorContains(suite.T(), err, "unexpected content type")
}

func (suite *DBBlobStoreTestSuite) TestGetQueryError() {
	suite.mockClient.MockQuery = func(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
		return nil, errors.New("connection reset")
	}

	_, _, err := suite.store.Get("workflows")
	assert.ErrorContains(suite.T(), err, "connection reset")
}

func (suite *DBBlobStoreTestSuite) TestClientError() {
	suite.mockProvider.MockGetDBClient = func(dbName string) (client.DBClientInterface, error) {
		return nil, errors.New("no database")
	}

	_, _, err := suite.store.Get("workflows")
	assert.ErrorContains(suite.T(), err, "failed to get database client")
	assert.ErrorContains(suite.T(), suite.store.Put("workflows", []byte(`[]`)), "failed to get database client")
	assert.ErrorContains(suite.T(), suite.store.EnsureSchema(), "failed to get database client")
}

func (suite *DBBlobStoreTestSuite) TestPut() {
	require.NoError(suite.T(), suite.store.Put("workflows", []byte(`[]`)))

	require.Len(suite.T(), suite.mockClient.ExecuteCalls, 1)
	call := suite.mockClient.ExecuteCalls[0]
	assert.Equal(suite.T(), QueryPutBlob.ID, call.Query.ID)
	assert.Equal(suite.T(), []interface{}{"workflows", `[]`, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}, call.Args)
}

func (suite *DBBlobStoreTestSuite) TestPutError() {
	suite.mockClient.MockExecute = func(query dbmodel.DBQuery, args ...interface{}) (int64, error) {
		return 0, errors.New("disk full")
	}

	assert.ErrorContains(suite.T(), suite.store.Put("workflows", []byte(`[]`)), "disk full")
}

func (suite *DBBlobStoreTestSuite) TestEnsureSchema() {
	require.NoError(suite.T(), suite.store.EnsureSchema())

	require.Len(suite.T(), suite.mockClient.ExecuteCalls, 1)
	assert.Equal(suite.T(), QueryCreateBlobTable.ID, suite.mockClient.ExecuteCalls[0].Query.ID)
}

type sqlmockProvider struct {
	client client.DBClientInterface
}

func (p sqlmockProvider) GetDBClient(string) (client.DBClientInterface, error) { return p.client, nil }
func (p sqlmockProvider) Close() error                                         { return p.client.Close() }

func TestDBBlobStoreWithSQLMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := NewDBBlobStore(sqlmockProvider{client: client.NewDBClient(dbmodel.NewDB(db), "postgres")})
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	mock.ExpectExec(regexp.QuoteMeta(QueryPutBlob.Query)).
		WithArgs("workflows", `[]`, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(QueryGetBlob.Query)).
		WithArgs("workflows").
		WillReturnRows(sqlmock.NewRows([]string{"CONTENT"}).AddRow(`[]`))

	require.NoError(t, s.Put("workflows", []byte(`[]`)))
	value, ok, err := s.Get("workflows")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(value))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBBlobStoreOnSQLite(t *testing.T) {
	home := t.TempDir()
	dbProvider := provider.NewDBProvider(home, config.DataSource{Type: "sqlite", Path: "workflow.db"})
	defer func() { _ = dbProvider.Close() }()

	s := NewDBBlobStore(dbProvider)
	require.NoError(t, s.EnsureSchema())
	require.NoError(t, s.EnsureSchema())

	require.NoError(t, s.Put("workflows", []byte(`["first"]`)))
	require.NoError(t, s.Put("workflows", []byte(`["second"]`)))

	value, ok, err := s.Get("workflows")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["second"]`, string(value))

	_, ok, err = s.Get("absent")
	require.NoError(t, err)
	assert.False(t, ok)

	workflows := New(s, "", nil)
	_, err = workflows.Save(mission("m1", "Survey"))
	require.NoError(t, err)
	loaded, err := workflows.Load("m1")
	require.NoError(t, err)
	assert.Equal(t, "Survey", loaded.Definition.Metadata.Name)

	assert.FileExists(t, filepath.Join(home, "workflow.db"))
}
