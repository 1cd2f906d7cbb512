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

package provider

import (
	"path/filepath"
	"testing"

	"github.com/skyforge/missionflow/internal/system/config"
	"github.com/skyforge/missionflow/internal/system/database/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DBProviderTestSuite struct {
	suite.Suite
}

func TestDBProviderSuite(t *testing.T) {
	suite.Run(t, new(DBProviderTestSuite))
}

func (suite *DBProviderTestSuite) TestGetDBConfigPostgres() {
	p := NewDBProvider("/srv/mission", config.DataSource{})

	cfg, err := p.getDBConfig(config.DataSource{
		Type:     "postgres",
		Hostname: "db.local",
		Port:     5432,
		Username: "mission",
		Password: "secret",
		Name:     "missionflow",
		SSLMode:  "disable",
	})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "postgres", cfg.driverName)
	assert.Equal(suite.T(),
		"host=db.local port=5432 user=mission password=secret dbname=missionflow sslmode=disable", cfg.dsn)
}

func (suite *DBProviderTestSuite) TestGetDBConfigSQLiteRelativePath() {
	p := NewDBProvider("/srv/mission", config.DataSource{})

	cfg, err := p.getDBConfig(config.DataSource{Type: "sqlite", Path: "repository/database/workflow.db",
		Options: "_pragma=busy_timeout(5000)"})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "sqlite", cfg.driverName)
	assert.Equal(suite.T(), "/srv/mission/repository/database/workflow.db?_pragma=busy_timeout(5000)", cfg.dsn)
}

func (suite *DBProviderTestSuite) TestGetDBConfigUnsupported() {
	p := NewDBProvider("/srv/mission", config.DataSource{})

	_, err := p.getDBConfig(config.DataSource{Type: "oracle"})

	assert.Error(suite.T(), err)
}

func (suite *DBProviderTestSuite) TestGetDBClientUnknownName() {
	p := NewDBProvider("/srv/mission", config.DataSource{})

	c, err := p.GetDBClient("identity")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), c)
}

func (suite *DBProviderTestSuite) TestGetDBClientSQLite() {
	dir := suite.T().TempDir()
	p := NewDBProvider(dir, config.DataSource{Type: "sqlite", Path: "workflow.db"})
	defer func() {
		_ = p.Close()
	}()

	c, err := p.GetDBClient(WorkflowDB)
	require.NoError(suite.T(), err)

	again, err := p.GetDBClient(WorkflowDB)
	require.NoError(suite.T(), err)
	assert.Same(suite.T(), c, again)

	_, err = c.Execute(model.DBQuery{ID: "T-1", Query: "CREATE TABLE SAMPLE (ID INTEGER)"})
	require.NoError(suite.T(), err)
	affected, err := c.Execute(model.DBQuery{ID: "T-2", Query: "INSERT INTO SAMPLE (ID) VALUES (?)"}, 7)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), affected)

	rows, err := c.Query(model.DBQuery{ID: "T-3", Query: "SELECT ID FROM SAMPLE"})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), int64(7), rows[0]["id"])

	assert.FileExists(suite.T(), filepath.Join(dir, "workflow.db"))
}

func (suite *DBProviderTestSuite) TestCloseWithoutClient() {
	p := NewDBProvider("/srv/mission", config.DataSource{})

	assert.NoError(suite.T(), p.Close())
}
