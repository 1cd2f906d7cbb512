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

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const testResourceDir = "../../../tests/resources"

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) getFilePath(filename string) string {
	return filepath.Join(testResourceDir, filename)
}

func (suite *ConfigTestSuite) TestLoadConfigValid() {
	config, err := LoadConfig(suite.getFilePath("deployment.yaml"))

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), config)

	assert.Equal(suite.T(), "localhost", config.Server.Hostname)
	assert.Equal(suite.T(), 8090, config.Server.Port)
	assert.Equal(suite.T(), "/path/to/cert.pem", config.Security.CertFile)

	assert.Equal(suite.T(), "postgres", config.Database.Workflow.Type)
	assert.Equal(suite.T(), "db.local", config.Database.Workflow.Hostname)
	assert.Equal(suite.T(), 5432, config.Database.Workflow.Port)

	assert.Equal(suite.T(), 500, config.Cache.Size)
	assert.Equal(suite.T(), int64(120000), config.Cache.TTL)

	assert.Equal(suite.T(), 8, config.Execution.MaxBatchSize)
	assert.Equal(suite.T(), int64(45000), config.Execution.NodeTimeout)
	assert.Equal(suite.T(), "fail_closed", config.Execution.ConditionPolicy)
	assert.NotNil(suite.T(), config.Execution.TransitiveSkip)
	assert.False(suite.T(), *config.Execution.TransitiveSkip)
	assert.Nil(suite.T(), config.Execution.AutoTune)

	assert.Equal(suite.T(), "LR", config.Layout.Direction)
	assert.Equal(suite.T(), float64(10), config.Layout.GridSize)
	assert.Equal(suite.T(), 75, config.Viewport.Threshold)
	assert.Equal(suite.T(), int64(50), config.Viewport.Debounce)

	assert.Equal(suite.T(), "file", config.Storage.Type)
	assert.Equal(suite.T(), "missions", config.Storage.CollectionKey)

	assert.Len(suite.T(), config.NodeTypes, 2)
	assert.Equal(suite.T(), "detect_*", config.NodeTypes[0].Pattern)
	assert.True(suite.T(), *config.NodeTypes[0].Cacheable)
	assert.Nil(suite.T(), config.NodeTypes[0].ContinueOnFail)
	assert.Equal(suite.T(), int64(60000), config.NodeTypes[1].Timeout)
}

func (suite *ConfigTestSuite) TestLoadConfigFileNotFound() {
	config, err := LoadConfig(suite.getFilePath("non_existent_config.yaml"))

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
	assert.Contains(suite.T(), err.Error(), "no such file or directory")
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidYAML() {
	config, err := LoadConfig(suite.getFilePath("invalid_deployment.yaml"))

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), config)
}

func (suite *ConfigTestSuite) TestBoolOrDefault() {
	yes := true
	no := false

	assert.True(suite.T(), BoolOrDefault(nil, true))
	assert.False(suite.T(), BoolOrDefault(nil, false))
	assert.True(suite.T(), BoolOrDefault(&yes, false))
	assert.False(suite.T(), BoolOrDefault(&no, true))
}
