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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RuntimeConfigTestSuite struct {
	suite.Suite
}

func TestRuntimeConfigSuite(t *testing.T) {
	suite.Run(t, new(RuntimeConfigTestSuite))
}

func (suite *RuntimeConfigTestSuite) BeforeTest(suiteName, testName string) {
	ResetRuntime()
}

func (suite *RuntimeConfigTestSuite) TestInitializeRuntime() {
	cfg := &Config{
		Server:    ServerConfig{Hostname: "testhost", Port: 9000},
		Execution: ExecutionConfig{MaxBatchSize: 12},
	}

	err := InitializeRuntime("/test/mission/home", cfg)

	assert.NoError(suite.T(), err)
	runtime := GetRuntime()
	assert.Equal(suite.T(), "/test/mission/home", runtime.ServerHome)
	assert.Equal(suite.T(), "testhost", runtime.Config.Server.Hostname)
	assert.Equal(suite.T(), 12, runtime.Config.Execution.MaxBatchSize)
}

func (suite *RuntimeConfigTestSuite) TestInitializeRuntimeOnlyOnce() {
	first := &Config{Server: ServerConfig{Hostname: "firsthost", Port: 8000}}
	second := &Config{Server: ServerConfig{Hostname: "secondhost", Port: 9000}}

	assert.NoError(suite.T(), InitializeRuntime("/first/path", first))
	assert.NoError(suite.T(), InitializeRuntime("/second/path", second))

	runtime := GetRuntime()
	assert.Equal(suite.T(), "/first/path", runtime.ServerHome)
	assert.Equal(suite.T(), "firsthost", runtime.Config.Server.Hostname)
}

func (suite *RuntimeConfigTestSuite) TestGetRuntimePanicsWhenNotInitialized() {
	assert.Panics(suite.T(), func() {
		GetRuntime()
	})
}
