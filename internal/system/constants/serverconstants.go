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

// Package constants defines global constants used across the system module.
package constants

const (
	// LogLevelEnvironmentVariable is the environment variable name for the log level.
	LogLevelEnvironmentVariable = "LOG_LEVEL"
	// LogFormatEnvironmentVariable is the environment variable name for the log output format.
	LogFormatEnvironmentVariable = "LOG_FORMAT"
	// DefaultLogLevel is the default log level used if not specified.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the default log format used if not specified.
	DefaultLogFormat = "text"
)

// ContentTypeHeaderName is the name of the content type header used in HTTP requests.
const ContentTypeHeaderName = "Content-Type"

// ContentDispositionHeaderName is the name of the content disposition header used for downloads.
const ContentDispositionHeaderName = "Content-Disposition"

// ContentTypeJSON is the content type for JSON data.
const ContentTypeJSON = "application/json"

// DefaultConfigPath is the path of the deployment configuration relative to the server home.
const DefaultConfigPath = "repository/conf/deployment.yaml"
