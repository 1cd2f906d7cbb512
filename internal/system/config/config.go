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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"

	"github.com/skyforge/missionflow/internal/system/log"

	yaml "gopkg.in/yaml.v3"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	HTTPOnly bool   `yaml:"http_only"`
}

// SecurityConfig holds the security configuration details.
type SecurityConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// CORSConfig holds the CORS configuration details.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DataSource holds the individual database connection details.
type DataSource struct {
	Type            string `yaml:"type"`
	Hostname        string `yaml:"hostname"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslmode"`
	Path            string `yaml:"path"`
	Options         string `yaml:"options"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

// DatabaseConfig holds the different database configuration details.
type DatabaseConfig struct {
	Workflow DataSource `yaml:"workflow"`
}

// CacheConfig holds the result cache configuration details.
type CacheConfig struct {
	Disabled        bool   `yaml:"disabled"`
	Size            int    `yaml:"size"`
	TTL             int64  `yaml:"ttl_ms"`
	EvictionPolicy  string `yaml:"eviction_policy"`
	CleanupInterval int    `yaml:"cleanup_interval"`
}

// ExecutionConfig holds the workflow execution configuration details.
type ExecutionConfig struct {
	MaxBatchSize      int    `yaml:"max_batch_size"`
	NodeTimeout       int64  `yaml:"node_timeout_ms"`
	ConditionPolicy   string `yaml:"condition_policy"`
	TransitiveSkip    *bool  `yaml:"transitive_skip"`
	ShortestFirst     *bool  `yaml:"shortest_first"`
	AutoTune          *bool  `yaml:"auto_tune"`
	ValidateOnExecute *bool  `yaml:"validate_on_execute"`
}

// LayoutConfig holds the auto-layout configuration details.
type LayoutConfig struct {
	Direction   string  `yaml:"direction"`
	NodeWidth   float64 `yaml:"node_width"`
	NodeHeight  float64 `yaml:"node_height"`
	NodeSpacing float64 `yaml:"node_spacing"`
	RankSpacing float64 `yaml:"rank_spacing"`
	MinDistance float64 `yaml:"min_distance"`
	GridSize    float64 `yaml:"grid_size"`
}

// ViewportConfig holds the viewport virtualization configuration details.
type ViewportConfig struct {
	Threshold  int     `yaml:"threshold"`
	BufferZone float64 `yaml:"buffer_zone"`
	Debounce   int64   `yaml:"debounce_ms"`
}

// StorageConfig holds the workflow storage configuration details.
type StorageConfig struct {
	Type          string `yaml:"type"`
	Directory     string `yaml:"directory"`
	CollectionKey string `yaml:"collection_key"`
	Watch         bool   `yaml:"watch"`
	ImportPattern string `yaml:"import_pattern"`
}

// NodeTypeOverride overrides the capabilities of every node type matching a glob pattern.
type NodeTypeOverride struct {
	Pattern                string `yaml:"pattern"`
	Cacheable              *bool  `yaml:"cacheable"`
	ContinueOnFail         *bool  `yaml:"continue_on_fail"`
	ToleratesMissingInputs *bool  `yaml:"tolerates_missing_inputs"`
	Timeout                int64  `yaml:"timeout_ms"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server    ServerConfig       `yaml:"server"`
	Security  SecurityConfig     `yaml:"security"`
	CORS      CORSConfig         `yaml:"cors"`
	Database  DatabaseConfig     `yaml:"database"`
	Cache     CacheConfig        `yaml:"cache"`
	Execution ExecutionConfig    `yaml:"execution"`
	Layout    LayoutConfig       `yaml:"layout"`
	Viewport  ViewportConfig     `yaml:"viewport"`
	Storage   StorageConfig      `yaml:"storage"`
	NodeTypes []NodeTypeOverride `yaml:"node_types"`
}

// LoadConfig loads the configurations from the specified YAML file.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BoolOrDefault returns the value behind an optional boolean, or def when it is unset.
func BoolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
