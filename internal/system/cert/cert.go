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

// Package cert loads the TLS material of the server.
package cert

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skyforge/missionflow/internal/system/config"
)

// GetTLSConfig loads the certificate and key configured in security. Relative paths are
// resolved against serverHome.
func GetTLSConfig(security config.SecurityConfig, serverHome string) (*tls.Config, error) {
	if security.CertFile == "" || security.KeyFile == "" {
		return nil, errors.New("certificate and key files must both be configured")
	}
	certFilePath := resolve(serverHome, security.CertFile)
	keyFilePath := resolve(serverHome, security.KeyFile)

	if _, err := os.Stat(certFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("certificate file not found at %s", certFilePath)
	}
	if _, err := os.Stat(keyFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("key file not found at %s", keyFilePath)
	}

	cert, err := tls.LoadX509KeyPair(certFilePath, keyFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func resolve(serverHome, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(serverHome, p)
}
