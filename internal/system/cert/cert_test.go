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

package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/skyforge/missionflow/internal/system/config"
)

type CertTestSuite struct {
	suite.Suite
	home string
}

func TestCertSuite(t *testing.T) {
	suite.Run(t, new(CertTestSuite))
}

func (suite *CertTestSuite) SetupTest() {
	suite.home = suite.T().TempDir()
	require.NoError(suite.T(), os.MkdirAll(filepath.Join(suite.home, "repository", "resources", "security"), 0o750))

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(suite.T(), err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		DNSNames:     []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(suite.T(), err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(suite.T(), err)

	suite.write("repository/resources/security/server.cert",
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	suite.write("repository/resources/security/server.key",
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}))
}

func (suite *CertTestSuite) write(rel string, data []byte) {
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.home, rel), data, 0o600))
}

func (suite *CertTestSuite) TestRelativePaths() {
	tlsConfig, err := GetTLSConfig(config.SecurityConfig{
		CertFile: "repository/resources/security/server.cert",
		KeyFile:  "repository/resources/security/server.key",
	}, suite.home)

	require.NoError(suite.T(), err)
	assert.Len(suite.T(), tlsConfig.Certificates, 1)
	assert.Equal(suite.T(), uint16(tls.VersionTLS12), tlsConfig.MinVersion)
}

func (suite *CertTestSuite) TestAbsolutePaths() {
	_, err := GetTLSConfig(config.SecurityConfig{
		CertFile: filepath.Join(suite.home, "repository/resources/security/server.cert"),
		KeyFile:  filepath.Join(suite.home, "repository/resources/security/server.key"),
	}, "/elsewhere")

	assert.NoError(suite.T(), err)
}

func (suite *CertTestSuite) TestMissingFiles() {
	_, err := GetTLSConfig(config.SecurityConfig{CertFile: "missing.cert", KeyFile: "missing.key"}, suite.home)
	assert.ErrorContains(suite.T(), err, "certificate file not found")

	_, err = GetTLSConfig(config.SecurityConfig{
		CertFile: "repository/resources/security/server.cert",
		KeyFile:  "missing.key",
	}, suite.home)
	assert.ErrorContains(suite.T(), err, "key file not found")

	_, err = GetTLSConfig(config.SecurityConfig{}, suite.home)
	assert.Error(suite.T(), err)
}

func (suite *CertTestSuite) TestMismatchedPair() {
	suite.write("bad.key", []byte("not a key"))

	_, err := GetTLSConfig(config.SecurityConfig{
		CertFile: "repository/resources/security/server.cert",
		KeyFile:  "bad.key",
	}, suite.home)
	assert.ErrorContains(suite.T(), err, "failed to load key pair")
}
