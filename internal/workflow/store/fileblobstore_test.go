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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FileBlobStoreTestSuite struct {
	suite.Suite
	dir string
}

func TestFileBlobStoreSuite(t *testing.T) {
	suite.Run(t, new(FileBlobStoreTestSuite))
}

func (suite *FileBlobStoreTestSuite) SetupTest() {
	suite.dir = filepath.Join(suite.T().TempDir(), "blobs")
}

func (suite *FileBlobStoreTestSuite) TestRoundTrip() {
	s, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)
	defer func() { _ = s.Close() }()

	require.NoError(suite.T(), s.Put("workflows", []byte(`[]`)))

	value, ok, err := s.Get("workflows")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), `[]`, string(value))

	onDisk, err := os.ReadFile(filepath.Join(suite.dir, "workflows.json"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), `[]`, string(onDisk))
}

func (suite *FileBlobStoreTestSuite) TestMissingKey() {
	s, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)

	value, ok, err := s.Get("nothing")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
	assert.Nil(suite.T(), value)
}

func (suite *FileBlobStoreTestSuite) TestInvalidKeys() {
	s, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		assert.Error(suite.T(), s.Put(key, []byte("x")), key)
		_, _, err := s.Get(key)
		assert.Error(suite.T(), err, key)
	}
}

func (suite *FileBlobStoreTestSuite) TestReturnedBytesAreCopies() {
	s, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), s.Put("k", []byte("abc")))

	value, _, err := s.Get("k")
	require.NoError(suite.T(), err)
	value[0] = 'z'

	again, _, err := s.Get("k")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "abc", string(again))
}

func (suite *FileBlobStoreTestSuite) TestExternalEditWithoutWatchIsNotSeen() {
	s, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), s.Put("k", []byte("old")))

	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.dir, "k.json"), []byte("new"), 0o600))

	value, _, err := s.Get("k")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "old", string(value))

	s.Invalidate("k")
	value, _, err = s.Get("k")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new", string(value))
}

func (suite *FileBlobStoreTestSuite) TestWatchInvalidatesOnExternalEdit() {
	s, err := NewFileBlobStore(suite.dir, true)
	require.NoError(suite.T(), err)
	defer func() { _ = s.Close() }()

	require.NoError(suite.T(), s.Put("k", []byte("old")))
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.dir, "k.json"), []byte("new"), 0o600))

	assert.Eventually(suite.T(), func() bool {
		value, _, err := s.Get("k")
		return err == nil && string(value) == "new"
	}, 2*time.Second, 20*time.Millisecond)
}

func (suite *FileBlobStoreTestSuite) TestStoreOnFiles() {
	blobs, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)

	_, err = New(blobs, "", nil).Save(mission("m1", "Survey"))
	require.NoError(suite.T(), err)

	reopened, err := NewFileBlobStore(suite.dir, false)
	require.NoError(suite.T(), err)
	loaded, err := New(reopened, "", nil).Load("m1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Survey", loaded.Definition.Metadata.Name)
}
