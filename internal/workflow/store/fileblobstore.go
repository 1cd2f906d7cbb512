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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/skyforge/missionflow/internal/system/log"
)

const fileBlobLoggerComponentName = "FileBlobStore"

const blobFileExtension = ".json"

// FileBlobStore keeps one file per key in a directory. Reads are cached; when watching is
// enabled, external edits to the directory invalidate the cached copies.
type FileBlobStore struct {
	dir     string
	mu      sync.RWMutex
	cached  map[string][]byte
	watcher *fsnotify.Watcher
	done    chan struct{}
	logger  *log.Logger
}

// NewFileBlobStore creates the directory if needed and returns a store rooted at it.
func NewFileBlobStore(dir string, watch bool) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	s := &FileBlobStore{
		dir:    dir,
		cached: make(map[string][]byte),
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, fileBlobLoggerComponentName)),
	}
	if !watch {
		return s, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create storage watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch storage directory: %w", err)
	}
	s.watcher = watcher
	s.done = make(chan struct{})
	go s.watch()
	return s, nil
}

// Get implements BlobStore.
func (s *FileBlobStore) Get(key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	value, ok := s.cached[key]
	s.mu.RUnlock()
	if ok {
		return append([]byte(nil), value...), true, nil
	}

	value, err = os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %q: %w", key, err)
	}

	s.mu.Lock()
	s.cached[key] = value
	s.mu.Unlock()
	return append([]byte(nil), value...), true, nil
}

// Put implements BlobStore. The file is replaced atomically.
func (s *FileBlobStore) Put(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write blob %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write blob %q: %w", key, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace blob %q: %w", key, err)
	}

	s.mu.Lock()
	s.cached[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

// Invalidate drops the cached copy of key.
func (s *FileBlobStore) Invalidate(key string) {
	s.mu.Lock()
	delete(s.cached, key)
	s.mu.Unlock()
}

// Close stops watching the directory.
func (s *FileBlobStore) Close() error {
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	<-s.done
	return err
}

func (s *FileBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.dir, key+blobFileExtension), nil
}

func (s *FileBlobStore) watch() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, blobFileExtension) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key := strings.TrimSuffix(name, blobFileExtension)
			s.Invalidate(key)
			s.logger.Debug("Blob changed on disk", log.String("key", key), log.String("op", event.Op.String()))
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Storage watcher error", log.Error(err))
		}
	}
}
