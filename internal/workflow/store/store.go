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

// Package store persists workflow definitions as one JSON collection in a blob store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"

	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/system/utils"
	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
	"github.com/skyforge/missionflow/internal/workflow/nodetype"
)

const loggerComponentName = "WorkflowStore"

// DefaultCollectionKey is the blob key holding all workflow definitions.
const DefaultCollectionKey = "workflows"

var (
	// ErrWorkflowNotFound is returned when no definition has the requested id.
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrInvalidDocument is returned when stored or imported data is not a workflow document.
	ErrInvalidDocument = errors.New("invalid workflow document")
)

// SaveResult is a stored definition with the non-fatal issues found while validating it.
type SaveResult struct {
	Definition *model.WorkflowDefinition `json:"definition"`
	Warnings   []string                  `json:"warnings,omitempty"`
}

// Store reads and writes workflow definitions.
type Store struct {
	blobs         BlobStore
	collectionKey string
	registry      *nodetype.Registry
	now           func() time.Time
	mu            sync.Mutex
	logger        *log.Logger
}

// New creates a store keeping its collection under collectionKey in blobs.
func New(blobs BlobStore, collectionKey string, registry *nodetype.Registry) *Store {
	if collectionKey == "" {
		collectionKey = DefaultCollectionKey
	}
	if registry == nil {
		registry = nodetype.DefaultRegistry()
	}
	return &Store{
		blobs:         blobs,
		collectionKey: collectionKey,
		registry:      registry,
		now:           time.Now,
		logger:        log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Validate checks a definition for storage. Structural defects are returned as an error
// combining one *graph.GraphStructureError per defect. A missing start or end node and invalid
// node parameters are only reported as warnings.
func (s *Store) Validate(def *model.WorkflowDefinition) ([]string, error) {
	if err := graph.ValidateStructure(def); err != nil {
		return nil, err
	}

	warnings := make([]string, 0)
	for _, n := range def.Nodes {
		if verr := s.registry.ValidateNode(n); verr != nil {
			warnings = append(warnings, verr.Error())
		}
	}
	return append(warnings, EndpointWarnings(def, s.registry)...), nil
}

// EndpointWarnings reports a workflow without a start node or without an end node.
func EndpointWarnings(def *model.WorkflowDefinition, registry *nodetype.Registry) []string {
	hasStart, hasEnd := false, false
	for _, n := range def.Nodes {
		t := registry.Get(n.NodeType)
		hasStart = hasStart || t.IsStart
		hasEnd = hasEnd || t.IsEnd
	}
	var warnings []string
	if !hasStart {
		warnings = append(warnings, "workflow has no start node")
	}
	if !hasEnd {
		warnings = append(warnings, "workflow has no end node")
	}
	return warnings
}

// Save validates and stores a definition, replacing any definition with the same id. It assigns
// an id when missing, keeps the creation time of a replaced definition and stamps the update time,
// schema version and counts.
func (s *Store) Save(def *model.WorkflowDefinition) (*SaveResult, error) {
	warnings, err := s.Validate(def)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	stored := def.Clone()
	now := s.now().UTC()
	if stored.Metadata.ID == "" {
		stored.Metadata.ID = utils.GenerateUUID()
	}
	stored.Metadata.CreatedAt = now
	replaced := false
	for i := range all {
		if all[i].Metadata.ID == stored.Metadata.ID {
			stored.Metadata.CreatedAt = all[i].Metadata.CreatedAt
			all[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		all = append(all, stored)
	}
	stamp(stored, now)

	if err := s.writeAll(all); err != nil {
		return nil, err
	}
	s.logger.Debug("Workflow saved", log.String(log.LoggerKeyWorkflowID, stored.Metadata.ID),
		log.Bool("replaced", replaced), log.Int("warnings", len(warnings)))
	return &SaveResult{Definition: stored.Clone(), Warnings: warnings}, nil
}

// Load returns the definition with the given id.
func (s *Store) Load(id string) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, def := range all {
		if def.Metadata.ID == id {
			warnings, err := s.Validate(def)
			if err != nil {
				return nil, fmt.Errorf("stored workflow %q is invalid: %w", id, err)
			}
			return &SaveResult{Definition: def, Warnings: warnings}, nil
		}
	}
	return nil, ErrWorkflowNotFound
}

// List returns the metadata of every stored definition, most recently updated first.
func (s *Store) List() ([]model.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.Metadata, 0, len(all))
	for _, def := range all {
		out = append(out, def.Metadata)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Delete removes the definition with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	for i, def := range all {
		if def.Metadata.ID == id {
			all = append(all[:i], all[i+1:]...)
			return s.writeAll(all)
		}
	}
	return ErrWorkflowNotFound
}

// Export returns the indented JSON document of a definition and a file name for it.
func (s *Store) Export(id string) ([]byte, string, error) {
	loaded, err := s.Load(id)
	if err != nil {
		return nil, "", err
	}
	data, err := json.MarshalIndent(loaded.Definition, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode workflow: %w", err)
	}
	return data, exportFileName(loaded.Definition.Metadata), nil
}

// Import stores a definition given as a JSON document, migrating the legacy format. An id
// already taken by another stored definition is replaced by a fresh one.
func (s *Store) Import(data []byte) (*SaveResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	def, err := s.decode(gjson.ParseBytes(data))
	if err != nil {
		return nil, err
	}

	if def.Metadata.ID != "" {
		if _, err := s.Load(def.Metadata.ID); err == nil {
			s.logger.Info("Imported workflow id already exists, assigning a new id",
				log.String(log.LoggerKeyWorkflowID, def.Metadata.ID))
			def.Metadata.ID = ""
		}
	}
	return s.Save(def)
}

// ImportDirectory imports every file of fsys matching the doublestar pattern. Files that fail
// do not stop the others; their errors are combined in the returned error.
func (s *Store) ImportDirectory(fsys fs.FS, pattern string) ([]*SaveResult, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid import pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	results := make([]*SaveResult, 0, len(matches))
	var errs error
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		result, err := s.Import(data)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results = append(results, result)
	}
	s.logger.Info("Imported workflow directory", log.String("pattern", pattern),
		log.Int("imported", len(results)), log.Int("failed", len(multierr.Errors(errs))))
	return results, errs
}

// readAll loads the collection. Callers hold s.mu.
func (s *Store) readAll() ([]*model.WorkflowDefinition, error) {
	raw, ok, err := s.blobs.Get(s.collectionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow collection: %w", err)
	}
	if !ok || len(strings.TrimSpace(string(raw))) == 0 {
		return make([]*model.WorkflowDefinition, 0), nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: stored collection is malformed", ErrInvalidDocument)
	}

	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil, fmt.Errorf("%w: stored collection is not an array", ErrInvalidDocument)
	}
	all := make([]*model.WorkflowDefinition, 0)
	var decodeErr error
	doc.ForEach(func(_, item gjson.Result) bool {
		def, err := s.decode(item)
		if err != nil {
			decodeErr = err
			return false
		}
		all = append(all, def)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	return all, nil
}

// writeAll stores the collection. Callers hold s.mu.
func (s *Store) writeAll(all []*model.WorkflowDefinition) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode workflow collection: %w", err)
	}
	if err := s.blobs.Put(s.collectionKey, data); err != nil {
		return fmt.Errorf("failed to write workflow collection: %w", err)
	}
	return nil
}

func (s *Store) decode(item gjson.Result) (*model.WorkflowDefinition, error) {
	if !item.IsObject() {
		return nil, fmt.Errorf("%w: expected an object", ErrInvalidDocument)
	}
	if IsLegacy(item) {
		def, err := MigrateLegacy(item, s.now().UTC())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		s.logger.Debug("Migrated legacy workflow", log.String(log.LoggerKeyWorkflowID, def.Metadata.ID))
		return def, nil
	}
	if !item.Get("metadata").IsObject() {
		return nil, fmt.Errorf("%w: metadata is missing", ErrInvalidDocument)
	}
	def := &model.WorkflowDefinition{}
	if err := json.Unmarshal([]byte(item.Raw), def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return def, nil
}

func stamp(def *model.WorkflowDefinition, now time.Time) {
	def.Metadata.UpdatedAt = now
	def.Metadata.Version = model.CurrentSchemaVersion
	def.Metadata.NodeCount = len(def.Nodes)
	def.Metadata.EdgeCount = len(def.Edges)
	if def.Metadata.Author == "" {
		def.Metadata.Author = LegacyAuthor
	}
	if def.Metadata.Tags == nil {
		def.Metadata.Tags = []string{}
	}
	if def.Nodes == nil {
		def.Nodes = []model.WorkflowNode{}
	}
	if def.Edges == nil {
		def.Edges = []model.WorkflowEdge{}
	}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func exportFileName(meta model.Metadata) string {
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(meta.Name), "-"), "-")
	if slug == "" {
		slug = "workflow-" + meta.ID
	}
	return slug + ".json"
}
