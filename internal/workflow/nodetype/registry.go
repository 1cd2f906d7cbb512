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

package nodetype

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"
)

// Override adjusts the capabilities of every node type whose name matches Pattern.
type Override struct {
	Pattern                string
	Cacheable              *bool
	ContinueOnFail         *bool
	ToleratesMissingInputs *bool
	Timeout                time.Duration
}

type compiledOverride struct {
	Override
	matcher glob.Glob
}

// Registry resolves node type names to their declarations. Unknown names resolve to a
// conservative default: not cacheable, abort on failure, default estimate.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]Type
	overrides []compiledOverride
}

// NewRegistry creates a registry holding the given types.
func NewRegistry(types ...Type) *Registry {
	r := &Registry{types: make(map[string]Type, len(types))}
	for _, t := range types {
		r.types[t.Name] = t
	}
	return r
}

// Register adds or replaces a node type.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Name] = t
}

// ApplyOverrides compiles and installs capability overrides. Later overrides win.
func (r *Registry) ApplyOverrides(overrides []Override) error {
	compiled := make([]compiledOverride, 0, len(overrides))
	for _, o := range overrides {
		g, err := glob.Compile(o.Pattern)
		if err != nil {
			return fmt.Errorf("invalid node type pattern %q: %w", o.Pattern, err)
		}
		compiled = append(compiled, compiledOverride{Override: o, matcher: g})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = append(r.overrides, compiled...)
	return nil
}

// Lookup returns the effective declaration of a node type and whether it is registered.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	if !ok {
		t = Type{Name: name, EstimatedDuration: DefaultEstimatedDuration}
	}
	for _, o := range r.overrides {
		if !o.matcher.Match(name) {
			continue
		}
		if o.Cacheable != nil {
			t.Cacheable = *o.Cacheable
		}
		if o.ContinueOnFail != nil {
			t.ContinueOnFail = *o.ContinueOnFail
		}
		if o.ToleratesMissingInputs != nil {
			t.ToleratesMissingInputs = *o.ToleratesMissingInputs
		}
		if o.Timeout > 0 {
			t.Timeout = o.Timeout
		}
	}
	return t, ok
}

// Get returns the effective declaration of a node type, registered or not.
func (r *Registry) Get(name string) Type {
	t, _ := r.Lookup(name)
	return t
}

// Cacheable reports whether results of the node type may be cached.
func (r *Registry) Cacheable(name string) bool {
	return r.Get(name).Cacheable
}

// Estimate returns the static duration estimate of the node type.
func (r *Registry) Estimate(name string) time.Duration {
	return r.Get(name).Estimate()
}

// List returns every registered type with overrides applied, sorted by name.
func (r *Registry) List() []Type {
	r.mu.RLock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	out := make([]Type, 0, len(names))
	for _, name := range names {
		out = append(out, r.Get(name))
	}
	return out
}
