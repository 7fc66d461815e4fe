// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package datalog

import (
	"sync"
)

type viewEntry struct {
	tuples []Tuple
	deps   map[string]struct{}
}

// ViewCache holds materialized results of intensional relations,
// keyed by relation name, together with the set of relations each
// result was computed from. Invalidation cascades: dropping a view
// drops every view that depends on it.
type ViewCache struct {
	mu      sync.RWMutex
	entries map[string]*viewEntry
}

// NewViewCache returns an empty cache.
func NewViewCache() *ViewCache {
	return &ViewCache{entries: make(map[string]*viewEntry)}
}

// Lookup returns the cached tuples for the named view, if present.
func (c *ViewCache) Lookup(name string) ([]Tuple, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	if !ok {
		return nil, false
	}
	return e.tuples, true
}

// Install stores the materialized tuples for the named view along with
// the names of every relation that participated in the computation.
func (c *ViewCache) Install(name string, tuples []Tuple, deps []string) {
	depSet := make(map[string]struct{}, len(deps))
	for _, d := range deps {
		depSet[d] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &viewEntry{tuples: tuples, deps: depSet}
}

// Invalidate drops the entry for the changed relation and, cascading,
// every entry whose dependency set contains a dropped name.
func (c *ViewCache) Invalidate(changed string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := []string{changed}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		delete(c.entries, name)
		for viewName, e := range c.entries {
			if _, ok := e.deps[name]; ok {
				queue = append(queue, viewName)
			}
		}
	}
}

// Len returns the number of cached views.
func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
