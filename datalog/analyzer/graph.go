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

package analyzer

import (
	"sort"

	"github.com/ikuehne/data-goblin/datalog"
)

// ruleGraph is the relation-dependency graph of every intensional
// relation reachable from a query: an edge from a relation to each
// relation named in one of its rule bodies. Strongly connected
// components of this graph are the units of recursive evaluation.
type ruleGraph struct {
	rules map[string][]datalog.Rule
	edges map[string][]string
	scc   map[string][]string
	self  map[string]bool
}

// newRuleGraph walks the rule graph from root, collecting the rules of
// every reachable intensional relation, then condenses it into
// strongly connected components.
func newRuleGraph(root string, rulesOf func(name string) ([]datalog.Rule, bool)) *ruleGraph {
	g := &ruleGraph{
		rules: make(map[string][]datalog.Rule),
		edges: make(map[string][]string),
		scc:   make(map[string][]string),
		self:  make(map[string]bool),
	}

	queue := []string{root}
	visited := make(map[string]struct{})
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := visited[name]; ok {
			continue
		}
		visited[name] = struct{}{}

		rules, ok := rulesOf(name)
		if !ok {
			continue
		}
		g.rules[name] = rules

		seen := make(map[string]struct{})
		for _, rule := range rules {
			for _, atom := range rule.Body {
				if atom.Relation == name {
					g.self[name] = true
				}
				if _, ok := seen[atom.Relation]; ok {
					continue
				}
				seen[atom.Relation] = struct{}{}
				g.edges[name] = append(g.edges[name], atom.Relation)
				queue = append(queue, atom.Relation)
			}
		}
	}

	g.condense()
	return g
}

// condense runs Tarjan's algorithm over the collected nodes, filling
// in the component of every relation that has rules.
func (g *ruleGraph) condense() {
	index := 0
	indices := make(map[string]int)
	lowlink := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, ok := g.rules[w]; !ok {
				// extensional or undefined; a leaf
				continue
			}
			if _, ok := indices[w]; !ok {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var members []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				members = append(members, w)
				if w == v {
					break
				}
			}
			sort.Strings(members)
			for _, m := range members {
				g.scc[m] = members
			}
		}
	}

	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := indices[name]; !ok {
			strongConnect(name)
		}
	}
}

// inCycle reports whether the relation participates in a recursion
// cycle: its component has more than one member, or one of its rules
// references the relation itself.
func (g *ruleGraph) inCycle(name string) bool {
	return len(g.scc[name]) > 1 || g.self[name]
}

// componentOf returns the members of the relation's strongly connected
// component, in sorted order.
func (g *ruleGraph) componentOf(name string) []string {
	return g.scc[name]
}

// transitiveDeps returns every relation read, directly or transitively,
// when evaluating the given component: the members themselves plus
// everything reachable from their rule bodies.
func (g *ruleGraph) transitiveDeps(members []string) []string {
	seen := make(map[string]struct{})
	queue := append([]string(nil), members...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		queue = append(queue, g.edges[name]...)
	}

	deps := make([]string, 0, len(seen))
	for name := range seen {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}
