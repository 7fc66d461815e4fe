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

// Package analyzer turns query atoms into executable plans. It expands
// references to intensional relations into sub-plans, detects
// recursion cycles in the rule graph and materializes them with the
// appropriate fixed-point strategy, consulting the view cache first.
package analyzer

import (
	"github.com/ikuehne/data-goblin/datalog"
	"github.com/ikuehne/data-goblin/datalog/plan"
	"github.com/ikuehne/data-goblin/storage"
)

// Analyzer builds plans against a store and a view cache.
type Analyzer struct {
	store *storage.Store
	views *datalog.ViewCache
}

// New returns an analyzer over the given store and cache.
func New(store *storage.Store, views *datalog.ViewCache) *Analyzer {
	return &Analyzer{store: store, views: views}
}

// BuildQuery compiles a query atom into a plan whose root emits, in a
// deterministic order, the bindings of the atom's variables. For an
// acyclic intensional relation each rule is deduplicated on its own, so
// a binding derived by several rules is emitted once per such rule.
func (a *Analyzer) BuildQuery(ctx *datalog.Context, atom datalog.Atom) (plan.Node, error) {
	rel, ok := a.store.Relation(atom.Relation)
	if !ok || rel.Kind() == storage.Extensional {
		src, err := a.sourceFor(ctx, atom.Relation)
		if err != nil {
			return nil, err
		}
		return plan.NewScan(atom, src), nil
	}

	if tuples, ok := a.views.Lookup(atom.Relation); ok {
		return plan.NewScan(atom, plan.NewSliceSource(atom.Relation, tuples)), nil
	}

	g := a.graphFrom(atom.Relation)
	if g.inCycle(atom.Relation) {
		tables, err := a.materialize(ctx, g, atom.Relation)
		if err != nil {
			return nil, err
		}
		source := plan.NewSliceSource(atom.Relation, tables[atom.Relation].Slice())
		return plan.NewScan(atom, source), nil
	}

	// Acyclic: one scan per rule, unioned in definition order.
	children := make([]plan.Node, 0, len(rel.Rules()))
	for _, rule := range rel.Rules() {
		src, err := a.ruleSource(ctx, atom.Relation, rule)
		if err != nil {
			return nil, err
		}
		children = append(children, plan.NewScan(atom, src))
	}
	return plan.NewDisjunction(children...), nil
}

// sourceFor resolves a relation name to a tuple source. Undefined
// relations resolve to an empty source, extensional relations to their
// stored tuples, cached views to their materialization, recursive
// relations to an eager fixed point, and acyclic intensional relations
// to a lazy union of their per-rule sub-plans.
func (a *Analyzer) sourceFor(ctx *datalog.Context, name string) (plan.TupleSource, error) {
	rel, ok := a.store.Relation(name)
	if !ok {
		return plan.NewSliceSource(name, nil), nil
	}
	if rel.Kind() == storage.Extensional {
		return plan.NewFuncSource(name, rel.TupleSlice), nil
	}

	if tuples, ok := a.views.Lookup(name); ok {
		return plan.NewSliceSource(name, tuples), nil
	}

	g := a.graphFrom(name)
	if g.inCycle(name) {
		tables, err := a.materialize(ctx, g, name)
		if err != nil {
			return nil, err
		}
		return plan.NewSliceSource(name, tables[name].Slice()), nil
	}

	rules := rel.Rules()
	sources := make([]plan.TupleSource, 0, len(rules))
	for _, rule := range rules {
		src, err := a.ruleSource(ctx, name, rule)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return plan.NewMultiSource(name, sources...), nil
}

// ruleSource builds the sub-plan for one rule and wraps it as a tuple
// source emitting instantiated heads.
func (a *Analyzer) ruleSource(ctx *datalog.Context, name string, rule datalog.Rule) (plan.TupleSource, error) {
	node, err := a.ruleNode(ctx, rule)
	if err != nil {
		return nil, err
	}
	return plan.NewSubplanSource(name, rule.Head, node), nil
}

// ruleNode plans a single rule body: a left-deep conjunction in written
// order projected onto the head's variables.
func (a *Analyzer) ruleNode(ctx *datalog.Context, rule datalog.Rule) (plan.Node, error) {
	sources := make([]plan.TupleSource, len(rule.Body))
	for i, atom := range rule.Body {
		src, err := a.sourceFor(ctx, atom.Relation)
		if err != nil {
			return nil, err
		}
		sources[i] = src
	}
	return plan.NewProject(plan.NewConjunction(rule.Body, sources), rule.Head.Vars()), nil
}

func (a *Analyzer) graphFrom(root string) *ruleGraph {
	return newRuleGraph(root, func(name string) ([]datalog.Rule, bool) {
		rel, ok := a.store.Relation(name)
		if !ok || rel.Kind() != storage.Intensional {
			return nil, false
		}
		return rel.Rules(), true
	})
}

// materialize evaluates the recursive component containing name to a
// fixed point and installs every member in the view cache, keyed by the
// transitive set of relations read.
func (a *Analyzer) materialize(ctx *datalog.Context, g *ruleGraph, name string) (map[string]*datalog.TupleSet, error) {
	members := g.componentOf(name)
	inComponent := make(map[string]struct{}, len(members))
	for _, m := range members {
		inComponent[m] = struct{}{}
	}

	fp := &plan.FixedPoint{Members: members, Linear: true}
	for _, m := range members {
		for _, rule := range g.rules[m] {
			spec := plan.RuleSpec{Rule: rule, Sources: make([]plan.TupleSource, len(rule.Body))}
			recursive := 0
			for i, atom := range rule.Body {
				if _, ok := inComponent[atom.Relation]; ok {
					recursive++
					continue
				}
				src, err := a.sourceFor(ctx, atom.Relation)
				if err != nil {
					return nil, err
				}
				spec.Sources[i] = src
			}

			if recursive == 0 {
				fp.Base = append(fp.Base, spec)
				continue
			}
			fp.Recursive = append(fp.Recursive, spec)
			if recursive > 1 {
				fp.Linear = false
			}
		}
	}

	tables, rounds, err := fp.Run(ctx)
	if err != nil {
		return nil, err
	}

	deps := g.transitiveDeps(members)
	for _, m := range members {
		a.views.Install(m, tables[m].Slice(), deps)
	}

	ctx.Logger().WithFields(map[string]interface{}{
		"component": members,
		"rounds":    rounds,
		"linear":    fp.Linear,
	}).Debug("materialized recursive view")

	return tables, nil
}
