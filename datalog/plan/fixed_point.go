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

package plan

import (
	opentracing "github.com/opentracing/opentracing-go"

	"github.com/ikuehne/data-goblin/datalog"
)

// RuleSpec is one rule of a recursive component prepared for fixpoint
// evaluation. Sources is parallel to the rule body; entries for atoms
// over component relations are nil and are bound to the working tables
// by the fixpoint, everything else carries a fixed source.
type RuleSpec struct {
	Rule    datalog.Rule
	Sources []TupleSource
}

// FixedPoint materializes a recursive component: the set of mutually
// recursive relations, their base rules (no reference to any component
// relation) and their recursive rules. When Linear is set every
// recursive rule has exactly one component atom and the semi-naive
// strategy applies; otherwise evaluation falls back to bottom-up
// iteration.
type FixedPoint struct {
	Members   []string
	Base      []RuleSpec
	Recursive []RuleSpec
	Linear    bool
}

// Run computes the least fixed point, returning the materialized table
// for every member relation and the number of iteration rounds taken.
func (f *FixedPoint) Run(ctx *datalog.Context) (map[string]*datalog.TupleSet, int, error) {
	strategy := "bottom-up"
	if f.Linear {
		strategy = "semi-naive"
	}
	span, ctx := ctx.Span("plan.FixedPoint", opentracing.Tag{Key: "strategy", Value: strategy})
	defer span.Finish()

	if f.Linear {
		return f.semiNaive(ctx)
	}
	return f.bottomUp(ctx)
}

// evalRule runs one rule body to completion and returns the head
// tuples it derives. bind supplies sources for component atoms.
func evalRule(ctx *datalog.Context, spec RuleSpec, bind func(relation string, atomIdx int) TupleSource) ([]datalog.Tuple, error) {
	sources := make([]TupleSource, len(spec.Sources))
	for i, src := range spec.Sources {
		if src != nil {
			sources[i] = src
			continue
		}
		sources[i] = bind(spec.Rule.Body[i].Relation, i)
	}

	node := NewProject(NewConjunction(spec.Rule.Body, sources), spec.Rule.Head.Vars())
	iter, err := node.Iter(ctx, datalog.NewFrame())
	if err != nil {
		return nil, err
	}
	frames, err := datalog.FrameIterToFrames(iter)
	if err != nil {
		return nil, err
	}

	tuples := make([]datalog.Tuple, 0, len(frames))
	for _, frame := range frames {
		tuples = append(tuples, spec.Rule.Head.Substitute(frame).GroundTuple())
	}
	return tuples, nil
}

// seed initializes every member table with the union of its base-rule
// outputs.
func (f *FixedPoint) seed(ctx *datalog.Context) (map[string]*datalog.TupleSet, error) {
	tables := make(map[string]*datalog.TupleSet, len(f.Members))
	for _, m := range f.Members {
		tables[m] = datalog.NewTupleSet()
	}
	for _, spec := range f.Base {
		tuples, err := evalRule(ctx, spec, nil)
		if err != nil {
			return nil, err
		}
		tables[spec.Rule.Head.Relation].AddAll(tuples)
	}
	return tables, nil
}

// bottomUp iterates every recursive rule against the full tables until
// a complete round adds no new tuples. Tables are only merged between
// rounds, so every rule in a round observes the same state.
func (f *FixedPoint) bottomUp(ctx *datalog.Context) (map[string]*datalog.TupleSet, int, error) {
	tables, err := f.seed(ctx)
	if err != nil {
		return nil, 0, err
	}

	bind := func(relation string, _ int) TupleSource {
		table := tables[relation]
		return NewFuncSource(relation, func() []datalog.Tuple {
			return table.Slice()
		})
	}

	rounds := 0
	for {
		rounds++

		type derived struct {
			relation string
			tuples   []datalog.Tuple
		}
		var pending []derived
		for _, spec := range f.Recursive {
			tuples, err := evalRule(ctx, spec, bind)
			if err != nil {
				return nil, rounds, err
			}
			pending = append(pending, derived{spec.Rule.Head.Relation, tuples})
		}

		added := 0
		for _, d := range pending {
			added += tables[d.relation].AddAll(d.tuples)
		}
		if added == 0 {
			return tables, rounds, nil
		}
	}
}

// semiNaive tracks, per member, the delta of tuples added in the
// previous round, and evaluates each linear recursive rule with its
// single component atom over that delta. Reads within a round see the
// previous round's deltas; writes accumulate into the next round's.
func (f *FixedPoint) semiNaive(ctx *datalog.Context) (map[string]*datalog.TupleSet, int, error) {
	full, err := f.seed(ctx)
	if err != nil {
		return nil, 0, err
	}
	delta := make(map[string]*datalog.TupleSet, len(f.Members))
	for _, m := range f.Members {
		delta[m] = full[m].Copy()
	}

	bind := func(relation string, _ int) TupleSource {
		return NewFuncSource(relation, func() []datalog.Tuple {
			return delta[relation].Slice()
		})
	}

	rounds := 0
	for {
		rounds++

		next := make(map[string]*datalog.TupleSet, len(f.Members))
		for _, m := range f.Members {
			next[m] = datalog.NewTupleSet()
		}

		for _, spec := range f.Recursive {
			tuples, err := evalRule(ctx, spec, bind)
			if err != nil {
				return nil, rounds, err
			}
			head := spec.Rule.Head.Relation
			for _, t := range tuples {
				if full[head].Contains(t) {
					continue
				}
				next[head].Add(t)
			}
		}

		empty := true
		for _, m := range f.Members {
			if next[m].Len() > 0 {
				empty = false
			}
			full[m].AddAll(next[m].Slice())
		}
		delta = next
		if empty {
			return full, rounds, nil
		}
	}
}
