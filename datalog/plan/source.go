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
	"io"

	"github.com/ikuehne/data-goblin/datalog"
)

// TupleIter is a lazy producer of ground tuples, exhausted with io.EOF.
type TupleIter interface {
	Next() (datalog.Tuple, error)
	Close() error
}

// TupleSource abstracts where a scan's tuples come from: a stored
// relation, a cached view, an in-flight fixpoint table or a sub-plan
// for an intensional relation. Iter may be called once per outer frame
// of a join, so implementations must support repeated iteration.
type TupleSource interface {
	Name() string
	Iter(ctx *datalog.Context) (TupleIter, error)
}

type sliceTupleIter struct {
	tuples []datalog.Tuple
	pos    int
}

func (i *sliceTupleIter) Next() (datalog.Tuple, error) {
	if i.pos >= len(i.tuples) {
		return nil, io.EOF
	}
	t := i.tuples[i.pos]
	i.pos++
	return t, nil
}

func (i *sliceTupleIter) Close() error {
	i.pos = len(i.tuples)
	return nil
}

// SliceSource serves a fixed slice of tuples, in order.
type SliceSource struct {
	name   string
	tuples []datalog.Tuple
}

func NewSliceSource(name string, tuples []datalog.Tuple) *SliceSource {
	return &SliceSource{name: name, tuples: tuples}
}

func (s *SliceSource) Name() string { return s.name }

func (s *SliceSource) Iter(*datalog.Context) (TupleIter, error) {
	return &sliceTupleIter{tuples: s.tuples}, nil
}

// FuncSource snapshots its tuples at the start of each iteration, so
// scans observe fixpoint tables as of the current round.
type FuncSource struct {
	name string
	fn   func() []datalog.Tuple
}

func NewFuncSource(name string, fn func() []datalog.Tuple) *FuncSource {
	return &FuncSource{name: name, fn: fn}
}

func (s *FuncSource) Name() string { return s.name }

func (s *FuncSource) Iter(*datalog.Context) (TupleIter, error) {
	return &sliceTupleIter{tuples: s.fn()}, nil
}

// SubplanSource derives tuples from a plan for one rule of an
// intensional relation: for every frame the plan produces, it emits
// the rule head instantiated under that frame.
type SubplanSource struct {
	name string
	head datalog.Atom
	node Node
}

func NewSubplanSource(name string, head datalog.Atom, node Node) *SubplanSource {
	return &SubplanSource{name: name, head: head, node: node}
}

func (s *SubplanSource) Name() string { return s.name }

func (s *SubplanSource) Iter(ctx *datalog.Context) (TupleIter, error) {
	iter, err := s.node.Iter(ctx, datalog.NewFrame())
	if err != nil {
		return nil, err
	}
	return &subplanTupleIter{head: s.head, iter: iter}, nil
}

type subplanTupleIter struct {
	head datalog.Atom
	iter datalog.FrameIter
}

func (i *subplanTupleIter) Next() (datalog.Tuple, error) {
	frame, err := i.iter.Next()
	if err != nil {
		return nil, err
	}
	return i.head.Substitute(frame).GroundTuple(), nil
}

func (i *subplanTupleIter) Close() error {
	return i.iter.Close()
}

// MultiSource concatenates sources in order; used to union the
// per-rule sources of an intensional relation.
type MultiSource struct {
	name    string
	sources []TupleSource
}

func NewMultiSource(name string, sources ...TupleSource) *MultiSource {
	return &MultiSource{name: name, sources: sources}
}

func (s *MultiSource) Name() string { return s.name }

func (s *MultiSource) Iter(ctx *datalog.Context) (TupleIter, error) {
	return &multiTupleIter{ctx: ctx, sources: s.sources}, nil
}

type multiTupleIter struct {
	ctx     *datalog.Context
	sources []TupleSource
	pos     int
	cur     TupleIter
}

func (i *multiTupleIter) Next() (datalog.Tuple, error) {
	for {
		if i.cur == nil {
			if i.pos >= len(i.sources) {
				return nil, io.EOF
			}
			cur, err := i.sources[i.pos].Iter(i.ctx)
			if err != nil {
				return nil, err
			}
			i.cur = cur
			i.pos++
		}

		t, err := i.cur.Next()
		if err == io.EOF {
			if err := i.cur.Close(); err != nil {
				return nil, err
			}
			i.cur = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}
}

func (i *multiTupleIter) Close() error {
	i.pos = len(i.sources)
	if i.cur != nil {
		cur := i.cur
		i.cur = nil
		return cur.Close()
	}
	return nil
}
