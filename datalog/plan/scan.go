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
	"fmt"
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/ikuehne/data-goblin/datalog"
)

// Scan iterates a tuple source and emits, for each tuple, the frame
// obtained by unifying its atom against the tuple under the base
// frame. Tuples that fail to unify are skipped.
type Scan struct {
	Atom   datalog.Atom
	Source TupleSource
}

// NewScan creates a scan of the given source.
func NewScan(atom datalog.Atom, source TupleSource) *Scan {
	return &Scan{Atom: atom, Source: source}
}

func (s *Scan) String() string {
	return fmt.Sprintf("Scan(%s)", s.Atom)
}

func (s *Scan) Iter(ctx *datalog.Context, base datalog.Frame) (datalog.FrameIter, error) {
	span, ctx := ctx.Span("plan.Scan", opentracing.Tag{Key: "relation", Value: s.Atom.Relation})
	tuples, err := s.Source.Iter(ctx)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return newSpanIter(span, &scanIter{atom: s.Atom, base: base, tuples: tuples}), nil
}

type scanIter struct {
	atom   datalog.Atom
	base   datalog.Frame
	tuples TupleIter
}

func (i *scanIter) Next() (datalog.Frame, error) {
	for {
		t, err := i.tuples.Next()
		if err != nil {
			return nil, err
		}
		if frame, ok := datalog.UnifyTuple(i.atom, t, i.base); ok {
			return frame, nil
		}
	}
}

func (i *scanIter) Close() error {
	return i.tuples.Close()
}

// ExtendScan is the nested-loop join operator: for each frame produced
// by the child it iterates the tuple source, emitting every successful
// unification of its atom under that frame.
type ExtendScan struct {
	Child  Node
	Atom   datalog.Atom
	Source TupleSource
}

// NewExtendScan creates an ExtendScan over the given child.
func NewExtendScan(child Node, atom datalog.Atom, source TupleSource) *ExtendScan {
	return &ExtendScan{Child: child, Atom: atom, Source: source}
}

func (e *ExtendScan) String() string {
	return fmt.Sprintf("ExtendScan(%s, %s)", e.Child, e.Atom)
}

func (e *ExtendScan) Iter(ctx *datalog.Context, base datalog.Frame) (datalog.FrameIter, error) {
	span, ctx := ctx.Span("plan.ExtendScan", opentracing.Tag{Key: "relation", Value: e.Atom.Relation})
	outer, err := e.Child.Iter(ctx, base)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return newSpanIter(span, &extendScanIter{
		ctx:    ctx,
		atom:   e.Atom,
		source: e.Source,
		outer:  outer,
	}), nil
}

type extendScanIter struct {
	ctx    *datalog.Context
	atom   datalog.Atom
	source TupleSource
	outer  datalog.FrameIter
	frame  datalog.Frame
	inner  TupleIter
}

func (i *extendScanIter) Next() (datalog.Frame, error) {
	for {
		if i.inner == nil {
			frame, err := i.outer.Next()
			if err != nil {
				return nil, err
			}
			inner, err := i.source.Iter(i.ctx)
			if err != nil {
				return nil, err
			}
			i.frame = frame
			i.inner = inner
		}

		t, err := i.inner.Next()
		if err == io.EOF {
			if err := i.inner.Close(); err != nil {
				return nil, err
			}
			i.inner = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		if frame, ok := datalog.UnifyTuple(i.atom, t, i.frame); ok {
			return frame, nil
		}
	}
}

func (i *extendScanIter) Close() error {
	if i.inner != nil {
		inner := i.inner
		i.inner = nil
		if err := inner.Close(); err != nil {
			_ = i.outer.Close()
			return err
		}
	}
	return i.outer.Close()
}
