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

// Package plan provides the lazy frame producers queries compile to:
// scans, nested-loop joins, disjunctions, projections and recursive
// fixed points. Nodes compose into trees; parents pull frames from
// children one at a time.
package plan

import (
	"fmt"
	"io"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/ikuehne/data-goblin/datalog"
)

// Node is a lazy producer of frames. Iter starts iteration under the
// given base frame; every produced frame extends it.
type Node interface {
	fmt.Stringer
	Iter(ctx *datalog.Context, base datalog.Frame) (datalog.FrameIter, error)
}

// NewConjunction builds a left-deep tree of ExtendScans over the body
// atoms in written order: the first atom becomes the innermost Scan,
// each following atom wraps the tree in an ExtendScan. Sources must be
// parallel to atoms.
func NewConjunction(atoms []datalog.Atom, sources []TupleSource) Node {
	if len(atoms) == 0 {
		return emptyNode{}
	}
	var node Node = NewScan(atoms[0], sources[0])
	for i := 1; i < len(atoms); i++ {
		node = NewExtendScan(node, atoms[i], sources[i])
	}
	return node
}

// emptyNode produces no frames. It stands in for a conjunction with no
// atoms, which cannot be written at the surface.
type emptyNode struct{}

func (emptyNode) String() string { return "Empty" }

func (emptyNode) Iter(*datalog.Context, datalog.Frame) (datalog.FrameIter, error) {
	return datalog.FramesToIter(), nil
}

// spanIter finishes the given span when the wrapped iterator is
// exhausted or closed.
type spanIter struct {
	span     opentracing.Span
	iter     datalog.FrameIter
	finished bool
}

func newSpanIter(span opentracing.Span, iter datalog.FrameIter) datalog.FrameIter {
	return &spanIter{span: span, iter: iter}
}

func (i *spanIter) finish() {
	if !i.finished {
		i.span.Finish()
		i.finished = true
	}
}

func (i *spanIter) Next() (datalog.Frame, error) {
	frame, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, io.EOF
	}
	if err != nil {
		i.span.LogKV("error", err.Error())
		i.finish()
		return nil, err
	}
	return frame, nil
}

func (i *spanIter) Close() error {
	i.finish()
	return i.iter.Close()
}
