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
	"strings"

	"github.com/ikuehne/data-goblin/datalog"
)

// Disjunction emits every frame from each child, in declaration order.
type Disjunction struct {
	Children []Node
}

// NewDisjunction creates a disjunction of the given children.
func NewDisjunction(children ...Node) *Disjunction {
	return &Disjunction{Children: children}
}

func (d *Disjunction) String() string {
	parts := make([]string, len(d.Children))
	for i, c := range d.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("Disjunction(%s)", strings.Join(parts, "; "))
}

func (d *Disjunction) Iter(ctx *datalog.Context, base datalog.Frame) (datalog.FrameIter, error) {
	span, ctx := ctx.Span("plan.Disjunction")
	return newSpanIter(span, &disjunctionIter{ctx: ctx, base: base, children: d.Children}), nil
}

type disjunctionIter struct {
	ctx      *datalog.Context
	base     datalog.Frame
	children []Node
	pos      int
	cur      datalog.FrameIter
}

func (i *disjunctionIter) Next() (datalog.Frame, error) {
	for {
		if i.cur == nil {
			if i.pos >= len(i.children) {
				return nil, io.EOF
			}
			cur, err := i.children[i.pos].Iter(i.ctx, i.base)
			if err != nil {
				return nil, err
			}
			i.cur = cur
			i.pos++
		}

		frame, err := i.cur.Next()
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
		return frame, nil
	}
}

func (i *disjunctionIter) Close() error {
	i.pos = len(i.children)
	if i.cur != nil {
		cur := i.cur
		i.cur = nil
		return cur.Close()
	}
	return nil
}
