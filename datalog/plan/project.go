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
	"strings"

	"github.com/ikuehne/data-goblin/datalog"
)

// Project restricts each frame from the child to the given variables
// and drops duplicate projections.
type Project struct {
	Child Node
	Vars  []string
}

// NewProject creates a projection of the child onto vars.
func NewProject(child Node, vars []string) *Project {
	return &Project{Child: child, Vars: vars}
}

func (p *Project) String() string {
	return fmt.Sprintf("Project(%s)(%s)", strings.Join(p.Vars, ", "), p.Child)
}

func (p *Project) Iter(ctx *datalog.Context, base datalog.Frame) (datalog.FrameIter, error) {
	span, ctx := ctx.Span("plan.Project")
	child, err := p.Child.Iter(ctx, base)
	if err != nil {
		span.Finish()
		return nil, err
	}
	return newSpanIter(span, &projectIter{
		vars:  p.Vars,
		child: child,
		seen:  make(map[uint64]struct{}),
	}), nil
}

type projectIter struct {
	vars  []string
	child datalog.FrameIter
	seen  map[uint64]struct{}
}

func (i *projectIter) Next() (datalog.Frame, error) {
	for {
		frame, err := i.child.Next()
		if err != nil {
			return nil, err
		}
		projected := frame.Project(i.vars)
		hash, err := datalog.HashOf(projected)
		if err != nil {
			return nil, err
		}
		if _, ok := i.seen[hash]; ok {
			continue
		}
		i.seen[hash] = struct{}{}
		return projected, nil
	}
}

func (i *projectIter) Close() error {
	return i.child.Close()
}
