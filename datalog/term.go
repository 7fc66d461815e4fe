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
	"strings"
)

// TermKind discriminates the two kinds of atom argument.
type TermKind byte

const (
	// TermConst is a constant symbol such as "helen".
	TermConst TermKind = iota
	// TermVar is a variable scoped to the enclosing rule or query.
	TermVar
)

// Term is a single argument of an atom: either a constant symbol or a
// variable name. Terms compare by value.
type Term struct {
	Kind  TermKind
	Value string
}

// NewConst returns a constant term with the given symbol.
func NewConst(symbol string) Term {
	return Term{Kind: TermConst, Value: symbol}
}

// NewVar returns a variable term with the given name.
func NewVar(name string) Term {
	return Term{Kind: TermVar, Value: name}
}

// IsVar reports whether the term is a variable.
func (t Term) IsVar() bool {
	return t.Kind == TermVar
}

// IsConst reports whether the term is a constant.
func (t Term) IsConst() bool {
	return t.Kind == TermConst
}

func (t Term) String() string {
	return t.Value
}

// Atom is a relation name applied to a tuple of terms, e.g.
// parent(helen, X).
type Atom struct {
	Relation string
	Args     []Term
}

// NewAtom returns an atom over the given relation and arguments.
func NewAtom(relation string, args ...Term) Atom {
	return Atom{Relation: relation, Args: args}
}

// Arity returns the number of arguments.
func (a Atom) Arity() int {
	return len(a.Args)
}

// IsGround reports whether the atom contains no variables.
func (a Atom) IsGround() bool {
	for _, arg := range a.Args {
		if arg.IsVar() {
			return false
		}
	}
	return true
}

// Vars returns the variable names of the atom in first-appearance
// order, without duplicates.
func (a Atom) Vars() []string {
	var vars []string
	seen := make(map[string]struct{})
	for _, arg := range a.Args {
		if !arg.IsVar() {
			continue
		}
		if _, ok := seen[arg.Value]; ok {
			continue
		}
		seen[arg.Value] = struct{}{}
		vars = append(vars, arg.Value)
	}
	return vars
}

// Substitute applies the frame to the atom, replacing every bound
// variable with its constant. Unbound variables are left in place, so
// the result may still be non-ground.
func (a Atom) Substitute(f Frame) Atom {
	if len(f) == 0 {
		return a
	}
	args := make([]Term, len(a.Args))
	for i, arg := range a.Args {
		if arg.IsVar() {
			if c, ok := f[arg.Value]; ok {
				args[i] = NewConst(c)
				continue
			}
		}
		args[i] = arg
	}
	return Atom{Relation: a.Relation, Args: args}
}

// GroundTuple returns the atom's arguments as a tuple. The atom must be
// ground.
func (a Atom) GroundTuple() Tuple {
	t := make(Tuple, len(a.Args))
	for i, arg := range a.Args {
		t[i] = arg.Value
	}
	return t
}

func (a Atom) String() string {
	var sb strings.Builder
	sb.WriteString(a.Relation)
	sb.WriteByte('(')
	for i, arg := range a.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// UnifyTuple unifies the atom against a ground tuple under the given
// frame. Constant arguments must match the tuple position exactly;
// variable arguments either agree with their existing binding or extend
// the frame. On success the extended frame is returned; the input frame
// is never modified.
func UnifyTuple(a Atom, t Tuple, f Frame) (Frame, bool) {
	if len(a.Args) != len(t) {
		return nil, false
	}
	out := f
	copied := false
	for i, arg := range a.Args {
		if arg.IsConst() {
			if arg.Value != t[i] {
				return nil, false
			}
			continue
		}
		if bound, ok := out[arg.Value]; ok {
			if bound != t[i] {
				return nil, false
			}
			continue
		}
		if !copied {
			out = out.Copy()
			copied = true
		}
		out[arg.Value] = t[i]
	}
	if !copied && out == nil {
		out = NewFrame()
	}
	return out, true
}
