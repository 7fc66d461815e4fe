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

// Rule is a head atom derived from an ordered conjunction of body
// atoms, e.g. ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).
// Body order is significant for join planning, not for semantics.
type Rule struct {
	Head Atom
	Body []Atom
}

// NewRule returns a rule with the given head and body.
func NewRule(head Atom, body ...Atom) Rule {
	return Rule{Head: head, Body: body}
}

// Validate checks the range restriction: every variable in the head
// must appear at least once in the body.
func (r Rule) Validate() error {
	for _, arg := range r.Head.Args {
		if !arg.IsVar() {
			continue
		}
		if !r.bodyHasVar(arg.Value) {
			return ErrRangeRestriction.New(arg.Value, r.String())
		}
	}
	return nil
}

func (r Rule) bodyHasVar(name string) bool {
	for _, atom := range r.Body {
		for _, arg := range atom.Args {
			if arg.IsVar() && arg.Value == name {
				return true
			}
		}
	}
	return false
}

func (r Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.Head.String())
	if len(r.Body) > 0 {
		sb.WriteString(" :- ")
		for i, atom := range r.Body {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(atom.String())
		}
	}
	return sb.String()
}
