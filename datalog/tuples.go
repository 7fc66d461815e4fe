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
	"strconv"
	"strings"
)

// Tuple is a ground argument list: one constant symbol per position.
type Tuple []string

// Key returns a canonical string for the tuple, usable as an exact set
// key. Symbols are quoted so that no two distinct tuples share a key.
func (t Tuple) Key() string {
	var sb strings.Builder
	for i, s := range t {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(s))
	}
	return sb.String()
}

// Equals reports positional equality.
func (t Tuple) Equals(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

func (t Tuple) String() string {
	return "(" + strings.Join(t, ", ") + ")"
}

// TupleSet is a set of tuples that remembers insertion order, so scans
// over it are deterministic. Membership is exact.
type TupleSet struct {
	index  map[string]struct{}
	tuples []Tuple
}

// NewTupleSet returns an empty set, optionally seeded with tuples.
func NewTupleSet(tuples ...Tuple) *TupleSet {
	s := &TupleSet{index: make(map[string]struct{})}
	for _, t := range tuples {
		s.Add(t)
	}
	return s
}

// Add inserts the tuple, returning false if it was already present.
func (s *TupleSet) Add(t Tuple) bool {
	key := t.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.tuples = append(s.tuples, t)
	return true
}

// AddAll inserts every tuple, returning the number actually added.
func (s *TupleSet) AddAll(tuples []Tuple) int {
	added := 0
	for _, t := range tuples {
		if s.Add(t) {
			added++
		}
	}
	return added
}

// Contains reports membership.
func (s *TupleSet) Contains(t Tuple) bool {
	_, ok := s.index[t.Key()]
	return ok
}

// Len returns the number of tuples in the set.
func (s *TupleSet) Len() int {
	return len(s.tuples)
}

// Slice returns the tuples in insertion order. The returned slice is
// shared; callers must not modify it.
func (s *TupleSet) Slice() []Tuple {
	return s.tuples
}

// Copy returns an independent copy of the set.
func (s *TupleSet) Copy() *TupleSet {
	out := &TupleSet{
		index:  make(map[string]struct{}, len(s.index)),
		tuples: make([]Tuple, len(s.tuples)),
	}
	for k := range s.index {
		out.index[k] = struct{}{}
	}
	copy(out.tuples, s.tuples)
	return out
}
