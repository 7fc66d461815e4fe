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

package storage

import (
	"sync"

	"github.com/ikuehne/data-goblin/datalog"
)

// Kind is the kind of a relation: extensional relations hold stored
// facts, intensional relations hold rules. The kind is fixed on first
// definition.
type Kind byte

const (
	Extensional Kind = iota
	Intensional
)

func (k Kind) String() string {
	if k == Intensional {
		return "intensional"
	}
	return "extensional"
}

// Relation is a named table with a fixed arity: a set of ground tuples
// in insertion order and, for intensional relations, a list of rules.
// All mutation goes through a MutHandle obtained from the store, which
// is the only code path that can touch the tuple set; the handle sets
// the dirty bit when it is closed.
type Relation struct {
	mu     sync.RWMutex
	name   string
	kind   Kind
	arity  int
	tuples *datalog.TupleSet
	rules  []datalog.Rule
	dirty  bool
}

func newRelation(name string, kind Kind, arity int) *Relation {
	return &Relation{
		name:   name,
		kind:   kind,
		arity:  arity,
		tuples: datalog.NewTupleSet(),
	}
}

// Name returns the relation's name.
func (r *Relation) Name() string { return r.name }

// Kind returns the relation's kind.
func (r *Relation) Kind() Kind { return r.kind }

// Arity returns the arity fixed by the relation's first definition.
func (r *Relation) Arity() int { return r.arity }

// Len returns the number of stored tuples.
func (r *Relation) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tuples.Len()
}

// TupleSlice returns a copy of the stored tuples in insertion order.
func (r *Relation) TupleSlice() []datalog.Tuple {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]datalog.Tuple, len(r.tuples.Slice()))
	copy(out, r.tuples.Slice())
	return out
}

// Contains reports whether the tuple is stored in the relation.
func (r *Relation) Contains(t datalog.Tuple) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tuples.Contains(t)
}

// Rules returns a copy of the relation's rules in definition order.
func (r *Relation) Rules() []datalog.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]datalog.Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Dirty reports whether the in-memory contents differ from the on-disk
// image.
func (r *Relation) Dirty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dirty
}

// snapshot copies everything the codec needs under the read lock, so
// file writes happen without holding it.
func (r *Relation) snapshot() relationFile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return encodeRelation(r.name, r.kind, r.arity, r.tuples.Slice(), r.rules)
}

// MutHandle is an exclusive mutable view of a relation. Closing the
// handle releases the write lock and sets the dirty bit whether or not
// anything was modified; every caller is expected to defer Close.
type MutHandle struct {
	rel    *Relation
	closed bool
}

// Insert adds a ground tuple, returning whether it was new. Insertion
// is idempotent.
func (h *MutHandle) Insert(t datalog.Tuple) (bool, error) {
	if h.closed {
		panic("storage: use of closed MutHandle")
	}
	if len(t) != h.rel.arity {
		return false, datalog.ErrArityMismatch.New(h.rel.name, h.rel.arity, len(t))
	}
	return h.rel.tuples.Add(t), nil
}

// AddRule appends a rule to the relation's rule set.
func (h *MutHandle) AddRule(rule datalog.Rule) error {
	if h.closed {
		panic("storage: use of closed MutHandle")
	}
	if rule.Head.Arity() != h.rel.arity {
		return datalog.ErrArityMismatch.New(h.rel.name, h.rel.arity, rule.Head.Arity())
	}
	h.rel.rules = append(h.rel.rules, rule)
	return nil
}

// Close marks the relation dirty and releases the handle's exclusive
// lock. It is safe to call more than once.
func (h *MutHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.rel.dirty = true
	h.rel.mu.Unlock()
	return nil
}
