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
	"gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrArityMismatch is returned when an atom's arity disagrees with
	// the arity fixed by the relation's first definition.
	ErrArityMismatch = errors.NewKind("relation %s has arity %d, got %d")

	// ErrKindMismatch is returned when a ground fact is asserted into a
	// relation that holds rules, or a rule is defined on a relation
	// that holds facts.
	ErrKindMismatch = errors.NewKind("relation %s is %s, cannot %s")

	// ErrRangeRestriction is returned when a rule head contains a
	// variable that does not appear in its body.
	ErrRangeRestriction = errors.NewKind("variable %s appears in the head but not the body of %q")

	// ErrNotGround is returned when an assertion contains variables.
	ErrNotGround = errors.NewKind("cannot assert non-ground atom %s")

	// ErrRelationExists is returned when creating a relation whose name
	// is already taken.
	ErrRelationExists = errors.NewKind("relation %s already exists")

	// ErrRelationNotFound is returned when a mutable handle is
	// requested for a relation that does not exist.
	ErrRelationNotFound = errors.NewKind("relation %s not found")
)
