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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifyTuple(t *testing.T) {
	atom := NewAtom("parent", NewConst("isaac"), NewVar("X"))

	cases := []struct {
		name     string
		atom     Atom
		tuple    Tuple
		frame    Frame
		expected Frame
		ok       bool
	}{
		{
			name:     "const matches, var binds",
			atom:     atom,
			tuple:    Tuple{"isaac", "james"},
			frame:    NewFrame(),
			expected: Frame{"X": "james"},
			ok:       true,
		},
		{
			name:  "const mismatch",
			atom:  atom,
			tuple: Tuple{"mary", "james"},
			frame: NewFrame(),
		},
		{
			name:  "arity mismatch",
			atom:  atom,
			tuple: Tuple{"isaac"},
			frame: NewFrame(),
		},
		{
			name:     "bound var agrees",
			atom:     atom,
			tuple:    Tuple{"isaac", "james"},
			frame:    Frame{"X": "james"},
			expected: Frame{"X": "james"},
			ok:       true,
		},
		{
			name:  "bound var disagrees",
			atom:  atom,
			tuple: Tuple{"isaac", "robert"},
			frame: Frame{"X": "james"},
		},
		{
			name:     "repeated var must agree",
			atom:     NewAtom("sibling", NewVar("X"), NewVar("X")),
			tuple:    Tuple{"james", "james"},
			frame:    NewFrame(),
			expected: Frame{"X": "james"},
			ok:       true,
		},
		{
			name:  "repeated var mismatch",
			atom:  NewAtom("sibling", NewVar("X"), NewVar("X")),
			tuple: Tuple{"james", "robert"},
			frame: NewFrame(),
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			frame, ok := UnifyTuple(tt.atom, tt.tuple, tt.frame)
			require.Equal(tt.ok, ok)
			if tt.ok {
				require.True(tt.expected.Equals(frame))
			}
		})
	}
}

func TestUnifyTupleDoesNotModifyInput(t *testing.T) {
	require := require.New(t)

	base := Frame{"Y": "mary"}
	atom := NewAtom("parent", NewVar("Y"), NewVar("X"))
	frame, ok := UnifyTuple(atom, Tuple{"mary", "isaac"}, base)
	require.True(ok)
	require.True(frame.Equals(Frame{"Y": "mary", "X": "isaac"}))
	require.True(base.Equals(Frame{"Y": "mary"}))
}

func TestAtomSubstitute(t *testing.T) {
	require := require.New(t)

	atom := NewAtom("ancestor", NewVar("X"), NewVar("Y"))
	partial := atom.Substitute(Frame{"X": "helen"})
	require.Equal("ancestor(helen, Y)", partial.String())
	require.False(partial.IsGround())

	full := atom.Substitute(Frame{"X": "helen", "Y": "mary"})
	require.True(full.IsGround())
	require.Equal(Tuple{"helen", "mary"}, full.GroundTuple())
}

func TestAtomVars(t *testing.T) {
	require := require.New(t)

	atom := NewAtom("r", NewVar("X"), NewConst("a"), NewVar("Y"), NewVar("X"))
	require.Equal([]string{"X", "Y"}, atom.Vars())
	require.Empty(NewAtom("r", NewConst("a")).Vars())
}

func TestRuleValidate(t *testing.T) {
	require := require.New(t)

	ok := NewRule(
		NewAtom("sibling", NewVar("X"), NewVar("Y")),
		NewAtom("parent", NewVar("Z"), NewVar("X")),
		NewAtom("parent", NewVar("Z"), NewVar("Y")),
	)
	require.NoError(ok.Validate())

	bad := NewRule(
		NewAtom("sibling", NewVar("X"), NewVar("W")),
		NewAtom("parent", NewVar("Z"), NewVar("X")),
	)
	err := bad.Validate()
	require.Error(err)
	require.True(ErrRangeRestriction.Is(err))

	constHead := NewRule(
		NewAtom("root", NewConst("helen")),
		NewAtom("parent", NewConst("helen"), NewVar("X")),
	)
	require.NoError(constHead.Validate())
}

func TestRuleString(t *testing.T) {
	require := require.New(t)

	rule := NewRule(
		NewAtom("ancestor", NewVar("X"), NewVar("Y")),
		NewAtom("parent", NewVar("X"), NewVar("Z")),
		NewAtom("ancestor", NewVar("Z"), NewVar("Y")),
	)
	require.Equal("ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y)", rule.String())
}
