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

package parse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ikuehne/data-goblin/datalog"
)

func TestParseAssertion(t *testing.T) {
	require := require.New(t)

	line, err := Parse("parent(helen, mary).")
	require.NoError(err)
	assertion, ok := line.(Assertion)
	require.True(ok)
	require.Equal(
		datalog.NewAtom("parent", datalog.NewConst("helen"), datalog.NewConst("mary")),
		assertion.Atom,
	)
}

func TestParseQuery(t *testing.T) {
	require := require.New(t)

	line, err := Parse("parent(isaac, X)?")
	require.NoError(err)
	query, ok := line.(Query)
	require.True(ok)
	require.Equal(
		datalog.NewAtom("parent", datalog.NewConst("isaac"), datalog.NewVar("X")),
		query.Atom,
	)
}

func TestParseRule(t *testing.T) {
	require := require.New(t)

	line, err := Parse("ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).")
	require.NoError(err)
	def, ok := line.(RuleDef)
	require.True(ok)
	require.Equal("ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y)", def.Rule.String())
	require.Len(def.Rule.Body, 2)
}

func TestParseZeroArity(t *testing.T) {
	require := require.New(t)

	line, err := Parse("raining.")
	require.NoError(err)
	assertion, ok := line.(Assertion)
	require.True(ok)
	require.Equal(0, assertion.Atom.Arity())
}

func TestParseVariableClassification(t *testing.T) {
	require := require.New(t)

	line, err := Parse("r(X, _y, lower, Upper_2)?")
	require.NoError(err)
	atom := line.(Query).Atom
	require.True(atom.Args[0].IsVar())
	require.True(atom.Args[1].IsVar())
	require.True(atom.Args[2].IsConst())
	require.True(atom.Args[3].IsVar())
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"",
		"parent(helen, mary)",
		"parent(helen,).",
		"parent helen.",
		"X(helen).",
		"parent(helen, mary). extra",
		"ancestor(X, Y) :- .",
		"ancestor(X, Y) : parent(X, Y).",
		"parent(helen, mary)?.",
	}
	for _, input := range cases {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			require.True(t, ErrSyntax.Is(err))
		})
	}
}
