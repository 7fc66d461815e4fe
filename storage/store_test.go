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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ikuehne/data-goblin/datalog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func insert(t *testing.T, s *Store, name string, tuples ...datalog.Tuple) {
	t.Helper()
	h, err := s.GetMut(name)
	require.NoError(t, err)
	defer h.Close()
	for _, tuple := range tuples {
		_, err := h.Insert(tuple)
		require.NoError(t, err)
	}
}

func TestCreateAndGet(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	rel, err := s.Create("parent", Extensional, 2)
	require.NoError(err)
	require.Equal("parent", rel.Name())
	require.Equal(Extensional, rel.Kind())
	require.Equal(2, rel.Arity())

	_, err = s.Create("parent", Intensional, 2)
	require.Error(err)
	require.True(datalog.ErrRelationExists.Is(err))

	got, ok := s.Relation("parent")
	require.True(ok)
	require.Equal(rel, got)

	_, ok = s.Relation("missing")
	require.False(ok)
}

func TestInsertIsIdempotent(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	_, err := s.Create("parent", Extensional, 2)
	require.NoError(err)

	h, err := s.GetMut("parent")
	require.NoError(err)
	added, err := h.Insert(datalog.Tuple{"helen", "mary"})
	require.NoError(err)
	require.True(added)
	added, err = h.Insert(datalog.Tuple{"helen", "mary"})
	require.NoError(err)
	require.False(added)
	require.NoError(h.Close())

	rel, _ := s.Relation("parent")
	require.Equal(1, rel.Len())
}

func TestInsertArityChecked(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)
	_, err := s.Create("parent", Extensional, 2)
	require.NoError(err)

	h, err := s.GetMut("parent")
	require.NoError(err)
	defer h.Close()
	_, err = h.Insert(datalog.Tuple{"helen"})
	require.Error(err)
	require.True(datalog.ErrArityMismatch.Is(err))
}

func TestDirtyOnMutate(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	rel, err := s.Create("parent", Extensional, 2)
	require.NoError(err)
	// Creation itself leaves the relation dirty so it reaches disk.
	require.True(rel.Dirty())
	require.NoError(s.FlushDirty())
	require.False(rel.Dirty())

	insert(t, s, "parent", datalog.Tuple{"helen", "mary"})
	require.True(rel.Dirty())

	require.NoError(s.FlushDirty())
	require.False(rel.Dirty())
}

func TestHandleMarksDirtyEvenWithoutWrites(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	rel, err := s.Create("parent", Extensional, 2)
	require.NoError(err)
	require.NoError(s.FlushDirty())
	require.False(rel.Dirty())

	h, err := s.GetMut("parent")
	require.NoError(err)
	require.NoError(h.Close())
	require.True(rel.Dirty())
}

func TestFlushRoundTrips(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	s, err := Open(dir, nil)
	require.NoError(err)
	_, err = s.Create("parent", Extensional, 2)
	require.NoError(err)
	insert(t, s, "parent",
		datalog.Tuple{"helen", "mary"},
		datalog.Tuple{"mary", "isaac"},
	)

	_, err = s.Create("ancestor", Intensional, 2)
	require.NoError(err)
	h, err := s.GetMut("ancestor")
	require.NoError(err)
	rule := datalog.NewRule(
		datalog.NewAtom("ancestor", datalog.NewVar("X"), datalog.NewVar("Y")),
		datalog.NewAtom("parent", datalog.NewVar("X"), datalog.NewVar("Y")),
	)
	require.NoError(h.AddRule(rule))
	require.NoError(h.Close())

	require.NoError(s.FlushDirty())

	reopened, err := Open(dir, nil)
	require.NoError(err)
	require.Equal([]string{"ancestor", "parent"}, reopened.Names())

	parent, ok := reopened.Relation("parent")
	require.True(ok)
	require.Equal(Extensional, parent.Kind())
	require.Equal(2, parent.Arity())
	require.Equal([]datalog.Tuple{{"helen", "mary"}, {"mary", "isaac"}}, parent.TupleSlice())
	require.False(parent.Dirty())

	ancestor, ok := reopened.Relation("ancestor")
	require.True(ok)
	require.Equal(Intensional, ancestor.Kind())
	rules := ancestor.Rules()
	require.Len(rules, 1)
	require.Equal(rule.String(), rules[0].String())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "parent.json"), []byte("not json"), 0644))

	_, err := Open(dir, nil)
	require.Error(err)
	require.True(ErrCorruptRelation.Is(err))
}

func TestOpenIgnoresForeignFiles(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	require.NoError(os.WriteFile(filepath.Join(dir, "README"), []byte("hello"), 0644))

	s, err := Open(dir, nil)
	require.NoError(err)
	require.Empty(s.Names())
}

func TestFlusherFlushesPeriodically(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	rel, err := s.Create("parent", Extensional, 2)
	require.NoError(err)
	insert(t, s, "parent", datalog.Tuple{"helen", "mary"})
	require.True(rel.Dirty())

	threads := datalog.NewBackgroundThreads()
	require.NoError(threads.Add(FlusherThreadName, func(ctx context.Context) {
		s.RunFlusher(ctx, 10*time.Millisecond)
	}))

	require.Eventually(func() bool {
		return !rel.Dirty()
	}, time.Second, 5*time.Millisecond)

	// A final flush happens on shutdown.
	insert(t, s, "parent", datalog.Tuple{"mary", "isaac"})
	_ = threads.Shutdown()
	require.False(rel.Dirty())
}

func TestGetMutUnknownRelation(t *testing.T) {
	require := require.New(t)
	s := newTestStore(t)

	_, err := s.GetMut("missing")
	require.Error(err)
	require.True(datalog.ErrRelationNotFound.Is(err))
}
