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

// Package storage owns the on-disk data directory and the in-memory
// cache of relations. Tuples and rules can only be added through a
// mutable handle whose Close sets the relation's dirty bit; a periodic
// flusher snapshots dirty relations back to their files.
package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/ikuehne/data-goblin/datalog"
)

var (
	// ErrCorruptRelation is returned when a relation file cannot be
	// decoded. Fatal at startup.
	ErrCorruptRelation = errors.NewKind("relation file %s is corrupt: %s")

	// ErrOpenDataDir is returned when the data directory cannot be
	// created or read.
	ErrOpenDataDir = errors.NewKind("cannot open data directory %s: %s")
)

// Store is the relation store backing one data directory. A single
// engine instance owns the directory; readers may coexist, and any
// mutable handle is exclusive for its relation.
type Store struct {
	mu        sync.RWMutex
	dir       string
	relations map[string]*Relation
	logger    *logrus.Entry
}

// Open loads every relation found in dir, creating the directory if it
// is absent. An unreadable directory or a corrupt relation file is an
// error.
func Open(dir string, logger *logrus.Entry) (*Store, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	logger = logger.WithField("data_dir", dir)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, ErrOpenDataDir.New(dir, err.Error())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrOpenDataDir.New(dir, err.Error())
	}

	s := &Store{
		dir:       dir,
		relations: make(map[string]*Relation),
		logger:    logger,
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), relationExt) {
			continue
		}
		rel, err := readRelationFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		s.relations[rel.Name()] = rel
	}

	logger.WithField("relations", len(s.relations)).Debug("opened store")
	return s, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Relation returns a read-only handle to the named relation. Reading
// never marks the relation dirty.
func (s *Store) Relation(name string) (*Relation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.relations[name]
	return rel, ok
}

// Names returns every relation name, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.relations))
	for name := range s.relations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create introduces a new relation of the given kind and arity. The
// relation starts dirty so that it reaches disk on the next flush even
// if it stays empty.
func (s *Store) Create(name string, kind Kind, arity int) (*Relation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[name]; ok {
		return nil, datalog.ErrRelationExists.New(name)
	}
	rel := newRelation(name, kind, arity)
	rel.dirty = true
	s.relations[name] = rel
	s.logger.WithFields(logrus.Fields{
		"relation": name,
		"kind":     kind.String(),
		"arity":    arity,
	}).Debug("created relation")
	return rel, nil
}

// GetMut returns a mutable handle to the named relation, taking its
// exclusive lock. This is the only path by which tuples or rules are
// added; the handle's Close sets the dirty bit regardless of whether
// the caller modified anything.
func (s *Store) GetMut(name string) (*MutHandle, error) {
	rel, ok := s.Relation(name)
	if !ok {
		return nil, datalog.ErrRelationNotFound.New(name)
	}
	rel.mu.Lock()
	return &MutHandle{rel: rel}, nil
}

// FlushDirty snapshots every dirty relation to its file and clears the
// dirty bits. Each relation's snapshot is taken under its read lock;
// the file write happens without holding any lock, and the dirty bit
// is cleared under the write lock only after a successful rename.
func (s *Store) FlushDirty() error {
	s.mu.RLock()
	names := make([]string, 0, len(s.relations))
	for name, rel := range s.relations {
		if rel.Dirty() {
			names = append(names, name)
		}
	}
	s.mu.RUnlock()
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		rel, ok := s.Relation(name)
		if !ok {
			continue
		}
		if err := s.flushRelation(rel); err != nil {
			s.logger.WithField("relation", name).WithError(err).Error("flush failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *Store) flushRelation(rel *Relation) error {
	snap := rel.snapshot()
	path := filepath.Join(s.dir, rel.Name()+relationExt)
	if err := writeRelationFile(path, snap); err != nil {
		return err
	}

	rel.mu.Lock()
	// A writer may have slipped in between the snapshot and the
	// rename; only the snapshotted state is known to be on disk.
	if rel.tuples.Len() == len(snap.Tuples) && len(rel.rules) == len(snap.Rules) {
		rel.dirty = false
	}
	rel.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"relation": rel.Name(),
		"tuples":   len(snap.Tuples),
	}).Debug("flushed relation")
	return nil
}
