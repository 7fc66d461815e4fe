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

// Package goblin is a Datalog engine with persistent relations,
// recursive views and a lazy one-answer-at-a-time query interface.
package goblin

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/ikuehne/data-goblin/datalog"
	"github.com/ikuehne/data-goblin/datalog/analyzer"
	"github.com/ikuehne/data-goblin/datalog/parse"
	"github.com/ikuehne/data-goblin/storage"
)

var errUnhandledLine = errors.NewKind("unhandled input line %v")

// Engine is a Datalog engine. It owns the relation store for one data
// directory, the cache of materialized recursive views, and the
// background write-back thread.
type Engine struct {
	Store             *storage.Store
	Views             *datalog.ViewCache
	Analyzer          *analyzer.Analyzer
	BackgroundThreads *datalog.BackgroundThreads

	logger *logrus.Entry
	mu     sync.Mutex
}

// New creates an engine over the given configuration, opening the data
// directory and starting the flusher thread. Call Close to stop the
// flusher and write out any remaining dirty relations.
func New(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	store, err := storage.Open(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}

	views := datalog.NewViewCache()
	e := &Engine{
		Store:             store,
		Views:             views,
		Analyzer:          analyzer.New(store, views),
		BackgroundThreads: datalog.NewBackgroundThreads(),
		logger:            logger,
	}

	interval := cfg.FlushInterval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	err = e.BackgroundThreads.Add(storage.FlusherThreadName, func(ctx context.Context) {
		store.RunFlusher(ctx, interval)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Exec dispatches one parsed line. The returned iterator is non-nil
// only for queries.
func (e *Engine) Exec(ctx *datalog.Context, line parse.Line) (datalog.FrameIter, error) {
	switch l := line.(type) {
	case parse.Assertion:
		return nil, e.Assert(ctx, l.Atom)
	case parse.RuleDef:
		return nil, e.Define(ctx, l.Rule)
	case parse.Query:
		return e.Query(ctx, l.Atom)
	}
	return nil, errUnhandledLine.New(line)
}

// Assert inserts a ground fact into its extensional relation, creating
// the relation on first assertion, and invalidates every cached view
// that transitively depends on it.
func (e *Engine) Assert(ctx *datalog.Context, atom datalog.Atom) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !atom.IsGround() {
		return datalog.ErrNotGround.New(atom)
	}
	if err := e.ensureRelation(atom.Relation, storage.Extensional, atom.Arity()); err != nil {
		return err
	}

	h, err := e.Store.GetMut(atom.Relation)
	if err != nil {
		return err
	}
	defer h.Close()
	added, err := h.Insert(atom.GroundTuple())
	if err != nil {
		return err
	}

	e.Views.Invalidate(atom.Relation)
	ctx.Logger().WithFields(logrus.Fields{
		"relation": atom.Relation,
		"new":      added,
	}).Debugf("asserted %s", atom)
	return nil
}

// Define appends a rule to its intensional relation, creating the
// relation on first definition. The rule must be range-restricted, and
// its body atoms must agree with the arities of any relations that
// already exist; unresolved references are deferred and behave as
// empty relations until defined.
func (e *Engine) Define(ctx *datalog.Context, rule datalog.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := rule.Validate(); err != nil {
		return err
	}
	for _, atom := range rule.Body {
		rel, ok := e.Store.Relation(atom.Relation)
		if !ok {
			continue
		}
		if rel.Arity() != atom.Arity() {
			return datalog.ErrArityMismatch.New(atom.Relation, rel.Arity(), atom.Arity())
		}
	}
	if err := e.ensureRelation(rule.Head.Relation, storage.Intensional, rule.Head.Arity()); err != nil {
		return err
	}

	h, err := e.Store.GetMut(rule.Head.Relation)
	if err != nil {
		return err
	}
	defer h.Close()
	if err := h.AddRule(rule); err != nil {
		return err
	}

	e.Views.Invalidate(rule.Head.Relation)
	ctx.Logger().WithField("relation", rule.Head.Relation).Debugf("defined %s", rule)
	return nil
}

// Query compiles the atom into a plan and returns its frame iterator.
// Every produced frame binds exactly the atom's variables; io.EOF
// signals exhaustion. Dropping the iterator (via Close) cancels the
// query.
func (e *Engine) Query(ctx *datalog.Context, atom datalog.Atom) (datalog.FrameIter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, err := e.Analyzer.BuildQuery(ctx, atom)
	if err != nil {
		return nil, err
	}
	ctx.Logger().Debugf("query %s? planned as %s", atom, node)
	return node.Iter(ctx, datalog.NewFrame())
}

// ensureRelation creates the relation if absent and checks kind and
// arity if present.
func (e *Engine) ensureRelation(name string, kind storage.Kind, arity int) error {
	rel, ok := e.Store.Relation(name)
	if !ok {
		_, err := e.Store.Create(name, kind, arity)
		return err
	}
	if rel.Kind() != kind {
		verb := "assert facts into it"
		if kind == storage.Intensional {
			verb = "define rules on it"
		}
		return datalog.ErrKindMismatch.New(name, rel.Kind(), verb)
	}
	if rel.Arity() != arity {
		return datalog.ErrArityMismatch.New(name, rel.Arity(), arity)
	}
	return nil
}

// Close shuts down the background threads, which performs a final
// flush, then flushes once more synchronously so that callers see any
// write error.
func (e *Engine) Close() error {
	_ = e.BackgroundThreads.Shutdown()
	return e.Store.FlushDirty()
}
