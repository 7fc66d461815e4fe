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
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/ikuehne/data-goblin/datalog"
)

// relationExt is the extension of relation files in the data
// directory.
const relationExt = ".json"

// relationFile is the on-disk form of a relation. One file per
// relation, named after it.
type relationFile struct {
	Name   string          `json:"name"`
	Kind   string          `json:"kind"`
	Arity  int             `json:"arity"`
	Tuples []datalog.Tuple `json:"tuples"`
	Rules  []ruleFile      `json:"rules,omitempty"`
}

type ruleFile struct {
	Head atomFile   `json:"head"`
	Body []atomFile `json:"body"`
}

type atomFile struct {
	Relation string     `json:"relation"`
	Args     []termFile `json:"args"`
}

type termFile struct {
	Var   bool   `json:"var,omitempty"`
	Value string `json:"value"`
}

func encodeRelation(name string, kind Kind, arity int, tuples []datalog.Tuple, rules []datalog.Rule) relationFile {
	f := relationFile{
		Name:   name,
		Kind:   kind.String(),
		Arity:  arity,
		Tuples: append([]datalog.Tuple(nil), tuples...),
	}
	for _, r := range rules {
		f.Rules = append(f.Rules, encodeRule(r))
	}
	return f
}

func encodeRule(r datalog.Rule) ruleFile {
	out := ruleFile{Head: encodeAtom(r.Head)}
	for _, a := range r.Body {
		out.Body = append(out.Body, encodeAtom(a))
	}
	return out
}

func encodeAtom(a datalog.Atom) atomFile {
	out := atomFile{Relation: a.Relation}
	for _, t := range a.Args {
		out.Args = append(out.Args, termFile{Var: t.IsVar(), Value: t.Value})
	}
	return out
}

func decodeRelation(f relationFile) (*Relation, error) {
	var kind Kind
	switch f.Kind {
	case "extensional":
		kind = Extensional
	case "intensional":
		kind = Intensional
	default:
		return nil, ErrCorruptRelation.New(f.Name, "unknown kind "+f.Kind)
	}

	rel := newRelation(f.Name, kind, f.Arity)
	for _, t := range f.Tuples {
		if len(t) != f.Arity {
			return nil, ErrCorruptRelation.New(f.Name, "tuple arity mismatch")
		}
		rel.tuples.Add(t)
	}
	for _, r := range f.Rules {
		rel.rules = append(rel.rules, decodeRule(r))
	}
	return rel, nil
}

func decodeRule(r ruleFile) datalog.Rule {
	out := datalog.Rule{Head: decodeAtom(r.Head)}
	for _, a := range r.Body {
		out.Body = append(out.Body, decodeAtom(a))
	}
	return out
}

func decodeAtom(a atomFile) datalog.Atom {
	out := datalog.Atom{Relation: a.Relation}
	for _, t := range a.Args {
		if t.Var {
			out.Args = append(out.Args, datalog.NewVar(t.Value))
		} else {
			out.Args = append(out.Args, datalog.NewConst(t.Value))
		}
	}
	return out
}

// readRelationFile loads one relation from disk.
func readRelationFile(path string) (*Relation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f relationFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, ErrCorruptRelation.New(filepath.Base(path), err.Error())
	}
	return decodeRelation(f)
}

// writeRelationFile atomically replaces the relation's file: the
// snapshot is written to a sibling temp path first and renamed over
// the target.
func writeRelationFile(path string, f relationFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
