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

// Package parse translates one surface-syntax line into an AST value:
// an assertion, a rule definition or a query.
package parse

import (
	"gopkg.in/src-d/go-errors.v1"

	"github.com/ikuehne/data-goblin/datalog"
)

// ErrSyntax is returned for any malformed input line.
var ErrSyntax = errors.NewKind("syntax error at offset %d: %s")

// Line is one parsed input line.
type Line interface {
	isLine()
}

// Assertion inserts a ground fact, e.g. `parent(helen, mary).`
type Assertion struct {
	Atom datalog.Atom
}

// RuleDef appends a deduction rule, e.g.
// `ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).`
type RuleDef struct {
	Rule datalog.Rule
}

// Query asks for every binding of an atom, e.g. `parent(isaac, X)?`
type Query struct {
	Atom datalog.Atom
}

func (Assertion) isLine() {}
func (RuleDef) isLine()   {}
func (Query) isLine()     {}

type parser struct {
	lex  *lexer
	tok  token
	prev token
}

// Parse parses a single line.
func Parse(input string) (Line, error) {
	p := &parser{lex: newLexer(input)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	head, err := p.atom()
	if err != nil {
		return nil, err
	}

	switch p.tok.kind {
	case tokDot:
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return Assertion{Atom: head}, nil

	case tokQuestion:
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return Query{Atom: head}, nil

	case tokTurnstile:
		if err := p.advance(); err != nil {
			return nil, err
		}
		var body []datalog.Atom
		for {
			atom, err := p.atom()
			if err != nil {
				return nil, err
			}
			body = append(body, atom)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.tok.kind != tokDot {
			return nil, p.unexpected("expected '.' after rule body")
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return RuleDef{Rule: datalog.NewRule(head, body...)}, nil
	}
	return nil, p.unexpected("expected '.', '?' or ':-' after atom")
}

// atom parses `name` or `name(term, ...)`.
func (p *parser) atom() (datalog.Atom, error) {
	if p.tok.kind != tokIdent {
		return datalog.Atom{}, p.unexpected("expected relation name")
	}
	name := p.tok.text
	if isVariable(name) {
		return datalog.Atom{}, ErrSyntax.New(p.tok.pos, "relation name cannot be a variable")
	}
	if err := p.advance(); err != nil {
		return datalog.Atom{}, err
	}

	if p.tok.kind != tokLParen {
		return datalog.NewAtom(name), nil
	}
	if err := p.advance(); err != nil {
		return datalog.Atom{}, err
	}

	var args []datalog.Term
	for {
		if p.tok.kind != tokIdent {
			return datalog.Atom{}, p.unexpected("expected argument")
		}
		if isVariable(p.tok.text) {
			args = append(args, datalog.NewVar(p.tok.text))
		} else {
			args = append(args, datalog.NewConst(p.tok.text))
		}
		if err := p.advance(); err != nil {
			return datalog.Atom{}, err
		}

		if p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return datalog.Atom{}, err
			}
			continue
		}
		break
	}
	if p.tok.kind != tokRParen {
		return datalog.Atom{}, p.unexpected("expected ')' or ','")
	}
	if err := p.advance(); err != nil {
		return datalog.Atom{}, err
	}
	return datalog.NewAtom(name, args...), nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.prev = p.tok
	p.tok = tok
	return nil
}

// expectEnd consumes the current terminator and requires end of line.
func (p *parser) expectEnd() error {
	if err := p.advance(); err != nil {
		return err
	}
	if p.tok.kind != tokEOF {
		return p.unexpected("trailing input after " + p.prev.kind.String())
	}
	return nil
}

func (p *parser) unexpected(msg string) error {
	return ErrSyntax.New(p.tok.pos, msg+", got "+p.tok.kind.String())
}
