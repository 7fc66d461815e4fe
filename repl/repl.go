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

// Package repl is the interactive driver: it reads one line at a time,
// hands it to the engine, and streams query answers one binding at a
// time, continuing on ';'.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	goblin "github.com/ikuehne/data-goblin"
	"github.com/ikuehne/data-goblin/datalog"
	"github.com/ikuehne/data-goblin/datalog/parse"
)

const prompt = "> "

// Repl drives an engine from a line-oriented input stream.
type Repl struct {
	engine *goblin.Engine
	in     *bufio.Reader
	out    io.Writer
}

// New creates a REPL over the given engine and streams.
func New(engine *goblin.Engine, in io.Reader, out io.Writer) *Repl {
	return &Repl{
		engine: engine,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run processes lines until EOF. Parse and evaluation errors are
// reported and the loop continues; only I/O failures stop it.
func (r *Repl) Run(ctx *datalog.Context) error {
	for {
		fmt.Fprint(r.out, prompt)
		text, err := r.in.ReadString('\n')
		if err == io.EOF && strings.TrimSpace(text) == "" {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil && err != io.EOF {
			return err
		}

		if strings.TrimSpace(text) == "" {
			continue
		}
		line, perr := parse.Parse(strings.TrimSpace(text))
		if perr != nil {
			fmt.Fprintf(r.out, "error: %s\n", perr)
			continue
		}

		// Each line gets a fresh query context on the same logger.
		lineCtx := datalog.NewContext(ctx, datalog.WithLogger(ctx.Logger()))
		iter, eerr := r.engine.Exec(lineCtx, line)
		if eerr != nil {
			fmt.Fprintf(r.out, "error: %s\n", eerr)
			continue
		}
		if iter == nil {
			fmt.Fprintln(r.out, "ok.")
			continue
		}

		q, ok := line.(parse.Query)
		if !ok {
			_ = iter.Close()
			continue
		}
		if err := r.streamAnswers(q.Atom, iter); err != nil {
			return err
		}
	}
}

// streamAnswers prints one frame, then polls for a continuation
// signal: ';' requests the next frame, any other non-whitespace
// character cancels the query.
func (r *Repl) streamAnswers(atom datalog.Atom, iter datalog.FrameIter) error {
	defer iter.Close()

	vars := atom.Vars()
	produced := false
	for {
		frame, err := iter.Next()
		if err == io.EOF {
			if !produced {
				fmt.Fprintln(r.out, "false.")
			} else {
				fmt.Fprintln(r.out, "no more answers.")
			}
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %s\n", err)
			return nil
		}

		produced = true
		fmt.Fprint(r.out, formatFrame(vars, frame))

		more, rerr := r.readContinuation()
		if rerr != nil && rerr != io.EOF {
			return rerr
		}
		if !more {
			fmt.Fprintln(r.out)
			return nil
		}
		fmt.Fprintln(r.out, " ;")
	}
}

// readContinuation reads runes until the first non-whitespace one and
// reports whether it requests another answer.
func (r *Repl) readContinuation() (bool, error) {
	for {
		ch, _, err := r.in.ReadRune()
		if err != nil {
			return false, err
		}
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			continue
		}
		return ch == ';', nil
	}
}

// formatFrame renders a binding in query-variable order, or "true" for
// the empty frame of a ground query.
func formatFrame(vars []string, frame datalog.Frame) string {
	if len(vars) == 0 {
		return "true."
	}
	parts := make([]string, 0, len(vars))
	for _, v := range vars {
		parts = append(parts, fmt.Sprintf("%s = %s", v, frame[v]))
	}
	return strings.Join(parts, ", ")
}
