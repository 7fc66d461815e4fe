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
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Context of the query execution. Carries a standard context, a query
// id, a logger and a tracer.
type Context struct {
	context.Context
	id     uuid.UUID
	logger *logrus.Entry
	tracer opentracing.Tracer
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithLogger adds the given logger entry to the context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(ctx *Context) {
		ctx.logger = l
	}
}

// NewContext creates a new query context, assigning it a fresh id.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		id:      uuid.NewV4(),
		tracer:  opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	c.logger = c.logger.WithField("query_id", c.id.String())
	return c
}

// NewEmptyContext returns a default context with no values.
func NewEmptyContext() *Context {
	return NewContext(context.TODO())
}

// ID returns the unique id of this query context.
func (c *Context) ID() uuid.UUID {
	return c.id
}

// Logger returns the logger entry of this context.
func (c *Context) Logger() *logrus.Entry {
	return c.logger
}

// Span creates a new tracing span with the given operation name. It
// returns the span and a new context with the span attached, which
// should be passed to children of the current span.
func (c *Context) Span(opName string, opts ...opentracing.StartSpanOption) (opentracing.Span, *Context) {
	parent := opentracing.SpanFromContext(c.Context)
	if parent != nil {
		opts = append(opts, opentracing.ChildOf(parent.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, &Context{
		Context: ctx,
		id:      c.id,
		logger:  c.logger,
		tracer:  c.tracer,
	}
}
