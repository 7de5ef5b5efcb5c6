// Copyright 2025 The Rivaas Authors
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
// Package recovery provides middleware that turns panics in later
// handlers into errors for the engine error pipeline, after logging them
// and marking the active trace span.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kingwill101/routed-sub001/router"
)

// New returns a middleware that recovers panics raised after it in the
// chain. The engine already recovers panics around the whole chain; this
// middleware adds a truncated stack in the log, span attributes and a
// hook to answer the panic differently.
//
// By default the panic is recorded as a *router.PanicError with
// c.AbortWithError, so the response is the engine's 500. WithHandler
// replaces that. http.ErrAbortHandler is re-panicked so net/http aborts
// the connection as usual.
//
//	e.Use(recovery.New(recovery.WithStackSize(8 << 10)))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(v)
			}

			var stack []byte
			if cfg.stackTrace {
				stack = debug.Stack()
				if cfg.stackSize > 0 && len(stack) > cfg.stackSize {
					stack = stack[:cfg.stackSize]
				}
			}

			markSpan(c, v)

			logger := cfg.logger
			if logger == nil {
				logger = c.Logger()
			}
			attrs := []any{
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"route", c.RoutePattern(),
				"panic", v,
			}
			if stack != nil {
				attrs = append(attrs, "stack", string(stack))
			}
			logger.Error("panic recovered", attrs...)

			if cfg.handler != nil {
				cfg.handler(c, v)
				c.Abort()
				return
			}
			c.AbortWithError(&router.PanicError{Value: v, Stack: stack})
		}()

		c.Next()
	}
}

// markSpan flags the span in the request context, if any, as failed by
// an escaped exception.
func markSpan(c *router.Context, v any) {
	span := trace.SpanFromContext(c.Context())
	if !span.SpanContext().IsValid() {
		return
	}
	span.SetStatus(codes.Error, "panic recovered")
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", v)),
		attribute.String("exception.message", fmt.Sprint(v)),
	)
	if err, ok := v.(error); ok {
		span.RecordError(err)
	}
}
