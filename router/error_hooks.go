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
package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"sync"

	httperrors "github.com/kingwill101/routed-sub001/errors"
)

// ErrorObserver sees an error without handling it.
type ErrorObserver func(c *Context, err error)

// ErrorHandler may answer an error. Returning true claims it and stops
// later handlers and the built-in mapping.
type ErrorHandler func(c *Context, err error) bool

type errorHooks struct {
	mu       sync.RWMutex
	before   []ErrorObserver
	handlers []ErrorHandler
	after    []ErrorObserver
}

func (h *errorHooks) snapshot() (before []ErrorObserver, handlers []ErrorHandler, after []ErrorObserver) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.before), slices.Clone(h.handlers), slices.Clone(h.after)
}

// OnErrorBefore adds an observer that runs before any handler.
func (e *Engine) OnErrorBefore(fn ErrorObserver) {
	e.hooks.mu.Lock()
	e.hooks.before = append(e.hooks.before, fn)
	e.hooks.mu.Unlock()
}

// OnError adds an error handler. Handlers are tried in registration order
// and the first to return true wins.
func (e *Engine) OnError(fn ErrorHandler) {
	e.hooks.mu.Lock()
	e.hooks.handlers = append(e.hooks.handlers, fn)
	e.hooks.mu.Unlock()
}

// OnErrorAfter adds an observer that runs after handling, whether or not
// a handler claimed the error.
func (e *Engine) OnErrorAfter(fn ErrorObserver) {
	e.hooks.mu.Lock()
	e.hooks.after = append(e.hooks.after, fn)
	e.hooks.mu.Unlock()
}

// HandleErrorType adapts fn into an ErrorHandler that only sees errors
// matching T, as determined by errors.As.
//
//	e.OnError(router.HandleErrorType(func(c *router.Context, err *NotFound) bool {
//	    _ = c.String(http.StatusNotFound, err.What+" not found")
//	    return true
//	}))
func HandleErrorType[T error](fn func(c *Context, err T) bool) ErrorHandler {
	return func(c *Context, err error) bool {
		var target T
		if !errors.As(err, &target) {
			return false
		}
		return fn(c, target)
	}
}

// handleErrors runs the error pipeline for the errors recorded on c.
func (e *Engine) handleErrors(c *Context) {
	if len(c.errors) == 0 {
		return
	}
	var err error
	if len(c.errors) == 1 {
		err = c.errors[0]
	} else {
		err = errors.Join(c.errors...)
	}

	before, handlers, after := e.hooks.snapshot()
	for _, fn := range before {
		e.runHook(c, err, "before", func() { fn(c, err) })
	}

	handled := false
	for _, fn := range handlers {
		e.runHook(c, err, "handler", func() { handled = fn(c, err) })
		if handled {
			break
		}
	}
	if !handled {
		e.writeError(c, err)
	}

	for _, fn := range after {
		e.runHook(c, err, "after", func() { fn(c, err) })
	}

	// Last resort: a claimed error that produced no response.
	if !c.Written() && !c.detached && !c.closed {
		e.respond(c, internalError(err, false))
	}
	c.closed = true
}

// runHook runs fn and contains a panic so the remaining hooks still run.
func (e *Engine) runHook(c *Context, err error, stage string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			c.Logger().Error("error hook panicked",
				"stage", stage,
				"panic", v,
				"error", err,
				"stack", string(debug.Stack()),
			)
			e.emit(DiagHookPanic, "error hook panicked", map[string]any{
				"stage": stage,
				"panic": fmt.Sprint(v),
			})
		}
	}()
	fn()
}

// publicError is what clients get to see of an error.
type publicError struct {
	status  int
	message string
	code    string
	details any
}

func (p *publicError) Error() string   { return p.message }
func (p *publicError) HTTPStatus() int { return p.status }

// codedError adds a machine-readable code and details for formatters.
type codedError struct{ *publicError }

func (c codedError) Code() string { return c.code }
func (c codedError) Details() any { return c.details }

func (p *publicError) formattable() error {
	if p.code == "" {
		return p
	}
	return codedError{p}
}

func internalError(err error, expose bool) *publicError {
	msg := http.StatusText(http.StatusInternalServerError)
	if expose && err != nil {
		msg = err.Error()
	}
	return &publicError{status: http.StatusInternalServerError, message: msg, code: "internal_error"}
}

// ErrorStatus returns the status the built-in mapping answers err with.
// Middleware that runs before the error pipeline uses it to learn the
// status of a pending error.
func ErrorStatus(err error) int {
	return classify(err, false).status
}

// classify maps err to its client-facing form.
func classify(err error, expose bool) *publicError {
	var (
		maxBytes   *http.MaxBytesError
		validation *ValidationError
		httpErr    *HTTPError
		typed      httperrors.ErrorType
	)
	switch {
	case errors.Is(err, ErrBodyTooLarge), errors.As(err, &maxBytes):
		return &publicError{status: http.StatusRequestEntityTooLarge, message: bodyTooLargeMessage, code: "body_too_large"}
	case errors.As(err, &validation):
		msg := validation.Message
		if msg == "" {
			msg = "validation failed"
		}
		return &publicError{status: validation.HTTPStatus(), message: msg, code: validation.Code(), details: validation.Fields}
	case errors.As(err, &httpErr):
		return &publicError{status: httpErr.Status, message: httpErr.Message}
	case errors.As(err, &typed) && typed.HTTPStatus() < http.StatusInternalServerError:
		return &publicError{status: typed.HTTPStatus(), message: typed.Error()}
	}
	return internalError(err, expose)
}

// writeError answers err with the built-in mapping.
func (e *Engine) writeError(c *Context, err error) {
	pub := classify(err, e.cfg.exposeErrors)
	if pub.status >= http.StatusInternalServerError {
		c.Logger().Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.RoutePattern(),
			"error", err,
		)
	}
	e.respond(c, pub)
}

func (e *Engine) respond(c *Context, pub *publicError) {
	if c.Written() || c.closed || c.detached {
		return
	}
	resp := e.formatter.Format(c.Request, pub.formattable())
	if err := resp.Write(&c.writer); err != nil {
		c.Logger().Debug("writing error response failed", "error", err)
	}
	c.closed = true
}
