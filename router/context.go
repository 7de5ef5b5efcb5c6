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
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"strconv"

	"github.com/kingwill101/routed-sub001/container"
	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/telemetry/semconv"
)

// Keys set on every Context before the chain runs.
const (
	KeyRouteName   = "route.name"
	KeyRoutePath   = "route.path"
	KeyRouteMethod = "route.method"
	KeyRouteType   = "route.type"
)

// Route pattern values reported for requests without a matched route.
const (
	PatternNotFound         = "_not_found"
	PatternMethodNotAllowed = "_method_not_allowed"
	PatternOptions          = "_options"
	PatternRedirect         = "_redirect"
)

// Context carries one request through its handler chain. A Context
// belongs to a single request and must not be retained after the handler
// returns.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	engine    *Engine
	writer    responseWriter
	route     *compiledRoute
	params    compiler.Params
	keys      map[string]any
	handlers  []HandlerFunc
	index     int
	aborted   bool
	errors    []error
	scope     *container.Container
	logger    *slog.Logger
	requestID string
	closed    bool
	detached  bool
}

func (c *Context) reset(e *Engine, w http.ResponseWriter, req *http.Request, id string) {
	c.writer.reset(w)
	c.Request = req
	c.Response = &c.writer
	c.engine = e
	c.route = nil
	c.params = compiler.Params{}
	c.keys = nil
	c.handlers = nil
	c.index = -1
	c.aborted = false
	c.errors = c.errors[:0]
	c.scope = nil
	c.logger = nil
	c.requestID = id
	c.closed = false
	c.detached = false
}

// release drops references so a pooled Context does not pin request data.
func (c *Context) release() {
	c.Request = nil
	c.Response = nil
	c.writer.reset(nil)
	c.handlers = nil
	c.keys = nil
	c.scope = nil
	c.logger = nil
	c.route = nil
	c.params = compiler.Params{}
	clear(c.errors)
	c.errors = c.errors[:0]
}

// Next runs the remaining handlers. Middleware call it to continue the
// chain and regain control afterwards.
//
//	func timing(c *router.Context) {
//	    start := time.Now()
//	    c.Next()
//	    c.Logger().Info("handled", "took", time.Since(start))
//	}
func (c *Context) Next() {
	c.index++
	for c.index < len(c.handlers) {
		if c.aborted {
			return
		}
		c.handlers[c.index](c)
		c.index++
	}
}

// Abort stops the handlers after the current one from running.
func (c *Context) Abort() {
	c.aborted = true
}

// IsAborted reports whether Abort was called.
func (c *Context) IsAborted() bool {
	return c.aborted
}

// AbortWithError records err and aborts the chain.
func (c *Context) AbortWithError(err error) {
	c.Error(err)
	c.Abort()
}

// Context returns the request context. It is canceled when the client
// goes away or the engine force-closes in-flight requests.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// Param returns the percent-decoded value of a path parameter, or "" when
// it was not captured.
func (c *Context) Param(name string) string {
	return c.params.Raw[name]
}

// ParamValue returns the typed value of a path parameter: the result of
// the type's cast function, compiler.Missing for a required parameter
// that captured nothing, or nil.
func (c *Context) ParamValue(name string) any {
	return c.params.Typed[name]
}

// ParamInt returns a parameter parsed as an int.
func (c *Context) ParamInt(name string) (int, bool) {
	switch v := c.params.Typed[name].(type) {
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

// Params returns a copy of the decoded path parameters.
func (c *Context) Params() map[string]string {
	return maps.Clone(c.params.Raw)
}

// Query returns the first value of a query parameter.
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// Set stores a value for later handlers in the chain.
func (c *Context) Set(key string, value any) {
	if c.keys == nil {
		c.keys = make(map[string]any, 8)
	}
	c.keys[key] = value
}

// Get returns a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.keys[key]
	return v, ok
}

// GetString returns a string value stored with Set, or "".
func (c *Context) GetString(key string) string {
	s, _ := c.keys[key].(string)
	return s
}

// Error records err. Recorded errors go through the engine error pipeline
// once the chain returns.
func (c *Context) Error(err error) {
	if err == nil {
		return
	}
	c.errors = append(c.errors, err)
}

// Errors returns the recorded errors.
func (c *Context) Errors() []error {
	if len(c.errors) == 0 {
		return nil
	}
	return c.errors
}

// Container returns the request scope of the engine container, creating
// it on first use.
func (c *Context) Container() *container.Container {
	if c.scope == nil {
		c.scope = c.engine.container.Scope()
	}
	return c.scope
}

// Logger returns the engine logger annotated with the request id.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		c.logger = c.engine.logger.With(semconv.RequestID, c.requestID)
	}
	return c.logger
}

// SetLogger replaces the request logger, typically to add attributes.
func (c *Context) SetLogger(l *slog.Logger) {
	c.logger = l
}

// RequestID returns the id the lifecycle manager assigned to the request.
func (c *Context) RequestID() string {
	return c.requestID
}

// RoutePattern returns the matched template, or one of the Pattern*
// sentinels.
func (c *Context) RoutePattern() string {
	if c.route != nil {
		return c.route.path
	}
	if p, ok := c.keys[KeyRoutePath].(string); ok {
		return p
	}
	return PatternNotFound
}

// RouteName returns the name of the matched route.
func (c *Context) RouteName() string {
	if c.route == nil {
		return ""
	}
	return c.route.name
}

// Header sets a response header.
func (c *Context) Header(key, value string) {
	c.writer.Header().Set(key, value)
}

// Status writes the status code unless something was written already.
func (c *Context) Status(code int) {
	if c.closed || c.detached {
		return
	}
	c.writer.WriteHeader(code)
}

// Written reports whether the status line has been sent.
func (c *Context) Written() bool {
	return c.writer.Written()
}

// IsClosed reports whether the error pipeline finished the response.
func (c *Context) IsClosed() bool {
	return c.closed
}

func (c *Context) writable() error {
	switch {
	case c.detached:
		return ErrDetached
	case c.closed:
		return ErrResponseClosed
	}
	return nil
}

// JSON writes obj as JSON with status code.
func (c *Context) JSON(code int, obj any) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.writer.WriteHeader(code)
	return json.NewEncoder(&c.writer).Encode(obj)
}

// String writes s as plain text with status code.
func (c *Context) String(code int, s string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.writer.WriteHeader(code)
	_, err := io.WriteString(&c.writer, s)
	return err
}

// Data writes raw bytes with the given content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	if err := c.writable(); err != nil {
		return err
	}
	if contentType != "" {
		c.Header("Content-Type", contentType)
	}
	c.writer.WriteHeader(code)
	_, err := c.writer.Write(data)
	return err
}

// NoContent writes 204.
func (c *Context) NoContent() {
	c.Status(http.StatusNoContent)
}

// Redirect writes a redirect to location.
func (c *Context) Redirect(code int, location string) {
	if c.writable() != nil {
		return
	}
	c.Header("Location", location)
	c.writer.WriteHeader(code)
}

// Detach hands the connection to the caller. The engine writes nothing
// for the request afterwards, not even error responses.
func (c *Context) Detach() {
	c.detached = true
	c.aborted = true
}

// IsDetached reports whether Detach or Hijack was called.
func (c *Context) IsDetached() bool {
	return c.detached
}

// WrapWriter installs the writer returned by wrap between the Context and
// the connection so middleware can transform the response body. Call the
// returned restore func once the rest of the chain has returned.
func (c *Context) WrapWriter(wrap func(http.ResponseWriter) http.ResponseWriter) (restore func()) {
	prev := c.writer.ResponseWriter
	c.writer.ResponseWriter = wrap(prev)
	return func() { c.writer.ResponseWriter = prev }
}

// Hijack takes over the underlying connection and detaches the request.
func (c *Context) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	conn, rw, err := c.writer.Hijack()
	if err != nil {
		return nil, nil, err
	}
	c.Detach()
	return conn, rw, nil
}
