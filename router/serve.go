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
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/kingwill101/routed-sub001/router/compiler"
)

// ServeHTTP dispatches req. The route table is built on first use and
// rebuilt after any change to routes, mounts or registries; a table that
// fails to build answers 500 until the problem is fixed.
//
// Matching order: static index, trie, linear pattern scan, GET route for
// HEAD, trailing-slash redirect, automatic OPTIONS, 405, fallbacks by
// prefix similarity, 404. Responses other than the redirect run through
// the engine-level middleware.
func (e *Engine) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	t, err := e.current()
	if err != nil {
		e.logger.Error("route table build failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, tracked, err := e.lifecycle.Begin(req)
	if err != nil {
		e.rejectDraining(w, req, err)
		return
	}
	defer e.lifecycle.End(id)

	req, obs := e.observeStart(tracked)
	if e.cfg.maxBodySize > 0 && req.Body != nil && req.Body != http.NoBody {
		req.Body = http.MaxBytesReader(w, req.Body, e.cfg.maxBodySize)
	}

	c, _ := e.pool.Get().(*Context)
	if c == nil {
		c = &Context{}
	}
	c.reset(e, w, req, id)

	e.dispatch(c, t)

	if len(obs) > 0 {
		observeEnd(req.Context(), obs, &c.writer, c.RoutePattern())
	}
	c.release()
	e.pool.Put(c)
}

func (e *Engine) dispatch(c *Context, t *routeTable) {
	req := c.Request
	if e.cfg.maxBodySize > 0 && req.ContentLength > e.cfg.maxBodySize {
		c.Set(KeyRoutePath, PatternNotFound)
		c.Error(ErrBodyTooLarge)
		e.handleErrors(c)
		return
	}

	path := normalizePath(req.URL.EscapedPath(), e.cfg.collapseSlashes)
	method := req.Method

	r, ps, ok := t.lookup(method, path, req, e.patterns)
	if !ok && method == http.MethodHead {
		r, ps, ok = t.lookup(http.MethodGet, path, req, e.patterns)
	}
	if ok {
		e.serveRoute(c, r, ps)
		return
	}

	if e.cfg.redirectTrailingSlash && !t.matchesAny(path, req, e.patterns) {
		if alt, ok := toggleSlash(path); ok && t.matchesAny(alt, req, e.patterns) {
			e.redirect(c, alt)
			return
		}
	}

	if allowed := t.allowedMethods(path, req, e.patterns, e.cfg.autoOptions); len(allowed) > 0 {
		allow := strings.Join(allowed, ", ")
		switch {
		case method == http.MethodOptions && e.cfg.autoOptions:
			e.serveGlobal(c, t, PatternOptions, func(c *Context) {
				c.Header("Allow", allow)
				c.NoContent()
			})
			return
		case e.cfg.methodNotAllowed:
			e.emit(DiagMethodNotAllowed, "method not allowed", map[string]any{
				"method": method,
				"path":   path,
				"allow":  allow,
			})
			e.serveGlobal(c, t, PatternMethodNotAllowed, func(c *Context) {
				c.Header("Allow", allow)
				c.Error(NewHTTPError(http.StatusMethodNotAllowed, ""))
			})
			return
		}
	}

	if fb, score := t.selectFallback(method, path, req); fb != nil {
		e.emit(DiagFallbackSelected, "fallback selected", map[string]any{
			"path":     path,
			"fallback": fb.path,
			"score":    score,
		})
		e.serveRoute(c, fb, compiler.Params{})
		return
	}

	e.emit(DiagRouteNotFound, "no route matched", map[string]any{
		"method": method,
		"path":   path,
	})
	e.serveGlobal(c, t, PatternNotFound, func(c *Context) {
		c.Error(NewHTTPError(http.StatusNotFound, ""))
	})
}

func (e *Engine) serveRoute(c *Context, r *compiledRoute, ps compiler.Params) {
	c.route = r
	c.params = ps
	c.Set(KeyRouteName, r.name)
	c.Set(KeyRoutePath, r.path)
	c.Set(KeyRouteMethod, r.method)
	c.Set(KeyRouteType, string(r.kind()))

	handlers, err := e.resolve(c, &r.chain, nil)
	if err != nil {
		c.Error(err)
		e.handleErrors(c)
		return
	}
	e.run(c, handlers)
}

// serveGlobal runs the engine-level middleware ending in terminal.
func (e *Engine) serveGlobal(c *Context, t *routeTable, pattern string, terminal HandlerFunc) {
	c.Set(KeyRoutePath, pattern)
	handlers, err := e.resolve(c, &t.global, terminal)
	if err != nil {
		c.Error(err)
		e.handleErrors(c)
		return
	}
	e.run(c, handlers)
}

// resolve returns the handlers of ch, resolving references against the
// request scope when the chain is not cached. terminal, when set, is
// appended after the chain's own handler.
func (e *Engine) resolve(c *Context, ch *chain, terminal HandlerFunc) ([]HandlerFunc, error) {
	var hs []HandlerFunc
	if !ch.dynamic() {
		hs = ch.cached
	} else {
		resolved, err := e.registry.ResolveAll(ch.middleware, c.Container())
		if err != nil {
			return nil, err
		}
		hs = terminate(resolved, ch.handler)
	}
	if terminal != nil {
		hs = append(hs[:len(hs):len(hs)], terminal)
	}
	return hs, nil
}

// run executes handlers, converts a panic into a recorded PanicError and
// then runs the error pipeline.
func (e *Engine) run(c *Context, handlers []HandlerFunc) {
	c.handlers = handlers
	c.index = -1
	func() {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value
				panic(v)
			}
			stack := debug.Stack()
			c.Logger().Error("handler panicked", "panic", v, "stack", string(stack))
			c.Error(&PanicError{Value: v, Stack: stack})
			c.Abort()
		}()
		c.Next()
	}()
	e.handleErrors(c)
}

// redirect answers with the alternate trailing-slash form of the path:
// 301 for GET and HEAD, 307 otherwise so the body is replayed.
func (e *Engine) redirect(c *Context, alt string) {
	code := http.StatusTemporaryRedirect
	if m := c.Request.Method; m == http.MethodGet || m == http.MethodHead {
		code = http.StatusMovedPermanently
	}
	target := url.URL{Path: alt, RawQuery: c.Request.URL.RawQuery}
	if p, err := url.PathUnescape(alt); err == nil {
		target.Path = p
		target.RawPath = alt
	}
	c.Set(KeyRoutePath, PatternRedirect)
	c.Redirect(code, target.String())
}

// rejectDraining answers requests that arrive while the engine drains.
func (e *Engine) rejectDraining(w http.ResponseWriter, req *http.Request, cause error) {
	e.emit(DiagDrainRejected, "request rejected while draining", map[string]any{
		"method": req.Method,
		"path":   req.URL.Path,
		"state":  e.lifecycle.State().String(),
	})
	h := w.Header()
	h.Set("Connection", "close")
	h.Set("Retry-After", strconv.Itoa(e.cfg.retryAfter))
	resp := e.formatter.Format(req, &publicError{
		status:  http.StatusServiceUnavailable,
		message: cause.Error(),
	})
	if err := resp.Write(w); err != nil {
		e.logger.Debug("writing drain response failed", "error", err)
	}
}
