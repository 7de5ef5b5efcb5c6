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
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// Router collects routes, router-level middleware and mounted
// sub-routers. It does no matching itself: an [Engine] flattens the root
// router and everything mounted on it into a route table.
//
// A Router on its own is a reusable module:
//
//	admin := router.NewRouter()
//	admin.Use(auditLog)
//	admin.GET("/users/{id:int}", showUser)
//
//	e := router.MustNew()
//	e.Mount("/admin", admin)
type Router struct {
	mu         sync.RWMutex
	routes     []*Route
	middleware []Middleware
	mounts     []mount
	listeners  []func()
	notifying  atomic.Bool
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{}
}

// OnChange registers fn to run whenever a route, middleware or mount is
// added, or a route is modified.
func (r *Router) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// changed notifies listeners. A router mounted into itself, directly or
// through others, stops the notification at the second visit.
func (r *Router) changed() {
	if !r.notifying.CompareAndSwap(false, true) {
		return
	}
	defer r.notifying.Store(false)
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Use appends router-level middleware. On the engine's root router this
// is the engine-level (global) middleware.
func (r *Router) Use(mw ...HandlerFunc) {
	r.addMiddleware(concreteAll(mw)...)
}

// UseRef appends references to registered middleware.
func (r *Router) UseRef(ids ...string) {
	r.addMiddleware(refsAll(ids)...)
}

// UseGroup appends named middleware groups.
func (r *Router) UseGroup(names ...string) {
	list := make([]Middleware, 0, len(names))
	for _, n := range names {
		list = append(list, GroupRef(n))
	}
	r.addMiddleware(list...)
}

func (r *Router) addMiddleware(list ...Middleware) {
	r.mu.Lock()
	r.middleware = append(r.middleware, list...)
	r.mu.Unlock()
	r.changed()
}

// Handle registers a route for any method, including non-standard ones.
// The last handler is the route handler; the ones before it are
// route-level middleware.
func (r *Router) Handle(method, path string, handlers ...HandlerFunc) *Route {
	return r.handle(method, path, nil, handlers)
}

func (r *Router) handle(method, path string, inherited []Middleware, handlers []HandlerFunc) *Route {
	if len(handlers) == 0 || handlers[len(handlers)-1] == nil {
		panic("router: route " + method + " " + path + " has no handler")
	}
	mw := slices.Clone(inherited)
	mw = append(mw, concreteAll(handlers[:len(handlers)-1])...)
	rt := newRoute(r, strings.ToUpper(method), path, handlers[len(handlers)-1], mw)

	r.mu.Lock()
	r.routes = append(r.routes, rt)
	r.mu.Unlock()
	r.changed()
	return rt
}

// GET registers a GET route.
func (r *Router) GET(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route.
func (r *Router) POST(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route.
func (r *Router) PUT(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPut, path, handlers...)
}

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodDelete, path, handlers...)
}

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPatch, path, handlers...)
}

// HEAD registers a HEAD route.
func (r *Router) HEAD(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodHead, path, handlers...)
}

// OPTIONS registers an OPTIONS route. It replaces the automatic OPTIONS
// response for its path.
func (r *Router) OPTIONS(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodOptions, path, handlers...)
}

// CONNECT registers a CONNECT route.
func (r *Router) CONNECT(path string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodConnect, path, handlers...)
}

// Fallback registers a catch-all for every method under this router.
// It is used when nothing else matches.
func (r *Router) Fallback(handlers ...HandlerFunc) *Route {
	return r.Handle(AnyMethod, "/"+fallbackToken, handlers...)
}

// FallbackFor registers a catch-all used only for method.
func (r *Router) FallbackFor(method string, handlers ...HandlerFunc) *Route {
	return r.Handle(method, "/"+fallbackToken, handlers...)
}

// Group returns a group that prefixes paths and prepends middleware.
func (r *Router) Group(prefix string, mw ...HandlerFunc) *Group {
	return &Group{router: r, prefix: prefix, middleware: concreteAll(mw)}
}

// Routes returns the routes registered directly on r.
func (r *Router) Routes() []*Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes)
}

func (r *Router) state() ([]*Route, []Middleware, []mount) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.routes), slices.Clone(r.middleware), slices.Clone(r.mounts)
}
