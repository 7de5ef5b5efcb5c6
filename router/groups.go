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

import "github.com/kingwill101/routed-sub001/router/route"

// Group registers routes under a common prefix with shared middleware.
// Group middleware is captured when a route is registered, so call Use
// before adding routes.
type Group struct {
	router     *Router
	prefix     string
	middleware []Middleware
	namePrefix string
}

// Use appends group middleware.
func (g *Group) Use(mw ...HandlerFunc) {
	g.middleware = append(g.middleware, concreteAll(mw)...)
}

// UseRef appends references to registered middleware.
func (g *Group) UseRef(ids ...string) {
	g.middleware = append(g.middleware, refsAll(ids)...)
}

// UseGroup appends named middleware groups.
func (g *Group) UseGroup(names ...string) {
	for _, n := range names {
		g.middleware = append(g.middleware, GroupRef(n))
	}
}

// SetNamePrefix prefixes the names of routes registered on the group
// afterwards.
func (g *Group) SetNamePrefix(prefix string) *Group {
	g.namePrefix = prefix
	return g
}

// NamePrefix returns the name prefix.
func (g *Group) NamePrefix() string {
	return g.namePrefix
}

// Prefix returns the full path prefix of the group.
func (g *Group) Prefix() string {
	return g.prefix
}

// Group creates a nested group. Prefixes and middleware accumulate.
func (g *Group) Group(prefix string, mw ...HandlerFunc) *Group {
	middleware := append(append([]Middleware{}, g.middleware...), concreteAll(mw)...)
	return &Group{
		router:     g.router,
		prefix:     route.JoinPath(g.prefix, prefix),
		middleware: middleware,
		namePrefix: g.namePrefix,
	}
}

// Handle registers a route under the group prefix.
func (g *Group) Handle(method, path string, handlers ...HandlerFunc) *Route {
	rt := g.router.handle(method, route.JoinPath(g.prefix, path), g.middleware, handlers)
	if g.namePrefix != "" {
		rt.mu.Lock()
		rt.namePrefix = g.namePrefix
		rt.mu.Unlock()
	}
	return rt
}

// GET registers a GET route.
func (g *Group) GET(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("GET", path, handlers...)
}

// POST registers a POST route.
func (g *Group) POST(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("POST", path, handlers...)
}

// PUT registers a PUT route.
func (g *Group) PUT(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("PUT", path, handlers...)
}

// DELETE registers a DELETE route.
func (g *Group) DELETE(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("DELETE", path, handlers...)
}

// PATCH registers a PATCH route.
func (g *Group) PATCH(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("PATCH", path, handlers...)
}

// HEAD registers a HEAD route.
func (g *Group) HEAD(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("HEAD", path, handlers...)
}

// OPTIONS registers an OPTIONS route.
func (g *Group) OPTIONS(path string, handlers ...HandlerFunc) *Route {
	return g.Handle("OPTIONS", path, handlers...)
}

// Fallback registers a catch-all for paths under the group prefix.
func (g *Group) Fallback(handlers ...HandlerFunc) *Route {
	return g.Handle(AnyMethod, fallbackToken, handlers...)
}
