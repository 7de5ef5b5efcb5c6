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

import "net/http"

// HandlerFunc handles a request. Middleware are HandlerFuncs that call
// [Context.Next] to run the rest of the chain.
type HandlerFunc func(*Context)

// WrapHandler adapts a net/http handler, such as a metrics endpoint or a
// file server, to a route handler.
func WrapHandler(h http.Handler) HandlerFunc {
	return func(c *Context) {
		h.ServeHTTP(c.Response, c.Request)
	}
}

// middlewareKind tags the Middleware union.
type middlewareKind uint8

const (
	middlewareConcrete middlewareKind = iota
	middlewareReference
	middlewareGroup
)

// Middleware is either a concrete handler, a reference to a factory in
// the [MiddlewareRegistry], or a named group of references. References and
// groups are resolved when the route table is built or, for chains that
// must see the request container, on every request.
type Middleware struct {
	kind    middlewareKind
	handler HandlerFunc
	id      string
}

// Concrete wraps a handler.
func Concrete(h HandlerFunc) Middleware {
	return Middleware{kind: middlewareConcrete, handler: h}
}

// Ref refers to a middleware registered under id.
func Ref(id string) Middleware {
	return Middleware{kind: middlewareReference, id: id}
}

// GroupRef refers to every middleware in the named group.
func GroupRef(name string) Middleware {
	return Middleware{kind: middlewareGroup, id: name}
}

// IsReference reports whether m must be looked up in the registry.
func (m Middleware) IsReference() bool {
	return m.kind == middlewareReference
}

// ID returns the registry id of a reference or the name of a group.
func (m Middleware) ID() string {
	return m.id
}

func concreteAll(handlers []HandlerFunc) []Middleware {
	out := make([]Middleware, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, Concrete(h))
		}
	}
	return out
}

func refsAll(ids []string) []Middleware {
	out := make([]Middleware, 0, len(ids))
	for _, id := range ids {
		out = append(out, Ref(id))
	}
	return out
}
