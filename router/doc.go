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
// Package router matches HTTP requests to routes and runs their
// middleware chains.
//
// # Routes
//
// Templates are made of literal segments and placeholders:
//
//	/users/{id}          required, pattern [^/]+ unless one is registered for "id"
//	/items/{id:int}      typed, pattern and cast come from the type registry
//	/posts/{slug?}       optional, the preceding slash is optional too
//	/files/{*path}       wildcard, captures the rest of the path
//
// A template without '{' or '*' is static and is found with a map lookup.
// Fallback routes end in "/*" and only run when nothing else matches; if
// several accept a request the one whose prefix is most similar to the
// path wins.
//
// # Table
//
// An Engine flattens its root router, groups and mounted routers into an
// immutable route table. The table is built on first use or by Build and
// replaced as a whole after any change, so requests never see a partial
// table. Duplicate method and path pairs, duplicate names, bad templates
// and unknown middleware references are reported by Build.
//
// # Middleware
//
// Chains run engine-level middleware, then mount-level, then group and
// route middleware, then the handler. Middleware may be concrete
// functions or references to factories in a MiddlewareRegistry. Chains
// without references are composed once per table build; chains with
// references resolve them per request against the request's container
// scope, unless WithEagerMiddleware is set.
//
// # Errors
//
// Handlers record errors with Context.Error. After the chain, recorded
// errors pass through OnErrorBefore observers, OnError handlers (first
// claim wins) and OnErrorAfter observers. Unclaimed errors are mapped:
// ErrBodyTooLarge to 413, *ValidationError to 422, *HTTPError to its
// status and anything else to a generic 500.
//
// # Quick start
//
//	e := router.MustNew()
//	e.GET("/items/{id:int}", func(c *router.Context) {
//	    _ = c.JSON(http.StatusOK, map[string]any{"id": c.ParamValue("id")})
//	}).SetName("items.show")
//
//	api := e.Group("/api")
//	api.Fallback(func(c *router.Context) {
//	    _ = c.String(http.StatusNotFound, "no such API")
//	})
//
//	if err := e.Build(); err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(http.ListenAndServe(":8080", e))
package router
