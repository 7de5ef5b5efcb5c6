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
	"maps"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// Route is a registered route template. Its setters may be chained right
// after registration; any change after the engine has built its table
// invalidates that table.
type Route struct {
	owner *Router

	mu          sync.RWMutex
	method      string
	path        string
	name        string
	namePrefix  string
	description string
	tags        []string
	handler     HandlerFunc
	middleware  []Middleware
	constraints []route.Constraint
	schema      map[string]any
	fallback    bool
}

func newRoute(owner *Router, method, path string, handler HandlerFunc, middleware []Middleware) *Route {
	return &Route{
		owner:      owner,
		method:     method,
		path:       path,
		handler:    handler,
		middleware: middleware,
		fallback:   compiler.IsFallback(path),
	}
}

func (r *Route) changed() {
	if r.owner != nil {
		r.owner.changed()
	}
}

func (r *Route) edit(fn func()) *Route {
	r.mu.Lock()
	fn()
	r.mu.Unlock()
	r.changed()
	return r
}

// SetName names the route for reverse routing. Names must be unique
// across the engine.
func (r *Route) SetName(name string) *Route {
	return r.edit(func() { r.name = name })
}

// SetDescription attaches a human readable description.
func (r *Route) SetDescription(desc string) *Route {
	return r.edit(func() { r.description = desc })
}

// SetTags attaches tags, for documentation tooling.
func (r *Route) SetTags(tags ...string) *Route {
	return r.edit(func() { r.tags = append(r.tags, tags...) })
}

// SetSchema attaches schema metadata under key.
func (r *Route) SetSchema(key string, v any) *Route {
	return r.edit(func() {
		if r.schema == nil {
			r.schema = make(map[string]any)
		}
		r.schema[key] = v
	})
}

// Use appends route-level middleware.
func (r *Route) Use(mw ...HandlerFunc) *Route {
	return r.edit(func() { r.middleware = append(r.middleware, concreteAll(mw)...) })
}

// UseRef appends references to registered middleware.
func (r *Route) UseRef(ids ...string) *Route {
	return r.edit(func() { r.middleware = append(r.middleware, refsAll(ids)...) })
}

// UseGroup appends named middleware groups.
func (r *Route) UseGroup(names ...string) *Route {
	return r.edit(func() {
		for _, n := range names {
			r.middleware = append(r.middleware, GroupRef(n))
		}
	})
}

// Where constrains a parameter to a regular expression, matched in full
// against the decoded value.
func (r *Route) Where(param, pattern string) *Route {
	return r.Constrain(route.Regex(param, pattern))
}

// WhereInt constrains a parameter to digits.
func (r *Route) WhereInt(param string) *Route {
	return r.Where(param, compiler.PatternInt)
}

// WhereUUID constrains a parameter to a UUID.
func (r *Route) WhereUUID(param string) *Route {
	return r.Where(param, compiler.PatternUUID)
}

// WhereEnum constrains a parameter to one of values.
func (r *Route) WhereEnum(param string, values ...string) *Route {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, regexp.QuoteMeta(v))
	}
	return r.Where(param, strings.Join(quoted, "|"))
}

// Domain restricts the route to hosts matching pattern.
func (r *Route) Domain(pattern string) *Route {
	return r.Constrain(route.Domain(pattern))
}

// When restricts the route to requests for which fn returns true.
func (r *Route) When(fn func(*http.Request) bool) *Route {
	return r.Constrain(route.Predicate(fn))
}

// Constrain adds an arbitrary constraint.
func (r *Route) Constrain(c route.Constraint) *Route {
	return r.edit(func() { r.constraints = append(r.constraints, c) })
}

// Method returns the HTTP method.
func (r *Route) Method() string {
	return r.method
}

// Path returns the template relative to the router it was registered on.
func (r *Route) Path() string {
	return r.path
}

// Name returns the route name, including any group name prefix.
func (r *Route) Name() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fullName()
}

func (r *Route) fullName() string {
	if r.name == "" {
		return ""
	}
	return r.namePrefix + r.name
}

// Description returns the description.
func (r *Route) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.description
}

// Tags returns the tags.
func (r *Route) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.tags)
}

// Schema returns a copy of the schema metadata.
func (r *Route) Schema() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.schema)
}

// Constraints returns the route constraints.
func (r *Route) Constraints() []route.Constraint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.constraints)
}

// IsFallback reports whether this is a fallback route.
func (r *Route) IsFallback() bool {
	return r.fallback
}

// snapshot copies the mutable fields for a table build.
func (r *Route) snapshot() routeSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return routeSnapshot{
		method:      r.method,
		path:        r.path,
		name:        r.fullName(),
		handler:     r.handler,
		middleware:  slices.Clone(r.middleware),
		constraints: slices.Clone(r.constraints),
		fallback:    r.fallback,
		meta: routeMeta{
			description: r.description,
			tags:        slices.Clone(r.tags),
			schema:      maps.Clone(r.schema),
		},
	}
}

type routeSnapshot struct {
	method      string
	path        string
	name        string
	handler     HandlerFunc
	middleware  []Middleware
	constraints []route.Constraint
	fallback    bool
	meta        routeMeta
}

// routeMeta is documentation carried into the compiled table.
type routeMeta struct {
	description string
	tags        []string
	schema      map[string]any
}
