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
	"maps"
	"slices"

	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// chain is a composed middleware list ending in a handler. cached is set
// when no element needs per-request resolution.
type chain struct {
	middleware []Middleware
	handler    HandlerFunc
	cached     []HandlerFunc
}

func (ch *chain) dynamic() bool {
	return ch.cached == nil
}

// compiledRoute is a route flattened into the table.
type compiledRoute struct {
	seq         int
	method      string
	path        string
	name        string
	pattern     *compiler.Pattern
	constraints []route.Constraint
	chain       chain
	meta        routeMeta
}

func (r *compiledRoute) kind() route.Kind {
	switch {
	case r.pattern.Fallback:
		return route.KindFallback
	case r.pattern.Static:
		return route.KindStatic
	default:
		return route.KindPattern
	}
}

func (r *compiledRoute) info() route.Info {
	cs := make([]string, 0, len(r.constraints))
	for _, c := range r.constraints {
		desc := c.Kind.String()
		switch {
		case c.Param != "":
			desc += ":" + c.Param + "=" + c.Pattern
		case c.Pattern != "":
			desc += ":" + c.Pattern
		}
		cs = append(cs, desc)
	}
	specs := make([]route.ParamSpec, 0, len(r.pattern.Names))
	for _, name := range r.pattern.Names {
		pi := r.pattern.Params[name]
		specs = append(specs, route.ParamSpec{
			Name:     name,
			Type:     pi.Type,
			Optional: pi.Optional,
			Wildcard: pi.Wildcard,
		})
	}
	return route.Info{
		Method:      r.method,
		Path:        r.path,
		Name:        r.name,
		Kind:        r.kind(),
		Params:      slices.Clone(r.pattern.Names),
		ParamSpecs:  specs,
		Middleware:  len(r.chain.middleware),
		Dynamic:     r.chain.dynamic(),
		Constraints: cs,
		Description: r.meta.description,
		Tags:        slices.Clone(r.meta.tags),
		Schema:      maps.Clone(r.meta.schema),
	}
}

// routeTable is an immutable snapshot. It is replaced as a whole on
// rebuild and read without locks.
type routeTable struct {
	all       []*compiledRoute
	routes    []*compiledRoute
	static    map[string]map[string]*compiledRoute
	bloom     *compiler.BloomFilter
	patterns  map[string][]*compiledRoute
	tries     map[string]*trieNode
	fallbacks []*compiledRoute
	names     map[string]*compiledRoute
	methods   []string
	global    chain
}

func staticKey(method, path string) string {
	return method + " " + path
}

// tableBuilder accumulates a table and the problems found on the way.
type tableBuilder struct {
	e       *Engine
	t       *routeTable
	errs    []error
	seq     int
	seen    map[string]*compiledRoute
	visited map[*Router]bool
}

func (e *Engine) buildTable() (*routeTable, error) {
	b := &tableBuilder{
		e: e,
		t: &routeTable{
			static:   make(map[string]map[string]*compiledRoute),
			patterns: make(map[string][]*compiledRoute),
			tries:    make(map[string]*trieNode),
			names:    make(map[string]*compiledRoute),
		},
		seen:    make(map[string]*compiledRoute),
		visited: make(map[*Router]bool),
	}

	routes, own, mounts := e.Router.state()
	globals, err := e.registry.Expand(e.registry.MergeGlobals(own))
	if err != nil {
		b.errs = append(b.errs, &BuildError{Err: err})
		globals = nil
	}
	b.t.global = b.compose(globals, nil, "", "")

	b.visited[e.Router] = true
	b.addRoutes(routes, "", globals, "")
	b.addMounts(mounts, "", globals, "")

	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	b.index()
	return b.t, nil
}

func (b *tableBuilder) addMounts(mounts []mount, prefix string, inherited []Middleware, namePrefix string) {
	for _, m := range mounts {
		full := route.JoinPath(prefix, m.prefix)
		if b.visited[m.router] {
			b.errs = append(b.errs, &BuildError{Path: full, Err: ErrMountCycle})
			continue
		}

		routes, own, nested := m.router.state()
		mw := slices.Concat(inherited, m.cfg.middleware, own)
		expanded, err := b.e.registry.Expand(mw)
		if err != nil {
			b.errs = append(b.errs, &BuildError{Path: full, Err: err})
			continue
		}
		np := namePrefix + m.cfg.namePrefix

		b.visited[m.router] = true
		b.addRoutes(routes, full, expanded, np)
		if m.cfg.notFound != nil {
			b.add(AnyMethod, route.JoinPath(full, fallbackToken), "", m.cfg.notFound, expanded, nil, routeMeta{})
		}
		b.addMounts(nested, full, expanded, np)
		delete(b.visited, m.router)
	}
}

func (b *tableBuilder) addRoutes(routes []*Route, prefix string, inherited []Middleware, namePrefix string) {
	for _, rt := range routes {
		s := rt.snapshot()
		name := s.name
		if name != "" {
			name = namePrefix + name
		}
		routeMW, err := b.e.registry.Expand(s.middleware)
		if err != nil {
			b.errs = append(b.errs, &BuildError{Method: s.method, Path: s.path, Name: name, Err: err})
			continue
		}
		b.add(s.method, route.JoinPath(prefix, s.path), name, s.handler, slices.Concat(inherited, routeMW), s.constraints, s.meta)
	}
}

func (b *tableBuilder) add(method, path, name string, handler HandlerFunc, mw []Middleware, constraints []route.Constraint, meta routeMeta) {
	fail := func(err error) {
		b.errs = append(b.errs, &BuildError{Method: method, Path: path, Name: name, Err: err})
	}

	p, err := compiler.Compile(path, b.e.patterns)
	if err != nil {
		fail(err)
		return
	}

	compiled := make([]route.Constraint, 0, len(constraints))
	for _, c := range constraints {
		cc, err := c.Compile()
		if err != nil {
			fail(err)
			return
		}
		compiled = append(compiled, cc)
	}

	for _, m := range mw {
		if m.IsReference() && !b.e.registry.Has(m.ID()) {
			fail(fmt.Errorf("%w: %q", ErrUnknownMiddleware, m.ID()))
			return
		}
	}

	r := &compiledRoute{
		seq:         b.seq,
		method:      method,
		path:        path,
		name:        name,
		pattern:     p,
		constraints: compiled,
		meta:        meta,
	}
	b.seq++

	if !p.Fallback {
		key := staticKey(method, path)
		if prev, dup := b.seen[key]; dup {
			fail(fmt.Errorf("%w: first registered as #%d", ErrDuplicateRoute, prev.seq))
			return
		}
		b.seen[key] = r
	}
	if name != "" {
		if _, dup := b.t.names[name]; dup {
			fail(ErrDuplicateName)
			return
		}
		b.t.names[name] = r
	}

	r.chain = b.compose(mw, handler, method, path)
	if p.Fallback {
		// Fallback chains are always resolved against the request scope.
		r.chain.cached = nil
	}

	b.t.all = append(b.t.all, r)
	if p.Fallback {
		b.t.fallbacks = append(b.t.fallbacks, r)
	} else {
		b.t.routes = append(b.t.routes, r)
	}
}

// compose builds a chain, caching the handler list when it holds no
// references or when eager resolution is on.
func (b *tableBuilder) compose(mw []Middleware, handler HandlerFunc, method, path string) chain {
	ch := chain{middleware: mw, handler: handler}
	switch {
	case !hasReference(mw):
		ch.cached = terminate(concreteHandlers(mw), handler)
	case b.e.cfg.eagerMiddleware:
		hs, err := b.e.registry.ResolveAll(mw, b.e.container)
		if err != nil {
			b.errs = append(b.errs, &BuildError{Method: method, Path: path, Err: err})
			return ch
		}
		ch.cached = terminate(hs, handler)
	}
	return ch
}

func concreteHandlers(mw []Middleware) []HandlerFunc {
	out := make([]HandlerFunc, 0, len(mw)+1)
	for _, m := range mw {
		out = append(out, m.handler)
	}
	return out
}

func terminate(hs []HandlerFunc, handler HandlerFunc) []HandlerFunc {
	if handler != nil {
		hs = append(hs, handler)
	}
	return hs
}

// index partitions the routes into the lookup structures.
func (b *tableBuilder) index() {
	t := b.t
	t.bloom = compiler.NewBloomFilter(uint64(len(t.routes))*10, 3) //nolint:gosec // non-negative
	methods := make(map[string]struct{})

	for _, r := range t.routes {
		if r.method != AnyMethod {
			methods[r.method] = struct{}{}
		}
		if r.pattern.Static {
			byPath := t.static[r.method]
			if byPath == nil {
				byPath = make(map[string]*compiledRoute)
				t.static[r.method] = byPath
			}
			byPath[r.path] = r
			t.bloom.Add(staticKey(r.method, r.path))
			continue
		}
		if b.e.cfg.trie && r.pattern.Trieable {
			root := t.tries[r.method]
			if root == nil {
				root = newTrieNode()
				t.tries[r.method] = root
			}
			root.insert(r)
			continue
		}
		t.patterns[r.method] = append(t.patterns[r.method], r)
	}

	for m := range methods {
		t.methods = append(t.methods, m)
	}
	slices.Sort(t.methods)
}
