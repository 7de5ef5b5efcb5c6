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
	"slices"
	"sync"

	"github.com/kingwill101/routed-sub001/container"
)

var (
	// ErrUnknownMiddleware is returned when a reference names an id that
	// was never registered.
	ErrUnknownMiddleware = errors.New("unknown middleware")

	// ErrUnknownGroup is returned for a group reference with no members.
	ErrUnknownGroup = errors.New("unknown middleware group")
)

// MiddlewareFactory builds a middleware from the container it is resolved
// against. For per-request resolution that is the request scope.
type MiddlewareFactory func(c *container.Container) (HandlerFunc, error)

// MiddlewareRegistry maps ids to middleware factories and holds named
// groups plus the provider-contributed global list.
type MiddlewareRegistry struct {
	mu        sync.RWMutex
	factories map[string]MiddlewareFactory
	groups    map[string][]string
	globals   []string
	listeners []func()
}

// NewMiddlewareRegistry returns an empty registry.
func NewMiddlewareRegistry() *MiddlewareRegistry {
	return &MiddlewareRegistry{
		factories: make(map[string]MiddlewareFactory),
		groups:    make(map[string][]string),
	}
}

// Register stores factory under id. A later registration for the same id
// replaces the earlier one.
func (r *MiddlewareRegistry) Register(id string, factory MiddlewareFactory) {
	r.mu.Lock()
	r.factories[id] = factory
	r.mu.Unlock()
	r.notify()
}

// RegisterHandler registers a container-independent middleware.
func (r *MiddlewareRegistry) RegisterHandler(id string, h HandlerFunc) {
	r.Register(id, func(*container.Container) (HandlerFunc, error) { return h, nil })
}

// AddToGroup appends ids to the named group, skipping ids already in it.
func (r *MiddlewareRegistry) AddToGroup(group string, ids ...string) {
	r.mu.Lock()
	r.groups[group] = appendUnique(r.groups[group], ids...)
	r.mu.Unlock()
	r.notify()
}

// AddGlobal appends ids to the provider global list. Provider globals run
// before any middleware passed to Engine.Use.
func (r *MiddlewareRegistry) AddGlobal(ids ...string) {
	r.mu.Lock()
	r.globals = appendUnique(r.globals, ids...)
	r.mu.Unlock()
	r.notify()
}

// Group returns the ids of a group.
func (r *MiddlewareRegistry) Group(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.groups[name])
}

// Globals returns the provider global ids.
func (r *MiddlewareRegistry) Globals() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.globals)
}

// Has reports whether id is registered.
func (r *MiddlewareRegistry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[id]
	return ok
}

// OnChange registers fn to run after every mutation.
func (r *MiddlewareRegistry) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *MiddlewareRegistry) notify() {
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

// Resolve instantiates the middleware registered under id.
func (r *MiddlewareRegistry) Resolve(id string, c *container.Container) (HandlerFunc, error) {
	r.mu.RLock()
	factory, ok := r.factories[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, id)
	}
	h, err := factory(c)
	if err != nil {
		return nil, fmt.Errorf("middleware %q: %w", id, err)
	}
	if h == nil {
		return nil, fmt.Errorf("middleware %q: factory returned nil", id)
	}
	return h, nil
}

// Expand replaces group references with references to their members.
func (r *MiddlewareRegistry) Expand(list []Middleware) ([]Middleware, error) {
	out := make([]Middleware, 0, len(list))
	for _, m := range list {
		if m.kind != middlewareGroup {
			out = append(out, m)
			continue
		}
		ids := r.Group(m.id)
		if len(ids) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, m.id)
		}
		out = append(out, refsAll(ids)...)
	}
	return out, nil
}

// ResolveAll turns list into handlers, instantiating each reference once
// for this call. Nothing is cached across calls.
func (r *MiddlewareRegistry) ResolveAll(list []Middleware, c *container.Container) ([]HandlerFunc, error) {
	expanded, err := r.Expand(list)
	if err != nil {
		return nil, err
	}
	out := make([]HandlerFunc, 0, len(expanded))
	for _, m := range expanded {
		if m.kind == middlewareConcrete {
			out = append(out, m.handler)
			continue
		}
		h, err := r.Resolve(m.id, c)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// MergeGlobals puts provider globals before user globals and drops
// references whose id already appeared.
func (r *MiddlewareRegistry) MergeGlobals(user []Middleware) []Middleware {
	merged := append(refsAll(r.Globals()), user...)
	seen := make(map[string]struct{}, len(merged))
	out := make([]Middleware, 0, len(merged))
	for _, m := range merged {
		if m.kind != middlewareConcrete {
			key := fmt.Sprintf("%d:%s", m.kind, m.id)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, m)
	}
	return out
}

func appendUnique(list []string, ids ...string) []string {
	for _, id := range ids {
		if !slices.Contains(list, id) {
			list = append(list, id)
		}
	}
	return list
}

func hasReference(list []Middleware) bool {
	for _, m := range list {
		if m.kind != middlewareConcrete {
			return true
		}
	}
	return false
}
