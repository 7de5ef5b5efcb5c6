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

package compiler

import (
	"maps"
	"strconv"
	"sync"
	"sync/atomic"
)

// CastFunc converts a raw captured string into a typed value.
// It returns nil when the value cannot be converted.
type CastFunc func(raw string) any

// TypeDefinition describes a named parameter type.
type TypeDefinition struct {
	Name    string
	Pattern string
	Cast    CastFunc
}

// Built-in parameter type patterns.
const (
	PatternInt    = `\d+`
	PatternDouble = `\d+(\.\d+)?`
	PatternUUID   = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`
	PatternSlug   = `[a-z0-9]+(?:-[a-z0-9]+)*`
	PatternWord   = `\w+`
	PatternString = `[^/]+`
	PatternDate   = `\d{4}-\d{2}-\d{2}`
	PatternEmail  = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`
	PatternURL    = `https?://[^\s/$.?#].[^\s]*`
	PatternIP     = `\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`
)

// DefaultParamPattern is used for placeholders without a type or a
// registered parameter-name pattern.
const DefaultParamPattern = PatternString

// registryState is an immutable view of the registry.
// Writers copy it, modify the copy and swap it in.
type registryState struct {
	types  map[string]TypeDefinition
	params map[string]string
}

// Registry holds parameter type definitions and per-parameter-name patterns.
// Reads are lock-free; writes replace the whole state atomically.
type Registry struct {
	state     atomic.Pointer[registryState]
	mu        sync.Mutex // serializes writers
	listeners []func()
}

// NewRegistry returns a registry populated with the built-in types.
func NewRegistry() *Registry {
	r := &Registry{}
	r.state.Store(&registryState{
		types:  builtinTypes(),
		params: make(map[string]string),
	})
	return r
}

func builtinTypes() map[string]TypeDefinition {
	defs := []TypeDefinition{
		{Name: "int", Pattern: PatternInt, Cast: castInt},
		{Name: "double", Pattern: PatternDouble, Cast: castDouble},
		{Name: "uuid", Pattern: PatternUUID},
		{Name: "slug", Pattern: PatternSlug},
		{Name: "word", Pattern: PatternWord},
		{Name: "string", Pattern: PatternString},
		{Name: "date", Pattern: PatternDate},
		{Name: "email", Pattern: PatternEmail},
		{Name: "url", Pattern: PatternURL},
		{Name: "ip", Pattern: PatternIP},
	}
	types := make(map[string]TypeDefinition, len(defs))
	for _, d := range defs {
		types[d.Name] = d
	}
	return types
}

func castInt(raw string) any {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return n
}

func castDouble(raw string) any {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return f
}

// update applies fn to a copy of the current state and installs it.
func (r *Registry) update(fn func(s *registryState)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.state.Load()
	next := &registryState{
		types:  maps.Clone(cur.types),
		params: maps.Clone(cur.params),
	}
	fn(next)
	r.state.Store(next)

	for _, l := range r.listeners {
		l()
	}
}

// OnChange registers fn to be called after every write.
// The engine uses it to invalidate its compiled route table.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// RegisterType adds or replaces the type called name.
// The pattern is not validated here; an invalid pattern surfaces when a
// route using it is compiled. A nil cast keeps the raw string.
func (r *Registry) RegisterType(name, pattern string, cast CastFunc) {
	r.update(func(s *registryState) {
		s.types[name] = TypeDefinition{Name: name, Pattern: pattern, Cast: cast}
	})
}

// RegisterParamPattern sets the default pattern for every placeholder
// called param that does not declare an explicit type.
func (r *Registry) RegisterParamPattern(param, pattern string) {
	r.update(func(s *registryState) {
		s.params[param] = pattern
	})
}

// ResolveType looks up a type definition by name.
func (r *Registry) ResolveType(name string) (TypeDefinition, bool) {
	def, ok := r.state.Load().types[name]
	return def, ok
}

// ResolveParamPattern looks up the pattern registered for a parameter name.
func (r *Registry) ResolveParamPattern(param string) (string, bool) {
	p, ok := r.state.Load().params[param]
	return p, ok
}

// Cast converts raw using the cast function of typeName.
// Unknown types and types without a cast function return raw unchanged.
// Failed conversions return nil.
func (r *Registry) Cast(raw, typeName string) any {
	if typeName == "" {
		return raw
	}
	def, ok := r.ResolveType(typeName)
	if !ok || def.Cast == nil {
		return raw
	}
	return def.Cast(raw)
}

// Types returns the names of all registered types.
func (r *Registry) Types() []string {
	types := r.state.Load().types
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	return names
}
