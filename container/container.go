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

// Package container is a small dependency-injection container.
//
// Bindings are resolved by name. A binding is transient (new value per
// resolution), a singleton (one value for the container that declared it)
// or scoped (one value per [Container.Scope]). The router opens one scope
// per request so scoped services never leak across requests.
//
//	c := container.New()
//	c.Singleton("db", func(*container.Container) (any, error) { return openDB() })
//	c.Scoped("tx", func(s *container.Container) (any, error) {
//	    db, err := container.Resolve[*sql.DB](s, "db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return db.Begin()
//	})
//
//	scope := c.Scope()
//	tx, err := container.Resolve[*sql.Tx](scope, "tx")
package container

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when no binding exists for a name.
var ErrNotFound = errors.New("container: binding not found")

// Factory builds a service. The container passed in is the one the
// service is being resolved from, so factories can resolve their own
// dependencies through it.
type Factory func(c *Container) (any, error)

type lifetime uint8

const (
	transient lifetime = iota
	singleton
	scoped
)

type binding struct {
	factory  Factory
	lifetime lifetime
}

// Container holds bindings and resolved instances.
// It is safe for concurrent use.
type Container struct {
	parent *Container

	mu        sync.RWMutex
	bindings  map[string]binding
	instances map[string]any
}

// New returns an empty root container.
func New() *Container {
	return &Container{
		bindings:  make(map[string]binding),
		instances: make(map[string]any),
	}
}

// Scope returns a child container. Lookups fall back to the parent;
// scoped bindings resolve once per child.
func (c *Container) Scope() *Container {
	child := New()
	child.parent = c
	return child
}

// Parent returns the container this scope was created from, or nil.
func (c *Container) Parent() *Container {
	return c.parent
}

// Bind registers a transient factory.
func (c *Container) Bind(name string, f Factory) {
	c.set(name, binding{factory: f, lifetime: transient})
}

// Singleton registers a factory whose result is cached on c.
func (c *Container) Singleton(name string, f Factory) {
	c.set(name, binding{factory: f, lifetime: singleton})
}

// Scoped registers a factory whose result is cached per scope.
func (c *Container) Scoped(name string, f Factory) {
	c.set(name, binding{factory: f, lifetime: scoped})
}

// Instance registers an already built value.
func (c *Container) Instance(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, name)
	c.instances[name] = v
}

func (c *Container) set(name string, b binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.instances, name)
	c.bindings[name] = b
}

// Has reports whether name can be resolved from c or its parents.
func (c *Container) Has(name string) bool {
	for cur := c; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		_, inst := cur.instances[name]
		_, bound := cur.bindings[name]
		cur.mu.RUnlock()
		if inst || bound {
			return true
		}
	}
	return false
}

// Make resolves name.
func (c *Container) Make(name string) (any, error) {
	// scoped instances live on the requesting container
	c.mu.RLock()
	v, ok := c.instances[name]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	for owner := c; owner != nil; owner = owner.parent {
		owner.mu.RLock()
		inst, hasInst := owner.instances[name]
		b, hasBinding := owner.bindings[name]
		owner.mu.RUnlock()

		if hasInst {
			return inst, nil
		}
		if !hasBinding {
			continue
		}

		switch b.lifetime {
		case singleton:
			return owner.cache(name, func() (any, error) { return b.factory(owner) })
		case scoped:
			return c.cache(name, func() (any, error) { return b.factory(c) })
		default:
			v, err := b.factory(c)
			if err != nil {
				return nil, fmt.Errorf("container: resolve %q: %w", name, err)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// cache runs build without holding the lock so that factories may resolve
// other services, then keeps the first stored value if two callers raced.
func (c *Container) cache(name string, build func() (any, error)) (any, error) {
	v, err := build()
	if err != nil {
		return nil, fmt.Errorf("container: resolve %q: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[name]; ok {
		return existing, nil
	}
	c.instances[name] = v
	return v, nil
}

// Resolve resolves name and asserts it to T.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	v, err := c.Make(name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: %q is %T, not %T", name, v, zero)
	}
	return t, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, name string) T {
	v, err := Resolve[T](c, name)
	if err != nil {
		panic(err)
	}
	return v
}
