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

// mountCfg holds configuration for a mounted router.
type mountCfg struct {
	middleware []Middleware
	namePrefix string
	notFound   HandlerFunc
}

// MountOption configures how a router is mounted.
type MountOption func(*mountCfg)

// WithMiddleware adds mount-level middleware. It runs after engine-level
// middleware and before the mounted router's own middleware.
func WithMiddleware(m ...HandlerFunc) MountOption {
	return func(cfg *mountCfg) {
		cfg.middleware = append(cfg.middleware, concreteAll(m)...)
	}
}

// WithMiddlewareRefs adds mount-level references to registered middleware.
func WithMiddlewareRefs(ids ...string) MountOption {
	return func(cfg *mountCfg) {
		cfg.middleware = append(cfg.middleware, refsAll(ids)...)
	}
}

// NamePrefix prefixes every route name of the mounted router.
//
//	e.Mount("/admin", admin, router.NamePrefix("admin."))
//	// a route named "users" becomes "admin.users"
func NamePrefix(prefix string) MountOption {
	return func(cfg *mountCfg) {
		cfg.namePrefix = prefix
	}
}

// WithNotFound registers a fallback for paths under the mount prefix.
func WithNotFound(h HandlerFunc) MountOption {
	return func(cfg *mountCfg) {
		cfg.notFound = h
	}
}

type mount struct {
	prefix string
	router *Router
	cfg    mountCfg
}

// Mount attaches sub under prefix. Routes of sub keep their own templates
// joined to the prefix, so observability sees "/admin/users/{id}" rather
// than a catch-all. Changes to sub after mounting invalidate the engine's
// route table like changes to r do.
//
// Middleware order for mounted routes: engine-level, then mount options,
// then sub's own middleware, then route-level.
func (r *Router) Mount(prefix string, sub *Router, opts ...MountOption) {
	if sub == nil {
		return
	}
	cfg := mountCfg{}
	for _, opt := range opts {
		opt(&cfg)
	}

	r.mu.Lock()
	r.mounts = append(r.mounts, mount{prefix: route.JoinPath(prefix, ""), router: sub, cfg: cfg})
	r.mu.Unlock()

	sub.OnChange(r.changed)
	r.changed()
}
