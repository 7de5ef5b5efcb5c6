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
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kingwill101/routed-sub001/container"
	httperrors "github.com/kingwill101/routed-sub001/errors"
	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// AnyMethod registers a route for every method. Fallbacks registered with
// Fallback use it.
const AnyMethod = "*"

const fallbackToken = compiler.FallbackToken

// Engine owns the route table built from its root router and every router
// mounted on it, the middleware and pattern registries, and the lifecycle
// manager tracking in-flight requests. It implements http.Handler.
//
// Registration methods come from the embedded root Router; middleware
// added with Use on the engine is engine-level (global) middleware.
//
//	e := router.MustNew()
//	e.Use(requestid.New())
//	e.GET("/items/{id:int}", func(c *router.Context) {
//	    _ = c.JSON(http.StatusOK, map[string]any{"id": c.ParamValue("id")})
//	})
//	_ = http.ListenAndServe(":8080", e)
type Engine struct {
	*Router

	cfg       *config
	patterns  *compiler.Registry
	registry  *MiddlewareRegistry
	container *container.Container
	lifecycle *lifecycle.Manager
	formatter httperrors.Formatter
	logger    *slog.Logger
	proxies   []netip.Prefix

	table   atomic.Pointer[routeTable]
	dirty   atomic.Bool
	buildMu sync.Mutex

	hooks errorHooks
	pool  sync.Pool
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	proxies, err := parseProxies(cfg.trustedProxies)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		Router:    NewRouter(),
		cfg:       cfg,
		patterns:  cfg.patterns,
		registry:  cfg.registry,
		container: cfg.container,
		lifecycle: cfg.lifecycle,
		formatter: cfg.formatter,
		logger:    cfg.logger,
		proxies:   proxies,
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	if e.patterns == nil {
		e.patterns = compiler.NewRegistry()
	}
	if e.registry == nil {
		e.registry = NewMiddlewareRegistry()
	}
	if e.container == nil {
		e.container = container.New()
	}
	if e.lifecycle == nil {
		e.lifecycle = lifecycle.New(
			lifecycle.WithLogger(e.logger),
			lifecycle.WithAllowPaths(cfg.healthPaths...),
		)
	}
	if e.formatter == nil {
		e.formatter = httperrors.NewRFC9457("")
	}
	e.pool.New = func() any { return &Context{} }

	e.dirty.Store(true)
	e.Router.OnChange(e.Invalidate)
	e.patterns.OnChange(e.Invalidate)
	e.registry.OnChange(e.Invalidate)

	return e, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Invalidate marks the route table stale. The next request, or an
// explicit Build, rebuilds it. In-flight requests keep using the table
// they started with.
func (e *Engine) Invalidate() {
	e.dirty.Store(true)
}

// Build compiles the route table and swaps it in. All problems found are
// returned joined; on error the previous table stays active.
func (e *Engine) Build() error {
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	return e.buildLocked()
}

func (e *Engine) buildLocked() error {
	// Cleared first so a mutation racing with the build marks it dirty again.
	e.dirty.Store(false)

	start := time.Now()
	t, err := e.buildTable()
	if err != nil {
		e.dirty.Store(true)
		return err
	}
	e.table.Store(t)

	e.emit(DiagTableBuilt, "route table built", map[string]any{
		"routes":    len(t.routes),
		"fallbacks": len(t.fallbacks),
		"duration":  time.Since(start),
	})
	return nil
}

// current returns an up to date table, building it when stale.
func (e *Engine) current() (*routeTable, error) {
	if !e.dirty.Load() {
		if t := e.table.Load(); t != nil {
			return t, nil
		}
	}

	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if e.dirty.Load() || e.table.Load() == nil {
		if err := e.buildLocked(); err != nil {
			return nil, err
		}
	}
	return e.table.Load(), nil
}

// Routes describes every compiled route, fallbacks included, in
// registration order.
func (e *Engine) Routes() ([]route.Info, error) {
	t, err := e.current()
	if err != nil {
		return nil, err
	}
	out := make([]route.Info, 0, len(t.all))
	for _, r := range t.all {
		out = append(out, r.info())
	}
	return out, nil
}

// URL builds the path of the route called name. Required parameters must
// be present in params; optional ones may be omitted.
//
//	e.GET("/users/{id:int}", show).SetName("users.show")
//	u, _ := e.URL("users.show", map[string]string{"id": "7"}) // "/users/7"
func (e *Engine) URL(name string, params map[string]string) (string, error) {
	t, err := e.current()
	if err != nil {
		return "", err
	}
	r, ok := t.names[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRouteNotFound, name)
	}
	u, err := r.pattern.Build(params)
	if err != nil {
		return "", fmt.Errorf("route %q: %w", name, err)
	}
	return u, nil
}

// Lifecycle returns the manager tracking in-flight requests.
func (e *Engine) Lifecycle() *lifecycle.Manager {
	return e.lifecycle
}

// Container returns the root DI container.
func (e *Engine) Container() *container.Container {
	return e.container
}

// Registry returns the middleware registry.
func (e *Engine) Registry() *MiddlewareRegistry {
	return e.registry
}

// Patterns returns the parameter type registry.
func (e *Engine) Patterns() *compiler.Registry {
	return e.patterns
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Handler returns e as an http.Handler after building the table, so
// registration mistakes surface before serving.
func (e *Engine) Handler() (http.Handler, error) {
	if err := e.Build(); err != nil {
		return nil, err
	}
	return e, nil
}
