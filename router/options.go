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

	"github.com/kingwill101/routed-sub001/container"
	"github.com/kingwill101/routed-sub001/errors"
	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/router/compiler"
)

// DefaultMaxBodySize is the request body limit used unless
// WithMaxBodySize overrides it.
const DefaultMaxBodySize int64 = 32 << 20

// Option configures an Engine.
type Option func(*config)

type config struct {
	redirectTrailingSlash bool
	methodNotAllowed      bool
	autoOptions           bool
	collapseSlashes       bool
	trie                  bool
	eagerMiddleware       bool
	exposeErrors          bool
	maxBodySize           int64
	healthPaths           []string
	trustedProxies        []string
	retryAfter            int

	logger      *slog.Logger
	container   *container.Container
	registry    *MiddlewareRegistry
	patterns    *compiler.Registry
	lifecycle   *lifecycle.Manager
	formatter   errors.Formatter
	diagnostics DiagnosticHandler
	observers   []ObservabilityRecorder
}

func defaultConfig() *config {
	return &config{
		redirectTrailingSlash: true,
		methodNotAllowed:      true,
		autoOptions:           true,
		maxBodySize:           DefaultMaxBodySize,
		retryAfter:            5,
	}
}

func (c *config) validate() error {
	if c.maxBodySize < 0 {
		return fmt.Errorf("router: max body size must not be negative, got %d", c.maxBodySize)
	}
	if c.retryAfter < 0 {
		return fmt.Errorf("router: retry-after must not be negative, got %d", c.retryAfter)
	}
	_, err := parseProxies(c.trustedProxies)
	return err
}

// WithRedirectTrailingSlash toggles redirecting /a to /a/ (or back) when
// only the other form is registered. Enabled by default.
func WithRedirectTrailingSlash(enabled bool) Option {
	return func(c *config) { c.redirectTrailingSlash = enabled }
}

// WithMethodNotAllowed toggles 405 responses for paths registered under
// other methods. When disabled those requests fall through to fallbacks
// and 404. Enabled by default.
func WithMethodNotAllowed(enabled bool) Option {
	return func(c *config) { c.methodNotAllowed = enabled }
}

// WithAutoOptions toggles the automatic 204 answer to OPTIONS requests
// for paths without an explicit OPTIONS route. Enabled by default.
func WithAutoOptions(enabled bool) Option {
	return func(c *config) { c.autoOptions = enabled }
}

// WithCollapseSlashes collapses runs of '/' in request paths before
// matching.
func WithCollapseSlashes(enabled bool) Option {
	return func(c *config) { c.collapseSlashes = enabled }
}

// WithTrie indexes pattern routes in a per-method segment trie instead of
// scanning them in registration order. Routes the trie cannot represent
// are still scanned linearly after it.
func WithTrie(enabled bool) Option {
	return func(c *config) { c.trie = enabled }
}

// WithEagerMiddleware resolves middleware references once, when the table
// is built, against the engine container. Without it, chains holding
// references are resolved per request against the request scope.
func WithEagerMiddleware(enabled bool) Option {
	return func(c *config) { c.eagerMiddleware = enabled }
}

// WithExposeErrors puts the message of unexpected errors in 500 bodies.
// Use for development only.
func WithExposeErrors(enabled bool) Option {
	return func(c *config) { c.exposeErrors = enabled }
}

// WithMaxBodySize limits request bodies to n bytes. Zero disables the
// limit.
func WithMaxBodySize(n int64) Option {
	return func(c *config) { c.maxBodySize = n }
}

// WithHealthPaths lists paths still served while draining.
// Ignored when WithLifecycle supplies a manager.
func WithHealthPaths(paths ...string) Option {
	return func(c *config) { c.healthPaths = append(c.healthPaths, paths...) }
}

// WithRetryAfter sets the Retry-After seconds sent with 503 responses
// while draining.
func WithRetryAfter(seconds int) Option {
	return func(c *config) { c.retryAfter = seconds }
}

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithContainer sets the root DI container. Each request gets a scope of
// it.
func WithContainer(ct *container.Container) Option {
	return func(c *config) { c.container = ct }
}

// WithMiddlewareRegistry shares a middleware registry with the engine.
func WithMiddlewareRegistry(r *MiddlewareRegistry) Option {
	return func(c *config) { c.registry = r }
}

// WithPatternRegistry shares a parameter type registry with the engine.
func WithPatternRegistry(r *compiler.Registry) Option {
	return func(c *config) { c.patterns = r }
}

// WithLifecycle shares a lifecycle manager, typically with the server
// that drains it.
func WithLifecycle(m *lifecycle.Manager) Option {
	return func(c *config) { c.lifecycle = m }
}

// WithErrorFormatter sets the formatter for error bodies. The default
// writes RFC 9457 problem details.
func WithErrorFormatter(f errors.Formatter) Option {
	return func(c *config) { c.formatter = f }
}

// WithDiagnostics sets a handler for diagnostic events.
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    slog.Debug(e.Message, "kind", e.Kind, "fields", e.Fields)
//	})
//	e := router.MustNew(router.WithDiagnostics(handler))
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(c *config) { c.diagnostics = handler }
}

// WithObservability adds request recorders. They run in the given order
// on request start and in reverse order on request end.
func WithObservability(recorders ...ObservabilityRecorder) Option {
	return func(c *config) {
		for _, r := range recorders {
			if r != nil {
				c.observers = append(c.observers, r)
			}
		}
	}
}
