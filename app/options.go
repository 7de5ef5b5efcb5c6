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
package app

import (
	"context"
	"time"

	"github.com/kingwill101/routed-sub001/logging"
	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/server"
)

// Extra time shutdown hooks get beyond the drain grace period.
const shutdownHookSlack = 5 * time.Second

// CheckFunc reports whether a dependency is usable. It must respect ctx.
type CheckFunc func(ctx context.Context) error

// Option configures New beyond what config.Config covers.
type Option func(*options)

type options struct {
	logging           []logging.Option
	router            []router.Option
	server            []server.Option
	middleware        []router.HandlerFunc
	defaultMiddleware bool
	liveness          map[string]CheckFunc
	readiness         map[string]CheckFunc
}

func defaultOptions() *options {
	return &options{
		defaultMiddleware: true,
		liveness:          make(map[string]CheckFunc),
		readiness:         make(map[string]CheckFunc),
	}
}

// WithLogging appends logging options after the configured ones, for
// example to redirect output in tests.
func WithLogging(opts ...logging.Option) Option {
	return func(o *options) { o.logging = append(o.logging, opts...) }
}

// WithRouterOptions appends engine options after the configured ones.
func WithRouterOptions(opts ...router.Option) Option {
	return func(o *options) { o.router = append(o.router, opts...) }
}

// WithServerOptions appends server options after the configured ones.
func WithServerOptions(opts ...server.Option) Option {
	return func(o *options) { o.server = append(o.server, opts...) }
}

// WithMiddleware adds global middleware after the defaults.
func WithMiddleware(mw ...router.HandlerFunc) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// WithoutDefaultMiddleware drops requestid, accesslog and recovery.
func WithoutDefaultMiddleware() Option {
	return func(o *options) { o.defaultMiddleware = false }
}

// WithLivenessCheck adds a check to the liveness probe. Keep these to
// process health; a failing liveness probe gets the process restarted.
func WithLivenessCheck(name string, fn CheckFunc) Option {
	return func(o *options) { o.liveness[name] = fn }
}

// WithReadinessCheck adds a dependency check to the readiness probe.
func WithReadinessCheck(name string, fn CheckFunc) Option {
	return func(o *options) { o.readiness[name] = fn }
}
