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
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/kingwill101/routed-sub001/config"
	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/logging"
	"github.com/kingwill101/routed-sub001/metrics"
	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware/accesslog"
	"github.com/kingwill101/routed-sub001/router/middleware/compression"
	"github.com/kingwill101/routed-sub001/router/middleware/ratelimit"
	"github.com/kingwill101/routed-sub001/router/middleware/recovery"
	"github.com/kingwill101/routed-sub001/router/middleware/requestid"
	"github.com/kingwill101/routed-sub001/server"
	"github.com/kingwill101/routed-sub001/tracing"
)

// App wires one engine to its logger, lifecycle manager, recorders and
// server, all configured from a config.Config.
type App struct {
	cfg     *config.Config
	logging *logging.Logger
	lm      *lifecycle.Manager
	engine  *router.Engine
	metrics *metrics.Recorder
	tracer  *tracing.Tracer
	server  *server.Server
	health  *health

	mu         sync.Mutex
	onStart    []func(context.Context) error
	onShutdown []func(context.Context)
}

// New builds the application. Routes are registered on [App.Engine]
// before [App.Run].
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	lg, err := logging.New(append(cfg.LoggingOptions(), o.logging...)...)
	if err != nil {
		return nil, fmt.Errorf("app: logging: %w", err)
	}
	logger := lg.Logger()

	a := &App{cfg: cfg, logging: lg}
	a.lm = lifecycle.New(cfg.LifecycleOptions(logger)...)

	var recorders []router.ObservabilityRecorder
	diagnostics := diagnosticsFanout{logDiagnostics(logger)}
	if cfg.Metrics.Enabled {
		a.metrics, err = metrics.New(cfg.MetricsOptions()...)
		if err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
		recorders = append(recorders, a.metrics)
		diagnostics = append(diagnostics, a.metrics)
	}
	if cfg.Tracing.Enabled {
		a.tracer, err = tracing.New(cfg.TracingOptions(logger)...)
		if err != nil {
			return nil, fmt.Errorf("app: tracing: %w", err)
		}
		recorders = append(recorders, a.tracer)
		a.OnShutdown(func(ctx context.Context) {
			if err := a.tracer.Shutdown(ctx); err != nil {
				logger.Warn("tracing shutdown failed", "error", err)
			}
		})
	}

	engineOpts := cfg.EngineOptions(logger, a.lm)
	engineOpts = append(engineOpts,
		router.WithDiagnostics(diagnostics),
		router.WithObservability(recorders...),
	)
	a.engine, err = router.New(append(engineOpts, o.router...)...)
	if err != nil {
		return nil, fmt.Errorf("app: router: %w", err)
	}

	if o.defaultMiddleware {
		ridOpts := []requestid.Option{requestid.WithEngineID(true)}
		if cfg.Lifecycle.ULIDs {
			ridOpts = append(ridOpts, requestid.WithULID())
		}
		a.engine.Use(
			requestid.New(ridOpts...),
			accesslog.New(
				accesslog.WithLogger(logger),
				accesslog.WithExcludePaths(cfg.HealthPaths()...),
			),
			recovery.New(recovery.WithLogger(logger)),
		)
	}
	if cfg.Compression.Enabled {
		a.engine.Use(compression.New(cfg.CompressionOptions()...))
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewLimiter(cfg.RateLimitOptions(logger)...)
		a.engine.Use(limiter.Handler())
		a.OnShutdown(func(context.Context) { limiter.Close() })
	}
	a.engine.Use(o.middleware...)

	a.health = newHealth(a.lm, cfg.Health.Timeout, o.liveness, o.readiness)
	if p := cfg.Health.Liveness; p != "" {
		a.engine.GET(p, a.health.live).SetName("health.live")
	}
	if p := cfg.Health.Readiness; p != "" {
		a.engine.GET(p, a.health.ready).SetName("health.ready")
	}
	if a.metrics != nil {
		a.engine.GET(cfg.Metrics.Path, router.WrapHandler(a.metrics.Handler())).SetName("metrics")
	}

	srvOpts := append(cfg.ServerOptions(logger), o.server...)
	a.server, err = server.New(a.engine, srvOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: server: %w", err)
	}
	return a, nil
}

// MustNew is New that panics on error.
func MustNew(cfg *config.Config, opts ...Option) *App {
	a, err := New(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Engine is the router routes are registered on.
func (a *App) Engine() *router.Engine { return a.engine }

// Logger is the process logger.
func (a *App) Logger() *slog.Logger { return a.logging.Logger() }

// Logging exposes level control of the process logger.
func (a *App) Logging() *logging.Logger { return a.logging }

// Lifecycle is the drain manager shared by engine and server.
func (a *App) Lifecycle() *lifecycle.Manager { return a.lm }

// Metrics is nil unless metrics are enabled.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// Tracer is nil unless tracing is enabled.
func (a *App) Tracer() *tracing.Tracer { return a.tracer }

// Server is the listener wrapper Run uses.
func (a *App) Server() *server.Server { return a.server }

// Config is the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// OnStart registers fn to run before the listener opens. Hooks run in
// order and the first error aborts Run.
func (a *App) OnStart(fn func(context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStart = append(a.onStart, fn)
}

// OnShutdown registers fn to run after the server stopped. Hooks run in
// reverse registration order.
func (a *App) OnShutdown(fn func(context.Context)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onShutdown = append(a.onShutdown, fn)
}

// Run starts the server and blocks until it has drained. Shutdown hooks
// run whatever the outcome, then the logger is closed.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	start := slices.Clone(a.onStart)
	stop := slices.Clone(a.onShutdown)
	a.mu.Unlock()

	var err error
	for i, fn := range start {
		if err = fn(ctx); err != nil {
			err = fmt.Errorf("app: start hook %d: %w", i, err)
			break
		}
	}
	if err == nil {
		err = a.server.Run(ctx)
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownGrace+shutdownHookSlack)
	defer cancel()
	for _, fn := range slices.Backward(stop) {
		fn(hookCtx)
	}
	_ = a.logging.Shutdown(hookCtx)
	return err
}

// ExitCode maps the error from Run to a process exit status.
func (a *App) ExitCode(err error) int {
	return a.server.ExitCode(err)
}
