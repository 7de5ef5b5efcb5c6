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
package config

import (
	"log/slog"

	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/logging"
	"github.com/kingwill101/routed-sub001/metrics"
	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware/compression"
	"github.com/kingwill101/routed-sub001/router/middleware/ratelimit"
	"github.com/kingwill101/routed-sub001/server"
	"github.com/kingwill101/routed-sub001/tracing"
)

// EngineOptions translates the router section. The lifecycle manager is
// passed in so the health paths and the drain allow-list stay one list.
func (c *Config) EngineOptions(logger *slog.Logger, lm *lifecycle.Manager) []router.Option {
	rc := c.Router
	opts := []router.Option{
		router.WithRedirectTrailingSlash(rc.RedirectTrailingSlash),
		router.WithMethodNotAllowed(rc.MethodNotAllowed),
		router.WithAutoOptions(rc.AutoOptions),
		router.WithCollapseSlashes(rc.CollapseSlashes),
		router.WithTrie(rc.Trie),
		router.WithEagerMiddleware(rc.EagerMiddleware),
		router.WithExposeErrors(rc.ExposeErrors),
		router.WithMaxBodySize(rc.MaxBodySize),
		router.WithRetryAfter(rc.RetryAfter),
	}
	if hp := c.HealthPaths(); len(hp) > 0 {
		opts = append(opts, router.WithHealthPaths(hp...))
	}
	if len(rc.TrustedProxies) > 0 {
		opts = append(opts, router.WithTrustedProxies(rc.TrustedProxies...))
	}
	if logger != nil {
		opts = append(opts, router.WithLogger(logger))
	}
	if lm != nil {
		opts = append(opts, router.WithLifecycle(lm))
	}
	return opts
}

// LifecycleOptions translates the lifecycle section. Router health paths
// and probe endpoints are allowed while draining too.
func (c *Config) LifecycleOptions(logger *slog.Logger) []lifecycle.Option {
	opts := []lifecycle.Option{
		lifecycle.WithAllowPaths(c.Lifecycle.AllowPaths...),
		lifecycle.WithAllowPaths(c.HealthPaths()...),
	}
	if c.Lifecycle.ULIDs {
		opts = append(opts, lifecycle.WithULIDs())
	}
	if logger != nil {
		opts = append(opts, lifecycle.WithLogger(logger))
	}
	return opts
}

// ServerOptions translates the server section.
func (c *Config) ServerOptions(logger *slog.Logger) []server.Option {
	sc := c.Server
	opts := []server.Option{
		server.WithAddr(sc.Addr),
		server.WithH2C(sc.H2C),
		server.WithReadTimeout(sc.ReadTimeout),
		server.WithReadHeaderTimeout(sc.ReadHeaderTimeout),
		server.WithWriteTimeout(sc.WriteTimeout),
		server.WithIdleTimeout(sc.IdleTimeout),
		server.WithMaxHeaderBytes(sc.MaxHeaderBytes),
		server.WithShutdownGrace(sc.ShutdownGrace),
		server.WithBanner(sc.Banner),
		server.WithServiceInfo(c.Log.Service, c.Log.Version),
	}
	if sc.TLSCertFile != "" {
		opts = append(opts, server.WithTLS(sc.TLSCertFile, sc.TLSKeyFile))
	}
	if logger != nil {
		opts = append(opts, server.WithLogger(logger))
	}
	return opts
}

// LoggingOptions translates the log section. Level and format are
// already validated, so parse failures cannot happen here.
func (c *Config) LoggingOptions() []logging.Option {
	lc := c.Log
	level, _ := logging.ParseLevel(lc.Level)
	return []logging.Option{
		logging.WithHandlerType(logging.HandlerType(lc.Format)),
		logging.WithLevel(level),
		logging.WithServiceName(lc.Service),
		logging.WithServiceVersion(lc.Version),
		logging.WithSource(lc.Source),
	}
}

// MetricsOptions translates the metrics section. The scrape path and the
// health paths are not counted.
func (c *Config) MetricsOptions() []metrics.Option {
	mc := c.Metrics
	return []metrics.Option{
		metrics.WithNamespace(mc.Namespace),
		metrics.WithServiceInfo(c.Log.Service, c.Log.Version),
		metrics.WithRuntimeMetrics(mc.Runtime),
		metrics.WithExcludePaths(mc.Path),
		metrics.WithExcludePaths(c.HealthPaths()...),
	}
}

// TracingOptions translates the tracing section.
func (c *Config) TracingOptions(logger *slog.Logger) []tracing.Option {
	tc := c.Tracing
	opts := []tracing.Option{
		tracing.WithServiceName(c.Log.Service),
		tracing.WithServiceVersion(c.Log.Version),
		tracing.WithSampleRate(tc.SampleRatio),
		tracing.WithExporter(tc.Exporter, tc.Endpoint, tc.Insecure),
		tracing.WithExcludePaths(c.Metrics.Path),
		tracing.WithExcludePaths(c.HealthPaths()...),
	}
	if logger != nil {
		opts = append(opts, tracing.WithLogger(logger))
	}
	return opts
}

// CompressionOptions maps the compression section. The metrics endpoint
// is left uncompressed for scrapers that do not negotiate.
func (c *Config) CompressionOptions() []compression.Option {
	cc := c.Compression
	opts := []compression.Option{
		compression.WithGzipLevel(cc.GzipLevel),
		compression.WithBrotliLevel(cc.BrotliLevel),
		compression.WithExcludePaths(c.HealthPaths()...),
	}
	if c.Metrics.Enabled {
		opts = append(opts, compression.WithExcludePaths(c.Metrics.Path))
	}
	if !cc.Brotli {
		opts = append(opts, compression.WithoutBrotli())
	}
	return opts
}

// RateLimitOptions maps the rate_limit section.
func (c *Config) RateLimitOptions(logger *slog.Logger) []ratelimit.Option {
	rc := c.RateLimit
	opts := []ratelimit.Option{
		ratelimit.WithRate(rc.Rate),
		ratelimit.WithBurst(rc.Burst),
		ratelimit.WithIdleTTL(rc.IdleTTL),
		ratelimit.WithExcludePaths(c.HealthPaths()...),
		ratelimit.WithLogger(logger),
	}
	if c.Metrics.Enabled {
		opts = append(opts, ratelimit.WithExcludePaths(c.Metrics.Path))
	}
	return opts
}
