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
package ratelimit

import (
	"log/slog"
	"time"

	"github.com/kingwill101/routed-sub001/internal/pathfilter"
	"github.com/kingwill101/routed-sub001/router"
)

// Defaults used when no option overrides them.
const (
	DefaultRate    = 100
	DefaultBurst   = 20
	DefaultIdleTTL = 5 * time.Minute
)

// Option configures a Limiter.
type Option func(*config)

type config struct {
	rate       float64
	burst      int
	key        KeyFunc
	store      Store
	headers    bool
	reportOnly bool
	onExceeded func(*router.Context, Meta)
	filter     *pathfilter.Filter
	idleTTL    time.Duration
	logger     *slog.Logger
}

func defaultConfig() *config {
	return &config{
		rate:    DefaultRate,
		burst:   DefaultBurst,
		key:     ClientIPKey,
		headers: true,
		filter:  pathfilter.New(),
		idleTTL: DefaultIdleTTL,
	}
}

// WithRate sets the refill rate in requests per second.
func WithRate(perSecond float64) Option {
	return func(c *config) {
		if perSecond > 0 {
			c.rate = perSecond
		}
	}
}

// WithBurst sets the bucket capacity.
func WithBurst(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.burst = n
		}
	}
}

// WithKeyFunc sets how requests are grouped into buckets.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *config) {
		if fn != nil {
			c.key = fn
		}
	}
}

// WithStore replaces the in-memory store, for example with one shared
// between instances. Rate and burst then belong to the store.
func WithStore(s Store) Option {
	return func(c *config) { c.store = s }
}

// WithoutHeaders stops the RateLimit-* headers on allowed requests.
func WithoutHeaders() Option {
	return func(c *config) { c.headers = false }
}

// WithReportOnly lets limited requests through after calling the
// exceeded callback and logging them.
func WithReportOnly() Option {
	return func(c *config) { c.reportOnly = true }
}

// WithOnExceeded sets a callback for rejected requests. It runs before
// the 429 is recorded.
func WithOnExceeded(fn func(*router.Context, Meta)) Option {
	return func(c *config) { c.onExceeded = fn }
}

// WithExcludePaths exempts exact paths such as health probes.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) { c.filter.AddPaths(paths...) }
}

// WithIdleTTL sets how long an untouched key is kept by the built-in store.
func WithIdleTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.idleTTL = d
		}
	}
}

// WithLogger sets the logger. The request logger is used by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
