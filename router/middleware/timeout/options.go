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
package timeout

import (
	"log/slog"
	"time"

	"github.com/kingwill101/routed-sub001/router"
)

// Option configures the timeout middleware.
type Option func(*config)

type config struct {
	duration     time.Duration
	logger       *slog.Logger
	handler      func(c *router.Context, d time.Duration)
	skipPaths    map[string]struct{}
	skipPrefixes []string
	skipFunc     func(c *router.Context) bool
}

func defaultConfig() *config {
	return &config{
		duration:  30 * time.Second,
		skipPaths: make(map[string]struct{}),
	}
}

// WithDuration sets the deadline. Default: 30s.
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.duration = d
	}
}

// WithLogger logs timeouts to logger instead of the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler answers timed-out requests with handler instead of
// recording ErrTimeout.
func WithHandler(handler func(c *router.Context, d time.Duration)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// WithSkipPaths exempts exact paths, such as streaming endpoints.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}

// WithSkipPrefix exempts paths starting with any of prefixes.
func WithSkipPrefix(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.skipPrefixes = append(cfg.skipPrefixes, prefixes...)
	}
}

// WithSkip exempts requests for which fn returns true.
func WithSkip(fn func(c *router.Context) bool) Option {
	return func(cfg *config) {
		cfg.skipFunc = fn
	}
}
