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
package recovery

import (
	"log/slog"

	"github.com/kingwill101/routed-sub001/router"
)

// Option configures the recovery middleware.
type Option func(*config)

type config struct {
	stackTrace bool
	stackSize  int
	logger     *slog.Logger
	handler    func(c *router.Context, v any)
}

func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10,
	}
}

// WithStackTrace enables or disables stack capture. Default: true.
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize truncates captured stacks to size bytes; zero keeps the
// whole stack. Default: 4 KiB.
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}

// WithLogger logs panics to logger instead of the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler answers recovered panics with handler instead of the
// engine's 500. The handler owns the response.
//
//	recovery.New(recovery.WithHandler(func(c *router.Context, v any) {
//	    _ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "try again"})
//	}))
func WithHandler(handler func(c *router.Context, v any)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}
