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
// Package timeout provides middleware that puts a deadline on the request
// context and answers with an error when a handler overruns it.
package timeout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware"
)

// ErrTimeout is recorded when the deadline passed before a response was
// written. It is answered with 503.
var ErrTimeout = &router.HTTPError{
	Status:  http.StatusServiceUnavailable,
	Message: "request timed out",
	Err:     context.DeadlineExceeded,
}

// New returns a middleware that runs the rest of the chain with a
// deadline on c.Context().
//
// The chain runs on the request goroutine; a handler that ignores the
// context is not interrupted. When the deadline has passed by the time
// the chain returns and nothing was written, the request is answered
// through WithHandler or by recording ErrTimeout. Handlers that honor the
// context typically return early and leave the response unwritten:
//
//	e.GET("/report", func(c *router.Context) {
//	    rows, err := db.QueryContext(c.Context(), reportSQL)
//	    if err != nil {
//	        c.Error(err)
//	        return
//	    }
//	    ...
//	}).Use(timeout.New(timeout.WithDuration(5 * time.Second)))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.skip(c) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Context(), cfg.duration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		c.Set(middleware.KeyTimedOut, true)

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}
		logger.Warn("request timed out",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.RoutePattern(),
			"timeout", cfg.duration.String(),
			"written", c.Written(),
		)

		if c.Written() || c.IsDetached() {
			return
		}
		if cfg.handler != nil {
			cfg.handler(c, cfg.duration)
			return
		}
		c.Error(ErrTimeout)
	}
}

func (cfg *config) skip(c *router.Context) bool {
	path := c.Request.URL.Path
	if _, ok := cfg.skipPaths[path]; ok {
		return true
	}
	for _, p := range cfg.skipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return cfg.skipFunc != nil && cfg.skipFunc(c)
}
