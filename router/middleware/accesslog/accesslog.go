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
// Package accesslog provides middleware that writes one structured log
// record per request.
package accesslog

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware"
)

// New returns the access log middleware. Without WithLogger it logs to
// the request logger.
//
// Errors recorded with c.Error are rendered after the chain returns, so
// the logged status of such a request is the status the error pipeline
// maps the error to. Errors and slow requests are always logged; other
// requests are subject to sampling and WithErrorsOnly.
//
//	e.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/healthz", "/metrics"),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		path := c.Request.URL.Path
		if cfg.skip(path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status, size := outcome(c)
		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		if !isError && !isSlow {
			if cfg.errorsOnly || !sampled(correlationID(c), cfg.sampleRate) {
				return
			}
		}

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("route", c.RoutePattern()),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.Int64("bytes", size),
			slog.String("client_ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.String("proto", c.Request.Proto),
		}
		if name := c.RouteName(); name != "" {
			attrs = append(attrs, slog.String("route_name", name))
		}
		if isSlow {
			attrs = append(attrs, slog.Bool("slow", true))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400, isSlow:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Context(), level, "access", attrs...)
	}
}

// outcome returns the response status and size, using the mapped status
// of a pending error when nothing has been written yet.
func outcome(c *router.Context) (int, int64) {
	info, _ := c.Response.(router.ResponseInfo)
	if !c.Written() {
		if errs := c.Errors(); len(errs) > 0 {
			return router.ErrorStatus(errors.Join(errs...)), 0
		}
	}
	if info == nil {
		return 0, 0
	}
	return info.StatusCode(), info.Size()
}

func correlationID(c *router.Context) string {
	if id := c.GetString(middleware.KeyRequestID); id != "" {
		return id
	}
	return c.RequestID()
}

// sampled decides deterministically from id, so every replica makes the
// same choice for a request.
func sampled(id string, rate float64) bool {
	if rate >= 1 || id == "" {
		return true
	}
	if rate <= 0 {
		return false
	}
	return xxhash.Sum64String(id) <= uint64(rate*math.MaxUint64)
}

func (cfg *config) skip(path string) bool {
	if _, ok := cfg.excludePaths[path]; ok {
		return true
	}
	for _, p := range cfg.excludePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
