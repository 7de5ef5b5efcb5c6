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
/*
Package middleware holds the keys shared by the stock middleware. Each
middleware lives in its own sub-package and is a plain router.HandlerFunc,
so it can be attached anywhere in the chain or registered by id in a
router.MiddlewareRegistry.

# Available Middlewares

  - requestid: correlation ids taken from the client or generated (UUID v7 or ULID)
  - accesslog: one structured log line per request with sampling and exclusions
  - recovery: panic recovery that reports through the engine error pipeline
  - bodylimit: per-route request body limits tighter than the engine default
  - timeout: request deadlines with a pipeline error when they pass

# Usage

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	e := router.MustNew(router.WithLogger(logger))
	e.Use(
	    requestid.New(),
	    accesslog.New(accesslog.WithLogger(logger)),
	    recovery.New(),
	)

	uploads := e.Group("/uploads", bodylimit.New(bodylimit.WithLimit(64<<20)))
	uploads.POST("", storeUpload)

Registering by id defers construction to request time, where the factory
sees the request scope of the container:

	e.Registry().Register("timeout", func(*container.Container) (router.HandlerFunc, error) {
	    return timeout.New(timeout.WithDuration(5 * time.Second)), nil
	})
	e.GET("/report", report).UseRef("timeout")

# Ordering

Engine-level middleware also runs for 404, 405 and automatic OPTIONS
responses, so accesslog and requestid cover those too. Errors recorded
with c.Error are rendered after the whole chain has returned, so
middleware that reports the response status after c.Next (accesslog) uses
router.ErrorStatus for a pending error.
*/
package middleware
