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
package requestid

import (
	"context"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware"
)

// New returns a middleware that gives every request a correlation id.
//
// The id comes from the client header when allowed and well formed;
// otherwise the id the engine assigned to the request is reused, and a
// fresh one is generated only when there is none. The id is echoed in
// the response header, stored in the request context and on the Context
// under middleware.KeyRequestID, and attached to the request logger.
//
//	e := router.MustNew()
//	e.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		var id string
		if cfg.allowClientID {
			if v := c.Request.Header.Get(cfg.headerName); validID(v, cfg.maxLength) {
				id = v
			}
		}
		if id == "" && cfg.reuseEngineID {
			id = c.RequestID()
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Header(cfg.headerName, id)
		c.Set(middleware.KeyRequestID, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), middleware.RequestIDKey, id))
		if id != c.RequestID() {
			c.SetLogger(c.Logger().With("correlation_id", id))
		}

		c.Next()
	}
}

// Get returns the correlation id of the request, or "" when the
// middleware did not run.
func Get(c *router.Context) string {
	if id, ok := c.Request.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// FromContext returns the correlation id stored in ctx.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(middleware.RequestIDKey).(string)
	return id
}

// validID accepts printable ASCII ids up to max bytes so a client cannot
// inject control characters into logs.
func validID(id string, limit int) bool {
	if id == "" || len(id) > limit {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func newUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func newULID() string {
	return ulid.Make().String()
}
