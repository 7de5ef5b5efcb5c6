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
// Package bodylimit provides middleware that applies a request body limit
// to part of a route tree, usually tighter or looser than the engine-wide
// limit set with router.WithMaxBodySize.
package bodylimit

import (
	"fmt"
	"net/http"

	"github.com/kingwill101/routed-sub001/router"
)

// DefaultLimit is the limit used when WithLimit is not given.
const DefaultLimit int64 = 2 << 20

// New returns a middleware limiting request bodies.
//
// A declared Content-Length above the limit is rejected before the
// handler runs. Other bodies are wrapped with http.MaxBytesReader, so a
// read past the limit fails with *http.MaxBytesError, which c.Bind and
// the engine both answer with 413.
//
// The engine wraps every body with its own limit first. Raise that limit
// with router.WithMaxBodySize for routes that accept more than it.
//
//	uploads := e.Group("/uploads", bodylimit.New(bodylimit.WithLimit(64<<20)))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if _, skip := cfg.skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		if c.Request.ContentLength > cfg.limit {
			c.AbortWithError(fmt.Errorf("%w: declared %d bytes, limit %d",
				router.ErrBodyTooLarge, c.Request.ContentLength, cfg.limit))
			return
		}

		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			c.Request.Body = http.MaxBytesReader(c.Response, c.Request.Body, cfg.limit)
		}
		c.Next()
	}
}
