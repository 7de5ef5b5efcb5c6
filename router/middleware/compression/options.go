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
package compression

import (
	"compress/gzip"
	"log/slog"
	"strings"

	"github.com/kingwill101/routed-sub001/internal/pathfilter"
)

// DefaultBrotliLevel suits dynamic JSON and text responses.
const DefaultBrotliLevel = 4

// Option configures the compression middleware.
type Option func(*config)

type config struct {
	gzipLevel           int
	brotliLevel         int
	gzip                bool
	brotli              bool
	filter              *pathfilter.Filter
	excludeContentTypes []string
	logger              *slog.Logger
}

func defaultConfig() *config {
	return &config{
		gzipLevel:   gzip.DefaultCompression,
		brotliLevel: DefaultBrotliLevel,
		gzip:        true,
		brotli:      true,
		filter:      pathfilter.New(),
	}
}

// WithGzipLevel sets the gzip level, from gzip.HuffmanOnly to
// gzip.BestCompression.
func WithGzipLevel(level int) Option {
	return func(c *config) {
		c.gzipLevel = max(gzip.HuffmanOnly, min(level, gzip.BestCompression))
	}
}

// WithBrotliLevel sets the Brotli level, clamped to 0..11.
func WithBrotliLevel(level int) Option {
	return func(c *config) {
		c.brotliLevel = max(0, min(level, 11))
	}
}

// WithoutBrotli restricts the middleware to gzip.
func WithoutBrotli() Option {
	return func(c *config) { c.brotli = false }
}

// WithoutGzip restricts the middleware to Brotli.
func WithoutGzip() Option {
	return func(c *config) { c.gzip = false }
}

// WithExcludePaths skips compression for exact paths.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) { c.filter.AddPaths(paths...) }
}

// WithExcludePrefixes skips compression for paths under the prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) { c.filter.AddPrefixes(prefixes...) }
}

// WithExcludeContentTypes skips responses whose Content-Type starts with
// one of the given values.
func WithExcludeContentTypes(types ...string) Option {
	return func(c *config) {
		for _, t := range types {
			c.excludeContentTypes = append(c.excludeContentTypes, strings.ToLower(t))
		}
	}
}

// WithLogger sets the logger for finalization errors. The request logger
// is used by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
