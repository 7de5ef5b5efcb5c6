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
package accesslog

import (
	"log/slog"
	"time"
)

// Option configures the access log middleware.
type Option func(*config)

type config struct {
	logger          *slog.Logger
	excludePaths    map[string]struct{}
	excludePrefixes []string
	sampleRate      float64
	errorsOnly      bool
	slowThreshold   time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths: make(map[string]struct{}),
		sampleRate:   1,
	}
}

// WithLogger sets the logger for access records.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithExcludePaths skips exact paths.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = struct{}{}
		}
	}
}

// WithExcludePrefixes skips paths starting with any of prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.excludePrefixes = append(cfg.excludePrefixes, prefixes...)
	}
}

// WithSampleRate logs the given fraction of successful requests, chosen
// by a hash of the request id. The rate is clamped to [0, 1].
func WithSampleRate(rate float64) Option {
	return func(cfg *config) {
		cfg.sampleRate = max(0, min(rate, 1))
	}
}

// WithErrorsOnly logs only responses with status 400 or above, plus slow
// requests.
func WithErrorsOnly() Option {
	return func(cfg *config) {
		cfg.errorsOnly = true
	}
}

// WithSlowThreshold always logs requests taking at least d, at warn level.
func WithSlowThreshold(d time.Duration) Option {
	return func(cfg *config) {
		cfg.slowThreshold = d
	}
}
