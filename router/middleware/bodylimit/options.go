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
package bodylimit

// Option configures the bodylimit middleware.
type Option func(*config)

type config struct {
	limit     int64
	skipPaths map[string]struct{}
}

func defaultConfig() *config {
	return &config{
		limit:     DefaultLimit,
		skipPaths: make(map[string]struct{}),
	}
}

// WithLimit sets the maximum body size in bytes. It panics when size is
// not positive.
func WithLimit(size int64) Option {
	if size <= 0 {
		panic("bodylimit: limit must be positive")
	}
	return func(cfg *config) {
		cfg.limit = size
	}
}

// WithSkipPaths exempts exact paths from the limit.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = struct{}{}
		}
	}
}
