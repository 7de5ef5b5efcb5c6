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
package binding

import "github.com/kingwill101/routed-sub001/router"

// DefaultMaxMemory bounds the in-memory part of a multipart form.
const DefaultMaxMemory = 32 << 20

// Option configures a single binding call.
type Option func(*config)

type config struct {
	strict     bool
	skipValid  bool
	maxMemory  int64
	jsonNumber bool
}

func newConfig(opts []Option) *config {
	cfg := &config{maxMemory: DefaultMaxMemory}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) validate(dst any) error {
	if c.skipValid {
		return nil
	}
	return router.Validate(dst)
}

// WithStrict rejects unknown query and form keys and unknown JSON fields.
func WithStrict() Option {
	return func(c *config) { c.strict = true }
}

// WithoutValidation skips `validate` struct tags.
func WithoutValidation() Option {
	return func(c *config) { c.skipValid = true }
}

// WithMaxMemory sets how much of a multipart form is held in memory.
func WithMaxMemory(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxMemory = n
		}
	}
}

// WithJSONNumber decodes JSON numbers into interface values as
// json.Number instead of float64.
func WithJSONNumber() Option {
	return func(c *config) { c.jsonNumber = true }
}
