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

// Option configures the requestid middleware.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
	reuseEngineID bool
	maxLength     int
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     newUUIDv7,
		allowClientID: true,
		reuseEngineID: true,
		maxLength:     128,
	}
}

// WithHeader sets the request and response header carrying the id.
// Default: "X-Request-ID".
func WithHeader(name string) Option {
	return func(cfg *config) {
		cfg.headerName = name
	}
}

// WithULID generates ULIDs (26 characters, lexicographically sortable)
// instead of UUID v7.
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = newULID
	}
}

// WithGenerator sets a custom id generator.
func WithGenerator(fn func() string) Option {
	return func(cfg *config) {
		cfg.generator = fn
	}
}

// WithAllowClientID controls whether an id sent by the client is kept.
// Default: true.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}

// WithEngineID controls whether the id the engine assigned to the request
// is reused before generating a new one. Default: true.
func WithEngineID(reuse bool) Option {
	return func(cfg *config) {
		cfg.reuseEngineID = reuse
	}
}

// WithMaxLength bounds the length of accepted client ids. Default: 128.
func WithMaxLength(n int) Option {
	return func(cfg *config) {
		cfg.maxLength = n
	}
}
