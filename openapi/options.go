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
package openapi

// Option configures a Generator.
type Option func(*Generator)

// WithInfo sets the API title and version. The defaults are "API" and
// "0.0.0".
func WithInfo(title, version string) Option {
	return func(g *Generator) {
		g.info.Title = title
		g.info.Version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) { g.info.Description = description }
}

// WithServer adds a server entry. It can be given more than once.
func WithServer(url, description string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, Server{URL: url, Description: description})
	}
}

// WithExcludeNames drops routes with the given names, typically the
// route serving the document itself.
func WithExcludeNames(names ...string) Option {
	return func(g *Generator) {
		for _, n := range names {
			g.exclude[n] = struct{}{}
		}
	}
}
